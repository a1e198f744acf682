package media

import (
	"image"
	"image/color"
	"testing"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(40 * x), G: uint8(40 * y), B: 128, A: 255})
		}
	}
	return img
}

func TestApplyFilterUnknownNamePassesThrough(t *testing.T) {
	src := testImage()
	out := ApplyFilter(src, "does_not_exist", 1.0)

	if out.Bounds() != src.Bounds() {
		t.Fatalf("bounds changed: %v vs %v", out.Bounds(), src.Bounds())
	}
	for i := range src.Pix {
		if out.Pix[i] != src.Pix[i] {
			t.Fatalf("pixel data changed at offset %d", i)
		}
	}
}

func TestApplyFilterKnownFiltersProduceImage(t *testing.T) {
	filters := []string{
		"blur", "sharpen", "edge_enhance", "contrast",
		"brightness", "saturation", "grayscale", "histogram_eq",
	}
	src := testImage()
	for _, name := range filters {
		t.Run(name, func(t *testing.T) {
			out := ApplyFilter(src, name, 1.2)
			if out == nil {
				t.Fatal("filter returned nil image")
			}
			if out.Bounds().Dx() != 4 || out.Bounds().Dy() != 4 {
				t.Errorf("unexpected bounds: %v", out.Bounds())
			}
		})
	}
}

func TestApplyFilterGrayscale(t *testing.T) {
	out := ApplyFilter(testImage(), "grayscale", 1.0)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			i := out.PixOffset(x, y)
			r, g, b := out.Pix[i], out.Pix[i+1], out.Pix[i+2]
			if r != g || g != b {
				t.Fatalf("pixel (%d,%d) not gray: %d %d %d", x, y, r, g, b)
			}
		}
	}
}

func TestEnhancementPercent(t *testing.T) {
	tests := []struct {
		level float64
		want  float64
	}{
		{1.0, 0},
		{1.5, 50},
		{0.5, -50},
		{3.5, 100},
		{-2.0, -100},
	}
	for _, tt := range tests {
		if got := enhancementPercent(tt.level); got != tt.want {
			t.Errorf("enhancementPercent(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
