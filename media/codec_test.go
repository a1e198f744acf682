package media

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeFixturePNG(t *testing.T, width, height int, alpha uint8) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{R: 50, G: 120, B: 200, A: alpha})
		}
	}
	path := filepath.Join(t.TempDir(), "fixture.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating fixture: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	return path
}

func TestEncodeInlineProducesJPEG(t *testing.T) {
	path := writeFixturePNG(t, 16, 16, 255)

	inline, err := EncodeInline(path, 1024, 85)
	if err != nil {
		t.Fatalf("EncodeInline: %v", err)
	}
	if inline.MIMEType != "image/jpeg" {
		t.Errorf("MIMEType = %q, want image/jpeg", inline.MIMEType)
	}

	raw, err := base64.StdEncoding.DecodeString(inline.Data)
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}
	decoded, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("payload is not a decodable JPEG: %v", err)
	}
	if decoded.Bounds().Dx() != 16 || decoded.Bounds().Dy() != 16 {
		t.Errorf("decoded bounds = %v", decoded.Bounds())
	}
}

func TestEncodeInlineFitsLargeImages(t *testing.T) {
	path := writeFixturePNG(t, 64, 32, 255)

	inline, err := EncodeInline(path, 16, 85)
	if err != nil {
		t.Fatalf("EncodeInline: %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(inline.Data)
	decoded, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if decoded.Bounds().Dx() != 16 || decoded.Bounds().Dy() != 8 {
		t.Errorf("decoded bounds = %v, want 16x8 (longest side fitted)", decoded.Bounds())
	}
}

func TestEncodeInlineFlattensTransparency(t *testing.T) {
	// fully transparent source should flatten to white, not black
	path := writeFixturePNG(t, 8, 8, 0)

	inline, err := EncodeInline(path, 1024, 95)
	if err != nil {
		t.Fatalf("EncodeInline: %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(inline.Data)
	decoded, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	r, g, b, _ := decoded.At(4, 4).RGBA()
	if r>>8 < 200 || g>>8 < 200 || b>>8 < 200 {
		t.Errorf("transparent pixel flattened to %d,%d,%d, want near-white", r>>8, g>>8, b>>8)
	}
}

func TestEncodeInlineMissingFile(t *testing.T) {
	if _, err := EncodeInline("/nonexistent/scene.png", 1024, 85); err == nil {
		t.Error("EncodeInline succeeded on a missing file")
	}
}

func TestCaptureTimeAbsentForPNG(t *testing.T) {
	path := writeFixturePNG(t, 8, 8, 255)
	if got := CaptureTime(path); got != nil {
		t.Errorf("CaptureTime = %v, want nil for a PNG without EXIF", *got)
	}
}

func TestCaptureTimeMissingFile(t *testing.T) {
	if got := CaptureTime("/nonexistent/scene.jpg"); got != nil {
		t.Errorf("CaptureTime = %v, want nil", *got)
	}
}
