package media

import (
	"image"

	"github.com/disintegration/imaging"
)

// edge enhance kernel, matches the usual 3x3 EDGE_ENHANCE convolution
var edgeEnhanceKernel = [9]float64{
	-1, -1, -1,
	-1, 10, -1,
	-1, -1, -1,
}

// ApplyFilter returns a transformed copy of img for the named preprocessing
// filter. level scales the contrast/brightness/saturation enhancements the
// way the enhancement magnitude did upstream (1.0 = unchanged). Unknown
// filter names pass the image through untouched.
func ApplyFilter(img image.Image, filterName string, level float64) *image.NRGBA {
	switch filterName {
	case "blur":
		return imaging.Blur(img, 2.0)
	case "sharpen":
		return imaging.Sharpen(img, 1.0)
	case "edge_enhance":
		return imaging.Convolve3x3(img, edgeEnhanceKernel, &imaging.ConvolveOptions{Normalize: true})
	case "contrast":
		return imaging.AdjustContrast(img, enhancementPercent(level))
	case "brightness":
		return imaging.AdjustBrightness(img, enhancementPercent(level))
	case "saturation":
		return imaging.AdjustSaturation(img, enhancementPercent(level))
	case "grayscale":
		return imaging.Grayscale(img)
	case "histogram_eq":
		return equalizeHistogram(img)
	default:
		return imaging.Clone(img)
	}
}

// enhancementPercent maps an enhancement magnitude (1.0 = no change) onto
// the -100..100 percentage scale imaging's adjusters use.
func enhancementPercent(level float64) float64 {
	pct := (level - 1.0) * 100
	if pct > 100 {
		pct = 100
	}
	if pct < -100 {
		pct = -100
	}
	return pct
}

// equalizeHistogram spreads the luminance histogram across the full range,
// leaving chrominance alone. This mirrors the usual Y-channel equalization
// for color imagery.
func equalizeHistogram(img image.Image) *image.NRGBA {
	src := imaging.Clone(img)
	bounds := src.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return src
	}

	var hist [256]int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := src.PixOffset(x, y)
			hist[luminance(src.Pix[i], src.Pix[i+1], src.Pix[i+2])]++
		}
	}

	var lut [256]uint8
	cum := 0
	for v := 0; v < 256; v++ {
		cum += hist[v]
		lut[v] = uint8(cum * 255 / total)
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := src.PixOffset(x, y)
			r, g, b := src.Pix[i], src.Pix[i+1], src.Pix[i+2]
			lum := luminance(r, g, b)
			eq := lut[lum]
			if lum == 0 {
				src.Pix[i], src.Pix[i+1], src.Pix[i+2] = eq, eq, eq
				continue
			}
			src.Pix[i] = scaleChannel(r, eq, lum)
			src.Pix[i+1] = scaleChannel(g, eq, lum)
			src.Pix[i+2] = scaleChannel(b, eq, lum)
		}
	}
	return src
}

func luminance(r, g, b uint8) uint8 {
	// Rec. 601 integer approximation
	return uint8((299*int(r) + 587*int(g) + 114*int(b)) / 1000)
}

func scaleChannel(c, eq, lum uint8) uint8 {
	scaled := int(c) * int(eq) / int(lum)
	if scaled > 255 {
		scaled = 255
	}
	return uint8(scaled)
}
