package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/disintegration/imaging"
)

// InlineImage is an image payload ready to be sent inline to the inference
// service.
type InlineImage struct {
	MIMEType string
	Data     string // base64-encoded bytes
}

// EncodeInline loads an image from disk, flattens any alpha channel onto a
// white background, fits it within maxDim on the longest side and re-encodes
// as JPEG for the inference payload.
func EncodeInline(path string, maxDim, quality int) (InlineImage, error) {
	if _, err := os.Stat(path); err != nil {
		return InlineImage{}, fmt.Errorf("image not found at '%s': %w", path, err)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return InlineImage{}, fmt.Errorf("failed to open image '%s': %w", path, err)
	}

	flattened := flattenAlpha(img)
	fitted := imaging.Fit(flattened, maxDim, maxDim, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return InlineImage{}, fmt.Errorf("failed to encode image '%s': %w", path, err)
	}

	return InlineImage{
		MIMEType: "image/jpeg",
		Data:     base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// flattenAlpha composites the image over white so JPEG encoding does not
// turn transparent regions black.
func flattenAlpha(img image.Image) *image.NRGBA {
	background := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
	return imaging.OverlayCenter(background, img, 1.0)
}
