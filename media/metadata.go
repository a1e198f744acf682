package media

import (
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// CaptureTime extracts the EXIF capture instant from an image file, when the
// format carries one. Satellite exports frequently do; plain PNGs usually
// don't, so absence is not an error.
func CaptureTime(path string) *string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	exifData, err := exif.Decode(f)
	if err != nil {
		return nil
	}

	taken, err := exifData.DateTime()
	if err != nil {
		return nil
	}
	formatted := taken.Format(time.RFC3339)
	return &formatted
}
