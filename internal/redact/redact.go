package redact

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// Image writes a privacy-redacted copy of the image at src to dst. Mode
// "mosaic" pixelates by downscaling to 1/20 and upscaling with
// nearest-neighbor; anything else falls back to a gaussian blur. The rest of
// the system only ever stores the dst path, never the raw upload.
func Image(src, dst, mode string) error {
	img, err := imaging.Open(src)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var out = img
	if mode == "mosaic" {
		small := imaging.Resize(img, max(1, w/20), max(1, h/20), imaging.Linear)
		out = imaging.Resize(small, w, h, imaging.NearestNeighbor)
	} else {
		out = imaging.Blur(img, 8)
	}

	if err := imaging.Save(out, dst); err != nil {
		return fmt.Errorf("save redacted image: %w", err)
	}
	return nil
}
