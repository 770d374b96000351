package export

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"

	"github.com/nfnt/resize"
)

const (
	thumbnailMaxDim  = 300
	thumbnailQuality = 85
)

// writeThumbnail decodes a photo and writes a JPEG thumbnail bounded to
// thumbnailMaxDim on the longer side, never enlarging.
func writeThumbnail(srcPath, destPath string) error {
	in, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening photo: %w", err)
	}
	defer in.Close()

	img, _, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("decoding photo: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > thumbnailMaxDim || bounds.Dy() > thumbnailMaxDim {
		img = resize.Thumbnail(thumbnailMaxDim, thumbnailMaxDim, img, resize.Lanczos3)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating thumbnail: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return fmt.Errorf("encoding thumbnail: %w", err)
	}
	return nil
}
