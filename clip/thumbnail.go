package clip

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
)

// ThumbnailPath returns the poster image file name for a clip
func ThumbnailPath(clipPath string) string {
	return strings.TrimSuffix(clipPath, filepath.Ext(clipPath)) + ".jpg"
}

// Thumbnail scales img to the given width, keeping its aspect ratio
func Thumbnail(img image.Image, width int) image.Image {

	src := img.Bounds()

	if width <= 0 || src.Dx() == 0 {
		return img
	}

	height := src.Dy() * width / src.Dx()

	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)

	return dst
}

// writeThumbnail saves a scaled JPEG copy of the crop to path
func writeThumbnail(path string, crop gocv.Mat, width int) error {

	img, err := crop.ToImage()

	if err != nil {
		return fmt.Errorf("error converting crop to image: %w", err)
	}

	f, err := os.Create(path)

	if err != nil {
		return fmt.Errorf("error creating thumbnail file: %w", err)
	}

	defer f.Close()

	err = jpeg.Encode(f, Thumbnail(img, width), &jpeg.Options{Quality: 85})

	if err != nil {
		return fmt.Errorf("error encoding thumbnail: %w", err)
	}

	return nil
}
