package storage

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"log"

	"golang.org/x/image/draw"
)

// maxWidth caps hosted images; anything wider gets downscaled before
// upload to keep the bucket and page weight sane.
const maxWidth = 1280

const jpegQuality = 85

// shrinkIfNeeded downscales JPEG and PNG images wider than maxWidth.
// Other formats, and anything that fails to decode, pass through
// untouched.
func shrinkIfNeeded(data []byte, contentType string) ([]byte, string) {
	if contentType != "image/jpeg" && contentType != "image/png" {
		return data, contentType
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, contentType
	}

	bounds := src.Bounds()
	if bounds.Dx() <= maxWidth {
		return data, contentType
	}

	height := bounds.Dy() * maxWidth / bounds.Dx()
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, dst)
	default:
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
		contentType = "image/jpeg"
	}
	if err != nil {
		return data, contentType
	}

	log.Printf("[Storage] downscaled image %dx%d -> %dx%d", bounds.Dx(), bounds.Dy(), maxWidth, height)
	return buf.Bytes(), contentType
}
