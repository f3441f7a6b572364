package imagecache

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// probeConfig decodes just the image header to recover width/height
// without materializing pixel data.
func probeConfig(mime string, data []byte) (image.Config, string, error) {
	if err := ensureMIMEKnown(mime); err != nil {
		return image.Config{}, "", err
	}
	r := bytes.NewReader(data)
	switch mime {
	case "image/webp":
		cfg, err := webp.DecodeConfig(r)
		return cfg, "webp", err
	case "image/bmp":
		cfg, err := bmp.DecodeConfig(r)
		return cfg, "bmp", err
	default:
		cfg, format, err := image.DecodeConfig(r)
		return cfg, format, err
	}
}
