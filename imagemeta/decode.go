package imagemeta

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/mosaic/model"
)

// MalformedImageError reports image bytes or pixels that cannot be analyzed
type MalformedImageError struct {
	Reason string
	Err    error
}

func (e *MalformedImageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed image: %s: %v", e.Reason, e.Err)
	}
	return "malformed image: " + e.Reason
}

func (e *MalformedImageError) Unwrap() error {
	return e.Err
}

// Decode decodes PNG, JPEG, GIF, BMP, TIFF or WebP bytes. The returned
// content keeps data as its encoded form.
func Decode(data []byte) (model.ImageContent, error) {
	if len(data) == 0 {
		return model.ImageContent{}, &MalformedImageError{Reason: "empty image data"}
	}

	img, name, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return model.ImageContent{}, &MalformedImageError{Reason: "decode", Err: err}
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return model.ImageContent{}, &MalformedImageError{Reason: "zero dimensions"}
	}

	return model.ImageContent{
		Pixels:    img,
		Width:     b.Dx(),
		Height:    b.Dy(),
		Format:    model.ParseImageFormat(name),
		ColorMode: model.ColorModeOf(img),
		Encoded:   data,
	}, nil
}

// DecodeConfig reads only the header of an encoded image
func DecodeConfig(data []byte) (width, height int, format model.ImageFormat, err error) {
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, model.ImageFormatUnknown, &MalformedImageError{Reason: "decode config", Err: err}
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return 0, 0, model.ImageFormatUnknown, &MalformedImageError{Reason: "zero dimensions"}
	}
	return cfg.Width, cfg.Height, model.ParseImageFormat(name), nil
}
