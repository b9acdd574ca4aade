package model

import (
	"image"
	"strings"
)

// ImageFormat represents an encoded image format
type ImageFormat int

const (
	ImageFormatUnknown ImageFormat = iota
	ImageFormatPNG
	ImageFormatJPEG
	ImageFormatGIF
	ImageFormatBMP
	ImageFormatTIFF
	ImageFormatWebP
)

// String returns the conventional short name of the format
func (f ImageFormat) String() string {
	switch f {
	case ImageFormatPNG:
		return "png"
	case ImageFormatJPEG:
		return "jpeg"
	case ImageFormatGIF:
		return "gif"
	case ImageFormatBMP:
		return "bmp"
	case ImageFormatTIFF:
		return "tiff"
	case ImageFormatWebP:
		return "webp"
	default:
		return "unknown"
	}
}

// MIMEType returns the image/* media type of the format, or
// application/octet-stream when unknown.
func (f ImageFormat) MIMEType() string {
	if f == ImageFormatUnknown {
		return "application/octet-stream"
	}
	return "image/" + f.String()
}

// MarshalText implements encoding.TextMarshaler
func (f ImageFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ParseImageFormat maps a decoder name ("png", "jpeg", "jpg", ...) to a format.
func ParseImageFormat(name string) ImageFormat {
	switch strings.ToLower(name) {
	case "png":
		return ImageFormatPNG
	case "jpeg", "jpg":
		return ImageFormatJPEG
	case "gif":
		return ImageFormatGIF
	case "bmp":
		return ImageFormatBMP
	case "tiff", "tif":
		return ImageFormatTIFF
	case "webp":
		return ImageFormatWebP
	default:
		return ImageFormatUnknown
	}
}

// ColorMode describes the pixel model of a decoded image
type ColorMode int

const (
	ColorModeUnknown ColorMode = iota
	ColorModeGray
	ColorModeGrayAlpha
	ColorModeRGB
	ColorModeRGBA
	ColorModePaletted
	ColorModeCMYK
	ColorModeYCbCr
)

// String returns a string representation of the color mode
func (m ColorMode) String() string {
	switch m {
	case ColorModeGray:
		return "gray"
	case ColorModeGrayAlpha:
		return "gray_alpha"
	case ColorModeRGB:
		return "rgb"
	case ColorModeRGBA:
		return "rgba"
	case ColorModePaletted:
		return "paletted"
	case ColorModeCMYK:
		return "cmyk"
	case ColorModeYCbCr:
		return "ycbcr"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (m ColorMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ColorModeOf derives the color mode from a decoded image's concrete type.
func ColorModeOf(img image.Image) ColorMode {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return ColorModeGray
	case *image.NRGBA, *image.NRGBA64, *image.RGBA, *image.RGBA64:
		if opaque, ok := img.(interface{ Opaque() bool }); ok && opaque.Opaque() {
			return ColorModeRGB
		}
		return ColorModeRGBA
	case *image.Paletted:
		return ColorModePaletted
	case *image.CMYK:
		return ColorModeCMYK
	case *image.YCbCr, *image.NYCbCrA:
		return ColorModeYCbCr
	case nil:
		return ColorModeUnknown
	default:
		return ColorModeRGB
	}
}

// ImageContent is a decoded image. The record exclusively owns Pixels; callers
// must not share or mutate the underlying buffer after construction.
type ImageContent struct {
	Pixels    image.Image
	Width     int
	Height    int
	Format    ImageFormat
	ColorMode ColorMode

	// Encoded keeps the source bytes when available (used for OCR).
	Encoded []byte
}
