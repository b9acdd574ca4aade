package extract

import (
	"context"
	"fmt"

	"github.com/tsawler/mosaic/imagemeta"
	"github.com/tsawler/mosaic/model"
)

// imageSource serves a standalone raster image as a single image region
type imageSource struct {
	data     []byte
	mimeType string
	bbox     model.BBox
}

func openImage(data []byte, mimeType string) (*imageSource, error) {
	w, h, f, err := imagemeta.DecodeConfig(data)
	if err != nil {
		return nil, &UnprocessableError{Reason: "image header cannot be decoded", Err: err}
	}
	if w <= 0 || h <= 0 {
		return nil, &UnprocessableError{Reason: fmt.Sprintf("image has no pixels (%dx%d)", w, h)}
	}
	// a readable header can still carry corrupt pixel data
	if _, err := imagemeta.Decode(data); err != nil {
		return nil, &UnprocessableError{Reason: "image data cannot be decoded", Err: err}
	}
	if f != model.ImageFormatUnknown {
		mimeType = f.MIMEType()
	}
	return &imageSource{
		data:     data,
		mimeType: mimeType,
		bbox:     model.BBox{Width: float64(w), Height: float64(h)},
	}, nil
}

func (s *imageSource) pageCount() int { return 1 }

func (s *imageSource) close() error { return nil }

func (s *imageSource) page(context.Context, int) Page {
	bbox := s.bbox
	return Page{Regions: []model.RawRegion{{
		Type:     model.RegionImage,
		BBox:     &bbox,
		Data:     s.data,
		MIMEType: s.mimeType,
	}}}
}
