package extract

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/tsawler/mosaic/model"
)

// imageExtractor pulls embedded raster images out of a PDF with pdfcpu. The
// image object table carries no placement, so images come back in object
// order.
type imageExtractor struct {
	ctx     *pdfmodel.Context
	minSide int
}

func newImageExtractor(data []byte, minSide int) (e *imageExtractor, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, err = nil, fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()

	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	return &imageExtractor{ctx: ctx, minSide: minSide}, nil
}

// page returns the image regions of a page. Tiny images (bullets, spacers)
// are dropped.
func (e *imageExtractor) page(pageNr int) (regions []model.RawRegion, err error) {
	defer func() {
		if r := recover(); r != nil {
			regions, err = nil, fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()

	if pageNr > e.ctx.PageCount || len(pdfcpu.ImageObjNrs(e.ctx, pageNr)) == 0 {
		return nil, nil
	}

	images, err := pdfcpu.ExtractPageImages(e.ctx, pageNr, false)
	if err != nil {
		return nil, err
	}

	objNrs := make([]int, 0, len(images))
	for nr := range images {
		objNrs = append(objNrs, nr)
	}
	sort.Ints(objNrs)

	for _, nr := range objNrs {
		img := images[nr]
		if img.Reader == nil {
			continue
		}
		if img.Width > 0 && img.Height > 0 && (img.Width < e.minSide || img.Height < e.minSide) {
			continue
		}
		data, err := io.ReadAll(img)
		if err != nil {
			return regions, fmt.Errorf("image %s: %w", img.Name, err)
		}
		if len(data) == 0 {
			continue
		}
		regions = append(regions, model.RawRegion{
			Type:     model.RegionImage,
			Data:     data,
			MIMEType: model.ParseImageFormat(img.FileType).MIMEType(),
		})
	}
	return regions, nil
}
