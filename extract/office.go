package extract

import (
	"context"
	"fmt"

	"github.com/tsawler/mosaic/docx"
	"github.com/tsawler/mosaic/epubdoc"
	"github.com/tsawler/mosaic/internal/zipdoc"
	"github.com/tsawler/mosaic/model"
	"github.com/tsawler/mosaic/odt"
	"github.com/tsawler/mosaic/pptx"
	"github.com/tsawler/mosaic/xlsx"
)

// containerSource serves the pages of a zip-based document, read up front
type containerSource struct {
	pages []zipdoc.Page
}

func openDOCX(data []byte) (*containerSource, error) {
	r, err := docx.Open(data)
	if err != nil {
		return nil, &UnprocessableError{Reason: "failed to read DOCX", Err: err}
	}
	return &containerSource{pages: r.Pages()}, nil
}

func openXLSX(data []byte) (*containerSource, error) {
	r, err := xlsx.Open(data)
	if err != nil {
		return nil, &UnprocessableError{Reason: "failed to read XLSX", Err: err}
	}
	return &containerSource{pages: r.Pages()}, nil
}

func openPPTX(data []byte) (*containerSource, error) {
	r, err := pptx.Open(data)
	if err != nil {
		return nil, &UnprocessableError{Reason: "failed to read PPTX", Err: err}
	}
	return &containerSource{pages: r.Pages()}, nil
}

func openODT(data []byte) (*containerSource, error) {
	r, err := odt.Open(data)
	if err != nil {
		return nil, &UnprocessableError{Reason: "failed to read ODT", Err: err}
	}
	return &containerSource{pages: r.Pages()}, nil
}

// openEPUB serves one page per chapter. Images are loaded from the book;
// a chapter that cannot be parsed becomes a failed page.
func openEPUB(data []byte) (*containerSource, error) {
	book, err := epubdoc.Open(data)
	if err != nil {
		return nil, &UnprocessableError{Reason: "failed to read EPUB", Err: err}
	}

	s := &containerSource{}
	for _, ch := range book.Chapters {
		w, err := walkHTML(ch.Content, func(src string) (model.RawRegion, error) {
			return book.Image(ch, src)
		})
		if err != nil {
			s.pages = append(s.pages, zipdoc.Page{Warnings: []error{fmt.Errorf("chapter %s: %w", ch.Href, err)}})
			continue
		}
		if len(w.regions) == 0 && len(w.warnings) == 0 {
			continue
		}
		s.pages = append(s.pages, zipdoc.Page{Regions: w.regions, Warnings: w.warnings})
	}
	return s, nil
}

func (s *containerSource) pageCount() int { return len(s.pages) }

func (s *containerSource) close() error { return nil }

func (s *containerSource) page(_ context.Context, number int) Page {
	p := s.pages[number-1]
	regions := make([]model.RawRegion, len(p.Regions))
	copy(regions, p.Regions)
	return Page{Regions: regions, Warnings: p.Warnings}
}
