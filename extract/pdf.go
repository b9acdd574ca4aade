package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"

	"github.com/tsawler/mosaic/layout"
	"github.com/tsawler/mosaic/model"
	"github.com/tsawler/mosaic/tables"
)

// letter is the page box used when a page declares no MediaBox
var letter = model.BBox{Width: 612, Height: 792}

// pdfSource reads positioned text and rules with ledongthuc/pdf and embedded
// images with pdfcpu.
type pdfSource struct {
	reader *pdf.Reader
	pages  int
	cfg    Config
	logger logrus.FieldLogger

	images *imageExtractor

	recognizer Recognizer
	ocrErr     error
}

func openPDF(data []byte, cfg Config, o options) (src *pdfSource, err error) {
	// the reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			src, err = nil, &UnprocessableError{Reason: "malformed PDF", Err: fmt.Errorf("%v", r)}
		}
	}()

	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-")) {
		return nil, &UnprocessableError{Reason: "missing PDF header", Err: errors.New("no %PDF- marker")}
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &UnprocessableError{Reason: "cannot read PDF structure", Err: err}
	}

	s := &pdfSource{
		reader:     r,
		pages:      r.NumPage(),
		cfg:        cfg,
		logger:     o.logger,
		recognizer: o.recognizer,
	}

	s.images, err = newImageExtractor(data, cfg.MinImageSide)
	if err != nil {
		// text extraction still works; the pages just lose their images
		s.logger.WithError(err).Warn("embedded images unavailable")
	}

	if cfg.OCR && s.recognizer == nil {
		s.recognizer, s.ocrErr = newOCR(cfg)
	}
	return s, nil
}

func (s *pdfSource) pageCount() int { return s.pages }

func (s *pdfSource) close() error {
	if c, ok := s.recognizer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *pdfSource) page(ctx context.Context, number int) (page Page) {
	defer func() {
		if r := recover(); r != nil {
			page = failedPage(number, "page content could not be parsed", fmt.Errorf("%v", r))
		}
	}()

	p := s.reader.Page(number)
	if p.V.IsNull() {
		return failedPage(number, "page object missing", nil)
	}

	box := mediaBox(p)
	content := p.Content()

	glyphs := make([]layout.Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, layout.Glyph{
			Text:     t.S,
			X:        t.X,
			Y:        t.Y,
			Width:    t.W,
			FontSize: t.FontSize,
			Font:     t.Font,
		})
	}
	rects := make([]model.BBox, 0, len(content.Rect))
	for _, r := range content.Rect {
		rects = append(rects, model.NewBBoxFromPoints(
			model.Point{X: r.Min.X, Y: r.Min.Y},
			model.Point{X: r.Max.X, Y: r.Max.Y},
		))
	}

	regions := s.layoutRegions(glyphs, rects, box)

	var images []model.RawRegion
	var warnings []error
	if s.images != nil {
		var err error
		images, err = s.images.page(number)
		if err != nil {
			warnings = append(warnings, &RegionExtractionError{Page: number, Region: -1, Reason: "embedded images unreadable", Err: err})
		}
	}

	if len(glyphs) == 0 && len(images) > 0 && s.cfg.OCR {
		text, err := s.recognize(ctx, images)
		if err != nil {
			warnings = append(warnings, &RegionExtractionError{Page: number, Region: -1, Reason: "OCR failed", Err: err})
		} else if text != "" {
			regions = append(regions, model.RawRegion{Type: model.RegionText, Text: text, MIMEType: "text/plain"})
		}
	}

	regions = append(regions, images...)
	return Page{Regions: regions, Warnings: warnings}
}

// layoutRegions turns positioned glyphs and rectangles into table and text
// regions ordered top to bottom.
func (s *pdfSource) layoutRegions(glyphs []layout.Glyph, rects []model.BBox, box model.BBox) []model.RawRegion {
	fragments := layout.BuildFragments(glyphs, s.cfg.Fragment)
	if len(fragments) == 0 {
		return nil
	}

	var regions []model.RawRegion

	// ruled tables
	var grids []*tables.GridHypothesis
	segments := tables.SegmentsFromRects(rects, box, s.cfg.Tables)
	for _, g := range tables.NewGridDetector().Detect(segments) {
		if g.Confidence < s.cfg.Tables.MinConfidence || g.Rows < s.cfg.Tables.MinRows || g.Cols < s.cfg.Tables.MinCols {
			continue
		}
		rows := g.Fill(fragments)
		if !hasText(rows) {
			continue
		}
		bbox := g.BBox
		grids = append(grids, g)
		regions = append(regions, model.RawRegion{
			Type:  model.RegionTable,
			BBox:  &bbox,
			Table: &model.RawTable{Rows: rows, Ruled: true},
		})
	}

	free := fragments[:0:0]
	for _, f := range fragments {
		inGrid := false
		for _, g := range grids {
			if g.Contains(f) {
				inGrid = true
				break
			}
		}
		if !inGrid {
			free = append(free, f)
		}
	}

	lines := layout.NewLineDetectorWithConfig(s.cfg.Line).Detect(free)

	// tables drawn without rules
	taken := make([]bool, len(lines))
	for _, b := range tables.NewAlignmentDetector(s.cfg.Tables).Detect(lines) {
		if b.Confidence < s.cfg.Tables.MinConfidence {
			continue
		}
		for i := b.First; i <= b.Last; i++ {
			taken[i] = true
		}
		bbox := b.BBox
		regions = append(regions, model.RawRegion{
			Type:  model.RegionTable,
			BBox:  &bbox,
			Table: &model.RawTable{Rows: b.Rows},
		})
	}

	// the rest flows as text, broken into blocks wherever a table sat
	var run []layout.Line
	flush := func() {
		for _, b := range layout.GroupBlocks(run, s.cfg.Block) {
			text := b.Text()
			if text == "" {
				continue
			}
			bbox := b.BBox
			regions = append(regions, model.RawRegion{
				Type:     model.RegionText,
				BBox:     &bbox,
				Text:     text,
				MIMEType: "text/plain",
			})
		}
		run = nil
	}
	for i, l := range lines {
		if taken[i] {
			flush()
			continue
		}
		run = append(run, l)
	}
	flush()

	sortTopDown(regions)
	return regions
}

// recognize runs OCR over the page images and joins the recognized text
func (s *pdfSource) recognize(ctx context.Context, images []model.RawRegion) (string, error) {
	if s.ocrErr != nil {
		return "", s.ocrErr
	}
	var out []string
	for _, img := range images {
		text, err := s.recognizer.Recognize(ctx, img.Data)
		if err != nil {
			return "", err
		}
		if text != "" {
			out = append(out, text)
		}
	}
	return joinNonEmpty(out, "\n\n"), nil
}

// sortTopDown orders positioned regions by their top edge, then left edge
func sortTopDown(regions []model.RawRegion) {
	sort.SliceStable(regions, func(i, j int) bool {
		a, b := regions[i].BBox, regions[j].BBox
		if a == nil || b == nil {
			return a != nil
		}
		if ta, tb := a.Top(), b.Top(); ta != tb {
			return ta > tb
		}
		return a.Left() < b.Left()
	})
}

// mediaBox returns the page box, inherited from the page tree if needed
func mediaBox(p pdf.Page) model.BBox {
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		mb := v.Key("MediaBox")
		if mb.IsNull() || mb.Len() != 4 {
			continue
		}
		box := model.NewBBoxFromPoints(
			model.Point{X: mb.Index(0).Float64(), Y: mb.Index(1).Float64()},
			model.Point{X: mb.Index(2).Float64(), Y: mb.Index(3).Float64()},
		)
		if box.Width > 0 && box.Height > 0 {
			return box
		}
	}
	return letter
}

func hasText(rows [][]string) bool {
	for _, row := range rows {
		for _, c := range row {
			if c != "" {
				return true
			}
		}
	}
	return false
}

func joinNonEmpty(parts []string, sep string) string {
	var buf bytes.Buffer
	for _, p := range parts {
		if p == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString(sep)
		}
		buf.WriteString(p)
	}
	return buf.String()
}
