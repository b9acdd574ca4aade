package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/tsawler/mosaic/format"
	"github.com/tsawler/mosaic/model"
)

// drain reads every page of doc
func drain(t *testing.T, doc *Document) []*Page {
	t.Helper()
	var pages []*Page
	for {
		p, err := doc.Next()
		if err == io.EOF {
			return pages
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		pages = append(pages, p)
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 5), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestOpen_TextPagesAndParagraphs(t *testing.T) {
	input := "First paragraph\nstill first.\n\n\nSecond paragraph.\fPage two.\n\n   \nLast one.\f"
	doc, err := Open([]byte(input), "text/plain", DefaultConfig())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if doc.Format() != format.Text {
		t.Errorf("Format() = %v, want Text", doc.Format())
	}
	if doc.PageCount() != 2 {
		t.Fatalf("PageCount() = %d, want 2", doc.PageCount())
	}

	pages := drain(t, doc)
	if len(pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d", len(pages))
	}

	want := [][]string{
		{"First paragraph\nstill first.", "Second paragraph."},
		{"Page two.", "Last one."},
	}
	for i, p := range pages {
		if p.Number != i+1 {
			t.Errorf("page %d Number = %d", i, p.Number)
		}
		if len(p.Regions) != len(want[i]) {
			t.Fatalf("page %d: Expected %d regions, got %d", p.Number, len(want[i]), len(p.Regions))
		}
		for j, r := range p.Regions {
			if r.Type != model.RegionText {
				t.Errorf("page %d region %d Type = %v, want text", p.Number, j, r.Type)
			}
			if r.Text != want[i][j] {
				t.Errorf("page %d region %d Text = %q, want %q", p.Number, j, r.Text, want[i][j])
			}
			if r.Index != j || r.PageNumber != p.Number {
				t.Errorf("region position = (%d, %d), want (%d, %d)", r.PageNumber, r.Index, p.Number, j)
			}
		}
	}

	if _, err := doc.Next(); err != io.EOF {
		t.Errorf("Next() after last page error = %v, want io.EOF", err)
	}
}

func TestOpen_EmptyText(t *testing.T) {
	doc, err := Open(nil, "text/plain", DefaultConfig())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if doc.PageCount() != 0 {
		t.Errorf("PageCount() = %d, want 0", doc.PageCount())
	}
	if pages := drain(t, doc); len(pages) != 0 {
		t.Errorf("Expected no pages, got %d", len(pages))
	}
}

func TestOpen_MarkdownTableStaysText(t *testing.T) {
	input := "# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"
	doc, err := Open([]byte(input), "text/markdown", DefaultConfig())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	pages := drain(t, doc)
	if len(pages) != 1 || len(pages[0].Regions) != 2 {
		t.Fatalf("Expected 1 page with 2 regions, got %+v", pages)
	}
	for _, r := range pages[0].Regions {
		if r.Type != model.RegionText {
			t.Errorf("region Type = %v, want text", r.Type)
		}
	}
}

func TestOpen_Unprocessable(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		mimeType string
		wantIs   error
	}{
		{"invalid utf8", []byte{'o', 'k', 0xff, 0xfe}, "text/plain", nil},
		{"bad image", []byte("definitely not a png"), "image/png", nil},
		{"truncated image", pngBytes(t, 40, 30)[:60], "image/png", nil},
		{"no pdf header", []byte("hello"), "application/pdf", nil},
		{"broken pdf", []byte("%PDF-1.4\ngarbage without xref"), "application/pdf", nil},
		{"unsupported", []byte("PK\x03\x04"), "application/zip", format.ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Open(tt.data, tt.mimeType, DefaultConfig())
			if err == nil {
				t.Fatalf("Open() = %v, want error", doc)
			}
			var ue *UnprocessableError
			if !errors.As(err, &ue) {
				t.Fatalf("error %T is not *UnprocessableError", err)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.wantIs)
			}
		})
	}
}

func TestOpen_StandaloneImage(t *testing.T) {
	data := pngBytes(t, 40, 30)
	doc, err := Open(data, "", DefaultConfig())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if doc.Format() != format.Image {
		t.Errorf("Format() = %v, want Image", doc.Format())
	}

	pages := drain(t, doc)
	if len(pages) != 1 || len(pages[0].Regions) != 1 {
		t.Fatalf("Expected one page with one region, got %+v", pages)
	}
	r := pages[0].Regions[0]
	if r.Type != model.RegionImage {
		t.Errorf("Type = %v, want image", r.Type)
	}
	if r.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q, want image/png", r.MIMEType)
	}
	if !bytes.Equal(r.Data, data) {
		t.Error("Expected region data to be the source bytes")
	}
	if r.BBox == nil || r.BBox.Width != 40 || r.BBox.Height != 30 {
		t.Errorf("BBox = %v, want 40x30", r.BBox)
	}
}

func TestOpen_HTML(t *testing.T) {
	img := base64.StdEncoding.EncodeToString(pngBytes(t, 20, 20))
	doc := `<!DOCTYPE html><html><head><title>T</title><style>p{}</style></head><body>
<nav><a href="/">Home</a><a href="/x">Other</a></nav>
<h1>Quarterly report</h1>
<p>Revenue grew <b>strongly</b> this year.</p>
<script>var x = 1;</script>
<table>
  <thead><tr><th>Quarter</th><th colspan="2">Revenue</th></tr></thead>
  <tbody>
    <tr><td>Q1</td><td>100</td><td>EUR</td></tr>
    <tr><td>Q2</td><td>120</td><td>EUR</td></tr>
  </tbody>
</table>
<ul><li>one</li><li>two<ul><li>nested</li></ul></li></ul>
<p><img src="data:image/png;base64,` + img + `"></p>
<img src="https://example.com/remote.png">
</body></html>`

	d, err := Open([]byte(doc), "text/html; charset=utf-8", DefaultConfig())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	pages := drain(t, d)
	if len(pages) != 1 {
		t.Fatalf("Expected 1 page, got %d", len(pages))
	}
	regions := pages[0].Regions

	var types []string
	for _, r := range regions {
		types = append(types, r.Type.String())
		if strings.Contains(r.Text, "Home") || strings.Contains(r.Text, "var x") {
			t.Errorf("skipped content leaked into region %q", r.Text)
		}
	}
	want := []string{"text", "text", "table", "text", "image"}
	if strings.Join(types, ",") != strings.Join(want, ",") {
		t.Fatalf("region types = %v, want %v", types, want)
	}

	if regions[0].Text != "Quarterly report" {
		t.Errorf("heading = %q", regions[0].Text)
	}
	if regions[1].Text != "Revenue grew strongly this year." {
		t.Errorf("paragraph = %q", regions[1].Text)
	}

	table := regions[2].Table
	if table == nil {
		t.Fatal("Expected table payload")
	}
	if table.HeaderRows != 1 {
		t.Errorf("HeaderRows = %d, want 1", table.HeaderRows)
	}
	if got := fmt.Sprint(table.Rows[0]); got != "[Quarter Revenue ]" {
		t.Errorf("header row = %s, want colspan expanded", got)
	}
	if len(table.Rows) != 3 || table.Rows[2][0] != "Q2" {
		t.Errorf("rows = %v", table.Rows)
	}

	if regions[3].Text != "- one\n- two\n  - nested" {
		t.Errorf("list = %q", regions[3].Text)
	}
	if regions[4].MIMEType != "image/png" || len(regions[4].Data) == 0 {
		t.Errorf("image region = %q with %d bytes", regions[4].MIMEType, len(regions[4].Data))
	}
}

func TestParseTable_LeadingTHRows(t *testing.T) {
	d, err := Open([]byte(`<table><tr><th>a</th><th>b</th></tr><tr><td>1</td><td>2</td></tr></table>`), "text/html", DefaultConfig())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	pages := drain(t, d)
	r := pages[0].Regions[0]
	if r.Table == nil || r.Table.HeaderRows != 1 {
		t.Errorf("Expected one header row, got %+v", r.Table)
	}
}

func TestDecodeDataURI(t *testing.T) {
	tests := []struct {
		src      string
		wantOK   bool
		wantMIME string
		wantData string
	}{
		{"data:image/png;base64,aGVsbG8=", true, "image/png", "hello"},
		{"data:image/svg+xml,%3Csvg%3E", true, "image/svg+xml", "<svg>"},
		{"data:text/plain;base64,aGVsbG8=", false, "", ""},
		{"https://example.com/a.png", false, "", ""},
		{"data:image/png;base64", false, "", ""},
	}
	for _, tt := range tests {
		data, mimeType, ok := decodeDataURI(tt.src)
		if ok != tt.wantOK {
			t.Errorf("decodeDataURI(%q) ok = %v, want %v", tt.src, ok, tt.wantOK)
			continue
		}
		if ok && (mimeType != tt.wantMIME || string(data) != tt.wantData) {
			t.Errorf("decodeDataURI(%q) = (%q, %q), want (%q, %q)", tt.src, data, mimeType, tt.wantData, tt.wantMIME)
		}
	}
}

// buildPDF writes a single-page PDF whose page draws content with a
// Helvetica font of fixed 500-unit widths.
func buildPDF(content string) []byte {
	widths := strings.TrimSpace(strings.Repeat("500 ", 95))
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 /MediaBox [0 0 612 792] >>",
		"<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [" + widths + "] >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func TestOpen_PDFText(t *testing.T) {
	content := "BT /F1 12 Tf 72 700 Td (Hello world) Tj ET\nBT /F1 12 Tf 72 600 Td (Second block here) Tj ET"
	doc, err := Open(buildPDF(content), "application/pdf", DefaultConfig())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if doc.PageCount() != 1 {
		t.Fatalf("PageCount() = %d, want 1", doc.PageCount())
	}

	pages := drain(t, doc)
	p := pages[0]
	if p.Err != nil {
		t.Fatalf("page Err = %v", p.Err)
	}
	if len(p.Regions) != 2 {
		t.Fatalf("Expected 2 regions, got %d: %+v", len(p.Regions), p.Regions)
	}
	if p.Regions[0].Text != "Hello world" || p.Regions[1].Text != "Second block here" {
		t.Errorf("texts = %q, %q", p.Regions[0].Text, p.Regions[1].Text)
	}
	if p.Regions[0].BBox == nil || p.Regions[0].BBox.Top() <= p.Regions[1].BBox.Top() {
		t.Error("Expected regions ordered top to bottom")
	}
}

func TestOpen_PDFRuledTable(t *testing.T) {
	var sb strings.Builder
	// a 3x2 grid of stroked cells, 100 wide and 20 high
	for row := 0; row < 3; row++ {
		for col := 0; col < 2; col++ {
			fmt.Fprintf(&sb, "%d %d 100 20 re S\n", 100+col*100, 600-row*20)
		}
	}
	cells := [][]string{{"Item", "Qty"}, {"Bolts", "12"}, {"Nuts", "30"}}
	for row, r := range cells {
		for col, c := range r {
			fmt.Fprintf(&sb, "BT /F1 10 Tf %d %d Td (%s) Tj ET\n", 105+col*100, 606-row*20, c)
		}
	}
	sb.WriteString("BT /F1 12 Tf 100 700 Td (Stock list) Tj ET")

	doc, err := Open(buildPDF(sb.String()), "application/pdf", DefaultConfig())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	pages := drain(t, doc)
	regions := pages[0].Regions
	if len(regions) != 2 {
		t.Fatalf("Expected heading and table, got %+v", regions)
	}
	if regions[0].Type != model.RegionText || regions[0].Text != "Stock list" {
		t.Errorf("first region = %v %q", regions[0].Type, regions[0].Text)
	}
	tbl := regions[1].Table
	if regions[1].Type != model.RegionTable || tbl == nil || !tbl.Ruled {
		t.Fatalf("second region = %+v, want ruled table", regions[1])
	}
	if got := fmt.Sprint(tbl.Rows); got != "[[Item Qty] [Bolts 12] [Nuts 30]]" {
		t.Errorf("rows = %s", got)
	}
}

type stubRecognizer struct {
	calls int
}

func (s *stubRecognizer) Recognize(context.Context, []byte) (string, error) {
	s.calls++
	return "scanned", nil
}

func TestNextContext_Cancelled(t *testing.T) {
	doc, err := Open([]byte("a\fb"), "text/plain", DefaultConfig())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := doc.NextContext(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("NextContext() error = %v, want context.Canceled", err)
	}
}

func TestRecognize_UsesInjectedEngine(t *testing.T) {
	rec := &stubRecognizer{}
	s := &pdfSource{recognizer: rec}
	text, err := s.recognize(context.Background(), []model.RawRegion{{Data: []byte{1}}, {Data: []byte{2}}})
	if err != nil {
		t.Fatalf("recognize() error = %v", err)
	}
	if text != "scanned\n\nscanned" || rec.calls != 2 {
		t.Errorf("recognize() = %q after %d calls", text, rec.calls)
	}
}

func TestRegionExtractionError(t *testing.T) {
	inner := errors.New("boom")
	err := &RegionExtractionError{Page: 3, Region: -1, Reason: "page content could not be parsed", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("Expected Unwrap to expose the cause")
	}
	if got := err.Error(); got != "page 3: page content could not be parsed: boom" {
		t.Errorf("Error() = %q", got)
	}
	err = &RegionExtractionError{Page: 1, Region: 2, Reason: "bad"}
	if got := err.Error(); got != "page 1 region 2: bad" {
		t.Errorf("Error() = %q", got)
	}
}
