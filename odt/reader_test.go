package odt

import (
	"archive/zip"
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/tsawler/mosaic/model"
)

const odfNS = `xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" ` +
	`xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0" ` +
	`xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0" ` +
	`xmlns:draw="urn:oasis:names:tc:opendocument:xmlns:drawing:1.0" ` +
	`xmlns:style="urn:oasis:names:tc:opendocument:xmlns:style:1.0" ` +
	`xmlns:xlink="http://www.w3.org/1999/xlink"`

// createTestODT builds an ODT archive with the given office:text content
func createTestODT(t *testing.T, body string, extra map[string][]byte) []byte {
	t.Helper()
	content := `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content ` + odfNS + `>
  <office:automatic-styles>
    <text:list-style style:name="L1"><text:list-level-style-number text:level="1"/><text:list-level-style-bullet text:level="2"/></text:list-style>
  </office:automatic-styles>
  <office:body><office:text>` + body + `</office:text></office:body>
</office:document-content>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string][]byte{
		"mimetype":    []byte(MIMEType),
		"content.xml": []byte(content),
	}
	for k, v := range extra {
		files[k] = v
	}
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		w.Write(data)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func allRegions(r *Reader) []model.RawRegion {
	var out []model.RawRegion
	for _, p := range r.Pages() {
		out = append(out, p.Regions...)
	}
	return out
}

func TestOpen_Text(t *testing.T) {
	body := `<text:sequence-decls><text:sequence-decl text:name="Figure"/></text:sequence-decls>
<text:table-of-content><text:index-body><text:p>Contents 1</text:p></text:index-body></text:table-of-content>
<text:h text:outline-level="1">Getting   started</text:h>
<text:p>Install the
  tool<text:s text:c="2"/>first.<text:note><text:note-body><text:p>footnote</text:p></text:note-body></text:note></text:p>
<text:p>Tab<text:tab/>separated<text:line-break/>next line</text:p>
<text:list text:style-name="L1">
  <text:list-item><text:p>Download</text:p>
    <text:list><text:list-item><text:p>mirror</text:p></text:list-item></text:list>
  </text:list-item>
  <text:list-item><text:p>Unpack</text:p></text:list-item>
</text:list>
<text:section><text:p>In a section</text:p></text:section>`

	r, err := Open(createTestODT(t, body, nil))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	got := allRegions(r)
	if len(got) != 1 {
		t.Fatalf("Expected 1 region, got %d: %+v", len(got), got)
	}
	want := "Getting started\n\nInstall the tool  first.\n\nTab\tseparated\nnext line\n\n1. Download\n  - mirror\n2. Unpack\n\nIn a section"
	if got[0].Text != want {
		t.Errorf("text = %q, want %q", got[0].Text, want)
	}
	if got[0].MIMEType != MIMEType {
		t.Errorf("MIME = %q", got[0].MIMEType)
	}
}

func TestOpen_TablesImagesAndPages(t *testing.T) {
	var img bytes.Buffer
	png.Encode(&img, image.NewGray(image.Rect(0, 0, 2, 2)))

	body := `<text:p>Intro</text:p>
<table:table table:name="T1">
  <table:table-column table:number-columns-repeated="3"/>
  <table:table-header-rows><table:table-row>
    <table:table-cell><text:p>Name</text:p></table:table-cell>
    <table:table-cell table:number-columns-spanned="2"><text:p>Score</text:p></table:table-cell>
    <table:covered-table-cell/>
  </table:table-row></table:table-header-rows>
  <table:table-row>
    <table:table-cell><text:p>Ann</text:p></table:table-cell>
    <table:table-cell><text:p>9</text:p></table:table-cell>
    <table:table-cell><text:p>10</text:p></table:table-cell>
    <table:table-cell table:number-columns-repeated="500"/>
  </table:table-row>
  <table:table-row table:number-rows-repeated="2">
    <table:table-cell table:number-columns-repeated="2"><text:p>x</text:p></table:table-cell>
  </table:table-row>
  <table:table-row table:number-rows-repeated="1000"><table:table-cell/></table:table-row>
</table:table>
<text:p>Figure<draw:frame><draw:image xlink:href="Pictures/chart.png"/></draw:frame></text:p>
<text:p>Vector<draw:frame><draw:image xlink:href="Pictures/logo.svm"/></draw:frame><draw:frame><draw:image xlink:href="http://example.com/a.png"/></draw:frame></text:p>
<text:soft-page-break/>
<text:p>Second page <text:soft-page-break/>third</text:p>
<text:p>Third page<draw:frame><draw:image xlink:href="Pictures/missing.png"/></draw:frame></text:p>`

	r, err := Open(createTestODT(t, body, map[string][]byte{
		"Pictures/chart.png": img.Bytes(),
		"Pictures/logo.svm":  []byte("svm"),
	}))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	pages := r.Pages()
	if len(pages) != 3 {
		t.Fatalf("Expected 3 pages, got %d", len(pages))
	}

	first := pages[0].Regions
	if len(first) != 5 {
		t.Fatalf("Expected 5 regions on page 1, got %d: %+v", len(first), first)
	}
	tbl := first[1].Table
	if first[1].Type != model.RegionTable || tbl == nil {
		t.Fatalf("region 1 = %+v", first[1])
	}
	wantRows := []string{"Name|Score", "Ann|9|10", "x|x", "x|x"}
	if len(tbl.Rows) != len(wantRows) {
		t.Fatalf("rows = %q", tbl.Rows)
	}
	for i, w := range wantRows {
		if got := strings.Join(tbl.Rows[i], "|"); got != w {
			t.Errorf("row %d = %q, want %q", i, got, w)
		}
	}
	if tbl.HeaderRows != 1 {
		t.Errorf("HeaderRows = %d, want 1", tbl.HeaderRows)
	}
	if first[2].Text != "Figure" || first[3].Type != model.RegionImage || first[4].Text != "Vector" {
		t.Errorf("page 1 tail = %+v", first[2:])
	}

	if len(pages[1].Regions) != 1 || pages[1].Regions[0].Text != "Second page third" {
		t.Errorf("page 2 = %+v", pages[1].Regions)
	}
	if len(pages[2].Regions) != 1 || pages[2].Regions[0].Text != "Third page" || len(pages[2].Warnings) != 1 {
		t.Errorf("page 3 = %+v", pages[2])
	}
}

func TestOpen_Errors(t *testing.T) {
	if _, err := Open([]byte("plain")); err == nil {
		t.Error("Expected error for non-zip input")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("mimetype")
	w.Write([]byte("application/vnd.oasis.opendocument.spreadsheet"))
	w, _ = zw.Create("content.xml")
	w.Write([]byte("<office:document-content/>"))
	zw.Close()
	if _, err := Open(buf.Bytes()); err == nil {
		t.Error("Expected error for a spreadsheet package")
	}
}
