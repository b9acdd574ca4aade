package zipdoc

import (
	"errors"
	"testing"

	"github.com/tsawler/mosaic/model"
)

func TestPageBuilder_Sections(t *testing.T) {
	b := NewPageBuilder("text/x-test")
	b.Paragraph("Preamble")
	b.Heading("Introduction")
	b.Paragraph("First paragraph.")
	b.ListItem(0, "-", "alpha")
	b.ListItem(1, "1.", "beta")
	b.Paragraph("After the list.")
	b.Table(&model.RawTable{Rows: [][]string{{"a", "b"}}})
	b.Paragraph("Tail")
	b.PageBreak()
	b.PageBreak()
	b.Image(model.RawRegion{Data: []byte{1}, MIMEType: "image/png"})
	b.Warn(errors.New("odd"))

	pages := b.Pages()
	if len(pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d", len(pages))
	}

	first := pages[0].Regions
	want := []struct {
		typ  model.RegionType
		text string
	}{
		{model.RegionText, "Preamble"},
		{model.RegionText, "Introduction\n\nFirst paragraph.\n\n- alpha\n  1. beta\n\nAfter the list."},
		{model.RegionTable, ""},
		{model.RegionText, "Tail"},
	}
	if len(first) != len(want) {
		t.Fatalf("Expected %d regions on page 1, got %d", len(want), len(first))
	}
	for i, w := range want {
		if first[i].Type != w.typ || first[i].Text != w.text {
			t.Errorf("region %d = %s %q, want %s %q", i, first[i].Type, first[i].Text, w.typ, w.text)
		}
		if first[i].MIMEType != "text/x-test" {
			t.Errorf("region %d MIME = %q", i, first[i].MIMEType)
		}
	}

	second := pages[1]
	if len(second.Regions) != 1 || second.Regions[0].Type != model.RegionImage || second.Regions[0].MIMEType != "image/png" {
		t.Errorf("page 2 regions = %+v", second.Regions)
	}
	if len(second.Warnings) != 1 {
		t.Errorf("Expected 1 warning on page 2, got %d", len(second.Warnings))
	}
}

func TestPageBuilder_Empty(t *testing.T) {
	b := NewPageBuilder("text/plain")
	b.Paragraph("   ")
	b.Heading("")
	b.Table(&model.RawTable{})
	b.PageBreak()
	if pages := b.Pages(); len(pages) != 0 {
		t.Errorf("Expected no pages, got %d", len(pages))
	}
}
