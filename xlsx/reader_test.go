package xlsx

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/tsawler/mosaic/model"
)

const sheetNS = `xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`

const workbookRels = `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet2.xml"/>
  <Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/chartsheet" Target="chartsheets/sheet1.xml"/>
  <Relationship Id="rId4" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings" Target="sharedStrings.xml"/>
  <Relationship Id="rId5" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet3.xml"/>
</Relationships>`

// createTestXLSX builds a workbook from the given parts.
func createTestXLSX(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		w.Write([]byte(content))
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testWorkbook(date1904 string) map[string]string {
	return map[string]string{
		"xl/workbook.xml": `<workbook ` + sheetNS + `><workbookPr date1904="` + date1904 + `"/><sheets>
  <sheet name="Summary" sheetId="1" r:id="rId1"/>
  <sheet name="Chart" sheetId="3" r:id="rId3"/>
  <sheet name="Empty" sheetId="4" r:id="rId5"/>
  <sheet name="Notes" sheetId="2" r:id="rId2"/>
</sheets></workbook>`,
		"xl/_rels/workbook.xml.rels": workbookRels,
		"xl/sharedStrings.xml": `<sst ` + sheetNS + `>
  <si><t>Quarter</t></si>
  <si><t>Revenue</t></si>
  <si><r><t>Q</t></r><r><t>1</t></r></si>
  <si><t>Report</t></si>
  <si><t>Total</t></si>
</sst>`,
		"xl/styles.xml": `<styleSheet ` + sheetNS + `>
  <numFmts><numFmt numFmtId="164" formatCode="yyyy\-mm\-dd"/></numFmts>
  <cellXfs>
    <xf numFmtId="0"/>
    <xf numFmtId="14"/>
    <xf numFmtId="9"/>
    <xf numFmtId="164"/>
    <xf numFmtId="22"/>
  </cellXfs>
</styleSheet>`,
		"xl/worksheets/sheet1.xml": `<worksheet ` + sheetNS + `><sheetData>
  <row r="1"><c r="A1" t="s"><v>3</v></c></row>
  <row r="3"><c r="B3" t="s"><v>0</v></c><c r="C3" t="s"><v>1</v></c><c r="D3"><v>0.5</v></c></row>
  <row r="4"><c r="B4" t="s"><v>2</v></c><c r="C4"><v>1250.5</v></c><c r="D4" s="2"><v>0.125</v></c></row>
  <row r="5"><c r="B5" t="inlineStr"><is><t>Q2</t></is></c><c r="C5" t="str"><v>n/a</v></c><c r="D5" t="b"><v>1</v></c></row>
  <row r="7"><c r="A7" t="s"><v>4</v></c><c r="B7"><v>0.30000000000000004</v></c></row>
</sheetData><mergeCells><mergeCell ref="C3:D3"/></mergeCells></worksheet>`,
		"xl/worksheets/sheet2.xml": `<worksheet ` + sheetNS + `><sheetData>
  <row><c t="inlineStr"><is><t>Due</t></is></c><c s="1"><v>45292</v></c><c s="3"><v>45293</v></c><c s="4"><v>45292.75</v></c></row>
</sheetData></worksheet>`,
		"xl/worksheets/sheet3.xml": `<worksheet ` + sheetNS + `><sheetData/></worksheet>`,
	}
}

func TestOpen_Sheets(t *testing.T) {
	r, err := Open(createTestXLSX(t, testWorkbook("0")))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	pages := r.Pages()
	if len(pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d", len(pages))
	}

	summary := pages[0].Regions
	if len(summary) != 3 {
		t.Fatalf("Expected 3 regions on the summary sheet, got %d: %+v", len(summary), summary)
	}
	if summary[0].Type != model.RegionText || summary[0].Text != "Report" {
		t.Errorf("region 0 = %+v", summary[0])
	}

	tbl := summary[1]
	if tbl.Type != model.RegionTable || tbl.MIMEType != MIMEType {
		t.Fatalf("region 1 = %+v, want table", tbl)
	}
	wantRows := [][]string{
		{"Quarter", "Revenue", ""},
		{"Q1", "1250.5", "12.5%"},
		{"Q2", "n/a", "TRUE"},
	}
	if len(tbl.Table.Rows) != len(wantRows) {
		t.Fatalf("rows = %q", tbl.Table.Rows)
	}
	for i, row := range wantRows {
		if strings.Join(tbl.Table.Rows[i], "|") != strings.Join(row, "|") {
			t.Errorf("row %d = %q, want %q", i, tbl.Table.Rows[i], row)
		}
	}

	if summary[2].Type != model.RegionText || summary[2].Text != "Total 0.3" {
		t.Errorf("region 2 = %+v", summary[2])
	}

	notes := pages[1].Regions
	if len(notes) != 1 || notes[0].Text != "Due 2024-01-01 2024-01-02 2024-01-01 18:00:00" {
		t.Errorf("notes sheet = %+v", notes)
	}
}

func TestOpen_Date1904(t *testing.T) {
	r, err := Open(createTestXLSX(t, testWorkbook("1")))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	notes := r.Pages()[1].Regions
	if !strings.HasPrefix(notes[0].Text, "Due 2028-01-02") {
		t.Errorf("1904 dates = %q", notes[0].Text)
	}
}

func TestOpen_Errors(t *testing.T) {
	if _, err := Open([]byte("nope")); err == nil {
		t.Error("Expected error for non-zip input")
	}
	if _, err := Open(createTestXLSX(t, map[string]string{"a.txt": "x"})); err == nil {
		t.Error("Expected error for missing workbook")
	}

	parts := testWorkbook("0")
	parts["xl/worksheets/sheet2.xml"] = "<worksheet><broken"
	r, err := Open(createTestXLSX(t, parts))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	var warnings int
	for _, p := range r.Pages() {
		warnings += len(p.Warnings)
	}
	if warnings != 1 {
		t.Errorf("Expected 1 warning for the broken sheet, got %d", warnings)
	}
}

func TestParseCellRef(t *testing.T) {
	tests := []struct {
		ref      string
		col, row int
		wantErr  bool
	}{
		{"A1", 0, 0, false},
		{"Z10", 25, 9, false},
		{"AA100", 26, 99, false},
		{"xfd1", 16383, 0, false},
		{"", 0, 0, true},
		{"12", 0, 0, true},
		{"A0", 0, 0, true},
		{"A", 0, 0, true},
	}
	for _, tt := range tests {
		col, row, err := ParseCellRef(tt.ref)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCellRef(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && (col != tt.col || row != tt.row) {
			t.Errorf("ParseCellRef(%q) = (%d, %d), want (%d, %d)", tt.ref, col, row, tt.col, tt.row)
		}
	}
}

func TestCodeKind(t *testing.T) {
	tests := []struct {
		code string
		want valueKind
	}{
		{"General", kindNumber},
		{"#,##0.00", kindNumber},
		{"0.0%", kindPercent},
		{"dd/mm/yyyy", kindDate},
		{"h:mm AM/PM", kindTime},
		{"yyyy-mm-dd hh:mm", kindDateTime},
		{`"Day" 0`, kindNumber},
		{"[Red]#,##0", kindNumber},
	}
	for _, tt := range tests {
		if got := codeKind(tt.code); got != tt.want {
			t.Errorf("codeKind(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
