package pipeline

import (
	"fmt"
	"sort"
)

// Processing stages named in diagnostics
const (
	StageExtract   = "extract"
	StageStructure = "structure"
	StageAnalyze   = "analyze"
	StageEmbed     = "embed"
	StageCancel    = "cancel"
)

// Diagnostic records a non-fatal problem with one page or region. Region is
// the region's index within its page, or -1 when the whole page (or the
// document, with Page 0) is concerned.
type Diagnostic struct {
	Page   int    `json:"page"`
	Region int    `json:"region"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

func (d Diagnostic) String() string {
	where := fmt.Sprintf("page %d", d.Page)
	if d.Region >= 0 {
		where += fmt.Sprintf(" region %d", d.Region)
	}
	if d.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", where, d.Stage, d.Reason, d.Err)
	}
	return fmt.Sprintf("%s: %s: %s", where, d.Stage, d.Reason)
}

// sortDiagnostics orders diagnostics by page, then region. Ties keep their
// recording order.
func sortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Page != diags[j].Page {
			return diags[i].Page < diags[j].Page
		}
		return diags[i].Region < diags[j].Region
	})
}
