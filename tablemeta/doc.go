// Package tablemeta derives statistical, structural, temporal and semantic
// metadata from a normalized table.
//
// [Analyzer.Analyze] is a pure function of its input: it performs no I/O, does
// not modify the table and returns identical metadata for identical tables.
//
//	a := tablemeta.New(tablemeta.DefaultConfig())
//	md := a.Analyze(model.TableContent{
//	    Headers: []string{"Quarter", "Revenue"},
//	    Rows:    [][]string{{"Q1", "$1,250,000"}, {"Q2", "$1,450,000"}},
//	})
//	// md.Purpose == model.PurposeFinancial
//
// # Column types
//
// Each column is classified from the share of its non-empty cells that parse
// as numbers ([ParseNumber]) and as dates ([ParseDate]): numeric at 0.8 or
// above, then date at 0.8 or above, then mixed when both shares fall in
// [0.2, 0.8), and text otherwise.
//
// # Purpose
//
// Purpose is the first matching rule in [Config.PurposePriority], which
// defaults to financial, schedule, inventory, metrics. Tables matching none
// are generic.
package tablemeta
