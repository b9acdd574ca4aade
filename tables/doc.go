// Package tables detects tables on PDF pages and normalizes table regions into
// rectangular grids.
//
// # Detection
//
// Two detectors find table regions from layout signals:
//
//   - [GridDetector] - finds grids formed by ruling lines (thin filled
//     rectangles or rectangle edges), one grid per connected cluster of rules
//   - [AlignmentDetector] - finds runs of text lines whose fragments line up
//     in two or more columns, for tables drawn without rules
//
// Both produce cell text in reading order, top row first:
//
//	segments := tables.SegmentsFromRects(rects, pageBox, cfg)
//	for _, grid := range tables.NewGridDetector().Detect(segments) {
//	    rows := grid.Fill(fragments)
//	    ...
//	}
//
// # Structuring
//
// [Structurer] turns a table region into a [model.TableContent]: cells are
// NFKC-normalized and whitespace-collapsed, empty rows and trailing empty
// columns are dropped, short rows are padded, and a header row is kept only
// when it can be told apart from data with confidence.
//
// # Confidence Scoring
//
// Detection confidence (0-1) for aligned text blocks is based on:
//
//   - Row spacing regularity (30%)
//   - Alignment quality (30%)
//   - Column count (20%)
//   - Cell occupancy (20%)
package tables
