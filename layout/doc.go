// Package layout turns positioned glyphs from a PDF page into fragments, lines
// and blocks.
//
// Glyphs arrive one character at a time with an x/y origin, an advance width
// and a font size. [BuildFragments] joins glyphs that sit on one baseline into
// fragments, splitting where the horizontal gap is wide enough to separate
// table columns. [LineDetector] groups fragments into lines, top to bottom, and
// [GroupBlocks] merges consecutive lines into paragraph-like blocks:
//
//	frags := layout.BuildFragments(glyphs, layout.DefaultFragmentConfig())
//	lines := layout.NewLineDetector().Detect(frags)
//	blocks := layout.GroupBlocks(lines, layout.DefaultBlockConfig())
//
// Coordinates follow the PDF convention: origin at the bottom-left, Y grows
// upward, so "top of page" means larger Y.
package layout
