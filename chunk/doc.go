// Package chunk orders processed regions into the final chunk sequence of a
// document.
//
// Units may complete in any order. Assemble sorts them by source position
// (page, region, part), numbers them without gaps and derives each chunk ID
// from the document ID and chunk index, so re-processing identical input
// yields identical chunks.
//
// Long text regions are first split into passages by a Splitter, which cuts
// on sentence boundaries and never inside a word.
package chunk
