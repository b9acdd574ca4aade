// Package pipeline turns source documents into ordered, embedded chunks.
//
// Each document moves through a fixed state machine:
//
//	Received → Extracting → Structuring → Embedding → Assembled
//
// with Failed as the only other terminal state. Pages are extracted one at a
// time; regions are structured, analyzed and embedded on a bounded worker
// pool, and the assembler restores source order afterwards. Region-level
// failures become diagnostics and never fail the document on their own.
package pipeline
