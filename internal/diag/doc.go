// Package diag defines the diagnostic model shared by rules, the engine,
// the fix transformer and the renderers.
//
// A Diagnostic carries a rule id, a Code with a stable string form
// (NAM/STR/POS/CFG/ENG ranges), a Severity, a primary source.Span and a
// tree.Ref to the node it was reported on. The Ref pins the diagnostic to
// one snapshot generation: once the file is edited, every diagnostic of
// the older generation is stale and has to be recomputed.
//
// Fixes are not text edits. A Fix is a list of FixStep values, each
// anchored at a node and carrying a Synthesizer that produces the new text
// from the resolved node. internal/fix resolves, synthesizes, reparses and
// splices the steps; this package holds only data.
//
// Rules report through a Reporter. The engine hands each rule invocation a
// private Buffer and flushes it into the file's Bag only when the rule
// returns without error, so a failing rule leaves no partial output.
package diag
