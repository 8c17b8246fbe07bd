// Package position models source locations for the evaluator and its
// diagnostics.
//
// A Span is a half-open byte range inside one registered file. A TermPos
// attaches a provenance tag to a span: Original positions point at text the
// user wrote, Inherited positions were copied from another term (for example
// when the evaluator inserts a contract check around an argument), and
// Undefined positions have no source attribution at all.
//
// The Files registry maps HCL filenames to FileIDs and converts between
// hcl.Range values and spans.
package position
