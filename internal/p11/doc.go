// Package p11 implements a parser for the p11 document format: a
// line-oriented section syntax with nested sub-sections, typed inline
// headers, multi-line headers/captions/bodies, explicit block-end
// markers, and section-level commenting.
//
// Parse runs a single-pass pushdown automaton over the input: its
// state stack mirrors the section/header nesting of the document
// being parsed. There is no error recovery; the first malformed
// construct aborts the parse and no partial tree is returned.
package p11
