// Package ast projects a parsed p11 Section or Header, together with
// a declared variable kind/modifier, into a typed Value tree (string,
// record, list, or optional), and extracts the condition expression
// carried by a header recognised by a caller-supplied predicate.
//
// This layer is pure transformation: it only borrows and copies from
// the p11.Section/p11.Header tree, never mutates it.
package ast
