package ast

import (
	"fmt"
	"strings"

	"github.com/fastn-community/p11/internal/p11"
)

// Modifier decorates a declared kind: absent, List, or Optional.
type Modifier int

const (
	NoModifier Modifier = iota
	ModifierOptional
	ModifierList
)

// VariableKind is a declared kind annotation such as "string",
// "optional string", or "string list".
type VariableKind struct {
	Kind     string
	Modifier Modifier
}

// ParseVariableKind parses a raw kind annotation of one or two tokens;
// an empty annotation or one with more than two tokens is a
// ParseError. The recognized modifier shapes are exactly two tokens
// with "optional" first, or exactly two tokens with "list" second.
//
// The two modifier checks are deliberately asymmetric — "optional"
// must be the first token, "list" must be the second — matching the
// original parser's VariableModifier::get_modifier literally. A
// corollary of that same code: a two-token annotation that matches
// neither shape (e.g. "string optional") is not rejected; it falls
// back to taking the first token as the kind with no modifier, because
// the original's modifier-is-None branch has no length guard. Both
// behaviors are preserved here unchanged.
func ParseVariableKind(raw, docID string, lineNumber int) (VariableKind, error) {
	parts := strings.Fields(raw)
	if len(parts) == 0 || len(parts) > 2 {
		return VariableKind{}, invalidKindError(raw, docID, lineNumber)
	}

	modifier := getModifier(parts)
	switch {
	case modifier == ModifierOptional && len(parts) == 2:
		return VariableKind{Kind: parts[1], Modifier: modifier}, nil
	case modifier == ModifierList && len(parts) == 2:
		return VariableKind{Kind: parts[0], Modifier: modifier}, nil
	case modifier == NoModifier:
		return VariableKind{Kind: parts[0], Modifier: NoModifier}, nil
	default:
		return VariableKind{}, invalidKindError(raw, docID, lineNumber)
	}
}

// getModifier inspects a split kind annotation for the two recognized
// two-token shapes. See ParseVariableKind's doc comment for the
// asymmetry this preserves literally.
func getModifier(parts []string) Modifier {
	if len(parts) == 2 {
		if parts[0] == "optional" {
			return ModifierOptional
		}
		if parts[1] == "list" {
			return ModifierList
		}
	}
	return NoModifier
}

func invalidKindError(raw, docID string, lineNumber int) error {
	return &p11.ParseError{
		Message:    fmt.Sprintf("Invalid variable kind, found: `%s`", raw),
		DocID:      docID,
		LineNumber: lineNumber,
	}
}
