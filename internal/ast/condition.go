package ast

import (
	"github.com/fastn-community/p11/internal/p11"
)

// Condition is an extracted "if"-shaped header: the raw expression
// text plus the line it was declared on.
type Condition struct {
	Expression string
	LineNumber int
}

// ConditionFromHeaders scans headers for the first one isCondition
// recognizes and returns it as a Condition. It returns nil, nil when
// no header matches, and a ParseError when the matching header has no
// expression to extract (absent value, or itself section-shaped
// rather than scalar).
func ConditionFromHeaders(headers p11.Headers, docID string, isCondition IsCondition) (*Condition, error) {
	for _, h := range headers {
		if !isCondition(h.Key(), h.Kind()) {
			continue
		}
		kv, ok := h.(*p11.KVHeader)
		if !ok || kv.Value == nil {
			return nil, &p11.ParseError{
				Message:    "if condition must contain expression",
				DocID:      docID,
				LineNumber: h.LineNumber(),
			}
		}
		return &Condition{Expression: *kv.Value, LineNumber: kv.Line}, nil
	}
	return nil, nil
}
