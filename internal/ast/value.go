package ast

import (
	"fmt"

	"github.com/fastn-community/p11/internal/p11"
)

// nullLiteral is the sentinel header value meaning "absent".
const nullLiteral = "NULL"

// Value is the typed result of projecting a Section or Header: one of
// StringValue, RecordValue, ListValue, or OptionalValue.
type Value interface {
	isValue()
}

// StringValue is a scalar string, carrying the line it came from.
type StringValue struct {
	Value      string
	LineNumber int
}

func (StringValue) isValue() {}

// HeaderValue is one entry of a RecordValue's Headers: a key plus its
// projected Value.
type HeaderValue struct {
	Key        string
	Value      Value
	LineNumber int
}

// BodyValue is a Record's projected body block.
type BodyValue struct {
	Value      string
	LineNumber int
}

// RecordValue is a section that has its own headers and/or both a
// caption and a body.
type RecordValue struct {
	Name       string
	Caption    Value // nil when the section has no caption
	Headers    []HeaderValue
	Body       *BodyValue
	LineNumber int
}

func (RecordValue) isValue() {}

// ListValue is a section's sub-sections, or a Header::Section's
// sections, each projected in turn.
type ListValue struct {
	Items []Value
}

func (ListValue) isValue() {}

// OptionalValue wraps another Value, or is the canonical null when
// Inner is nil.
type OptionalValue struct {
	Inner Value
}

func (OptionalValue) isValue() {}

// Null is the canonical absent value.
func Null() Value { return OptionalValue{} }

// IsCondition lets the host decide which header key/kind identifies
// the "if" condition header; the projector never hardcodes the
// keyword itself.
type IsCondition func(key string, kind *string) bool

// FromSection builds a Value from a Section, without applying a
// modifier. See FromSectionWithModifier for the usual entry point.
func FromSection(section *p11.Section, docID string, isCondition IsCondition) Value {
	if len(section.SubSections) > 0 {
		items := make([]Value, len(section.SubSections))
		for i, sub := range section.SubSections {
			items[i] = FromSection(sub, docID, isCondition)
		}
		return ListValue{Items: items}
	}

	var caption Value
	if section.Caption != nil {
		caption = inner(fromKVHeader(section.Caption))
	}

	var headers []HeaderValue
	for _, h := range section.Headers {
		if isCondition(h.Key(), h.Kind()) {
			continue
		}
		headers = append(headers, HeaderValue{
			Key:        h.Key(),
			Value:      FromHeader(h, docID, isCondition),
			LineNumber: h.LineNumber(),
		})
	}

	var body *BodyValue
	if section.Body != nil {
		body = &BodyValue{Value: section.Body.Value, LineNumber: section.Body.LineNumber}
	}

	if len(headers) == 0 && !(caption != nil && body != nil) {
		switch {
		case caption != nil:
			return caption
		case body != nil:
			return StringValue{Value: body.Value, LineNumber: body.LineNumber}
		default:
			return Null()
		}
	}

	return RecordValue{
		Name:       section.Name,
		Caption:    caption,
		Headers:    headers,
		Body:       body,
		LineNumber: section.LineNumber,
	}
}

// FromHeader builds a Value from a Header, without applying a
// modifier.
func FromHeader(h p11.Header, docID string, isCondition IsCondition) Value {
	switch header := h.(type) {
	case *p11.KVHeader:
		return fromKVHeader(header)
	case *p11.SectionHeader:
		items := make([]Value, len(header.Sections))
		for i, s := range header.Sections {
			items[i] = FromSection(s, docID, isCondition)
		}
		return ListValue{Items: items}
	default:
		return Null()
	}
}

func fromKVHeader(h *p11.KVHeader) Value {
	if h.Value != nil && *h.Value != nullLiteral {
		return StringValue{Value: *h.Value, LineNumber: h.Line}
	}
	return Null()
}

// inner unwraps one layer of OptionalValue, if present; anything else
// is returned as-is.
func inner(v Value) Value {
	if opt, ok := v.(OptionalValue); ok {
		return opt.Inner
	}
	return v
}

// FromSectionWithModifier builds a Value from a Section and applies
// kind's modifier.
func FromSectionWithModifier(section *p11.Section, docID string, kind VariableKind, isCondition IsCondition) (Value, error) {
	v := FromSection(section, docID, isCondition)
	return applyModifier(v, docID, section.LineNumber, kind.Modifier)
}

// FromHeaderWithModifier builds a Value from a Header and applies
// kind's modifier.
func FromHeaderWithModifier(h p11.Header, docID string, kind VariableKind, isCondition IsCondition) (Value, error) {
	v := FromHeader(h, docID, isCondition)
	return applyModifier(v, docID, h.LineNumber(), kind.Modifier)
}

// applyModifier applies modifier to v. Applying List to the null
// value yields an empty list (idempotent: applying it again to an
// already-List value is a no-op). Applying List to anything else that
// isn't already a List is a ParseError. Applying Optional wraps v
// unless it is already an OptionalValue.
func applyModifier(v Value, docID string, lineNumber int, modifier Modifier) (Value, error) {
	switch modifier {
	case ModifierList:
		if isNull(v) {
			return ListValue{Items: []Value{}}, nil
		}
		if _, ok := v.(ListValue); ok {
			return v, nil
		}
		return nil, &p11.ParseError{
			Message:    fmt.Sprintf("Expected List found: `%#v`", v),
			DocID:      docID,
			LineNumber: lineNumber,
		}
	case ModifierOptional:
		if _, ok := v.(OptionalValue); ok {
			return v, nil
		}
		return OptionalValue{Inner: v}, nil
	default:
		return v, nil
	}
}

func isNull(v Value) bool {
	opt, ok := v.(OptionalValue)
	return ok && opt.Inner == nil
}
