package p11

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func strPtr(s string) *string { return &s }

func TestParseBasicSectionWithInlineHeaders(t *testing.T) {
	content := "-- person: Alice\nage: 30\ncity: NYC"
	got, err := Parse(content, "doc")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []*Section{
		{
			Name:       "person",
			Caption:    &KVHeader{KeyName: "caption", Value: strPtr("Alice"), Line: 1},
			Headers:    Headers{
				&KVHeader{KeyName: "age", Value: strPtr("30"), Line: 2},
				&KVHeader{KeyName: "city", Value: strPtr("NYC"), Line: 3},
			},
			LineNumber: 1,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBodyAndComment(t *testing.T) {
	content := ";; comment\n-- greeting:\nHello, world."
	got, err := Parse(content, "doc")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d sections, want 1", len(got))
	}
	s := got[0]
	if s.Name != "greeting" || s.LineNumber != 2 {
		t.Errorf("section = %+v, want name=greeting line=2", s)
	}
	if s.Body == nil || s.Body.Value != "Hello, world." {
		t.Errorf("body = %+v, want %q", s.Body, "Hello, world.")
	}
}

func TestParseSubSectionsViaEnd(t *testing.T) {
	// A dotted block header with no inline value (`-- list.item:`) opens
	// a Header reading rather than attaching a scalar; what follows is
	// then read as nested `item` sections until the matching
	// `-- end: list.item`, at which point they're collected into a
	// single SectionHeader on `list`. A dotted header WITH an inline
	// value (`-- list.item: one`) instead attaches a plain scalar
	// KVHeader directly and never opens a nested section at all.
	content := "-- list:\n\n-- list.item:\n-- item: one\n\n-- item: two\n\n-- end: list.item\n-- end: list"
	got, err := Parse(content, "doc")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 1 || got[0].Name != "list" {
		t.Fatalf("got %+v, want one section named list", got)
	}
	if len(got[0].Headers) != 1 {
		t.Fatalf("got %d headers, want 1", len(got[0].Headers))
	}
	sh, ok := got[0].Headers[0].(*SectionHeader)
	if !ok {
		t.Fatalf("header type = %T, want *SectionHeader", got[0].Headers[0])
	}
	if sh.KeyName != "item" || len(sh.Sections) != 2 {
		t.Fatalf("sectionHeader = %+v, want key=item with 2 sections", sh)
	}
	if sh.Sections[0].Name != "item" || sh.Sections[0].Caption == nil || *sh.Sections[0].Caption.Value != "one" {
		t.Errorf("sections[0] = %+v, want name=item caption=one", sh.Sections[0])
	}
	if sh.Sections[1].Name != "item" || sh.Sections[1].Caption == nil || *sh.Sections[1].Caption.Value != "two" {
		t.Errorf("sections[1] = %+v, want name=item caption=two", sh.Sections[1])
	}
}

func TestParseDottedHeaderWithInlineValueIsScalarNotSubsection(t *testing.T) {
	content := "-- list:\n\n-- list.item: one\n-- list.item: two\n-- end: list"
	got, err := Parse(content, "doc")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 1 || got[0].Name != "list" {
		t.Fatalf("got %+v, want one section named list", got)
	}
	if len(got[0].Headers) != 2 {
		t.Fatalf("got %d headers, want 2 scalar headers", len(got[0].Headers))
	}
	for i, want := range []string{"one", "two"} {
		kv, ok := got[0].Headers[i].(*KVHeader)
		if !ok || kv.KeyName != "item" || kv.Value == nil || *kv.Value != want {
			t.Errorf("Headers[%d] = %+v, want item=%s", i, got[0].Headers[i], want)
		}
	}
	if len(got[0].SubSections) != 0 {
		t.Errorf("SubSections = %v, want none", got[0].SubSections)
	}
}

func TestParseDuplicateCaptionFails(t *testing.T) {
	content := "-- x: one\n-- x.caption:\ntwo"
	_, err := Parse(content, "doc")
	mc, ok := err.(*MoreThanOneCaptionError)
	if !ok {
		t.Fatalf("err = %v (%T), want *MoreThanOneCaptionError", err, err)
	}
	if mc.LineNumber != 1 {
		t.Errorf("LineNumber = %d, want 1", mc.LineNumber)
	}
}

func TestParseKindedDuplicateCaptionBypassesCheck(t *testing.T) {
	content := "-- x: one\n-- string x.caption:\n\ntwo"
	got, err := Parse(content, "doc")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %+v, want one section", got)
	}
	if got[0].Caption == nil || *got[0].Caption.Value != "two" {
		t.Errorf("caption = %v, want silently overwritten to \"two\"", got[0].Caption)
	}
}

func TestParseCommentOnlyLinesDoNotAffectSectionIdentity(t *testing.T) {
	plain, err := Parse("-- a: x", "doc")
	if err != nil {
		t.Fatalf("Parse plain: %v", err)
	}
	commented, err := Parse(";; note\n-- a: x", "doc")
	if err != nil {
		t.Fatalf("Parse commented: %v", err)
	}
	if len(plain) != 1 || len(commented) != 1 {
		t.Fatalf("expected one section each, got %d and %d", len(plain), len(commented))
	}
	if plain[0].Name != commented[0].Name || *plain[0].Caption.Value != *commented[0].Caption.Value {
		t.Errorf("comment-only line changed section identity: %+v vs %+v", plain[0], commented[0])
	}
	if commented[0].LineNumber != 2 {
		t.Errorf("LineNumber = %d, want 2", commented[0].LineNumber)
	}
}

func TestParseEscapedDashDashInBody(t *testing.T) {
	content := "-- note:\n\\-- foo"
	got, err := Parse(content, "doc")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got[0].Body == nil || got[0].Body.Value != "-- foo" {
		t.Errorf("body = %v, want \"-- foo\"", got[0].Body)
	}
}

func TestParseMissingColonInIntroducerFails(t *testing.T) {
	_, err := Parse("-- noColon", "doc")
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("err = %v (%T), want *ParseError", err, err)
	}
}

func TestParseUnmatchedEndFails(t *testing.T) {
	_, err := Parse("-- end: nothing", "doc")
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("err = %v (%T), want *ParseError", err, err)
	}
	if pe.Message == "" {
		t.Errorf("expected a non-empty message")
	}
}

func TestParseCommentedSection(t *testing.T) {
	got, err := Parse("/-- x: one", "doc")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 1 || !got[0].IsCommented {
		t.Fatalf("got %+v, want one commented section", got)
	}
}
