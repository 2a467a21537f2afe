package p11

import (
	"fmt"
	"slices"
	"strings"
)

// Parse parses content as a p11 document and returns its top-level
// sections in document order.
//
// Parse is single-threaded and synchronous: it fully consumes content
// (already assumed to be decoded UTF-8 text) in one pass and owns its
// own state stack for the duration of the call. There is no recovery
// from a parse error: the first one aborts the parse and no partial
// tree is returned. docID is used only to annotate errors.
func Parse(content, docID string) ([]*Section, error) {
	p := &parser{src: newSource(content), docID: docID}
	if err := p.next(); err != nil {
		return nil, err
	}
	return p.sections, nil
}

// readingKind is one of the five states ParsingStateReading can be in
// the original source: the top of a section's reading stack
// determines what the next input line feeds.
type readingKind int

const (
	readingSection readingKind = iota
	readingHeader
	readingCaption
	readingBody
	readingSubsection
)

// reading is one entry of a section's pending-state stack.
type reading struct {
	kind readingKind
	// key and headerKind are only set for readingHeader.
	key        string
	headerKind *string
}

// stackEntry owns one currently-open Section plus the stack of
// readings still pending for it. The section is transferred to the
// output (or to an ancestor's SubSections/SectionHeader) when its
// reading stack is fully drained.
type stackEntry struct {
	section  *Section
	readings []reading
}

// parser is the state of an in-progress parse: a cursor over the
// input plus the pushdown stack of open sections.
type parser struct {
	src        source
	docID      string
	lineNumber int

	stack    []*stackEntry
	sections []*Section
}

// next is the single top-level driver: check for a pending `end:`,
// then either drain the stack (input exhausted) or dispatch on the
// reading at the top of the stack.
func (p *parser) next() error {
	if err := p.end(); err != nil {
		return err
	}

	if p.src.remainingBlank() {
		for _, e := range p.stack {
			p.sections = append(p.sections, e.section)
		}
		p.stack = nil
		return nil
	}

	if len(p.stack) == 0 {
		return p.readingSectionIntroducer()
	}

	top := p.stack[len(p.stack)-1]
	if len(top.readings) == 0 {
		return p.readingSectionIntroducer()
	}

	rd := top.readings[len(top.readings)-1]
	switch rd.kind {
	case readingSection:
		return p.readingBlockHeaders()
	case readingHeader:
		return p.readingHeaderValue(rd.key, rd.headerKind)
	case readingCaption:
		return p.readingCaptionValue()
	case readingBody:
		return p.readingBodyValue()
	case readingSubsection:
		return p.readingSectionIntroducer()
	default:
		return fmt.Errorf("p11: unreachable reading state %d", rd.kind)
	}
}

// end checks whether the next non-blank, non-comment line is a
// `-- end: X` marker and, if so, consumes it and closes out sections
// until X is matched.
//
// Popping does not stop at the first reading on top of the current
// section's stack: every reading that isn't the match is discarded
// (not re-attached anywhere), and once a section's own reading stack
// is fully drained, the section itself is retired and folded into the
// list eventually attached to whichever ancestor Section or Header
// matches X. This can silently fold a deeply nested section's pending
// state into a distant ancestor.
func (p *parser) end() error {
	skip, ok := p.src.peekNonBlank()
	if !ok {
		return nil
	}
	line := strings.TrimSpace(p.src.lineAt(skip))
	if !strings.HasPrefix(line, "-- ") {
		return nil
	}
	rest := line[len("-- "):]
	name, captionPtr, err := colonSeparatedValues(p.lineNumber+1, rest, p.docID)
	if err != nil {
		return err
	}
	if name != "end" {
		return nil
	}
	if captionPtr == nil {
		return &ParseError{
			Message:    "section name not provided for `end`",
			DocID:      p.docID,
			LineNumber: p.lineNumber,
		}
	}
	target := *captionPtr

	var collected []*Section
loop:
	for {
		entry, rd, found := p.removeLatestState()
		if !found {
			sec, err := p.removeLatestSection()
			if err != nil {
				return err
			}
			if sec == nil {
				return &ParseError{
					Message:    fmt.Sprintf("No section found to end: %s", target),
					DocID:      p.docID,
					LineNumber: p.lineNumber,
				}
			}
			collected = append(collected, sec)
			continue
		}

		switch rd.kind {
		case readingSection:
			if target == entry.section.Name {
				slices.Reverse(collected)
				entry.section.SubSections = append(entry.section.SubSections, collected...)
				break loop
			}
		case readingHeader:
			if target == entry.section.Name+"."+rd.key {
				slices.Reverse(collected)
				entry.section.Headers = append(entry.section.Headers, &SectionHeader{
					KeyName:  rd.key,
					KindName: rd.headerKind,
					Sections: collected,
					Line:     p.lineNumber,
				})
				break loop
			}
		}
	}

	p.lineNumber += skip + 1
	p.src.advance(skip + 1)
	return p.end()
}

// readingSectionIntroducer parses the next "-- " / "/-- " introducer
// line as a new Section (top-level, or nested when dispatched from a
// Subsection reading), pushes it onto the stack, consumes its inline
// headers, and recurses into next.
func (p *parser) readingSectionIntroducer() error {
	skip, ok := p.src.peekNonBlank()
	if !ok {
		return &SectionNotFoundError{DocID: p.docID, LineNumber: p.lineNumber + 1}
	}
	trimmed := strings.TrimSpace(p.src.lineAt(skip))
	if !strings.HasPrefix(trimmed, "-- ") && !strings.HasPrefix(trimmed, "/-- ") {
		return &SectionNotFoundError{DocID: p.docID, LineNumber: p.lineNumber + 1}
	}

	cleaned := cleanLine(trimmed)
	isCommented := strings.HasPrefix(cleaned, "/-- ")
	var rest string
	if isCommented {
		rest = cleaned[len("/-- "):]
	} else {
		rest = cleaned[len("-- "):]
	}

	p.lineNumber += skip + 1
	p.src.advance(skip + 1)

	nameWithKind, captionPtr, err := colonSeparatedValues(p.lineNumber, rest, p.docID)
	if err != nil {
		return err
	}
	name, kind := getNameAndKind(nameWithKind)

	var caption *KVHeader
	if captionPtr != nil {
		caption = &KVHeader{KeyName: "caption", Value: captionPtr, Line: p.lineNumber}
	}

	section := &Section{
		Name:        name,
		Kind:        kind,
		Caption:     caption,
		IsCommented: isCommented,
		LineNumber:  p.lineNumber,
	}

	p.stack = append(p.stack, &stackEntry{
		section:  section,
		readings: []reading{{kind: readingSection}},
	})

	if err := p.readingInlineHeaders(); err != nil {
		return err
	}
	return p.next()
}

// readingInlineHeaders consumes the consecutive non-blank,
// non-introducer lines immediately following a section introducer as
// `[kind ]key: value` inline headers, stopping at the first blank
// line, introducer, or line without a ':'.
func (p *parser) readingInlineHeaders() error {
	var headers []Header
	consumed := 0

	for i := p.src.pos; i < len(p.src.lines); i++ {
		line := p.src.lines[i]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "-- ") || strings.HasPrefix(trimmed, "/-- ") {
			break
		}
		lineNo := p.lineNumber + consumed + 1
		if !validLine(line) {
			consumed++
			continue
		}
		nameWithKind, value, err := colonSeparatedValues(lineNo, cleanLine(line), p.docID)
		if err != nil {
			break
		}
		key, kind := getNameAndKind(nameWithKind)
		headers = append(headers, &KVHeader{KeyName: key, KindName: kind, Value: value, Line: lineNo})
		consumed++
	}

	p.src.advance(consumed)
	p.lineNumber += consumed

	if len(p.stack) == 0 {
		return &SectionNotFoundError{DocID: p.docID, LineNumber: p.lineNumber}
	}
	top := p.stack[len(p.stack)-1]
	top.section.Headers = append(top.section.Headers, headers...)
	return nil
}

// readingBlockHeaders looks for the current section's next block
// header (an introducer shaped like `-- section_name.key:`). If the
// next introducer doesn't have that shape, it doesn't consume
// anything: it pushes the next reading (Body the first time, then
// Subsection once the section has any block-form child) and lets next
// re-dispatch on the unconsumed line.
func (p *parser) readingBlockHeaders() error {
	if err := p.end(); err != nil {
		return err
	}

	top := p.stack[len(p.stack)-1]
	fallback := readingBody
	if top.section.BlockBody {
		fallback = readingSubsection
	}

	skip, ok := p.src.peekNonBlank()
	if !ok {
		top.readings = append(top.readings, reading{kind: fallback})
		return p.next()
	}
	trimmed := strings.TrimSpace(p.src.lineAt(skip))
	if !strings.HasPrefix(trimmed, "-- ") && !strings.HasPrefix(trimmed, "/-- ") {
		top.readings = append(top.readings, reading{kind: fallback})
		return p.next()
	}

	isCommented := strings.HasPrefix(trimmed, "/-- ")
	var rest string
	if isCommented {
		rest = trimmed[len("/-- "):]
	} else {
		rest = trimmed[len("-- "):]
	}

	nameWithKind, value, err := colonSeparatedValues(p.lineNumber, rest, p.docID)
	if err != nil {
		return err
	}
	name, kind := getNameAndKind(nameWithKind)

	prefix := top.section.Name + "."
	if !strings.HasPrefix(name, prefix) {
		top.readings = append(top.readings, reading{kind: fallback})
		return p.next()
	}
	key := strings.TrimPrefix(name, prefix)

	p.lineNumber += skip + 1
	p.src.advance(skip + 1)
	top.section.BlockBody = true

	if key == "caption" && kind == nil && top.section.Caption != nil {
		return &MoreThanOneCaptionError{DocID: p.docID, LineNumber: top.section.LineNumber}
	}

	if value != nil {
		top.section.Headers = append(top.section.Headers, &KVHeader{
			KeyName: key, KindName: kind, Value: value, Line: p.lineNumber,
		})
	} else {
		switch key {
		case "caption":
			top.readings = append(top.readings, reading{kind: readingCaption})
		case "body":
			top.readings = append(top.readings, reading{kind: readingBody})
		default:
			top.readings = append(top.readings, reading{kind: readingHeader, key: key, headerKind: kind})
		}
	}
	return p.next()
}

// readingHeaderValue accumulates a named block header's multi-line
// value.
//
// It first tries readingSectionIntroducer on the remaining input: if
// that fails specifically with SectionNotFoundError, the header's
// value is accumulated normally from the following lines. Any other
// error is returned. If the attempt succeeds, the following lines are
// read as nested sections and the pending Header reading stays on its
// section's stack: a matching `-- end: section.key` turns the
// collected sections into a SectionHeader, and without one the header
// is never recorded.
func (p *parser) readingHeaderValue(key string, headerKind *string) error {
	err := p.readingSectionIntroducer()
	if _, isSectionNotFound := err.(*SectionNotFoundError); isSectionNotFound {
		value, aerr := p.accumulateBlockValue("header")
		if aerr != nil {
			return aerr
		}
		entry, _, found := p.removeLatestState()
		if !found {
			return &SectionNotFoundError{DocID: p.docID, LineNumber: p.lineNumber}
		}
		var valuePtr *string
		if value != "" {
			v := value
			valuePtr = &v
		}
		entry.section.Headers = append(entry.section.Headers, &KVHeader{
			KeyName: key, KindName: headerKind, Value: valuePtr, Line: p.lineNumber,
		})
	} else if err != nil {
		return err
	}
	return p.next()
}

// readingCaptionValue accumulates a section's multi-line caption
// block. Unlike a body, a caption is attached once its block opens
// even if the accumulated text is empty; its Value is then nil, as for
// a header.
func (p *parser) readingCaptionValue() error {
	value, err := p.accumulateBlockValue("caption")
	if err != nil {
		return err
	}
	entry, _, found := p.removeLatestState()
	if !found {
		return &SectionNotFoundError{DocID: p.docID, LineNumber: p.lineNumber}
	}
	var valuePtr *string
	if value != "" {
		valuePtr = &value
	}
	entry.section.Caption = &KVHeader{KeyName: "caption", Value: valuePtr, Line: p.lineNumber}
	return p.next()
}

// readingBodyValue accumulates a section's multi-line body block,
// then falls through to looking for sub-sections once the section
// hasn't already opened its block-form children some other way.
func (p *parser) readingBodyValue() error {
	value, err := p.accumulateBlockValue("body")
	if err != nil {
		return err
	}
	entry, _, found := p.removeLatestState()
	if !found {
		return &SectionNotFoundError{DocID: p.docID, LineNumber: p.lineNumber}
	}
	if value != "" {
		entry.section.Body = &Body{Value: value, LineNumber: p.lineNumber}
	}
	if !entry.section.BlockBody {
		entry.readings = append(entry.readings, reading{kind: readingSubsection})
	}
	return p.next()
}

// accumulateBlockValue consumes lines up to (not including) the next
// introducer, trimming leading/trailing blank lines while preserving
// internal newlines.
//
// For "header" and "caption" contexts, the first non-blank,
// non-comment line consumed must itself have been preceded by a blank
// line; otherwise it is a ParseError. "body" is exempt from that
// check: a section's default content block is the ordinary case of a
// bare `-- name:` introducer followed immediately by its text, with
// no separating blank line, and that pattern must succeed.
func (p *parser) accumulateBlockValue(context string) (string, error) {
	var lines []string
	firstLine := true
	idx := p.src.pos
	ln := p.lineNumber

	for idx < len(p.src.lines) {
		line := p.src.lines[idx]
		if strings.HasPrefix(line, "-- ") || strings.HasPrefix(line, "/-- ") {
			break
		}
		ln++
		idx++
		if !validLine(line) {
			continue
		}
		if firstLine {
			if context != "body" && strings.TrimSpace(line) != "" {
				return "", &ParseError{
					Message:    fmt.Sprintf("start section %s '%s' after a newline!!", context, line),
					DocID:      p.docID,
					LineNumber: ln,
				}
			}
			firstLine = false
		}
		lines = append(lines, cleanLine(line))
	}

	p.src.pos = idx
	p.lineNumber = ln
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// removeLatestState pops one reading off the top-of-stack entry's
// own reading list, without removing that entry from the stack.
func (p *parser) removeLatestState() (*stackEntry, reading, bool) {
	if len(p.stack) == 0 {
		return nil, reading{}, false
	}
	top := p.stack[len(p.stack)-1]
	if len(top.readings) == 0 {
		return nil, reading{}, false
	}
	rd := top.readings[len(top.readings)-1]
	top.readings = top.readings[:len(top.readings)-1]
	return top, rd, true
}

// removeLatestSection pops the whole top-of-stack entry and returns
// its Section, transferring ownership to the caller. It is an error
// to do this while the entry still has pending readings.
func (p *parser) removeLatestSection() (*Section, error) {
	if len(p.stack) == 0 {
		return nil, nil
	}
	top := p.stack[len(p.stack)-1]
	if len(top.readings) != 0 {
		return nil, &ParseError{
			Message:    fmt.Sprintf("`%s` section state is not yet empty", top.section.Name),
			DocID:      p.docID,
			LineNumber: p.lineNumber,
		}
	}
	p.stack = p.stack[:len(p.stack)-1]
	return top.section, nil
}

// colonSeparatedValues splits "name: value" (or "name:") on the first
// ':'. A missing ':' is a ParseError; a value that is empty or all
// whitespace after trimming is reported as absent.
func colonSeparatedValues(lineNumber int, line, docID string) (string, *string, error) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", nil, &ParseError{
			Message:    fmt.Sprintf(": is missing in: %s", line),
			DocID:      docID,
			LineNumber: lineNumber,
		}
	}
	name := strings.TrimSpace(line[:idx])
	rest := strings.TrimSpace(line[idx+1:])
	if rest == "" {
		return name, nil, nil
	}
	return name, &rest, nil
}

// getNameAndKind splits "[kind ]name" on the last space: name is the
// last whitespace-separated token, kind is everything before it.
func getNameAndKind(nameWithKind string) (string, *string) {
	if idx := strings.LastIndexByte(nameWithKind, ' '); idx >= 0 {
		kind := nameWithKind[:idx]
		name := nameWithKind[idx+1:]
		return name, &kind
	}
	return nameWithKind, nil
}
