package p11

// Section is one `-- [kind ]name[: caption]` block and everything
// nested under it.
type Section struct {
	Name string
	// Kind is the type annotation preceding Name on the introducer
	// line, if any.
	Kind *string
	// Caption is the value after the ':' on the introducer line, or
	// accumulated from a later multi-line `caption:` block header. A
	// second caption opened by an unkinded `-- section.caption:` block
	// header is a MoreThanOneCaptionError; a kinded one skips that
	// check, and its multi-line value replaces the existing caption.
	Caption *KVHeader
	// Headers preserves insertion order; duplicate keys are allowed
	// at this layer.
	Headers Headers
	// Body is the section's single multi-line body block, if any.
	Body *Body
	// SubSections preserves insertion/closing order.
	SubSections []*Section
	// IsCommented is set when the introducer begins with "/-- "
	// rather than "-- ".
	IsCommented bool
	// BlockBody becomes true once the section has consumed any
	// block-form child (a block header, caption, or body opener).
	// From that point on only block-form headers or sub-sections may
	// follow at this level.
	BlockBody bool
	// LineNumber is the 1-based line of the introducer.
	LineNumber int
}

// Header is one entry of a Section's Headers list: either a scalar
// key/value (KVHeader) or a key whose value is itself a list of
// sub-sections (SectionHeader), produced by a `-- parent.key:` /
// `-- end: parent.key` pair.
type Header interface {
	Key() string
	Kind() *string
	LineNumber() int
	isHeader()
}

// Headers is an ordered list of Header, preserving insertion order.
type Headers []Header

// KVHeader is the common header case: an inline or multi-line scalar
// value, or a caption.
type KVHeader struct {
	KeyName  string
	KindName *string
	// Value is nil when the header's accumulated value is empty (no
	// inline value and no non-blank continuation lines).
	Value *string
	Line  int
}

func (h *KVHeader) Key() string     { return h.KeyName }
func (h *KVHeader) Kind() *string   { return h.KindName }
func (h *KVHeader) LineNumber() int { return h.Line }
func (h *KVHeader) isHeader()       {}

// SectionHeader is a header whose value is a list of sub-sections,
// produced by `-- parent.key:` ... `-- end: parent.key`.
type SectionHeader struct {
	KeyName  string
	KindName *string
	Sections []*Section
	Line     int
}

func (h *SectionHeader) Key() string     { return h.KeyName }
func (h *SectionHeader) Kind() *string   { return h.KindName }
func (h *SectionHeader) LineNumber() int { return h.Line }
func (h *SectionHeader) isHeader()       {}

// Body is a section's single body block, trimmed of leading/trailing
// blank lines but preserving internal newlines.
type Body struct {
	Value      string
	LineNumber int
}
