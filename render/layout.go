// Package render turns a decoded pardump.Dump into pseudo-source text.
//
// Layout owns traversal, ordering and column alignment; an Emitter decides
// how each leaf token is written (plain, HTML, ANSI).
package render

import (
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/reoring/pardump"
)

// Emitter writes leaf tokens for one output format.
type Emitter interface {
	BeginDocument(w *Writer, d *pardump.Dump)
	EndDocument(w *Writer, d *pardump.Dump)
	BeginBlock(w *Writer, n pardump.Name)
	EndBlock(w *Writer, n pardump.Name)

	Keyword(w *Writer, s string)
	TypeName(w *Writer, s string)
	TypeLink(w *Writer, n pardump.Name)
	Comment(w *Writer, s string)
	// Text writes punctuation, whitespace and field names.
	Text(w *Writer, s string)
}

// Writer is a sticky-error writer: after the first failed write every
// further write is dropped and Err reports the failure.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

func (w *Writer) WriteString(s string) {
	if w.err != nil || s == "" {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

// Pad writes n spaces.
func (w *Writer) Pad(n int) {
	if n > 0 {
		w.WriteString(strings.Repeat(" ", n))
	}
}

func (w *Writer) Err() error { return w.err }

// Layout renders d through e. Structures come first, then enums, each group
// ordered by display name.
func Layout(w io.Writer, d *pardump.Dump, e Emitter) error {
	out := NewWriter(w)
	e.BeginDocument(out, d)
	first := true
	sep := func() {
		if !first {
			e.Text(out, "\n")
		}
		first = false
	}
	for _, s := range SortedStructs(d) {
		sep()
		layoutStruct(out, s, e)
	}
	for _, en := range SortedEnums(d) {
		sep()
		layoutEnum(out, en, e)
	}
	e.EndDocument(out, d)
	return out.Err()
}

// SortedStructs orders structures by display name.
func SortedStructs(d *pardump.Dump) []*pardump.Structure {
	out := append([]*pardump.Structure(nil), d.Structs...)
	byName := newNameOrder()
	sort.SliceStable(out, func(i, j int) bool { return byName.less(out[i].Name, out[j].Name) })
	return out
}

// SortedEnums orders enums by display name.
func SortedEnums(d *pardump.Dump) []*pardump.Enum {
	out := append([]*pardump.Enum(nil), d.Enums...)
	byName := newNameOrder()
	sort.SliceStable(out, func(i, j int) bool { return byName.less(out[i].Name, out[j].Name) })
	return out
}

// nameOrder compares display text under the root-locale collation, so the
// order never depends on the host locale. Ties fall back to byte order and
// then to the hash.
type nameOrder struct {
	c *collate.Collator
}

func newNameOrder() nameOrder { return nameOrder{c: collate.New(language.Und)} }

func (o nameOrder) less(a, b pardump.Name) bool {
	as, bs := a.String(), b.String()
	if c := o.c.CompareString(as, bs); c != 0 {
		return c < 0
	}
	if as != bs {
		return as < bs
	}
	return a.Hash() < b.Hash()
}

func layoutStruct(w *Writer, s *pardump.Structure, e Emitter) {
	e.BeginBlock(w, s.Name)
	e.Keyword(w, "struct")
	e.Text(w, " ")
	e.TypeName(w, s.Name.String())
	if s.Base != nil {
		e.Text(w, " : ")
		e.TypeLink(w, s.Base.Name)
	}
	e.Text(w, "\n{\n")

	members := pardump.SortedMembers(s)
	types := make([][]token, len(members))
	typeWidth, nameWidth := 0, 0
	for i, m := range members {
		types[i] = appendType(nil, m)
		typeWidth = max(typeWidth, tokensWidth(types[i]))
		nameWidth = max(nameWidth, utf8.RuneCountInString(m.Info().Name.String()))
	}
	for i, m := range members {
		name := m.Info().Name.String()
		e.Text(w, "\t")
		emitTokens(w, e, types[i])
		w.Pad(typeWidth - tokensWidth(types[i]))
		e.Text(w, " "+name+";")
		w.Pad(nameWidth - utf8.RuneCountInString(name))
		e.Text(w, " ")
		e.Comment(w, MemberComment(m))
		e.Text(w, "\n")
	}
	e.Text(w, "};\n")
	e.EndBlock(w, s.Name)
}

func layoutEnum(w *Writer, en *pardump.Enum, e Emitter) {
	e.BeginBlock(w, en.Name)
	e.Keyword(w, "enum")
	e.Text(w, " ")
	e.TypeName(w, en.Name.String())
	e.Text(w, "\n{\n")
	for _, v := range en.Values {
		e.Text(w, "\t"+v.Name.String()+" = "+strconv.FormatInt(v.Value, 10)+",\n")
	}
	e.Text(w, "};\n")
	e.EndBlock(w, en.Name)
}

// MemberComment is the trailing annotation of a member line.
func MemberComment(m pardump.Member) string {
	info := m.Info()
	s := "// +0x" + hex4(info.Offset) + " size 0x" + strings.ToUpper(strconv.FormatUint(info.Size, 16))
	if info.Subtype != pardump.SubtypeNone {
		s += ", " + info.Subtype.String()
	}
	return s
}

func hex4(v uint64) string {
	s := strings.ToUpper(strconv.FormatUint(v, 16))
	if len(s) < 4 {
		s = strings.Repeat("0", 4-len(s)) + s
	}
	return s
}
