package render

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/reoring/pardump"
)

type tokenKind int

const (
	tokText tokenKind = iota
	tokKeyword
	tokType
	tokLink
)

// token is one leaf of a member's type text.
type token struct {
	kind tokenKind
	text string
	name pardump.Name // tokLink only
}

func (t token) plain() string {
	if t.kind == tokLink {
		return t.name.String()
	}
	return t.text
}

func tokensWidth(toks []token) int {
	n := 0
	for _, t := range toks {
		n += utf8.RuneCountInString(t.plain())
	}
	return n
}

func emitTokens(w *Writer, e Emitter, toks []token) {
	for _, t := range toks {
		switch t.kind {
		case tokKeyword:
			e.Keyword(w, t.text)
		case tokType:
			e.TypeName(w, t.text)
		case tokLink:
			e.TypeLink(w, t.name)
		default:
			e.Text(w, t.text)
		}
	}
}

// TypeText returns the undecorated type text of m, e.g. "array<int, 4>".
func TypeText(m pardump.Member) string {
	var b strings.Builder
	for _, t := range appendType(nil, m) {
		b.WriteString(t.plain())
	}
	return b.String()
}

func kw(s string) token         { return token{kind: tokKeyword, text: s} }
func typ(s string) token        { return token{kind: tokType, text: s} }
func txt(s string) token        { return token{kind: tokText, text: s} }
func link(n pardump.Name) token { return token{kind: tokLink, name: n} }

func appendType(toks []token, m pardump.Member) []token {
	switch v := m.(type) {
	case *pardump.EnumMember:
		if v.IsBitset() {
			return append(toks, kw("bitset"), txt("<"), kw("enum"), txt(" "), link(v.EnumName), txt(">"))
		}
		return append(toks, link(v.EnumName))
	case *pardump.ArrayMember:
		toks = append(toks, kw("array"), txt("<"))
		toks = appendType(toks, v.Item)
		if v.ArraySize != nil {
			toks = append(toks, txt(", "+strconv.FormatUint(*v.ArraySize, 10)))
		}
		return append(toks, txt(">"))
	case *pardump.MapMember:
		toks = append(toks, kw("map"), txt("<"))
		toks = appendType(toks, v.Key)
		toks = append(toks, txt(", "))
		toks = appendType(toks, v.Value)
		return append(toks, txt(">"))
	case *pardump.StructMember:
		if v.StructName == nil {
			return append(toks, kw("void"))
		}
		return append(toks, link(*v.StructName))
	case *pardump.BareMember, *pardump.SimpleMember, *pardump.VectorMember,
		*pardump.MatrixMember, *pardump.StringMember:
		return append(toks, scalarToken(m.Info().Type))
	}
	panic(fmt.Sprintf("render: unknown member variant %T", m))
}

// scalarToken is the fixed text of a payload-free type: engine keywords for
// primitives, type names for the vector math kinds.
func scalarToken(t pardump.MemberType) token {
	switch t {
	case pardump.TypeBool:
		return kw("bool")
	case pardump.TypeChar:
		return kw("char")
	case pardump.TypeUChar:
		return kw("uchar")
	case pardump.TypeShort:
		return kw("short")
	case pardump.TypeUShort:
		return kw("ushort")
	case pardump.TypeInt:
		return kw("int")
	case pardump.TypeUInt:
		return kw("uint")
	case pardump.TypeFloat:
		return kw("float")
	case pardump.TypeString:
		return kw("string")
	case pardump.TypePtrdiffT:
		return kw("ptrdiff_t")
	case pardump.TypeSizeT:
		return kw("size_t")
	case pardump.TypeFloat16:
		return kw("float16")
	case pardump.TypeInt64:
		return kw("int64")
	case pardump.TypeUInt64:
		return kw("uint64")
	case pardump.TypeDouble:
		return kw("double")
	case pardump.TypeGUID:
		return kw("guid")
	case pardump.TypeVector2:
		return typ("Vector2")
	case pardump.TypeVector3:
		return typ("Vector3")
	case pardump.TypeVector4:
		return typ("Vector4")
	case pardump.TypeMatrix34:
		return typ("Matrix34")
	case pardump.TypeMatrix44:
		return typ("Matrix44")
	case pardump.TypeVec2V:
		return typ("Vec2V")
	case pardump.TypeVec3V:
		return typ("Vec3V")
	case pardump.TypeVec4V:
		return typ("Vec4V")
	case pardump.TypeMat33V:
		return typ("Mat33V")
	case pardump.TypeMat34V:
		return typ("Mat34V")
	case pardump.TypeMat44V:
		return typ("Mat44V")
	case pardump.TypeScalarV:
		return typ("ScalarV")
	case pardump.TypeBoolV:
		return typ("BoolV")
	case pardump.TypeVecBoolV:
		return typ("VecBoolV")
	case pardump.TypeVec2F:
		return typ("Vec2f")
	case pardump.TypeQuatV:
		return typ("QuatV")
	}
	panic(fmt.Sprintf("render: no scalar text for %s", t))
}
