package pardump

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	eng "github.com/reoring/pardump/internal/engine"
)

// DefaultMaxDepth bounds nesting when DecodeOpt.MaxDepth is zero. Member
// records nest through array items and map values, so real dumps stay well
// below it.
const DefaultMaxDepth = 64

// DecodeOpt bundles decoding options.
type DecodeOpt struct {
	MaxDepth int   // 0: DefaultMaxDepth; negative: unlimited
	MaxBytes int64 // 0: unlimited
	// AllowDuplicateKeys lets a later key overwrite an earlier one in the same
	// record. Off by default since last-wins makes the result order dependent.
	AllowDuplicateKeys bool
}

func (o DecodeOpt) enforce() eng.EnforceOptions {
	e := eng.EnforceOptions{OnDuplicate: eng.DupError, MaxDepth: o.MaxDepth, MaxBytes: o.MaxBytes}
	if o.AllowDuplicateKeys {
		e.OnDuplicate = eng.DupIgnore
	}
	switch {
	case o.MaxDepth == 0:
		e.MaxDepth = DefaultMaxDepth
	case o.MaxDepth < 0:
		e.MaxDepth = 0
	}
	return e
}

// DecodeDump reads the whole Source and decodes it into a Dump. Any failure
// is fatal and reported as Issues; no partial Dump is returned.
func DecodeDump(ctx context.Context, src Source, opts ...DecodeOpt) (*Dump, error) {
	var opt DecodeOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	v, err := readTree(src, opt)
	if err != nil {
		return nil, err
	}
	return DecodeDumpValue(ctx, v)
}

func readTree(src Source, opt DecodeOpt) (any, error) {
	if src == nil {
		return nil, issueAt("/", CodeParseError, "nil source", nil)
	}
	enforced := eng.WrapWithEnforcement(src, opt.enforce())
	v, err := eng.DecodeAnyFromSource(enforced)
	if err != nil {
		return nil, toIssues(err, src.Location())
	}
	return v, nil
}

func toIssues(err error, offset int64) error {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return issueAt(ie.Path, ie.Code, ie.Message, err)
	}
	hint := err.Error()
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		hint = "unexpected end of input"
	}
	if offset >= 0 {
		hint += " near byte " + strconv.FormatInt(offset, 10)
	}
	return issueAt("/", CodeParseError, hint, err)
}

// DecodeDumpValue decodes an already parsed tree (see ValueSource for the
// accepted shapes). A nil ctx is treated as context.Background().
func DecodeDumpValue(ctx context.Context, v any) (*Dump, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	root, err := asRecord(v, "")
	if err != nil {
		return nil, err
	}
	d := &Dump{}
	if d.Game, err = root.str("game"); err != nil {
		return nil, err
	}
	if d.Build, err = root.str("build"); err != nil {
		return nil, err
	}

	structs, err := root.array("structs")
	if err != nil {
		return nil, err
	}
	d.Structs = make([]*Structure, 0, len(structs))
	for i, sv := range structs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := decodeStructure(sv, root.at("structs")+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		d.Structs = append(d.Structs, s)
	}

	enums, err := root.array("enums")
	if err != nil {
		return nil, err
	}
	d.Enums = make([]*Enum, 0, len(enums))
	for i, ev := range enums {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e, err := decodeEnum(ev, root.at("enums")+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		d.Enums = append(d.Enums, e)
	}

	Logger().Debug("dump decoded",
		zap.String("game", d.Game),
		zap.String("build", d.Build),
		zap.Int("structs", len(d.Structs)),
		zap.Int("enums", len(d.Enums)))
	return d, nil
}

func decodeStructure(v any, path string) (*Structure, error) {
	r, err := asRecord(v, path)
	if err != nil {
		return nil, err
	}
	s := &Structure{}
	if s.Name, err = r.name("name"); err != nil {
		return nil, err
	}
	if s.Base, err = decodeBase(r); err != nil {
		return nil, err
	}
	if s.Size, err = r.optUintOr("size", 0); err != nil {
		return nil, err
	}
	if s.Align, err = r.optUintOr("align", 0); err != nil {
		return nil, err
	}
	if s.Flags, err = r.optHexOr("flags", 0); err != nil {
		return nil, err
	}
	if s.Version, err = r.optUintOr("version", 0); err != nil {
		return nil, err
	}
	members, err := r.array("members")
	if err != nil {
		return nil, err
	}
	s.Members = make([]Member, 0, len(members))
	for i, mv := range members {
		m, err := decodeMember(mv, r.at("members")+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		s.Members = append(s.Members, m)
	}
	return s, nil
}

// decodeBase accepts either {"name": ..., "offset": ...} or a bare name.
func decodeBase(r record) (*StructureBase, error) {
	v, ok := r.lookup("base")
	if !ok {
		return nil, nil
	}
	if _, isStr := v.(string); isStr {
		n, err := r.name("base")
		if err != nil {
			return nil, err
		}
		return &StructureBase{Name: n}, nil
	}
	br, err := r.object("base")
	if err != nil {
		return nil, err
	}
	b := &StructureBase{}
	if b.Name, err = br.name("name"); err != nil {
		return nil, err
	}
	if b.Offset, err = br.optUintOr("offset", 0); err != nil {
		return nil, err
	}
	return b, nil
}

func decodeEnum(v any, path string) (*Enum, error) {
	r, err := asRecord(v, path)
	if err != nil {
		return nil, err
	}
	e := &Enum{}
	if e.Name, err = r.name("name"); err != nil {
		return nil, err
	}
	if e.Flags, err = r.optHexOr("flags", 0); err != nil {
		return nil, err
	}
	values, err := r.array("values")
	if err != nil {
		return nil, err
	}
	e.Values = make([]EnumValue, 0, len(values))
	for i, vv := range values {
		vr, err := asRecord(vv, r.at("values")+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		var ev EnumValue
		if ev.Name, err = vr.name("name"); err != nil {
			return nil, err
		}
		if ev.Value, err = vr.int("value"); err != nil {
			return nil, err
		}
		e.Values = append(e.Values, ev)
	}
	return e, nil
}

// DecodeMember decodes a single member record.
func DecodeMember(v any) (Member, error) {
	return decodeMember(v, "")
}

func decodeMember(v any, path string) (Member, error) {
	r, err := asRecord(v, path)
	if err != nil {
		return nil, err
	}
	info, err := decodeMemberInfo(r)
	if err != nil {
		return nil, err
	}

	var m Member
	switch info.Type.Class() {
	case ClassBare:
		m, err = NewBare(info)
	case ClassSimple:
		if _, ok := r.lookup("initValue"); !ok {
			m, err = NewBare(info)
			break
		}
		var init float64
		if init, err = r.float("initValue"); err != nil {
			return nil, err
		}
		m, err = NewSimple(info, init)
	case ClassVector:
		var init []float64
		if init, err = r.floats("initValues"); err != nil {
			return nil, err
		}
		n, _ := VectorComponents(info.Type)
		if len(init) != n {
			return nil, issueAt(r.at("initValues"), CodeInvalidType,
				fmt.Sprintf("%s expects %d init values, got %d", info.Type, n, len(init)), nil)
		}
		m, err = NewVector(info, init)
	case ClassMatrix:
		var init []float64
		if init, err = r.floats("initValues"); err != nil {
			return nil, err
		}
		m, err = NewMatrix(info, init)
	case ClassString:
		m, err = decodeString(r, info)
	case ClassEnum:
		m, err = decodeEnumMember(r, info)
	case ClassArray:
		m, err = decodeArray(r, info)
	case ClassMap:
		m, err = decodeMap(r, info)
	case ClassStruct:
		m, err = decodeStruct(r, info)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func decodeMemberInfo(r record) (MemberInfo, error) {
	var info MemberInfo
	var err error

	tv, ok := r.lookup("type")
	if !ok {
		return info, issueAt(r.at("type"), CodeDiscriminatorMissing, "", nil)
	}
	ts, ok := tv.(string)
	if !ok {
		return info, r.wrongKind("type", "string", tv)
	}
	if info.Type, ok = ParseMemberType(ts); !ok {
		return info, issueAt(r.at("type"), CodeDiscriminatorUnknown, "unknown member type: '"+ts+"'", nil)
	}
	if sv, present := r.lookup("subtype"); present {
		ss, isStr := sv.(string)
		if !isStr {
			return info, r.wrongKind("subtype", "string", sv)
		}
		if info.Subtype, ok = ParseMemberSubtype(ss); !ok {
			return info, issueAt(r.at("subtype"), CodeDiscriminatorUnknown, "unknown member subtype: '"+ss+"'", nil)
		}
	}

	if info.Name, err = r.name("name"); err != nil {
		return info, err
	}
	if info.Offset, err = r.uint("offset"); err != nil {
		return info, err
	}
	if info.Size, err = r.uint("size"); err != nil {
		return info, err
	}
	if info.Align, err = r.uint("align"); err != nil {
		return info, err
	}
	if info.Flags1, err = r.hex("flags1"); err != nil {
		return info, err
	}
	if info.Flags2, err = r.hex("flags2"); err != nil {
		return info, err
	}
	if info.ExtraData, err = r.hex("extraData"); err != nil {
		return info, err
	}
	if av, present := r.lookup("attributes"); present {
		info.Attributes = NewAttributes(av)
	}
	return info, nil
}

func decodeString(r record, info MemberInfo) (Member, error) {
	size, err := r.uint("memberSize")
	if err != nil {
		return nil, err
	}
	ns, err := r.uint("namespaceIndex")
	if err != nil {
		return nil, err
	}
	if ns > 0xff {
		return nil, issueAt(r.at("namespaceIndex"), CodeOverflow, strconv.FormatUint(ns, 10), nil)
	}
	return NewString(info, size, uint8(ns))
}

func decodeEnumMember(r record, info MemberInfo) (Member, error) {
	name, err := r.name("enumName")
	if err != nil {
		return nil, err
	}
	init, err := r.int("initValue")
	if err != nil {
		return nil, err
	}
	return NewEnum(info, name, init)
}

func decodeArray(r record, info MemberInfo) (Member, error) {
	iv, ok := r.lookup("item")
	if !ok {
		return nil, r.missing("item")
	}
	item, err := decodeMember(iv, r.at("item"))
	if err != nil {
		return nil, err
	}
	alloc, err := decodeAllocFlags(r)
	if err != nil {
		return nil, err
	}
	size, err := r.optUint("arraySize")
	if err != nil {
		return nil, err
	}
	count, err := r.optUint("countOffset")
	if err != nil {
		return nil, err
	}
	return NewArray(info, item, alloc, size, count)
}

// decodeAllocFlags accepts flag names joined by "|" or ", ", "0", or a number.
func decodeAllocFlags(r record) (ArrayAllocFlags, error) {
	v, ok := r.lookup("allocFlags")
	if !ok {
		return 0, r.missing("allocFlags")
	}
	s, isStr := v.(string)
	if !isStr {
		u, err := toUint(v, r.at("allocFlags"))
		if err != nil {
			return 0, err
		}
		if u > 0xffff {
			return 0, issueAt(r.at("allocFlags"), CodeOverflow, strconv.FormatUint(u, 10), nil)
		}
		return ArrayAllocFlags(u), nil
	}
	var f ArrayAllocFlags
	for _, part := range strings.FieldsFunc(s, func(c rune) bool { return c == '|' || c == ',' || c == ' ' }) {
		switch part {
		case "0", "NONE":
		case "USE_PHYSICAL_ALLOCATOR":
			f |= AllocUsePhysicalAllocator
		default:
			return 0, issueAt(r.at("allocFlags"), CodeDiscriminatorUnknown, "unknown alloc flag: '"+part+"'", nil)
		}
	}
	return f, nil
}

func decodeMap(r record, info MemberInfo) (Member, error) {
	kv, ok := r.lookup("key")
	if !ok {
		return nil, r.missing("key")
	}
	key, err := decodeMember(kv, r.at("key"))
	if err != nil {
		return nil, err
	}
	vv, ok := r.lookup("value")
	if !ok {
		return nil, r.missing("value")
	}
	value, err := decodeMember(vv, r.at("value"))
	if err != nil {
		return nil, err
	}
	iter, err := r.optPointer("createIteratorFunc")
	if err != nil {
		return nil, err
	}
	iface, err := r.optPointer("createInterfaceFunc")
	if err != nil {
		return nil, err
	}
	return NewMap(info, key, value, iter, iface)
}

func decodeStruct(r record, info MemberInfo) (Member, error) {
	name, err := r.optName("structName")
	if err != nil {
		return nil, err
	}
	resolve, err := r.optPointer("externalNamedResolveFunc")
	if err != nil {
		return nil, err
	}
	getName, err := r.optPointer("externalNamedGetNameFunc")
	if err != nil {
		return nil, err
	}
	alloc, err := r.optPointer("allocateStructFunc")
	if err != nil {
		return nil, err
	}
	return NewStruct(info, name, resolve, getName, alloc)
}
