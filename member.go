package pardump

import (
	"fmt"
	"strconv"
)

// Member is one field of a Structure. It is a closed union: the only
// implementations are the *XxxMember types in this file, and each accepts
// exactly the Types whose MemberClass it represents.
type Member interface {
	Info() *MemberInfo
	Class() MemberClass
	member()
}

// MemberInfo holds the fields every variant carries.
type MemberInfo struct {
	Name       Name
	Offset     uint64
	Size       uint64
	Align      uint64
	Flags1     uint64
	Flags2     uint64
	ExtraData  uint64
	Type       MemberType
	Subtype    MemberSubtype
	Attributes *Attributes
}

func (i *MemberInfo) Info() *MemberInfo { return i }

// Attributes is the member's annotation bag, kept as the decoded tree.
type Attributes struct {
	raw any
}

// NewAttributes wraps a decoded attribute list.
func NewAttributes(raw any) *Attributes { return &Attributes{raw: raw} }

// Raw returns the decoded attribute tree.
func (a *Attributes) Raw() any { return a.raw }

// Len reports the number of entries when the bag is a list or object.
func (a *Attributes) Len() int {
	switch v := a.raw.(type) {
	case []any:
		return len(v)
	case map[string]any:
		return len(v)
	}
	return 0
}

// Pointer is an opaque native function address.
type Pointer uint64

func (p Pointer) String() string { return "0x" + formatHex(uint64(p)) }

// BareMember has no payload beyond MemberInfo: GUID, or a bare scalar of
// the simple numeric family recorded without a default value.
type BareMember struct {
	MemberInfo
}

// SimpleMember is a scalar with a default value.
type SimpleMember struct {
	MemberInfo
	InitValue float64
}

// VectorMember is a 2-, 3- or 4-component vector, quaternion or bool vector.
type VectorMember struct {
	MemberInfo
	InitValues []float64
}

// MatrixMember is a 3x3, 3x4 or 4x4 matrix.
type MatrixMember struct {
	MemberInfo
	InitValues []float64
}

// StringMember is any of the engine's string storage kinds.
type StringMember struct {
	MemberInfo
	MemberSize     uint64
	NamespaceIndex uint8
}

// EnumMember is an enum-typed scalar or a bitset over an enum.
type EnumMember struct {
	MemberInfo
	EnumName  Name
	InitValue int64
}

// ArrayMember wraps an element Member.
type ArrayMember struct {
	MemberInfo
	Item        Member
	AllocFlags  ArrayAllocFlags
	ArraySize   *uint64 // nil: runtime-counted storage
	CountOffset *uint64
}

// MapMember holds key and value Members.
type MapMember struct {
	MemberInfo
	Key                 Member
	Value               Member
	CreateIteratorFunc  *Pointer
	CreateInterfaceFunc *Pointer
}

// StructMember references a nested Structure; StructName nil means void.
type StructMember struct {
	MemberInfo
	StructName               *Name
	ExternalNamedResolveFunc *Pointer
	ExternalNamedGetNameFunc *Pointer
	AllocateStructFunc       *Pointer
}

func (*BareMember) Class() MemberClass   { return ClassBare }
func (*SimpleMember) Class() MemberClass { return ClassSimple }
func (*VectorMember) Class() MemberClass { return ClassVector }
func (*MatrixMember) Class() MemberClass { return ClassMatrix }
func (*StringMember) Class() MemberClass { return ClassString }
func (*EnumMember) Class() MemberClass   { return ClassEnum }
func (*ArrayMember) Class() MemberClass  { return ClassArray }
func (*MapMember) Class() MemberClass    { return ClassMap }
func (*StructMember) Class() MemberClass { return ClassStruct }

func (*BareMember) member()   {}
func (*SimpleMember) member() {}
func (*VectorMember) member() {}
func (*MatrixMember) member() {}
func (*StringMember) member() {}
func (*EnumMember) member()   {}
func (*ArrayMember) member()  {}
func (*MapMember) member()    {}
func (*StructMember) member() {}

// NumComponents is derived from the Type.
func (m *VectorMember) NumComponents() int {
	n, err := VectorComponents(m.Type)
	if err != nil {
		// constructors only admit vector types
		panic(err)
	}
	return n
}

// IsBitset distinguishes BITSET from ENUM.
func (m *EnumMember) IsBitset() bool { return m.Type == TypeBitset }

func checkClass(info MemberInfo, want MemberClass) error {
	if !info.Type.Valid() || info.Type.Class() != want {
		return fmt.Errorf("%w: %s is not a %s member", ErrTypeMismatch, info.Type, want)
	}
	return nil
}

// NewBare builds a BareMember. info.Type must be of class ClassBare or
// ClassSimple.
func NewBare(info MemberInfo) (*BareMember, error) {
	if err := checkClass(info, ClassBare); err != nil {
		if checkClass(info, ClassSimple) != nil {
			return nil, err
		}
	}
	return &BareMember{MemberInfo: info}, nil
}

// NewSimple builds a scalar member with a default value.
func NewSimple(info MemberInfo, init float64) (*SimpleMember, error) {
	if err := checkClass(info, ClassSimple); err != nil {
		return nil, err
	}
	return &SimpleMember{MemberInfo: info, InitValue: init}, nil
}

// NewVector builds a vector member; init holds one value per component.
func NewVector(info MemberInfo, init []float64) (*VectorMember, error) {
	if err := checkClass(info, ClassVector); err != nil {
		return nil, err
	}
	return &VectorMember{MemberInfo: info, InitValues: init}, nil
}

// NewMatrix builds a matrix member.
func NewMatrix(info MemberInfo, init []float64) (*MatrixMember, error) {
	if err := checkClass(info, ClassMatrix); err != nil {
		return nil, err
	}
	return &MatrixMember{MemberInfo: info, InitValues: init}, nil
}

// NewString builds a STRING member.
func NewString(info MemberInfo, memberSize uint64, namespaceIndex uint8) (*StringMember, error) {
	if err := checkClass(info, ClassString); err != nil {
		return nil, err
	}
	return &StringMember{MemberInfo: info, MemberSize: memberSize, NamespaceIndex: namespaceIndex}, nil
}

// NewEnum builds an ENUM or BITSET member.
func NewEnum(info MemberInfo, enumName Name, init int64) (*EnumMember, error) {
	if err := checkClass(info, ClassEnum); err != nil {
		return nil, err
	}
	return &EnumMember{MemberInfo: info, EnumName: enumName, InitValue: init}, nil
}

// NewArray builds an ARRAY member. item is required; a nil arraySize means
// the element count is stored at runtime.
func NewArray(info MemberInfo, item Member, alloc ArrayAllocFlags, arraySize, countOffset *uint64) (*ArrayMember, error) {
	if err := checkClass(info, ClassArray); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: array without item", ErrTypeMismatch)
	}
	return &ArrayMember{MemberInfo: info, Item: item, AllocFlags: alloc, ArraySize: arraySize, CountOffset: countOffset}, nil
}

// NewMap builds a MAP member. key and value are required.
func NewMap(info MemberInfo, key, value Member, createIterator, createInterface *Pointer) (*MapMember, error) {
	if err := checkClass(info, ClassMap); err != nil {
		return nil, err
	}
	if key == nil || value == nil {
		return nil, fmt.Errorf("%w: map without key or value", ErrTypeMismatch)
	}
	return &MapMember{MemberInfo: info, Key: key, Value: value, CreateIteratorFunc: createIterator, CreateInterfaceFunc: createInterface}, nil
}

// NewStruct builds a STRUCT member. A nil structName is an untyped member.
func NewStruct(info MemberInfo, structName *Name, resolve, getName, allocate *Pointer) (*StructMember, error) {
	if err := checkClass(info, ClassStruct); err != nil {
		return nil, err
	}
	return &StructMember{
		MemberInfo:               info,
		StructName:               structName,
		ExternalNamedResolveFunc: resolve,
		ExternalNamedGetNameFunc: getName,
		AllocateStructFunc:       allocate,
	}, nil
}

func formatHex(v uint64) string { return strconv.FormatUint(v, 16) }
