package pardump

import "strings"

// MemberType is the primary discriminant of a Member. Values follow the
// engine's declaration order.
type MemberType int

const (
	TypeBool MemberType = iota
	TypeChar
	TypeUChar
	TypeShort
	TypeUShort
	TypeInt
	TypeUInt
	TypeFloat
	TypeVector2
	TypeVector3
	TypeVector4
	TypeString
	TypeStruct
	TypeArray
	TypeEnum
	TypeBitset
	TypeMap
	TypeMatrix34
	TypeMatrix44
	TypeVec2V
	TypeVec3V
	TypeVec4V
	TypeMat33V
	TypeMat34V
	TypeMat44V
	TypeScalarV
	TypeBoolV
	TypeVecBoolV
	TypePtrdiffT
	TypeSizeT
	TypeFloat16
	TypeInt64
	TypeUInt64
	TypeDouble
	TypeGUID
	TypeVec2F
	TypeQuatV

	numMemberTypes
)

var memberTypeNames = [numMemberTypes]string{
	"BOOL", "CHAR", "UCHAR", "SHORT", "USHORT", "INT", "UINT", "FLOAT",
	"VECTOR2", "VECTOR3", "VECTOR4", "STRING", "STRUCT", "ARRAY", "ENUM",
	"BITSET", "MAP", "MATRIX34", "MATRIX44", "VEC2V", "VEC3V", "VEC4V",
	"MAT33V", "MAT34V", "MAT44V", "SCALARV", "BOOLV", "VECBOOLV", "PTRDIFFT",
	"SIZET", "FLOAT16", "INT64", "UINT64", "DOUBLE", "GUID", "VEC2F", "QUATV",
}

func (t MemberType) String() string {
	if t < 0 || t >= numMemberTypes {
		return "UNKNOWN"
	}
	return memberTypeNames[t]
}

// Valid reports whether t is one of the known discriminants.
func (t MemberType) Valid() bool { return t >= 0 && t < numMemberTypes }

// ParseMemberType maps a wire name such as "VECTOR3" to its MemberType.
func ParseMemberType(s string) (MemberType, bool) {
	for i, n := range memberTypeNames {
		if n == s {
			return MemberType(i), true
		}
	}
	return 0, false
}

// MemberClass groups Types by payload shape; each class has one Member variant.
type MemberClass int

const (
	ClassBare MemberClass = iota
	ClassSimple
	ClassVector
	ClassMatrix
	ClassString
	ClassEnum
	ClassArray
	ClassMap
	ClassStruct
)

func (c MemberClass) String() string {
	switch c {
	case ClassBare:
		return "bare"
	case ClassSimple:
		return "simple"
	case ClassVector:
		return "vector"
	case ClassMatrix:
		return "matrix"
	case ClassString:
		return "string"
	case ClassEnum:
		return "enum"
	case ClassArray:
		return "array"
	case ClassMap:
		return "map"
	case ClassStruct:
		return "struct"
	}
	return "unknown"
}

// Class returns the payload class selected by t.
func (t MemberType) Class() MemberClass {
	switch t {
	case TypeBool, TypeChar, TypeUChar, TypeShort, TypeUShort, TypeInt, TypeUInt,
		TypeFloat, TypeScalarV, TypeBoolV, TypePtrdiffT, TypeSizeT, TypeFloat16,
		TypeInt64, TypeUInt64, TypeDouble:
		return ClassSimple
	case TypeVector2, TypeVector3, TypeVector4, TypeVec2V, TypeVec3V, TypeVec4V,
		TypeVec2F, TypeQuatV, TypeVecBoolV:
		return ClassVector
	case TypeMatrix34, TypeMatrix44, TypeMat33V, TypeMat34V, TypeMat44V:
		return ClassMatrix
	case TypeString:
		return ClassString
	case TypeEnum, TypeBitset:
		return ClassEnum
	case TypeArray:
		return ClassArray
	case TypeMap:
		return ClassMap
	case TypeStruct:
		return ClassStruct
	}
	return ClassBare
}

// VectorComponents returns how many init values a vector Type carries.
func VectorComponents(t MemberType) (int, error) {
	switch t {
	case TypeVec2V, TypeVector2, TypeVec2F:
		return 2, nil
	case TypeVec3V, TypeVector3:
		return 3, nil
	case TypeVec4V, TypeVector4, TypeQuatV, TypeVecBoolV:
		return 4, nil
	}
	return 0, ErrNotVector
}

// MemberSubtype refines a MemberType. Several engine subtype families share
// names (POINTER is both an array and a string subtype); they collapse onto
// one value here.
type MemberSubtype int

const (
	SubtypeNone MemberSubtype = iota

	// common
	SubtypeColor
	SubtypeAngle

	// array
	SubtypeAtArray
	SubtypeAtFixedArray
	SubtypeAtRangeArray
	SubtypePointer
	SubtypeMember
	Subtype0x2087BB00
	SubtypePointerWithCount
	SubtypePointerWithCount8BitIdx
	SubtypePointerWithCount16BitIdx
	SubtypeVirtual

	// enum and bitset
	Subtype64Bit
	Subtype32Bit
	Subtype16Bit
	Subtype8Bit
	SubtypeAtBitset

	// map
	SubtypeAtMap
	SubtypeAtBinaryMap

	// string
	SubtypeConstString
	SubtypeAtString
	SubtypeWideMember
	SubtypeWidePointer
	SubtypeAtWideString
	SubtypeAtNonFinalHashString
	SubtypeAtFinalHashString
	SubtypeAtHashValue
	SubtypeAtPartialHashValue
	SubtypeAtNsHashString
	SubtypeAtNsHashValue
	SubtypeAtHashValue16U

	// struct
	SubtypeStructure
	SubtypeExternalNamed
	SubtypeExternalNamedUserNull
	SubtypeSimplePointer

	// guid
	Subtype0xDF7EBE85

	numMemberSubtypes
)

var memberSubtypeNames = [numMemberSubtypes]string{
	"NONE",
	"COLOR", "ANGLE",
	"ATARRAY", "ATFIXEDARRAY", "ATRANGEARRAY", "POINTER", "MEMBER", "0x2087BB00",
	"POINTER_WITH_COUNT", "POINTER_WITH_COUNT_8BIT_IDX", "POINTER_WITH_COUNT_16BIT_IDX", "VIRTUAL",
	"64BIT", "32BIT", "16BIT", "8BIT", "ATBITSET",
	"ATMAP", "ATBINARYMAP",
	"CONST_STRING", "ATSTRING", "WIDE_MEMBER", "WIDE_POINTER", "ATWIDESTRING",
	"ATNONFINALHASHSTRING", "ATFINALHASHSTRING", "ATHASHVALUE", "ATPARTIALHASHVALUE",
	"ATNSHASHSTRING", "ATNSHASHVALUE", "ATHASHVALUE16U",
	"STRUCTURE", "EXTERNAL_NAMED", "EXTERNAL_NAMED_USERNULL", "SIMPLE_POINTER",
	"0xDF7EBE85",
}

func (s MemberSubtype) String() string {
	if s < 0 || s >= numMemberSubtypes {
		return "UNKNOWN"
	}
	return memberSubtypeNames[s]
}

// ParseMemberSubtype maps a wire name to its MemberSubtype. Names that start
// with a digit or 0x are accepted with or without a leading underscore.
func ParseMemberSubtype(s string) (MemberSubtype, bool) {
	s = strings.TrimPrefix(s, "_")
	for i, n := range memberSubtypeNames {
		if n == s {
			return MemberSubtype(i), true
		}
	}
	return 0, false
}

// ArrayAllocFlags are the allocator bits of an array member.
type ArrayAllocFlags uint16

const (
	AllocUsePhysicalAllocator ArrayAllocFlags = 1 << 0
)

func (f ArrayAllocFlags) String() string {
	if f == 0 {
		return "0"
	}
	var parts []string
	if f&AllocUsePhysicalAllocator != 0 {
		parts = append(parts, "USE_PHYSICAL_ALLOCATOR")
		f &^= AllocUsePhysicalAllocator
	}
	if f != 0 {
		parts = append(parts, "0x"+strings.ToUpper(formatHex(uint64(f))))
	}
	return strings.Join(parts, "|")
}
