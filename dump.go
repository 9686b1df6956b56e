package pardump

import "sort"

// Dump is the decoded root: labels plus every Structure and Enum.
type Dump struct {
	Game    string
	Build   string
	Structs []*Structure
	Enums   []*Enum
}

// Structure is a named aggregate with members in declaration order.
type Structure struct {
	Name    Name
	Base    *StructureBase
	Members []Member

	// Optional header fields; zero when the dump omits them.
	Size    uint64
	Align   uint64
	Flags   uint64
	Version uint64
}

// StructureBase names the base type. The name need not resolve in the dump.
type StructureBase struct {
	Name   Name
	Offset uint64
}

// Enum is a named enumeration with values in declaration order.
type Enum struct {
	Name   Name
	Values []EnumValue
	Flags  uint64
}

// EnumValue is one enumerator.
type EnumValue struct {
	Name  Name
	Value int64
}

// SortedMembers returns s.Members ordered by Offset. Members sharing an
// offset keep their declaration order.
func SortedMembers(s *Structure) []Member {
	out := make([]Member, len(s.Members))
	copy(out, s.Members)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Info().Offset < out[j].Info().Offset
	})
	return out
}

// Struct finds a Structure by Name hash.
func (d *Dump) Struct(n Name) (*Structure, bool) {
	for _, s := range d.Structs {
		if s.Name.Equal(n) {
			return s, true
		}
	}
	return nil, false
}

// Enum finds an Enum by Name hash.
func (d *Dump) Enum(n Name) (*Enum, bool) {
	for _, e := range d.Enums {
		if e.Name.Equal(n) {
			return e, true
		}
	}
	return nil, false
}

// WalkMembers calls fn for m and, depth first, every Member nested in it
// (array items, map keys and values).
func WalkMembers(m Member, fn func(Member)) {
	fn(m)
	switch v := m.(type) {
	case *ArrayMember:
		WalkMembers(v.Item, fn)
	case *MapMember:
		WalkMembers(v.Key, fn)
		WalkMembers(v.Value, fn)
	}
}
