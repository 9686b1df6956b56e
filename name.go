package pardump

import (
	"fmt"
	"strconv"
	"strings"
)

// Name is a type or field identifier. It always carries a 32-bit hash and,
// when the original text could be recovered, the string it was hashed from.
// Identity is the hash alone: two Names with equal hashes link to the same
// place whether or not either knows its string.
type Name struct {
	hash  uint32
	str   string
	known bool
}

// NameFromString returns a known-string Name hashed with Hash.
func NameFromString(s string) Name {
	return Name{hash: Hash(s), str: s, known: true}
}

// NameFromHash returns a hash-only Name.
func NameFromHash(h uint32) Name {
	return Name{hash: h}
}

// ParseName decodes the textual form used in dumps: "0x" followed by hex
// digits is a hash-only Name, anything else is a known string.
func ParseName(s string) (Name, error) {
	if hex, ok := strings.CutPrefix(s, "0x"); ok {
		h, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Name{}, fmt.Errorf("%w: %q", ErrMalformedName, s)
		}
		return NameFromHash(uint32(h)), nil
	}
	return NameFromString(s), nil
}

// Hash returns the 32-bit identity.
func (n Name) Hash() uint32 { return n.hash }

// Known reports whether the Name carries its original string.
func (n Name) Known() bool { return n.known }

// String returns the display text: the known string, or 0x%08X.
func (n Name) String() string {
	if n.known {
		return n.str
	}
	return fmt.Sprintf("0x%08X", n.hash)
}

// Anchor is the hash as eight upper-case hex digits without prefix.
func (n Name) Anchor() string {
	return fmt.Sprintf("%08X", n.hash)
}

// Equal compares by hash.
func (n Name) Equal(o Name) bool { return n.hash == o.hash }

// MarshalText encodes the display text.
func (n Name) MarshalText() ([]byte, error) { return []byte(n.String()), nil }

// UnmarshalText decodes with ParseName.
func (n *Name) UnmarshalText(b []byte) error {
	v, err := ParseName(string(b))
	if err != nil {
		return err
	}
	*n = v
	return nil
}

// Hash is the engine's string hash: Jenkins one-at-a-time over the bytes of
// s with ASCII upper case folded to lower case.
func Hash(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		h += uint32(c)
		h += h << 10
		h ^= h >> 6
	}
	h += h << 3
	h ^= h >> 11
	h += h << 15
	return h
}
