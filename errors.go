package pardump

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/pardump/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType          = "invalid_type"
	CodeRequired             = "required"
	CodeDuplicateKey         = "duplicate_key"
	CodeInvalidName          = "invalid_name"
	CodeDiscriminatorMissing = "discriminator_missing"
	CodeDiscriminatorUnknown = "discriminator_unknown"
	CodeOverflow             = "overflow"
	CodeParseError           = "parse_error"
	CodeTruncated            = "truncated"
)

var (
	// ErrMalformedName reports a 0x-prefixed Name whose hex digits do not parse.
	ErrMalformedName = errors.New("pardump: malformed name")
	// ErrTypeMismatch reports a Member constructor called with a Type outside
	// its variant.
	ErrTypeMismatch = errors.New("pardump: member type does not match variant")
	// ErrNotVector is returned by VectorComponents for non-vector types.
	ErrNotVector = errors.New("pardump: not a vector type")
)

// Issue represents a single decode failure.
type Issue struct {
	Path    string // JSON Pointer (for example: /structs/2/members/0/type).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: offending value, expected kind, etc.
	Cause   error  // Optional: underlying error.
}

func (it Issue) String() string {
	s := it.Code + " at " + it.Path
	if it.Message != "" && it.Message != it.Code {
		s += ": " + it.Message
	}
	if it.Hint != "" {
		s += " (" + it.Hint + ")"
	}
	return s
}

// Issues is a collection of decode errors that implements error. The decoder
// stops at the first issue, so in practice it holds one entry; the slice form
// keeps the shape callers already match on.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(iss[i].String())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the causes so errors.Is reaches sentinels such as
// ErrMalformedName.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

func issueAt(path, code, hint string, cause error) Issues {
	return Issues{{Path: path, Code: code, Message: i18n.T(code, nil), Hint: hint, Cause: cause}}
}
