package pardump

import (
	"io"

	eng "github.com/reoring/pardump/internal/engine"
)

// Token describes a token in the input stream. Offset records the byte
// position when known (-1 otherwise).
type Token = eng.Token

// TokenKind enumerates JSON token kinds.
type TokenKind = eng.Kind

const (
	TokenBeginObject = eng.KindBeginObject
	TokenEndObject   = eng.KindEndObject
	TokenBeginArray  = eng.KindBeginArray
	TokenEndArray    = eng.KindEndArray
	TokenKey         = eng.KindKey
	TokenString      = eng.KindString
	TokenNumber      = eng.KindNumber
	TokenBool        = eng.KindBool
	TokenNull        = eng.KindNull
)

// Source abstracts over dump encodings. Every Source yields the same token
// stream shape regardless of the underlying format.
type Source interface {
	NextToken() (Token, error)
	Location() int64 // byte offset; -1 if unknown
}

// JSONReader wraps an io.Reader as a JSON Source backed by goccy/go-json.
func JSONReader(r io.Reader) Source { return eng.NewJSONReader(r) }

// JSONBytes wraps a byte slice as a JSON Source backed by goccy/go-json.
func JSONBytes(b []byte) Source { return eng.NewJSONBytes(b) }

// YAMLBytes decodes a YAML document. A YAML syntax error surfaces from the
// first NextToken call so callers handle both formats the same way.
func YAMLBytes(b []byte) Source {
	src, err := eng.NewYAMLBytes(b)
	if err != nil {
		return errSource{err: err}
	}
	return src
}

// ValueSource replays an already decoded tree (map[string]any, []any,
// strings, numbers, bools, nil).
func ValueSource(v any) Source {
	src, err := eng.NewTreeSource(v)
	if err != nil {
		return errSource{err: err}
	}
	return src
}

type errSource struct{ err error }

func (e errSource) NextToken() (Token, error) { return Token{}, e.err }
func (errSource) Location() int64             { return -1 }
