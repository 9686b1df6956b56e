package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// treeSource replays an already decoded value as a token stream. Object keys
// are emitted in sorted order so replay is deterministic.
type treeSource struct {
	toks []Token
	pos  int
}

// NewTreeSource returns a TokenSource that walks v. Supported shapes are the
// ones produced by encoding/json, go-json and yaml.v3 decoding.
func NewTreeSource(v any) (TokenSource, error) {
	ts := &treeSource{}
	if err := ts.walk(v); err != nil {
		return nil, err
	}
	return ts, nil
}

func (t *treeSource) NextToken() (Token, error) {
	if t.pos >= len(t.toks) {
		return Token{}, io.EOF
	}
	tok := t.toks[t.pos]
	t.pos++
	return tok, nil
}

func (t *treeSource) Location() int64 { return -1 }

func (t *treeSource) emit(tok Token) {
	tok.Offset = -1
	t.toks = append(t.toks, tok)
}

func (t *treeSource) walk(v any) error {
	switch x := v.(type) {
	case nil:
		t.emit(Token{Kind: KindNull})
	case bool:
		t.emit(Token{Kind: KindBool, Bool: x})
	case string:
		t.emit(Token{Kind: KindString, String: x})
	case Number:
		t.emit(Token{Kind: KindNumber, Number: string(x)})
	case int:
		t.emit(Token{Kind: KindNumber, Number: strconv.Itoa(x)})
	case int64:
		t.emit(Token{Kind: KindNumber, Number: strconv.FormatInt(x, 10)})
	case uint64:
		t.emit(Token{Kind: KindNumber, Number: strconv.FormatUint(x, 10)})
	case float64:
		t.emit(Token{Kind: KindNumber, Number: strconv.FormatFloat(x, 'g', -1, 64)})
	case []any:
		t.emit(Token{Kind: KindBeginArray})
		for _, e := range x {
			if err := t.walk(e); err != nil {
				return err
			}
		}
		t.emit(Token{Kind: KindEndArray})
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		t.emit(Token{Kind: KindBeginObject})
		for _, k := range keys {
			t.emit(Token{Kind: KindKey, String: k})
			if err := t.walk(x[k]); err != nil {
				return err
			}
		}
		t.emit(Token{Kind: KindEndObject})
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, vv := range x {
			m[fmt.Sprint(k)] = vv
		}
		return t.walk(m)
	default:
		return fmt.Errorf("engine: unsupported value %T", v)
	}
	return nil
}

// NewYAMLBytes decodes a single YAML document and exposes it as a TokenSource.
// Hex words such as 0x0001 must be quoted in YAML, otherwise yaml.v3 reads
// them as integers and the decoder reports invalid_type.
func NewYAMLBytes(b []byte) (TokenSource, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	var node any
	if err := dec.Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return NewTreeSource(node)
}
