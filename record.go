package pardump

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	eng "github.com/reoring/pardump/internal/engine"
)

// record is one buffered JSON object plus its JSON Pointer. All lookups go
// through the map, so the order fields arrived in never matters.
type record struct {
	m    map[string]any
	path string
}

func asRecord(v any, path string) (record, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return record{}, issueAt(pointer(path), CodeInvalidType, "expected object, got "+kindOf(v), nil)
	}
	return record{m: m, path: path}, nil
}

func (r record) at(key string) string { return r.path + "/" + eng.EscapePointerToken(key) }

// lookup returns the value for key; null counts as absent.
func (r record) lookup(key string) (any, bool) {
	v, ok := r.m[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (r record) missing(key string) error {
	return issueAt(r.at(key), CodeRequired, key, nil)
}

func (r record) wrongKind(key, want string, got any) error {
	return issueAt(r.at(key), CodeInvalidType, "expected "+want+", got "+kindOf(got), nil)
}

func (r record) str(key string) (string, error) {
	v, ok := r.lookup(key)
	if !ok {
		return "", r.missing(key)
	}
	s, ok := v.(string)
	if !ok {
		return "", r.wrongKind(key, "string", v)
	}
	return s, nil
}

func (r record) name(key string) (Name, error) {
	s, err := r.str(key)
	if err != nil {
		return Name{}, err
	}
	n, err := ParseName(s)
	if err != nil {
		return Name{}, issueAt(r.at(key), CodeInvalidName, s, err)
	}
	return n, nil
}

func (r record) optName(key string) (*Name, error) {
	if _, ok := r.lookup(key); !ok {
		return nil, nil
	}
	n, err := r.name(key)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r record) uint(key string) (uint64, error) {
	v, ok := r.lookup(key)
	if !ok {
		return 0, r.missing(key)
	}
	return toUint(v, r.at(key))
}

func (r record) optUint(key string) (*uint64, error) {
	if _, ok := r.lookup(key); !ok {
		return nil, nil
	}
	u, err := r.uint(key)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// optUintOr returns def when key is absent.
func (r record) optUintOr(key string, def uint64) (uint64, error) {
	p, err := r.optUint(key)
	if err != nil || p == nil {
		return def, err
	}
	return *p, nil
}

func (r record) int(key string) (int64, error) {
	v, ok := r.lookup(key)
	if !ok {
		return 0, r.missing(key)
	}
	return toInt(v, r.at(key))
}

func (r record) float(key string) (float64, error) {
	v, ok := r.lookup(key)
	if !ok {
		return 0, r.missing(key)
	}
	return toFloat(v, r.at(key))
}

func (r record) floats(key string) ([]float64, error) {
	arr, err := r.array(key)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(arr))
	for i, v := range arr {
		f, err := toFloat(v, r.at(key)+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// hex reads a flag word written as hex text, 0x prefix optional.
func (r record) hex(key string) (uint64, error) {
	v, ok := r.lookup(key)
	if !ok {
		return 0, r.missing(key)
	}
	return toHex(v, r.at(key))
}

func (r record) optHexOr(key string, def uint64) (uint64, error) {
	if _, ok := r.lookup(key); !ok {
		return def, nil
	}
	return r.hex(key)
}

func (r record) optPointer(key string) (*Pointer, error) {
	if _, ok := r.lookup(key); !ok {
		return nil, nil
	}
	u, err := r.hex(key)
	if err != nil {
		return nil, err
	}
	p := Pointer(u)
	return &p, nil
}

func (r record) array(key string) ([]any, error) {
	v, ok := r.lookup(key)
	if !ok {
		return nil, r.missing(key)
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, r.wrongKind(key, "array", v)
	}
	return arr, nil
}

func (r record) object(key string) (record, error) {
	v, ok := r.lookup(key)
	if !ok {
		return record{}, r.missing(key)
	}
	return asRecord(v, r.at(key))
}

// ---- primitive conversions ----

func numberText(v any) (string, bool) {
	switch n := v.(type) {
	case eng.Number:
		return string(n), true
	case int:
		return strconv.Itoa(n), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64), true
	}
	return "", false
}

func toUint(v any, path string) (uint64, error) {
	s, ok := numberText(v)
	if !ok {
		return 0, issueAt(path, CodeInvalidType, "expected unsigned integer, got "+kindOf(v), nil)
	}
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, numErr(path, "unsigned integer", s, err)
	}
	return u, nil
}

func toInt(v any, path string) (int64, error) {
	s, ok := numberText(v)
	if !ok {
		return 0, issueAt(path, CodeInvalidType, "expected integer, got "+kindOf(v), nil)
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, numErr(path, "integer", s, err)
	}
	return i, nil
}

func toFloat(v any, path string) (float64, error) {
	if s, ok := v.(string); ok {
		// named literals as written by .NET serializers
		switch s {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
		return 0, issueAt(path, CodeInvalidType, "expected number, got string", nil)
	}
	s, ok := numberText(v)
	if !ok {
		return 0, issueAt(path, CodeInvalidType, "expected number, got "+kindOf(v), nil)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, numErr(path, "number", s, err)
	}
	return f, nil
}

func toHex(v any, path string) (uint64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, issueAt(path, CodeInvalidType, "expected hex string, got "+kindOf(v), nil)
	}
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	u, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, numErr(path, "hex string", s, err)
	}
	return u, nil
}

func numErr(path, want, got string, err error) error {
	if errors.Is(err, strconv.ErrRange) {
		return issueAt(path, CodeOverflow, got, err)
	}
	return issueAt(path, CodeInvalidType, "expected "+want+", got "+strconv.Quote(got), err)
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	if _, ok := numberText(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

func pointer(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
