package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// kind discriminates the closed set of canonical value shapes.
type kind uint8

const (
	kindAbsent kind = iota
	kindNull
	kindBool
	kindInt
	kindFloat
	kindString
	kindList
	kindMap
)

// Value is a canonicalizable structured value: one of null, bool, integer,
// float, string, ordered list, or string-keyed object.
//
// Values are built through the constructor functions (Null, Bool, Int,
// Float, String, List, Map) or adapted from native Go data with FromAny.
// Whether an empty collection is an object or a list is fixed by the
// constructor used, never inferred from shape.
type Value struct {
	kind    kind
	b       bool
	i       int64
	f       float64
	s       string
	list    []Value
	entries []Entry
}

// Entry is a single object field. Map preserves entry order only to
// resolve duplicate keys (last write wins); encoding sorts keys.
type Entry struct {
	Key   string
	Value Value
}

// Field builds an object entry.
func Field(key string, value Value) Entry {
	return Entry{Key: key, Value: value}
}

// Absent returns the field-omission marker. An object field whose value is
// Absent is dropped entirely during encoding. Absent is distinct from Null:
// a null field is retained and rendered as "null".
func Absent() Value { return Value{kind: kindAbsent} }

// Null returns the canonical null value.
func Null() Value { return Value{kind: kindNull} }

// Bool returns a canonical boolean.
func Bool(b bool) Value { return Value{kind: kindBool, b: b} }

// Int returns a canonical integer.
func Int(i int64) Value { return Value{kind: kindInt, i: i} }

// Float returns a canonical floating-point number. NaN and ±Infinity are
// representable here but rejected by Encode with ErrNonFiniteNumber.
func Float(f float64) Value { return Value{kind: kindFloat, f: f} }

// String returns a canonical string. Unicode normalization happens during
// encoding; invalid UTF-8 is rejected there with ErrNormalization.
func String(s string) Value { return Value{kind: kindString, s: s} }

// List returns a canonical list. Element order is preserved.
func List(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}

	return Value{kind: kindList, list: elems}
}

// Map returns a canonical object. Keys are NFC-normalized during encoding;
// when two entries normalize to the same key, the later entry wins.
func Map(entries ...Entry) Value {
	if entries == nil {
		entries = []Entry{}
	}

	return Value{kind: kindMap, entries: entries}
}

// Encode renders v as its canonical string: minified, object keys sorted
// bytewise, strings NFC-normalized, numbers in plain decimal form.
//
// It returns ErrNonFiniteNumber for NaN or infinite floats,
// ErrNormalization for invalid UTF-8, and ErrUnsupportedType when the
// Absent marker appears anywhere other than as an object field value.
func Encode(v Value) (string, error) {
	var b strings.Builder

	if err := encodeValue(&b, v); err != nil {
		return "", err
	}

	return b.String(), nil
}

func encodeValue(b *strings.Builder, v Value) error {
	switch v.kind {
	case kindNull:
		b.WriteString("null")
		return nil

	case kindBool:
		if v.b {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}

		return nil

	case kindInt:
		b.WriteString(strconv.FormatInt(v.i, 10))
		return nil

	case kindFloat:
		return encodeFloat(b, v.f)

	case kindString:
		s, err := normalizeString(v.s)
		if err != nil {
			return err
		}

		writeEscaped(b, s)

		return nil

	case kindList:
		b.WriteByte('[')

		for i, elem := range v.list {
			if i > 0 {
				b.WriteByte(',')
			}

			if err := encodeValue(b, elem); err != nil {
				return err
			}
		}

		b.WriteByte(']')

		return nil

	case kindMap:
		return encodeMap(b, v.entries)

	case kindAbsent:
		return fmt.Errorf("%w: absent marker outside an object field", ErrUnsupportedType)

	default:
		return fmt.Errorf("%w: unknown value kind", ErrUnsupportedType)
	}
}

// encodeFloat renders a float in plain decimal form: no exponent notation,
// no superfluous trailing zeros, whole values as plain integers. Every
// zero representation (including negative zero) renders as "0".
func encodeFloat(b *strings.Builder, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: %v", ErrNonFiniteNumber, f)
	}

	if f == 0 {
		b.WriteByte('0')
		return nil
	}

	b.WriteString(strconv.FormatFloat(f, 'f', -1, 64))

	return nil
}

// encodeMap drops Absent fields, resolves duplicate normalized keys with
// last write wins, sorts the survivors bytewise, and renders the object.
func encodeMap(b *strings.Builder, entries []Entry) error {
	fields := make(map[string]Value, len(entries))
	keys := make([]string, 0, len(entries))

	for _, e := range entries {
		key, err := normalizeString(e.Key)
		if err != nil {
			return err
		}

		if e.Value.kind == kindAbsent {
			// Absent overrides an earlier entry with the same key.
			if _, seen := fields[key]; seen {
				delete(fields, key)

				for i, k := range keys {
					if k == key {
						keys = append(keys[:i], keys[i+1:]...)
						break
					}
				}
			}

			continue
		}

		if _, seen := fields[key]; !seen {
			keys = append(keys, key)
		}

		fields[key] = e.Value
	}

	sort.Strings(keys)

	b.WriteByte('{')

	for i, key := range keys {
		if i > 0 {
			b.WriteByte(',')
		}

		writeEscaped(b, key)
		b.WriteByte(':')

		if err := encodeValue(b, fields[key]); err != nil {
			return err
		}
	}

	b.WriteByte('}')

	return nil
}

// normalizeString validates UTF-8 and applies Unicode canonical
// composition (NFC).
func normalizeString(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("%w: invalid utf-8 string", ErrNormalization)
	}

	return norm.NFC.String(s), nil
}

// writeEscaped writes s as a JSON string. Only the short control escapes
// and the remaining C0 range are escaped; all other characters pass
// through verbatim, so non-ASCII Unicode is not \u-escaped.
func writeEscaped(b *strings.Builder, s string) {
	b.WriteByte('"')

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if c < 0x20 {
				fmt.Fprintf(b, `\u%04x`, c)
				continue
			}

			b.WriteByte(c)
		}
	}

	b.WriteByte('"')
}

// FromAny adapts native Go data to a canonical Value. Supported inputs are
// nil, bool, string, the built-in numeric kinds, json.Number, []any,
// map[string]any, and Value itself (returned unchanged).
//
// The empty-collection ambiguity is resolved here by the Go type: an empty
// map[string]any becomes an empty object, an empty []any an empty list.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case Value:
		return val, nil

	case nil:
		return Null(), nil

	case bool:
		return Bool(val), nil

	case string:
		return String(val), nil

	case json.Number:
		if i, err := strconv.ParseInt(string(val), 10, 64); err == nil {
			return Int(i), nil
		}

		f, err := strconv.ParseFloat(string(val), 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: malformed number %q", ErrUnsupportedType, string(val))
		}

		return Float(f), nil

	case int:
		return Int(int64(val)), nil
	case int8:
		return Int(int64(val)), nil
	case int16:
		return Int(int64(val)), nil
	case int32:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case uint:
		return fromUint(uint64(val))
	case uint8:
		return Int(int64(val)), nil
	case uint16:
		return Int(int64(val)), nil
	case uint32:
		return Int(int64(val)), nil
	case uint64:
		return fromUint(val)

	case float32:
		return Float(float64(val)), nil
	case float64:
		return Float(val), nil

	case []any:
		elems := make([]Value, 0, len(val))

		for _, item := range val {
			elem, err := FromAny(item)
			if err != nil {
				return Value{}, err
			}

			elems = append(elems, elem)
		}

		return List(elems...), nil

	case map[string]any:
		entries := make([]Entry, 0, len(val))

		for key, item := range val {
			field, err := FromAny(item)
			if err != nil {
				return Value{}, err
			}

			entries = append(entries, Entry{Key: key, Value: field})
		}

		return Map(entries...), nil

	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, fmt.Errorf("%w: unsigned integer %d overflows canonical integer range", ErrUnsupportedType, u)
	}

	return Int(int64(u)), nil
}

// ParseJSON decodes JSON into a canonical Value. Integers are preserved
// exactly rather than forced through float64.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, fmt.Errorf("canonical: parse json: %w", err)
	}

	return FromAny(raw)
}

// EncodeJSON is a convenience that parses JSON and returns its canonical
// rendering.
func EncodeJSON(data []byte) (string, error) {
	v, err := ParseJSON(data)
	if err != nil {
		return "", err
	}

	return Encode(v)
}
