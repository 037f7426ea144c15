package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Value Kinds
// --------------------------------------------------------------------------

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindMap
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Value (closed tagged variant)
// --------------------------------------------------------------------------

// Field is a named entry of a map value. Inside a map, names are unique.
type Field struct {
	Name  string
	Value Value
}

// Value is a bin value of dynamic type. The zero value is null.
//
// Numbers keep their textual form so that a value read from JSON is
// written back byte for byte. Maps keep the insertion order of their fields.
type Value struct {
	kind   Kind
	text   string // string content or number literal
	flag   bool
	fields []Field
	items  []Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, text: s} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// Int returns an integer number value.
func Int(i int64) Value { return Value{kind: KindNumber, text: strconv.FormatInt(i, 10)} }

// Float returns a floating point number value. NaN and infinities have no
// JSON form and are mapped to null.
func Float(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return Value{kind: KindNumber, text: strconv.FormatFloat(f, 'f', -1, 64)}
}

// Number returns a number value from its literal text. The text must be a
// valid JSON number.
func Number(literal string) (Value, error) {
	if !isJSONNumber(literal) {
		return Value{}, fmt.Errorf("invalid number %q", literal)
	}
	return Value{kind: KindNumber, text: literal}, nil
}

// Map returns a map value with the given fields. Later fields with an
// already used name replace the earlier value but keep its position.
func Map(fields ...Field) Value {
	v := Value{kind: KindMap, fields: make([]Field, 0, len(fields))}
	for _, f := range fields {
		v.set(f.Name, f.Value)
	}
	return v
}

// List returns a list value.
func List(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindList, items: cp}
}

// Kind returns the variant of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsStructure reports whether the value is a map or a list.
func (v Value) IsStructure() bool { return v.kind == KindMap || v.kind == KindList }

// Str returns the string content of a string value.
func (v Value) Str() (string, bool) { return v.text, v.kind == KindString }

// BoolValue returns the content of a boolean value.
func (v Value) BoolValue() (bool, bool) { return v.flag, v.kind == KindBool }

// NumberText returns the literal of a number value.
func (v Value) NumberText() (string, bool) { return v.text, v.kind == KindNumber }

// Int64 returns the number as an integer if it has an exact integer form.
func (v Value) Int64() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	i, err := strconv.ParseInt(v.text, 10, 64)
	return i, err == nil
}

// Float64 returns the number as a float.
func (v Value) Float64() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.text, 64)
	return f, err == nil
}

// Fields returns the fields of a map value in order.
func (v Value) Fields() []Field { return v.fields }

// Items returns the items of a list value.
func (v Value) Items() []Value { return v.items }

// Len returns the number of fields or items of a structure, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindMap:
		return len(v.fields)
	case KindList:
		return len(v.items)
	default:
		return 0
	}
}

// Get returns a field of a map value.
func (v Value) Get(name string) (Value, bool) {
	for _, f := range v.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// set writes a field, keeping the position of an existing one.
func (v *Value) set(name string, val Value) {
	for i := range v.fields {
		if v.fields[i].Name == name {
			v.fields[i].Value = val
			return
		}
	}
	v.fields = append(v.fields, Field{Name: name, Value: val})
}

// Clone returns a deep copy of the value.
func (v Value) Clone() Value {
	out := Value{kind: v.kind, text: v.text, flag: v.flag}
	if v.fields != nil {
		out.fields = make([]Field, len(v.fields))
		for i, f := range v.fields {
			out.fields[i] = Field{Name: f.Name, Value: f.Value.Clone()}
		}
	}
	if v.items != nil {
		out.items = make([]Value, len(v.items))
		for i, it := range v.items {
			out.items[i] = it.Clone()
		}
	}
	return out
}

// Equal reports whether two values are structurally equal, including field order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString, KindNumber:
		return v.text == o.text
	case KindBool:
		return v.flag == o.flag
	case KindMap:
		if len(v.fields) != len(o.fields) {
			return false
		}
		for i := range v.fields {
			if v.fields[i].Name != o.fields[i].Name || !v.fields[i].Value.Equal(o.fields[i].Value) {
				return false
			}
		}
		return true
	case KindList:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// --------------------------------------------------------------------------
// JSON encoding
// --------------------------------------------------------------------------

// MarshalJSON writes the canonical compact JSON form of the value.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Canonical returns the canonical compact JSON text of the value.
func (v Value) Canonical() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.flag))
	case KindNumber:
		buf.WriteString(v.text)
	case KindString:
		return writeJSONString(buf, v.text)
	case KindMap:
		buf.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, f.Name); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := f.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case KindList:
		buf.WriteByte('[')
		for i, it := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := it.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("unknown value kind %d", v.kind)
	}
	return nil
}

// writeJSONString quotes s without HTML escaping.
func writeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// UnmarshalJSON decodes any JSON document, preserving object key order.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseJSON decodes a single JSON document into a Value.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Value{kind: KindNumber, text: t.String()}, nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '{':
			out := Value{kind: KindMap, fields: []Field{}}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				name, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("invalid object key %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				out.set(name, val)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return out, nil
		case '[':
			out := Value{kind: KindList, items: []Value{}}
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				out.items = append(out.items, val)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return out, nil
		}
	}
	return Value{}, fmt.Errorf("unexpected JSON token %v", tok)
}

func isJSONNumber(s string) bool {
	if s == "" {
		return false
	}
	var n json.Number
	if err := json.Unmarshal([]byte(s), &n); err != nil {
		return false
	}
	return n.String() == s
}

// --------------------------------------------------------------------------
// Conversion from and to native Go values
// --------------------------------------------------------------------------

// FromNative converts a value produced by a database driver or by
// encoding/json into a Value. Maps with non string keys use the formatted
// key; maps without order are sorted by key.
func FromNative(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return Value{kind: KindNumber, text: strconv.FormatUint(uint64(t), 10)}
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint64:
		return Value{kind: KindNumber, text: strconv.FormatUint(t, 10)}
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case json.Number:
		return Value{kind: KindNumber, text: t.String()}
	case []byte:
		items := make([]Value, len(t))
		for i, b := range t {
			items[i] = Int(int64(b))
		}
		return Value{kind: KindList, items: items}
	case []any:
		items := make([]Value, len(t))
		for i, it := range t {
			items[i] = FromNative(it)
		}
		return Value{kind: KindList, items: items}
	case map[string]any:
		names := make([]string, 0, len(t))
		for k := range t {
			names = append(names, k)
		}
		sort.Strings(names)
		out := Value{kind: KindMap, fields: make([]Field, 0, len(t))}
		for _, k := range names {
			out.fields = append(out.fields, Field{Name: k, Value: FromNative(t[k])})
		}
		return out
	case map[any]any:
		names := make([]string, 0, len(t))
		byName := make(map[string]any, len(t))
		for k, val := range t {
			name := fmt.Sprint(k)
			names = append(names, name)
			byName[name] = val
		}
		sort.Strings(names)
		out := Value{kind: KindMap, fields: make([]Field, 0, len(t))}
		for _, k := range names {
			out.fields = append(out.fields, Field{Name: k, Value: FromNative(byName[k])})
		}
		return out
	case fmt.Stringer:
		return String(t.String())
	default:
		return String(fmt.Sprint(t))
	}
}

// ToNative converts the value to plain Go types: nil, string, bool, int64 or
// float64, []any and map[string]any.
func (v Value) ToNative() any {
	switch v.kind {
	case KindString:
		return v.text
	case KindBool:
		return v.flag
	case KindNumber:
		if i, ok := v.Int64(); ok {
			return i
		}
		if f, ok := v.Float64(); ok {
			return f
		}
		return v.text
	case KindMap:
		out := make(map[string]any, len(v.fields))
		for _, f := range v.fields {
			out[f.Name] = f.Value.ToNative()
		}
		return out
	case KindList:
		out := make([]any, len(v.items))
		for i, it := range v.items {
			out[i] = it.ToNative()
		}
		return out
	default:
		return nil
	}
}

// natural returns the string form of a scalar value.
func (v Value) natural() string {
	switch v.kind {
	case KindString, KindNumber:
		return v.text
	case KindBool:
		return strconv.FormatBool(v.flag)
	default:
		return strings.TrimSpace(v.Canonical())
	}
}
