package model

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Value is a stored answer: either a scalar string or a list of strings.
type Value struct {
	scalar string
	list   []string
	isList bool
}

func Scalar(s string) Value {
	return Value{scalar: s}
}

func List(values ...string) Value {
	if values == nil {
		values = []string{}
	}
	return Value{list: values, isList: true}
}

func (v Value) IsList() bool {
	return v.isList
}

// String returns the scalar text, or the JSON array text of a list with
// ", " between items. Non-ASCII and HTML characters are written as is.
func (v Value) String() string {
	if !v.isList {
		return v.scalar
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, item := range v.list {
		if i > 0 {
			b.WriteString(", ")
		}
		ib, err := marshalJSON(item)
		if err != nil {
			return ""
		}
		b.Write(ib)
	}
	b.WriteByte(']')
	return b.String()
}

// Strings returns the list items; a scalar is a one-element list.
func (v Value) Strings() []string {
	if v.isList {
		return v.list
	}
	return []string{v.scalar}
}

func (v Value) Contains(s string) bool {
	for _, item := range v.Strings() {
		if item == s {
			return true
		}
	}
	return false
}

// Blank reports whether the value carries no answer.
func (v Value) Blank() bool {
	if v.isList {
		return len(v.list) == 0
	}
	return v.scalar == ""
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.isList {
		return marshalJSON(v.Strings())
	}
	return marshalJSON(v.scalar)
}

// UnmarshalJSON accepts strings and arrays. Any other JSON scalar is kept as
// its literal text so older rows never fail to load.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0:
		return fmt.Errorf("model: empty value")
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Scalar(s)
	case data[0] == '[':
		var items []any
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		list := make([]string, 0, len(items))
		for _, item := range items {
			list = append(list, scalarText(item))
		}
		*v = List(list...)
	case bytes.Equal(data, []byte("null")):
		*v = Scalar("")
	default:
		*v = Scalar(string(data))
	}
	return nil
}

func scalarText(item any) string {
	switch x := item.(type) {
	case string:
		return x
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	b, _ := marshalJSON(item)
	return string(b)
}

// Fields is an insertion-ordered mapping from question name to Value.
// The zero value is ready to use.
type Fields struct {
	keys   []string
	values map[string]Value
}

func (f *Fields) Set(name string, v Value) {
	if f.values == nil {
		f.values = make(map[string]Value)
	}
	if _, ok := f.values[name]; !ok {
		f.keys = append(f.keys, name)
	}
	f.values[name] = v
}

func (f *Fields) Get(name string) (Value, bool) {
	v, ok := f.values[name]
	return v, ok
}

func (f *Fields) Delete(name string) {
	if _, ok := f.values[name]; !ok {
		return
	}
	delete(f.values, name)
	for i, k := range f.keys {
		if k == name {
			f.keys = append(f.keys[:i:i], f.keys[i+1:]...)
			break
		}
	}
}

func (f *Fields) Keys() []string {
	return append([]string(nil), f.keys...)
}

func (f *Fields) Len() int {
	return len(f.keys)
}

// Lookup has the signature Predicate.Eval expects.
func (f *Fields) Lookup(name string) (Value, bool) {
	return f.Get(name)
}

func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := f.writeMembers(&buf, false); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (f *Fields) writeMembers(buf *bytes.Buffer, leadingComma bool) error {
	for i, k := range f.keys {
		if i > 0 || leadingComma {
			buf.WriteByte(',')
		}
		vb, err := f.values[k].MarshalJSON()
		if err != nil {
			return err
		}
		if err := writeMember(buf, k, vb); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalJSON restores a Fields mapping. Object member order is not kept by
// the decoder, so keys come back sorted.
func (f *Fields) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = Fields{}
	return f.setAllSorted(raw)
}

func (f *Fields) setAllSorted(raw map[string]json.RawMessage) error {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		var v Value
		if err := v.UnmarshalJSON(raw[k]); err != nil {
			return fmt.Errorf("model: field %q: %w", k, err)
		}
		f.Set(k, v)
	}
	return nil
}

func writeMember(buf *bytes.Buffer, key string, vb []byte) error {
	kb, err := marshalJSON(key)
	if err != nil {
		return err
	}
	buf.Write(kb)
	buf.WriteByte(':')
	buf.Write(vb)
	return nil
}

// marshalJSON produces compact JSON without HTML escaping.
func marshalJSON(v any) ([]byte, error) {
	return json.MarshalNoEscape(v)
}
