package walk

import (
	"bytes"
	"encoding/json"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/deepankarm/structstream/pkg/structstream/shape"
)

// Value is a typed value mapped from JSON against a shape. A nil *Value
// means absent: not yet known, which is distinct from known to be empty.
//
// Object values hold only their present fields, in declared order. List
// values hold one element per array element that mapped successfully.
type Value struct {
	kind    shape.Kind
	str     string
	num     float64
	integer int64
	boolean bool
	fields  *orderedmap.OrderedMap[string, *Value]
	items   []*Value
}

// Kind returns the shape kind the value was mapped from.
func (v *Value) Kind() shape.Kind { return v.kind }

// Str returns the value of a string or enum.
func (v *Value) Str() string { return v.str }

// Float returns the value of a number. For integers it returns the
// integer converted to float64.
func (v *Value) Float() float64 {
	if v.kind == shape.KindInteger {
		return float64(v.integer)
	}
	return v.num
}

// Int returns the value of an integer.
func (v *Value) Int() int64 { return v.integer }

// Bool returns the value of a boolean.
func (v *Value) Bool() bool { return v.boolean }

// Field returns the named field of an object, or nil if it is absent.
func (v *Value) Field(name string) *Value {
	if v == nil || v.fields == nil {
		return nil
	}
	f, _ := v.fields.Get(name)
	return f
}

// Has reports whether the named field is present.
func (v *Value) Has(name string) bool {
	return v.Field(name) != nil
}

// Keys returns the names of present fields in declared order.
func (v *Value) Keys() []string {
	if v == nil || v.fields == nil {
		return nil
	}
	keys := make([]string, 0, v.fields.Len())
	for pair := v.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Items returns the elements of a list.
func (v *Value) Items() []*Value {
	if v == nil {
		return nil
	}
	return v.items
}

// Len returns the number of list elements or present object fields.
func (v *Value) Len() int {
	switch {
	case v == nil:
		return 0
	case v.kind == shape.KindList:
		return len(v.items)
	case v.fields != nil:
		return v.fields.Len()
	default:
		return 0
	}
}

// Equal reports whether a and b hold the same tree. Two absent values are
// equal.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case shape.KindString, shape.KindEnum:
		return a.str == b.str
	case shape.KindNumber:
		return a.num == b.num
	case shape.KindInteger:
		return a.integer == b.integer
	case shape.KindBoolean:
		return a.boolean == b.boolean
	case shape.KindList:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case shape.KindObject:
		if a.Len() != b.Len() {
			return false
		}
		pb := b.fields.Oldest()
		for pa := a.fields.Oldest(); pa != nil; pa = pa.Next() {
			if pa.Key != pb.Key || !Equal(pa.Value, pb.Value) {
				return false
			}
			pb = pb.Next()
		}
		return true
	}
	return false
}

// MarshalJSON renders the value as JSON. Absent fields are omitted and
// object keys appear in declared order.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) encode(buf *bytes.Buffer) error {
	if v == nil {
		buf.WriteString("null")
		return nil
	}

	switch v.kind {
	case shape.KindString, shape.KindEnum:
		data, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(data)
	case shape.KindNumber:
		data, err := json.Marshal(v.num)
		if err != nil {
			return err
		}
		buf.Write(data)
	case shape.KindInteger:
		buf.WriteString(strconv.FormatInt(v.integer, 10))
	case shape.KindBoolean:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case shape.KindList:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case shape.KindObject:
		buf.WriteByte('{')
		if v.fields != nil {
			for pair := v.fields.Oldest(); pair != nil; pair = pair.Next() {
				if pair != v.fields.Oldest() {
					buf.WriteByte(',')
				}
				key, err := json.Marshal(pair.Key)
				if err != nil {
					return err
				}
				buf.Write(key)
				buf.WriteByte(':')
				if err := pair.Value.encode(buf); err != nil {
					return err
				}
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// String renders the value as compact JSON.
func (v *Value) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return "<invalid>"
	}
	return string(data)
}

// Interface converts the value to plain Go values: map[string]any,
// []any, string, float64, int64 and bool. Object key order is lost.
func (v *Value) Interface() any {
	if v == nil {
		return nil
	}
	switch v.kind {
	case shape.KindString, shape.KindEnum:
		return v.str
	case shape.KindNumber:
		return v.num
	case shape.KindInteger:
		return v.integer
	case shape.KindBoolean:
		return v.boolean
	case shape.KindList:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case shape.KindObject:
		out := make(map[string]any, v.Len())
		if v.fields != nil {
			for pair := v.fields.Oldest(); pair != nil; pair = pair.Next() {
				out[pair.Key] = pair.Value.Interface()
			}
		}
		return out
	}
	return nil
}

func newObject() *Value {
	return &Value{kind: shape.KindObject, fields: orderedmap.New[string, *Value]()}
}

func (v *Value) set(name string, field *Value) {
	v.fields.Set(name, field)
}
