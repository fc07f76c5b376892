package walk

import (
	"math"

	"github.com/deepankarm/structstream/pkg/internal/jsonvalue"
	"github.com/deepankarm/structstream/pkg/structstream/shape"
)

// Map projects raw onto s. It never fails: data that does not fit becomes
// absent rather than an error. Null and missing values are absent; an object
// shape over a non-object yields an object with no fields, and a list shape
// over a non-array yields an empty list. Unknown keys are ignored.
func Map(s *shape.Shape, raw jsonvalue.Value) *Value {
	if raw == nil {
		return nil
	}
	if _, isNull := raw.(jsonvalue.Null); isNull {
		return nil
	}

	switch s.Kind() {
	case shape.KindString:
		if str, ok := raw.(jsonvalue.String); ok {
			return &Value{kind: shape.KindString, str: string(str)}
		}

	case shape.KindEnum:
		if str, ok := raw.(jsonvalue.String); ok && s.AllowsEnumValue(string(str)) {
			return &Value{kind: shape.KindEnum, str: string(str)}
		}

	case shape.KindNumber:
		if n, ok := raw.(jsonvalue.Number); ok {
			if f, err := n.Float64(); err == nil {
				return &Value{kind: shape.KindNumber, num: f}
			}
		}

	case shape.KindInteger:
		if n, ok := raw.(jsonvalue.Number); ok {
			if i, ok := AsInteger(n); ok {
				return &Value{kind: shape.KindInteger, integer: i}
			}
		}

	case shape.KindBoolean:
		if b, ok := raw.(jsonvalue.Bool); ok {
			return &Value{kind: shape.KindBoolean, boolean: bool(b)}
		}

	case shape.KindObject:
		out := newObject()
		obj, ok := raw.(*jsonvalue.Object)
		if !ok {
			return out
		}
		for i := 0; i < s.NumFields(); i++ {
			field := s.FieldAt(i)
			fieldRaw, _ := obj.Get(field.Name)
			if mapped := Map(field.Shape, fieldRaw); mapped != nil {
				out.set(field.Name, mapped)
			}
		}
		return out

	case shape.KindList:
		out := &Value{kind: shape.KindList, items: []*Value{}}
		arr, ok := raw.(jsonvalue.Array)
		if !ok {
			return out
		}
		for _, elem := range arr {
			if mapped := Map(s.Elem(), elem); mapped != nil {
				out.items = append(out.items, mapped)
			}
		}
		return out
	}

	return nil
}

// AsInteger reads n as an int64. Integral literals are parsed exactly;
// fractional literals such as 3.0 are accepted when they hold a whole number
// that fits in an int64.
func AsInteger(n jsonvalue.Number) (int64, bool) {
	if n.IsInteger() {
		i, err := n.Int64()
		return i, err == nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
