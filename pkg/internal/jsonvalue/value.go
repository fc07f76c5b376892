// Package jsonvalue holds the untyped tree produced by parsing JSON text.
//
// A tree is built fresh from the full text every time; nothing is shared
// between two parses.
package jsonvalue

import (
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is one node of a parsed JSON document.
type Value interface {
	Kind() Kind
}

// Null is the JSON null literal.
type Null struct{}

// Bool is a JSON boolean.
type Bool bool

// Number is a JSON number, kept as its literal text so that no precision is
// lost before the caller decides how to read it.
type Number string

// String is a decoded JSON string.
type String string

// Array is a JSON array.
type Array []Value

// Object is a JSON object. Keys keep the order in which they first appeared;
// a repeated key replaces the earlier value in place.
type Object struct {
	fields *orderedmap.OrderedMap[string, Value]
}

func (Null) Kind() Kind    { return KindNull }
func (Bool) Kind() Kind    { return KindBool }
func (Number) Kind() Kind  { return KindNumber }
func (String) Kind() Kind  { return KindString }
func (Array) Kind() Kind   { return KindArray }
func (*Object) Kind() Kind { return KindObject }

// Float64 converts the literal to a float64. Integers beyond 2^53 lose
// precision the same way encoding/json does.
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// Int64 converts the literal to an int64. It fails for fractional literals
// and for integers outside the int64 range.
func (n Number) Int64() (int64, error) {
	return strconv.ParseInt(string(n), 10, 64)
}

// IsInteger reports whether the literal has no fraction or exponent part.
func (n Number) IsInteger() bool {
	return !strings.ContainsAny(string(n), ".eE")
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{fields: orderedmap.New[string, Value]()}
}

// Set stores v under key.
func (o *Object) Set(key string, v Value) {
	o.fields.Set(key, v)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	return o.fields.Get(key)
}

// Len returns the number of distinct keys.
func (o *Object) Len() int {
	return o.fields.Len()
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.fields.Len())
	for pair := o.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Range calls fn for each key in insertion order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	for pair := o.fields.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}
