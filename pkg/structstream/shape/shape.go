// Package shape declares the structure an extraction should produce.
//
// Shapes are built bottom-up from constructors and never change afterwards,
// so every shape tree is finite and acyclic:
//
//	person := shape.Object(
//	    shape.Field("name", shape.String()),
//	    shape.Field("bio", shape.String(), shape.Instruction("one sentence")),
//	    shape.Field("age", shape.Integer(), shape.Optional()),
//	)
//	people := shape.List(person)
package shape

import (
	"fmt"
	"slices"
)

// Kind identifies the variant of a Shape.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindInteger
	KindBoolean
	KindEnum
	KindObject
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindEnum:
		return "enum"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// IsScalar reports whether k is a leaf kind.
func (k Kind) IsScalar() bool {
	return k != KindObject && k != KindList
}

// Shape describes a target value.
type Shape struct {
	kind        Kind
	description string
	enum        []string
	elem        *Shape
	fields      []FieldDef
	index       map[string]int
}

// FieldDef is one declared field of an object shape.
type FieldDef struct {
	Name        string
	Shape       *Shape
	Optional    bool
	Instruction string
}

// FieldOption configures a FieldDef.
type FieldOption interface {
	apply(*FieldDef)
}

type fieldOptionFunc func(*FieldDef)

func (f fieldOptionFunc) apply(d *FieldDef) { f(d) }

// Optional marks a field that may be absent or null in the final output.
func Optional() FieldOption {
	return fieldOptionFunc(func(d *FieldDef) { d.Optional = true })
}

// Instruction attaches a free-text hint for the model, rendered as the
// field's description in the JSON schema.
func Instruction(text string) FieldOption {
	return fieldOptionFunc(func(d *FieldDef) { d.Instruction = text })
}

// String returns a string shape.
func String() *Shape { return &Shape{kind: KindString} }

// Number returns a numeric shape decoded as float64.
func Number() *Shape { return &Shape{kind: KindNumber} }

// Integer returns a numeric shape that only accepts integral values and
// decodes them to int64 without going through float64.
func Integer() *Shape { return &Shape{kind: KindInteger} }

// Boolean returns a boolean shape.
func Boolean() *Shape { return &Shape{kind: KindBoolean} }

// Enum returns a string shape restricted to values. Matching is exact and
// case-sensitive. It panics if values is empty.
func Enum(values ...string) *Shape {
	if len(values) == 0 {
		panic("shape: Enum requires at least one value")
	}
	return &Shape{kind: KindEnum, enum: slices.Clone(values)}
}

// List returns a shape for an ordered sequence of elem.
func List(elem *Shape) *Shape {
	if elem == nil {
		panic("shape: List element shape is nil")
	}
	return &Shape{kind: KindList, elem: elem}
}

// Object returns a shape with the given fields in declaration order.
// It panics on a duplicate field name or a field without a shape.
func Object(fields ...FieldDef) *Shape {
	s := &Shape{
		kind:   KindObject,
		fields: slices.Clone(fields),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.Shape == nil {
			panic(fmt.Sprintf("shape: field %q has no shape", f.Name))
		}
		if _, dup := s.index[f.Name]; dup {
			panic(fmt.Sprintf("shape: duplicate field %q", f.Name))
		}
		s.index[f.Name] = i
	}
	return s
}

// Field declares a named field for Object.
func Field(name string, s *Shape, opts ...FieldOption) FieldDef {
	d := FieldDef{Name: name, Shape: s}
	for _, opt := range opts {
		opt.apply(&d)
	}
	return d
}

// Describe returns a copy of s carrying a description.
func (s *Shape) Describe(text string) *Shape {
	c := *s
	c.description = text
	return &c
}

// Kind returns the variant of s.
func (s *Shape) Kind() Kind { return s.kind }

// Description returns the text set with Describe.
func (s *Shape) Description() string { return s.description }

// Elem returns the element shape of a list, or nil.
func (s *Shape) Elem() *Shape { return s.elem }

// Fields returns the declared fields of an object in order.
func (s *Shape) Fields() []FieldDef { return slices.Clone(s.fields) }

// NumFields returns the number of declared fields.
func (s *Shape) NumFields() int { return len(s.fields) }

// FieldAt returns the i-th declared field.
func (s *Shape) FieldAt(i int) FieldDef { return s.fields[i] }

// Lookup returns the declared field called name.
func (s *Shape) Lookup(name string) (FieldDef, bool) {
	i, ok := s.index[name]
	if !ok {
		return FieldDef{}, false
	}
	return s.fields[i], true
}

// EnumValues returns the allowed values of an enum shape.
func (s *Shape) EnumValues() []string { return slices.Clone(s.enum) }

// AllowsEnumValue reports whether v is one of the enum values.
func (s *Shape) AllowsEnumValue(v string) bool {
	return slices.Contains(s.enum, v)
}

// TypeName is the name used for s in validation messages.
func (s *Shape) TypeName() string {
	switch s.kind {
	case KindEnum:
		return "string"
	case KindList:
		return "array"
	default:
		return s.kind.String()
	}
}
