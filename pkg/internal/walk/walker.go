// Package walk traverses a parsed JSON tree alongside a declared shape.
package walk

import (
	"strconv"

	"github.com/deepankarm/structstream/pkg/internal/errors"
	"github.com/deepankarm/structstream/pkg/internal/jsonvalue"
	"github.com/deepankarm/structstream/pkg/structstream/shape"
)

// ValidationError is an alias for the shared error type.
type ValidationError = errors.ValidationError

// FieldContext provides context for processing a single node during a walk.
type FieldContext struct {
	// Path is the location in the tree, e.g., ["people", "[1]", "name"]
	Path []string

	// Shape is the declared shape at this location
	Shape *shape.Shape

	// Field is the declaring object field (nil for root and list elements)
	Field *shape.FieldDef

	// Raw is the parsed JSON at this location (nil if the key is missing)
	Raw jsonvalue.Value

	// Extra lists keys present in a JSON object but not declared by its shape
	Extra []string

	// IsRoot is true for the root node being walked
	IsRoot bool
}

// Optional reports whether the node may be absent or null.
func (ctx *FieldContext) Optional() bool {
	return ctx.Field != nil && ctx.Field.Optional
}

// Processor handles nodes during a walk.
type Processor interface {
	// ProcessField is called for each node, root first.
	// Return non-nil error to stop traversal immediately.
	// To collect errors without stopping, store them internally and return nil.
	ProcessField(ctx *FieldContext) error

	// GetErrors returns any validation errors collected by this processor.
	GetErrors() []ValidationError
}

// Walker traverses a shape and a JSON tree with pluggable processors.
type Walker struct {
	processors []Processor
}

// NewWalker creates a walker with the given processors.
func NewWalker(processors ...Processor) *Walker {
	return &Walker{processors: processors}
}

// Walk visits the root and every declared descendant that the JSON tree
// actually contains with the matching container kind.
func (w *Walker) Walk(s *shape.Shape, raw jsonvalue.Value) error {
	return w.walk(&FieldContext{
		Path:   []string{},
		Shape:  s,
		Raw:    raw,
		IsRoot: true,
	})
}

func (w *Walker) walk(ctx *FieldContext) error {
	obj, isObject := ctx.Raw.(*jsonvalue.Object)
	if ctx.Shape.Kind() == shape.KindObject && isObject {
		ctx.Extra = extraKeys(ctx.Shape, obj)
	}

	for _, p := range w.processors {
		if err := p.ProcessField(ctx); err != nil {
			return err
		}
	}

	switch ctx.Shape.Kind() {
	case shape.KindObject:
		if !isObject {
			return nil
		}
		for i := 0; i < ctx.Shape.NumFields(); i++ {
			field := ctx.Shape.FieldAt(i)
			raw, _ := obj.Get(field.Name)
			child := &FieldContext{
				Path:  appendPath(ctx.Path, field.Name),
				Shape: field.Shape,
				Field: &field,
				Raw:   raw,
			}
			if err := w.walk(child); err != nil {
				return err
			}
		}

	case shape.KindList:
		arr, ok := ctx.Raw.(jsonvalue.Array)
		if !ok {
			return nil
		}
		for i, elem := range arr {
			child := &FieldContext{
				Path:  appendPathIndex(ctx.Path, i),
				Shape: ctx.Shape.Elem(),
				Raw:   elem,
			}
			if err := w.walk(child); err != nil {
				return err
			}
		}
	}

	return nil
}

// Errors collects all errors from all processors.
func (w *Walker) Errors() []ValidationError {
	var errs []ValidationError
	for _, p := range w.processors {
		errs = append(errs, p.GetErrors()...)
	}
	return errs
}

func extraKeys(s *shape.Shape, obj *jsonvalue.Object) []string {
	var extra []string
	obj.Range(func(key string, _ jsonvalue.Value) bool {
		if _, declared := s.Lookup(key); !declared {
			extra = append(extra, key)
		}
		return true
	})
	return extra
}

// appendPath appends a field name to the path.
func appendPath(path []string, name string) []string {
	result := make([]string, len(path)+1)
	copy(result, path)
	result[len(path)] = name
	return result
}

// appendPathIndex appends an array index to the path.
func appendPathIndex(path []string, index int) []string {
	result := make([]string, len(path)+1)
	copy(result, path)
	result[len(path)] = "[" + strconv.Itoa(index) + "]"
	return result
}
