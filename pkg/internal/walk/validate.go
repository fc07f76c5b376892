package walk

import (
	"fmt"
	"strings"

	"github.com/deepankarm/structstream/pkg/internal/errors"
	"github.com/deepankarm/structstream/pkg/internal/jsonvalue"
	"github.com/deepankarm/structstream/pkg/structstream/shape"
)

// ValidateProcessor checks presence and kind of every declared node.
// It collects all errors rather than stopping at the first one.
type ValidateProcessor struct {
	Errors []ValidationError

	// RejectExtra reports undeclared object keys as errors.
	RejectExtra bool
}

// NewValidateProcessor creates a new validation processor.
func NewValidateProcessor(rejectExtra bool) *ValidateProcessor {
	return &ValidateProcessor{
		Errors:      make([]ValidationError, 0),
		RejectExtra: rejectExtra,
	}
}

// GetErrors returns collected validation errors.
func (p *ValidateProcessor) GetErrors() []ValidationError {
	return p.Errors
}

// ProcessField validates a single node.
func (p *ValidateProcessor) ProcessField(ctx *FieldContext) error {
	if ctx.Raw == nil {
		if !ctx.Optional() {
			p.add(ctx.Path, errors.ErrorTypeRequired, "missing required field")
		}
		return nil
	}

	if _, isNull := ctx.Raw.(jsonvalue.Null); isNull && ctx.Optional() {
		return nil
	}

	s := ctx.Shape
	switch s.Kind() {
	case shape.KindString:
		p.expectKind(ctx, jsonvalue.KindString)

	case shape.KindNumber:
		if !p.expectKind(ctx, jsonvalue.KindNumber) {
			return nil
		}
		if _, err := ctx.Raw.(jsonvalue.Number).Float64(); err != nil {
			p.add(ctx.Path, errors.ErrorTypeMismatch, "number out of range")
		}

	case shape.KindBoolean:
		p.expectKind(ctx, jsonvalue.KindBool)

	case shape.KindInteger:
		n, ok := ctx.Raw.(jsonvalue.Number)
		if !ok {
			p.mismatch(ctx)
			return nil
		}
		if _, ok := AsInteger(n); !ok {
			p.add(ctx.Path, errors.ErrorTypeMismatch, fmt.Sprintf("expected integer, got %s", n))
		}

	case shape.KindEnum:
		str, ok := ctx.Raw.(jsonvalue.String)
		if !ok {
			p.mismatch(ctx)
			return nil
		}
		if !s.AllowsEnumValue(string(str)) {
			p.add(ctx.Path, errors.ErrorTypeEnum, fmt.Sprintf("expected one of [%s], got %q",
				strings.Join(s.EnumValues(), ", "), string(str)))
		}

	case shape.KindObject:
		if !p.expectKind(ctx, jsonvalue.KindObject) {
			return nil
		}
		if p.RejectExtra {
			for _, key := range ctx.Extra {
				p.add(appendPath(ctx.Path, key), errors.ErrorTypeExtraForbidden, "extra field not permitted")
			}
		}

	case shape.KindList:
		p.expectKind(ctx, jsonvalue.KindArray)
	}

	return nil
}

func (p *ValidateProcessor) expectKind(ctx *FieldContext, want jsonvalue.Kind) bool {
	if ctx.Raw.Kind() == want {
		return true
	}
	p.mismatch(ctx)
	return false
}

func (p *ValidateProcessor) mismatch(ctx *FieldContext) {
	p.add(ctx.Path, errors.ErrorTypeMismatch,
		fmt.Sprintf("expected %s, got %s", ctx.Shape.TypeName(), ctx.Raw.Kind()))
}

func (p *ValidateProcessor) add(loc []string, typ errors.ErrorType, msg string) {
	p.Errors = append(p.Errors, ValidationError{
		Loc:     loc,
		Message: msg,
		Type:    typ,
	})
}

// Validate strictly checks raw against s and returns every error found.
func Validate(s *shape.Shape, raw jsonvalue.Value, rejectExtra bool) errors.ValidationErrors {
	w := NewWalker(NewValidateProcessor(rejectExtra))
	if err := w.Walk(s, raw); err != nil {
		return errors.ValidationErrors{{
			Loc:     []string{},
			Message: err.Error(),
			Type:    errors.ErrorTypeInternal,
		}}
	}
	if errs := w.Errors(); len(errs) > 0 {
		return errs
	}
	return nil
}

// Decode validates raw against s and, when it is valid, returns the mapped
// value. Null for an optional field is treated as absent.
func Decode(s *shape.Shape, raw jsonvalue.Value, rejectExtra bool) (*Value, errors.ValidationErrors) {
	if errs := Validate(s, raw, rejectExtra); len(errs) > 0 {
		return nil, errs
	}
	return Map(s, raw), nil
}
