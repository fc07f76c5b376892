package valid

import "github.com/deepankarm/structstream/pkg/structstream/shape"

// Minimal valid cases - just enough to verify no false positives.

var Character = shape.Object(
	shape.Field("name", shape.String(), shape.Instruction("Just the first name.")),
	shape.Field("rank", shape.String(), shape.Optional()),
)

// The same name in different objects is fine
var Squad = shape.Object(
	shape.Field("name", shape.String()),
	shape.Field("members", shape.List(Character)),
)

// Enum values are case-sensitive
var Level = shape.Enum("low", "Low", "LOW")

// Values from a slice are not checked
var levels = []string{"a", "a"}

var Spread = shape.Enum(levels...)

// Field names that are not constants are not checked
func Dynamic(a, b string) *shape.Shape {
	return shape.Object(
		shape.Field(a, shape.String()),
		shape.Field(b, shape.String()),
	)
}

// ───────────────────────────────────────────────────────────────────────────
// nolint directive
// ───────────────────────────────────────────────────────────────────────────

//nolint:shapelint
var Suppressed = shape.Enum()

var SuppressedInline = shape.Enum("x", "x") //nolint:shapelint
