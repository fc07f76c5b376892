package invalid

import "github.com/deepankarm/structstream/pkg/structstream/shape"

// ───────────────────────────────────────────────────────────────────────────
// Duplicate field names
// ───────────────────────────────────────────────────────────────────────────

var Person = shape.Object(
	shape.Field("name", shape.String()),
	shape.Field("bio", shape.String()),
	shape.Field("name", shape.String(), shape.Optional()), // want `duplicate field "name" in shape.Object`
)

const ageField = "age"

var Patient = shape.Object(
	shape.Field("age", shape.Integer()),
	shape.Field(ageField, shape.Number()), // want `duplicate field "age" in shape.Object`
)

// Nested objects are checked on their own
var Order = shape.Object(
	shape.Field("id", shape.Integer()),
	shape.Field("items", shape.List(shape.Object(
		shape.Field("sku", shape.String()),
		shape.Field("sku", shape.String()), // want `duplicate field "sku" in shape.Object`
	))),
)

// ───────────────────────────────────────────────────────────────────────────
// Empty field names
// ───────────────────────────────────────────────────────────────────────────

var Anonymous = shape.Object(
	shape.Field("", shape.String()), // want `shape.Field has an empty name`
)

// ───────────────────────────────────────────────────────────────────────────
// Enums
// ───────────────────────────────────────────────────────────────────────────

var Status = shape.Enum() // want `shape.Enum requires at least one value`

var Currency = shape.Enum("USD", "EUR", "USD") // want `duplicate enum value "USD" in shape.Enum`
