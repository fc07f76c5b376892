package structstream

import (
	"github.com/deepankarm/structstream/pkg/internal/jsonvalue"
	"github.com/deepankarm/structstream/pkg/internal/partialjson"
	"github.com/deepankarm/structstream/pkg/internal/walk"
	"github.com/deepankarm/structstream/pkg/structstream/shape"
)

// Value is a typed value mapped from JSON against a shape. A nil *Value is
// absent: not yet known, as opposed to known to be empty.
type Value = walk.Value

// Equal reports whether a and b hold the same tree.
func Equal(a, b *Value) bool {
	return walk.Equal(a, b)
}

// Map projects already-parsed JSON text onto s without validating it.
// It fails only if data is not well-formed JSON.
func Map(s *shape.Shape, data []byte) (*Value, error) {
	raw, err := jsonvalue.Parse(partialjson.StripFences(data))
	if err != nil {
		return nil, err
	}
	return walk.Map(s, raw), nil
}

// walkPartial completes, parses and maps a possibly truncated buffer.
// An error means this buffer cannot be used; the caller keeps its previous
// value.
func walkPartial(s *shape.Shape, data []byte) (*Value, *PartialState, error) {
	result := partialjson.Complete(partialjson.StripFences(data))

	raw, err := jsonvalue.Parse(result.Repaired)
	if err != nil {
		return nil, nil, err
	}
	return walk.Map(s, raw), buildPartialStateFromPaths(result.Incomplete, result.TruncatedAt), nil
}

// walkStrict parses complete text with no repair and validates it.
func walkStrict(s *shape.Shape, data []byte, rejectExtra bool) (*Value, ValidationErrors) {
	raw, err := jsonvalue.ParseStrict(partialjson.StripFences(data))
	if err != nil {
		return nil, ValidationErrors{{
			Loc:     []string{},
			Message: err.Error(),
			Type:    ErrorTypeJSONDecode,
		}}
	}
	return walk.Decode(s, raw, rejectExtra)
}
