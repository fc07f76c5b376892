package structstream

import (
	"github.com/deepankarm/structstream/pkg/internal/partialjson"
)

// PartialState tracks how much of the streamed document has arrived.
type PartialState struct {
	// IsComplete is true once the root JSON value has been fully received
	IsComplete bool

	// TruncatedAt indicates where the input was cut off
	// "string" | "array" | "object" | "key" | "value" | "complete"
	TruncatedAt string

	// IncompleteFields lists fields that were truncated
	IncompleteFields []IncompleteField
}

// IncompleteField describes a single incomplete field.
type IncompleteField struct {
	// Path to the field, e.g., ["people", "[1]", "bio"]
	Path []string

	// JSONPath as string, e.g., "people[1].bio"
	JSONPath string
}

// IsFieldComplete reports whether the field at path and all of its parents
// have been fully received.
func (ps *PartialState) IsFieldComplete(path ...string) bool {
	if ps.IsComplete {
		return true
	}
	paths := make([][]string, len(ps.IncompleteFields))
	for i, f := range ps.IncompleteFields {
		paths[i] = f.Path
	}
	return !partialjson.NewPathSet(paths).Covers(path)
}

// WaitingFor returns JSON paths of fields that are incomplete.
// Useful for UI: "Waiting for: people[1].bio..."
func (ps *PartialState) WaitingFor() []string {
	if ps.IsComplete {
		return nil
	}

	result := make([]string, 0, len(ps.IncompleteFields))
	for _, field := range ps.IncompleteFields {
		result = append(result, field.JSONPath)
	}
	return result
}

// buildPartialStateFromPaths converts completer output to a PartialState.
func buildPartialStateFromPaths(incompletePaths [][]string, truncatedAt string) *PartialState {
	partialState := &PartialState{
		IsComplete:       truncatedAt == partialjson.TruncatedComplete,
		TruncatedAt:      truncatedAt,
		IncompleteFields: make([]IncompleteField, 0, len(incompletePaths)),
	}

	for _, path := range incompletePaths {
		partialState.IncompleteFields = append(partialState.IncompleteFields, IncompleteField{
			Path:     path,
			JSONPath: partialjson.JoinPath(path),
		})
	}

	return partialState
}
