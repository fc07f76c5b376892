package partialjson

// Truncation reasons reported in ParseResult.TruncatedAt.
const (
	TruncatedComplete = "complete"
	TruncatedString   = "string"
	TruncatedKey      = "key"
	TruncatedValue    = "value"
	TruncatedObject   = "object"
	TruncatedArray    = "array"
)

// ParseResult contains the completed JSON and metadata about what's incomplete.
type ParseResult struct {
	// Repaired is syntactically valid JSON: the longest structurally complete
	// prefix of the input with open strings and containers closed.
	Repaired []byte

	// Incomplete tracks which JSON paths are truncated
	// e.g., ["tasks", "[1]", "title"] means tasks[1].title was cut off
	Incomplete [][]string

	// TruncatedAt indicates where the input was cut off
	// "string" | "array" | "object" | "key" | "value" | "complete"
	TruncatedAt string
}

// IsComplete reports whether the root value was fully present in the input.
func (r *ParseResult) IsComplete() bool {
	return r.TruncatedAt == TruncatedComplete
}
