// Package llm is the boundary to language model providers: a Provider turns
// a chat request into a sequence of text deltas.
package llm

import (
	"context"
	"iter"
)

// Role of a chat message author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    Role
	Content string
}

// Strategy selects how the output schema is communicated to the model.
type Strategy string

const (
	// StrategyJSONSchema asks the provider to enforce the schema.
	StrategyJSONSchema Strategy = "json_schema"
	// StrategyJSONObject enables JSON mode; the schema is only in the prompt.
	StrategyJSONObject Strategy = "json_object"
	// StrategyPrompt relies on the prompt alone.
	StrategyPrompt Strategy = "prompt"
)

// Request is a streaming completion request.
type Request struct {
	Model    string
	Messages []Message

	// Schema is a JSON Schema map, used with StrategyJSONSchema.
	Schema     map[string]any
	SchemaName string
	Strategy   Strategy

	// Temperature is left to the provider default when nil.
	Temperature *float64
	MaxTokens   int
}

// Provider streams completions. The returned sequence yields text deltas in
// order; a non-nil error ends the sequence. Stopping the iteration early
// releases the underlying connection.
type Provider interface {
	Name() string
	StreamCompletion(ctx context.Context, req Request) iter.Seq2[string, error]
}
