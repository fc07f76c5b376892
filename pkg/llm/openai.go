package llm

import (
	"context"
	"iter"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/deepankarm/structstream/pkg/structstream/shape"
)

// OpenAIProvider streams chat completions from any OpenAI-compatible API.
type OpenAIProvider struct {
	client openai.Client
	cfg    Config
}

// NewOpenAI creates a provider for cfg. Retries are left to the caller, so
// the SDK's own retry loop is disabled. Extra request options are applied
// last.
func NewOpenAI(cfg Config, opts ...option.RequestOption) *OpenAIProvider {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	for k, v := range cfg.Headers {
		reqOpts = append(reqOpts, option.WithHeader(k, v))
	}
	reqOpts = append(reqOpts, opts...)

	return &OpenAIProvider{
		client: openai.NewClient(reqOpts...),
		cfg:    cfg,
	}
}

// Name returns the provider name from the config.
func (p *OpenAIProvider) Name() string {
	if p.cfg.Provider == "" {
		return "OpenAI"
	}
	return p.cfg.Provider
}

// StreamCompletion implements Provider.
func (p *OpenAIProvider) StreamCompletion(ctx context.Context, req Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stream := p.client.Chat.Completions.NewStreaming(ctx, p.params(req))
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			if delta := chunk.Choices[0].Delta.Content; delta != "" {
				if !yield(delta, nil) {
					return
				}
			}
		}
		if err := stream.Err(); err != nil {
			yield("", err)
		}
	}
}

func (p *OpenAIProvider) params(req Request) openai.ChatCompletionNewParams {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.cfg.MaxTokens
	}
	if maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(maxTokens))
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	switch req.Strategy {
	case StrategyJSONSchema:
		if req.Schema != nil {
			name := req.SchemaName
			if name == "" {
				name = "response"
			}
			params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
					JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
						Name:   name,
						Schema: shape.TransformForOpenAI(req.Schema),
						Strict: openai.Bool(true),
					},
				},
			}
		}
	case StrategyJSONObject:
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}

	return params
}
