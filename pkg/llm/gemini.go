package llm

import (
	"context"
	"fmt"
	"iter"

	"google.golang.org/genai"
)

// GeminiProvider streams content from the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	cfg    Config
}

// NewGemini creates a Gemini provider for cfg.
func NewGemini(ctx context.Context, cfg Config) (*GeminiProvider, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" || len(cfg.Headers) > 0 {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
		if len(cfg.Headers) > 0 {
			cc.HTTPOptions.Headers = make(map[string][]string, len(cfg.Headers))
			for k, v := range cfg.Headers {
				cc.HTTPOptions.Headers[k] = []string{v}
			}
		}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client, cfg: cfg}, nil
}

// Name returns the provider name from the config.
func (p *GeminiProvider) Name() string {
	if p.cfg.Provider == "" {
		return "Gemini"
	}
	return p.cfg.Provider
}

// StreamCompletion implements Provider.
func (p *GeminiProvider) StreamCompletion(ctx context.Context, req Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		model := req.Model
		if model == "" {
			model = p.cfg.Model
		}
		contents, config := geminiRequest(req, p.cfg.MaxTokens)

		for resp, err := range p.client.Models.GenerateContentStream(ctx, model, contents, config) {
			if err != nil {
				yield("", err)
				return
			}
			for _, cand := range resp.Candidates {
				if cand.Content == nil {
					continue
				}
				for _, part := range cand.Content.Parts {
					if part.Text == "" || part.Thought {
						continue
					}
					if !yield(part.Text, nil) {
						return
					}
				}
			}
		}
	}
}

// geminiRequest converts a chat request. System messages become the system
// instruction; assistant turns use the "model" role.
func geminiRequest(req Request, defaultMaxTokens int) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{}
	var contents []*genai.Content

	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			config.SystemInstruction = genai.NewContentFromText(m.Content, genai.RoleUser)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	if req.Strategy != StrategyPrompt {
		config.ResponseMIMEType = "application/json"
	}
	if req.Strategy == StrategyJSONSchema && req.Schema != nil {
		config.ResponseJsonSchema = req.Schema
	}
	if req.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}
	return contents, config
}
