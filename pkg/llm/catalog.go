package llm

import (
	"context"
	"fmt"
	"os"
)

// Dialect is the wire protocol a provider speaks.
type Dialect string

const (
	DialectOpenAI Dialect = "openai"
	DialectGemini Dialect = "gemini"
)

// Config describes how to reach one model.
type Config struct {
	BaseURL       string
	Model         string
	ContextWindow int
	Label         string
	Provider      string
	Dialect       Dialect
	Strategy      Strategy
	APIKey        string
	Headers       map[string]string
	MaxTokens     int
	DocURL        string
}

// ProviderModel is one entry of the model catalog.
type ProviderModel interface {
	Provider() string
	Model() string
	// APIKeyEnvVar names the environment variable holding the key, or ""
	// when the provider needs none.
	APIKeyEnvVar() string
	CreateConfig(apiKey string) Config
}

// OpenAI models.
type OpenAI string

const (
	GPT4o     OpenAI = "gpt-4o"
	GPT4oMini OpenAI = "gpt-4o-mini"
	GPT41     OpenAI = "gpt-4.1"
	GPT41Mini OpenAI = "gpt-4.1-mini"
)

func (m OpenAI) Provider() string     { return "OpenAI" }
func (m OpenAI) Model() string        { return string(m) }
func (m OpenAI) APIKeyEnvVar() string { return "OPENAI_API_KEY" }

func (m OpenAI) CreateConfig(apiKey string) Config {
	labels := map[OpenAI]string{
		GPT4o:     "GPT-4o",
		GPT4oMini: "GPT-4o mini",
		GPT41:     "GPT-4.1",
		GPT41Mini: "GPT-4.1 mini",
	}
	window := 128000
	if m == GPT41 || m == GPT41Mini {
		window = 1047576
	}
	return Config{
		BaseURL:       "https://api.openai.com/v1",
		Model:         string(m),
		ContextWindow: window,
		Label:         labelOr(labels[m], string(m)),
		Provider:      m.Provider(),
		Dialect:       DialectOpenAI,
		Strategy:      StrategyJSONSchema,
		APIKey:        apiKey,
		DocURL:        "https://platform.openai.com/docs/models",
	}
}

// AvalAI models, served through an OpenAI-compatible API.
type AvalAI string

const (
	AvalAIGPT35Turbo AvalAI = "gpt-3.5-turbo"
	AvalAIGPT4Turbo  AvalAI = "gpt-4-turbo"
	AvalAIGPT4o      AvalAI = "gpt-4o"
	AvalAIGPT4oMini  AvalAI = "gpt-4o-mini"
)

func (m AvalAI) Provider() string     { return "AvalAI" }
func (m AvalAI) Model() string        { return string(m) }
func (m AvalAI) APIKeyEnvVar() string { return "AVALAI_API_KEY" }

func (m AvalAI) CreateConfig(apiKey string) Config {
	labels := map[AvalAI]string{
		AvalAIGPT35Turbo: "GPT-3.5 Turbo",
		AvalAIGPT4Turbo:  "GPT-4 Turbo",
		AvalAIGPT4o:      "GPT-4o",
		AvalAIGPT4oMini:  "GPT-4o mini",
	}
	window := 128000
	if m == AvalAIGPT35Turbo {
		window = 16385
	}
	return Config{
		BaseURL:       "https://api.avalai.ir/v1",
		Model:         string(m),
		ContextWindow: window,
		Label:         labelOr(labels[m], string(m)),
		Provider:      m.Provider(),
		Dialect:       DialectOpenAI,
		Strategy:      StrategyJSONObject,
		APIKey:        apiKey,
		MaxTokens:     4096,
		DocURL:        "https://avalai.ir/blog/how-to-use-avalai-api-keys/",
	}
}

// Ollama models served locally through the OpenAI-compatible endpoint.
type Ollama string

const (
	OllamaLlama31 Ollama = "llama3.1:8b"
	OllamaQwen25  Ollama = "qwen2.5:7b"
	OllamaMistral Ollama = "mistral:7b"
)

func (m Ollama) Provider() string     { return "Ollama" }
func (m Ollama) Model() string        { return string(m) }
func (m Ollama) APIKeyEnvVar() string { return "" }

func (m Ollama) CreateConfig(apiKey string) Config {
	baseURL := os.Getenv("OLLAMA_HOST")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return Config{
		BaseURL:       baseURL + "/v1",
		Model:         string(m),
		ContextWindow: 32768,
		Label:         string(m),
		Provider:      m.Provider(),
		Dialect:       DialectOpenAI,
		Strategy:      StrategyJSONObject,
		APIKey:        labelOr(apiKey, "ollama"),
		DocURL:        "https://ollama.com/library",
	}
}

// OpenRouter models, addressed by their routed name.
type OpenRouter string

const (
	OpenRouterClaudeSonnet OpenRouter = "anthropic/claude-3.5-sonnet"
	OpenRouterLlama70B     OpenRouter = "meta-llama/llama-3.1-70b-instruct"
	OpenRouterGPT4oMini    OpenRouter = "openai/gpt-4o-mini"
)

func (m OpenRouter) Provider() string     { return "OpenRouter" }
func (m OpenRouter) Model() string        { return string(m) }
func (m OpenRouter) APIKeyEnvVar() string { return "OPENROUTER_API_KEY" }

func (m OpenRouter) CreateConfig(apiKey string) Config {
	return Config{
		BaseURL:       "https://openrouter.ai/api/v1",
		Model:         string(m),
		ContextWindow: 128000,
		Label:         string(m),
		Provider:      m.Provider(),
		Dialect:       DialectOpenAI,
		Strategy:      StrategyJSONObject,
		APIKey:        apiKey,
		Headers:       map[string]string{"X-Title": "structstream"},
		DocURL:        "https://openrouter.ai/models",
	}
}

// Gemini models.
type Gemini string

const (
	Gemini25Flash Gemini = "gemini-2.5-flash"
	Gemini25Pro   Gemini = "gemini-2.5-pro"
)

func (m Gemini) Provider() string     { return "Gemini" }
func (m Gemini) Model() string        { return string(m) }
func (m Gemini) APIKeyEnvVar() string { return "GEMINI_API_KEY" }

func (m Gemini) CreateConfig(apiKey string) Config {
	return Config{
		Model:         string(m),
		ContextWindow: 1048576,
		Label:         string(m),
		Provider:      m.Provider(),
		Dialect:       DialectGemini,
		Strategy:      StrategyJSONSchema,
		APIKey:        apiKey,
		DocURL:        "https://ai.google.dev/gemini-api/docs/models",
	}
}

// Lookup resolves a provider name and model name to a catalog entry.
// Models missing from the catalog are accepted as-is for known providers.
func Lookup(provider, model string) (ProviderModel, error) {
	switch provider {
	case "openai":
		return OpenAI(model), nil
	case "avalai":
		return AvalAI(model), nil
	case "ollama":
		return Ollama(model), nil
	case "openrouter":
		return OpenRouter(model), nil
	case "gemini":
		return Gemini(model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

// ConfigFromEnv creates the config for pm, reading its API key from the
// environment.
func ConfigFromEnv(pm ProviderModel) (Config, error) {
	envVar := pm.APIKeyEnvVar()
	if envVar == "" {
		return pm.CreateConfig(""), nil
	}
	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		return Config{}, fmt.Errorf("%s environment variable is required for %s", envVar, pm.Provider())
	}
	return pm.CreateConfig(apiKey), nil
}

// New builds the transport for cfg.
func New(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Dialect {
	case DialectOpenAI, "":
		return NewOpenAI(cfg), nil
	case DialectGemini:
		return NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported dialect %q", cfg.Dialect)
	}
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}
