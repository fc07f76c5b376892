package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestCatalog(t *testing.T) {
	tests := []struct {
		pm       ProviderModel
		provider string
		envVar   string
		baseURL  string
		window   int
		label    string
		dialect  Dialect
	}{
		{GPT4oMini, "OpenAI", "OPENAI_API_KEY", "https://api.openai.com/v1", 128000, "GPT-4o mini", DialectOpenAI},
		{AvalAIGPT35Turbo, "AvalAI", "AVALAI_API_KEY", "https://api.avalai.ir/v1", 16385, "GPT-3.5 Turbo", DialectOpenAI},
		{AvalAIGPT4o, "AvalAI", "AVALAI_API_KEY", "https://api.avalai.ir/v1", 128000, "GPT-4o", DialectOpenAI},
		{OpenRouterGPT4oMini, "OpenRouter", "OPENROUTER_API_KEY", "https://openrouter.ai/api/v1", 128000, "openai/gpt-4o-mini", DialectOpenAI},
		{Gemini25Flash, "Gemini", "GEMINI_API_KEY", "", 1048576, "gemini-2.5-flash", DialectGemini},
	}

	for _, tt := range tests {
		t.Run(tt.pm.Provider()+"/"+tt.pm.Model(), func(t *testing.T) {
			assert.Equal(t, tt.provider, tt.pm.Provider())
			assert.Equal(t, tt.envVar, tt.pm.APIKeyEnvVar())

			cfg := tt.pm.CreateConfig("secret")
			assert.Equal(t, tt.baseURL, cfg.BaseURL)
			assert.Equal(t, tt.pm.Model(), cfg.Model)
			assert.Equal(t, tt.window, cfg.ContextWindow)
			assert.Equal(t, tt.label, cfg.Label)
			assert.Equal(t, tt.dialect, cfg.Dialect)
			assert.Equal(t, "secret", cfg.APIKey)
		})
	}
}

func TestAvalAI_MaxTokens(t *testing.T) {
	assert.Equal(t, 4096, AvalAIGPT4oMini.CreateConfig("k").MaxTokens)
}

func TestOllama_Host(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "http://gpu-box:11434")
	cfg := OllamaLlama31.CreateConfig("")
	assert.Equal(t, "http://gpu-box:11434/v1", cfg.BaseURL)
	assert.Equal(t, "ollama", cfg.APIKey)
	assert.Empty(t, OllamaLlama31.APIKeyEnvVar())
}

func TestLookup(t *testing.T) {
	pm, err := Lookup("avalai", "gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, AvalAIGPT4o, pm)

	pm, err = Lookup("openai", "o3-mini")
	require.NoError(t, err)
	assert.Equal(t, "o3-mini", pm.Model())

	_, err = Lookup("nope", "x")
	assert.Error(t, err)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := ConfigFromEnv(GPT4o)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := ConfigFromEnv(GPT4o)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.APIKey)

	cfg, err = ConfigFromEnv(OllamaQwen25)
	require.NoError(t, err)
	assert.Equal(t, "qwen2.5:7b", cfg.Model)
}

func TestNew(t *testing.T) {
	p, err := New(context.Background(), GPT4oMini.CreateConfig("k"))
	require.NoError(t, err)
	assert.IsType(t, &OpenAIProvider{}, p)

	p, err = New(context.Background(), Gemini25Flash.CreateConfig("k"))
	require.NoError(t, err)
	assert.IsType(t, &GeminiProvider{}, p)

	_, err = New(context.Background(), Config{Dialect: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestGeminiRequest(t *testing.T) {
	temp := 0.5
	contents, config := geminiRequest(Request{
		Messages: []Message{
			{Role: RoleSystem, Content: "sys"},
			{Role: RoleUser, Content: "hello"},
			{Role: RoleAssistant, Content: "{}"},
			{Role: RoleUser, Content: "fix it"},
		},
		Schema:      map[string]any{"type": "object"},
		Strategy:    StrategyJSONSchema,
		Temperature: &temp,
	}, 2048)

	require.Len(t, contents, 3)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	assert.Equal(t, "fix it", contents[2].Parts[0].Text)

	require.NotNil(t, config.SystemInstruction)
	assert.Equal(t, "sys", config.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "application/json", config.ResponseMIMEType)
	assert.Equal(t, map[string]any{"type": "object"}, config.ResponseJsonSchema)
	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.5, *config.Temperature, 1e-6)
	assert.Equal(t, int32(2048), config.MaxOutputTokens)

	_, config = geminiRequest(Request{Strategy: StrategyPrompt}, 0)
	assert.Empty(t, config.ResponseMIMEType)
	assert.Nil(t, config.ResponseJsonSchema)
}
