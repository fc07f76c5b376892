package structstream

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/deepankarm/structstream/pkg/llm"
)

// FileConfig is the YAML form of an extractor configuration.
//
//	provider: avalai
//	model: gpt-4o-mini
//	max_retries: 2
//	retry_backoff: 500ms
//	attempt_timeout: 30s
type FileConfig struct {
	Provider  string `yaml:"provider" validate:"required,oneof=openai avalai ollama openrouter gemini"`
	Model     string `yaml:"model" validate:"required"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url" validate:"omitempty,url"`

	MaxRetries            *int          `yaml:"max_retries" validate:"omitempty,min=0,max=10"`
	RetryOnTransportError *bool         `yaml:"retry_on_transport_error"`
	RetryBackoff          time.Duration `yaml:"retry_backoff" validate:"min=0"`
	AttemptTimeout        time.Duration `yaml:"attempt_timeout" validate:"min=0"`
	RejectExtraFields     bool          `yaml:"reject_extra_fields"`

	Strategy     string   `yaml:"strategy" validate:"omitempty,oneof=json_schema json_object prompt"`
	SystemPrompt string   `yaml:"system_prompt"`
	Temperature  *float64 `yaml:"temperature" validate:"omitempty,min=0,max=2"`
	MaxTokens    int      `yaml:"max_tokens" validate:"min=0"`
	Concurrency  int      `yaml:"concurrency" validate:"min=0"`
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// ParseConfig decodes and validates a YAML configuration.
func ParseConfig(data []byte) (*FileConfig, error) {
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := configValidator.Struct(&fc); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &fc, nil
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// ProviderConfig resolves the provider entry from the catalog and reads the
// API key from the environment.
func (fc *FileConfig) ProviderConfig() (llm.Config, error) {
	pm, err := llm.Lookup(fc.Provider, fc.Model)
	if err != nil {
		return llm.Config{}, err
	}

	envVar := pm.APIKeyEnvVar()
	if fc.APIKeyEnv != "" {
		envVar = fc.APIKeyEnv
	}
	apiKey := ""
	if envVar != "" {
		apiKey = os.Getenv(envVar)
		if apiKey == "" {
			return llm.Config{}, fmt.Errorf("%s environment variable is required for %s", envVar, pm.Provider())
		}
	}

	cfg := pm.CreateConfig(apiKey)
	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	return cfg, nil
}

// Options converts the file settings to options. The provider's preferred
// strategy applies unless the file names one.
func (fc *FileConfig) Options(providerCfg llm.Config) []Option {
	var opts []Option
	if fc.MaxRetries != nil {
		opts = append(opts, WithMaxRetries(*fc.MaxRetries))
	}
	if fc.RetryOnTransportError != nil {
		opts = append(opts, WithRetryOnTransportError(*fc.RetryOnTransportError))
	}
	if fc.RetryBackoff > 0 {
		opts = append(opts, WithRetryBackoff(fc.RetryBackoff))
	}
	if fc.AttemptTimeout > 0 {
		opts = append(opts, WithAttemptTimeout(fc.AttemptTimeout))
	}
	if fc.RejectExtraFields {
		opts = append(opts, WithRejectExtraFields())
	}

	switch {
	case fc.Strategy != "":
		opts = append(opts, WithStrategy(llm.Strategy(fc.Strategy)))
	case providerCfg.Strategy != "":
		opts = append(opts, WithStrategy(providerCfg.Strategy))
	}

	if fc.SystemPrompt != "" {
		opts = append(opts, WithSystemPrompt(fc.SystemPrompt))
	}
	if fc.Temperature != nil {
		opts = append(opts, WithTemperature(*fc.Temperature))
	}
	if fc.MaxTokens > 0 {
		opts = append(opts, WithMaxTokens(fc.MaxTokens))
	}
	if fc.Concurrency > 0 {
		opts = append(opts, WithConcurrency(fc.Concurrency))
	}
	return opts
}

// NewFromConfig builds the provider and the Extractor described by fc.
// Options in opts are applied after the file settings.
func NewFromConfig(ctx context.Context, fc *FileConfig, opts ...Option) (*Extractor, error) {
	providerCfg, err := fc.ProviderConfig()
	if err != nil {
		return nil, err
	}
	provider, err := llm.New(ctx, providerCfg)
	if err != nil {
		return nil, err
	}
	return New(provider, append(fc.Options(providerCfg), opts...)...)
}
