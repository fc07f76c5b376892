package structstream

import (
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/deepankarm/structstream/pkg/llm"
)

const instrumentationName = "github.com/deepankarm/structstream"

// DefaultMaxRetries is the number of additional attempts after the first.
const DefaultMaxRetries = 2

// Option configures an Extractor, a StreamParser or Validate. Options that do
// not apply to the component they are passed to are ignored.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

type config struct {
	maxRetries            int
	retryOnTransportError bool
	retryBackoff          time.Duration
	attemptTimeout        time.Duration
	rejectExtra           bool
	systemPrompt          string
	model                 string
	strategy              llm.Strategy
	temperature           *float64
	maxTokens             int
	concurrency           int

	logger         zerolog.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

func newConfig(opts []Option) *config {
	cfg := &config{
		maxRetries:            DefaultMaxRetries,
		retryOnTransportError: true,
		strategy:              llm.StrategyJSONSchema,
		concurrency:           4,
		logger:                zerolog.Nop(),
	}
	for _, opt := range opts {
		opt.apply(cfg)
	}
	if cfg.tracerProvider == nil {
		cfg.tracerProvider = otel.GetTracerProvider()
	}
	if cfg.meterProvider == nil {
		cfg.meterProvider = otel.GetMeterProvider()
	}
	return cfg
}

// WithMaxRetries sets the number of additional attempts after the first.
// Negative values are treated as zero.
func WithMaxRetries(n int) Option {
	return optionFunc(func(c *config) { c.maxRetries = max(n, 0) })
}

// WithRetryOnTransportError controls whether a failed provider stream counts
// as a retryable attempt (the default) or fails the extraction immediately.
func WithRetryOnTransportError(retry bool) Option {
	return optionFunc(func(c *config) { c.retryOnTransportError = retry })
}

// WithRetryBackoff waits d before each retry.
func WithRetryBackoff(d time.Duration) Option {
	return optionFunc(func(c *config) { c.retryBackoff = d })
}

// WithAttemptTimeout bounds each provider call. An attempt that runs out of
// time fails like a transport error and may be retried.
func WithAttemptTimeout(d time.Duration) Option {
	return optionFunc(func(c *config) { c.attemptTimeout = d })
}

// WithRejectExtraFields makes the final validation report undeclared object
// keys as errors. By default they are ignored.
func WithRejectExtraFields() Option {
	return optionFunc(func(c *config) { c.rejectExtra = true })
}

// WithSystemPrompt replaces the built-in system prompt.
func WithSystemPrompt(prompt string) Option {
	return optionFunc(func(c *config) { c.systemPrompt = prompt })
}

// WithModel overrides the model sent with each request.
func WithModel(model string) Option {
	return optionFunc(func(c *config) { c.model = model })
}

// WithStrategy selects how the schema is communicated to the provider.
func WithStrategy(s llm.Strategy) Option {
	return optionFunc(func(c *config) { c.strategy = s })
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return optionFunc(func(c *config) { c.temperature = &t })
}

// WithMaxTokens limits the length of each completion.
func WithMaxTokens(n int) Option {
	return optionFunc(func(c *config) { c.maxTokens = n })
}

// WithConcurrency bounds the number of extractions ExtractAll runs at once.
func WithConcurrency(n int) Option {
	return optionFunc(func(c *config) { c.concurrency = max(n, 1) })
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return optionFunc(func(c *config) { c.logger = l })
}

// WithTracerProvider sets the tracer provider. The global provider is used
// by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return optionFunc(func(c *config) { c.tracerProvider = tp })
}

// WithMeterProvider sets the meter provider. The global provider is used by
// default.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return optionFunc(func(c *config) { c.meterProvider = mp })
}
