package structstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/deepankarm/structstream/pkg/llm"
	"github.com/deepankarm/structstream/pkg/structstream/shape"
)

// State is the position of an extraction in its retry cycle.
type State int

const (
	StateAttempting State = iota
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAttempting:
		return "attempting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Result is a successful extraction.
type Result struct {
	ID       string
	Value    *Value
	Raw      string
	Attempts int
	Duration time.Duration
}

// Extractor runs extractions against a provider. It holds no per-extraction
// state and is safe for concurrent use.
type Extractor struct {
	provider llm.Provider
	cfg      *config
	tracer   trace.Tracer
	metrics  *extractorMetrics
}

type extractorMetrics struct {
	// attempts increments for every request sent to the provider
	attempts metric.Int64Counter

	// validationFailures increments when a completed stream fails validation
	validationFailures metric.Int64Counter

	// transportFailures increments when the provider stream fails
	transportFailures metric.Int64Counter
}

// New creates an Extractor for provider.
func New(provider llm.Provider, opts ...Option) (*Extractor, error) {
	if provider == nil {
		return nil, errors.New("structstream: provider is nil")
	}
	cfg := newConfig(opts)

	metrics, err := newExtractorMetrics(cfg.meterProvider.Meter(instrumentationName))
	if err != nil {
		return nil, err
	}

	return &Extractor{
		provider: provider,
		cfg:      cfg,
		tracer:   cfg.tracerProvider.Tracer(instrumentationName),
		metrics:  metrics,
	}, nil
}

func newExtractorMetrics(meter metric.Meter) (*extractorMetrics, error) {
	m := &extractorMetrics{}
	var err error

	m.attempts, err = meter.Int64Counter(
		"structstream.attempts",
		metric.WithDescription("Number of extraction attempts sent to the provider"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create attempts counter: %w", err)
	}

	m.validationFailures, err = meter.Int64Counter(
		"structstream.validation_failures",
		metric.WithDescription("Number of attempts whose output failed validation"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create validation failures counter: %w", err)
	}

	m.transportFailures, err = meter.Int64Counter(
		"structstream.transport_failures",
		metric.WithDescription("Number of attempts that failed in the provider stream"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create transport failures counter: %w", err)
	}

	return m, nil
}

// Extract asks the provider for a value of shape s extracted from text.
//
// onChunk, if not nil, receives the best-effort partial value whenever it
// changes while a response streams in. A retry starts again from an empty
// value. When every attempt fails the error is an *ExtractionError carrying
// the last validation report. If ctx is cancelled, no further chunks are
// emitted, the output is not validated, and ctx.Err() is returned.
//
// A logger attached to ctx with zerolog's WithContext is used instead of the
// configured one.
func (e *Extractor) Extract(ctx context.Context, s *shape.Shape, text string, onChunk func(*Value)) (*Result, error) {
	id := uuid.NewString()
	start := time.Now()
	base := e.cfg.logger
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		base = *l
	}
	logger := base.With().
		Str("extraction_id", id).
		Str("provider", e.provider.Name()).
		Logger()

	ctx, span := e.tracer.Start(ctx, "structstream.extract", trace.WithAttributes(
		attribute.String("extraction.id", id),
		attribute.String("llm.provider", e.provider.Name()),
		attribute.Int("extraction.max_attempts", e.cfg.maxRetries+1),
	))
	defer span.End()

	target, wrapper := wrapRoot(s)
	schema, err := target.SchemaMap()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "schema")
		return nil, err
	}
	messages, err := buildMessages(target, text, e.cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "prompt")
		return nil, err
	}
	req := llm.Request{
		Model:       e.cfg.model,
		Messages:    messages,
		Schema:      schema,
		SchemaName:  "extraction",
		Strategy:    e.cfg.strategy,
		Temperature: e.cfg.temperature,
		MaxTokens:   e.cfg.maxTokens,
	}

	maxAttempts := e.cfg.maxRetries + 1
	var last attemptOutcome
	// lastReport survives later transport failures
	var lastReport ValidationErrors
	state := StateAttempting

	for n := 1; state == StateAttempting; n++ {
		if n > 1 && e.cfg.retryBackoff > 0 {
			if err := sleep(ctx, e.cfg.retryBackoff); err != nil {
				return nil, e.cancelled(span, logger, err)
			}
		}

		logger.Debug().Int("attempt", n).Stringer("state", state).Msg("starting attempt")
		out, err := e.attempt(ctx, logger, n, target, req, unwrapChunks(wrapper, onChunk))
		if err != nil {
			return nil, e.cancelled(span, logger, err)
		}
		last = out
		if len(out.errs) > 0 {
			lastReport = out.errs
		}

		switch {
		case out.transport == nil && len(out.errs) == 0:
			state = StateSucceeded
		case out.transport != nil && !e.cfg.retryOnTransportError:
			state = StateFailed
		case n >= maxAttempts:
			state = StateFailed
		case out.transport != nil:
			logger.Warn().Int("attempt", n).Err(out.transport).Msg("attempt failed, retrying")
		default:
			logger.Warn().Int("attempt", n).Int("errors", len(out.errs)).Msg("validation failed, retrying")
			req.Messages = repairMessages(messages, out.raw, out.errs)
		}

		if state != StateAttempting {
			last.attempts = n
		}
	}

	span.SetAttributes(
		attribute.Int("extraction.attempts", last.attempts),
		attribute.String("extraction.state", state.String()),
	)

	if state == StateFailed {
		failure := &ExtractionError{
			ID:       id,
			Attempts: last.attempts,
			Errors:   lastReport,
			Raw:      last.raw,
			Cause:    last.transport,
		}
		span.RecordError(failure)
		span.SetStatus(codes.Error, "extraction failed")
		logger.Error().Err(failure).Int("attempts", last.attempts).Msg("extraction failed")
		return nil, failure
	}

	value := last.value
	if wrapper != "" {
		value = value.Field(wrapper)
	}
	result := &Result{
		ID:       id,
		Value:    value,
		Raw:      last.raw,
		Attempts: last.attempts,
		Duration: time.Since(start),
	}
	span.SetStatus(codes.Ok, "")
	logger.Info().
		Int("attempts", result.Attempts).
		Dur("duration", result.Duration).
		Msg("extraction succeeded")
	return result, nil
}

type attemptOutcome struct {
	value     *Value
	raw       string
	errs      ValidationErrors
	transport error
	attempts  int
}

// attempt streams one response and validates it. The returned error is
// non-nil only when ctx ended; every other failure is in the outcome.
func (e *Extractor) attempt(ctx context.Context, logger zerolog.Logger, n int, target *shape.Shape, req llm.Request, onChunk func(*Value)) (attemptOutcome, error) {
	ctx, span := e.tracer.Start(ctx, "structstream.attempt", trace.WithAttributes(
		attribute.Int("attempt", n),
	))
	defer span.End()

	e.metrics.attempts.Add(ctx, 1)

	streamCtx := ctx
	if e.cfg.attemptTimeout > 0 {
		var cancel context.CancelFunc
		streamCtx, cancel = context.WithTimeout(ctx, e.cfg.attemptTimeout)
		defer cancel()
	}

	parser := &StreamParser{
		shape:       target,
		onChunk:     onChunk,
		logger:      logger,
		rejectExtra: e.cfg.rejectExtra,
		buffer:      make([]byte, 0, 1024),
		state:       &PartialState{},
	}

	fail := func(err error) (attemptOutcome, error) {
		transportErr := &TransportError{Provider: e.provider.Name(), Err: err}
		e.metrics.transportFailures.Add(ctx, 1)
		span.RecordError(transportErr)
		span.SetStatus(codes.Error, "transport")
		return attemptOutcome{raw: string(parser.Buffer()), transport: transportErr}, nil
	}

	for delta, err := range e.provider.StreamCompletion(streamCtx, req) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return attemptOutcome{}, ctxErr
		}
		if err != nil {
			return fail(err)
		}
		parser.Feed([]byte(delta))
	}
	if err := ctx.Err(); err != nil {
		return attemptOutcome{}, err
	}
	if err := streamCtx.Err(); err != nil {
		return fail(err)
	}

	raw := string(parser.Buffer())
	value, errs := parser.Finish()
	span.SetAttributes(attribute.Int("response.bytes", len(raw)))
	if len(errs) > 0 {
		e.metrics.validationFailures.Add(ctx, 1)
		span.SetAttributes(attribute.Int("validation.errors", len(errs)))
		span.SetStatus(codes.Error, "validation")
		logger.Debug().Int("attempt", n).Str("report", errs.Report()).Msg("validation errors")
		return attemptOutcome{raw: raw, errs: errs}, nil
	}
	return attemptOutcome{value: value, raw: raw}, nil
}

func (e *Extractor) cancelled(span trace.Span, logger zerolog.Logger, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "cancelled")
	logger.Debug().Err(err).Msg("extraction cancelled")
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// wrapRoot puts non-object shapes under a single field, since structured
// output modes require an object at the root. It returns the field name, or
// "" if s is already an object.
func wrapRoot(s *shape.Shape) (*shape.Shape, string) {
	if s.Kind() == shape.KindObject {
		return s, ""
	}
	name := "value"
	if s.Kind() == shape.KindList {
		name = "list"
	}
	return shape.Object(shape.Field(name, s)), name
}

// unwrapChunks adapts onChunk to values of the wrapped shape, dropping
// updates that do not change the unwrapped value.
func unwrapChunks(wrapper string, onChunk func(*Value)) func(*Value) {
	if onChunk == nil || wrapper == "" {
		return onChunk
	}
	var last *Value
	return func(v *Value) {
		inner := v.Field(wrapper)
		if Equal(inner, last) {
			return
		}
		last = inner
		onChunk(inner)
	}
}
