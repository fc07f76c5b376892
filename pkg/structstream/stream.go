package structstream

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/deepankarm/structstream/pkg/structstream/shape"
)

// StreamParser provides stateful parsing for streamed JSON text.
// Designed for LLM streaming APIs: every delta re-parses the whole buffer, so
// the value reported after a delta never depends on how the text was split.
type StreamParser struct {
	shape       *shape.Shape
	onChunk     func(*Value)
	logger      zerolog.Logger
	rejectExtra bool

	mu      sync.Mutex
	buffer  []byte
	current *Value
	state   *PartialState
}

// NewStreamParser creates a parser for values of shape s. onChunk, if not
// nil, is called with the new value each time a delta changes it.
//
// Example:
//
//	parser := structstream.NewStreamParser(person, func(v *structstream.Value) {
//	    fmt.Println(v)
//	})
//
//	// Feed chunks as they arrive
//	parser.Feed([]byte(`{"name": "Da`))
//	parser.Feed([]byte(`vid", "bio": "`))
//	parser.Feed([]byte(`Creator of Rails."}`))
//
//	value, errs := parser.Finish()
func NewStreamParser(s *shape.Shape, onChunk func(*Value), opts ...Option) *StreamParser {
	cfg := newConfig(opts)
	return &StreamParser{
		shape:       s,
		onChunk:     onChunk,
		logger:      cfg.logger,
		rejectExtra: cfg.rejectExtra,
		buffer:      make([]byte, 0, 1024),
		state:       &PartialState{},
	}
}

// Feed appends a delta and returns the current best-effort value and the
// truncation state. If the accumulated text cannot be parsed yet, the
// previous value and state are returned unchanged and onChunk is not called.
func (sp *StreamParser) Feed(delta []byte) (*Value, *PartialState) {
	value, state, changed := sp.feed(delta)
	if changed {
		sp.emit(value)
	}
	return value, state
}

func (sp *StreamParser) feed(delta []byte) (*Value, *PartialState, bool) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	sp.buffer = append(sp.buffer, delta...)
	value, state, err := walkPartial(sp.shape, sp.buffer)
	if err != nil {
		sp.logger.Debug().Err(err).Int("buffer_len", len(sp.buffer)).Msg("partial parse failed, keeping previous value")
		return sp.current, sp.state, false
	}

	changed := !Equal(value, sp.current)
	sp.current = value
	sp.state = state
	return value, state, changed
}

// emit runs the callback outside the lock. A panicking callback does not
// affect the parser.
func (sp *StreamParser) emit(value *Value) {
	if sp.onChunk == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			sp.logger.Error().Interface("panic", r).Msg("chunk callback panicked")
		}
	}()
	sp.onChunk(value)
}

// Current returns the value after the last successful parse.
func (sp *StreamParser) Current() *Value {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.current
}

// Finish strictly validates the accumulated text. No repair is applied: the
// text must be a complete JSON document matching the shape. All errors are
// reported.
func (sp *StreamParser) Finish() (*Value, ValidationErrors) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return walkStrict(sp.shape, sp.buffer, sp.rejectExtra)
}

// Reset clears the buffer and starts fresh.
func (sp *StreamParser) Reset() {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.buffer = sp.buffer[:0]
	sp.current = nil
	sp.state = &PartialState{}
}

// Buffer returns a copy of the accumulated text.
func (sp *StreamParser) Buffer() []byte {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return append([]byte(nil), sp.buffer...)
}
