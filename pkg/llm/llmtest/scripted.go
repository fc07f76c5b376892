// Package llmtest provides an in-memory llm.Provider for tests.
package llmtest

import (
	"context"
	"iter"
	"sync"

	"github.com/deepankarm/structstream/pkg/llm"
)

// Response is the scripted outcome of one call: the deltas to stream, then
// Err if non-nil.
type Response struct {
	Deltas []string
	Err    error
}

// Provider replays scripted responses in order. Once the script is
// exhausted the last response repeats. Requests are recorded.
type Provider struct {
	mu        sync.Mutex
	responses []Response
	requests  []llm.Request
}

// New creates a provider that replays responses.
func New(responses ...Response) *Provider {
	return &Provider{responses: responses}
}

// Text is a response streaming text split into deltas of at most size bytes.
func Text(text string, size int) Response {
	var deltas []string
	for len(text) > size {
		deltas = append(deltas, text[:size])
		text = text[size:]
	}
	if text != "" {
		deltas = append(deltas, text)
	}
	return Response{Deltas: deltas}
}

// Name implements llm.Provider.
func (p *Provider) Name() string { return "scripted" }

// StreamCompletion implements llm.Provider.
func (p *Provider) StreamCompletion(ctx context.Context, req llm.Request) iter.Seq2[string, error] {
	p.mu.Lock()
	i := len(p.requests)
	p.requests = append(p.requests, req)
	var resp Response
	if len(p.responses) > 0 {
		resp = p.responses[min(i, len(p.responses)-1)]
	}
	p.mu.Unlock()

	return func(yield func(string, error) bool) {
		for _, d := range resp.Deltas {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(d, nil) {
				return
			}
		}
		if resp.Err != nil {
			yield("", resp.Err)
		}
	}
}

// Requests returns the requests received so far.
func (p *Provider) Requests() []llm.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]llm.Request(nil), p.requests...)
}

// Calls returns the number of requests received so far.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}
