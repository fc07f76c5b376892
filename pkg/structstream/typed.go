package structstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/deepankarm/structstream/pkg/structstream/shape"
)

// Decode stores v in the value pointed to by target, using the same rules
// as encoding/json. Absent fields are left at their zero value.
func Decode(v *Value, target any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode value: %w", err)
	}
	return nil
}

// Get extracts a single object of shape s and decodes it into T.
func Get[T any](ctx context.Context, e *Extractor, s *shape.Shape, text string, onChunk func(*Value)) (T, *Result, error) {
	var out T
	res, err := e.Extract(ctx, s, text, onChunk)
	if err != nil {
		return out, nil, err
	}
	if err := Decode(res.Value, &out); err != nil {
		return out, res, err
	}
	return out, res, nil
}

// GetList extracts every object of shape elem mentioned in text, in order.
func GetList[T any](ctx context.Context, e *Extractor, elem *shape.Shape, text string, onChunk func(*Value)) ([]T, *Result, error) {
	res, err := e.Extract(ctx, shape.List(elem), text, onChunk)
	if err != nil {
		return nil, nil, err
	}
	out := make([]T, 0, res.Value.Len())
	if err := Decode(res.Value, &out); err != nil {
		return nil, res, err
	}
	return out, res, nil
}

// ExtractAll runs one independent extraction per text, at most the
// configured concurrency at a time. results[i] belongs to texts[i] and is nil
// if that extraction failed; the failures are joined into the returned
// error. onChunk, if not nil, may be called concurrently for different
// indexes.
func (e *Extractor) ExtractAll(ctx context.Context, s *shape.Shape, texts []string, onChunk func(i int, v *Value)) ([]*Result, error) {
	results := make([]*Result, len(texts))
	errs := make([]error, len(texts))

	var g errgroup.Group
	g.SetLimit(e.cfg.concurrency)
	for i, text := range texts {
		var chunk func(*Value)
		if onChunk != nil {
			chunk = func(v *Value) { onChunk(i, v) }
		}
		g.Go(func() error {
			res, err := e.Extract(ctx, s, text, chunk)
			if err != nil {
				errs[i] = fmt.Errorf("text %d: %w", i, err)
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}
