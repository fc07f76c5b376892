package structstream

import (
	"github.com/deepankarm/structstream/pkg/structstream/shape"
)

// Validate strictly parses text and checks it against s. Malformed JSON is a
// single json_decode error at the root; otherwise every mismatch is reported,
// not just the first. Markdown code fences around the document are ignored.
//
// Only WithRejectExtraFields affects validation; other options are ignored.
func Validate(s *shape.Shape, text []byte, opts ...Option) (*Value, ValidationErrors) {
	cfg := newConfig(opts)
	return walkStrict(s, text, cfg.rejectExtra)
}
