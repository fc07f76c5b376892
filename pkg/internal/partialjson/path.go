package partialjson

import (
	"slices"
	"strconv"

	"github.com/deepankarm/structstream/pkg/internal/errors"
)

// JoinPath renders a path as "people[1].bio".
func JoinPath(path []string) string {
	return errors.JoinPath(path)
}

// PathSet is a set of truncated paths keyed by their rendered form.
type PathSet map[string][]string

// NewPathSet builds a set from the Incomplete paths of a ParseResult.
func NewPathSet(paths [][]string) PathSet {
	set := make(PathSet, len(paths))
	for _, p := range paths {
		set[JoinPath(p)] = p
	}
	return set
}

// Has reports whether path itself was truncated.
func (s PathSet) Has(path []string) bool {
	_, ok := s[JoinPath(path)]
	return ok
}

// Covers reports whether path or one of its ancestors was truncated. A field
// inside a truncated object is not final either.
func (s PathSet) Covers(path []string) bool {
	for i := len(path); i >= 0; i-- {
		if p, ok := s[JoinPath(path[:i])]; ok && slices.Equal(p, path[:i]) {
			return true
		}
	}
	return false
}

func indexPath(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}
