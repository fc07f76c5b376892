// Package partialjson completes truncated JSON text.
//
// LLMs stream JSON a few bytes at a time. Complete takes whatever has arrived
// so far and returns the smallest syntactically valid document that agrees
// with it: open strings are closed, dangling keys, commas and colons are
// removed, numbers and literals cut mid-token are dropped, and open containers
// are closed in reverse order of opening.
package partialjson

import (
	"unicode/utf8"
)

// Complete returns the completion of a possibly truncated JSON fragment.
// It never fails. Input that contains no usable value completes to "null".
func Complete(data []byte) *ParseResult {
	p := &completer{data: data, cut: -1}
	return p.complete()
}

// CompleteString is Complete for string input, returning only the repaired text.
func CompleteString(s string) string {
	return string(Complete([]byte(s)).Repaired)
}

type completer struct {
	data []byte
	pos  int

	// Last structurally complete point: bytes before cut are kept, followed by
	// tail and the closers for stack[:depth].
	cut   int
	depth int
	tail  string

	// Open containers, stored as their closing byte.
	stack []byte

	path        []string
	incomplete  [][]string
	truncatedAt string
}

func (p *completer) complete() *ParseResult {
	p.skipWhitespace()
	if p.parseValue() {
		p.skipWhitespace()
		p.checkpoint()
		p.truncatedAt = TruncatedComplete
	}

	if p.cut < 0 {
		return &ParseResult{
			Repaired:    []byte("null"),
			Incomplete:  p.incomplete,
			TruncatedAt: p.truncatedAt,
		}
	}

	out := make([]byte, 0, p.cut+len(p.tail)+p.depth)
	out = append(out, p.data[:p.cut]...)
	out = append(out, p.tail...)
	for i := p.depth - 1; i >= 0; i-- {
		out = append(out, p.stack[i])
	}
	return &ParseResult{
		Repaired:    out,
		Incomplete:  p.incomplete,
		TruncatedAt: p.truncatedAt,
	}
}

// checkpoint records the current position as structurally complete.
func (p *completer) checkpoint() {
	p.cut = p.pos
	p.depth = len(p.stack)
	p.tail = ""
}

// parseValue scans one value. It returns false when scanning has to stop,
// either at end of input or at a byte that cannot continue the document.
func (p *completer) parseValue() bool {
	p.skipWhitespace()

	if p.pos >= len(p.data) {
		p.markIncomplete(TruncatedValue)
		return false
	}

	switch p.data[p.pos] {
	case '{':
		return p.parseObject()
	case '[':
		return p.parseArray()
	case '"':
		complete, cut := p.parseString()
		if !complete {
			p.cut = cut
			p.depth = len(p.stack)
			p.tail = `"`
			p.markIncomplete(TruncatedString)
		}
		return complete
	case 't':
		return p.parseLiteral("true")
	case 'f':
		return p.parseLiteral("false")
	case 'n':
		return p.parseLiteral("null")
	default:
		if p.data[p.pos] == '-' || isDigit(p.data[p.pos]) {
			return p.parseNumber()
		}
		// Not a JSON value; keep what we have
		p.markIncomplete(TruncatedValue)
		return false
	}
}

func (p *completer) parseObject() bool {
	p.stack = append(p.stack, '}')
	p.pos++ // consume '{'
	p.checkpoint()
	first := true

	for {
		p.skipWhitespace()

		if p.pos >= len(p.data) {
			p.markIncomplete(TruncatedObject)
			return false
		}

		if p.data[p.pos] == '}' {
			p.pos++
			p.stack = p.stack[:len(p.stack)-1]
			p.checkpoint()
			return true
		}

		if !first {
			if p.data[p.pos] != ',' {
				p.markIncomplete(TruncatedObject)
				return false
			}
			p.pos++ // consume ','
			p.skipWhitespace()
		}
		first = false

		// Key
		if p.pos >= len(p.data) || p.data[p.pos] != '"' {
			p.markIncomplete(TruncatedKey)
			return false
		}
		keyStart := p.pos + 1
		complete, _ := p.parseString()
		if !complete {
			// A partial key cannot be used
			p.markIncomplete(TruncatedKey)
			return false
		}
		key := string(p.data[keyStart : p.pos-1])

		p.skipWhitespace()
		if p.pos >= len(p.data) || p.data[p.pos] != ':' {
			p.markIncomplete(TruncatedKey)
			return false
		}
		p.pos++ // consume ':'

		p.path = append(p.path, key)
		ok := p.parseValue()
		p.path = p.path[:len(p.path)-1]
		if !ok {
			return false
		}
		p.checkpoint()
	}
}

func (p *completer) parseArray() bool {
	p.stack = append(p.stack, ']')
	p.pos++ // consume '['
	p.checkpoint()
	first := true
	index := 0

	for {
		p.skipWhitespace()

		if p.pos >= len(p.data) {
			p.markIncomplete(TruncatedArray)
			return false
		}

		if p.data[p.pos] == ']' {
			p.pos++
			p.stack = p.stack[:len(p.stack)-1]
			p.checkpoint()
			return true
		}

		if !first {
			if p.data[p.pos] != ',' {
				p.markIncomplete(TruncatedArray)
				return false
			}
			p.pos++ // consume ','
		}
		first = false

		p.path = append(p.path, indexPath(index))
		ok := p.parseValue()
		p.path = p.path[:len(p.path)-1]
		if !ok {
			return false
		}
		p.checkpoint()
		index++
	}
}

// parseString scans a string starting at the opening quote. When the input
// ends inside the string it returns false together with the offset at which
// the string content can be safely closed: a dangling escape sequence or a
// partial UTF-8 sequence is left out.
func (p *completer) parseString() (bool, int) {
	p.pos++ // consume opening '"'

	for p.pos < len(p.data) {
		ch := p.data[p.pos]

		if ch == '\\' {
			escStart := p.pos
			p.pos++
			if p.pos >= len(p.data) {
				return false, escStart
			}
			if p.data[p.pos] == 'u' {
				p.pos++
				for i := 0; i < 4; i++ {
					if p.pos >= len(p.data) {
						return false, escStart
					}
					if !isHexDigit(p.data[p.pos]) {
						break // malformed, left to the parser
					}
					p.pos++
				}
				continue
			}
			p.pos++
			continue
		}

		if ch == '"' {
			p.pos++ // consume closing '"'
			return true, p.pos
		}

		if ch < utf8.RuneSelf {
			p.pos++
			continue
		}
		if !utf8.FullRune(p.data[p.pos:]) {
			return false, p.pos
		}
		_, size := utf8.DecodeRune(p.data[p.pos:])
		p.pos += size
	}

	return false, p.pos
}

// parseNumber scans a number. A number that runs into the end of input may
// still be growing, so it is dropped rather than guessed.
func (p *completer) parseNumber() bool {
	if p.data[p.pos] == '-' {
		p.pos++
	}
	if !p.scanDigits(true) {
		return false
	}

	if p.pos < len(p.data) && p.data[p.pos] == '.' {
		p.pos++
		if !p.scanDigits(false) {
			return false
		}
	}

	if p.pos < len(p.data) && (p.data[p.pos] == 'e' || p.data[p.pos] == 'E') {
		p.pos++
		if p.pos < len(p.data) && (p.data[p.pos] == '+' || p.data[p.pos] == '-') {
			p.pos++
		}
		if !p.scanDigits(false) {
			return false
		}
	}

	if p.pos >= len(p.data) {
		p.markIncomplete(TruncatedValue)
		return false
	}
	return true
}

// scanDigits consumes a run of digits. With intPart set, a leading zero ends
// the run as JSON requires.
func (p *completer) scanDigits(intPart bool) bool {
	if p.pos >= len(p.data) {
		p.markIncomplete(TruncatedValue)
		return false
	}
	if !isDigit(p.data[p.pos]) {
		p.markIncomplete(TruncatedValue)
		return false
	}
	if intPart && p.data[p.pos] == '0' {
		p.pos++
		return true
	}
	for p.pos < len(p.data) && isDigit(p.data[p.pos]) {
		p.pos++
	}
	return true
}

// parseLiteral scans true, false or null. A literal cut short is dropped.
func (p *completer) parseLiteral(expected string) bool {
	for i := 0; i < len(expected); i++ {
		if p.pos >= len(p.data) || p.data[p.pos] != expected[i] {
			p.markIncomplete(TruncatedValue)
			return false
		}
		p.pos++
	}
	return true
}

func (p *completer) markIncomplete(reason string) {
	if p.truncatedAt == "" {
		p.truncatedAt = reason
	}
	if len(p.path) == 0 {
		return
	}
	// Only the innermost truncation point is recorded
	for _, existing := range p.incomplete {
		if equalPath(existing, p.path) {
			return
		}
	}
	pathCopy := make([]string, len(p.path))
	copy(pathCopy, p.path)
	p.incomplete = append(p.incomplete, pathCopy)
}

func (p *completer) skipWhitespace() {
	for p.pos < len(p.data) {
		ch := p.data[p.pos]
		if ch != ' ' && ch != '\t' && ch != '\n' && ch != '\r' {
			break
		}
		p.pos++
	}
}

func equalPath(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
