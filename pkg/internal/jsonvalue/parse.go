package jsonvalue

import (
	"fmt"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

// maxDepth bounds container nesting so hostile input cannot exhaust the stack.
const maxDepth = 10000

// ParseError reports malformed JSON text.
type ParseError struct {
	Pos    int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON at offset %d: %s", e.Pos, e.Reason)
}

// Parse parses text that has been through the completer. Raw control
// characters inside strings are accepted because models routinely emit
// literal newlines there.
func Parse(data []byte) (Value, error) {
	return parse(data, false)
}

// ParseStrict parses text following RFC 8259 exactly.
func ParseStrict(data []byte) (Value, error) {
	return parse(data, true)
}

func parse(data []byte, strict bool) (Value, error) {
	p := &parser{data: data, strict: strict}
	p.skipWhitespace()
	v, err := p.parseValue(0)
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if p.pos < len(p.data) {
		return nil, p.errorf("unexpected %q after top-level value", p.data[p.pos])
	}
	return v, nil
}

type parser struct {
	data   []byte
	pos    int
	strict bool
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Pos: p.pos, Reason: fmt.Sprintf(format, args...)}
}

func (p *parser) parseValue(depth int) (Value, error) {
	if depth > maxDepth {
		return nil, p.errorf("nesting too deep")
	}
	if p.pos >= len(p.data) {
		return nil, p.errorf("unexpected end of input")
	}

	switch ch := p.data[p.pos]; {
	case ch == '{':
		return p.parseObject(depth)
	case ch == '[':
		return p.parseArray(depth)
	case ch == '"':
		s, err := p.parseString()
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case ch == 't':
		return Bool(true), p.expectLiteral("true")
	case ch == 'f':
		return Bool(false), p.expectLiteral("false")
	case ch == 'n':
		return Null{}, p.expectLiteral("null")
	case ch == '-' || isDigit(ch):
		return p.parseNumber()
	default:
		return nil, p.errorf("invalid character %q looking for beginning of value", ch)
	}
}

func (p *parser) parseObject(depth int) (Value, error) {
	p.pos++ // consume '{'
	obj := NewObject()

	p.skipWhitespace()
	if p.pos < len(p.data) && p.data[p.pos] == '}' {
		p.pos++
		return obj, nil
	}

	for {
		p.skipWhitespace()
		if p.pos >= len(p.data) || p.data[p.pos] != '"' {
			return nil, p.errorf("expected object key")
		}
		key, err := p.parseString()
		if err != nil {
			return nil, err
		}

		p.skipWhitespace()
		if p.pos >= len(p.data) || p.data[p.pos] != ':' {
			return nil, p.errorf("expected ':' after object key")
		}
		p.pos++

		p.skipWhitespace()
		v, err := p.parseValue(depth + 1)
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)

		p.skipWhitespace()
		if p.pos >= len(p.data) {
			return nil, p.errorf("unexpected end of input in object")
		}
		switch p.data[p.pos] {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return obj, nil
		default:
			return nil, p.errorf("expected ',' or '}' in object")
		}
	}
}

func (p *parser) parseArray(depth int) (Value, error) {
	p.pos++ // consume '['
	arr := Array{}

	p.skipWhitespace()
	if p.pos < len(p.data) && p.data[p.pos] == ']' {
		p.pos++
		return arr, nil
	}

	for {
		p.skipWhitespace()
		v, err := p.parseValue(depth + 1)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)

		p.skipWhitespace()
		if p.pos >= len(p.data) {
			return nil, p.errorf("unexpected end of input in array")
		}
		switch p.data[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return arr, nil
		default:
			return nil, p.errorf("expected ',' or ']' in array")
		}
	}
}

func (p *parser) parseString() (string, error) {
	start := p.pos
	p.pos++ // consume opening '"'

	// Fast path: no escapes
	for i := p.pos; i < len(p.data); i++ {
		ch := p.data[i]
		if ch == '"' {
			if p.strict && !utf8.Valid(p.data[p.pos:i]) {
				break
			}
			s := string(p.data[p.pos:i])
			p.pos = i + 1
			return s, nil
		}
		if ch == '\\' || (ch < 0x20 && p.strict) {
			break
		}
	}

	buf := make([]byte, 0, 16)
	for p.pos < len(p.data) {
		ch := p.data[p.pos]
		switch {
		case ch == '"':
			p.pos++
			return string(buf), nil
		case ch == '\\':
			r, err := p.parseEscape()
			if err != nil {
				return "", err
			}
			buf = utf8.AppendRune(buf, r)
		case ch < 0x20 && p.strict:
			return "", p.errorf("invalid control character %q in string literal", ch)
		case ch < utf8.RuneSelf:
			buf = append(buf, ch)
			p.pos++
		default:
			r, size := utf8.DecodeRune(p.data[p.pos:])
			if r == utf8.RuneError && size == 1 && p.strict {
				return "", p.errorf("invalid UTF-8 in string literal")
			}
			buf = append(buf, p.data[p.pos:p.pos+size]...)
			p.pos += size
		}
	}

	p.pos = start
	return "", p.errorf("unterminated string")
}

func (p *parser) parseEscape() (rune, error) {
	p.pos++ // consume '\'
	if p.pos >= len(p.data) {
		return 0, p.errorf("unexpected end of input in escape sequence")
	}
	ch := p.data[p.pos]
	p.pos++
	switch ch {
	case '"', '\\', '/':
		return rune(ch), nil
	case 'b':
		return '\b', nil
	case 'f':
		return '\f', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'u':
		r, err := p.parseHex4()
		if err != nil {
			return 0, err
		}
		if !utf16.IsSurrogate(r) {
			return r, nil
		}
		// A high surrogate must be followed by an escaped low surrogate
		if p.pos+1 < len(p.data) && p.data[p.pos] == '\\' && p.data[p.pos+1] == 'u' {
			save := p.pos
			p.pos += 2
			r2, err := p.parseHex4()
			if err != nil {
				return 0, err
			}
			if dec := utf16.DecodeRune(r, r2); dec != utf8.RuneError {
				return dec, nil
			}
			p.pos = save
		}
		return utf8.RuneError, nil
	default:
		p.pos--
		return 0, p.errorf("invalid escape character %q", ch)
	}
}

func (p *parser) parseHex4() (rune, error) {
	if p.pos+4 > len(p.data) {
		return 0, p.errorf("unexpected end of input in \\u escape")
	}
	n, err := strconv.ParseUint(string(p.data[p.pos:p.pos+4]), 16, 32)
	if err != nil {
		return 0, p.errorf("invalid \\u escape")
	}
	p.pos += 4
	return rune(n), nil
}

func (p *parser) parseNumber() (Value, error) {
	start := p.pos
	if p.data[p.pos] == '-' {
		p.pos++
	}

	switch {
	case p.pos >= len(p.data) || !isDigit(p.data[p.pos]):
		return nil, p.errorf("expected digit in number")
	case p.data[p.pos] == '0':
		p.pos++
	default:
		p.skipDigits()
	}

	if p.pos < len(p.data) && p.data[p.pos] == '.' {
		p.pos++
		if p.pos >= len(p.data) || !isDigit(p.data[p.pos]) {
			return nil, p.errorf("expected digit after decimal point")
		}
		p.skipDigits()
	}

	if p.pos < len(p.data) && (p.data[p.pos] == 'e' || p.data[p.pos] == 'E') {
		p.pos++
		if p.pos < len(p.data) && (p.data[p.pos] == '+' || p.data[p.pos] == '-') {
			p.pos++
		}
		if p.pos >= len(p.data) || !isDigit(p.data[p.pos]) {
			return nil, p.errorf("expected digit in exponent")
		}
		p.skipDigits()
	}

	return Number(p.data[start:p.pos]), nil
}

func (p *parser) skipDigits() {
	for p.pos < len(p.data) && isDigit(p.data[p.pos]) {
		p.pos++
	}
}

func (p *parser) expectLiteral(lit string) error {
	if len(p.data)-p.pos < len(lit) || string(p.data[p.pos:p.pos+len(lit)]) != lit {
		return p.errorf("invalid literal, expected %s", lit)
	}
	p.pos += len(lit)
	return nil
}

func (p *parser) skipWhitespace() {
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
