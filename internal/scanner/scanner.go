// Package scanner turns JSON text into the element tree consumed by the
// resolvers: objects become *element.Element, arrays []interface{}, numbers
// int64, *big.Int or float64, and "{}" the element.Empty sentinel.
package scanner

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/viant/jsonio/element"
	"github.com/viant/jsonio/errs"
)

// DefaultMaxDepth limits object and array nesting
const DefaultMaxDepth = 10000

const snippetSize = 40

type (
	// Option configures the scanner
	Option func(s *Scanner)

	// Result represents parsed input
	Result struct {
		Root  interface{}
		Index element.Index
	}

	// Scanner parses a single document
	Scanner struct {
		data     []byte
		pos      int
		depth    int
		maxDepth int
		index    element.Index

		line      int
		lineStart int
		tracked   int
	}
)

// WithMaxDepth sets maximum nesting depth
func WithMaxDepth(depth int) Option {
	return func(s *Scanner) {
		if depth > 0 {
			s.maxDepth = depth
		}
	}
}

// Parse parses data into an element tree and identity index
func Parse(data []byte, opts ...Option) (*Result, error) {
	s := &Scanner{data: data, maxDepth: DefaultMaxDepth, index: element.Index{}, line: 1}
	for _, opt := range opts {
		opt(s)
	}
	root, err := s.parseValue()
	if err != nil {
		return nil, err
	}
	s.skipWS()
	if s.pos != len(s.data) {
		return nil, s.errorf("unexpected trailing data")
	}
	return &Result{Root: root, Index: s.index}, nil
}

func (s *Scanner) skipWS() {
	for s.pos < len(s.data) {
		switch s.data[s.pos] {
		case ' ', '\n', '\r', '\t':
			s.pos++
		default:
			return
		}
	}
}

// position returns 1-based line and column of the current offset
func (s *Scanner) position() (int, int) {
	limit := s.pos
	if limit > len(s.data) {
		limit = len(s.data)
	}
	if limit < s.tracked {
		s.line, s.lineStart, s.tracked = 1, 0, 0
	}
	for ; s.tracked < limit; s.tracked++ {
		if s.data[s.tracked] == '\n' {
			s.line++
			s.lineStart = s.tracked + 1
		}
	}
	return s.line, limit - s.lineStart + 1
}

func (s *Scanner) snippet() string {
	end := s.pos
	if end > len(s.data) {
		end = len(s.data)
	}
	start := end - snippetSize
	if start < 0 {
		start = 0
	}
	return string(s.data[start:end])
}

func (s *Scanner) errorf(format string, args ...interface{}) error {
	line, col := s.position()
	return errs.New(errs.CodeDecode, format, args...).WithPosition(line, col).WithSnippet(s.snippet())
}

func (s *Scanner) parseValue() (interface{}, error) {
	s.skipWS()
	if s.pos >= len(s.data) {
		return nil, s.errorf("unexpected EOF")
	}
	switch s.data[s.pos] {
	case '{':
		return s.parseObject()
	case '[':
		return s.parseArray()
	case '"':
		return s.parseString()
	case 't':
		if s.match("true") {
			return true, nil
		}
	case 'f':
		if s.match("false") {
			return false, nil
		}
	case 'n':
		if s.match("null") {
			return nil, nil
		}
	default:
		return s.parseNumber()
	}
	return nil, s.errorf("invalid token %q", s.data[s.pos])
}

func (s *Scanner) match(token string) bool {
	end := s.pos + len(token)
	if end > len(s.data) {
		return false
	}
	if string(s.data[s.pos:end]) != token {
		return false
	}
	s.pos = end
	return true
}

func (s *Scanner) enter() error {
	s.depth++
	if s.depth > s.maxDepth {
		return s.errorf("maximum nesting depth %d exceeded", s.maxDepth)
	}
	return nil
}

func (s *Scanner) parseObject() (interface{}, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer func() { s.depth-- }()
	e := element.New()
	e.Line, e.Col = s.position()
	s.pos++
	s.skipWS()
	if s.pos < len(s.data) && s.data[s.pos] == '}' {
		s.pos++
		return element.Empty, nil
	}
	for {
		s.skipWS()
		key, err := s.parseString()
		if err != nil {
			return nil, err
		}
		s.skipWS()
		if s.pos >= len(s.data) || s.data[s.pos] != ':' {
			return nil, s.errorf("expected ':' after key %q", key)
		}
		s.pos++
		value, err := s.parseValue()
		if err != nil {
			return nil, err
		}
		key = element.Normalize(key)
		if err = s.put(e, key, value); err != nil {
			return nil, err
		}
		s.skipWS()
		if s.pos >= len(s.data) {
			return nil, s.errorf("unexpected EOF in object")
		}
		if s.data[s.pos] == '}' {
			s.pos++
			break
		}
		if s.data[s.pos] != ',' {
			return nil, s.errorf("expected ',' or '}' in object")
		}
		s.pos++
	}
	if e.HasID() {
		if _, ok := s.index[e.ID]; ok {
			return nil, errs.New(errs.CodeDecode, "Duplicate @id: %d", e.ID).WithPosition(e.Line, e.Col).WithSnippet(s.snippet())
		}
		s.index[e.ID] = e
	}
	return e, nil
}

func (s *Scanner) put(e *element.Element, key string, value interface{}) error {
	switch key {
	case element.KeyItems, element.KeyKeys:
		if value == nil {
			break
		}
		if _, ok := value.([]interface{}); !ok {
			return s.errorf("%v must be an array", key)
		}
	case element.KeyID, element.KeyRef:
		switch actual := value.(type) {
		case int64:
		case string:
			id, err := strconv.ParseInt(strings.TrimSpace(actual), 10, 64)
			if err != nil {
				return s.errorf("%v must be a number, but had: %q", key, actual)
			}
			value = id
		default:
			return s.errorf("%v must be a number, but had: %v", key, value)
		}
	case element.KeyType:
		if _, ok := value.(string); !ok {
			return s.errorf("%v must be a string, but had: %v", key, value)
		}
	}
	e.Put(key, value)
	return nil
}

func (s *Scanner) parseArray() ([]interface{}, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer func() { s.depth-- }()
	s.pos++
	result := make([]interface{}, 0)
	s.skipWS()
	if s.pos < len(s.data) && s.data[s.pos] == ']' {
		s.pos++
		return result, nil
	}
	for {
		value, err := s.parseValue()
		if err != nil {
			return nil, err
		}
		result = append(result, value)
		s.skipWS()
		if s.pos >= len(s.data) {
			return nil, s.errorf("unexpected EOF in array")
		}
		if s.data[s.pos] == ']' {
			s.pos++
			return result, nil
		}
		if s.data[s.pos] != ',' {
			return nil, s.errorf("expected ',' or ']' in array")
		}
		s.pos++
	}
}

func (s *Scanner) parseString() (string, error) {
	if s.pos >= len(s.data) || s.data[s.pos] != '"' {
		return "", s.errorf("expected string")
	}
	s.pos++
	start := s.pos
	escaped := false
	hasEscape := false
	for i := start; i < len(s.data); i++ {
		c := s.data[i]
		if c == '"' && !escaped {
			s.pos = i + 1
			if !hasEscape {
				return string(s.data[start:i]), nil
			}
			text, err := unescape(s.data[start:i])
			if err != nil {
				return "", s.errorf("%v", err)
			}
			return text, nil
		}
		if c == '\\' {
			hasEscape = true
			escaped = !escaped
			continue
		}
		if c < 0x20 {
			s.pos = i
			return "", s.errorf("invalid control character in string")
		}
		escaped = false
	}
	s.pos = len(s.data)
	return "", s.errorf("unterminated string")
}

func unescape(raw []byte) (string, error) {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		i++
		if i >= len(raw) {
			return "", fmt.Errorf("invalid escape sequence")
		}
		switch raw[i] {
		case '"', '\\', '/':
			out = append(out, raw[i])
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'u':
			if i+4 >= len(raw) {
				return "", fmt.Errorf("invalid unicode escape")
			}
			r, ok := parseHex4(raw[i+1 : i+5])
			if !ok {
				return "", fmt.Errorf("invalid unicode escape")
			}
			i += 4
			if utf16.IsSurrogate(r) {
				if i+6 >= len(raw) || raw[i+1] != '\\' || raw[i+2] != 'u' {
					return "", fmt.Errorf("invalid surrogate pair")
				}
				r2, ok := parseHex4(raw[i+3 : i+7])
				if !ok {
					return "", fmt.Errorf("invalid surrogate pair")
				}
				decoded := utf16.DecodeRune(r, r2)
				if decoded == utf8.RuneError {
					return "", fmt.Errorf("invalid surrogate pair")
				}
				out = utf8.AppendRune(out, decoded)
				i += 6
				continue
			}
			out = utf8.AppendRune(out, r)
		default:
			return "", fmt.Errorf("invalid escape character %q", raw[i])
		}
	}
	return string(out), nil
}

func parseHex4(b []byte) (rune, bool) {
	if len(b) != 4 {
		return 0, false
	}
	var v rune
	for i := 0; i < 4; i++ {
		c := b[i]
		var d rune
		switch {
		case c >= '0' && c <= '9':
			d = rune(c - '0')
		case c >= 'a' && c <= 'f':
			d = rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = rune(c-'A') + 10
		default:
			return 0, false
		}
		v = (v << 4) | d
	}
	return v, true
}

// parseNumber returns int64, *big.Int when the integer overflows, or float64
func (s *Scanner) parseNumber() (interface{}, error) {
	start := s.pos
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E' {
			s.pos++
			continue
		}
		break
	}
	raw := string(s.data[start:s.pos])
	if raw == "" {
		return nil, s.errorf("invalid token %q", s.data[s.pos])
	}
	if strings.ContainsAny(raw, ".eE") {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, s.errorf("invalid number: %v", raw)
		}
		return f, nil
	}
	i, err := strconv.ParseInt(raw, 10, 64)
	if err == nil {
		return i, nil
	}
	if b, ok := new(big.Int).SetString(raw, 10); ok {
		return b, nil
	}
	return nil, s.errorf("invalid number: %v", raw)
}
