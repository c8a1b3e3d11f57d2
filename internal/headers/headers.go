package headers

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedHeader   = errors.New("malformed header")
	ErrInvalidHeaderName = errors.New("invalid character in header name")
	ErrLineFolding       = errors.New("obsolete line folding not supported")
)

// Headers is a case-insensitive header map that remembers the order in
// which names were first added and the spelling used at that point. The
// read methods accept a nil *Headers; Set and Add need NewHeaders.
type Headers struct {
	order  []string
	names  map[string]string
	values map[string][]string
}

func NewHeaders() *Headers {
	return &Headers{
		names:  make(map[string]string),
		values: make(map[string][]string),
	}
}

// Get returns the first value for a header
func (h *Headers) Get(key string) (string, bool) {
	if h == nil {
		return "", false
	}
	values := h.values[strings.ToLower(key)]
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Value returns the first value for a header, or "" if absent.
func (h *Headers) Value(key string) string {
	v, _ := h.Get(key)
	return v
}

// GetAll returns all values for a header
func (h *Headers) GetAll(key string) []string {
	if h == nil {
		return nil
	}
	return h.values[strings.ToLower(key)]
}

// Has reports whether the header is present.
func (h *Headers) Has(key string) bool {
	if h == nil {
		return false
	}
	_, ok := h.values[strings.ToLower(key)]
	return ok
}

// Set replaces all values for a header. A header that already exists
// keeps its original position.
func (h *Headers) Set(key, value string) {
	lower := strings.ToLower(key)
	if _, ok := h.values[lower]; !ok {
		h.order = append(h.order, lower)
		h.names[lower] = key
	}
	h.values[lower] = []string{value}
}

// Add appends a value to a header
func (h *Headers) Add(key, value string) {
	lower := strings.ToLower(key)
	if _, ok := h.values[lower]; !ok {
		h.order = append(h.order, lower)
		h.names[lower] = key
	}
	h.values[lower] = append(h.values[lower], value)
}

// Del removes a header
func (h *Headers) Del(key string) {
	if h == nil {
		return
	}
	lower := strings.ToLower(key)
	if _, ok := h.values[lower]; !ok {
		return
	}
	delete(h.values, lower)
	delete(h.names, lower)
	for i, k := range h.order {
		if k == lower {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of distinct header names.
func (h *Headers) Len() int {
	if h == nil {
		return 0
	}
	return len(h.order)
}

// Each calls fn for every value in insertion order, using the name as
// it was first spelled.
func (h *Headers) Each(fn func(name, value string)) {
	if h == nil {
		return
	}
	for _, lower := range h.order {
		name := h.names[lower]
		for _, v := range h.values[lower] {
			fn(name, v)
		}
	}
}

// Map returns a copy keyed by lower-case name holding the first value.
func (h *Headers) Map() map[string]string {
	if h == nil {
		return map[string]string{}
	}
	m := make(map[string]string, len(h.order))
	for _, lower := range h.order {
		m[lower] = h.values[lower][0]
	}
	return m
}

// Clone returns an independent copy.
func (h *Headers) Clone() *Headers {
	if h == nil {
		return NewHeaders()
	}
	c := &Headers{
		order:  append([]string(nil), h.order...),
		names:  make(map[string]string, len(h.names)),
		values: make(map[string][]string, len(h.values)),
	}
	for k, v := range h.names {
		c.names[k] = v
	}
	for k, v := range h.values {
		c.values[k] = append([]string(nil), v...)
	}
	return c
}

// ParseLine splits a single "Name: value" header line (without CRLF).
func ParseLine(line string) (string, string, error) {
	if line == "" {
		return "", "", fmt.Errorf("%w: empty line", ErrMalformedHeader)
	}

	if line[0] == ' ' || line[0] == '\t' {
		return "", "", ErrLineFolding
	}

	colonIdx := strings.IndexByte(line, ':')
	if colonIdx == -1 {
		return "", "", fmt.Errorf("%w: no colon in %q", ErrMalformedHeader, line)
	}

	name := line[:colonIdx]
	value := strings.TrimSpace(line[colonIdx+1:])

	if name == "" {
		return "", "", fmt.Errorf("%w: empty name", ErrMalformedHeader)
	}

	if strings.ContainsAny(name, " \t") {
		return "", "", fmt.Errorf("%w: whitespace in name %q", ErrMalformedHeader, name)
	}

	for i := 0; i < len(name); i++ {
		if !isValidHeaderChar(name[i]) {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidHeaderName, name[i])
		}
	}

	return name, value, nil
}

func isValidHeaderChar(b byte) bool {
	return (b >= 'A' && b <= 'Z') ||
		(b >= 'a' && b <= 'z') ||
		(b >= '0' && b <= '9') ||
		b == '!' || b == '#' || b == '$' || b == '%' || b == '&' ||
		b == '\'' || b == '*' || b == '+' || b == '-' || b == '.' ||
		b == '^' || b == '_' || b == '`' || b == '|' || b == '~'
}
