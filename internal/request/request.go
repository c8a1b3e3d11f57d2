package request

import (
	"net/url"
	"strings"
	"sync"

	"github.com/Brownie44l1/embedhttp/internal/headers"
)

// Request is a single parsed HTTP request. The parser never mutates a
// Request after returning it; routing attaches path parameters to a copy.
type Request struct {
	Method    string
	URL       string // raw request target
	Path      string
	Query     string // raw query, without the leading '?'
	Version   string
	Headers   *headers.Headers
	Body      []byte
	KeepAlive bool

	// RemoteAddr is filled in by the server for the accepted connection.
	RemoteAddr string

	params map[string]string
	query  *lazyQuery
}

type lazyQuery struct {
	once   sync.Once
	values map[string]string
}

// New builds a request for the given method and target. It is used by the
// parser and by tests that exercise handlers without a connection.
func New(method, target string) *Request {
	path, query := SplitTarget(target)
	return &Request{
		Method:    strings.ToUpper(method),
		URL:       target,
		Path:      path,
		Query:     query,
		Version:   "HTTP/1.1",
		Headers:   headers.NewHeaders(),
		KeepAlive: true,
		query:     &lazyQuery{},
	}
}

// SplitTarget separates a request target into path and raw query.
func SplitTarget(target string) (string, string) {
	if i := strings.IndexByte(target, '?'); i != -1 {
		return target[:i], target[i+1:]
	}
	return target, ""
}

// WithParams returns a shallow copy carrying the given path parameters.
func (r *Request) WithParams(params map[string]string) *Request {
	cp := *r
	cp.params = params
	return &cp
}

// Param returns the path parameter captured by the router, or "".
func (r *Request) Param(name string) string {
	return r.params[name]
}

// Params returns the captured path parameters.
func (r *Request) Params() map[string]string {
	if r.params == nil {
		return map[string]string{}
	}
	return r.params
}

// Header returns the first value of a request header, or "".
func (r *Request) Header(name string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers.Value(name)
}

func (r *Request) BodyString() string {
	return string(r.Body)
}

func (r *Request) ContentLength() int64 {
	return int64(len(r.Body))
}

func (r *Request) IsChunked() bool {
	return isChunked(r.Headers)
}

// QueryParams decodes the query string on first use. Parameters without a
// value map to "", and later duplicates win.
func (r *Request) QueryParams() map[string]string {
	if r.query == nil {
		return parseQuery(r.Query)
	}
	r.query.once.Do(func() {
		r.query.values = parseQuery(r.Query)
	})
	return r.query.values
}

func (r *Request) QueryParam(name string) string {
	return r.QueryParams()[name]
}

func parseQuery(raw string) map[string]string {
	params := make(map[string]string)
	if raw == "" {
		return params
	}

	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		params[unescape(key)] = unescape(value)
	}
	return params
}

func unescape(s string) string {
	if v, err := url.QueryUnescape(s); err == nil {
		return v
	}
	return s
}
