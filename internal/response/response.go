package response

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Brownie44l1/embedhttp/internal/headers"
)

// ContentType values accepted by SetBody.
const (
	ContentTypeText = "text/plain"
	ContentTypeHTML = "text/html"
	ContentTypeJSON = "application/json"
	ContentTypeXML  = "application/xml"
)

// Response is what a handler returns. Headers keep insertion order.
type Response struct {
	code    StatusCode
	reason  string
	headers *headers.Headers
	body    []byte
}

// WithStatus starts a response with the given code and its standard
// reason phrase.
func WithStatus(code StatusCode) *Response {
	return &Response{
		code:    code,
		reason:  StatusText(code),
		headers: headers.NewHeaders(),
	}
}

func OK() *Response                  { return WithStatus(StatusOK) }
func BadRequest() *Response          { return WithStatus(StatusBadRequest) }
func NotFound() *Response            { return WithStatus(StatusNotFound) }
func InternalServerError() *Response { return WithStatus(StatusInternalServerError) }

// Text, JSON and HTML build a response with a body of that type.
func Text(code StatusCode, body string) *Response {
	return WithStatus(code).SetBody(ContentTypeText, []byte(body))
}

func JSON(code StatusCode, body string) *Response {
	return WithStatus(code).SetBody(ContentTypeJSON, []byte(body))
}

func HTML(code StatusCode, body string) *Response {
	return WithStatus(code).SetBody(ContentTypeHTML, []byte(body))
}

// Error builds a plain text error response. An empty message falls back
// to the reason phrase.
func Error(code StatusCode, message string) *Response {
	if message == "" {
		message = StatusText(code)
	}
	return Text(code, fmt.Sprintf("Error %d: %s\n", code, message))
}

// Redirect builds a 3xx response pointing at location.
func Redirect(code StatusCode, location string) (*Response, error) {
	switch code {
	case StatusMovedPermanently, StatusFound, StatusSeeOther, StatusTemporaryRedirect, StatusPermanentRedirect:
	default:
		return nil, fmt.Errorf("invalid redirect status code: %d", code)
	}
	return WithStatus(code).
		SetHeader("Location", location).
		SetHeader("Content-Length", "0"), nil
}

// SetStatus overrides the code and reason phrase.
func (r *Response) SetStatus(code StatusCode, reason string) *Response {
	r.code = code
	r.reason = reason
	return r
}

// SetHeader sets a header, keeping its position if already present.
func (r *Response) SetHeader(name, value string) *Response {
	if r.headers == nil {
		r.headers = headers.NewHeaders()
	}
	r.headers.Set(name, value)
	return r
}

// SetBody stores the body and sets Content-Type and Content-Length.
func (r *Response) SetBody(contentType string, body []byte) *Response {
	r.SetHeader("Content-Type", contentType)
	r.SetHeader("Content-Length", strconv.Itoa(len(body)))
	r.body = body
	return r
}

// Close marks the connection to be closed after this response.
func (r *Response) Close() *Response {
	if !r.Closing() {
		r.SetHeader("Connection", "close")
	}
	return r
}

func (r *Response) Status() StatusCode { return r.code }
func (r *Response) Reason() string     { return r.reason }
func (r *Response) Body() []byte       { return r.body }

// Headers returns the response headers, creating them on a zero Response.
func (r *Response) Headers() *headers.Headers {
	if r.headers == nil {
		r.headers = headers.NewHeaders()
	}
	return r.headers
}

// Closing reports whether the Connection header asks for the connection
// to be closed after writing.
func (r *Response) Closing() bool {
	return strings.EqualFold(strings.TrimSpace(r.headers.Value("Connection")), "close")
}

// Valid reports whether r has a status code that can go on the wire. A
// zero Response is not valid.
func (r *Response) Valid() bool {
	return r.code >= 100 && r.code <= 999
}

// Clone returns a copy whose headers can be changed without affecting r.
// The body is shared.
func (r *Response) Clone() *Response {
	c := *r
	c.headers = r.headers.Clone()
	return &c
}
