package router

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/Brownie44l1/embedhttp/internal/headers"
	"github.com/Brownie44l1/embedhttp/internal/request"
	"github.com/Brownie44l1/embedhttp/internal/response"
)

// ResponseWriter collects a response written piece by piece. Nothing
// reaches the connection until the handler returns.
type ResponseWriter struct {
	headers     *headers.Headers
	status      response.StatusCode
	body        bytes.Buffer
	wroteHeader bool
}

func newResponseWriter() *ResponseWriter {
	return &ResponseWriter{
		headers: headers.NewHeaders(),
		status:  response.StatusOK,
	}
}

// Header returns the headers that will be sent.
func (w *ResponseWriter) Header() *headers.Headers {
	return w.headers
}

// WriteHeader sets the status. Only the first call counts.
func (w *ResponseWriter) WriteHeader(code response.StatusCode) {
	if w.wroteHeader {
		return
	}
	w.status = code
	w.wroteHeader = true
}

func (w *ResponseWriter) Write(data []byte) (int, error) {
	w.wroteHeader = true
	return w.body.Write(data)
}

// WriteJSON encodes v as the body.
func (w *ResponseWriter) WriteJSON(code response.StatusCode, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.headers.Set("Content-Type", response.ContentTypeJSON)
	w.WriteHeader(code)
	_, err = w.Write(data)
	return err
}

// Error writes a plain text error.
func (w *ResponseWriter) Error(message string, code response.StatusCode) {
	w.headers.Set("Content-Type", response.ContentTypeText)
	w.WriteHeader(code)
	w.Write([]byte(message))
}

func (w *ResponseWriter) response() *response.Response {
	resp := response.WithStatus(w.status)
	w.headers.Each(func(name, value string) {
		resp.Headers().Add(name, value)
	})

	if w.body.Len() > 0 {
		ct := w.headers.Value("Content-Type")
		if ct == "" {
			ct = response.ContentTypeText
		}
		resp.SetBody(ct, w.body.Bytes())
	} else if !w.headers.Has("Content-Length") {
		resp.SetHeader("Content-Length", strconv.Itoa(0))
	}
	return resp
}

// WriterFunc lets a handler written against a ResponseWriter be routed
// like any other Handler.
type WriterFunc func(w *ResponseWriter, req *request.Request)

func (f WriterFunc) ServeHTTP(req *request.Request) *response.Response {
	w := newResponseWriter()
	f(w, req)
	return w.response()
}
