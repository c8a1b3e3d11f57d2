package router

import (
	"github.com/Brownie44l1/embedhttp/internal/request"
	"github.com/Brownie44l1/embedhttp/internal/response"
)

// Handler produces the response for a routed request. A panic or a nil
// response is turned into a 500 by the server.
type Handler interface {
	ServeHTTP(req *request.Request) *response.Response
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(req *request.Request) *response.Response

func (f HandlerFunc) ServeHTTP(req *request.Request) *response.Response {
	return f(req)
}

// Middleware wraps a handler
type Middleware func(next Handler) Handler

// Chain wraps h so that the first middleware runs outermost.
func Chain(h Handler, mw ...Middleware) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}
