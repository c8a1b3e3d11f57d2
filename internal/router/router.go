package router

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
)

var (
	ErrInvalidRoute = errors.New("invalid route")

	ErrInvalidPattern   = fmt.Errorf("%w: invalid pattern", ErrInvalidRoute)
	ErrInvalidParamName = fmt.Errorf("%w: invalid parameter name", ErrInvalidRoute)
	ErrDuplicateRoute   = fmt.Errorf("%w: duplicate route", ErrInvalidRoute)
	ErrDuplicateRoot    = fmt.Errorf("%w: duplicate root route", ErrInvalidRoute)
	ErrParamConflict    = fmt.Errorf("%w: conflicting parameter", ErrInvalidRoute)
	ErrUnknownMethod    = fmt.Errorf("%w: unknown method", ErrInvalidRoute)
	ErrNilHandler       = fmt.Errorf("%w: nil handler", ErrInvalidRoute)
	ErrRouterSealed     = fmt.Errorf("%w: router already serving", ErrInvalidRoute)
)

// Methods lists the methods a route can be registered for.
var Methods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS", "HEAD"}

// Route is a registered (method, pattern) pair. Handler already includes
// the middleware that was in place at registration.
type Route struct {
	Method  string
	Pattern string
	Handler Handler
}

// Router maps requests to routes. All registration must happen before the
// router is sealed by a starting server; lookups take no locks.
type Router struct {
	trees      map[string]*tree
	routes     []*Route
	middleware []Middleware
	sealed     atomic.Bool
}

// New creates a new router
func New() *Router {
	trees := make(map[string]*tree, len(Methods))
	for _, m := range Methods {
		trees[m] = newTree()
	}
	return &Router{trees: trees}
}

// Use appends middleware for routes registered after this call.
func (r *Router) Use(mw ...Middleware) {
	r.middleware = append(r.middleware, mw...)
}

// Handle registers a new route
func (r *Router) Handle(method, pattern string, h Handler) error {
	if r.sealed.Load() {
		return fmt.Errorf("%w: %s %s", ErrRouterSealed, method, pattern)
	}
	if h == nil {
		return fmt.Errorf("%w: %s %s", ErrNilHandler, method, pattern)
	}

	method = strings.ToUpper(method)
	t, ok := r.trees[method]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	route := &Route{
		Method:  method,
		Pattern: pattern,
		Handler: Chain(h, r.middleware...),
	}
	if err := t.insert(route); err != nil {
		return err
	}

	r.routes = append(r.routes, route)
	return nil
}

func (r *Router) mustHandle(method, pattern string, fn HandlerFunc) {
	var h Handler
	if fn != nil {
		h = fn
	}
	if err := r.Handle(method, pattern, h); err != nil {
		panic(err)
	}
}

// The method shortcuts panic on an invalid registration.

func (r *Router) GET(pattern string, h HandlerFunc)     { r.mustHandle("GET", pattern, h) }
func (r *Router) POST(pattern string, h HandlerFunc)    { r.mustHandle("POST", pattern, h) }
func (r *Router) PUT(pattern string, h HandlerFunc)     { r.mustHandle("PUT", pattern, h) }
func (r *Router) DELETE(pattern string, h HandlerFunc)  { r.mustHandle("DELETE", pattern, h) }
func (r *Router) PATCH(pattern string, h HandlerFunc)   { r.mustHandle("PATCH", pattern, h) }
func (r *Router) OPTIONS(pattern string, h HandlerFunc) { r.mustHandle("OPTIONS", pattern, h) }
func (r *Router) HEAD(pattern string, h HandlerFunc)    { r.mustHandle("HEAD", pattern, h) }

// Route finds the route for method and path. The query string is ignored.
func (r *Router) Route(method, path string) (*Route, map[string]string, bool) {
	t, ok := r.trees[method]
	if !ok {
		return nil, nil, false
	}
	route, params := t.lookup(path)
	if route == nil {
		return nil, nil, false
	}
	return route, params, true
}

// Seal stops further registration.
func (r *Router) Seal() {
	r.sealed.Store(true)
}

func (r *Router) Sealed() bool {
	return r.sealed.Load()
}

// Routes returns the registered routes in registration order.
func (r *Router) Routes() []*Route {
	out := make([]*Route, len(r.routes))
	copy(out, r.routes)
	return out
}

// Paths lists every trie node as "METHOD /path", with a trailing "+" on
// nodes that carry a route. Useful when debugging conflicts.
func (r *Router) Paths() []string {
	var paths []string
	for method, t := range r.trees {
		t.root.walk(func(s *segment) {
			if s.kind == kindRoot && s.route == nil {
				return
			}
			p := method + " " + s.String()
			if s.route != nil {
				p += "+"
			}
			paths = append(paths, p)
		})
	}
	sort.Strings(paths)
	return paths
}
