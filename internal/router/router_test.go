package router

import (
	"testing"

	"github.com/Brownie44l1/embedhttp/internal/request"
	"github.com/Brownie44l1/embedhttp/internal/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(body string) HandlerFunc {
	return func(*request.Request) *response.Response {
		return response.Text(response.StatusOK, body)
	}
}

func serve(t *testing.T, r *Router, method, path string) string {
	t.Helper()
	route, params, ok := r.Route(method, path)
	require.True(t, ok, "%s %s should match", method, path)
	resp := route.Handler.ServeHTTP(request.New(method, path).WithParams(params))
	return string(resp.Body())
}

func sampleRouter(t *testing.T) *Router {
	r := New()
	require.NoError(t, r.Handle("GET", "/get", text("get")))
	require.NoError(t, r.Handle("PUT", "/put/:id", text("put")))
	require.NoError(t, r.Handle("POST", "/v1/resource/:id/section/:name", text("post")))
	return r
}

func TestRouteMatching(t *testing.T) {
	r := sampleRouter(t)

	route, params, ok := r.Route("GET", "/get?name=value")
	require.True(t, ok)
	assert.Equal(t, "/get", route.Pattern)
	assert.Empty(t, params)

	route, params, ok = r.Route("PUT", "/put/123")
	require.True(t, ok)
	assert.Equal(t, "/put/:id", route.Pattern)
	assert.Equal(t, map[string]string{"id": "123"}, params)

	_, _, ok = r.Route("POST", "/post")
	assert.False(t, ok)

	_, _, ok = r.Route("PUT", "/put")
	assert.False(t, ok, "missing required segment")

	_, params, ok = r.Route("POST", "/v1/resource/123/section/abc")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"id": "123", "name": "abc"}, params)
}

func TestRouteExactDepth(t *testing.T) {
	r := sampleRouter(t)

	_, _, ok := r.Route("PUT", "/put/123/extra")
	assert.False(t, ok)

	_, _, ok = r.Route("POST", "/v1/resource/123")
	assert.False(t, ok, "intermediate node without a route")

	_, _, ok = r.Route("GET", "/put/123")
	assert.False(t, ok, "method mismatch")

	_, _, ok = r.Route("BREW", "/get")
	assert.False(t, ok)
}

func TestRouteNormalizesSegments(t *testing.T) {
	r := sampleRouter(t)

	_, _, ok := r.Route("GET", "//get/")
	assert.True(t, ok)

	_, params, ok := r.Route("PUT", "/put//7/")
	require.True(t, ok)
	assert.Equal(t, "7", params["id"])
}

func TestStaticPreferredOverParam(t *testing.T) {
	r := New()
	r.GET("/users/:id", text("param"))
	r.GET("/users/me", text("static"))

	assert.Equal(t, "static", serve(t, r, "GET", "/users/me"))
	assert.Equal(t, "param", serve(t, r, "GET", "/users/42"))
}

func TestLookupDoesNotBacktrack(t *testing.T) {
	r := New()
	r.GET("/a/b", text("static"))
	r.GET("/a/:x/c", text("param"))

	// "/a/b/c" takes the static "b" branch and stops there
	_, _, ok := r.Route("GET", "/a/b/c")
	assert.False(t, ok)

	assert.Equal(t, "param", serve(t, r, "GET", "/a/z/c"))
}

func TestRootRoute(t *testing.T) {
	r := New()
	r.GET("/", text("root"))

	assert.Equal(t, "root", serve(t, r, "GET", "/"))
	assert.Equal(t, "root", serve(t, r, "GET", "/?q=1"))
	assert.Equal(t, "root", serve(t, r, "GET", "//"))

	err := r.Handle("GET", "/", text("again"))
	assert.ErrorIs(t, err, ErrDuplicateRoot)
	assert.ErrorIs(t, err, ErrInvalidRoute)

	// another method has its own root
	assert.NoError(t, r.Handle("POST", "/", text("post root")))
}

func TestRegistrationErrors(t *testing.T) {
	r := sampleRouter(t)

	tests := []struct {
		name    string
		method  string
		pattern string
		want    error
	}{
		{"duplicate", "GET", "/get", ErrDuplicateRoute},
		{"duplicate after normalization", "GET", "/get/", ErrDuplicateRoute},
		{"param conflict", "PUT", "/put/:other", ErrParamConflict},
		{"param conflict deeper", "PUT", "/put/:key/x", ErrParamConflict},
		{"empty pattern", "GET", "", ErrInvalidPattern},
		{"no leading slash", "GET", "get", ErrInvalidPattern},
		{"empty param name", "GET", "/x/:", ErrInvalidParamName},
		{"param starts with digit", "GET", "/x/:1d", ErrInvalidParamName},
		{"param with dash", "GET", "/x/:user-id", ErrInvalidParamName},
		{"unknown method", "BREW", "/coffee", ErrUnknownMethod},
		{"nil handler", "GET", "/nil", ErrNilHandler},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h Handler = text("x")
			if tt.want == ErrNilHandler {
				h = nil
			}
			err := r.Handle(tt.method, tt.pattern, h)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrInvalidRoute)
		})
	}

	// same parameter name is reused
	assert.NoError(t, r.Handle("PUT", "/put/:id/tags", text("tags")))
	// lower-case method is accepted
	assert.NoError(t, r.Handle("delete", "/put/:id", text("del")))
}

func TestShortcutsPanic(t *testing.T) {
	r := New()
	r.GET("/x", text("x"))

	assert.Panics(t, func() { r.GET("/x", text("again")) })
	assert.Panics(t, func() { r.POST("/x/:bad-name", text("x")) })
	assert.Panics(t, func() { r.PATCH("/y", nil) })
	assert.NotPanics(t, func() {
		r.PUT("/x", text("x"))
		r.DELETE("/x", text("x"))
		r.PATCH("/x", text("x"))
		r.OPTIONS("/x", text("x"))
		r.HEAD("/x", text("x"))
	})
}

func TestSealedRouter(t *testing.T) {
	r := sampleRouter(t)
	r.Seal()

	assert.True(t, r.Sealed())
	err := r.Handle("GET", "/late", text("late"))
	assert.ErrorIs(t, err, ErrRouterSealed)

	_, _, ok := r.Route("GET", "/get")
	assert.True(t, ok, "lookups keep working")
}

func TestMiddlewareOrder(t *testing.T) {
	var calls []string
	tag := func(name string) Middleware {
		return func(next Handler) Handler {
			return HandlerFunc(func(req *request.Request) *response.Response {
				calls = append(calls, name)
				return next.ServeHTTP(req)
			})
		}
	}

	r := New()
	r.GET("/before", text("before"))
	r.Use(tag("outer"), tag("inner"))
	r.GET("/after", text("after"))

	serve(t, r, "GET", "/before")
	assert.Empty(t, calls)

	serve(t, r, "GET", "/after")
	assert.Equal(t, []string{"outer", "inner"}, calls)
}

func TestHandlerReceivesParams(t *testing.T) {
	r := New()
	r.PUT("/resource/:id", func(req *request.Request) *response.Response {
		return response.Text(response.StatusOK, req.Param("id")+"/"+req.QueryParam("name"))
	})

	assert.Equal(t, "42/bob", serve(t, r, "PUT", "/resource/42?name=bob"))
}

func TestRoutesAndPaths(t *testing.T) {
	r := sampleRouter(t)
	r.GET("/", text("root"))

	routes := r.Routes()
	require.Len(t, routes, 4)
	assert.Equal(t, "GET", routes[0].Method)
	assert.Equal(t, "/get", routes[0].Pattern)
	assert.Equal(t, "/", routes[3].Pattern)

	assert.Equal(t, []string{
		"GET /+",
		"GET /get+",
		"POST /v1",
		"POST /v1/resource",
		"POST /v1/resource/:id",
		"POST /v1/resource/:id/section",
		"POST /v1/resource/:id/section/:name+",
		"PUT /put",
		"PUT /put/:id+",
	}, r.Paths())
}

func TestSegmentString(t *testing.T) {
	root := newRoot()
	assert.Equal(t, "/", root.String())

	users := root.staticChild("users")
	id, ok := users.paramChild("id")
	require.True(t, ok)
	posts := id.staticChild("posts")
	assert.Equal(t, "/users/:id/posts", posts.String())

	same, ok := users.paramChild("id")
	assert.True(t, ok)
	assert.Same(t, id, same)

	_, ok = users.paramChild("other")
	assert.False(t, ok)
}
