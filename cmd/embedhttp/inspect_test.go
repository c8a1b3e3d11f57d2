package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/embedhttp/internal/request"
)

func TestInspectPipelinedRequests(t *testing.T) {
	raw := "GET /search?q=go&x HTTP/1.1\r\nHost: localhost\r\n\r\n" +
		"POST /submit HTTP/1.1\r\nHost: localhost\r\nContent-Length: 5\r\nConnection: close\r\n\r\nhello"

	var out bytes.Buffer
	err := inspect(bufio.NewReader(strings.NewReader(raw)), &out, request.DefaultLimits())
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "request 1\n")
	assert.Contains(t, got, "path:       /search")
	assert.Contains(t, got, `q = "go"`)
	assert.Contains(t, got, `x = ""`)
	assert.Contains(t, got, "request 2\n")
	assert.Contains(t, got, "method:     POST")
	assert.Contains(t, got, "keep-alive: false")
	assert.Contains(t, got, "body:       5 bytes")
	assert.Contains(t, got, `"hello"`)
}

func TestInspectStopsAtEndOfInput(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nHost: a\r\n\r\n"

	var out bytes.Buffer
	require.NoError(t, inspect(bufio.NewReader(strings.NewReader(raw)), &out, request.DefaultLimits()))
	assert.Equal(t, 1, strings.Count(out.String(), "request "))
}

func TestInspectReportsProtocolErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty input", "", "request 1"},
		{"bad method", "BREW /pot HTTP/1.1\r\n\r\n", "unsupported method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := inspect(bufio.NewReader(strings.NewReader(tt.raw)), &out, request.DefaultLimits())
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestInspectBodyLimit(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nContent-Length: 10\r\n\r\n0123456789"
	limits := request.DefaultLimits()
	limits.MaxBodyBytes = 4
	limits.MaxChunkBytes = 4

	var out bytes.Buffer
	err := inspect(bufio.NewReader(strings.NewReader(raw)), &out, limits)
	assert.ErrorIs(t, err, request.ErrBodyTooLarge)
}
