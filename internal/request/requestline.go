package request

import (
	"strings"
)

type requestLine struct {
	method  string
	target  string
	version string
}

// parseRequestLine splits "METHOD SP target SP version". The version is
// kept as sent; only the method is checked against the supported set.
func parseRequestLine(line string) (*requestLine, error) {
	if line == "" {
		return nil, protocolErr(ErrMalformedRequestLine, "empty request line")
	}

	parts := strings.Split(line, " ")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, protocolErr(ErrMalformedRequestLine, "malformed request line %q", line)
	}

	method := strings.ToUpper(parts[0])
	if !isValidMethod(method) {
		return nil, protocolErr(ErrInvalidMethod, "unsupported method %q", parts[0])
	}

	return &requestLine{
		method:  method,
		target:  parts[1],
		version: parts[2],
	}, nil
}

func isValidMethod(method string) bool {
	switch method {
	case "GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS":
		return true
	default:
		return false
	}
}
