package request

import (
	"io"
	"strconv"
	"strings"

	"github.com/Brownie44l1/embedhttp/internal/headers"
)

func isChunked(h *headers.Headers) bool {
	if h == nil {
		return false
	}
	te, ok := h.Get("Transfer-Encoding")
	return ok && strings.EqualFold(strings.TrimSpace(te), "chunked")
}

// readBody picks the framing: Content-Length wins over chunked, and a
// request with neither has no body.
func (p *parser) readBody(h *headers.Headers) ([]byte, error) {
	if cl, ok := h.Get("Content-Length"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
		if err != nil || n < 0 {
			return nil, protocolErr(ErrInvalidContentLength, "invalid Content-Length %q", cl)
		}
		if n > p.limits.MaxBodyBytes {
			return nil, protocolErr(ErrBodyTooLarge, "declared body size %d exceeds limit of %d bytes", n, p.limits.MaxBodyBytes)
		}
		return p.readFixed(int(n))
	}

	if isChunked(h) {
		return p.readChunked()
	}

	return nil, nil
}

func (p *parser) readFixed(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(p.r, buf); err != nil {
		return nil, truncated(err, "body")
	}
	return buf, nil
}

// readChunked reads SIZE[;ext] CRLF DATA CRLF until a zero-size chunk,
// then discards trailer lines up to the terminating blank line.
func (p *parser) readChunked() ([]byte, error) {
	var body []byte

	for {
		size, err := p.readChunkSize()
		if err != nil {
			return nil, err
		}

		if size == 0 {
			return body, p.skipTrailers()
		}

		if size > p.limits.MaxChunkBytes {
			return nil, protocolErr(ErrChunkTooLarge, "chunk size %d exceeds limit of %d bytes", size, p.limits.MaxChunkBytes)
		}
		if int64(len(body))+size > p.limits.MaxBodyBytes {
			return nil, protocolErr(ErrBodyTooLarge, "chunked body size %d exceeds limit of %d bytes", int64(len(body))+size, p.limits.MaxBodyBytes)
		}

		chunk, err := p.readFixed(int(size))
		if err != nil {
			return nil, err
		}
		body = append(body, chunk...)

		if err := p.expectCRLF(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) readChunkSize() (int64, error) {
	line, err := p.readLine()
	if err != nil {
		return 0, truncatedOrErr(err, "chunk size")
	}

	sizeHex, _, _ := strings.Cut(line, ";")
	sizeHex = strings.TrimSpace(sizeHex)

	size, err := strconv.ParseInt(sizeHex, 16, 64)
	if err != nil || size < 0 {
		return 0, protocolErr(ErrInvalidChunkSize, "invalid chunk size %q", sizeHex)
	}
	return size, nil
}

func (p *parser) expectCRLF() error {
	b, err := p.r.ReadByte()
	if err != nil {
		return truncated(err, "chunk data")
	}
	if b == '\r' {
		if b, err = p.r.ReadByte(); err != nil {
			return truncated(err, "chunk data")
		}
	}
	if b != '\n' {
		return protocolErr(ErrInvalidChunkFormat, "missing CRLF after chunk data")
	}
	return nil
}

func (p *parser) skipTrailers() error {
	for i := 0; ; i++ {
		line, err := p.readLine()
		if err != nil {
			return truncatedOrErr(err, "trailers")
		}
		if line == "" {
			return nil
		}
		if i >= p.limits.MaxHeaders {
			return protocolErr(ErrTooManyHeaders, "more than %d trailer lines", p.limits.MaxHeaders)
		}
	}
}
