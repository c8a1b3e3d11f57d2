package request

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Brownie44l1/embedhttp/internal/headers"
)

// Default size limits.
const (
	MaxHeaders         = 100
	MaxHeaderLineBytes = 8192
	MaxBodyBytes       = 10 << 20
	MaxChunkBytes      = 1 << 20
)

var (
	// ErrClientDisconnected means the stream ended or timed out before a
	// request line arrived. It is the normal end of an idle connection.
	ErrClientDisconnected = errors.New("client disconnected")

	// ErrProtocol matches every *ProtocolError via errors.Is.
	ErrProtocol = errors.New("protocol error")

	ErrMalformedRequestLine = errors.New("malformed request line")
	ErrInvalidMethod        = errors.New("invalid HTTP method")
	ErrLineTooLong          = errors.New("line too long")
	ErrTooManyHeaders       = errors.New("too many header lines")
	ErrInvalidContentLength = errors.New("invalid Content-Length")
	ErrBodyTooLarge         = errors.New("body too large")
	ErrChunkTooLarge        = errors.New("chunk size too large")
	ErrInvalidChunkSize     = errors.New("invalid chunk size")
	ErrInvalidChunkFormat   = errors.New("invalid chunk format")
	ErrUnexpectedEOF        = errors.New("unexpected end of stream")
)

// ProtocolError reports malformed or oversized input. The connection that
// produced it cannot be trusted to resynchronize.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	return "protocol error: " + e.Reason
}

func (e *ProtocolError) Unwrap() error { return e.Err }

func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

func protocolErr(kind error, format string, args ...any) *ProtocolError {
	return &ProtocolError{Reason: fmt.Sprintf(format, args...), Err: kind}
}

// Limits bounds what a single request may contain.
type Limits struct {
	MaxHeaders         int
	MaxHeaderLineBytes int
	MaxBodyBytes       int64
	MaxChunkBytes      int64
}

func DefaultLimits() Limits {
	return Limits{
		MaxHeaders:         MaxHeaders,
		MaxHeaderLineBytes: MaxHeaderLineBytes,
		MaxBodyBytes:       MaxBodyBytes,
		MaxChunkBytes:      MaxChunkBytes,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxHeaders <= 0 {
		l.MaxHeaders = d.MaxHeaders
	}
	if l.MaxHeaderLineBytes <= 0 {
		l.MaxHeaderLineBytes = d.MaxHeaderLineBytes
	}
	if l.MaxBodyBytes <= 0 {
		l.MaxBodyBytes = d.MaxBodyBytes
	}
	if l.MaxChunkBytes <= 0 {
		l.MaxChunkBytes = d.MaxChunkBytes
	}
	return l
}

type parser struct {
	r      *bufio.Reader
	limits Limits
}

// Parse reads one request using the default limits.
func Parse(r *bufio.Reader) (*Request, error) {
	return ParseWithLimits(r, DefaultLimits())
}

// ParseWithLimits reads one request. Errors are ErrClientDisconnected,
// a *ProtocolError, or nil.
func ParseWithLimits(r *bufio.Reader, limits Limits) (*Request, error) {
	p := &parser{r: r, limits: limits.withDefaults()}

	line, err := p.readLine()
	if err != nil {
		var pe *ProtocolError
		if errors.As(err, &pe) {
			return nil, pe
		}
		return nil, ErrClientDisconnected
	}

	rl, err := parseRequestLine(line)
	if err != nil {
		return nil, err
	}

	req := New(rl.method, rl.target)
	req.Version = rl.version

	if err := p.readHeaders(req.Headers); err != nil {
		return nil, err
	}

	body, err := p.readBody(req.Headers)
	if err != nil {
		return nil, err
	}
	req.Body = body
	req.KeepAlive = keepAlive(req.Headers)

	return req, nil
}

func (p *parser) readHeaders(h *headers.Headers) error {
	for count := 0; ; count++ {
		line, err := p.readLine()
		if err != nil {
			return truncatedOrErr(err, "headers")
		}
		if line == "" {
			return nil
		}

		if count >= p.limits.MaxHeaders {
			return protocolErr(ErrTooManyHeaders, "more than %d headers", p.limits.MaxHeaders)
		}

		name, value, err := headers.ParseLine(line)
		if err != nil {
			return &ProtocolError{Reason: err.Error(), Err: err}
		}
		h.Add(name, value)
	}
}

// readLine returns the next line without its CRLF (a bare LF is accepted).
// Lines longer than the header line limit fail without being buffered.
// A read error with nothing consumed is returned as is.
func (p *parser) readLine() (string, error) {
	var sb strings.Builder
	for {
		frag, err := p.r.ReadSlice('\n')
		if sb.Len()+len(frag) > p.limits.MaxHeaderLineBytes+2 {
			return "", protocolErr(ErrLineTooLong, "line of more than %d bytes exceeds limit of %d bytes",
				sb.Len()+len(frag), p.limits.MaxHeaderLineBytes)
		}
		sb.Write(frag)

		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if sb.Len() > 0 {
			return "", truncated(err, "line")
		}
		return "", err
	}

	line := strings.TrimSuffix(sb.String(), "\n")
	line = strings.TrimSuffix(line, "\r")
	if len(line) > p.limits.MaxHeaderLineBytes {
		return "", protocolErr(ErrLineTooLong, "line of %d bytes exceeds limit of %d bytes", len(line), p.limits.MaxHeaderLineBytes)
	}
	return line, nil
}

// truncated reports a stream that ended mid-request.
func truncated(err error, where string) *ProtocolError {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return protocolErr(ErrUnexpectedEOF, "unexpected end of stream while reading %s", where)
	}
	return protocolErr(ErrUnexpectedEOF, "read failed while reading %s: %v", where, err)
}

func truncatedOrErr(err error, where string) error {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe
	}
	return truncated(err, where)
}

// keepAlive applies the Connection header: only "close" ends the
// connection.
func keepAlive(h *headers.Headers) bool {
	v, ok := h.Get("Connection")
	if !ok {
		return true
	}
	return !strings.EqualFold(strings.TrimSpace(v), "close")
}
