package response

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"sync"
)

type flusher interface {
	Flush() error
}

// Writer serializes responses. It is safe for concurrent use.
type Writer struct {
	dates *DateCache
	bufs  sync.Pool
}

func NewWriter(dates *DateCache) *Writer {
	if dates == nil {
		dates = NewDateCache()
	}
	return &Writer{
		dates: dates,
		bufs: sync.Pool{
			New: func() any { return new(bytes.Buffer) },
		},
	}
}

// maxPooledHead caps the buffers kept for reuse.
const maxPooledHead = 64 << 10

// WriteResponse writes the status line, the headers in insertion order,
// a Date header, and the body. A handler-set Date header is replaced.
func (w *Writer) WriteResponse(out io.Writer, r *Response) error {
	return w.write(out, r, false)
}

// WriteClosing writes r with "Connection: close" in place of any
// Connection header r carries. r itself is not modified.
func (w *Writer) WriteClosing(out io.Writer, r *Response) error {
	return w.write(out, r, true)
}

func (w *Writer) write(out io.Writer, r *Response, forceClose bool) error {
	buf := w.bufs.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		if buf.Cap() <= maxPooledHead {
			w.bufs.Put(buf)
		}
	}()

	buf.WriteString("HTTP/1.1 ")
	buf.WriteString(strconv.Itoa(int(r.code)))
	buf.WriteByte(' ')
	buf.WriteString(r.reason)
	buf.WriteString("\r\n")

	r.headers.Each(func(name, value string) {
		if strings.EqualFold(name, "Date") {
			return
		}
		if forceClose && strings.EqualFold(name, "Connection") {
			return
		}
		buf.WriteString(name)
		buf.WriteString(": ")
		buf.WriteString(value)
		buf.WriteString("\r\n")
	})
	if forceClose {
		buf.WriteString("Connection: close\r\n")
	}

	buf.WriteString("Date: ")
	buf.WriteString(w.dates.Value())
	buf.WriteString("\r\n\r\n")

	if _, err := out.Write(buf.Bytes()); err != nil {
		return err
	}
	if len(r.body) > 0 {
		if _, err := out.Write(r.body); err != nil {
			return err
		}
	}
	if f, ok := out.(flusher); ok {
		return f.Flush()
	}
	return nil
}
