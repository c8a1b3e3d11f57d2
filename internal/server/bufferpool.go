package server

import (
	"bufio"
	"io"
	"sync"
)

const connBufferSize = 4096

var (
	readerPool = sync.Pool{
		New: func() any { return bufio.NewReaderSize(nil, connBufferSize) },
	}
	writerPool = sync.Pool{
		New: func() any { return bufio.NewWriterSize(nil, connBufferSize) },
	}
)

func getReader(r io.Reader) *bufio.Reader {
	br := readerPool.Get().(*bufio.Reader)
	br.Reset(r)
	return br
}

func putReader(br *bufio.Reader) {
	br.Reset(nil)
	readerPool.Put(br)
}

func getWriter(w io.Writer) *bufio.Writer {
	bw := writerPool.Get().(*bufio.Writer)
	bw.Reset(w)
	return bw
}

func putWriter(bw *bufio.Writer) {
	bw.Reset(nil)
	writerPool.Put(bw)
}
