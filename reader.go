package brc

import (
	"fmt"
	"io"
	"sync"
)

// chunkReader owns a reusable buffer and refills it from src. Unconsumed
// bytes are buf[pos:end], base is the stream offset of buf[0].
type chunkReader struct {
	src io.Reader
	buf []byte

	pos  int   // read cursor
	end  int   // fill end
	base int64 // stream offset of buf[0]
	eof  bool  // src is exhausted
}

func newChunkReader(src io.Reader, size int, base int64) *chunkReader {
	return &chunkReader{
		src:  src,
		buf:  fetchBuffer(size),
		base: base,
	}
}

// ensureAvailable guarantees at least n contiguous bytes at the cursor,
// unless the source is exhausted. The unconsumed tail is moved to the
// start of the buffer before the source is read.
func (r *chunkReader) ensureAvailable(n int) error {
	if r.end-r.pos >= n || r.eof {
		return nil
	}

	if r.pos != 0 {
		r.end = copy(r.buf, r.buf[r.pos:r.end])
		r.base += int64(r.pos)
		r.pos = 0
	}

	m, err := io.ReadAtLeast(r.src, r.buf[r.end:], n-r.end)
	r.end += m

	switch err {
	case nil:
	case io.EOF, io.ErrUnexpectedEOF:
		r.eof = true
	default:
		return fmt.Errorf("brc: read failed at offset %d: %w", r.base+int64(r.end), err)
	}
	return nil
}

// atEnd reports whether the source is exhausted and all bytes consumed.
func (r *chunkReader) atEnd() bool {
	return r.eof && r.pos >= r.end
}

// offset returns the stream offset of the cursor.
func (r *chunkReader) offset() int64 {
	return r.base + int64(r.pos)
}

func (r *chunkReader) release() {
	releaseBuffer(r.buf)
	r.buf = nil
}

// --------------------------------------------------------------------

var bufPool sync.Pool

func fetchBuffer(sz int) []byte {
	if v := bufPool.Get(); v != nil {
		if p := v.([]byte); sz <= cap(p) {
			return p[:sz]
		}
	}
	return make([]byte, sz)
}

func releaseBuffer(p []byte) {
	if cap(p) != 0 {
		bufPool.Put(p)
	}
}
