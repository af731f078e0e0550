package brc

import (
	"fmt"
	"io"

	"github.com/golang/snappy"
)

// Format is the output format of a Writer.
type Format byte

func (f Format) isValid() bool {
	return f >= BraceFormat && f < unknownFormat
}

// Supported output formats
const (
	// BraceFormat writes "{a=min/mean/max, b=min/mean/max}\n".
	BraceFormat Format = iota
	// LineFormat writes one "key;count;min;mean;max\n" line per row.
	LineFormat
	unknownFormat
)

// WriterOptions define writer specific options.
type WriterOptions struct {
	// Format is the output format.
	// Default: BraceFormat.
	Format Format

	// The compression codec to use.
	// Default: NoCompression.
	Compression Compression

	// BufferSize is the number of bytes buffered before they are
	// passed to the underlying writer.
	// Default: 4KiB.
	BufferSize int
}

func (o *WriterOptions) norm() *WriterOptions {
	var oo WriterOptions
	if o != nil {
		oo = *o
	}

	if !oo.Format.isValid() {
		oo.Format = BraceFormat
	}
	if !oo.Compression.isValid() {
		oo.Compression = NoCompression
	}
	if oo.BufferSize < 1 {
		oo.BufferSize = 1 << 12
	}

	return &oo
}

// Writer instances write sorted result rows.
type Writer struct {
	w   io.Writer
	o   *WriterOptions
	snp *snappy.Writer

	last   string // the last appended key
	rows   int    // the number of appended rows
	offset int64  // bytes passed on, before compression

	buf []byte // pending output, nil once closed
}

// NewWriter wraps a writer and returns a Writer.
func NewWriter(w io.Writer, o *WriterOptions) *Writer {
	o = o.norm()

	wr := &Writer{
		w:   w,
		o:   o,
		buf: make([]byte, 0, o.BufferSize),
	}
	if o.Compression == SnappyCompression {
		wr.snp = snappy.NewBufferedWriter(w)
		wr.w = wr.snp
	}
	return wr
}

// Append appends a row. Rows must be appended in strictly increasing key order.
func (w *Writer) Append(r Row) error {
	if w.buf == nil {
		return ErrClosed
	}

	if w.rows != 0 && r.Key <= w.last {
		return fmt.Errorf("brc: attempted an out-of-order append, %q must be > %q", r.Key, w.last)
	}

	if w.o.Format == BraceFormat {
		if w.rows == 0 {
			w.buf = append(w.buf, '{')
		} else {
			w.buf = append(w.buf, ',', ' ')
		}
	}

	w.buf = appendRow(w.buf, r, w.o.Format)
	w.last = r.Key
	w.rows++

	if len(w.buf) >= w.o.BufferSize {
		return w.flush()
	}
	return nil
}

// Close finishes the output and flushes all pending data. It does not close
// the underlying writer.
func (w *Writer) Close() error {
	if w.buf == nil {
		return ErrClosed
	}

	if w.o.Format == BraceFormat {
		if w.rows == 0 {
			w.buf = append(w.buf, '{')
		}
		w.buf = append(w.buf, '}', '\n')
	}

	if err := w.flush(); err != nil {
		return err
	}
	if w.snp != nil {
		if err := w.snp.Close(); err != nil {
			return err
		}
	}

	w.buf = nil
	return nil
}

func (w *Writer) flush() error {
	if len(w.buf) == 0 {
		return nil
	}

	n, err := w.w.Write(w.buf)
	w.offset += int64(n)
	w.buf = w.buf[:0]
	return err
}
