package brc

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/golang/snappy"
)

// Options define aggregation specific options.
type Options struct {
	// BufferSize is the size of the read buffer in bytes.
	// Values below 214 bytes (two maximum-length records) are raised.
	// Default: 1MiB.
	BufferSize int

	// TableSize is the initial number of table slots, rounded up
	// to the next power of two.
	// Default: 1024.
	TableSize int

	// MaxTableSize is the maximum number of table slots. Tables
	// which would need to grow beyond it fail with ErrTableFull.
	// Default: 64Mi.
	MaxTableSize int

	// Workers is the number of partitions which are aggregated
	// in parallel by AggregateAt and AggregateFile.
	// Default: 1.
	Workers int

	// The compression codec of the input.
	// Default: NoCompression.
	Compression Compression

	// TrustHash skips the byte comparison of keys with equal hashes.
	// It is faster but silently merges the aggregates of colliding
	// keys. Never enable it for untrusted input.
	TrustHash bool
}

func (o *Options) norm() *Options {
	var oo Options
	if o != nil {
		oo = *o
	}

	if oo.BufferSize < 1 {
		oo.BufferSize = 1 << 20
	} else if oo.BufferSize < 2*maxRecordLen {
		oo.BufferSize = 2 * maxRecordLen
	}
	if oo.TableSize < 1 {
		oo.TableSize = 1 << 10
	}
	if oo.MaxTableSize < 1 {
		oo.MaxTableSize = 1 << 26
	}
	if oo.Workers < 1 {
		oo.Workers = 1
	}

	return &oo
}

// Aggregate reads all records from r and returns the sorted results.
func Aggregate(r io.Reader, o *Options) (Results, error) {
	o = o.norm()

	switch o.Compression {
	case NoCompression:
	case SnappyCompression:
		r = snappy.NewReader(r)
	default:
		return nil, errBadCompression
	}

	t := NewTable(o)
	if _, err := t.ReadFrom(r); err != nil {
		return nil, err
	}
	return t.Results(), nil
}

// AggregateAt reads all records from the first size bytes of r. The input is
// split into Options.Workers partitions at record boundaries which are
// aggregated in parallel and merged. Compressed input is always read
// sequentially.
func AggregateAt(r io.ReaderAt, size int64, o *Options) (Results, error) {
	o = o.norm()

	if o.Workers == 1 || o.Compression != NoCompression {
		return Aggregate(io.NewSectionReader(r, 0, size), o)
	}

	bounds, err := partition(r, size, o.Workers)
	if err != nil {
		return nil, err
	}

	tables := make([]*Table, o.Workers)
	errs := make([]error, o.Workers)

	var wg sync.WaitGroup
	for i := 0; i < o.Workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			start, end := bounds[i], bounds[i+1]
			tables[i] = NewTable(o)
			_, errs[i] = tables[i].readFrom(io.NewSectionReader(r, start, end-start), start)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	t := tables[0]
	for _, u := range tables[1:] {
		if err := t.Merge(u); err != nil {
			return nil, err
		}
	}
	return t.Results(), nil
}

// AggregateFile opens the named file and aggregates its records, see
// AggregateAt.
func AggregateFile(name string, o *Options) (Results, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return AggregateAt(f, fi.Size(), o)
}

// partition splits [0, size) into n ranges. Every interior boundary is moved
// forward to the start of the next record.
func partition(r io.ReaderAt, size int64, n int) ([]int64, error) {
	bounds := make([]int64, n+1)
	bounds[n] = size

	buf := make([]byte, maxRecordLen)
	for i := 1; i < n; i++ {
		off := size * int64(i) / int64(n)
		if off < bounds[i-1] {
			off = bounds[i-1]
		}

		pos, err := nextRecordStart(r, off, size, buf)
		if err != nil {
			return nil, err
		}
		bounds[i] = pos
	}
	return bounds, nil
}

// nextRecordStart returns the smallest record start >= off.
func nextRecordStart(r io.ReaderAt, off, size int64, buf []byte) (int64, error) {
	if off <= 0 {
		return 0, nil
	}

	// off is a record start if the preceding byte terminates a record
	for pos := off - 1; pos < size; {
		if x := size - pos; x < int64(len(buf)) {
			buf = buf[:int(x)]
		}

		n, err := r.ReadAt(buf, pos)
		if i := bytes.IndexByte(buf[:n], '\n'); i >= 0 {
			return pos + int64(i) + 1, nil
		}
		if err == io.EOF {
			break
		} else if err != nil {
			return 0, fmt.Errorf("brc: read failed at offset %d: %w", pos, err)
		}
		pos += int64(n)
	}
	return size, nil
}
