package brc

import (
	"errors"
	"strconv"
)

const (
	// MaxKeyLen is the maximum accepted key length in bytes.
	MaxKeyLen = 100

	// the longest value is "-99.9"
	maxValueLen = 5

	// key + ';' + value + '\n'
	maxRecordLen = MaxKeyLen + 1 + maxValueLen + 1
)

// Rolling hash parameters, FNV-64 offset basis and prime applied as
// multiply-add over the key bytes.
const (
	hashSeed       uint64 = 14695981039346656037
	hashMultiplier uint64 = 1099511628211
)

var (
	// ErrTableFull is returned when a table would need to grow beyond
	// its configured maximum size.
	ErrTableFull = errors.New("brc: table is full")

	// ErrClosed is returned when writing to a closed Writer.
	ErrClosed = errors.New("brc: is closed")
)

var errBadCompression = errors.New("brc: bad compression codec")

// FormatError reports a malformed input record.
type FormatError struct {
	Offset int64  // absolute byte offset of the record start
	Reason string // what was wrong
}

func (e *FormatError) Error() string {
	return "brc: malformed record at offset " + strconv.FormatInt(e.Offset, 10) + ": " + e.Reason
}

// Hash returns the rolling hash of key, as computed by the tokenizer.
func Hash(key []byte) uint64 {
	h := hashSeed
	for _, c := range key {
		h = h*hashMultiplier + uint64(c)
	}
	return h
}

// --------------------------------------------------------------------

// Compression is the compression codec of an input or output stream.
type Compression byte

func (c Compression) isValid() bool {
	return c >= NoCompression && c < unknownCompression
}

// Supported compression codecs
const (
	NoCompression Compression = iota
	SnappyCompression
	unknownCompression
)
