package brc

import "fmt"

// record is a view of a single tokenized record, as offsets into the
// reader's buffer. It is only valid until the next refill.
type record struct {
	keyStart, keyEnd     int
	valueStart, valueEnd int
	hash                 uint64
}

// next tokenizes the record at the cursor and advances past it. The key
// hash is computed in the same pass that looks for the delimiter. The
// caller must ensure maxRecordLen bytes are available.
func (r *chunkReader) next(rec *record) error {
	buf := r.buf[r.pos:r.end]
	hash := hashSeed

	i := 0
	for ; i < len(buf); i++ {
		c := buf[i]
		if c == ';' {
			break
		}
		if c == '\n' {
			return r.errorAt(r.pos, "missing ';' delimiter")
		}
		if i == MaxKeyLen {
			return r.errorAt(r.pos, "key exceeds 100 bytes")
		}
		hash = hash*hashMultiplier + uint64(c)
	}
	if i == len(buf) {
		return r.errorAt(r.pos, "missing ';' delimiter")
	}
	if i == 0 {
		return r.errorAt(r.pos, "empty key")
	}

	j := i + 1
	for j < len(buf) && buf[j] != '\n' {
		if j-i > maxValueLen {
			return r.errorAt(r.pos, "value exceeds 5 bytes")
		}
		j++
	}

	rec.keyStart = r.pos
	rec.keyEnd = r.pos + i
	rec.valueStart = r.pos + i + 1
	rec.valueEnd = r.pos + j
	rec.hash = hash

	// the final record may come without a terminator
	if j < len(buf) {
		j++
	}
	r.pos += j
	return nil
}

func (r *chunkReader) errorAt(pos int, reason string) error {
	return &FormatError{Offset: r.base + int64(pos), Reason: reason}
}

// --------------------------------------------------------------------

// ParseTenths parses a fixed-format decimal, i.e. an optional '-', one or
// two integer digits, a '.' and exactly one fractional digit, and returns
// its value in tenths. "-12.3" is returned as -123.
func ParseTenths(b []byte) (int32, error) {
	v, ok := parseTenths(b)
	if !ok {
		return 0, &FormatError{Reason: fmt.Sprintf("invalid value %q", b)}
	}
	return v, nil
}

func parseTenths(b []byte) (int32, bool) {
	neg := len(b) != 0 && b[0] == '-'
	if neg {
		b = b[1:]
	}

	var v int32
	switch len(b) {
	case 3: // d.d
		if !isDigit(b[0]) || b[1] != '.' || !isDigit(b[2]) {
			return 0, false
		}
		v = int32(b[0]-'0')*10 + int32(b[2]-'0')
	case 4: // dd.d
		if !isDigit(b[0]) || !isDigit(b[1]) || b[2] != '.' || !isDigit(b[3]) {
			return 0, false
		}
		v = int32(b[0]-'0')*100 + int32(b[1]-'0')*10 + int32(b[3]-'0')
	default:
		return 0, false
	}

	if neg {
		v = -v
	}
	return v, true
}

func isDigit(c byte) bool { return c-'0' < 10 }
