package brc

import (
	"bytes"
	"fmt"
	"io"
)

// Stats is the running aggregate of a single key. All values are in tenths.
type Stats struct {
	Min   int32
	Max   int32
	Sum   int64
	Count uint64
}

func newStats(v int32) Stats {
	return Stats{Min: v, Max: v, Sum: int64(v), Count: 1}
}

// Add adds a single value.
func (s *Stats) Add(v int32) {
	if v < s.Min {
		s.Min = v
	}
	if v > s.Max {
		s.Max = v
	}
	s.Sum += int64(v)
	s.Count++
}

// Merge combines o into s.
func (s *Stats) Merge(o Stats) {
	if o.Count == 0 {
		return
	}
	if s.Count == 0 {
		*s = o
		return
	}

	if o.Min < s.Min {
		s.Min = o.Min
	}
	if o.Max > s.Max {
		s.Max = o.Max
	}
	s.Sum += o.Sum
	s.Count += o.Count
}

// Mean returns Sum/Count in tenths, rounded half up (towards positive
// infinity). It returns 0 for an empty aggregate.
func (s Stats) Mean() int32 {
	if s.Count == 0 {
		return 0
	}

	n := int64(s.Count)
	q, r := s.Sum/n, s.Sum%n
	if r < 0 {
		q--
		r += n
	}
	if r >= n-r {
		q++
	}
	return int32(q)
}

// --------------------------------------------------------------------

type slot struct {
	Stats // Count == 0 marks an empty slot

	hash   uint64
	keyOff int
	keyLen int
}

// Table is an open-addressing hash table which maps byte keys to Stats. Keys
// are copied into an internal arena when they are first inserted. Tables are
// not safe for concurrent use.
type Table struct {
	slots     []slot
	mask      uint64
	size      int
	threshold int
	keys      []byte

	maxSize   int
	bufSize   int
	trustHash bool
}

// NewTable creates a new, empty table.
func NewTable(o *Options) *Table {
	o = o.norm()

	// at least 4 slots, so a table which failed to grow keeps a free slot
	n := 4
	for n < o.TableSize {
		n <<= 1
	}

	return &Table{
		slots:     make([]slot, n),
		mask:      uint64(n - 1),
		threshold: n / 2,
		maxSize:   o.MaxTableSize,
		bufSize:   o.BufferSize,
		trustHash: o.TrustHash,
	}
}

// Len returns the number of distinct keys.
func (t *Table) Len() int { return t.size }

// Cap returns the number of slots.
func (t *Table) Cap() int { return len(t.slots) }

// Add is a shortcut for InsertOrUpdate(key, Hash(key), value).
func (t *Table) Add(key []byte, value int32) (Stats, error) {
	return t.InsertOrUpdate(key, Hash(key), value)
}

// InsertOrUpdate adds value to the aggregate of key and returns the updated
// Stats. The hash must have been computed with Hash. It returns ErrTableFull
// when the table cannot grow any further; the value is still applied when
// the error is returned right after the key was inserted.
func (t *Table) InsertOrUpdate(key []byte, hash uint64, value int32) (Stats, error) {
	s, ok := t.find(key, hash)
	if ok {
		s.Add(value)
		return s.Stats, nil
	}
	return t.insert(s, key, hash, newStats(value))
}

// Get returns the Stats of key.
func (t *Table) Get(key []byte) (Stats, bool) {
	s, ok := t.find(key, Hash(key))
	if !ok {
		return Stats{}, false
	}
	return s.Stats, true
}

// Merge folds all aggregates of o into t. It must not be called with t itself.
func (t *Table) Merge(o *Table) error {
	for i := range o.slots {
		src := &o.slots[i]
		if src.Count == 0 {
			continue
		}

		key := o.key(src)
		s, ok := t.find(key, src.hash)
		if ok {
			s.Merge(src.Stats)
		} else if _, err := t.insert(s, key, src.hash, src.Stats); err != nil {
			return err
		}
	}
	return nil
}

// ReadFrom reads records from r until EOF and aggregates them into the table.
// It returns the number of bytes consumed. Malformed records are reported
// as *FormatError.
func (t *Table) ReadFrom(r io.Reader) (int64, error) {
	return t.readFrom(r, 0)
}

func (t *Table) readFrom(src io.Reader, base int64) (int64, error) {
	r := newChunkReader(src, t.bufSize, base)
	defer r.release()

	var rec record
	for {
		if err := r.ensureAvailable(maxRecordLen); err != nil {
			return r.offset() - base, err
		}
		if r.atEnd() {
			return r.offset() - base, nil
		}

		if err := r.next(&rec); err != nil {
			return r.offset() - base, err
		}

		value, ok := parseTenths(r.buf[rec.valueStart:rec.valueEnd])
		if !ok {
			reason := fmt.Sprintf("invalid value %q", r.buf[rec.valueStart:rec.valueEnd])
			return r.offset() - base, r.errorAt(rec.keyStart, reason)
		}

		if _, err := t.InsertOrUpdate(r.buf[rec.keyStart:rec.keyEnd], rec.hash, value); err != nil {
			return r.offset() - base, err
		}
	}
}

// find returns the slot holding key or, if the key is not stored, the empty
// slot where it belongs.
func (t *Table) find(key []byte, hash uint64) (*slot, bool) {
	for i := hash & t.mask; ; i = (i + 1) & t.mask {
		s := &t.slots[i]
		if s.Count == 0 {
			return s, false
		}
		if s.hash == hash && (t.trustHash || bytes.Equal(t.key(s), key)) {
			return s, true
		}
	}
}

func (t *Table) insert(s *slot, key []byte, hash uint64, st Stats) (Stats, error) {
	if t.size > t.threshold {
		return Stats{}, ErrTableFull
	}

	s.Stats = st
	s.hash = hash
	s.keyOff = len(t.keys)
	s.keyLen = len(key)
	t.keys = append(t.keys, key...)
	t.size++

	if t.size > t.threshold {
		if err := t.grow(); err != nil {
			return st, err
		}
	}
	return st, nil
}

// grow doubles the number of slots and re-places all stored entries. Keys
// are known to be unique, so no comparisons are needed.
func (t *Table) grow() error {
	n := 2 * len(t.slots)
	if n > t.maxSize {
		return ErrTableFull
	}

	prev := t.slots
	t.slots = make([]slot, n)
	t.mask = uint64(n - 1)
	t.threshold = n / 2

	for i := range prev {
		if prev[i].Count == 0 {
			continue
		}

		j := prev[i].hash & t.mask
		for t.slots[j].Count != 0 {
			j = (j + 1) & t.mask
		}
		t.slots[j] = prev[i]
	}
	return nil
}

func (t *Table) key(s *slot) []byte {
	end := s.keyOff + s.keyLen
	return t.keys[s.keyOff:end:end]
}
