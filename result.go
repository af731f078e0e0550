package brc

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// Row is the aggregated result of a single key. Min, Mean and Max are in
// tenths.
type Row struct {
	Key   string
	Count uint64
	Min   int32
	Mean  int32
	Max   int32
}

// String formats the row as "key=min/mean/max".
func (r Row) String() string {
	return string(appendRow(nil, r, BraceFormat))
}

// Results are rows sorted by key.
type Results []Row

// String formats results as "{a=min/mean/max, b=min/mean/max}".
func (rs Results) String() string {
	var b strings.Builder
	_, _ = rs.WriteTo(&b)
	return strings.TrimSuffix(b.String(), "\n")
}

// WriteTo writes results in BraceFormat, followed by a newline.
func (rs Results) WriteTo(w io.Writer) (int64, error) {
	bw := NewWriter(w, nil)
	for _, r := range rs {
		if err := bw.Append(r); err != nil {
			return bw.offset, err
		}
	}
	err := bw.Close()
	return bw.offset, err
}

// Results materializes the table into rows sorted by byte-wise key order.
func (t *Table) Results() Results {
	rs := make(Results, 0, t.size)
	for i := range t.slots {
		s := &t.slots[i]
		if s.Count == 0 {
			continue
		}

		rs = append(rs, Row{
			Key:   string(t.key(s)),
			Count: s.Count,
			Min:   s.Min,
			Mean:  s.Mean(),
			Max:   s.Max,
		})
	}

	slices.SortFunc(rs, func(a, b Row) int {
		return strings.Compare(a.Key, b.Key)
	})
	return rs
}

// FormatTenths formats a value in tenths with exactly one decimal place,
// i.e. -123 as "-12.3".
func FormatTenths(v int32) string {
	return string(appendTenths(nil, v))
}

func appendTenths(dst []byte, v int32) []byte {
	if v < 0 {
		dst = append(dst, '-')
		v = -v
	}
	dst = strconv.AppendInt(dst, int64(v/10), 10)
	return append(dst, '.', byte('0'+v%10))
}

func appendRow(dst []byte, r Row, f Format) []byte {
	switch f {
	case LineFormat:
		dst = append(dst, r.Key...)
		dst = append(dst, ';')
		dst = strconv.AppendUint(dst, r.Count, 10)
		dst = append(dst, ';')
		dst = appendTenths(dst, r.Min)
		dst = append(dst, ';')
		dst = appendTenths(dst, r.Mean)
		dst = append(dst, ';')
		dst = appendTenths(dst, r.Max)
		return append(dst, '\n')
	default:
		dst = append(dst, r.Key...)
		dst = append(dst, '=')
		dst = appendTenths(dst, r.Min)
		dst = append(dst, '/')
		dst = appendTenths(dst, r.Mean)
		dst = append(dst, '/')
		return appendTenths(dst, r.Max)
	}
}
