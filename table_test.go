package brc_test

import (
	"fmt"

	"github.com/bsm/brc"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("Stats", func() {
	It("should add", func() {
		s := brc.Stats{Min: 10, Max: 10, Sum: 10, Count: 1}
		s.Add(-5)
		s.Add(30)
		Expect(s).To(Equal(brc.Stats{Min: -5, Max: 30, Sum: 35, Count: 3}))
	})

	It("should merge", func() {
		s := brc.Stats{Min: 10, Max: 20, Sum: 30, Count: 2}
		s.Merge(brc.Stats{Min: -10, Max: 15, Sum: 5, Count: 2})
		Expect(s).To(Equal(brc.Stats{Min: -10, Max: 20, Sum: 35, Count: 4}))

		s.Merge(brc.Stats{})
		Expect(s).To(Equal(brc.Stats{Min: -10, Max: 20, Sum: 35, Count: 4}))

		var z brc.Stats
		z.Merge(s)
		Expect(z).To(Equal(s))
	})

	DescribeTable("should round means half up",
		func(sum int64, count uint64, exp int32) {
			Expect(brc.Stats{Sum: sum, Count: count}.Mean()).To(Equal(exp))
		},
		Entry("exact", int64(224), uint64(2), int32(112)),
		Entry("half", int64(5), uint64(2), int32(3)),
		Entry("negative half", int64(-5), uint64(2), int32(-2)),
		Entry("negative half to zero", int64(-1), uint64(2), int32(0)),
		Entry("below half", int64(1), uint64(3), int32(0)),
		Entry("above half", int64(2), uint64(3), int32(1)),
		Entry("negative below half", int64(-1), uint64(3), int32(0)),
		Entry("negative above half", int64(-2), uint64(3), int32(-1)),
		Entry("empty", int64(0), uint64(0), int32(0)),
	)
})

var _ = Describe("Table", func() {
	var subject *brc.Table

	BeforeEach(func() {
		subject = brc.NewTable(nil)
	})

	It("should init", func() {
		Expect(subject.Len()).To(Equal(0))
		Expect(subject.Cap()).To(Equal(1024))
		Expect(brc.NewTable(&brc.Options{TableSize: 5}).Cap()).To(Equal(8))
		Expect(brc.NewTable(&brc.Options{TableSize: 1}).Cap()).To(Equal(4))
	})

	It("should insert and update", func() {
		Expect(subject.Add([]byte("Hamburg"), 123)).To(Equal(brc.Stats{Min: 123, Max: 123, Sum: 123, Count: 1}))
		Expect(subject.Add([]byte("Hamburg"), 101)).To(Equal(brc.Stats{Min: 101, Max: 123, Sum: 224, Count: 2}))
		Expect(subject.Add([]byte("Berlin"), -50)).To(Equal(brc.Stats{Min: -50, Max: -50, Sum: -50, Count: 1}))
		Expect(subject.Len()).To(Equal(2))

		s, ok := subject.Get([]byte("Hamburg"))
		Expect(ok).To(BeTrue())
		Expect(s).To(Equal(brc.Stats{Min: 101, Max: 123, Sum: 224, Count: 2}))

		_, ok = subject.Get([]byte("Hamburg2"))
		Expect(ok).To(BeFalse())
	})

	It("should own key copies", func() {
		key := []byte("Hamburg")
		_, err := subject.Add(key, 10)
		Expect(err).NotTo(HaveOccurred())

		copy(key, "Hanover")
		_, ok := subject.Get([]byte("Hamburg"))
		Expect(ok).To(BeTrue())
		_, ok = subject.Get([]byte("Hanover"))
		Expect(ok).To(BeFalse())
	})

	It("should resolve bucket collisions", func() {
		subject = brc.NewTable(&brc.Options{TableSize: 16})

		// find two keys sharing the same bucket
		var keys [][]byte
		buckets := make(map[uint64][]byte)
		for i := 0; len(keys) == 0; i++ {
			key := []byte(fmt.Sprintf("station-%d", i))
			b := brc.Hash(key) & 15
			if other, ok := buckets[b]; ok {
				keys = append(keys, other, key)
			}
			buckets[b] = key
		}

		for i := int32(0); i < 100; i++ {
			_, err := subject.Add(keys[0], i)
			Expect(err).NotTo(HaveOccurred())
			_, err = subject.Add(keys[1], -i)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(subject.Len()).To(Equal(2))
		Expect(subject.Cap()).To(Equal(16))

		s, ok := subject.Get(keys[0])
		Expect(ok).To(BeTrue())
		Expect(s).To(Equal(brc.Stats{Min: 0, Max: 99, Sum: 4950, Count: 100}))

		s, ok = subject.Get(keys[1])
		Expect(ok).To(BeTrue())
		Expect(s).To(Equal(brc.Stats{Min: -99, Max: 0, Sum: -4950, Count: 100}))
	})

	It("should resolve hash collisions", func() {
		for i := int32(0); i < 10; i++ {
			Expect(subject.InsertOrUpdate([]byte("alpha"), 42, i)).To(HaveField("Count", uint64(i+1)))
			Expect(subject.InsertOrUpdate([]byte("beta"), 42, 100+i)).To(HaveField("Count", uint64(i+1)))
			Expect(subject.InsertOrUpdate([]byte("gamma"), 42+1024, -i)).To(HaveField("Count", uint64(i+1)))
		}
		Expect(subject.Len()).To(Equal(3))
		Expect(subject.Results()).To(Equal(brc.Results{
			{Key: "alpha", Count: 10, Min: 0, Mean: 5, Max: 9},
			{Key: "beta", Count: 10, Min: 100, Mean: 105, Max: 109},
			{Key: "gamma", Count: 10, Min: -9, Mean: -4, Max: 0},
		}))
	})

	It("should merge colliding keys when hashes are trusted", func() {
		subject = brc.NewTable(&brc.Options{TrustHash: true})
		Expect(subject.InsertOrUpdate([]byte("alpha"), 42, 10)).To(HaveField("Count", uint64(1)))
		Expect(subject.InsertOrUpdate([]byte("beta"), 42, 20)).To(HaveField("Count", uint64(2)))
		Expect(subject.Len()).To(Equal(1))
	})

	It("should grow", func() {
		subject = brc.NewTable(&brc.Options{TableSize: 4})
		Expect(subject.Add([]byte("k0"), 0)).To(HaveField("Count", uint64(1)))
		Expect(subject.Add([]byte("k1"), 1)).To(HaveField("Count", uint64(1)))
		Expect(subject.Cap()).To(Equal(4))
		Expect(subject.Len()).To(Equal(2))

		Expect(subject.Add([]byte("k2"), 2)).To(HaveField("Count", uint64(1)))
		Expect(subject.Cap()).To(Equal(8))
		Expect(subject.Len()).To(Equal(3))

		for i := 0; i < 1000; i++ {
			key := []byte(fmt.Sprintf("k%d", i))
			for j := 0; j < 3; j++ {
				_, err := subject.Add(key, int32(i%1000-j))
				Expect(err).NotTo(HaveOccurred())
			}
		}
		Expect(subject.Len()).To(Equal(1000))
		Expect(subject.Cap()).To(Equal(2048))

		for i := 0; i < 1000; i++ {
			s, ok := subject.Get([]byte(fmt.Sprintf("k%d", i)))
			Expect(ok).To(BeTrue(), "for k%d", i)

			exp := brc.Stats{Min: int32(i - 2), Max: int32(i), Sum: int64(3*i - 3), Count: 3}
			if i < 3 {
				exp = brc.Stats{Min: int32(i - 2), Max: int32(i), Sum: int64(4*i - 3), Count: 4}
			}
			Expect(s).To(Equal(exp), "for k%d", i)
		}
	})

	It("should preserve aggregates across resizes", func() {
		subject = brc.NewTable(&brc.Options{TableSize: 4})
		for i := 0; i < 200; i++ {
			before := subject.Results()
			size := subject.Cap()

			_, err := subject.Add([]byte(fmt.Sprintf("key-%03d", i)), int32(i))
			Expect(err).NotTo(HaveOccurred())
			if subject.Cap() == size {
				continue
			}

			after := subject.Results()
			Expect(after).To(HaveLen(len(before) + 1))
			Expect(after[:len(before)]).To(Equal(before))
		}
	})

	It("should fail when full", func() {
		subject = brc.NewTable(&brc.Options{TableSize: 4, MaxTableSize: 4})
		Expect(subject.Add([]byte("a"), 1)).To(HaveField("Count", uint64(1)))
		Expect(subject.Add([]byte("b"), 2)).To(HaveField("Count", uint64(1)))

		_, err := subject.Add([]byte("c"), 3)
		Expect(err).To(MatchError(brc.ErrTableFull))
		_, err = subject.Add([]byte("d"), 4)
		Expect(err).To(MatchError(brc.ErrTableFull))
		Expect(subject.Len()).To(Equal(3))

		_, ok := subject.Get([]byte("c"))
		Expect(ok).To(BeTrue())
		_, ok = subject.Get([]byte("d"))
		Expect(ok).To(BeFalse())

		Expect(subject.Add([]byte("a"), 5)).To(HaveField("Count", uint64(2)))
	})

	It("should merge", func() {
		other := brc.NewTable(&brc.Options{TableSize: 4})
		for i := 0; i < 50; i++ {
			_, err := subject.Add([]byte(fmt.Sprintf("k%d", i)), int32(i))
			Expect(err).NotTo(HaveOccurred())
			_, err = other.Add([]byte(fmt.Sprintf("k%d", i+25)), int32(-i))
			Expect(err).NotTo(HaveOccurred())
		}

		Expect(subject.Merge(other)).To(Succeed())
		Expect(subject.Len()).To(Equal(75))

		s, ok := subject.Get([]byte("k30"))
		Expect(ok).To(BeTrue())
		Expect(s).To(Equal(brc.Stats{Min: -5, Max: 30, Sum: 25, Count: 2}))

		s, ok = subject.Get([]byte("k74"))
		Expect(ok).To(BeTrue())
		Expect(s).To(Equal(brc.Stats{Min: -49, Max: -49, Sum: -49, Count: 1}))
	})

	It("should merge associatively", func() {
		recs := seedRecords(10000, 300)
		parts := []*brc.Table{brc.NewTable(nil), brc.NewTable(nil), brc.NewTable(nil)}
		for i, r := range recs {
			_, err := parts[(i*7)%3].Add([]byte(r.Key), r.Value)
			Expect(err).NotTo(HaveOccurred())
		}

		Expect(parts[1].Merge(parts[2])).To(Succeed())
		Expect(parts[0].Merge(parts[1])).To(Succeed())
		Expect(parts[0].Results()).To(Equal(expectedResults(recs)))
	})
})
