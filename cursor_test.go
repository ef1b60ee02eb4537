package honeytable_test

import (
	"strings"

	"github.com/weave-search/honeytable"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var indexTypes = map[string]byte{
	"array":       honeytable.ArrayIndex,
	"binary-chop": honeytable.BinaryChopIndex,
	"skiplist":    honeytable.SkiplistIndex,
}

var _ = Describe("Cursor", func() {
	// Scenario A — empty-prefix reuse (spec.md §8).
	It("reuses prefixes across apple/apply/banana", func() {
		kvs := [][2]string{{"apple", "1"}, {"apply", "2"}, {"banana", "3"}}
		cur, err := seedCursor(kvs, honeytable.BinaryChopIndex)
		Expect(err).NotTo(HaveOccurred())

		var got []string
		for {
			ok, err := cur.Next()
			Expect(err).NotTo(HaveOccurred())
			if !ok {
				break
			}
			got = append(got, string(cur.CurrentKey()))
		}
		Expect(got).To(Equal([]string{"apple", "apply", "banana"}))
		Expect(cur.IsAtEnd()).To(BeTrue())
	})

	for name, idxType := range indexTypes {
		idxType := idxType
		name := name

		Describe("with a "+name+" index", func() {
			// Universal property 1: monotone forward iteration.
			It("iterates keys in strictly ascending order and terminates after N entries", func() {
				kvs := asciiRange('a', 'z')
				cur, err := seedCursor(kvs, idxType)
				Expect(err).NotTo(HaveOccurred())

				var prev string
				n := 0
				for {
					ok, err := cur.Next()
					Expect(err).NotTo(HaveOccurred())
					if !ok {
						break
					}
					n++
					Expect(string(cur.CurrentKey()) > prev).To(BeTrue())
					prev = string(cur.CurrentKey())
				}
				Expect(n).To(Equal(len(kvs)))
				Expect(cur.IsAtEnd()).To(BeTrue())
			})

			// Universal property 3/4: find exact match and miss positioning.
			It("finds every key exactly and positions on the least greater key otherwise", func() {
				kvs := asciiRange('a', 'z')
				cur, err := seedCursor(kvs, idxType)
				Expect(err).NotTo(HaveOccurred())

				for _, kv := range kvs {
					ok, err := cur.Find([]byte(kv[0]), false)
					Expect(err).NotTo(HaveOccurred())
					Expect(ok).To(BeTrue())
					Expect(string(cur.CurrentKey())).To(Equal(kv[0]))
				}

				// A key strictly between two present keys: "aa" sorts
				// between "a" and "b" in this alphabet, and is absent.
				ok, err := cur.Find([]byte("aa"), false)
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeFalse())
				Expect(string(cur.CurrentKey())).To(Equal("b"))

				// A key past the last one: is_at_end.
				ok, err = cur.Find([]byte("zz"), false)
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeFalse())
				Expect(cur.IsAtEnd()).To(BeTrue())
			})

			// Universal property 5: backward/forward symmetry.
			It("returns to the same entry after Prev then Next", func() {
				kvs := asciiRange('a', 'z')
				cur, err := seedCursor(kvs, idxType)
				Expect(err).NotTo(HaveOccurred())

				for i := 0; i < 5; i++ {
					ok, err := cur.Next()
					Expect(err).NotTo(HaveOccurred())
					Expect(ok).To(BeTrue())
				}
				key := append([]byte(nil), cur.CurrentKey()...)

				ok, err := cur.Prev()
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeTrue())
				Expect(string(cur.CurrentKey())).To(Equal(kvs[3][0]))

				ok, err = cur.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeTrue())
				Expect(cur.CurrentKey()).To(Equal(key))
			})
		})
	}

	// Scenario B — array index.
	It("jumps via the array index and signals end on a byte outside range", func() {
		kvs := [][2]string{{"a1", "x"}, {"b1", "y"}, {"c1", "z"}}
		cur, err := seedCursor(kvs, honeytable.ArrayIndex)
		Expect(err).NotTo(HaveOccurred())

		ok, err := cur.Find([]byte("b1"), false)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		ok, err = cur.Find([]byte("d1"), false)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
		Expect(cur.IsAtEnd()).To(BeTrue())
	})

	// Scenario C — binary-chop index.
	It("binary-chops to the right cluster and scans to an exact match", func() {
		kvs := [][2]string{
			{"apple", "1"}, {"apricot", "2"},
			{"banana", "3"}, {"bandana", "4"},
			{"cat", "5"}, {"catalog", "6"},
		}
		cur, err := seedCursor(kvs, honeytable.BinaryChopIndex)
		Expect(err).NotTo(HaveOccurred())

		ok, err := cur.Find([]byte("banana"), false)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(string(cur.CurrentKey())).To(Equal("banana"))
	})

	// Scenario D — skiplist jump.
	It("walks the skiplist index past entries less than the target", func() {
		kvs := [][2]string{
			{"a", "1"}, {"e", "2"}, {"i", "3"}, {"m", "4"},
			{"q", "5"}, {"u", "6"}, {"z", "7"},
		}
		cur, err := seedCursor(kvs, honeytable.SkiplistIndex)
		Expect(err).NotTo(HaveOccurred())

		ok, err := cur.Find([]byte("n"), false)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
		Expect(string(cur.CurrentKey())).To(Equal("q"))
	})

	// Scenario E — compressed value, decompression idempotence (property 6)
	// and read_tag(keep_compressed) semantics.
	It("decompresses a compressed value and preserves the compressed bytes under keep_compressed", func() {
		big := strings.Repeat("x", 10000)
		kvs := [][2]string{{"k", big}}
		cur, err := seedCursor(kvs, honeytable.BinaryChopIndex)
		Expect(err).NotTo(HaveOccurred())

		ok, err := cur.Find([]byte("k"), false)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		compressed, err := cur.ReadTag(true)
		Expect(err).NotTo(HaveOccurred())
		Expect(compressed).To(BeTrue())
		rawCompressed := append([]byte(nil), cur.CurrentTag()...)
		Expect(len(rawCompressed) < len(big)).To(BeTrue())

		// Re-find takes Find's fast path, which leaves the compressed bytes
		// read above in current_tag; ReadTag(false) then decompresses them
		// in one call.
		ok, err = cur.Find([]byte("k"), false)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		compressed, err = cur.ReadTag(false)
		Expect(err).NotTo(HaveOccurred())
		Expect(compressed).To(BeFalse())
		Expect(string(cur.CurrentTag())).To(Equal(big))
	})

	// Property 7: value-skip correctness — Next() with a pending val_size
	// produces the same subsequent stream as reading and discarding the tag.
	It("skips an unread value correctly on Next", func() {
		kvs := [][2]string{{"a", "AAAA"}, {"b", "BBBB"}, {"c", "CCCC"}}
		cur, err := seedCursor(kvs, honeytable.BinaryChopIndex)
		Expect(err).NotTo(HaveOccurred())

		ok, err := cur.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(string(cur.CurrentKey())).To(Equal("a"))
		// val_size > 0, no ReadTag call.

		ok, err = cur.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(string(cur.CurrentKey())).To(Equal("b"))
		_, err = cur.ReadTag(false)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(cur.CurrentTag())).To(Equal("BBBB"))
	})

	It("rejects an empty key passed to Find", func() {
		kvs := [][2]string{{"a", "1"}}
		cur, err := seedCursor(kvs, honeytable.BinaryChopIndex)
		Expect(err).NotTo(HaveOccurred())

		_, err = cur.Find(nil, false)
		Expect(err).To(HaveOccurred())
		Expect(err).To(BeAssignableToTypeOf(&honeytable.InvalidArgumentError{}))
	})

	It("returns false from Prev on a freshly rewound cursor", func() {
		kvs := [][2]string{{"a", "1"}, {"b", "2"}}
		cur, err := seedCursor(kvs, honeytable.BinaryChopIndex)
		Expect(err).NotTo(HaveOccurred())

		// current_key is still empty: no Next has been called yet.
		ok, err := cur.Prev()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("returns true but clears current_key when Prev is called on the first entry", func() {
		kvs := [][2]string{{"a", "1"}, {"b", "2"}}
		cur, err := seedCursor(kvs, honeytable.BinaryChopIndex)
		Expect(err).NotTo(HaveOccurred())

		ok, err := cur.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		// honey_cursor.cc's prev() only special-cases an empty current_key;
		// called on the very first entry it still returns true, leaving
		// current_key empty rather than reporting "no predecessor".
		ok, err = cur.Prev()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(cur.CurrentKey()).To(BeEmpty())
	})
})

// asciiRange builds ascending single-character keys "a".."z" (bounded by
// lo/hi) each mapped to a distinct value, used as a generic ordered fixture
// across index types.
func asciiRange(lo, hi byte) [][2]string {
	var kvs [][2]string
	for b := lo; b <= hi; b++ {
		kvs = append(kvs, [2]string{string(b), strings.Repeat(string(b), 3)})
	}
	return kvs
}
