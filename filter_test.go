package honeytable_test

import (
	"bytes"
	"fmt"

	"github.com/weave-search/honeytable"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("filter block", func() {
	// Property 12 (SPEC_FULL.md §10): the bloom filter never produces a
	// false negative for a key actually present in the table.
	It("never reports a present key as definitely absent", func() {
		buf := new(bytes.Buffer)
		w := honeytable.NewWriter(buf, &honeytable.WriterOptions{
			IndexType:       honeytable.BinaryChopIndex,
			RestartInterval: 4,
			Filter:          true,
			ExpectedEntries: 200,
		})
		var keys [][]byte
		for i := 0; i < 200; i++ {
			k := []byte(fmt.Sprintf("key-%04d", i))
			keys = append(keys, k)
			Expect(w.Append(k, []byte("v"))).To(Succeed())
		}
		Expect(w.Close()).To(Succeed())

		r, err := honeytable.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
		Expect(err).NotTo(HaveOccurred())

		for _, k := range keys {
			_, err := r.Get(k)
			Expect(err).NotTo(HaveOccurred(), "filter must never exclude a present key: %s", k)
		}
	})

	It("treats a table written without a filter as having none", func() {
		buf := new(bytes.Buffer)
		w := honeytable.NewWriter(buf, &honeytable.WriterOptions{Filter: false})
		Expect(w.Append([]byte("a"), []byte("1"))).To(Succeed())
		Expect(w.Close()).To(Succeed())

		r, err := honeytable.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
		Expect(err).NotTo(HaveOccurred())
		val, err := r.Get([]byte("a"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(val)).To(Equal("1"))
	})
})
