package honeytable_test

import (
	"bytes"

	"github.com/weave-search/honeytable"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Writer", func() {
	var buf *bytes.Buffer
	var subject *honeytable.Writer

	BeforeEach(func() {
		buf = new(bytes.Buffer)
		subject = honeytable.NewWriter(buf, nil)
	})

	AfterEach(func() {
		_ = subject.Close()
	})

	It("should write an empty table", func() {
		Expect(subject.Close()).To(Succeed())
		// index type byte + empty array index marker (0xff, 0xff) + 24-byte footer.
		Expect(buf.Len()).To(Equal(1 + 2 + 24))
	})

	It("should report every Find as a miss on a closed empty table", func() {
		Expect(subject.Close()).To(Succeed())

		cur, err := honeytable.Open(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
		Expect(err).NotTo(HaveOccurred())

		ok, err := cur.Find([]byte{0x00}, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
		Expect(cur.IsAtEnd()).To(BeTrue())
	})

	It("should prevent out-of-order appends", func() {
		Expect(subject.Append([]byte("b"), []byte("x"))).To(Succeed())
		err := subject.Append([]byte("a"), []byte("x"))
		Expect(err).To(MatchError(`honeytable: attempted an out-of-order append, "a" must be > "b"`))
		Expect(subject.Append([]byte("c"), []byte("x"))).To(Succeed())
		err = subject.Append([]byte("c"), []byte("x"))
		Expect(err).To(MatchError(`honeytable: attempted an out-of-order append, "c" must be > "c"`))
	})

	It("should reject empty keys", func() {
		err := subject.Append(nil, []byte("x"))
		Expect(err).To(HaveOccurred())
		Expect(err).To(BeAssignableToTypeOf(&honeytable.InvalidArgumentError{}))
	})

	It("should reject further appends once closed", func() {
		Expect(subject.Close()).To(Succeed())
		err := subject.Append([]byte("a"), []byte("x"))
		Expect(err).To(HaveOccurred())
	})

	It("should write well-compressible values smaller than incompressible ones", func() {
		compressible := new(bytes.Buffer)
		cw := honeytable.NewWriter(compressible, &honeytable.WriterOptions{Compression: true})
		val := bytes.Repeat([]byte("abcdefgh"), 64)
		for i, key := range []string{"a", "b", "c", "d"} {
			Expect(cw.Append([]byte(key), val)).To(Succeed())
			_ = i
		}
		Expect(cw.Close()).To(Succeed())

		incompressible := new(bytes.Buffer)
		iw := honeytable.NewWriter(incompressible, &honeytable.WriterOptions{Compression: false})
		for _, key := range []string{"a", "b", "c", "d"} {
			Expect(iw.Append([]byte(key), val)).To(Succeed())
		}
		Expect(iw.Close()).To(Succeed())

		Expect(compressible.Len()).To(BeNumerically("<", incompressible.Len()))
	})
})
