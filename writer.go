package honeytable

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// WriterOptions define writer-specific options, mirroring the teacher's own
// WriterOptions/norm() defaulting pattern (writer.go).
type WriterOptions struct {
	// IndexType selects which of the three index structures (spec.md §3) is
	// built. The zero value is ArrayIndex; any value other than the three
	// index types falls back to BinaryChopIndex.
	IndexType byte

	// RestartInterval is the number of entries between samples in the
	// binary-chop and skiplist indices. A binary-chop sample is skipped when
	// its entry's BinaryChopKeySize-byte prefix equals the previous key's.
	// Default: 16.
	RestartInterval int

	// Compression enables per-value snappy compression (the value header's
	// compressed flag). It is enabled when NewWriter is given nil options;
	// otherwise the field is used as set.
	Compression bool

	// Filter, when true, builds the optional bloom filter sidecar
	// (SPEC_FULL.md §5.1). Default: false.
	Filter bool

	// ExpectedEntries sizes the bloom filter. Only used when Filter is true.
	ExpectedEntries int
}

func (o *WriterOptions) norm() *WriterOptions {
	var oo WriterOptions
	if o != nil {
		oo = *o
	} else {
		oo.Compression = true
	}
	if oo.IndexType != ArrayIndex && oo.IndexType != BinaryChopIndex && oo.IndexType != SkiplistIndex {
		oo.IndexType = BinaryChopIndex
	}
	if oo.RestartInterval < 1 {
		oo.RestartInterval = 16
	}
	return &oo
}

type arraySample struct {
	firstByte byte
	offset    int64
}

type chopSample struct {
	prefix [BinaryChopKeySize]byte
	offset int64
}

type skipSample struct {
	key    []byte
	offset int64
}

// Writer writes a honeytable table. Entries must be appended in strictly
// ascending key order, mirroring the teacher's own out-of-order guard in
// Append (writer.go).
type Writer struct {
	w   io.Writer
	o   *WriterOptions
	pos int64

	lastKey  []byte
	numEntries int

	arraySamples []arraySample
	chopSamples  []chopSample
	skipSamples  []skipSample

	filter *filterBuilder
	closed bool
}

// NewWriter wraps w and returns a Writer.
func NewWriter(w io.Writer, o *WriterOptions) *Writer {
	oo := o.norm()
	wr := &Writer{w: w, o: oo}
	if oo.Filter {
		wr.filter = newFilterBuilder(oo.ExpectedEntries)
	}
	return wr
}

func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// Append appends a single (key, value) entry to the table.
func (w *Writer) Append(key, value []byte) error {
	if w.closed {
		return errClosed
	}
	if len(key) == 0 {
		return newInvalidArgumentError("empty key")
	}
	if len(key) > MaxKeyLen {
		return newInvalidArgumentError("key exceeds MaxKeyLen")
	}
	if w.lastKey != nil && bytes.Compare(key, w.lastKey) <= 0 {
		return fmt.Errorf("honeytable: attempted an out-of-order append, %q must be > %q", key, w.lastKey)
	}

	entryOffset := w.pos

	reuseLen := 0
	if w.lastKey != nil {
		reuseLen = commonPrefixLen(w.lastKey, key)
		if reuseLen > 255 {
			reuseLen = 255
		}
	}
	tail := key[reuseLen:]

	var hdr []byte
	if w.lastKey == nil {
		hdr = []byte{byte(len(key))}
	} else {
		hdr = []byte{byte(reuseLen), byte(len(tail))}
	}
	if err := w.writeRaw(hdr); err != nil {
		return err
	}
	if err := w.writeRaw(tail); err != nil {
		return err
	}
	valHeaderOffset := w.pos

	valBytes, compressed := value, false
	if w.o.Compression {
		valBytes, compressed = compressValue(value)
	}
	h := uint64(len(valBytes)) << 1
	if compressed {
		h |= 1
	}
	if err := w.writeRaw(appendVarint(nil, h)); err != nil {
		return err
	}
	if err := w.writeRaw(valBytes); err != nil {
		return err
	}

	sampleOffset := entryOffset
	if w.o.IndexType == SkiplistIndex {
		// A skiplist index entry carries the whole key, so its pointer
		// addresses the entry's value header rather than its key header.
		sampleOffset = valHeaderOffset
	}
	w.recordSamples(key, sampleOffset)
	if w.filter != nil {
		w.filter.add(key)
	}

	w.lastKey = append(w.lastKey[:0:0], key...)
	w.numEntries++
	return nil
}

func (w *Writer) recordSamples(key []byte, offset int64) {
	switch w.o.IndexType {
	case ArrayIndex:
		if len(w.arraySamples) == 0 || w.arraySamples[len(w.arraySamples)-1].firstByte != key[0] {
			w.arraySamples = append(w.arraySamples, arraySample{firstByte: key[0], offset: offset})
		}
	case BinaryChopIndex:
		// The reader jumps to the first sample whose prefix matches exactly
		// and rebuilds the entry's key from that prefix, so a sample must
		// start a run of its prefix: its prefix differs from the previous
		// key's, which also keeps its reuse length within the prefix.
		var prefix, prevPrefix [BinaryChopKeySize]byte
		copy(prefix[:], key)
		copy(prevPrefix[:], w.lastKey)
		if w.numEntries%w.o.RestartInterval == 0 && (w.lastKey == nil || prefix != prevPrefix) {
			w.chopSamples = append(w.chopSamples, chopSample{prefix: prefix, offset: offset})
		}
	case SkiplistIndex:
		if w.numEntries%w.o.RestartInterval == 0 {
			w.skipSamples = append(w.skipSamples, skipSample{key: append([]byte(nil), key...), offset: offset})
		}
	}
}

// Close finalises the table: it writes the index region, the optional
// filter block, and the footer. Grounded on the teacher's own
// Close/writeIndex/writeFooter sequencing (writer.go), generalised from a
// single block-index type to the three typed index regions of spec.md §3.
func (w *Writer) Close() error {
	if w.closed {
		return errClosed
	}
	root := w.pos

	if err := w.writeIndex(root); err != nil {
		return err
	}
	filterStart := w.pos

	if w.filter != nil {
		if err := w.writeRaw(w.filter.marshal()); err != nil {
			return err
		}
	}

	if err := w.writeFooter(root, filterStart); err != nil {
		return err
	}

	w.closed = true
	return nil
}

func (w *Writer) writeIndex(root int64) error {
	switch w.o.IndexType {
	case ArrayIndex:
		return w.writeArrayIndex(root)
	case BinaryChopIndex:
		return w.writeBinaryChopIndex()
	default:
		return w.writeSkiplistIndex()
	}
}

// writeArrayIndex is only exact (round-trips through Cursor.Find) when
// every key's first byte is within one contiguous [min,max] byte range and
// each first byte occurs as a contiguous run of entries, which is
// guaranteed by strictly-ascending-key order. Pointers for byte values with
// no entries forward-fill to the next present byte's offset (or to root, if
// none), so that a jump there and a subsequent linear scan lands on the
// least key greater than the sought key, matching spec.md §4.4.4's
// "find miss positioning" property for this index type.
func (w *Writer) writeArrayIndex(root int64) error {
	if err := w.writeRaw([]byte{ArrayIndex}); err != nil {
		return err
	}
	if len(w.arraySamples) == 0 {
		return w.writeRaw([]byte{arrayIndexEmptyMarker, arrayIndexEmptyMarker})
	}
	minByte := w.arraySamples[0].firstByte
	maxByte := w.arraySamples[len(w.arraySamples)-1].firstByte
	rangeSize := int(maxByte - minByte)

	present := make(map[byte]int64, len(w.arraySamples))
	for _, s := range w.arraySamples {
		present[s.firstByte] = s.offset
	}
	pointers := make([]int64, rangeSize+1)
	next := root
	for i := rangeSize; i >= 0; i-- {
		if off, ok := present[minByte+byte(i)]; ok {
			next = off
		}
		pointers[i] = next
	}

	if err := w.writeRaw([]byte{minByte, byte(rangeSize)}); err != nil {
		return err
	}
	var buf [4]byte
	for _, p := range pointers {
		binary.BigEndian.PutUint32(buf[:], uint32(p))
		if err := w.writeRaw(buf[:]); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeBinaryChopIndex() error {
	if err := w.writeRaw([]byte{BinaryChopIndex}); err != nil {
		return err
	}
	var cbuf [4]byte
	binary.BigEndian.PutUint32(cbuf[:], uint32(len(w.chopSamples)))
	if err := w.writeRaw(cbuf[:]); err != nil {
		return err
	}
	var pbuf [4]byte
	for _, s := range w.chopSamples {
		if err := w.writeRaw(s.prefix[:]); err != nil {
			return err
		}
		binary.BigEndian.PutUint32(pbuf[:], uint32(s.offset))
		if err := w.writeRaw(pbuf[:]); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeSkiplistIndex() error {
	if err := w.writeRaw([]byte{SkiplistIndex}); err != nil {
		return err
	}
	var prev []byte
	for _, s := range w.skipSamples {
		reuseLen := 0
		if prev != nil {
			reuseLen = commonPrefixLen(prev, s.key)
			if reuseLen > 255 {
				reuseLen = 255
			}
		}
		tail := s.key[reuseLen:]
		if err := w.writeRaw([]byte{byte(reuseLen), byte(len(tail))}); err != nil {
			return err
		}
		if err := w.writeRaw(tail); err != nil {
			return err
		}
		if err := w.writeRaw(appendVarint(nil, uint64(s.offset))); err != nil {
			return err
		}
		prev = s.key
	}
	return nil
}

func (w *Writer) writeFooter(root, filterStart int64) error {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(root))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(filterStart))
	if err := w.writeRaw(buf[:]); err != nil {
		return err
	}
	return w.writeRaw(magic)
}

func (w *Writer) writeRaw(p []byte) error {
	n, err := w.w.Write(p)
	w.pos += int64(n)
	if err != nil {
		return newDatabaseError("writing table bytes", err)
	}
	return nil
}
