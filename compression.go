package honeytable

import "github.com/golang/snappy"

// CompressionStream is the streaming decompressor contract the Cursor's
// read_tag uses (spec.md §4.3). DecompressStart resets any internal state;
// DecompressChunk appends decompressed bytes to out and reports whether the
// input completed a full compressed stream.
type CompressionStream interface {
	DecompressStart()
	DecompressChunk(in []byte, out *[]byte) (done bool, err error)
}

// snappyStream is the CompressionStream backing the compressed-flag bit of
// the value header. Grounded on the teacher's own use of
// github.com/golang/snappy in reader.go/writer.go (block-level there,
// value-level here).
type snappyStream struct{}

// NewSnappyStream returns a CompressionStream backed by snappy block
// compression. Snappy's format is self-delimiting and has no notion of
// partial chunks, so DecompressChunk always completes in one call; the
// "done" return exists to satisfy the streaming contract spec.md §4.3
// defines for compressors that might need several chunks.
func NewSnappyStream() CompressionStream { return &snappyStream{} }

func (s *snappyStream) DecompressStart() {}

func (s *snappyStream) DecompressChunk(in []byte, out *[]byte) (bool, error) {
	decoded, err := snappy.Decode(nil, in)
	if err != nil {
		return false, newCorruptError("snappy decompression failed: " + err.Error())
	}
	*out = append(*out, decoded...)
	return true, nil
}

// compressValue encodes value with snappy and reports whether compression
// was worth keeping. Grounded on the teacher's flush(): snappy is only used
// when its output is meaningfully smaller than the raw payload (writer.go's
// `len(w.snp) < len(w.buf)-len(w.buf)/4` — i.e. a reduction of more than a
// quarter).
func compressValue(value []byte) (out []byte, compressed bool) {
	enc := snappy.Encode(nil, value)
	if len(enc) < len(value)-len(value)/4 {
		return enc, true
	}
	return value, false
}
