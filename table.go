package honeytable

import "errors"

// magic is the trailing byte sequence that identifies a honeytable store.
// Kept eight bytes long to match the footer layout of the file we are
// reading/writing: root (8 bytes), filter_start (8 bytes), then magic (8
// bytes).
var magic = []byte{0x48, 0x4e, 0x59, 0x31, 0xfa, 0xce, 0x0f, 0xf1}

// MaxKeyLen is the maximum length, in bytes, of any key written to a table.
// Corresponds to HONEY_MAX_KEY_LEN in spec.md §3; the cursor may assume no
// key exceeds this.
const MaxKeyLen = 252

// BinaryChopKeySize is the fixed, zero-padded prefix length stored per entry
// of a binary-chop index. Corresponds to SSINDEX_BINARY_CHOP_KEY_SIZE; it
// must be identical between Writer and Cursor.
const BinaryChopKeySize = 4

// Index type tags, the single byte at the start of the index region.
const (
	indexTypeArray      byte = 0x00
	indexTypeBinaryChop byte = 0x01
	indexTypeSkiplist   byte = 0x02
)

// Exported index type identifiers for WriterOptions.IndexType.
const (
	ArrayIndex      = indexTypeArray
	BinaryChopIndex = indexTypeBinaryChop
	SkiplistIndex   = indexTypeSkiplist
)

// footerSize is the fixed trailing region: root (8 bytes) + filter_start (8
// bytes) + magic (8 bytes). See SPEC_FULL.md §5.1.
const footerSize = 24

// arrayIndexEmptyMarker is the (min_byte, range) pair a zero-entry table's
// array index writes in place of a legitimate (min_byte, range) header. A
// real index always has range == max_byte - min_byte, which can equal 0xff
// only if min_byte is also 0, so (0xff, 0xff) can never arise from actual
// samples; it is reserved to mean "no pointer array follows, every Find is
// a miss" without requiring the reader to know the entry count some other
// way.
const arrayIndexEmptyMarker = 0xff

// ErrNotFound is returned by Reader.Get/Append when a key cannot be found.
var ErrNotFound = errors.New("honeytable: not found")

var errBadMagic = newCorruptError("bad magic byte sequence")
var errClosed = errors.New("honeytable: writer is closed")
