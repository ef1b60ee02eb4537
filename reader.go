package honeytable

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Open reads a table's footer and returns a ready-to-use Cursor. Grounded on
// the teacher's own NewReader (reader.go), which reads a fixed-size footer,
// checks the magic bytes, and locates the index region before doing
// anything else.
func Open(r io.ReaderAt, size int64) (*Cursor, error) {
	if size < footerSize {
		return nil, errBadMagic
	}

	var footer [footerSize]byte
	if _, err := r.ReadAt(footer[:], size-footerSize); err != nil {
		return nil, newDatabaseError("reading footer", err)
	}
	if !bytes.Equal(footer[16:24], magic) {
		return nil, errBadMagic
	}
	root := int64(binary.LittleEndian.Uint64(footer[0:8]))
	filterStart := int64(binary.LittleEndian.Uint64(footer[8:16]))

	var filter *keyFilter
	if filterLen := (size - footerSize) - filterStart; filterLen > 0 {
		raw := make([]byte, filterLen)
		if _, err := r.ReadAt(raw, filterStart); err != nil {
			return nil, newDatabaseError("reading filter block", err)
		}
		f, err := loadKeyFilter(raw)
		if err != nil {
			return nil, err
		}
		filter = f
	}

	file := NewByteFile(r, size-footerSize)
	return NewCursor(file, root, filterStart, filter), nil
}

// Reader is a convenience wrapper around a Cursor for simple point lookups,
// mirroring the teacher's own Reader.Get/Append (reader.go). Unlike the
// teacher's Reader, a honeytable Reader does not maintain a block index of
// its own — the Cursor's Find already does the indexed jump.
type Reader struct {
	cursor *Cursor
}

// NewReader opens a table for point lookups and iteration.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	c, err := Open(r, size)
	if err != nil {
		return nil, err
	}
	return &Reader{cursor: c}, nil
}

// Cursor returns the underlying Cursor for direct iteration (Next/Prev).
// Callers sharing a Reader and its Cursor across goroutines must still
// respect the single-threaded Cursor contract (SPEC_FULL.md §7).
func (r *Reader) Cursor() *Cursor { return r.cursor }

// Append retrieves a single value for key, appending it to dst instead of
// allocating a new slice. It returns ErrNotFound if key is absent.
func (r *Reader) Append(dst, key []byte) ([]byte, error) {
	found, err := r.cursor.Find(key, false)
	if err != nil {
		return dst, err
	}
	if !found {
		return dst, ErrNotFound
	}
	if _, err := r.cursor.ReadTag(false); err != nil {
		return dst, err
	}
	return append(dst, r.cursor.CurrentTag()...), nil
}

// Get is a shortcut for Append(nil, key).
func (r *Reader) Get(key []byte) ([]byte, error) {
	return r.Append(nil, key)
}
