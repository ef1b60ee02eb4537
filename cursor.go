package honeytable

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Cursor is a forward- and backward-iterable, random-access reader over a
// single immutable honeytable table (spec.md §3/§4.4). It is single-
// threaded and non-reentrant: see SPEC_FULL.md §7.
type Cursor struct {
	file ByteFile
	root int64
	// indexEnd bounds the skiplist index's end-of-stream termination: the
	// index region occupies [root, indexEnd), with an optional filter block
	// (not part of the index) occupying [indexEnd, footer) (SPEC_FULL.md §5.1).
	indexEnd int64

	isAtEnd bool

	lastKey    []byte
	currentKey []byte

	valSize           int64
	currentTag        []byte
	currentCompressed bool

	compStream CompressionStream

	filter *keyFilter
}

// NewCursor creates a Cursor over file, whose data region ends (and index
// region begins) at root; the index region ends at indexEnd (the start of
// the filter block, which is where the footer begins if the table carries no
// filter block). filter may be nil.
func NewCursor(file ByteFile, root, indexEnd int64, filter *keyFilter) *Cursor {
	c := &Cursor{
		file:       file,
		root:       root,
		indexEnd:   indexEnd,
		compStream: NewSnappyStream(),
		filter:     filter,
	}
	c.Rewind()
	return c
}

// Rewind repositions the cursor at the start of the data region, equivalent
// to freshly-constructed state (spec.md §4.4).
func (c *Cursor) Rewind() {
	c.file.Rewind(0)
	c.isAtEnd = false
	c.lastKey = c.lastKey[:0]
	c.currentKey = nil
	c.valSize = 0
	c.currentTag = nil
	c.currentCompressed = false
}

// IsAtEnd reports whether the cursor has run off the end of the data
// region. current_key must not be dereferenced when true (invariant 3).
func (c *Cursor) IsAtEnd() bool { return c.isAtEnd }

// CurrentKey returns the key of the current entry. The returned slice is a
// borrowed view invalidated by the next mutating call (spec.md §6).
func (c *Cursor) CurrentKey() []byte { return c.currentKey }

// CurrentTag returns the current value's bytes after ReadTag, possibly
// still compressed. Borrowed, like CurrentKey.
func (c *Cursor) CurrentTag() []byte { return c.currentTag }

// Next advances to the next entry in ascending key order. It returns
// (false, nil) once is_at_end becomes true; calling Next again afterwards
// is a programmer bug in the source this is modelled on (an assertion
// failure there) but this implementation defensively just returns false,
// nil (spec.md §7/§9 OQ2). A non-nil error is always a DatabaseError or
// DatabaseCorruptError.
func (c *Cursor) Next() (bool, error) {
	if c.isAtEnd {
		return false, nil
	}

	if c.valSize > 0 {
		if err := c.file.Skip(c.valSize); err != nil {
			return false, err
		}
		c.valSize = 0
	}

	if c.file.Pos() >= c.root {
		if c.file.Pos() != c.root {
			return false, newCorruptError("position ran past root")
		}
		c.isAtEnd = true
		return false, nil
	}

	a, err := c.file.ReadByte()
	if err != nil {
		return false, newCorruptError("EOF reading key")
	}

	var reuseLen, tailLen int
	if len(c.lastKey) != 0 {
		reuseLen = int(a)
		b, err := c.file.ReadByte()
		if err != nil {
			return false, newDatabaseError("EOF reading key length", err)
		}
		tailLen = int(b)
	} else {
		reuseLen = 0
		tailLen = int(a)
	}

	tail := make([]byte, tailLen)
	if err := c.file.ReadFull(tail); err != nil {
		return false, newDatabaseError("EOF reading key tail", err)
	}

	current := make([]byte, 0, reuseLen+tailLen)
	current = append(current, c.lastKey[:reuseLen]...)
	current = append(current, tail...)
	c.currentKey = current
	c.lastKey = current

	if err := c.decodeValHeader(); err != nil {
		return false, err
	}
	return true, nil
}

// decodeValHeader reads the VarInt value header following a key and sets
// valSize/currentCompressed from it (spec.md §4.4.2).
func (c *Cursor) decodeValHeader() error {
	h, err := readVarint(c.file.ReadByte)
	if err != nil {
		return newDatabaseError("EOF decoding value header", err)
	}
	c.currentCompressed = h&1 != 0
	c.valSize = int64(h >> 1)
	if c.valSize == 0 {
		c.currentTag = c.currentTag[:0]
	}
	c.isAtEnd = false
	return nil
}

// ReadTag materialises the current entry's value. If keepCompressed is
// false and the value is stored compressed, it is decompressed in place.
// The returned bool is the final compressed state (spec.md §4.4.3).
func (c *Cursor) ReadTag(keepCompressed bool) (bool, error) {
	if c.valSize > 0 {
		buf := make([]byte, c.valSize)
		if err := c.file.ReadFull(buf); err != nil {
			return false, newDatabaseError("reading value bytes", err)
		}
		c.currentTag = buf
		c.valSize = 0
	}

	if !keepCompressed && c.currentCompressed {
		c.compStream.DecompressStart()
		var out []byte
		done, err := c.compStream.DecompressChunk(c.currentTag, &out)
		if err != nil {
			return false, err
		}
		if !done {
			return false, newCorruptError("decompression did not complete on full input")
		}
		c.currentTag = out
		c.currentCompressed = false
	}

	return c.currentCompressed, nil
}

// Find positions the cursor on the entry with exactly key and returns true,
// or (when greaterThan is false) leaves it on the least entry strictly
// greater than key and returns false, setting is_at_end if none exists.
//
// greaterThan is accepted but, matching the observed behaviour of the
// source this cursor is modelled on, is not read: see DESIGN.md Open
// Question 1. Both forms currently behave as "first key >= target".
func (c *Cursor) Find(key []byte, greaterThan bool) (bool, error) {
	_ = greaterThan
	if len(key) == 0 {
		return false, newInvalidArgumentError("empty key passed to Find")
	}

	if c.filter != nil && !c.filter.mayContain(key) {
		c.isAtEnd = true
		return false, nil
	}

	useIndex := true
	if !c.isAtEnd && len(c.lastKey) != 0 && c.lastKey[0] == key[0] {
		cmp := bytes.Compare(c.lastKey, key)
		if cmp == 0 {
			c.currentKey = c.lastKey
			return true, nil
		}
		if cmp < 0 {
			useIndex = false
		}
	}

	if useIndex {
		c.currentKey = nil
		if err := c.jumpViaIndex(key); err != nil {
			return false, err
		}
		if c.isAtEnd {
			return false, nil
		}
		if c.currentKey != nil && bytes.Equal(c.currentKey, key) {
			return true, nil
		}
	}

	for {
		ok, err := c.Next()
		if err != nil {
			return false, err
		}
		if !ok {
			break
		}
		cmp := bytes.Compare(c.currentKey, key)
		if cmp == 0 {
			return true, nil
		}
		if cmp > 0 {
			break
		}
	}
	return false, nil
}

// jumpViaIndex seeks to root, reads the index type byte, and dispatches to
// the matching index reader (spec.md §4.4.4 step 2). On return, either
// is_at_end is set (no such key exists) or the file position is at the data
// entry the caller should start a linear scan from, with last_key updated.
// The one exception is a skiplist index entry equal to key: the cursor is
// then already positioned on that entry, with current_key set to it.
func (c *Cursor) jumpViaIndex(key []byte) error {
	c.file.Rewind(c.root)
	typeByte, err := c.file.ReadByte()
	if err != nil {
		return newDatabaseError("reading index type", err)
	}

	switch typeByte {
	case indexTypeArray:
		return c.jumpArrayIndex(key)
	case indexTypeBinaryChop:
		return c.jumpBinaryChopIndex(key)
	case indexTypeSkiplist:
		return c.jumpSkiplistIndex(key)
	default:
		return newCorruptError("unknown index type")
	}
}

func (c *Cursor) jumpArrayIndex(key []byte) error {
	minByte, err := c.file.ReadByte()
	if err != nil {
		return newDatabaseError("reading array index min_byte", err)
	}
	rangeByte, err := c.file.ReadByte()
	if err != nil {
		return newDatabaseError("reading array index range", err)
	}

	if minByte == arrayIndexEmptyMarker && rangeByte == arrayIndexEmptyMarker {
		c.isAtEnd = true
		return nil
	}

	first := key[0] - minByte
	if first > rangeByte {
		c.isAtEnd = true
		return nil
	}

	if err := c.file.Skip(int64(first) * 4); err != nil {
		return newDatabaseError("skipping to array index pointer", err)
	}
	var buf [4]byte
	if err := c.file.ReadFull(buf[:]); err != nil {
		return newDatabaseError("reading array index pointer", err)
	}
	jump := int64(binary.BigEndian.Uint32(buf[:]))

	c.file.Rewind(jump)
	// Only the entry at offset 0 omits the reuse byte. Any other jump target
	// starts a new first byte, so its reuse byte is 0; a non-empty last_key
	// makes Next read that byte.
	if jump == 0 {
		c.lastKey = c.lastKey[:0]
	} else {
		c.lastKey = append(c.lastKey[:0], key[0])
	}
	c.isAtEnd = false
	c.valSize = 0
	return nil
}

func (c *Cursor) jumpBinaryChopIndex(key []byte) error {
	var cbuf [4]byte
	if err := c.file.ReadFull(cbuf[:]); err != nil {
		return newDatabaseError("reading binary-chop index count", err)
	}
	count := int64(binary.BigEndian.Uint32(cbuf[:]))
	if count == 0 {
		c.isAtEnd = true
		return nil
	}

	base := c.file.Pos()
	entrySize := int64(BinaryChopKeySize + 4)

	readEntry := func(idx int64) (prefix []byte, ptr int64, err error) {
		c.file.SetPos(base + idx*entrySize)
		kkey := make([]byte, BinaryChopKeySize)
		if err := c.file.ReadFull(kkey); err != nil {
			return nil, 0, newDatabaseError("reading binary-chop prefix", err)
		}
		klen := BinaryChopKeySize
		for klen > 0 && kkey[klen-1] == 0 {
			klen--
		}
		var pbuf [4]byte
		if err := c.file.ReadFull(pbuf[:]); err != nil {
			return nil, 0, newDatabaseError("reading binary-chop pointer", err)
		}
		return kkey[:klen], int64(binary.BigEndian.Uint32(pbuf[:])), nil
	}

	var i, j int64 = 0, count
	for j-i > 1 {
		k := i + (j-i)/2
		prefix, _, err := readEntry(k)
		if err != nil {
			return err
		}
		cmp := comparePrefix(key, prefix, BinaryChopKeySize)
		if cmp < 0 {
			j = k
		} else {
			i = k
			if cmp == 0 {
				break
			}
		}
	}

	foundPrefix, foundPtr, err := readEntry(i)
	if err != nil {
		return err
	}

	c.file.Rewind(foundPtr)
	if foundPtr == 0 {
		c.lastKey = c.lastKey[:0]
	} else {
		c.lastKey = append(c.lastKey[:0], foundPrefix...)
	}
	c.isAtEnd = false
	c.valSize = 0
	return nil
}

// comparePrefix compares key's first n bytes (or fewer, if key is shorter)
// against prefix, the way string::compare(0, n, prefix) does in the
// original: shorter-than-n is treated as a prefix comparison, not padded.
func comparePrefix(key []byte, prefix []byte, n int) int {
	kp := key
	if len(kp) > n {
		kp = kp[:n]
	}
	return bytes.Compare(kp, prefix)
}

func (c *Cursor) jumpSkiplistIndex(key []byte) error {
	var indexKey, prevIndexKey []byte
	var ptr int64
	cmp := 1

	for {
		if c.file.Pos() >= c.indexEnd {
			break
		}
		reuse, err := c.file.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return newDatabaseError("reading skiplist reuse byte", err)
		}
		tailLen, err := c.file.ReadByte()
		if err != nil {
			return newDatabaseError("reading skiplist tail length", err)
		}

		tail := make([]byte, tailLen)
		if err := c.file.ReadFull(tail); err != nil {
			return newDatabaseError("reading skiplist tail", err)
		}
		reuseLen := int(reuse)
		if reuseLen > len(indexKey) {
			reuseLen = len(indexKey)
		}
		next := make([]byte, 0, reuseLen+int(tailLen))
		next = append(next, indexKey[:reuseLen]...)
		next = append(next, tail...)
		indexKey = next

		cmp = bytes.Compare(indexKey, key)
		if cmp > 0 {
			indexKey = prevIndexKey
			break
		}

		v, err := readVarint(c.file.ReadByte)
		if err != nil {
			return newDatabaseError("reading skiplist pointer", err)
		}
		ptr = int64(v)
		if cmp == 0 {
			break
		}
		prevIndexKey = append([]byte(nil), indexKey...)
	}

	c.file.SetPos(ptr)
	if ptr != 0 {
		c.lastKey = append(c.lastKey[:0], indexKey...)
		c.currentKey = c.lastKey
		if err := c.decodeValHeader(); err != nil {
			return err
		}
		if cmp == 0 {
			return nil
		}
		if err := c.file.Skip(c.valSize); err != nil {
			return newDatabaseError("skipping value after skiplist jump", err)
		}
		c.valSize = 0
	} else {
		c.lastKey = c.lastKey[:0]
		c.currentKey = nil
	}
	c.isAtEnd = false
	return nil
}

// Prev positions on the immediate predecessor of the current entry, or, if
// is_at_end, on the last entry. It returns false only when the cursor has
// never been advanced (current_key is still empty, as freshly Rewind'd) —
// calling Prev while positioned on the very first entry instead returns
// true and leaves current_key empty, exactly matching honey_cursor.cc's
// prev(), which special-cases only the empty-current_key state and
// otherwise always returns true. This is the O(N) rewind-and-scan from
// spec.md §4.4.5/§9, not the index-aware refinement the design notes flag
// as future work.
func (c *Cursor) Prev() (bool, error) {
	var sentinel []byte
	if c.isAtEnd {
		sentinel = bytes.Repeat([]byte{0xff}, MaxKeyLen+1)
	} else {
		if len(c.currentKey) == 0 {
			return false, nil
		}
		sentinel = c.currentKey
	}

	c.Rewind()

	var pos int64
	var k []byte
	var vs int64
	var compressed bool

	for {
		pos = c.file.Pos()
		k = c.currentKey
		vs = c.valSize
		compressed = c.currentCompressed

		ok, err := c.Next()
		if err != nil {
			return false, err
		}
		if !ok || bytes.Compare(c.currentKey, sentinel) >= 0 {
			break
		}
	}

	c.isAtEnd = false
	c.lastKey = append(c.lastKey[:0], k...)
	c.currentKey = c.lastKey
	c.valSize = vs
	c.currentCompressed = compressed
	c.file.SetPos(pos)

	return true, nil
}
