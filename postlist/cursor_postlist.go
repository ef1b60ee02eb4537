package postlist

import (
	"encoding/binary"

	"github.com/weave-search/honeytable"
)

// CursorPostingList wraps an honeytable Cursor over a posting-list table as
// a PostingList: table keys are big-endian uint32 document ids in ascending
// order, matching the Cursor's ordering requirement, and table values are a
// single VarInt within-document frequency (spec.md §2's "control flow":
// "the matcher... pulls from underlying cursors as needed").
type CursorPostingList struct {
	cur       *honeytable.Cursor
	ended     bool
	did       uint32
	wdf       uint32
	maxWeight float64
	termFreq  uint32
}

// NewCursorPostingList wraps cur, a freshly-rewound Cursor over a
// posting-list table. termFreq and maxWeight are supplied by the caller
// (typically the scoring layer, out of scope here) rather than derived from
// the table, since they depend on collection-wide statistics the cursor
// does not have.
func NewCursorPostingList(cur *honeytable.Cursor, termFreq uint32, maxWeight float64) *CursorPostingList {
	return &CursorPostingList{cur: cur, termFreq: termFreq, maxWeight: maxWeight}
}

func encodeDocID(did uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, did)
	return buf
}

func decodeDocID(key []byte) uint32 {
	return binary.BigEndian.Uint32(key)
}

// loadCurrent decodes the doc id from the cursor's current key and the wdf
// from its value, after a successful Next/Find.
func (c *CursorPostingList) loadCurrent() error {
	c.did = decodeDocID(c.cur.CurrentKey())
	if _, err := c.cur.ReadTag(false); err != nil {
		return err
	}
	tag := c.cur.CurrentTag()
	wdf, err := unpackSingleVarint(tag)
	if err != nil {
		return err
	}
	c.wdf = wdf
	return nil
}

func (c *CursorPostingList) GetDocID() uint32 { return c.did }

func (c *CursorPostingList) AtEnd() bool { return c.ended }

func (c *CursorPostingList) Next(wMin float64) (PostingList, error) {
	if c.maxWeight < wMin {
		c.ended = true
		return nil, nil
	}
	ok, err := c.cur.Next()
	if err != nil {
		return nil, err
	}
	if !ok {
		c.ended = true
		return nil, nil
	}
	return nil, c.loadCurrent()
}

func (c *CursorPostingList) SkipTo(didMin uint32, wMin float64) (PostingList, error) {
	if c.maxWeight < wMin {
		c.ended = true
		return nil, nil
	}
	_, err := c.cur.Find(encodeDocID(didMin), false)
	if err != nil {
		return nil, err
	}
	if c.cur.IsAtEnd() {
		c.ended = true
		return nil, nil
	}
	return nil, c.loadCurrent()
}

func (c *CursorPostingList) Check(did uint32, wMin float64) (PostingList, bool, error) {
	repl, err := c.SkipTo(did, wMin)
	if err != nil {
		return nil, false, err
	}
	return repl, !c.AtEnd() && c.did == did, nil
}

func (c *CursorPostingList) GetWeight(doclen, uniqueTerms, wdfDocMax uint32) float64 {
	if wdfDocMax == 0 {
		return 0
	}
	return c.maxWeight * float64(c.wdf) / float64(wdfDocMax)
}

func (c *CursorPostingList) RecalcMaxWeight() (float64, error) { return c.maxWeight, nil }

func (c *CursorPostingList) GetTermFreq() uint32 { return c.termFreq }

func (c *CursorPostingList) EstimateTermFreqs(stats Stats) (TermFreqs, error) {
	return TermFreqs{
		TermFreq:    uint64(c.termFreq),
		RelTermFreq: uint64(c.termFreq),
		CollFreq:    uint64(c.termFreq),
	}, nil
}

func (c *CursorPostingList) GetWDF() uint32 { return c.wdf }

func (c *CursorPostingList) CountMatchingSubqs() uint32 { return 1 }

// GatherPositionLists is a no-op: within-document position data is a
// feature of the scoring/matcher layer this module treats as an external
// collaborator (spec.md §1 non-goals), and the posting-list table this type
// reads from carries only a wdf per entry.
func (c *CursorPostingList) GatherPositionLists(out *[]PositionList) {}

// unpackSingleVarint decodes the one VarInt a posting-list value holds. It
// reuses the same little-endian base-128 format as honeytable's value
// headers (spec.md §4.2), applied here to the value payload instead.
func unpackSingleVarint(buf []byte) (uint32, error) {
	var out uint64
	for i, b := range buf {
		out |= uint64(b&0x7f) << uint(7*i)
		if b < 0x80 {
			return uint32(out), nil
		}
	}
	if len(buf) == 0 {
		return 0, nil
	}
	return uint32(out), nil
}
