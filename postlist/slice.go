package postlist

// SlicePostingList is a simple in-memory PostingList backed by a sorted doc
// id slice, used as a test double standing in for a leaf term postlist.
// Grounded on Khanh-21522203-GoSearch/internal/engine's
// SlicePostingsIterator, extended with the maxWeight/termFreq/wdf fields
// the fuller PostingList contract needs.
type SlicePostingList struct {
	docIDs    []uint32
	wdfs      []uint32
	pos       int
	maxWeight float64
	termFreq  uint32
}

// NewSlicePostingList returns a SlicePostingList over docIDs (must be
// sorted ascending), reporting maxWeight as its upper-bound weight and
// len(docIDs) as its term frequency. wdfs, if non-nil, must be the same
// length as docIDs. The list starts unpositioned: Next or SkipTo must be
// called before GetDocID is valid, mirroring a freshly-rewound Cursor.
func NewSlicePostingList(docIDs []uint32, wdfs []uint32, maxWeight float64) *SlicePostingList {
	return &SlicePostingList{
		docIDs:    docIDs,
		wdfs:      wdfs,
		pos:       -1,
		maxWeight: maxWeight,
		termFreq:  uint32(len(docIDs)),
	}
}

func (s *SlicePostingList) GetDocID() uint32 { return s.docIDs[s.pos] }

func (s *SlicePostingList) AtEnd() bool { return s.pos >= len(s.docIDs) }

// Next advances to the next doc id, or exhausts the list immediately if
// maxWeight has already fallen below wMin (the upper bound is
// non-increasing, so once below wMin it stays below).
func (s *SlicePostingList) Next(wMin float64) (PostingList, error) {
	if s.maxWeight < wMin {
		s.pos = len(s.docIDs)
		return nil, nil
	}
	s.pos++
	return nil, nil
}

// SkipTo advances to the first doc id >= didMin.
func (s *SlicePostingList) SkipTo(didMin uint32, wMin float64) (PostingList, error) {
	if s.maxWeight < wMin {
		s.pos = len(s.docIDs)
		return nil, nil
	}
	if s.pos < 0 {
		s.pos = 0
	}
	for s.pos < len(s.docIDs) && s.docIDs[s.pos] < didMin {
		s.pos++
	}
	return nil, nil
}

func (s *SlicePostingList) Check(did uint32, wMin float64) (PostingList, bool, error) {
	repl, err := s.SkipTo(did, wMin)
	if err != nil {
		return nil, false, err
	}
	return repl, !s.AtEnd() && s.GetDocID() == did, nil
}

func (s *SlicePostingList) GetWeight(doclen, uniqueTerms, wdfDocMax uint32) float64 {
	return s.maxWeight
}

func (s *SlicePostingList) RecalcMaxWeight() (float64, error) { return s.maxWeight, nil }

func (s *SlicePostingList) GetTermFreq() uint32 { return s.termFreq }

func (s *SlicePostingList) EstimateTermFreqs(stats Stats) (TermFreqs, error) {
	return TermFreqs{
		TermFreq:    uint64(s.termFreq),
		RelTermFreq: uint64(s.termFreq),
		CollFreq:    uint64(s.termFreq),
	}, nil
}

func (s *SlicePostingList) GetWDF() uint32 {
	if s.wdfs == nil || s.pos < 0 || s.pos >= len(s.wdfs) {
		return 0
	}
	return s.wdfs[s.pos]
}

func (s *SlicePostingList) CountMatchingSubqs() uint32 { return 1 }

func (s *SlicePostingList) GatherPositionLists(out *[]PositionList) {}
