// Package postlist implements the matcher-facing posting-list ABI spec.md
// §4.5/§4.6 describes: a lazy, restartable iterator over ascending document
// ids, and the N-way conjunctive (AND) combinator built on it. Grounded on
// the PostingsIterator/ConjunctionIterator shape in
// Khanh-21522203-GoSearch's internal/engine package, extended with the
// weight/termfreq/w_min machinery that GoSearch's interface omits but
// spec.md and multiandpostlist.cc require.
package postlist

// PostingList models a lazy, restartable sequence of matching document ids
// in strictly ascending order (spec.md §4.5). GetDocID is valid only after
// a successful positioning call (Next, SkipTo, or a Check that reports
// valid=true).
//
// Next, SkipTo and Check may each return a non-nil replacement PostingList:
// a tree-rewriting optimisation where a node substitutes itself for a more
// efficient representation of the remaining sequence. The caller (a parent
// combinator, or the top-level driver for the root of the tree) must
// replace its reference to the receiver with the returned value when it is
// non-nil.
type PostingList interface {
	// GetDocID returns the current document id.
	GetDocID() uint32

	// Next advances to the next match whose upper-bound weight is >= wMin.
	Next(wMin float64) (PostingList, error)

	// SkipTo advances to the first match with docid >= didMin satisfying
	// wMin.
	SkipTo(didMin uint32, wMin float64) (PostingList, error)

	// Check tests whether did is a match without necessarily positioning
	// the iterator exactly on it. valid reports whether GetDocID is
	// meaningful afterwards.
	Check(did uint32, wMin float64) (replacement PostingList, valid bool, err error)

	// AtEnd reports whether the sequence is exhausted.
	AtEnd() bool

	// GetWeight returns this posting's weight contribution for a document
	// with the given length, unique term count, and maximum wdf.
	GetWeight(doclen, uniqueTerms, wdfDocMax uint32) float64

	// RecalcMaxWeight updates and returns the current upper bound on the
	// weight contribution of the remaining sequence.
	RecalcMaxWeight() (float64, error)

	// GetTermFreq returns the estimated number of matching documents.
	GetTermFreq() uint32

	// EstimateTermFreqs returns (termfreq, reltermfreq, collfreq) estimates
	// given collection statistics.
	EstimateTermFreqs(stats Stats) (TermFreqs, error)

	// GetWDF returns the within-document frequency of the current match.
	GetWDF() uint32

	// CountMatchingSubqs returns how many leaf subqueries the current
	// match satisfies.
	CountMatchingSubqs() uint32

	// GatherPositionLists appends this posting list's (and its
	// descendants') position-list data to out.
	GatherPositionLists(out *[]PositionList)
}

// Stats carries the collection statistics estimate_termfreqs needs:
// collection-wide document count, total collection length (sum of document
// lengths), and relevance-set size. A zero TotalLength or RsetSize means
// "no data available" and that term of the estimate is left unscaled
// (spec.md §4.6).
type Stats struct {
	CollectionSize uint32
	TotalLength    uint64
	RsetSize       uint32
}

// TermFreqs is the (termfreq, reltermfreq, collfreq) triple
// EstimateTermFreqs returns.
type TermFreqs struct {
	TermFreq    uint64
	RelTermFreq uint64
	CollFreq    uint64
}

// PositionList is the per-document within-document position data
// GatherPositionLists collects. Position data itself is out of scope per
// spec.md §1 (it belongs to the query-language/scoring layer); this type
// exists only so the ABI method has somewhere to write to.
type PositionList struct {
	DocID     uint32
	Positions []uint32
}
