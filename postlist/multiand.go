package postlist

import (
	"errors"
	"math"
)

// MultiAndPostList emits documents present in all of its children, with
// weight equal to the sum of child weights and an upper bound equal to the
// sum of child upper bounds (spec.md §4.6). Grounded line-by-line on
// multiandpostlist.cc, with the iteration skeleton (restart-on-
// misalignment rather than GoSearch's lead/align loop) kept as the source
// describes it in spec.md, and cross-checked against
// ConjunctionIterator.align in Khanh-21522203-GoSearch/internal/engine for
// the general shape of "advance children until they agree."
//
// MultiAndPostList owns its children exclusively: once built, only this
// type's own methods (via the next/skip_to/check helpers) mutate plist.
type MultiAndPostList struct {
	plist    []PostingList
	maxWt    []float64
	did      uint32
	dbSize   uint32
	maxTotal float64
}

// New builds a MultiAndPostList over children, which must be non-empty.
// dbSize is the shard document count used by GetTermFreq's independence
// estimate.
func New(children []PostingList, dbSize uint32) (*MultiAndPostList, error) {
	if len(children) == 0 {
		return nil, errNoChildren
	}
	m := &MultiAndPostList{
		plist:  append([]PostingList(nil), children...),
		maxWt:  make([]float64, len(children)),
		dbSize: dbSize,
	}
	return m, nil
}

// errNoChildren mirrors spec.md §7's "invalid argument" kind: an AND with
// no children has no well-defined result.
var errNoChildren = errors.New("postlist: MultiAndPostList requires at least one child")

// GetDocID returns the current matching document id, the spec.md §3
// "did" field.
func (m *MultiAndPostList) GetDocID() uint32 { return m.did }

// AtEnd reports exhaustion. As in the source this is modelled on, did==0
// doubles as "not yet positioned" before the first Next/SkipTo call and as
// "exhausted" thereafter — the two states are never distinguished because
// nothing needs to tell them apart: a caller that hasn't called Next yet
// has no business asking AtEnd either.
func (m *MultiAndPostList) AtEnd() bool { return m.did == 0 }

func (m *MultiAndPostList) replace(i int, repl PostingList) error {
	old := m.maxWt[i]
	m.plist[i] = repl
	nw, err := repl.RecalcMaxWeight()
	if err != nil {
		return err
	}
	m.maxWt[i] = nw
	m.maxTotal += nw - old
	return nil
}

func (m *MultiAndPostList) nextHelper(i int, wMin float64) error {
	repl, err := m.plist[i].Next(wMin)
	if err != nil {
		return err
	}
	if repl != nil {
		return m.replace(i, repl)
	}
	return nil
}

func (m *MultiAndPostList) skipToHelper(i int, didMin uint32, wMin float64) error {
	repl, err := m.plist[i].SkipTo(didMin, wMin)
	if err != nil {
		return err
	}
	if repl != nil {
		return m.replace(i, repl)
	}
	return nil
}

func (m *MultiAndPostList) checkHelper(i int, did uint32, wMin float64) (bool, error) {
	repl, valid, err := m.plist[i].Check(did, wMin)
	if err != nil {
		return false, err
	}
	if repl != nil {
		if err := m.replace(i, repl); err != nil {
			return false, err
		}
	}
	return valid, nil
}

// findNextMatch is the matching core spec.md §4.6 describes: it assumes
// plist[0] is already positioned (by the caller, via nextHelper or
// skipToHelper) and aligns the remaining children to it, restarting from
// plist[0]'s current position whenever a child disagrees.
func (m *MultiAndPostList) findNextMatch(wMin float64) error {
	for {
		if m.plist[0].AtEnd() {
			m.did = 0
			return nil
		}
		did := m.plist[0].GetDocID()

		restart := false
		for i := 1; i < len(m.plist); i++ {
			valid, err := m.checkHelper(i, did, wMin)
			if err != nil {
				return err
			}
			if !valid {
				if err := m.nextHelper(0, wMin); err != nil {
					return err
				}
				restart = true
				break
			}
			if m.plist[i].AtEnd() {
				m.did = 0
				return nil
			}
			newDid := m.plist[i].GetDocID()
			if newDid != did {
				if err := m.skipToHelper(0, newDid, wMin); err != nil {
					return err
				}
				restart = true
				break
			}
		}
		if restart {
			continue
		}
		m.did = did
		return nil
	}
}

// Next advances child 0 and realigns the rest (spec.md §4.6).
func (m *MultiAndPostList) Next(wMin float64) (PostingList, error) {
	if err := m.nextHelper(0, wMin); err != nil {
		return nil, err
	}
	return nil, m.findNextMatch(wMin)
}

// SkipTo skips child 0 to didMin and realigns the rest.
func (m *MultiAndPostList) SkipTo(didMin uint32, wMin float64) (PostingList, error) {
	if err := m.skipToHelper(0, didMin, wMin); err != nil {
		return nil, err
	}
	return nil, m.findNextMatch(wMin)
}

// Check positions the conjunction at did via SkipTo; an AND's check is
// exact (it always ends up precisely positioned), so valid always reflects
// whether did ended up as the current match.
func (m *MultiAndPostList) Check(did uint32, wMin float64) (PostingList, bool, error) {
	if _, err := m.SkipTo(did, wMin); err != nil {
		return nil, false, err
	}
	return nil, !m.AtEnd() && m.did == did, nil
}

// GetWeight sums the children's weights for the current document.
func (m *MultiAndPostList) GetWeight(doclen, uniqueTerms, wdfDocMax uint32) float64 {
	var total float64
	for _, p := range m.plist {
		total += p.GetWeight(doclen, uniqueTerms, wdfDocMax)
	}
	return total
}

// RecalcMaxWeight refreshes each child's upper bound and returns their sum.
func (m *MultiAndPostList) RecalcMaxWeight() (float64, error) {
	m.maxTotal = 0
	for i, p := range m.plist {
		w, err := p.RecalcMaxWeight()
		if err != nil {
			return 0, err
		}
		m.maxWt[i] = w
		m.maxTotal += w
	}
	return m.maxTotal, nil
}

// GetTermFreq estimates the AND's match count assuming independence:
// tf[0] * prod(tf[i]/db_size) for i=1..n-1, rounded to nearest.
func (m *MultiAndPostList) GetTermFreq() uint32 {
	result := float64(m.plist[0].GetTermFreq())
	for i := 1; i < len(m.plist); i++ {
		result = (result * float64(m.plist[i].GetTermFreq())) / float64(m.dbSize)
	}
	return uint32(result + 0.5)
}

// EstimateTermFreqs applies the same independence assumption component-wise
// to termfreq, reltermfreq and collfreq (spec.md §4.6).
func (m *MultiAndPostList) EstimateTermFreqs(stats Stats) (TermFreqs, error) {
	freqs, err := m.plist[0].EstimateTermFreqs(stats)
	if err != nil {
		return TermFreqs{}, err
	}
	freqEst := float64(freqs.TermFreq)
	relFreqEst := float64(freqs.RelTermFreq)
	collFreqEst := float64(freqs.CollFreq)

	for i := 1; i < len(m.plist); i++ {
		f, err := m.plist[i].EstimateTermFreqs(stats)
		if err != nil {
			return TermFreqs{}, err
		}
		freqEst = (freqEst * float64(f.TermFreq)) / float64(stats.CollectionSize)
		if stats.TotalLength != 0 {
			collFreqEst = (collFreqEst * float64(f.CollFreq)) / float64(stats.TotalLength)
		}
		if stats.RsetSize != 0 {
			relFreqEst = (relFreqEst * float64(f.RelTermFreq)) / float64(stats.RsetSize)
		}
	}

	return TermFreqs{
		TermFreq:    uint64(math.Round(freqEst)),
		RelTermFreq: uint64(math.Round(relFreqEst)),
		CollFreq:    uint64(math.Round(collFreqEst)),
	}, nil
}

// GetWDF sums the children's within-document frequencies.
func (m *MultiAndPostList) GetWDF() uint32 {
	var total uint32
	for _, p := range m.plist {
		total += p.GetWDF()
	}
	return total
}

// CountMatchingSubqs sums the children's matching-subquery counts.
func (m *MultiAndPostList) CountMatchingSubqs() uint32 {
	var total uint32
	for _, p := range m.plist {
		total += p.CountMatchingSubqs()
	}
	return total
}

// GatherPositionLists forwards to every child.
func (m *MultiAndPostList) GatherPositionLists(out *[]PositionList) {
	for _, p := range m.plist {
		p.GatherPositionLists(out)
	}
}
