package honeytable

import "github.com/AndreasBriese/bbloom"

// filterFalsePositiveRate is the target false-positive rate for the table
// footer bloom filter (SPEC_FULL.md §5.1). It trades a small amount of
// on-disk space for skipping the index dispatch entirely on a guaranteed
// miss.
const filterFalsePositiveRate = 0.01

// filterBuilder accumulates keys while the Writer appends entries, to be
// serialised into the optional filter block at Close time. bbloom.New
// returns a Bloom value, not a pointer, so it is held directly rather than
// behind a *bbloom.Bloom field.
type filterBuilder struct {
	bloom bbloom.Bloom
	n     int
}

func newFilterBuilder(expectedEntries int) *filterBuilder {
	if expectedEntries < 1 {
		expectedEntries = 1
	}
	return &filterBuilder{
		bloom: bbloom.New(float64(expectedEntries), filterFalsePositiveRate),
	}
}

func (b *filterBuilder) add(key []byte) {
	b.bloom.Add(key)
	b.n++
}

// marshal returns the filter block bytes: the opaque blob produced by
// bbloom's own (de)serialisation, with no length prefix. The reader takes
// the block's length from the footer (filter_start up to the footer).
func (b *filterBuilder) marshal() []byte {
	if b.n == 0 {
		return nil
	}
	return b.bloom.JSONMarshal()
}

// keyFilter is the read-side view of the filter block: "may contain" or
// "definitely absent", consulted by Cursor.Find before any index dispatch.
type keyFilter struct {
	bloom *bbloom.Bloom
}

func loadKeyFilter(raw []byte) (*keyFilter, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	// bbloom.JSONUnmarshal is a package-level constructor function, not a
	// method on Bloom: it builds and returns the populated Bloom itself.
	// Held behind a pointer here so the struct literal below doesn't copy
	// the sync.Mutex embedded in bbloom.Bloom.
	bloom := bbloom.JSONUnmarshal(raw)
	return &keyFilter{bloom: &bloom}, nil
}

// mayContain reports whether key could be present. A false return is
// conclusive: the key is definitely absent. A true return is not
// conclusive: callers must still perform the ordinary indexed/linear lookup
// (SPEC_FULL.md §5.1 "filter soundness" — no false negatives, false
// positives fall through).
func (f *keyFilter) mayContain(key []byte) bool {
	if f == nil {
		return true
	}
	return f.bloom.Has(key)
}
