// Package registry implements the generic name-keyed registry trait
// spec.md §6/§9 describes as the ABI for the scoring-object families
// (weighting schemes, posting sources, match spies, lat-long metrics, key
// makers) that this module treats as external collaborators: a registry
// holds instances of one such family, looked up by name during
// deserialisation.
package registry

import (
	"sync"

	"github.com/weave-search/honeytable"
)

// Registry is a mutex-guarded name -> value map, owned by whatever holds it
// (a database handle, in the source this is modelled on) rather than kept
// as package-level global state (spec.md §9 Design Notes: "Model it as a
// value type owned by each database handle"). Grounded on the corpus's own
// analysis.Registry (sync.RWMutex-guarded map of name to Analyzer), with
// one semantic change: spec.md §6 says name collisions during registration
// replace the previous entry rather than erroring.
type Registry[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// New returns an empty Registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{items: make(map[string]T)}
}

// Register adds v under name, replacing any value already registered under
// that name. An empty name is rejected as an InvalidArgumentError per
// spec.md §7.
func (r *Registry[T]) Register(name string, v T) error {
	if name == "" {
		return honeytable.NewInvalidArgumentError("registry: empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[name] = v
	return nil
}

// Lookup returns the value registered under name, and whether it was found.
// The returned value is shared, not copied, matching spec.md §9's
// "lookup by name is by shared-reference-by-string" contract.
func (r *Registry[T]) Lookup(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[name]
	return v, ok
}

// Names returns the currently registered names, in no particular order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	return names
}
