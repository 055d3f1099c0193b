// Package registry implements a process-wide, priority-ordered table of
// pluggable service providers. Independent modules publish implementations
// under a category string and consumers resolve the highest-priority one,
// without a compile-time dependency between the two.
package registry

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Priority orders competing providers within a category.
type Priority int

const (
	PriorityLow    Priority = 0
	PriorityNormal Priority = 50
	PriorityHigh   Priority = 100
)

// Registration is one provider entry in a category.
type Registration struct {
	Category string
	OwnerID  string
	Provider any
	Priority Priority
}

type category struct {
	regs      []Registration // sorted: priority desc, ownerID asc
	activated atomic.Bool
	activate  func()
}

// Registry is a concurrency-safe provider table. The zero value is not
// usable; construct with New and share one instance per process.
type Registry struct {
	mu         sync.RWMutex
	categories map[string]*category
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{categories: make(map[string]*category)}
}

func (r *Registry) category(name string) *category {
	if c, ok := r.categories[name]; ok {
		return c
	}
	c := &category{}
	r.categories[name] = c
	return c
}

// OnActivate installs the activation callback for a category. The callback
// runs exactly once, on the first registration the category ever sees, even
// under concurrent registration attempts. Installing a callback after
// activation has happened is a no-op for the process lifetime.
func (r *Registry) OnActivate(categoryName string, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.category(categoryName).activate = fn
}

// Register inserts a provider into the category's ordered set. Ties on
// priority break on the lexicographically smaller owner id.
func (r *Registry) Register(categoryName, ownerID string, provider any, priority Priority) {
	r.mu.Lock()
	c := r.category(categoryName)
	c.regs = append(c.regs, Registration{
		Category: categoryName,
		OwnerID:  ownerID,
		Provider: provider,
		Priority: priority,
	})
	sort.SliceStable(c.regs, func(i, j int) bool {
		if c.regs[i].Priority != c.regs[j].Priority {
			return c.regs[i].Priority > c.regs[j].Priority
		}
		return c.regs[i].OwnerID < c.regs[j].OwnerID
	})
	activate := c.activate
	r.mu.Unlock()

	// The Dormant->Active transition is one-way; the callback runs outside
	// the table lock so it may register further providers.
	if c.activated.CompareAndSwap(false, true) && activate != nil {
		activate()
	}
}

// Active returns the highest-priority registration for the category.
func (r *Registry) Active(categoryName string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.categories[categoryName]
	if !ok || len(c.regs) == 0 {
		return Registration{}, false
	}
	return c.regs[0], true
}

// All returns the category's full ordered registration list.
func (r *Registry) All(categoryName string) []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.categories[categoryName]
	if !ok {
		return nil
	}
	out := make([]Registration, len(c.regs))
	copy(out, c.regs)
	return out
}

// UnregisterOwner removes every registration the owner holds, across all
// categories. Activation flags are left as they are: activation is one-way
// for the process lifetime.
func (r *Registry) UnregisterOwner(ownerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		kept := c.regs[:0]
		for _, reg := range c.regs {
			if reg.OwnerID != ownerID {
				kept = append(kept, reg)
			}
		}
		c.regs = kept
	}
}

// Shutdown clears all registrations and activation state. Meant for process
// teardown, not normal operation.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories = make(map[string]*category)
}

// ActiveAs resolves the category's active provider as T. It returns false
// when the category is empty or the provider has a different type.
func ActiveAs[T any](r *Registry, categoryName string) (T, bool) {
	reg, ok := r.Active(categoryName)
	if !ok {
		var zero T
		return zero, false
	}
	provider, ok := reg.Provider.(T)
	return provider, ok
}
