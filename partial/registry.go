// Package partial holds named template fragments for {{> name}} inclusion.
package partial

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dkeller/brace/ast"
	"github.com/dkeller/brace/parse"
)

// Registry maps partial names to their template fragments.  It is safe for
// concurrent use: registration typically happens up front, but late
// re-registration (which overwrites) is allowed mid-render.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

type entry struct {
	source string
	tree   *ast.ListNode
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register parses the fragment and stores it under the given name,
// overwriting any previous registration.  Names are trimmed and must be
// non-empty.
func (r *Registry) Register(name, source string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("partial: empty name")
	}
	tree, err := parse.Parse(name, source)
	if err != nil {
		return fmt.Errorf("partial %q: %w", name, err)
	}
	r.mu.Lock()
	r.entries[name] = entry{source, tree}
	r.mu.Unlock()
	return nil
}

// Partial returns the parsed body registered under name.
func (r *Registry) Partial(name string) (*ast.ListNode, bool) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	return e.tree, ok
}

// Source returns the raw text registered under name.
func (r *Registry) Source(name string) (string, bool) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	return e.source, ok
}

// Names returns the registered names in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names = make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}
