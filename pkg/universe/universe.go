// Package universe implements the preflight gate run before a session may
// enter setup. It composes a universe registry, engine authorization, and
// deck-tag acceptance into one allow/deny decision, short-circuiting at the
// first violation, and produces a frozen setup snapshot on success.
package universe

import (
	"errors"
	"sync"

	"github.com/quarrylabs/matchspine/pkg/contracts"
)

var ErrUniverseExists = errors.New("universe already registered")

// Registry holds universe integrations keyed by universe code.
type Registry struct {
	mu        sync.RWMutex
	universes map[string]contracts.UniverseIntegration
}

// NewRegistry creates an empty universe registry.
func NewRegistry() *Registry {
	return &Registry{universes: make(map[string]contracts.UniverseIntegration)}
}

// Register installs a universe integration.
func (r *Registry) Register(u contracts.UniverseIntegration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.universes[u.UniverseCode]; exists {
		return ErrUniverseExists
	}
	r.universes[u.UniverseCode] = u
	return nil
}

// Lookup returns the integration for a universe code.
func (r *Registry) Lookup(code string) (contracts.UniverseIntegration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.universes[code]
	return u, ok
}

// List returns all registered universe codes.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.universes))
	for code := range r.universes {
		codes = append(codes, code)
	}
	return codes
}
