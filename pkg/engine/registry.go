package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/quarrylabs/matchspine/pkg/contracts"
)

var ErrEngineNotFound = errors.New("engine not found")

// Factory constructs a fresh adapter instance.
type Factory func() (Adapter, error)

// Registry is the source of truth for installed engine implementations.
// It replaces path-based dynamic loading with an explicit, config-driven
// map from export name to factory, so no third-party code is loaded into
// the process outside of compile-time wiring.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	manifests map[string]contracts.EngineManifest
}

// NewRegistry creates an empty engine registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		manifests: make(map[string]contracts.EngineManifest),
	}
}

// Register installs a factory under an export name. Re-registering an
// existing name overwrites it.
func (r *Registry) Register(exportName string, manifest contracts.EngineManifest, factory Factory) error {
	if exportName == "" {
		return errors.New("empty export name")
	}
	if factory == nil {
		return errors.New("nil factory")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[exportName] = factory
	r.manifests[exportName] = manifest
	return nil
}

// Resolve instantiates the adapter a bolt-on kit points at.
func (r *Registry) Resolve(kit contracts.BoltOnKit) (Adapter, error) {
	r.mu.RLock()
	factory, ok := r.factories[kit.Exports.AdapterExportName]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: export %q", ErrEngineNotFound, kit.Exports.AdapterExportName)
	}
	adapter, err := factory()
	if err != nil {
		return nil, fmt.Errorf("instantiate %q: %w", kit.Exports.AdapterExportName, err)
	}
	return adapter, nil
}

// Manifest returns the registered manifest for an export name.
func (r *Registry) Manifest(exportName string) (contracts.EngineManifest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.manifests[exportName]
	if !ok {
		return contracts.EngineManifest{}, fmt.Errorf("%w: export %q", ErrEngineNotFound, exportName)
	}
	return m, nil
}

// List returns all registered export names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}
