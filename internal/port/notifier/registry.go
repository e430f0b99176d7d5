package notifier

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a Notifier from its provider configuration block.
type Factory func(config map[string]string) (Notifier, error)

// registry holds the known notifier factories. Providers add themselves
// from init, so the package-level registry is fully populated before any
// configuration is read.
type registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

var defaultRegistry = &registry{factories: make(map[string]Factory)}

// Register adds a factory to the default registry. Registering the same
// name twice is a programming error and panics at startup.
func Register(name string, f Factory) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()

	if _, taken := defaultRegistry.factories[name]; taken {
		panic(fmt.Sprintf("notifier: %q registered twice", name))
	}
	defaultRegistry.factories[name] = f
}

// New constructs the named provider from its configuration block.
func New(name string, config map[string]string) (Notifier, error) {
	defaultRegistry.mu.RLock()
	f, known := defaultRegistry.factories[name]
	defaultRegistry.mu.RUnlock()

	if !known {
		return nil, fmt.Errorf("notifier: unknown provider %q", name)
	}
	return f(config)
}

// Available lists the registered provider names in sorted order.
func Available() []string {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()

	names := make([]string, 0, len(defaultRegistry.factories))
	for name := range defaultRegistry.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
