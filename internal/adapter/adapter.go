package adapter

import (
	"fmt"
	"sort"
	"sync"

	"GolfSync/internal/config"
	"GolfSync/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// Factory builds a remote store backend from the global config
type Factory func(cfg *config.Config, logger *logrus.Logger) interfaces.RemoteStore

var (
	registryMu      sync.RWMutex
	factoryRegistry = make(map[string]Factory)
)

// Register called from a backend's init function
func Register(name string, factory Factory) {
	if factory == nil {
		panic(fmt.Sprintf("remote backend %s: factory must not be nil", name))
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := factoryRegistry[name]; exists {
		logrus.Warnf("remote backend %s registered twice, replacing", name)
	}
	factoryRegistry[name] = factory
}

// GetFactory factory registered under name
func GetFactory(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := factoryRegistry[name]
	return factory, ok
}

// ListFactories registered backend names, sorted
func ListFactories() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(factoryRegistry))
	for name := range factoryRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
