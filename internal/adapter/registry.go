package adapter

import (
	"fmt"

	"GolfSync/internal/config"
	"GolfSync/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// NewRemoteStore instantiates the backend named by remote.backend
func NewRemoteStore(cfg *config.Config, logger *logrus.Logger) (interfaces.RemoteStore, error) {
	name := cfg.Remote.Backend
	factory, ok := GetFactory(name)
	if !ok {
		return nil, fmt.Errorf("unknown remote backend %q (registered: %v)", name, ListFactories())
	}

	store := factory(cfg, logger)
	if store == nil {
		return nil, fmt.Errorf("remote backend %q: factory returned nil", name)
	}
	if store.GetName() != name {
		logger.WithFields(logrus.Fields{
			"config_backend":  name,
			"adapter_backend": store.GetName(),
		}).Warn("remote backend name differs from its registration")
	}
	logger.WithField("backend", name).Info("remote store initialised")
	return store, nil
}
