// Package providers contains dependency injection providers for the BooksMood client.
package providers

import (
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/Cossomoj/booksmood/internal/config"
	"github.com/Cossomoj/booksmood/internal/logger"
	"github.com/Cossomoj/booksmood/internal/storage"
)

// ProvideConfigWith builds a config provider that honors command-line
// overrides.
func ProvideConfigWith(overrides config.Overrides) func(do.Injector) (*config.Config, error) {
	return func(do.Injector) (*config.Config, error) {
		return config.Load(overrides)
	}
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Writer:      os.Stderr,
		Environment: cfg.App.Environment,
		Level:       logger.ParseLevel(cfg.Logger.Level),
	})

	log.Info("Starting BooksMood client",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"api", cfg.API.BaseURL,
	)

	return log, nil
}

// StoreHandle wraps the state store with shutdown capability.
type StoreHandle struct {
	*storage.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the durable client state store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.State.Dir, "db")
	store, err := storage.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("State store opened", "path", dbPath)
	return &StoreHandle{Store: store}, nil
}
