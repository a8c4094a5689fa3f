package providers

import (
	"github.com/samber/do/v2"

	"github.com/Cossomoj/booksmood/internal/api"
	"github.com/Cossomoj/booksmood/internal/config"
	"github.com/Cossomoj/booksmood/internal/logger"
	"github.com/Cossomoj/booksmood/internal/session"
)

// ProvideAPIClient provides the backend HTTP client.
func ProvideAPIClient(i do.Injector) (*api.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	deviceID, err := session.EnsureDeviceID(storeHandle.Store)
	if err != nil {
		return nil, err
	}

	client := api.New(cfg.API.BaseURL, log.Logger,
		api.WithTimeout(cfg.API.Timeout),
		api.WithRateLimit(cfg.API.RequestsPerSecond, cfg.API.Burst),
		api.WithDeviceID(deviceID),
	)
	return client, nil
}

// ProvideSession provides the auth session manager and installs it as the
// client's 401 recovery hook.
func ProvideSession(i do.Injector) (*session.Manager, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[*api.Client](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	manager := session.New(client, storeHandle.Store, cfg.App.Environment, cfg.Telegram.InitData, log)
	client.SetReauthorizer(manager)
	return manager, nil
}
