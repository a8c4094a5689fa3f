package providers

import (
	"github.com/samber/do/v2"

	"github.com/Cossomoj/booksmood/internal/api"
	"github.com/Cossomoj/booksmood/internal/app"
	"github.com/Cossomoj/booksmood/internal/bookmarks"
	"github.com/Cossomoj/booksmood/internal/catalog"
	"github.com/Cossomoj/booksmood/internal/config"
	"github.com/Cossomoj/booksmood/internal/favorites"
	"github.com/Cossomoj/booksmood/internal/logger"
	"github.com/Cossomoj/booksmood/internal/session"
	"github.com/Cossomoj/booksmood/internal/view"
)

// ProvideCatalog provides the catalog loader with debounced search.
func ProvideCatalog(i do.Injector) (*catalog.Loader, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[*api.Client](i)

	return catalog.NewLoader(client, log, catalog.Options{
		Debounce:       cfg.Search.Debounce,
		MinQueryLength: cfg.Search.MinQueryLength,
	}), nil
}

// ProvideBookmarks provides the bookmark manager. The playback seeker is
// attached when the app is built.
func ProvideBookmarks(i do.Injector) (*bookmarks.Manager, error) {
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[*api.Client](i)
	return bookmarks.NewManager(client, nil, log), nil
}

// ProvideFavorites provides the favorites flow.
func ProvideFavorites(i do.Injector) (*favorites.Favorites, error) {
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[*api.Client](i)
	return favorites.New(client, log), nil
}

// ProvideNotifier provides the transient status message holder.
func ProvideNotifier(do.Injector) (*view.Notifier, error) {
	return view.NewNotifier(view.DefaultNotifyDuration), nil
}

// ProvideApp composes the application.
func ProvideApp(i do.Injector) (*app.App, error) {
	marks := do.MustInvoke[*bookmarks.Manager](i)

	a := app.New(app.Deps{
		Config:    do.MustInvoke[*config.Config](i),
		Logger:    do.MustInvoke[*logger.Logger](i),
		Client:    do.MustInvoke[*api.Client](i),
		Store:     do.MustInvoke[*StoreHandle](i).Store,
		Session:   do.MustInvoke[*session.Manager](i),
		Backend:   do.MustInvoke[*MediaPlayerHandle](i),
		Catalog:   do.MustInvoke[*catalog.Loader](i),
		Bookmarks: marks,
		Favorites: do.MustInvoke[*favorites.Favorites](i),
		Notifier:  do.MustInvoke[*view.Notifier](i),
	})

	marks.SetSeeker(a.Controller())
	return a, nil
}
