package app

import (
	"context"

	"github.com/Cossomoj/booksmood/internal/api"
	"github.com/Cossomoj/booksmood/internal/bookmarks"
	"github.com/Cossomoj/booksmood/internal/catalog"
	"github.com/Cossomoj/booksmood/internal/config"
	"github.com/Cossomoj/booksmood/internal/domain"
	"github.com/Cossomoj/booksmood/internal/favorites"
	"github.com/Cossomoj/booksmood/internal/logger"
	"github.com/Cossomoj/booksmood/internal/media"
	"github.com/Cossomoj/booksmood/internal/player"
	"github.com/Cossomoj/booksmood/internal/session"
	"github.com/Cossomoj/booksmood/internal/storage"
	"github.com/Cossomoj/booksmood/internal/view"
)

// Deps carries the composed components the app orchestrates.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	Client    *api.Client
	Store     *storage.Store
	Session   *session.Manager
	Backend   media.Player
	Catalog   *catalog.Loader
	Bookmarks *bookmarks.Manager
	Favorites *favorites.Favorites
	Notifier  *view.Notifier
}

// Snapshot is everything a renderer needs for one frame.
type Snapshot struct {
	User         *domain.User
	Player       player.Status
	Home         view.Home
	Books        []domain.Book
	Categories   []domain.Category
	Bookmarks    []domain.Bookmark
	Query        string
	Notification string
}

// App wires the session, catalog, playback and persistence flows together
// and drives them from the media backend's event stream.
type App struct {
	deps       Deps
	controller *player.Controller
	persister  *player.Persister
	render     func(Snapshot)
}

// New composes the app. The controller and persister are built here since
// they depend on the session's auth state.
func New(deps Deps) *App {
	source := &bookSource{client: deps.Client, store: deps.Store, logger: deps.Logger}
	controller := player.NewController(deps.Backend, source, deps.Store, deps.Logger)
	persister := player.NewPersister(
		deps.Client,
		deps.Store,
		deps.Logger,
		deps.Config.Progress.PushInterval,
		deps.Config.Progress.MinDelta,
		deps.Session.Authenticated,
	)

	a := &App{
		deps:       deps,
		controller: controller,
		persister:  persister,
		render:     func(Snapshot) {},
	}

	deps.Catalog.OnUpdate(a.Render)
	deps.Notifier.OnChange(a.Render)
	return a
}

// OnRender registers the frame callback.
func (a *App) OnRender(fn func(Snapshot)) {
	if fn != nil {
		a.render = fn
	}
}

// Controller exposes playback controls to the UI layer.
func (a *App) Controller() *player.Controller {
	return a.controller
}

// Init authenticates and loads the initial catalog. Auth failures degrade
// to an anonymous session; catalog failures degrade to empty lists. Init
// never blocks startup on an error.
func (a *App) Init(ctx context.Context) {
	a.deps.Session.Start(ctx)
	a.deps.Catalog.LoadCategories(ctx)
	a.deps.Catalog.LoadBooks(ctx, 0)
	a.Render()
}

// Run consumes the media backend's event stream until the context ends or
// the backend closes. On exit the current position is flushed.
func (a *App) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			a.flush(context.WithoutCancel(ctx))
			return ctx.Err()
		case event, ok := <-a.deps.Backend.Events():
			if !ok {
				a.flush(context.WithoutCancel(ctx))
				return nil
			}
			a.handleEvent(ctx, event)
		}
	}
}

func (a *App) handleEvent(ctx context.Context, event media.Event) {
	a.controller.Apply(event)
	status := a.controller.Snapshot()

	switch event.Type {
	case media.EventTime:
		if status.Book != nil {
			a.persister.Sample(ctx, status.Book.ID, status.Position, status.Duration)
		}
	case media.EventEnded:
		if status.Book != nil {
			a.persister.Finish(ctx, status.Book.ID, status.Duration)
			a.deps.Notifier.Show("Книга прослушана")
		}
	case media.EventError:
		a.deps.Notifier.Show("Ошибка воспроизведения")
	}

	a.Render()
}

// OpenBook starts playback and pulls the book's bookmarks.
func (a *App) OpenBook(ctx context.Context, bookID int64) error {
	a.flush(ctx)
	if err := a.controller.Play(ctx, bookID); err != nil {
		return err
	}

	a.deps.Bookmarks.Reset()
	if a.deps.Session.Authenticated() {
		if err := a.deps.Bookmarks.Load(ctx, bookID); err != nil {
			a.deps.Logger.WithError(err).Warn("failed to load bookmarks", "book", bookID)
		}
	}
	a.Render()
	return nil
}

// ToggleFavorite flips the open book's favorite state and shows the result.
func (a *App) ToggleFavorite(ctx context.Context) error {
	status := a.controller.Snapshot()
	if status.Book == nil {
		return nil
	}

	favored, err := a.deps.Favorites.Toggle(ctx, status.Book.ID)
	if err != nil {
		a.deps.Notifier.Show("Не удалось изменить избранное")
		return err
	}

	if favored {
		a.deps.Notifier.Show("Добавлено в избранное")
	} else {
		a.deps.Notifier.Show("Удалено из избранного")
	}
	return nil
}

// AddBookmark bookmarks the current position of the open book.
func (a *App) AddBookmark(ctx context.Context, title string) error {
	status := a.controller.Snapshot()
	if status.Book == nil {
		return nil
	}

	_, err := a.deps.Bookmarks.Add(ctx, status.Book.ID, status.Position, title)
	if err != nil {
		a.deps.Notifier.Show("Не удалось добавить закладку")
		return err
	}
	a.deps.Notifier.Show("Закладка добавлена")
	return nil
}

// Render builds a snapshot and hands it to the registered renderer.
func (a *App) Render() {
	books := a.deps.Catalog.Books()
	a.render(Snapshot{
		User:         a.deps.Session.User(),
		Player:       a.controller.Snapshot(),
		Home:         view.BuildHome(books),
		Books:        books,
		Categories:   a.deps.Catalog.Categories(),
		Bookmarks:    a.deps.Bookmarks.List(),
		Query:        a.deps.Catalog.Query(),
		Notification: a.deps.Notifier.Current(),
	})
}

// Close flushes progress and releases the media backend.
func (a *App) Close(ctx context.Context) error {
	a.flush(ctx)
	return a.deps.Backend.Close()
}

func (a *App) flush(ctx context.Context) {
	status := a.controller.Snapshot()
	if status.Book != nil {
		a.persister.Flush(ctx, status.Book.ID, status.Position, status.Duration)
	}
}
