package favorites

import (
	"context"

	"github.com/Cossomoj/booksmood/internal/api"
	"github.com/Cossomoj/booksmood/internal/domain"
	"github.com/Cossomoj/booksmood/internal/errors"
	"github.com/Cossomoj/booksmood/internal/logger"
)

// Service is the backend surface the favorites flow needs.
type Service interface {
	FavoriteStatus(ctx context.Context, bookID int64) (bool, error)
	AddFavorite(ctx context.Context, bookID int64) (*api.FavoriteResult, error)
	RemoveFavorite(ctx context.Context, bookID int64) (*api.FavoriteResult, error)
	Favorites(ctx context.Context, limit int) ([]domain.Book, error)
}

// Favorites drives the favorite toggle and listing. Toggling reads the
// current status first and then issues the opposite mutation; two clients
// toggling the same book concurrently can race, and the backend's answer
// wins.
type Favorites struct {
	api    Service
	logger *logger.Logger
}

func New(api Service, log *logger.Logger) *Favorites {
	return &Favorites{api: api, logger: log}
}

// Toggle flips the favorite state of a book and returns the new state.
func (f *Favorites) Toggle(ctx context.Context, bookID int64) (bool, error) {
	favored, err := f.api.FavoriteStatus(ctx, bookID)
	if err != nil {
		return false, errors.Wrapf(err, errors.CodeUnavailable, "failed to read favorite status for book %d", bookID)
	}

	if favored {
		if _, err := f.api.RemoveFavorite(ctx, bookID); err != nil {
			return true, errors.Wrapf(err, errors.CodeUnavailable, "failed to unfavorite book %d", bookID)
		}
		f.logger.Info("removed from favorites", "book", bookID)
		return false, nil
	}

	if _, err := f.api.AddFavorite(ctx, bookID); err != nil {
		return false, errors.Wrapf(err, errors.CodeUnavailable, "failed to favorite book %d", bookID)
	}
	f.logger.Info("added to favorites", "book", bookID)
	return true, nil
}

// Status reports whether a book is currently favorited.
func (f *Favorites) Status(ctx context.Context, bookID int64) (bool, error) {
	return f.api.FavoriteStatus(ctx, bookID)
}

// List returns the user's favorite books, newest first per the backend's
// ordering. A limit of zero means no limit.
func (f *Favorites) List(ctx context.Context, limit int) ([]domain.Book, error) {
	books, err := f.api.Favorites(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "failed to load favorites")
	}
	return books, nil
}
