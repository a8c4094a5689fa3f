package app

import (
	"context"

	"github.com/Cossomoj/booksmood/internal/api"
	"github.com/Cossomoj/booksmood/internal/domain"
	"github.com/Cossomoj/booksmood/internal/logger"
	"github.com/Cossomoj/booksmood/internal/storage"
)

// bookSource resolves books and prior progress for the playback controller.
// Progress prefers the backend's record and falls back to the local cache,
// so resuming works offline.
type bookSource struct {
	client *api.Client
	store  *storage.Store
	logger *logger.Logger
}

func (s *bookSource) ResolveBook(ctx context.Context, bookID int64) (*domain.Book, error) {
	return s.client.Book(ctx, bookID)
}

func (s *bookSource) ResolveProgress(ctx context.Context, bookID int64) *domain.UserProgress {
	progress, err := s.client.History(ctx, bookID)
	if err == nil {
		return progress
	}
	s.logger.WithError(err).Debug("no backend progress, trying local cache", "book", bookID)

	if s.store != nil {
		if cached, err := s.store.CachedProgress(bookID); err == nil {
			return cached
		}
	}
	return nil
}

func (s *bookSource) AudioURL(bookID int64) string {
	return s.client.AudioURL(bookID)
}
