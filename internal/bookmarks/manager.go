package bookmarks

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/Cossomoj/booksmood/internal/domain"
	"github.com/Cossomoj/booksmood/internal/errors"
	"github.com/Cossomoj/booksmood/internal/logger"
)

// ChapterSeconds is the nominal chapter length used to derive a default
// bookmark title from a raw position.
const ChapterSeconds = 600

// Service is the backend surface the manager needs.
type Service interface {
	AddBookmark(ctx context.Context, bookID int64, position int, title string) (*domain.Bookmark, error)
	Bookmarks(ctx context.Context, bookID int64) ([]domain.Bookmark, error)
	DeleteBookmark(ctx context.Context, bookmarkID int64) error
}

// Seeker jumps playback to a bookmark's position.
type Seeker interface {
	SeekTo(position float64) error
}

// Manager keeps the bookmark list for the currently open book and mirrors
// mutations locally so the list reflects an action immediately, before the
// backend confirms it.
type Manager struct {
	api    Service
	seeker Seeker
	logger *logger.Logger

	mu     sync.Mutex
	bookID int64
	items  []domain.Bookmark
}

func NewManager(api Service, seeker Seeker, log *logger.Logger) *Manager {
	return &Manager{api: api, seeker: seeker, logger: log}
}

// SetSeeker installs the playback jump target. The player is constructed
// after the manager, so the seeker arrives late.
func (m *Manager) SetSeeker(seeker Seeker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seeker = seeker
}

// DefaultTitle derives a bookmark title from a position, naming the chapter
// the position falls into. Chapters are numbered from one.
func DefaultTitle(position float64) string {
	chapter := int(math.Floor(position/ChapterSeconds)) + 1
	return fmt.Sprintf("Глава %d", chapter)
}

// Load replaces the local list with the backend's bookmarks for a book.
func (m *Manager) Load(ctx context.Context, bookID int64) error {
	items, err := m.api.Bookmarks(ctx, bookID)
	if err != nil {
		return errors.Wrapf(err, errors.CodeUnavailable, "failed to load bookmarks for book %d", bookID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookID = bookID
	m.items = items
	return nil
}

// Add creates a bookmark at the given position. An empty title falls back
// to the chapter-derived default. The new bookmark is prepended locally.
func (m *Manager) Add(ctx context.Context, bookID int64, position float64, title string) (*domain.Bookmark, error) {
	if title == "" {
		title = DefaultTitle(position)
	}

	bookmark, err := m.api.AddBookmark(ctx, bookID, int(math.Floor(position)), title)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if bookID == m.bookID {
		m.items = append([]domain.Bookmark{*bookmark}, m.items...)
	}
	m.logger.Info("bookmark added", "book", bookID, "position", bookmark.Position, "title", bookmark.Title)
	return bookmark, nil
}

// Remove deletes a bookmark. The local list drops it immediately; a backend
// failure is logged but does not restore the entry, the next Load resyncs.
func (m *Manager) Remove(ctx context.Context, bookmarkID int64) {
	m.mu.Lock()
	kept := m.items[:0]
	for _, item := range m.items {
		if item.ID != bookmarkID {
			kept = append(kept, item)
		}
	}
	m.items = kept
	m.mu.Unlock()

	if err := m.api.DeleteBookmark(ctx, bookmarkID); err != nil {
		m.logger.WithError(err).Warn("failed to delete bookmark", "bookmark", bookmarkID)
	}
}

// JumpTo seeks playback to a bookmark's position.
func (m *Manager) JumpTo(bookmark domain.Bookmark) error {
	m.mu.Lock()
	seeker := m.seeker
	m.mu.Unlock()

	if seeker == nil {
		return errors.Internal("no player attached")
	}
	return seeker.SeekTo(float64(bookmark.Position))
}

// List returns a copy of the local bookmark list.
func (m *Manager) List() []domain.Bookmark {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Bookmark, len(m.items))
	copy(out, m.items)
	return out
}

// Reset clears the local list, for when the open book changes.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookID = 0
	m.items = nil
}
