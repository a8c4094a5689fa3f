package bookmarks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cossomoj/booksmood/internal/domain"
	"github.com/Cossomoj/booksmood/internal/errors"
	"github.com/Cossomoj/booksmood/internal/logger"
)

type fakeService struct {
	nextID    int64
	added     []domain.Bookmark
	deleted   []int64
	stored    map[int64][]domain.Bookmark
	addErr    error
	deleteErr error
	listErr   error
}

func newFakeService() *fakeService {
	return &fakeService{nextID: 100, stored: make(map[int64][]domain.Bookmark)}
}

func (f *fakeService) AddBookmark(_ context.Context, bookID int64, position int, title string) (*domain.Bookmark, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.nextID++
	b := domain.Bookmark{ID: f.nextID, BookID: bookID, Position: position, Title: title}
	f.added = append(f.added, b)
	return &b, nil
}

func (f *fakeService) Bookmarks(_ context.Context, bookID int64) ([]domain.Bookmark, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.stored[bookID], nil
}

func (f *fakeService) DeleteBookmark(_ context.Context, bookmarkID int64) error {
	f.deleted = append(f.deleted, bookmarkID)
	return f.deleteErr
}

type fakeSeeker struct {
	positions []float64
}

func (f *fakeSeeker) SeekTo(position float64) error {
	f.positions = append(f.positions, position)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Format: "json", Level: 8})
}

func TestDefaultTitle(t *testing.T) {
	tests := []struct {
		position float64
		want     string
	}{
		{0, "Глава 1"},
		{599, "Глава 1"},
		{600, "Глава 2"},
		{605.4, "Глава 2"},
		{1805, "Глава 4"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultTitle(tt.position), "position %v", tt.position)
	}
}

func TestManager_AddUsesDefaultTitle(t *testing.T) {
	svc := newFakeService()
	m := NewManager(svc, &fakeSeeker{}, testLogger())
	require.NoError(t, m.Load(context.Background(), 1))

	b, err := m.Add(context.Background(), 1, 1250.8, "")
	require.NoError(t, err)

	assert.Equal(t, "Глава 3", b.Title)
	assert.Equal(t, 1250, b.Position, "fractional positions are floored")
}

func TestManager_AddKeepsExplicitTitle(t *testing.T) {
	svc := newFakeService()
	m := NewManager(svc, &fakeSeeker{}, testLogger())
	require.NoError(t, m.Load(context.Background(), 1))

	b, err := m.Add(context.Background(), 1, 42, "Любимый момент")
	require.NoError(t, err)
	assert.Equal(t, "Любимый момент", b.Title)
}

func TestManager_AddPrependsLocally(t *testing.T) {
	svc := newFakeService()
	svc.stored[1] = []domain.Bookmark{{ID: 10, BookID: 1, Position: 30, Title: "Глава 1"}}
	m := NewManager(svc, &fakeSeeker{}, testLogger())
	require.NoError(t, m.Load(context.Background(), 1))

	_, err := m.Add(context.Background(), 1, 700, "")
	require.NoError(t, err)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, 700, list[0].Position, "newest first")
	assert.Equal(t, int64(10), list[1].ID)
}

func TestManager_AddErrorLeavesListUntouched(t *testing.T) {
	svc := newFakeService()
	svc.addErr = errors.Unauthorized("login required")
	m := NewManager(svc, &fakeSeeker{}, testLogger())
	require.NoError(t, m.Load(context.Background(), 1))

	_, err := m.Add(context.Background(), 1, 100, "")
	require.Error(t, err)
	assert.Empty(t, m.List())
}

func TestManager_RemoveDropsImmediately(t *testing.T) {
	svc := newFakeService()
	svc.stored[1] = []domain.Bookmark{
		{ID: 10, BookID: 1, Position: 30},
		{ID: 11, BookID: 1, Position: 90},
	}
	m := NewManager(svc, &fakeSeeker{}, testLogger())
	require.NoError(t, m.Load(context.Background(), 1))

	m.Remove(context.Background(), 10)

	list := m.List()
	require.Len(t, list, 1)
	assert.Equal(t, int64(11), list[0].ID)
	assert.Equal(t, []int64{10}, svc.deleted)
}

func TestManager_RemoveKeepsLocalDropOnBackendFailure(t *testing.T) {
	svc := newFakeService()
	svc.stored[1] = []domain.Bookmark{{ID: 10, BookID: 1, Position: 30}}
	svc.deleteErr = errors.Unavailable("backend down")
	m := NewManager(svc, &fakeSeeker{}, testLogger())
	require.NoError(t, m.Load(context.Background(), 1))

	m.Remove(context.Background(), 10)

	assert.Empty(t, m.List(), "local removal is not rolled back")
}

func TestManager_JumpToSeeks(t *testing.T) {
	seeker := &fakeSeeker{}
	m := NewManager(newFakeService(), seeker, testLogger())

	require.NoError(t, m.JumpTo(domain.Bookmark{ID: 10, Position: 725}))
	assert.Equal(t, []float64{725}, seeker.positions)
}

func TestManager_LoadReplacesList(t *testing.T) {
	svc := newFakeService()
	svc.stored[1] = []domain.Bookmark{{ID: 10, BookID: 1}}
	svc.stored[2] = []domain.Bookmark{{ID: 20, BookID: 2}, {ID: 21, BookID: 2}}
	m := NewManager(svc, &fakeSeeker{}, testLogger())

	require.NoError(t, m.Load(context.Background(), 1))
	require.Len(t, m.List(), 1)

	require.NoError(t, m.Load(context.Background(), 2))
	assert.Len(t, m.List(), 2)
}

func TestManager_Reset(t *testing.T) {
	svc := newFakeService()
	svc.stored[1] = []domain.Bookmark{{ID: 10, BookID: 1}}
	m := NewManager(svc, &fakeSeeker{}, testLogger())
	require.NoError(t, m.Load(context.Background(), 1))

	m.Reset()
	assert.Empty(t, m.List())
}
