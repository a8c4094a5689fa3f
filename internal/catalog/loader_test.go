package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cossomoj/booksmood/internal/domain"
	"github.com/Cossomoj/booksmood/internal/errors"
	"github.com/Cossomoj/booksmood/internal/logger"
)

type fakeService struct {
	mu sync.Mutex

	categories []domain.Category
	pages      map[int64]*domain.BookPage
	results    map[string]*domain.BookPage

	categoriesErr error
	booksErr      error
	searchErr     error

	searches []string
	loads    []int64
}

func newFakeService() *fakeService {
	return &fakeService{
		pages:   make(map[int64]*domain.BookPage),
		results: make(map[string]*domain.BookPage),
	}
}

func (f *fakeService) Categories(_ context.Context) ([]domain.Category, error) {
	if f.categoriesErr != nil {
		return nil, f.categoriesErr
	}
	return f.categories, nil
}

func (f *fakeService) Books(_ context.Context, categoryID int64, _, _ int) (*domain.BookPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, categoryID)
	if f.booksErr != nil {
		return nil, f.booksErr
	}
	if page := f.pages[categoryID]; page != nil {
		return page, nil
	}
	return &domain.BookPage{}, nil
}

func (f *fakeService) SearchBooks(_ context.Context, q string, _ int) (*domain.BookPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, q)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if page := f.results[q]; page != nil {
		return page, nil
	}
	return &domain.BookPage{}, nil
}

func (f *fakeService) searchLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.searches))
	copy(out, f.searches)
	return out
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Format: "json", Level: 8})
}

func newLoaderFixture(svc *fakeService) *Loader {
	return NewLoader(svc, testLogger(), Options{
		Debounce:       20 * time.Millisecond,
		MinQueryLength: 2,
		PageSize:       50,
	})
}

func TestLoadBooks(t *testing.T) {
	svc := newFakeService()
	svc.pages[3] = &domain.BookPage{
		Books: []domain.Book{{ID: 1, Title: "Мы"}, {ID: 2, Title: "Котлован"}},
		Total: 2,
	}
	l := newLoaderFixture(svc)

	l.LoadBooks(context.Background(), 3)

	assert.Len(t, l.Books(), 2)
	assert.Equal(t, 2, l.Total())
	assert.Equal(t, int64(3), l.ActiveCategory())
	assert.Empty(t, l.Query())
}

func TestLoadBooksDegradesToEmpty(t *testing.T) {
	svc := newFakeService()
	svc.pages[0] = &domain.BookPage{Books: []domain.Book{{ID: 1}}, Total: 1}
	l := newLoaderFixture(svc)
	l.LoadBooks(context.Background(), 0)
	require.Len(t, l.Books(), 1)

	svc.booksErr = errors.Unavailable("backend down")
	l.LoadBooks(context.Background(), 0)

	assert.Empty(t, l.Books(), "failures yield an empty list, never an error screen")
}

func TestLoadCategoriesKeepsOldListOnFailure(t *testing.T) {
	svc := newFakeService()
	svc.categories = []domain.Category{{ID: 1, Name: "Классика"}}
	l := newLoaderFixture(svc)
	l.LoadCategories(context.Background())
	require.Len(t, l.Categories(), 1)

	svc.categoriesErr = errors.Unavailable("backend down")
	l.LoadCategories(context.Background())

	assert.Len(t, l.Categories(), 1)
}

func TestQueueSearchDebounces(t *testing.T) {
	svc := newFakeService()
	l := newLoaderFixture(svc)

	// Three keystrokes in quick succession; only the last query runs.
	l.QueueSearch(context.Background(), "бу")
	l.QueueSearch(context.Background(), "бул")
	l.QueueSearch(context.Background(), "булг")
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, []string{"булг"}, svc.searchLog())
	assert.Equal(t, "булг", l.Query())
}

func TestQueueSearchTooShortCancelsPending(t *testing.T) {
	svc := newFakeService()
	l := newLoaderFixture(svc)

	l.QueueSearch(context.Background(), "бул")
	l.QueueSearch(context.Background(), "б")
	time.Sleep(60 * time.Millisecond)

	assert.Empty(t, svc.searchLog())
}

func TestQueueSearchEmptyReloadsCategory(t *testing.T) {
	svc := newFakeService()
	svc.pages[5] = &domain.BookPage{Books: []domain.Book{{ID: 9}}, Total: 1}
	l := newLoaderFixture(svc)
	l.LoadBooks(context.Background(), 5)

	l.QueueSearch(context.Background(), "бул")
	l.QueueSearch(context.Background(), "   ")
	time.Sleep(60 * time.Millisecond)

	assert.Empty(t, svc.searchLog(), "pending search was cancelled")
	assert.Equal(t, []int64{5, 5}, svc.loads, "empty query reloads the active category")
	assert.Empty(t, l.Query())
}

func TestQueueSearchFoldsCase(t *testing.T) {
	svc := newFakeService()
	l := newLoaderFixture(svc)

	l.QueueSearch(context.Background(), "  БУЛГАКОВ ")
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, []string{"булгаков"}, svc.searchLog())
}

func TestSubmitSearchBypassesDebounce(t *testing.T) {
	svc := newFakeService()
	svc.results["мы"] = &domain.BookPage{Books: []domain.Book{{ID: 1, Title: "Мы"}}, Total: 1}
	l := newLoaderFixture(svc)

	l.QueueSearch(context.Background(), "замятин")
	l.SubmitSearch(context.Background(), "Мы")

	assert.Equal(t, []string{"мы"}, svc.searchLog())
	assert.Len(t, l.Books(), 1)

	// The superseded debounced search never fires.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []string{"мы"}, svc.searchLog())
}

func TestSearchFailureDegradesToEmpty(t *testing.T) {
	svc := newFakeService()
	svc.pages[0] = &domain.BookPage{Books: []domain.Book{{ID: 1}}, Total: 1}
	l := newLoaderFixture(svc)
	l.LoadBooks(context.Background(), 0)

	svc.searchErr = errors.Unavailable("backend down")
	l.SubmitSearch(context.Background(), "булгаков")

	assert.Empty(t, l.Books())
	assert.Equal(t, "булгаков", l.Query())
}

func TestOnUpdateFires(t *testing.T) {
	svc := newFakeService()
	l := newLoaderFixture(svc)

	var updates int
	l.OnUpdate(func() { updates++ })

	l.LoadBooks(context.Background(), 0)
	l.SubmitSearch(context.Background(), "мы")

	assert.Equal(t, 2, updates)
}
