package catalog

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"github.com/Cossomoj/booksmood/internal/domain"
	"github.com/Cossomoj/booksmood/internal/logger"
	"github.com/Cossomoj/booksmood/internal/timerx"
)

// DefaultPageSize bounds a single catalog page request.
const DefaultPageSize = 100

// Service is the backend surface the loader needs.
type Service interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	Books(ctx context.Context, categoryID int64, limit, offset int) (*domain.BookPage, error)
	SearchBooks(ctx context.Context, q string, limit int) (*domain.BookPage, error)
}

// Options tune the loader's search behavior.
type Options struct {
	Debounce       time.Duration
	MinQueryLength int
	PageSize       int
}

// Loader keeps the browsable catalog state: categories, the current book
// list and the active search. Backend failures degrade to an empty list
// with a logged warning instead of propagating, so the catalog view always
// renders.
type Loader struct {
	api      Service
	logger   *logger.Logger
	debounce *timerx.Timer

	delay    time.Duration
	minQuery int
	pageSize int

	mu         sync.Mutex
	categories []domain.Category
	books      []domain.Book
	total      int
	category   int64
	query      string
	onUpdate   func()
}

func NewLoader(api Service, log *logger.Logger, opts Options) *Loader {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return &Loader{
		api:      api,
		logger:   log,
		debounce: timerx.New(),
		delay:    opts.Debounce,
		minQuery: opts.MinQueryLength,
		pageSize: opts.PageSize,
	}
}

// OnUpdate registers a callback invoked after every list change.
func (l *Loader) OnUpdate(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onUpdate = fn
}

// LoadCategories refreshes the category list. Failures keep the previous
// list and log a warning.
func (l *Loader) LoadCategories(ctx context.Context) {
	categories, err := l.api.Categories(ctx)
	if err != nil {
		l.logger.WithError(err).Warn("failed to load categories")
		return
	}

	l.mu.Lock()
	l.categories = categories
	l.mu.Unlock()
	l.notify()
}

// LoadBooks replaces the book list with a category's page. categoryID 0
// loads the unfiltered catalog. A backend failure yields an empty list.
func (l *Loader) LoadBooks(ctx context.Context, categoryID int64) {
	page, err := l.api.Books(ctx, categoryID, l.pageSize, 0)
	if err != nil {
		l.logger.WithError(err).Warn("failed to load books", "category", categoryID)
		page = &domain.BookPage{}
	}

	l.mu.Lock()
	l.books = page.Books
	l.total = page.Total
	l.category = categoryID
	l.query = ""
	l.mu.Unlock()
	l.notify()
}

// QueueSearch schedules a debounced search for q. An empty query cancels
// any pending search and reloads the active category; queries shorter than
// the minimum only cancel. Rapid successive calls collapse to the last one.
func (l *Loader) QueueSearch(ctx context.Context, q string) {
	q = l.normalize(q)

	if q == "" {
		l.debounce.Cancel()
		l.LoadBooks(ctx, l.ActiveCategory())
		return
	}
	if len([]rune(q)) < l.minQuery {
		l.debounce.Cancel()
		return
	}

	l.debounce.Start(l.delay, func() {
		l.runSearch(ctx, q)
	})
}

// SubmitSearch runs the search immediately, dropping any pending debounced
// one. Used when the user explicitly confirms the query.
func (l *Loader) SubmitSearch(ctx context.Context, q string) {
	l.debounce.Cancel()
	q = l.normalize(q)

	if q == "" {
		l.LoadBooks(ctx, l.ActiveCategory())
		return
	}
	if len([]rune(q)) < l.minQuery {
		return
	}
	l.runSearch(ctx, q)
}

func (l *Loader) runSearch(ctx context.Context, q string) {
	page, err := l.api.SearchBooks(ctx, q, l.pageSize)
	if err != nil {
		l.logger.WithError(err).Warn("search failed", "query", q)
		page = &domain.BookPage{}
	}

	l.mu.Lock()
	l.books = page.Books
	l.total = page.Total
	l.query = q
	l.mu.Unlock()
	l.notify()
}

// Case folding keeps Cyrillic and Latin queries stable regardless of how
// the user typed them. A Caser is not safe for concurrent use, so one is
// built per call.
func (l *Loader) normalize(q string) string {
	return cases.Fold().String(strings.TrimSpace(q))
}

// Books returns a copy of the current list.
func (l *Loader) Books() []domain.Book {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Book, len(l.books))
	copy(out, l.books)
	return out
}

// Categories returns a copy of the loaded categories.
func (l *Loader) Categories() []domain.Category {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Category, len(l.categories))
	copy(out, l.categories)
	return out
}

// ActiveCategory returns the category the current list was loaded from.
func (l *Loader) ActiveCategory() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.category
}

// Query returns the search query the current list answers, empty when the
// list is a plain category page.
func (l *Loader) Query() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.query
}

// Total returns the backend's total for the current list.
func (l *Loader) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

func (l *Loader) notify() {
	l.mu.Lock()
	fn := l.onUpdate
	l.mu.Unlock()
	if fn != nil {
		fn()
	}
}
