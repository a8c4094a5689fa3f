// Package domain contains the client-side data model for the BooksMood catalog.
// All catalog entities are fetched from the backend and never mutated locally.
package domain

// Book is a single audiobook in the catalog.
type Book struct {
	ID              int64         `json:"id"`
	Title           string        `json:"title"`
	Author          string        `json:"author"`
	Description     string        `json:"description,omitempty"`
	CoverURL        string        `json:"cover_url,omitempty"`
	CoverBlurhash   string        `json:"cover_blurhash,omitempty"`
	DurationSeconds int           `json:"duration_seconds"`
	Rating          float64       `json:"rating"`
	IsFree          bool          `json:"is_free"`
	AudioURL        string        `json:"audio_file_url,omitempty"`
	CategoryID      int64         `json:"category_id,omitempty"`
	Progress        *UserProgress `json:"user_progress,omitempty"`
}

// Position returns the user's last playback position for the book, or 0
// when no progress has been recorded.
func (b *Book) Position() int {
	if b.Progress == nil {
		return 0
	}
	return b.Progress.CurrentPosition
}

// Started reports whether the user has any recorded progress for the book.
func (b *Book) Started() bool {
	return b.Position() > 0
}

// Category is a catalog filter. The client only ever uses categories to
// scope book queries.
type Category struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Emoji      string `json:"emoji,omitempty"`
	BooksCount int    `json:"books_count"`
}

// BookPage is one page of a book listing or search result.
type BookPage struct {
	Books []Book `json:"books"`
	Total int    `json:"total"`
}
