package domain

import "time"

// Bookmark is a user-named timestamp within a book, independent of progress.
type Bookmark struct {
	ID        int64      `json:"id"`
	BookID    int64      `json:"book_id"`
	Position  int        `json:"position"`
	Title     string     `json:"title"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}
