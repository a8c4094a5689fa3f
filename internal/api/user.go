package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Cossomoj/booksmood/internal/domain"
)

// History fetches the user's progress for a book.
// Returns errors.ErrNotFound when no progress has been recorded yet.
func (c *Client) History(ctx context.Context, bookID int64) (*domain.UserProgress, error) {
	var progress domain.UserProgress
	if err := c.getJSON(ctx, fmt.Sprintf("/api/user/history/%d", bookID), nil, &progress); err != nil {
		return nil, err
	}
	if progress.BookID == 0 {
		progress.BookID = bookID
	}
	return &progress, nil
}

type progressRequest struct {
	Position int `json:"position" validate:"gte=0"`
	Duration int `json:"duration" validate:"gte=0"`
}

// PushProgress reports the current playback position for a book.
func (c *Client) PushProgress(ctx context.Context, bookID int64, position, duration int) error {
	body := progressRequest{Position: position, Duration: duration}
	if err := c.validate.Validate(body); err != nil {
		return err
	}
	return c.postJSON(ctx, fmt.Sprintf("/api/user/history/%d", bookID), body, nil)
}

// FinishBook marks a book as finished, independent of the progress gate.
func (c *Client) FinishBook(ctx context.Context, bookID int64) error {
	return c.postJSON(ctx, fmt.Sprintf("/api/user/history/%d/finish", bookID), nil, nil)
}

type bookmarkRequest struct {
	Position int    `json:"position" validate:"gte=0"`
	Title    string `json:"title" validate:"required,max=200"`
}

// AddBookmark creates a named time-offset marker within a book.
func (c *Client) AddBookmark(ctx context.Context, bookID int64, position int, title string) (*domain.Bookmark, error) {
	body := bookmarkRequest{Position: position, Title: title}
	if err := c.validate.Validate(body); err != nil {
		return nil, err
	}

	var bookmark domain.Bookmark
	if err := c.postJSON(ctx, fmt.Sprintf("/api/user/bookmarks/%d", bookID), body, &bookmark); err != nil {
		return nil, err
	}
	return &bookmark, nil
}

// Bookmarks lists the user's bookmarks for a book.
func (c *Client) Bookmarks(ctx context.Context, bookID int64) ([]domain.Bookmark, error) {
	var bookmarks []domain.Bookmark
	if err := c.getJSON(ctx, fmt.Sprintf("/api/user/bookmarks/%d", bookID), nil, &bookmarks); err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// DeleteBookmark removes a bookmark by its own id (not the book id).
func (c *Client) DeleteBookmark(ctx context.Context, bookmarkID int64) error {
	_, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/user/bookmarks/%d", bookmarkID), nil, nil)
	return err
}

// FavoriteResult is the backend's answer to a favorite mutation.
type FavoriteResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	BookID  int64  `json:"book_id,omitempty"`
}

// FavoriteStatus reports whether a book is currently favorited.
func (c *Client) FavoriteStatus(ctx context.Context, bookID int64) (bool, error) {
	var result struct {
		IsFavorite bool `json:"is_favorite"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/api/user/favorites/%d/status", bookID), nil, &result); err != nil {
		return false, err
	}
	return result.IsFavorite, nil
}

// AddFavorite adds a book to the user's favorites.
func (c *Client) AddFavorite(ctx context.Context, bookID int64) (*FavoriteResult, error) {
	var result FavoriteResult
	if err := c.postJSON(ctx, fmt.Sprintf("/api/user/favorites/%d", bookID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RemoveFavorite removes a book from the user's favorites.
func (c *Client) RemoveFavorite(ctx context.Context, bookID int64) (*FavoriteResult, error) {
	data, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/user/favorites/%d", bookID), nil, nil)
	if err != nil {
		return nil, err
	}
	result := &FavoriteResult{}
	_ = unmarshalLenient(data, result)
	return result, nil
}

// Favorites lists the user's favorite books.
func (c *Client) Favorites(ctx context.Context, limit int) ([]domain.Book, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var books []domain.Book
	if err := c.getJSON(ctx, "/api/user/favorites", query, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// Library fetches the user's full library: history, favorites, stats.
func (c *Client) Library(ctx context.Context) (*domain.Library, error) {
	var library domain.Library
	if err := c.getJSON(ctx, "/api/user/library", nil, &library); err != nil {
		return nil, err
	}
	return &library, nil
}
