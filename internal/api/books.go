package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Cossomoj/booksmood/internal/domain"
)

// Categories fetches all catalog categories.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.getJSON(ctx, "/api/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Books fetches a page of the catalog. categoryID 0 means unfiltered.
func (c *Client) Books(ctx context.Context, categoryID int64, limit, offset int) (*domain.BookPage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))
	if categoryID != 0 {
		query.Set("category_id", strconv.FormatInt(categoryID, 10))
	}

	var page domain.BookPage
	if err := c.getJSON(ctx, "/api/books", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Book fetches a single book by id.
func (c *Client) Book(ctx context.Context, id int64) (*domain.Book, error) {
	var book domain.Book
	if err := c.getJSON(ctx, fmt.Sprintf("/api/books/%d", id), nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// SearchBooks runs a full-text catalog search on the backend.
func (c *Client) SearchBooks(ctx context.Context, q string, limit int) (*domain.BookPage, error) {
	query := url.Values{}
	query.Set("q", q)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var page domain.BookPage
	if err := c.getJSON(ctx, "/api/books/search", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// AudioURL returns the audio stream URL for a book, suitable for handing to
// the media backend. The bearer token rides along as a query parameter since
// external players cannot set headers.
func (c *Client) AudioURL(bookID int64) string {
	u := fmt.Sprintf("%s/api/books/%d/audio", c.baseURL, bookID)
	if token := c.Token(); token != "" {
		u += "?token=" + url.QueryEscape(token)
	}
	return u
}
