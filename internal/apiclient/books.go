package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"bookshelf/internal/entity"
)

type searchReq struct {
	FindBook string `json:"findBook"`
}

// BookDetail is a book together with the ratings it has received.
type BookDetail struct {
	Book    entity.Book     `json:"book"`
	Ratings []entity.Rating `json:"avaliacoes"`
}

// SearchBooks runs a free-text search. A blank query is rejected without a
// request.
func (c *Client) SearchBooks(ctx context.Context, token, query string) ([]entity.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	var books []entity.Book
	if _, err := c.do(ctx, http.MethodPost, "/api/books", token, searchReq{FindBook: query}, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// GetBookDetail fetches one book. It is never cached.
func (c *Client) GetBookDetail(ctx context.Context, token, bookID string) (BookDetail, error) {
	var out BookDetail
	path := "/api/books/" + url.PathEscape(bookID)
	if _, err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return BookDetail{}, err
	}
	if out.Book.ID == "" {
		return BookDetail{}, fmt.Errorf("%w: book %q without id", ErrMalformed, bookID)
	}
	return out, nil
}
