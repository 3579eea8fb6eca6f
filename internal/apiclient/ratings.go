package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"bookshelf/internal/entity"
)

// RatingInput is a rating to create or overwrite.
type RatingInput struct {
	BookID  string `json:"google_books_id"`
	Stars   int    `json:"estrelas"`
	Comment string `json:"comentario,omitempty"`
}

type ratingsResp struct {
	Ratings []entity.Rating `json:"ratings"`
}

type checkRatedResp struct {
	AlreadyRated bool `json:"ja_avaliou"`
}

func ratingPath(bookID, userID string) string {
	p := "/api/ratings/" + url.PathEscape(bookID)
	if userID == "" {
		return p
	}
	return p + "?user_id=" + url.QueryEscape(userID)
}

// ListRatings returns every rating the user has given.
func (c *Client) ListRatings(ctx context.Context, token, userID string) ([]entity.Rating, error) {
	var out ratingsResp
	path := "/api/users/" + url.PathEscape(userID) + "/ratings"
	if _, err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return out.Ratings, nil
}

// CheckRated reports whether userID has already rated bookID.
func (c *Client) CheckRated(ctx context.Context, token, bookID, userID string) (bool, error) {
	var out checkRatedResp
	path := "/api/ratings/" + url.PathEscape(bookID) + "/check?user_id=" + url.QueryEscape(userID)
	if _, err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return false, err
	}
	return out.AlreadyRated, nil
}

// SaveRating creates the user's rating for a book, or replaces it.
func (c *Client) SaveRating(ctx context.Context, token, userID string, in RatingInput) (string, error) {
	var out messageResp
	path := "/api/users/" + url.PathEscape(userID) + "/ratings"
	if _, err := c.do(ctx, http.MethodPost, path, token, in, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// DeleteRating removes the user's rating for bookID.
func (c *Client) DeleteRating(ctx context.Context, token, bookID, userID string) (string, error) {
	var out messageResp
	if _, err := c.do(ctx, http.MethodDelete, ratingPath(bookID, userID), token, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// RatingStats returns the aggregate ratings of a book. A book nobody rated
// yields found == false and no error.
func (c *Client) RatingStats(ctx context.Context, bookID string) (entity.RatingStats, bool, error) {
	var out entity.RatingStats
	path := "/api/ratings/" + url.PathEscape(bookID) + "/stats"
	if _, err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return entity.RatingStats{}, false, nil
		}
		return entity.RatingStats{}, false, err
	}
	return out, true, nil
}
