package apiclient

import (
	"context"
	"net/http"
	"net/url"
)

type favoritesResp struct {
	FavoriteBooks []string `json:"favorite_books"`
}

type addFavoriteReq struct {
	BookID string `json:"book_id"`
}

type messageResp struct {
	Message string `json:"message"`
}

type isFavoriteResp struct {
	IsFavorite bool `json:"is_favorite"`
}

func favoritesPath(userID string) string {
	return "/api/users/" + url.PathEscape(userID) + "/favorites"
}

// ListFavorites returns the ids of the user's favorite books.
func (c *Client) ListFavorites(ctx context.Context, token, userID string) ([]string, error) {
	var out favoritesResp
	if _, err := c.do(ctx, http.MethodGet, favoritesPath(userID), token, nil, &out); err != nil {
		return nil, err
	}
	return out.FavoriteBooks, nil
}

// AddFavorite marks bookID as a favorite and returns the backend's message.
func (c *Client) AddFavorite(ctx context.Context, token, userID, bookID string) (string, error) {
	var out messageResp
	if _, err := c.do(ctx, http.MethodPost, favoritesPath(userID), token, addFavoriteReq{BookID: bookID}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// RemoveFavorite drops bookID from the user's favorites.
func (c *Client) RemoveFavorite(ctx context.Context, token, userID, bookID string) (string, error) {
	var out messageResp
	path := favoritesPath(userID) + "/" + url.PathEscape(bookID)
	if _, err := c.do(ctx, http.MethodDelete, path, token, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// IsFavorite reports whether bookID is among the user's favorites.
func (c *Client) IsFavorite(ctx context.Context, token, userID, bookID string) (bool, error) {
	var out isFavoriteResp
	path := favoritesPath(userID) + "/check/" + url.PathEscape(bookID)
	if _, err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return false, err
	}
	return out.IsFavorite, nil
}
