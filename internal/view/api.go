package view

import (
	"context"

	"bookshelf/internal/apiclient"
	"bookshelf/internal/entity"
)

//go:generate mockgen -destination=mocks/mock_api.go -package=mocks bookshelf/internal/view API

// API is the catalog backend as the binder sees it. *apiclient.Client
// implements it.
type API interface {
	Register(ctx context.Context, username, email, password string) (entity.Identity, error)
	Login(ctx context.Context, login, password string) (apiclient.LoginResult, error)
	Logout(ctx context.Context, token, userID string) error
	Whoami(ctx context.Context, token string) (string, error)

	SearchBooks(ctx context.Context, token, query string) ([]entity.Book, error)
	GetBookDetail(ctx context.Context, token, bookID string) (apiclient.BookDetail, error)

	ListFavorites(ctx context.Context, token, userID string) ([]string, error)
	AddFavorite(ctx context.Context, token, userID, bookID string) (string, error)
	RemoveFavorite(ctx context.Context, token, userID, bookID string) (string, error)
	IsFavorite(ctx context.Context, token, userID, bookID string) (bool, error)

	ListRatings(ctx context.Context, token, userID string) ([]entity.Rating, error)
	CheckRated(ctx context.Context, token, bookID, userID string) (bool, error)
	SaveRating(ctx context.Context, token, userID string, in apiclient.RatingInput) (string, error)
	DeleteRating(ctx context.Context, token, bookID, userID string) (string, error)
	RatingStats(ctx context.Context, bookID string) (entity.RatingStats, bool, error)

	Chat(ctx context.Context, message string) (string, error)
}

var _ API = (*apiclient.Client)(nil)
