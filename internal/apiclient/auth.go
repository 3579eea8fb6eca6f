package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"bookshelf/internal/entity"
)

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is what a successful login yields. Token is opaque and is the
// only credential sent back to the backend.
type LoginResult struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// Register creates an account. Only 201 Created counts as success.
func (c *Client) Register(ctx context.Context, username, email, password string) (entity.Identity, error) {
	var out entity.Identity
	status, err := c.do(ctx, http.MethodPost, "/auth/register", "", registerReq{
		Username: username,
		Email:    email,
		Password: password,
	}, &out)
	if err != nil {
		return entity.Identity{}, err
	}
	if status != http.StatusCreated {
		return entity.Identity{}, newAPIError(status, "Registration failed")
	}
	return out, nil
}

// Login authenticates with a username or an email address.
func (c *Client) Login(ctx context.Context, login, password string) (LoginResult, error) {
	var out LoginResult
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", "", loginReq{
		Username: login,
		Password: password,
	}, &out); err != nil {
		return LoginResult{}, err
	}
	if out.UserID == "" || out.Token == "" {
		return LoginResult{}, fmt.Errorf("%w: login answer without user_id or token", ErrMalformed)
	}
	return out, nil
}

type logoutReq struct {
	UserID string `json:"user_id"`
}

// Logout asks the backend to forget the session. Callers clear local state
// whatever this returns.
func (c *Client) Logout(ctx context.Context, token, userID string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", token, logoutReq{UserID: userID}, nil)
	return err
}

type whoamiResp struct {
	Username string `json:"username"`
}

// Whoami validates token and returns the username it belongs to.
func (c *Client) Whoami(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNoToken
	}
	var out whoamiResp
	if _, err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &out); err != nil {
		return "", err
	}
	return out.Username, nil
}
