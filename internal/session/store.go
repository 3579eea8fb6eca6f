package session

import (
	"context"
	"fmt"

	"bookshelf/internal/entity"
)

// Keys under which a session lives in profile storage.
const (
	KeyUserID   = "user_id"
	KeyUsername = "username"
	KeyToken    = "auth_token"
)

// Store reads and writes the logged-in session of a browser profile.
type Store struct {
	storage Storage
}

func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Set replaces the profile's session. A failed write clears whatever part of
// it was written.
func (s *Store) Set(ctx context.Context, profileID string, sess entity.Session) error {
	pairs := [][2]string{
		{KeyUserID, sess.UserID},
		{KeyUsername, sess.Username},
		{KeyToken, sess.Token},
	}
	for _, p := range pairs {
		if err := s.storage.Set(ctx, profileID, p[0], p[1]); err != nil {
			_ = s.Clear(ctx, profileID)
			return fmt.Errorf("store session key %s: %w", p[0], err)
		}
	}
	return nil
}

// Get returns the profile's session. ok is false unless both the user id and
// the token are stored.
func (s *Store) Get(ctx context.Context, profileID string) (entity.Session, bool, error) {
	var sess entity.Session
	targets := []struct {
		key string
		dst *string
	}{
		{KeyUserID, &sess.UserID},
		{KeyUsername, &sess.Username},
		{KeyToken, &sess.Token},
	}
	for _, t := range targets {
		v, _, err := s.storage.Get(ctx, profileID, t.key)
		if err != nil {
			return entity.Session{}, false, fmt.Errorf("load session key %s: %w", t.key, err)
		}
		*t.dst = v
	}
	if !sess.Valid() {
		return entity.Session{}, false, nil
	}
	return sess, true, nil
}

// Clear removes every session key of the profile.
func (s *Store) Clear(ctx context.Context, profileID string) error {
	if err := s.storage.Delete(ctx, profileID, KeyUserID, KeyUsername, KeyToken); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Ping checks the underlying storage.
func (s *Store) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}
