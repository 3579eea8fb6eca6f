package session

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Storage is key/value storage scoped to one browser profile. Values written
// for one profile are never visible to another.
type Storage interface {
	Get(ctx context.Context, profileID, key string) (string, bool, error)
	Set(ctx context.Context, profileID, key, value string) error
	Delete(ctx context.Context, profileID string, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}

// MemoryStorage keeps everything in process memory. State is lost on restart.
type MemoryStorage struct {
	mu       sync.RWMutex
	profiles map[string]map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{profiles: make(map[string]map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, profileID, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.profiles[profileID][key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, profileID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kv, ok := m.profiles[profileID]
	if !ok {
		kv = make(map[string]string)
		m.profiles[profileID] = kv
	}
	kv[key] = value
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, profileID string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kv, ok := m.profiles[profileID]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(kv, k)
	}
	if len(kv) == 0 {
		delete(m.profiles, profileID)
	}
	return nil
}

func (m *MemoryStorage) Ping(context.Context) error { return nil }

func (m *MemoryStorage) Close() error { return nil }
