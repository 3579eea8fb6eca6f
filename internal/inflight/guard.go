package inflight

import (
	"errors"
	"strings"
	"sync"
)

// ErrBusy is returned while the same action is still running.
var ErrBusy = errors.New("action already in progress")

// Guard admits one holder per key at a time. It rejects duplicates instead
// of waiting for or sharing the first call.
type Guard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{held: make(map[string]struct{})}
}

// Acquire takes key. The returned release must be called exactly once; extra
// calls are harmless.
func (g *Guard) Acquire(key string) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.held[key]; busy {
		return nil, ErrBusy
	}
	g.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}, nil
}

// Key joins parts into a guard key.
func Key(parts ...string) string {
	return strings.Join(parts, "\x00")
}
