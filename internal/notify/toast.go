package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
)

// maxToasts bounds the queue of one profile; the oldest toast goes first.
const maxToasts = 8

// unshownTTL drops toasts of profiles that never load another page.
const unshownTTL = 10 * time.Minute

var defaultTitles = map[Severity]string{
	Success: "Success!",
	Error:   "Error!",
	Warning: "Warning!",
	Info:    "Info",
}

var icons = map[Severity]string{
	Success: "✅",
	Error:   "❌",
	Warning: "⚠️",
	Info:    "ℹ️",
}

// Toast is a transient notice shown to one browser profile.
type Toast struct {
	ID       string
	Severity Severity
	Title    string
	Message  string
	Icon     string

	queuedAt time.Time
	// zero until the toast is first shown
	expiresAt time.Time
}

func (t *Toast) expired(now time.Time) bool {
	if t.expiresAt.IsZero() {
		return !now.Before(t.queuedAt.Add(unshownTTL))
	}
	return !now.Before(t.expiresAt)
}

// Toasts queues toasts per profile. A toast disappears ttl after it was
// first shown, or when dismissed. Queues nobody looks at are swept on Notify.
type Toasts struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	queues map[string][]*Toast
}

func NewToasts(ttl time.Duration) *Toasts {
	return &Toasts{
		ttl:    ttl,
		now:    time.Now,
		queues: make(map[string][]*Toast),
	}
}

// Notify queues a toast. An empty title gets the severity's default and an
// unknown severity is treated as Info.
func (t *Toasts) Notify(profileID, message string, severity Severity, title string) Toast {
	if _, ok := defaultTitles[severity]; !ok {
		severity = Info
	}
	if title == "" {
		title = defaultTitles[severity]
	}
	toast := &Toast{
		ID:       uuid.NewString(),
		Severity: severity,
		Title:    title,
		Message:  message,
		Icon:     icons[severity],
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	toast.queuedAt = now
	t.sweepLocked(now)
	q := append(t.queues[profileID], toast)
	if len(q) > maxToasts {
		q = q[len(q)-maxToasts:]
	}
	t.queues[profileID] = q
	return *toast
}

// Pending returns the profile's live toasts in arrival order and starts the
// expiry clock of those shown for the first time.
func (t *Toasts) Pending(profileID string) []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	q := t.queues[profileID]
	live := q[:0]
	out := make([]Toast, 0, len(q))
	for _, toast := range q {
		if toast.expired(now) {
			continue
		}
		if toast.expiresAt.IsZero() {
			toast.expiresAt = now.Add(t.ttl)
		}
		live = append(live, toast)
		out = append(out, *toast)
	}
	if len(live) == 0 {
		delete(t.queues, profileID)
	} else {
		t.queues[profileID] = live
	}
	return out
}

// sweepLocked drops expired toasts of every profile. t.mu must be held.
func (t *Toasts) sweepLocked(now time.Time) {
	for profileID, q := range t.queues {
		live := q[:0]
		for _, toast := range q {
			if !toast.expired(now) {
				live = append(live, toast)
			}
		}
		if len(live) == 0 {
			delete(t.queues, profileID)
			continue
		}
		t.queues[profileID] = live
	}
}

// Dismiss removes one toast. It reports whether the toast was still queued.
func (t *Toasts) Dismiss(profileID, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	q := t.queues[profileID]
	for i, toast := range q {
		if toast.ID == id {
			t.queues[profileID] = append(q[:i], q[i+1:]...)
			if len(t.queues[profileID]) == 0 {
				delete(t.queues, profileID)
			}
			return true
		}
	}
	return false
}
