package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrUnknownConfirmation = errors.New("unknown or already resolved confirmation")

type Choice string

const (
	Accept  Choice = "accept"
	Cancel  Choice = "cancel"
	Dismiss Choice = "dismiss"
)

// Prompt is what the confirm dialog shows. ReturnTo is where the browser goes
// once the dialog is answered.
type Prompt struct {
	Title        string
	Message      string
	ConfirmLabel string
	ReturnTo     string
}

type Confirmation struct {
	ID        string
	Prompt    Prompt
	ExpiresAt time.Time
}

type pendingConfirm struct {
	Confirmation
	onConfirm func(context.Context)
	onCancel  func(context.Context)
}

// Confirms gates destructive actions behind a yes/no dialog. Each profile has
// at most one open dialog; exactly one of its callbacks runs, once.
type Confirms struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	pending map[string]*pendingConfirm
}

func NewConfirms(ttl time.Duration) *Confirms {
	return &Confirms{
		ttl:     ttl,
		now:     time.Now,
		pending: make(map[string]*pendingConfirm),
	}
}

// Request opens a dialog for profileID. A dialog the profile still had open
// is cancelled. Either callback may be nil.
func (c *Confirms) Request(ctx context.Context, profileID string, prompt Prompt, onConfirm, onCancel func(context.Context)) Confirmation {
	if prompt.ConfirmLabel == "" {
		prompt.ConfirmLabel = "Confirm"
	}
	p := &pendingConfirm{
		Confirmation: Confirmation{
			ID:        uuid.NewString(),
			Prompt:    prompt,
			ExpiresAt: c.now().Add(c.ttl),
		},
		onConfirm: onConfirm,
		onCancel:  onCancel,
	}

	c.mu.Lock()
	replaced := c.pending[profileID]
	c.pending[profileID] = p
	expired := c.sweepLocked()
	c.mu.Unlock()

	if replaced != nil {
		expired = append(expired, replaced)
	}
	for _, e := range expired {
		run(ctx, e.onCancel)
	}
	return p.Confirmation
}

// Pending returns the profile's open dialog, if any. An expired dialog is
// resolved as cancelled instead.
func (c *Confirms) Pending(ctx context.Context, profileID string) (Confirmation, bool) {
	c.mu.Lock()
	p, ok := c.pending[profileID]
	if ok && !c.now().Before(p.ExpiresAt) {
		delete(c.pending, profileID)
		c.mu.Unlock()
		run(ctx, p.onCancel)
		return Confirmation{}, false
	}
	c.mu.Unlock()
	if !ok {
		return Confirmation{}, false
	}
	return p.Confirmation, true
}

// Resolve answers the dialog id. Accept runs onConfirm; Cancel and Dismiss
// run onCancel. An expired dialog runs onCancel whatever the choice.
func (c *Confirms) Resolve(ctx context.Context, profileID, id string, choice Choice) (Confirmation, error) {
	c.mu.Lock()
	p, ok := c.pending[profileID]
	if !ok || p.ID != id {
		c.mu.Unlock()
		return Confirmation{}, ErrUnknownConfirmation
	}
	delete(c.pending, profileID)
	expired := !c.now().Before(p.ExpiresAt)
	c.mu.Unlock()

	if choice == Accept && !expired {
		run(ctx, p.onConfirm)
	} else {
		run(ctx, p.onCancel)
	}
	return p.Confirmation, nil
}

func (c *Confirms) sweepLocked() []*pendingConfirm {
	now := c.now()
	var expired []*pendingConfirm
	for profileID, p := range c.pending {
		if !now.Before(p.ExpiresAt) {
			expired = append(expired, p)
			delete(c.pending, profileID)
		}
	}
	return expired
}

func run(ctx context.Context, fn func(context.Context)) {
	if fn != nil {
		fn(ctx)
	}
}
