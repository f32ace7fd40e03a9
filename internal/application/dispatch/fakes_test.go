package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/event-notify/internal/application/preference"
	"github.com/event-notify/internal/domain"
)

var errWrite = errors.New("write rejected")

type fakeGate struct {
	blocked map[string]bool
	names   map[string]string
}

func (g *fakeGate) Allow(_ context.Context, recipientID string) preference.Decision {
	name, ok := g.names[recipientID]
	var u *domain.User
	if ok {
		u = &domain.User{UserID: recipientID, Name: name}
	}
	return preference.Decision{Allowed: !g.blocked[recipientID], Profile: u}
}

type fakeRecords struct {
	mu      sync.Mutex
	fail    map[string]bool
	created []domain.Notification

	active, peak atomic.Int32
	hold         chan struct{}
}

func (r *fakeRecords) Put(_ context.Context, n *domain.Notification) error {
	cur := r.active.Add(1)
	defer r.active.Add(-1)
	for {
		p := r.peak.Load()
		if cur <= p || r.peak.CompareAndSwap(p, cur) {
			break
		}
	}
	if r.hold != nil {
		<-r.hold
	}
	if r.fail[n.UserID] {
		return errWrite
	}
	r.mu.Lock()
	r.created = append(r.created, *n)
	r.mu.Unlock()
	return nil
}

func (r *fakeRecords) forUser(userID string) []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []domain.NotificationLog
}

func (a *fakeAudit) Record(_ context.Context, entry domain.NotificationLog) {
	a.mu.Lock()
	a.entries = append(a.entries, entry)
	a.mu.Unlock()
}

func (a *fakeAudit) forRecipient(recipientID string) []domain.NotificationLog {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []domain.NotificationLog
	for _, e := range a.entries {
		if e.RecipientID == recipientID {
			out = append(out, e)
		}
	}
	return out
}

type pushCall struct {
	recipientID, title, message string
	eventID                     *string
	ctxErr                      error
}

type fakePush struct {
	mu      sync.Mutex
	calls   []pushCall
	release chan struct{}
}

func (p *fakePush) Deliver(ctx context.Context, recipientID, title, message string, eventID *string) {
	if p.release != nil {
		<-p.release
	}
	p.mu.Lock()
	p.calls = append(p.calls, pushCall{recipientID, title, message, eventID, ctx.Err()})
	p.mu.Unlock()
}

func (p *fakePush) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}
