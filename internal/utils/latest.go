package utils

import (
	"context"
	"sync"
)

// Latest enforces last-request-wins per key. Beginning a request cancels the
// previous one for the same key, and a superseded request reports itself as
// stale so its result can be dropped.
type Latest struct {
	mu      sync.Mutex
	next    uint64
	seq     map[string]uint64
	cancels map[string]context.CancelFunc
}

// NewLatest returns an empty tracker.
func NewLatest() *Latest {
	return &Latest{
		seq:     make(map[string]uint64),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Ticket identifies one request started with Begin.
type Ticket struct {
	l      *Latest
	key    string
	seq    uint64
	cancel context.CancelFunc
}

// Begin starts a request for key. The returned context is cancelled when a
// newer request for the same key begins or when the ticket is released.
func (l *Latest) Begin(ctx context.Context, key string) (context.Context, *Ticket) {
	ctx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	if prev, ok := l.cancels[key]; ok {
		prev()
	}
	l.next++
	l.seq[key] = l.next
	t := &Ticket{l: l, key: key, seq: l.next, cancel: cancel}
	l.cancels[key] = cancel
	l.mu.Unlock()
	return ctx, t
}

// Current reports whether no newer request for the key has begun.
func (t *Ticket) Current() bool {
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	return t.l.seq[t.key] == t.seq
}

// Done releases the request's context. The key's bookkeeping is dropped once
// its latest request is done.
func (t *Ticket) Done() {
	t.cancel()
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	if t.l.seq[t.key] == t.seq {
		delete(t.l.seq, t.key)
		delete(t.l.cancels, t.key)
	}
}

// Pending returns how many keys have a request in flight.
func (l *Latest) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.cancels)
}
