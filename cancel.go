package llmrelay

import (
	"context"
	"sync"
)

// CancellationToken is a one-way abort signal shared across requests.
//
// A token is created by the caller before a request/stream begins and passed
// down through every async boundary. Operations check it before issuing the
// underlying network call (failing fast with a CancelledError if already
// cancelled) and bind it into the transport's context so an in-flight
// request or open stream is aborted promptly when Cancel fires mid-flight.
//
// A single token may be shared across multiple concurrent requests;
// cancelling it aborts all of them. Cancel and the read accessors are safe
// for concurrent use - the only mutation is a one-way true-set.
type CancellationToken struct {
	mu     sync.Mutex
	done   chan struct{}
	reason string
	set    bool
}

// NewCancellationToken returns a fresh, uncancelled token.
func NewCancellationToken() *CancellationToken {
	return &CancellationToken{done: make(chan struct{})}
}

// Cancel sets the flag with an optional reason. Idempotent: repeat calls are
// no-ops and the first reason wins.
func (t *CancellationToken) Cancel(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.set {
		return
	}
	t.set = true
	t.reason = reason
	close(t.done)
}

// IsCancelled reports whether Cancel has been called.
// Safe on a nil token (reports false), so optional tokens can be checked
// without branching at call sites.
func (t *CancellationToken) IsCancelled() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.set
}

// Reason returns the reason passed to the first Cancel call, or "".
func (t *CancellationToken) Reason() string {
	if t == nil {
		return ""
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reason
}

// Done returns a channel closed when the token is cancelled.
// A nil token returns a nil channel, which blocks forever in a select.
func (t *CancellationToken) Done() <-chan struct{} {
	if t == nil {
		return nil
	}
	return t.done
}

// Err returns a CancelledError if the token is cancelled, nil otherwise.
// Used by operations for the fail-fast check before any network call.
// Safe on a nil token (returns nil).
func (t *CancellationToken) Err() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.set {
		return nil
	}
	return &CancelledError{Reason: t.reason}
}

// Bind derives a context that is cancelled when either the parent context or
// the token fires. The returned stop function releases the watcher goroutine
// and must be called when the operation finishes.
//
// A nil token is allowed and binds to just the parent context, so call sites
// can thread an optional token without branching.
func (t *CancellationToken) Bind(parent context.Context) (context.Context, context.CancelFunc) {
	if t == nil {
		return context.WithCancel(parent)
	}
	ctx, cancel := context.WithCancelCause(parent)
	go func() {
		select {
		case <-t.done:
			cancel(&CancelledError{Reason: t.Reason()})
		case <-ctx.Done():
		}
	}()
	return ctx, func() { cancel(nil) }
}
