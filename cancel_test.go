package llmrelay

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCancellationToken_CancelIsIdempotent(t *testing.T) {
	token := NewCancellationToken()

	if token.IsCancelled() {
		t.Fatal("fresh token should not be cancelled")
	}

	token.Cancel("user clicked stop")
	token.Cancel("second reason ignored")

	if !token.IsCancelled() {
		t.Fatal("token should be cancelled")
	}
	if got := token.Reason(); got != "user clicked stop" {
		t.Errorf("Reason() = %q, the first reason should win", got)
	}
}

func TestCancellationToken_Err(t *testing.T) {
	token := NewCancellationToken()

	if err := token.Err(); err != nil {
		t.Fatalf("uncancelled Err() = %v, want nil", err)
	}

	token.Cancel("deadline passed")

	err := token.Err()
	if err == nil {
		t.Fatal("cancelled Err() = nil, want CancelledError")
	}

	var cancelled *CancelledError
	if !errors.As(err, &cancelled) {
		t.Fatalf("Err() = %T, want *CancelledError", err)
	}
	if cancelled.Reason != "deadline passed" {
		t.Errorf("Reason = %q", cancelled.Reason)
	}
	if !errors.Is(err, ErrCancelled) {
		t.Error("CancelledError should wrap ErrCancelled")
	}
	if !IsCancelled(err) {
		t.Error("IsCancelled should classify the error")
	}
	if IsRetryable(err) {
		t.Error("cancellation must never be retryable")
	}
}

func TestCancellationToken_NilSafety(t *testing.T) {
	var token *CancellationToken

	if token.IsCancelled() {
		t.Error("nil token IsCancelled() = true")
	}
	if token.Reason() != "" {
		t.Error("nil token Reason() should be empty")
	}
	if token.Err() != nil {
		t.Error("nil token Err() should be nil")
	}
	if token.Done() != nil {
		t.Error("nil token Done() should be a nil channel")
	}

	ctx, stop := token.Bind(context.Background())
	defer stop()
	select {
	case <-ctx.Done():
		t.Error("nil-token bound context should not be cancelled")
	default:
	}
}

func TestCancellationToken_Done(t *testing.T) {
	token := NewCancellationToken()

	select {
	case <-token.Done():
		t.Fatal("Done() fired before Cancel")
	default:
	}

	token.Cancel("")

	select {
	case <-token.Done():
	case <-time.After(time.Second):
		t.Fatal("Done() did not fire after Cancel")
	}
}

func TestCancellationToken_BindCancelsContext(t *testing.T) {
	token := NewCancellationToken()
	ctx, stop := token.Bind(context.Background())
	defer stop()

	token.Cancel("mid-flight abort")

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("bound context not cancelled after token fired")
	}

	cause := context.Cause(ctx)
	var cancelled *CancelledError
	if !errors.As(cause, &cancelled) {
		t.Fatalf("context cause = %T (%v), want *CancelledError", cause, cause)
	}
	if cancelled.Reason != "mid-flight abort" {
		t.Errorf("cause reason = %q", cancelled.Reason)
	}
}

func TestCancellationToken_BindFollowsParent(t *testing.T) {
	token := NewCancellationToken()
	parent, cancelParent := context.WithCancel(context.Background())

	ctx, stop := token.Bind(parent)
	defer stop()

	cancelParent()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("bound context not cancelled after parent fired")
	}

	// The token itself is untouched by parent cancellation.
	if token.IsCancelled() {
		t.Error("parent cancellation must not cancel the token")
	}
}

func TestCancellationToken_SharedAcrossBindings(t *testing.T) {
	token := NewCancellationToken()

	ctx1, stop1 := token.Bind(context.Background())
	defer stop1()
	ctx2, stop2 := token.Bind(context.Background())
	defer stop2()

	token.Cancel("abort all")

	for i, ctx := range []context.Context{ctx1, ctx2} {
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
			t.Fatalf("bound context %d not cancelled", i+1)
		}
	}
}
