package nats

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"

	"github.com/vlad-alaukhov/Docibot/internal/core/domain"
)

func TestClassifyErrorConnectionIssuesAreRetryable(t *testing.T) {
	for _, err := range []error{nats.ErrNoServers, nats.ErrTimeout, nats.ErrConnectionClosed, nats.ErrDisconnected} {
		out := ClassifyError(err)
		if !out.Retry || !out.CountAsFailure {
			t.Fatalf("%v: expected retryable counted failure, got %+v", err, out)
		}
	}
}

func TestClassifyErrorContextCancellationIsNotCounted(t *testing.T) {
	out := ClassifyError(context.Canceled)
	if out.Retry || out.CountAsFailure {
		t.Fatalf("cancellation must not be retried or counted: %+v", out)
	}
}

func TestWrapTemporaryIfNeeded(t *testing.T) {
	wrapped := wrapTemporaryIfNeeded(nats.ErrTimeout)
	if !domain.IsKind(wrapped, domain.ErrTemporary) {
		t.Fatalf("connection error must become ErrTemporary, got %v", wrapped)
	}

	perm := errors.New("subject not allowed")
	if got := wrapTemporaryIfNeeded(perm); domain.IsKind(got, domain.ErrTemporary) {
		t.Fatalf("permanent error must pass through untyped, got %v", got)
	}

	if wrapTemporaryIfNeeded(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}
