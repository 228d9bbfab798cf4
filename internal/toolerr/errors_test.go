package toolerr

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	base := New(KindNotFound, "invoice.list", "no such invoice")
	if KindOf(base) != KindNotFound {
		t.Fatalf("kind = %s", KindOf(base))
	}

	wrapped := fmt.Errorf("list invoices: %w", base)
	if KindOf(wrapped) != KindNotFound {
		t.Fatalf("kind must survive wrapping, got %s", KindOf(wrapped))
	}

	if KindOf(context.DeadlineExceeded) != KindTimeout {
		t.Fatal("bare deadline errors must classify as timeouts")
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Fatal("unclassified errors must report unknown")
	}
	if KindOf(nil) != KindUnknown {
		t.Fatal("nil must report unknown")
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		kind Kind
		want bool
	}{
		{KindTimeout, true},
		{KindNetwork, true},
		{KindValidation, false},
		{KindNotFound, false},
		{KindParse, false},
		{KindToolNotInstalled, false},
		{KindPermissionDenied, false},
		{KindExecutionFailed, false},
	}
	for _, tc := range cases {
		if got := Retryable(New(tc.kind, "op", "msg")); got != tc.want {
			t.Errorf("Retryable(%s) = %v, want %v", tc.kind, got, tc.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	if !Terminal(New(KindToolNotInstalled, "op", "ung not on PATH")) {
		t.Fatal("missing tool is terminal")
	}
	if !Terminal(New(KindPermissionDenied, "op", "denied")) {
		t.Fatal("permission failures are terminal")
	}
	if Terminal(New(KindTimeout, "op", "slow")) {
		t.Fatal("timeouts are not terminal")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(KindNetwork, "op", nil) != nil {
		t.Fatal("wrapping nil must yield nil")
	}
}

func TestErrorString(t *testing.T) {
	err := New(KindValidation, "invoice.create", "missing required flag")
	want := "invoice.create: validation_error: missing required flag"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := Wrap(KindNetwork, "", errors.New("connection refused"))
	if wrapped.Error() != "network_error: connection refused" {
		t.Fatalf("Error() = %q", wrapped.Error())
	}
	if !errors.Is(wrapped, wrapped.Err) {
		t.Fatal("underlying error must stay reachable")
	}
}

func TestAttemptsOf(t *testing.T) {
	err := New(KindTimeout, "op", "deadline exceeded")
	err.Attempts = 3
	if got := AttemptsOf(fmt.Errorf("enqueue: %w", err)); got != 3 {
		t.Fatalf("attempts = %d, want 3", got)
	}
	if AttemptsOf(errors.New("plain")) != 0 {
		t.Fatal("plain errors carry no attempts")
	}
}
