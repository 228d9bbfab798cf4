package runner

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Andriiklymiuk/ung-sub008/internal/toolerr"
)

func TestClassifyStderr(t *testing.T) {
	cases := []struct {
		stderr string
		want   toolerr.Kind
	}{
		{"Error: invoice 42 not found", toolerr.KindNotFound},
		{"no such client", toolerr.KindNotFound},
		{"permission denied: /home/user/.ung/data.db", toolerr.KindPermissionDenied},
		{"invalid value for --status", toolerr.KindValidation},
		{"Usage: ung invoice create [flags]", toolerr.KindValidation},
		{"--client is required", toolerr.KindValidation},
		{"connection refused", toolerr.KindNetwork},
		{"network is unreachable", toolerr.KindNetwork},
		{"resource temporarily unavailable", toolerr.KindNetwork},
		{"panic: something broke", toolerr.KindExecutionFailed},
	}
	for _, tc := range cases {
		if got := classifyStderr(tc.stderr); got != tc.want {
			t.Errorf("classifyStderr(%q) = %s, want %s", tc.stderr, got, tc.want)
		}
	}
}

func TestRunCapturesStdout(t *testing.T) {
	e := NewExec("sh", zap.NewNop())
	out, err := e.Run(context.Background(), []string{"-c", "echo hello"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Stdout != "hello\n" {
		t.Fatalf("stdout = %q", out.Stdout)
	}
}

func TestRunClassifiesExitFailure(t *testing.T) {
	e := NewExec("sh", zap.NewNop())
	_, err := e.Run(context.Background(), []string{"-c", "echo 'client 9 not found' >&2; exit 1"})
	if err == nil {
		t.Fatal("expected failure")
	}
	if toolerr.KindOf(err) != toolerr.KindNotFound {
		t.Fatalf("kind = %s, want not_found", toolerr.KindOf(err))
	}
}

func TestRunMissingBinary(t *testing.T) {
	e := NewExec("definitely-not-a-real-binary-2f8a1c", zap.NewNop())
	_, err := e.Run(context.Background(), []string{"dashboard"})
	if toolerr.KindOf(err) != toolerr.KindToolNotInstalled {
		t.Fatalf("kind = %s, want tool_not_installed", toolerr.KindOf(err))
	}
}

func TestRunTimeoutKillsChild(t *testing.T) {
	e := NewExec("sh", zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := e.Run(ctx, []string{"-c", "sleep 10"})
	if toolerr.KindOf(err) != toolerr.KindTimeout {
		t.Fatalf("kind = %s, want timeout", toolerr.KindOf(err))
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("child was not killed at the deadline, took %s", elapsed)
	}
}
