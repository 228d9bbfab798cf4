// Package runner executes the ung command-line tool and classifies its
// failures. The command bus is the only caller; it guarantees at most
// one invocation is in flight at a time.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/Andriiklymiuk/ung-sub008/internal/toolerr"
)

// Output carries the raw streams of one tool invocation.
type Output struct {
	Stdout string
	Stderr string
}

// Runner invokes the external tool once.
type Runner interface {
	Run(ctx context.Context, args []string) (Output, error)
}

// Exec runs the ung binary via os/exec. A context deadline kills the
// child process; the bus treats the expired attempt as retryable.
type Exec struct {
	binary string
	log    *zap.Logger
}

// NewExec builds a runner for the given binary path.
func NewExec(binary string, log *zap.Logger) *Exec {
	return &Exec{binary: binary, log: log.Named("runner")}
}

func (e *Exec) Run(ctx context.Context, args []string) (Output, error) {
	op := "ung " + strings.Join(args, " ")

	cmd := exec.CommandContext(ctx, e.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return out, nil
	}

	if ctx.Err() != nil {
		return out, toolerr.Wrap(toolerr.KindTimeout, op, ctx.Err())
	}
	if isNotInstalled(err) {
		return out, toolerr.Wrap(toolerr.KindToolNotInstalled, op, err)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		kind := classifyStderr(out.Stderr)
		message := strings.TrimSpace(out.Stderr)
		if message == "" {
			message = err.Error()
		}
		return out, toolerr.New(kind, op, message)
	}
	return out, toolerr.Wrap(toolerr.KindExecutionFailed, op, err)
}

func isNotInstalled(err error) bool {
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	return strings.Contains(err.Error(), "executable file not found")
}

// classifyStderr maps the tool's diagnostic text onto the failure
// taxonomy. The tool has no structured error output, so this is a
// content heuristic like the rest of the wire protocol.
func classifyStderr(stderr string) toolerr.Kind {
	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "not found") || strings.Contains(lower, "no such"):
		return toolerr.KindNotFound
	case strings.Contains(lower, "permission denied") || strings.Contains(lower, "access denied"):
		return toolerr.KindPermissionDenied
	case strings.Contains(lower, "invalid") || strings.Contains(lower, "usage:") || strings.Contains(lower, "required"):
		return toolerr.KindValidation
	case strings.Contains(lower, "connection") || strings.Contains(lower, "network") || strings.Contains(lower, "temporarily unavailable"):
		return toolerr.KindNetwork
	default:
		return toolerr.KindExecutionFailed
	}
}
