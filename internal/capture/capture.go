// Package capture runs an external program and collects one of its output
// streams without ever blocking past a configured deadline.
package capture

import (
	"context"
	"time"
)

// Stream selects which standard stream of the child is captured.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// NoDeadline disables the wait deadline; the read blocks until end-of-stream.
const NoDeadline time.Duration = -1

// pipeBufSize is the read chunk size used while draining the pipe.
const pipeBufSize = 4096

// Request describes a single capture attempt.
type Request struct {
	// Argv is the program followed by its arguments. Argv[0] is looked up in PATH.
	Argv []string
	// Stream is the child stream redirected into the pipe. The other one is suppressed.
	Stream Stream
	// Timeout bounds every wait for activity on the pipe. Negative disables it.
	Timeout time.Duration
	// Env is the child environment. Nil inherits the caller's environment.
	Env []string
}

// StdoutRequest builds a request capturing standard output.
func StdoutRequest(timeout time.Duration, argv ...string) Request {
	return Request{Argv: argv, Stream: Stdout, Timeout: timeout}
}

// Capture executes req.Argv and returns everything the selected stream produced.
// Failures are *Failure values; see ErrSetup, ErrTimeout and ErrPoll.
func Capture(ctx context.Context, req Request) (string, error) {
	if len(req.Argv) == 0 || req.Argv[0] == "" {
		return "", &Failure{Kind: KindSetup, Err: errEmptyArgv}
	}
	if err := ctx.Err(); err != nil {
		return "", &Failure{Kind: KindSetup, Command: req.Argv[0], Err: err}
	}
	return capture(ctx, req)
}

// waitBudget returns the time one wait may take: the request timeout capped
// by the context deadline. A negative result means "wait forever".
func waitBudget(ctx context.Context, timeout time.Duration) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return timeout
	}
	remaining := time.Until(deadline)
	if remaining < 0 {
		remaining = 0
	}
	if timeout < 0 || remaining < timeout {
		return remaining
	}
	return timeout
}
