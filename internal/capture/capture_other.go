//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package capture

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// capture falls back to os/exec where poll(2) is unavailable. The timeout
// bounds the whole run instead of each wait.
func capture(ctx context.Context, req Request) (string, error) {
	command := req.Argv[0]
	if budget := waitBudget(ctx, req.Timeout); budget >= 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, command, req.Argv[1:]...)
	cmd.Env = req.Env
	var out bytes.Buffer
	if req.Stream == Stderr {
		cmd.Stderr = &out
	} else {
		cmd.Stdout = &out
	}

	if err := cmd.Start(); err != nil {
		return "", &Failure{Kind: KindSetup, Command: command, Err: err}
	}
	err := cmd.Wait()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", &Failure{Kind: KindTimeout, Command: command, Err: ctx.Err()}
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return "", &Failure{Kind: KindPoll, Command: command, Err: err}
	}
	return out.String(), nil
}
