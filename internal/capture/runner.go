package capture

import "context"

// Runner captures command output. It allows mocking command execution in
// tests of the parsers built on top of Capture.
type Runner interface {
	Capture(ctx context.Context, req Request) (string, error)
}

// RealRunner implements Runner with Capture.
type RealRunner struct{}

func (r *RealRunner) Capture(ctx context.Context, req Request) (string, error) {
	return Capture(ctx, req)
}

// CommandRunner is the global runner instance.
// Tests can replace this with a mock.
var CommandRunner Runner = &RealRunner{}
