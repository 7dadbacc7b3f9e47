package capture

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by [Failure] through errors.Is.
var (
	// ErrSetup means the pipe or the child process could not be created.
	ErrSetup = errors.New("capture setup failed")

	// ErrTimeout means the deadline elapsed without activity on the pipe.
	ErrTimeout = errors.New("capture timed out")

	// ErrPoll means waiting on the pipe reported an error condition.
	ErrPoll = errors.New("capture poll failed")

	errEmptyArgv = errors.New("empty argv")
)

// Kind classifies a capture failure.
type Kind int

const (
	KindSetup Kind = iota
	KindTimeout
	KindPoll
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindPoll:
		return "poll"
	default:
		return "setup"
	}
}

// Failure records why a capture did not produce output.
// Use [errors.As] to extract the command name from wrapped errors.
type Failure struct {
	Kind    Kind
	Command string // argv[0]
	Err     error  // underlying error, may be nil for timeouts
}

// Error returns a human-readable description of the failure.
func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("capture %q: %s", f.Command, f.Kind)
	}
	return fmt.Sprintf("capture %q: %s: %v", f.Command, f.Kind, f.Err)
}

// Unwrap returns the underlying error.
func (f *Failure) Unwrap() error {
	return f.Err
}

// Is reports whether target is the sentinel for f's kind.
func (f *Failure) Is(target error) bool {
	switch target {
	case ErrSetup:
		return f.Kind == KindSetup
	case ErrTimeout:
		return f.Kind == KindTimeout
	case ErrPoll:
		return f.Kind == KindPoll
	}
	return false
}
