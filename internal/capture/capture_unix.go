//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"golang.org/x/sys/unix"
)

var errPollCondition = errors.New("error condition on pipe")

func capture(ctx context.Context, req Request) (string, error) {
	command := req.Argv[0]
	setupFailure := func(err error) error {
		return &Failure{Kind: KindSetup, Command: command, Err: err}
	}

	path, err := exec.LookPath(command)
	if err != nil {
		return "", setupFailure(err)
	}

	r, w, err := os.Pipe()
	if err != nil {
		return "", setupFailure(fmt.Errorf("pipe: %w", err))
	}
	defer r.Close()

	null, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		w.Close()
		return "", setupFailure(err)
	}

	files := []*os.File{null, null, null}
	files[req.Stream.fd()] = w

	// Both ends are close-on-exec; the child only keeps the descriptors in files.
	proc, err := os.StartProcess(path, req.Argv, &os.ProcAttr{Env: req.Env, Files: files})
	w.Close()
	null.Close()
	if err != nil {
		return "", setupFailure(err)
	}
	go reap(proc)

	fd := int(r.Fd())
	polling := waitBudget(ctx, req.Timeout) >= 0
	if polling {
		if err := unix.SetNonblock(fd, true); err != nil {
			terminate(proc)
			return "", &Failure{Kind: KindPoll, Command: command, Err: err}
		}
	}

	var out bytes.Buffer
	buf := make([]byte, pipeBufSize)
	for {
		if polling {
			ready, err := waitReadable(ctx, fd, req.Timeout)
			if err != nil {
				terminate(proc)
				return "", &Failure{Kind: KindPoll, Command: command, Err: err}
			}
			if !ready {
				terminate(proc)
				return "", &Failure{Kind: KindTimeout, Command: command, Err: ctx.Err()}
			}
		}

		if drain(fd, buf, &out) {
			return out.String(), nil
		}
	}
}

// waitReadable blocks in a single poll(2) until fd has data, hangs up or the
// wait budget runs out. Interrupted polls resume with the time left.
func waitReadable(ctx context.Context, fd int, timeout time.Duration) (bool, error) {
	budget := waitBudget(ctx, timeout)
	start := time.Now()
	for {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, millis(budget-time.Since(start)))
		if err == unix.EINTR {
			if time.Since(start) >= budget {
				return false, nil
			}
			continue
		}
		if err != nil {
			return false, err
		}
		if n == 0 {
			return false, nil
		}
		if fds[0].Revents&(unix.POLLERR|unix.POLLNVAL) != 0 {
			return false, errPollCondition
		}
		// POLLIN or POLLHUP: whatever is left in the pipe is read before EOF.
		return true, nil
	}
}

// drain reads everything currently available on fd. It returns true once the
// writer side is gone.
func drain(fd int, buf []byte, out *bytes.Buffer) bool {
	for {
		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err != unix.EAGAIN
		}
		if n == 0 {
			return true
		}
		out.Write(buf[:n])
	}
}

func millis(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Millisecond - 1) / time.Millisecond)
}

func terminate(p *os.Process) {
	_ = p.Signal(unix.SIGTERM)
}

func reap(p *os.Process) {
	_, _ = p.Wait()
}

func (s Stream) fd() int {
	if s == Stderr {
		return 2
	}
	return 1
}
