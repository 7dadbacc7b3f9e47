// Package procscan lists the processes of the logged-in user by name.
package procscan

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/prometheus/procfs"
)

// DefaultRoot is the procfs mount point.
const DefaultRoot = procfs.DefaultMountPoint

// Scanner reads the process table below Root and keeps the processes whose
// loginuid equals UID.
type Scanner struct {
	Root string
	UID  int
}

func (s *Scanner) root() string {
	if s.Root == "" {
		return DefaultRoot
	}
	return s.Root
}

// Scan calls fn with the name of every matching process, in PID order,
// until fn returns false.
func (s *Scanner) Scan(fn func(name string) bool) error {
	fs, err := procfs.NewFS(s.root())
	if err != nil {
		return fmt.Errorf("procfs %s: %w", s.root(), err)
	}
	procs, err := fs.AllProcs()
	if err != nil {
		return fmt.Errorf("listing processes: %w", err)
	}
	sort.Sort(procs)

	want := []byte(strconv.Itoa(s.UID))
	for _, p := range procs {
		loginuid, err := os.ReadFile(filepath.Join(s.root(), strconv.Itoa(p.PID), "loginuid"))
		if err != nil || !bytes.Equal(bytes.TrimSpace(loginuid), want) {
			continue
		}
		name, ok := commandName(p)
		if !ok {
			continue
		}
		if !fn(name) {
			return nil
		}
	}
	return nil
}

// Snapshot collects all matching process names at once.
func (s *Scanner) Snapshot() (Snapshot, error) {
	var out Snapshot
	err := s.Scan(func(name string) bool {
		out = append(out, name)
		return true
	})
	return out, err
}

// Snapshot is a process table captured earlier. It satisfies the same
// scanning contract as Scanner.
type Snapshot []string

func (s Snapshot) Scan(fn func(name string) bool) error {
	for _, name := range s {
		if !fn(name) {
			return nil
		}
	}
	return nil
}

// ProcessName returns the basename of the first command line argument of pid.
func ProcessName(root string, pid int) (string, error) {
	if root == "" {
		root = DefaultRoot
	}
	fs, err := procfs.NewFS(root)
	if err != nil {
		return "", err
	}
	p, err := fs.Proc(pid)
	if err != nil {
		return "", err
	}
	name, ok := commandName(p)
	if !ok {
		return "", fmt.Errorf("process %d has no command line", pid)
	}
	return name, nil
}

func commandName(p procfs.Proc) (string, bool) {
	args, err := p.CmdLine()
	if err != nil || len(args) == 0 || args[0] == "" {
		return "", false
	}
	return filepath.Base(args[0]), true
}
