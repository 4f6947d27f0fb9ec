package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// pidFile holds the server's process id on disk, optionally under an
// exclusive flock so a second server on the same path refuses to start
type pidFile struct {
	path   string
	locked bool
	file   *os.File
}

// managePIDFile writes the PID and returns the release func to defer
func managePIDFile(path string, lock bool) (func(), error) {
	p := &pidFile{path: path, locked: lock}
	if err := p.acquire(); err != nil {
		return nil, err
	}
	return p.release, nil
}

func (p *pidFile) acquire() error {
	f, err := os.OpenFile(p.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if errors.Is(err, os.ErrExist) {
		if p.locked {
			if err := describeExisting(p.path); err != nil {
				return err
			}
		}
		f, err = os.OpenFile(p.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	}
	if err != nil {
		return fmt.Errorf("cannot open PID file: %w", err)
	}
	p.file = f

	if p.locked {
		if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
			f.Close()
			if errors.Is(err, syscall.EWOULDBLOCK) {
				return errors.New("cannot acquire lock: another server is running")
			}
			return fmt.Errorf("lock failed: %w", err)
		}
	}

	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		p.abort()
		return fmt.Errorf("cannot write PID: %w", err)
	}
	if err := f.Sync(); err != nil {
		p.abort()
		return fmt.Errorf("cannot sync PID file: %w", err)
	}
	return nil
}

func (p *pidFile) abort() {
	p.file.Close()
	os.Remove(p.path)
}

func (p *pidFile) release() {
	if p.locked {
		syscall.Flock(int(p.file.Fd()), syscall.LOCK_UN)
	}
	p.abort()
}

// describeExisting returns nil when an old PID file can be reused: the
// process it names is gone, or the content is not a PID
func describeExisting(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read existing PID file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return nil
	}

	proc, _ := os.FindProcess(pid)
	err = proc.Signal(syscall.Signal(0))
	switch {
	case err == nil:
		return fmt.Errorf("PID file %s names running process %d", path, pid)
	case errors.Is(err, os.ErrProcessDone), errors.Is(err, syscall.ESRCH):
		return nil
	default:
		return fmt.Errorf("process %d exists but cannot be checked: %v", pid, err)
	}
}
