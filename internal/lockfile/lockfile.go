// Package lockfile provides a PID-based advisory lock guarding state
// file mutations. The tracking documents are single-writer: only one pf
// process (or one interactive agent session shelling out to pf) may
// mutate them at a time.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// DefaultTimeout bounds how long Acquire waits for a held lock.
const DefaultTimeout = 30 * time.Second

const pollInterval = 50 * time.Millisecond

// Lock is a held lock. Release removes the lock file.
type Lock struct {
	path string
}

// ErrTimeout is returned when the lock stays held past the timeout.
var ErrTimeout = errors.New("timed out waiting for lock")

// Acquire takes the lock at path, waiting up to timeout for a holder to
// release it. Locks left behind by dead processes are broken.
func Acquire(path string, timeout time.Duration) (*Lock, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	deadline := time.Now().Add(timeout)

	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d\n", os.Getpid())
			cerr := f.Close()
			if werr != nil || cerr != nil {
				_ = os.Remove(path)
				return nil, fmt.Errorf("writing lock file: %w", errors.Join(werr, cerr))
			}
			return &Lock{path: path}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("creating lock file: %w", err)
		}

		if holderDead(path) {
			// Stale lock from a crashed run. Removing it races with
			// other waiters, so loop back to the exclusive create.
			_ = os.Remove(path)
			continue
		}

		if time.Now().After(deadline) {
			holder, _ := os.ReadFile(path) // #nosec G304 - our own lock path
			return nil, fmt.Errorf("%w at %s (held by pid %s)", ErrTimeout, path, strings.TrimSpace(string(holder)))
		}
		time.Sleep(pollInterval)
	}
}

// Release removes the lock file. Safe to call once per acquired lock.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing lock file: %w", err)
	}
	return nil
}

// holderDead reports whether the lock file names a PID that no longer
// refers to a live process. Unreadable or malformed lock files are
// treated as stale.
func holderDead(path string) bool {
	data, err := os.ReadFile(path) // #nosec G304 - our own lock path
	if err != nil {
		return false // racing with a concurrent create/remove
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return true
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return true
	}
	// Signal 0 probes for existence without delivering anything.
	// Best effort: platforms that reject the probe keep the lock.
	return proc.Signal(syscall.Signal(0)) != nil
}
