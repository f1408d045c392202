// Package lockfile provides the single-instance file lock used by the
// long-running daemon so two copies never tick the same state store.
package lockfile

import (
	"fmt"
	"os"
	"syscall"
)

// Acquire attempts to acquire an exclusive file lock at path, writing
// the current PID into it for operator debugging. The returned file
// must stay open for the process lifetime; release it with Release.
func Acquire(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("lockfile: open %s: %w", path, err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("lockfile: another pec-daemon instance is running (lock: %s)", path)
	}

	f.Truncate(0)
	f.Seek(0, 0)
	fmt.Fprintf(f, "%d\n", os.Getpid())

	return f, nil
}

// Release unlocks and removes the lock file.
func Release(f *os.File) {
	if f == nil {
		return
	}
	syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	name := f.Name()
	f.Close()
	os.Remove(name)
}
