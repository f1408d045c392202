package lockfile

import (
	"path/filepath"
	"testing"
)

func TestAcquireSucceedsThenBlocksSecondCaller(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "pec.lock")

	f, err := Acquire(lockPath)
	if err != nil {
		t.Fatalf("first lock should succeed: %v", err)
	}
	defer Release(f)

	if _, err := Acquire(lockPath); err == nil {
		t.Fatal("second lock should fail while the first is held")
	}
}

func TestReleaseAllowsReacquisition(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "pec.lock")

	f, err := Acquire(lockPath)
	if err != nil {
		t.Fatal(err)
	}
	Release(f)

	f2, err := Acquire(lockPath)
	if err != nil {
		t.Fatalf("lock after release should succeed: %v", err)
	}
	Release(f2)
}
