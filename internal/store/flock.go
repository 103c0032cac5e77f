package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// migrationLockWait bounds how long a hook waits for another process to
// finish migrating the journal.
const migrationLockWait = 3 * time.Second

// acquireMigrationLock takes an exclusive advisory lock on <db>.migrate.lock.
// It polls with LOCK_NB so a stuck holder cannot hang a hook past
// migrationLockWait. The returned func releases the lock.
func acquireMigrationLock(dbPath string) (func(), error) {
	lockPath := dbPath + ".migrate.lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o750); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600) //nolint:gosec // G304: lockPath derived from trusted dbPath
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", lockPath, err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 25 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond
	b.MaxElapsedTime = migrationLockWait

	err = backoff.Retry(func() error {
		lockErr := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if lockErr == nil || errors.Is(lockErr, syscall.EWOULDBLOCK) {
			return lockErr
		}
		return backoff.Permanent(lockErr)
	}, b)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}

	return func() {
		_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		_ = f.Close()
	}, nil
}
