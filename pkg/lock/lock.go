// Package lock serializes sync runs against one installation with an
// exclusive lock file next to the manifest.
package lock

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/arthur-debert/cogsync/pkg/clock"
	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/logging"
)

// DefaultStaleAfter is how old a lock may get before it is broken.
const DefaultStaleAfter = 2 * time.Hour

const maxRetries = 3

// Info is the metadata stored in a lock file.
type Info struct {
	PID       int       `json:"pid"`
	CreatedAt time.Time `json:"created_at"`
	Command   string    `json:"cmd,omitempty"`
	RunID     string    `json:"run_id,omitempty"`
}

// RunLock guards one installation.
type RunLock struct {
	Path       string
	StaleAfter time.Duration
	Clock      clock.Clock
	IsPIDAlive func(pid int) bool
}

// New returns a RunLock for the lock file at path with default staleness.
func New(path string) RunLock {
	return RunLock{
		Path:       path,
		StaleAfter: DefaultStaleAfter,
		Clock:      clock.Real(),
		IsPIDAlive: isPIDAlive,
	}
}

// Acquire takes the lock and returns a release function. A live lock held
// by someone else is a LOCKED error carrying the holder's pid.
func (l RunLock) Acquire(cmd, runID string) (release func() error, err error) {
	logger := logging.GetLogger("lock")

	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := os.MkdirAll(filepath.Dir(l.Path), 0755); err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to create lock directory")
		}

		f, err := os.OpenFile(l.Path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			info := Info{
				PID:       os.Getpid(),
				CreatedAt: l.Clock.Now(),
				Command:   cmd,
				RunID:     runID,
			}
			data, _ := json.Marshal(info)
			if _, writeErr := f.Write(data); writeErr != nil {
				_ = f.Close()
				_ = os.Remove(l.Path)
				return nil, errors.Wrapf(writeErr, errors.ErrFileAccess, "failed to write lock file")
			}
			if closeErr := f.Close(); closeErr != nil {
				_ = os.Remove(l.Path)
				return nil, errors.Wrapf(closeErr, errors.ErrFileAccess, "failed to close lock file")
			}

			logger.Debug().Str("lock", l.Path).Str("runID", runID).Msg("Run lock acquired")
			return func() error {
				err := os.Remove(l.Path)
				if err != nil && !os.IsNotExist(err) {
					return err
				}
				return nil
			}, nil
		}

		if !os.IsExist(err) {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to create lock file")
		}

		info, readErr := l.read()
		if readErr != nil {
			// Unreadable lock: fall back to its mtime
			stat, statErr := os.Stat(l.Path)
			if statErr != nil || l.Clock.Now().Sub(stat.ModTime()) <= l.StaleAfter {
				return nil, l.locked(nil)
			}
		} else if !l.isStale(info) {
			return nil, l.locked(info)
		}

		logger.Warn().Str("lock", l.Path).Msg("Breaking stale run lock")
		if removeErr := os.Remove(l.Path); removeErr != nil && !os.IsNotExist(removeErr) {
			return nil, l.locked(info)
		}
	}

	return nil, l.locked(nil)
}

// Holder returns the current lock holder, if any.
func (l RunLock) Holder() (*Info, bool) {
	info, err := l.read()
	if err != nil {
		return nil, false
	}
	return info, true
}

func (l RunLock) read() (*Info, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, err
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (l RunLock) isStale(info *Info) bool {
	if l.IsPIDAlive != nil && !l.IsPIDAlive(info.PID) {
		return true
	}
	return l.Clock.Now().Sub(info.CreatedAt) > l.StaleAfter
}

func (l RunLock) locked(info *Info) error {
	err := errors.New(errors.ErrLocked, "another sync run holds the installation lock").
		WithDetail("path", l.Path)
	if info != nil {
		err = errors.Newf(errors.ErrLocked, "another sync run (pid %d, since %s) holds the installation lock",
			info.PID, info.CreatedAt.Format(time.RFC3339)).
			WithDetail("path", l.Path).
			WithDetail("pid", info.PID)
	}
	return err
}

// isPIDAlive uses the signal 0 probe. EPERM means the process exists.
func isPIDAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return stderrors.Is(err, syscall.EPERM)
}
