package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/searchcore/errors"
)

const (
	stateDirName  = ".searchcore"
	stateFileName = "state.yml"
	lockRetry     = 50 * time.Millisecond
)

// LockTimeout bounds how long Load and Save wait for the state file lock.
var LockTimeout = 2 * time.Second

// DefaultPath returns the state file path relative to the working directory.
func DefaultPath() string {
	return filepath.Join(stateDirName, stateFileName)
}

func acquire(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	l := flock.New(path + ".lock")
	ctx, cancel := context.WithTimeout(context.Background(), LockTimeout)
	defer cancel()
	locked, err := l.TryLockContext(ctx, lockRetry)
	if err != nil || !locked {
		return nil, errors.StateLocked(path)
	}
	return l, nil
}

// Load reads a state file. A missing file yields an empty state.
func Load(path string) (State, error) {
	if path == "" {
		path = DefaultPath()
	}
	l, err := acquire(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = l.Unlock() }()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	st := New()
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to parse state file").
			WithDetail("path", path)
	}
	return st, nil
}

// Save writes the state to path, replacing the previous contents.
func Save(path string, st State) error {
	if path == "" {
		path = DefaultPath()
	}
	l, err := acquire(path)
	if err != nil {
		return err
	}
	defer func() { _ = l.Unlock() }()

	if st == nil {
		st = New()
	}
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return os.Rename(tmp, path)
}

// MarshalJSON renders the state with sorted keys.
func MarshalJSON(st State) ([]byte, error) {
	if st == nil {
		st = New()
	}
	return json.Marshal(map[string]interface{}(st))
}

// UnmarshalJSON parses a JSON object into a state.
func UnmarshalJSON(data []byte) (State, error) {
	st := New()
	if len(data) == 0 {
		return st, nil
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "state must be a JSON object")
	}
	return st, nil
}
