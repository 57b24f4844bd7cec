// Package watcher reloads a running search when its configuration files
// change on disk.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/searchcore/config"
	"github.com/grovetools/searchcore/internal/app"
	"github.com/grovetools/searchcore/logging"
	"github.com/grovetools/searchcore/schema"
)

// Watcher watches the directory of a configuration file and calls onChange
// once writes to the file or its overrides settle.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *logrus.Entry
	onChange func(file string)

	names        map[string]bool   // base names that trigger a reload
	targetToLink map[string]string // symlink targets to their names in dir
	dir          string

	mu      sync.Mutex
	timer   *time.Timer
	pending string
}

// New watches the configuration file at path. A debounce of zero means
// config.DefaultConfigDebounceMs.
func New(path string, debounce time.Duration, onChange func(file string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger("config-watcher")
	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	names := map[string]bool{filepath.Base(path): true}
	for _, n := range config.OverrideNames {
		names[n] = true
	}

	// fsnotify doesn't follow symlinks, so link targets are watched too.
	watched := map[string]bool{dir: true}
	targetToLink := map[string]string{}
	for name := range names {
		full := filepath.Join(dir, name)
		info, err := os.Lstat(full)
		if err != nil || info.Mode()&os.ModeSymlink == 0 {
			continue
		}
		target, err := filepath.EvalSymlinks(full)
		if err != nil {
			logger.WithError(err).Warnf("Failed to resolve symlink %s", name)
			continue
		}
		targetToLink[target] = name
		targetDir := filepath.Dir(target)
		if watched[targetDir] {
			continue
		}
		if err := fw.Add(targetDir); err != nil {
			logger.WithError(err).Warnf("Failed to watch symlink target dir %s", targetDir)
			continue
		}
		watched[targetDir] = true
		logger.Debugf("Watching symlink target directory: %s", targetDir)
	}

	if debounce <= 0 {
		debounce = time.Duration(config.DefaultConfigDebounceMs) * time.Millisecond
	}

	return &Watcher{
		watcher:      fw,
		debounce:     debounce,
		logger:       logger,
		onChange:     onChange,
		names:        names,
		targetToLink: targetToLink,
		dir:          dir,
	}, nil
}

// Start processes file events. It blocks until ctx is cancelled or the
// watcher is closed.
func (w *Watcher) Start(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			if link, ok := w.targetToLink[event.Name]; ok {
				name = link
			}
			if w.names[name] {
				w.schedule(filepath.Join(w.dir, name))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			w.stop()
			w.watcher.Close()
			return
		}
	}
}

// schedule restarts the debounce timer so a burst of writes triggers one
// reload, after the last write.
func (w *Watcher) schedule(file string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = file
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	file := w.pending
	w.pending = ""
	w.timer = nil
	w.mu.Unlock()

	if file == "" {
		return
	}
	w.logger.Infof("Config changed: %s", filepath.Base(file))
	if w.onChange != nil {
		w.onChange(file)
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.stop()
	return w.watcher.Close()
}

// Reloader returns an onChange callback that reloads the configuration at
// path into a and tells store watchers about it. Invalid files are logged
// and the running configuration is kept.
func Reloader(a *app.App, path string, logger *logrus.Entry) (func(string), error) {
	validator, err := schema.NewValidator()
	if err != nil {
		return nil, err
	}
	return func(file string) {
		if err := validator.ValidateFile(path); err != nil {
			logger.WithError(err).Warn("Ignoring invalid configuration")
			return
		}
		cfg, err := config.LoadFileWithLogger(path, logger.Logger)
		if err != nil {
			logger.WithError(err).Warn("Ignoring invalid configuration")
			return
		}
		if err := a.Reload(cfg); err != nil {
			logger.WithError(err).Error("Failed to apply configuration")
			return
		}
		a.Store().BroadcastConfigReload(filepath.Base(file))
	}, nil
}
