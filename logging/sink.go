package logging

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"sync"

	"github.com/hpcloud/tail"
)

// output is the stderr sink every component logger writes through, so
// redirecting it also moves loggers created before the redirect.
type output struct {
	mu sync.RWMutex
	w  io.Writer
}

func (o *output) Write(p []byte) (int, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.w.Write(p)
}

func (o *output) swap(w io.Writer) io.Writer {
	o.mu.Lock()
	defer o.mu.Unlock()
	prev := o.w
	o.w = w
	return prev
}

var stderrSink = &output{w: os.Stderr}

// RedirectOutput sends the stderr sink to w until restore is called.
func RedirectOutput(w io.Writer) (restore func()) {
	prev := stderrSink.swap(w)
	return func() { stderrSink.swap(prev) }
}

// Output returns the shared stderr sink.
func Output() io.Writer {
	return stderrSink
}

// FilePath returns the configured log file, or "" when file logging is off.
func FilePath(cfg Config) string {
	if !cfg.File.Enabled || cfg.File.Path == "" {
		return ""
	}
	return expandPath(cfg.File.Path)
}

func openFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory %s: %w", filepath.Dir(path), err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
}

// FollowFile sends the lines of a log file to fn. A positive last skips all
// but the last lines already written. With follow set it keeps waiting for
// new lines, reopening the file after rotation, until ctx is done.
func FollowFile(ctx context.Context, path string, last int, follow bool, fn func(line string)) error {
	var offset int64
	if last > 0 {
		off, err := lastLinesOffset(path, last)
		if err != nil {
			return err
		}
		offset = off
	}

	t, err := tail.TailFile(path, tail.Config{
		Follow:    follow,
		ReOpen:    follow,
		MustExist: true,
		Location:  &tail.SeekInfo{Offset: offset, Whence: io.SeekStart},
		Logger:    stdlog.New(io.Discard, "", 0),
	})
	if err != nil {
		return fmt.Errorf("tail %s: %w", path, err)
	}
	defer t.Cleanup()

	for {
		select {
		case <-ctx.Done():
			return t.Stop()
		case line, ok := <-t.Lines:
			if !ok {
				return t.Wait()
			}
			if line.Err != nil {
				return line.Err
			}
			fn(line.Text)
		}
	}
}

// lastLinesOffset returns the byte offset where the last n lines of path
// start. A trailing newline does not count as an empty line.
func lastLinesOffset(path string, n int) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	end := len(data)
	if end > 0 && data[end-1] == '\n' {
		end--
	}
	for i := end - 1; i >= 0; i-- {
		if data[i] != '\n' {
			continue
		}
		n--
		if n == 0 {
			return int64(i + 1), nil
		}
	}
	return 0, nil
}
