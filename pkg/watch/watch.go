// Package watch reruns an action when a file changes on disk.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// DefaultDelay is how long a file must stay quiet before the action runs.
const DefaultDelay = 200 * time.Millisecond

// File calls fn once right away and then after every burst of writes to
// path, until ctx is done. The parent directory is watched so editors that
// replace the file on save are followed. Errors of fn are passed to
// onError and do not stop the watch.
func File(ctx context.Context, path string, delay time.Duration, fn func() error, onError func(error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, "watch")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "watch")
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrapf(err, "watch %s", filepath.Dir(abs))
	}

	runs := make(chan struct{}, 1)
	run := func() {
		select {
		case runs <- struct{}{}:
		default:
		}
	}
	debounced := debounce.New(delay)
	run()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-runs:
			if err := fn(); err != nil {
				onError(err)
			}
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			slog.Debug("file changed", "path", abs, "op", event.Op.String())
			debounced(run)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			onError(errors.Wrap(err, "watch"))
		}
	}
}
