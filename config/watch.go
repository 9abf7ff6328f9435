package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config at path whenever it changes and sends the result
// on configs; load and watcher errors go to errs.  It watches the directory
// rather than the file so that editors that save by renaming keep working.
// The watcher runs until ctx is done.
func Watch(ctx context.Context, path string, configs chan<- *Config, errs chan<- error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("can't create watcher: %w", err)
	}
	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("can't watch %s: %w", path, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				c, err := Load(path)
				if err != nil {
					send(ctx, errs, err)
					continue
				}
				send(ctx, configs, c)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				send(ctx, errs, err)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func send[T any](ctx context.Context, c chan<- T, v T) {
	select {
	case c <- v:
	case <-ctx.Done():
	}
}
