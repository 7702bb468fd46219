package config

import (
	"context"

	"github.com/fsnotify/fsnotify"
)

// Watch re-reads the config file whenever it changes and applies the result
// to the running Config, so the tracing flags can be flipped without a
// restart. It blocks until ctx is cancelled. A config with no file is
// nothing to watch.
func (c *Config) Watch(ctx context.Context, onChange func()) error {
	if c.ConfigFile == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(c.ConfigFile); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			// editors replace rather than rewrite; re-add so we keep
			// following the path
			watcher.Add(c.ConfigFile)

			fc, err := readFile(c.ConfigFile)
			if err != nil {
				continue
			}
			c.apply(fc)
			if onChange != nil {
				onChange()
			}

		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}
