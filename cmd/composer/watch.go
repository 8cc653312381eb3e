package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fsnotify/fsnotify"
)

func isScript(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// watch applies the scripts already in dir in name order, then every
// script created or rewritten there until ctx is done. A failing script
// is logged and skipped; only sink failures stop the loop.
func (c *composer) watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var existing []string
	for _, e := range entries {
		if !e.IsDir() && isScript(e.Name()) {
			existing = append(existing, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(existing)
	for _, path := range existing {
		if err := c.apply(ctx, path); err != nil {
			return err
		}
	}

	slog.Info("watching", "dir", dir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// TODO: debounce Write events so a script saved in several
			// writes is applied once.
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !isScript(ev.Name) {
				continue
			}
			if err := c.apply(ctx, ev.Name); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "err", err)
		}
	}
}

// apply runs one script file. Script errors are logged; the error
// returned is a sink or output failure.
func (c *composer) apply(ctx context.Context, path string) error {
	err := c.runFile(ctx, path)
	if errors.Is(err, errScript) {
		slog.Warn("script rejected", "file", path, "err", err)
		return nil
	}
	return err
}
