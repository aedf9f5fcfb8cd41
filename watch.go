package sitekit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce is how long Watch waits after the last relevant event
// before running again.
const WatchDebounce = 500 * time.Millisecond

// Watch runs the processor once, then again whenever a post or a source
// image changes, until ctx is canceled. Runs never overlap.
func (p *Processor) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range []string{p.cfg.PostsDir, p.cfg.SourcesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		p.logger.Info("watching", "dir", dir)
	}

	if err := p.runOnce(ctx); err != nil {
		return err
	}

	timer := time.NewTimer(WatchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			p.logger.Debug("change detected", "file", filepath.Base(event.Name), "op", event.Op.String())
			timer.Reset(WatchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Error("watcher error", "err", err)

		case <-timer.C:
			if err := p.runOnce(ctx); err != nil {
				return err
			}
		}
	}
}

func (p *Processor) runOnce(ctx context.Context) error {
	report, err := p.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	p.logger.Info("run complete",
		"processed", report.Processed,
		"skipped", report.Skipped,
		"errors", report.Errors,
		"total", report.Total,
	)
	return nil
}

// relevant reports whether an event touches a post or a source image.
// Editor temp files and removals are ignored.
func relevant(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	if base == "" || base[0] == '.' {
		return false
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	if ext == ".md" {
		return true
	}
	for _, e := range SourceExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
