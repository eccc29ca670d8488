package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"

	"github.com/llehouerou/sdjuke/internal/errmsg"
	"github.com/llehouerou/sdjuke/internal/player"
)

// DefaultWatchDelay is the quiet period after the last change before the
// catalog is rebuilt.
const DefaultWatchDelay = 500 * time.Millisecond

const changeOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watch rebuilds the catalog on l whenever a file with one of exts changes
// in the media directory, once changes have been quiet for delay. An empty
// exts matches every file. It returns when ctx is done.
func Watch(ctx context.Context, dir string, exts []string, delay time.Duration, l Runner) error {
	if delay <= 0 {
		delay = DefaultWatchDelay
	}
	log := slog.Default().With("component", "watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	log.Debug("watching media", "dir", dir, "delay", delay)

	changed := make(chan struct{}, 1)
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&changeOps != 0 && mediaFile(event.Name, exts) {
				log.Debug("media event", "name", event.Name, "op", event.Op.String())
				trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn(errmsg.Format(errmsg.OpWatchMedia, err))
		case <-changed:
			log.Info("media changed, rescanning", "dir", dir)
			if l.Do(rescan) != nil {
				return nil // loop stopped
			}
		}
	}
}

// mediaFile reports whether name carries one of exts, compared the way the
// catalog compares 8.3 extensions.
func mediaFile(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if len(ext) > 3 {
		ext = ext[:3]
	}
	return lo.ContainsBy(exts, func(e string) bool {
		return strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(e, ".")), ext)
	})
}

func rescan(p player.Interface) {
	if err := p.Rescan(); err != nil {
		slog.Default().With("component", "watch").
			Warn(errmsg.Format(errmsg.OpScanCatalog, err))
	}
}
