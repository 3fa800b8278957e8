package driver

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"jstyle/internal/engine"
)

// DefaultDebounce is the quiet period a watcher waits before rechecking.
const DefaultDebounce = 100 * time.Millisecond

// WatchOptions configure Watch.
type WatchOptions struct {
	Debounce time.Duration
	// OnResult receives every recheck. A removed file arrives with a nil
	// result and a nil error.
	OnResult func(path string, res *engine.Result, err error)
	// Ready, when set, is closed once every directory is watched.
	Ready chan<- struct{}
}

// Watch rechecks Java files under root as they change until ctx is done.
// Editors write a file several times per save, so changes are collected
// until Debounce passes without a new event.
func (w *Workspace) Watch(ctx context.Context, root string, opts WatchOptions) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	m, err := newIgnoreMatcher(root, w.cfg.Exclude)
	if err != nil {
		return err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	addDirs := func(dir string) error {
		return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// каталог мог исчезнуть между событием и обходом
				return nil
			}
			if !d.IsDir() {
				return nil
			}
			if path != root {
				rel, _ := filepath.Rel(root, path)
				if d.Name() == ".git" || m.ignored(filepath.ToSlash(rel), true) {
					return filepath.SkipDir
				}
			}
			return fw.Add(path)
		})
	}
	if err := addDirs(root); err != nil {
		return err
	}
	if opts.Ready != nil {
		close(opts.Ready)
	}
	log := w.log.WithField("root", root)
	log.Info("watching")

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
	)
	timer := time.NewTimer(opts.Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addDirs(ev.Name); err != nil {
						log.WithError(err).Warn("cannot watch new directory")
					}
					continue
				}
			}
			if !strings.HasSuffix(ev.Name, ".java") {
				continue
			}
			if rel, err := filepath.Rel(root, ev.Name); err == nil && m.ignored(filepath.ToSlash(rel), false) {
				continue
			}
			mu.Lock()
			pending[ev.Name] = struct{}{}
			mu.Unlock()
			timer.Reset(opts.Debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watch error")

		case <-timer.C:
			mu.Lock()
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			mu.Unlock()
			slices.Sort(paths)
			for _, p := range paths {
				w.recheck(ctx, p, opts.OnResult)
			}
		}
	}
}

func (w *Workspace) recheck(ctx context.Context, path string, onResult func(string, *engine.Result, error)) {
	report := func(res *engine.Result, err error) {
		if onResult != nil {
			onResult(path, res, err)
		}
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		w.Close(path)
		w.log.WithField("path", path).Debug("file removed")
		report(nil, nil)
		return
	}
	if _, err := w.Load(path); err != nil {
		w.log.WithField("path", path).WithError(err).Warn("reload failed")
		report(nil, err)
		return
	}
	res, err := w.Check(ctx, path)
	if err == nil {
		w.log.WithFields(logrus.Fields{"path": path, "diagnostics": res.Bag.Len()}).Debug("rechecked")
	}
	report(res, err)
}
