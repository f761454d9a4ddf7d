package server

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/carn181/phplsp/logging"
	"github.com/carn181/phplsp/util"
)

// Workspace indexes every PHP file under the root so cross-file queries
// resolve before their documents are opened, and keeps the index current
// when files change on disk.
type Workspace struct {
	Root   util.Path
	Config Config

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

func (w *Workspace) Start(ctx context.Context, s *Server) {
	if w.Root == "" {
		return
	}
	w.Config = LoadConfig(w.Root)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Logger.Error("starting watcher", "error", err)
	} else {
		w.mu.Lock()
		w.watcher = watcher
		w.mu.Unlock()
		go w.watch(ctx, s)
	}

	w.scan(ctx, s)
}

func (w *Workspace) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher != nil {
		w.watcher.Close()
		w.watcher = nil
	}
}

// scan walks the root once, loading every PHP file into the project as a
// non-open document.
func (w *Workspace) scan(ctx context.Context, s *Server) {
	count := 0
	err := filepath.WalkDir(w.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, relErr := filepath.Rel(w.Root, path)
		if relErr != nil {
			rel = path
		}
		if d.IsDir() {
			if path != w.Root && w.Config.Excluded(rel) {
				return filepath.SkipDir
			}
			w.addWatch(path)
			return nil
		}
		if !IsPHPFile(path) || w.Config.Excluded(rel) {
			return nil
		}
		if _, err := s.Project.LoadDocument(ctx, util.Path2URI(path)); err != nil {
			logging.Logger.Error("indexing file", "path", path, "error", err)
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		logging.Logger.Error("workspace scan aborted", "error", err)
	}
	logging.Logger.Info("workspace indexed", "root", w.Root, "files", count)
}

func (w *Workspace) addWatch(dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil {
		return
	}
	if err := w.watcher.Add(dir); err != nil {
		logging.Logger.Error("watching dir", "dir", dir, "error", err)
	}
}

func (w *Workspace) watch(ctx context.Context, s *Server) {
	w.mu.Lock()
	watcher := w.watcher
	w.mu.Unlock()
	if watcher == nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, s, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Workspace) handleEvent(ctx context.Context, s *Server, event fsnotify.Event) {
	rel, err := filepath.Rel(w.Root, event.Name)
	if err == nil && w.Config.Excluded(rel) {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Create):
		if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
			// New directories join the watch set.
			w.addWatch(event.Name)
			return
		}
		fallthrough
	case event.Op.Has(fsnotify.Write):
		if IsPHPFile(event.Name) {
			s.Project.RefreshDocument(ctx, util.Path2URI(event.Name))
		}
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		if IsPHPFile(event.Name) {
			s.Project.EvictDocument(util.Path2URI(event.Name))
		}
	}
}

func IsPHPFile(path util.Path) bool {
	return strings.EqualFold(filepath.Ext(path), ".php")
}
