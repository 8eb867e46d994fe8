package local

import (
	"context"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/gobeaver/vfskit"
)

// localWatcher bridges fsnotify into the vfskit event model. fsnotify only
// watches single directories, so subdirectories are registered on demand:
// when IncludeSubdirectories is switched on the existing tree is added, and
// directories created afterwards are picked up from their Create events.
type localWatcher struct {
	*vfskit.WatcherBase
	adapter  *Adapter
	fsw      *fsnotify.Watcher
	done     chan struct{}
	doneOnce sync.Once
}

func (a *Adapter) CanWatch(path vfskit.UPath) bool { return true }

func (a *Adapter) Watch(path vfskit.UPath) (vfskit.Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(a.native(path)); err != nil {
		fsw.Close()
		return nil, mapError("watch", path, err)
	}

	w := &localWatcher{
		WatcherBase: vfskit.NewWatcherBase(a.Owner(a), path),
		adapter:     a,
		fsw:         fsw,
		done:        make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *localWatcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.RaiseError(err)
		}
	}
}

func (w *localWatcher) handle(event fsnotify.Event) {
	path, err := w.adapter.ConvertPathFromInternal(event.Name)
	if err != nil {
		return
	}
	ev := w.NewEvent(vfskit.ChangeChanged, path)

	switch {
	case event.Has(fsnotify.Create):
		ev.Kind = vfskit.ChangeCreated
		w.RaiseCreated(ev)
		if w.IncludeSubdirectories() {
			if isDir, _ := w.adapter.DirectoryExists(context.Background(), path); isDir {
				_ = w.fsw.Add(event.Name)
			}
		}
	case event.Has(fsnotify.Remove):
		ev.Kind = vfskit.ChangeDeleted
		w.RaiseDeleted(ev)
	case event.Has(fsnotify.Rename):
		// the native layer reports only the old location; the destination
		// arrives as a separate Create
		w.RaiseRenamed(vfskit.FileRenamedEvent{
			FileChangedEvent: w.NewEvent(vfskit.ChangeRenamed, path),
			OldFullPath:      path,
		})
	case event.Has(fsnotify.Write), event.Has(fsnotify.Chmod):
		w.RaiseChanged(ev)
	}
}

// SetIncludeSubdirectories registers the existing subtree with the native
// watcher when recursion is switched on.
func (w *localWatcher) SetIncludeSubdirectories(include bool) {
	w.WatcherBase.SetIncludeSubdirectories(include)
	if !include {
		return
	}
	for p, err := range w.adapter.EnumeratePaths(context.Background(), w.Path(), "*", true, vfskit.SearchDirectory) {
		if err != nil {
			continue
		}
		if native, err := w.adapter.ConvertPathToInternal(p); err == nil {
			_ = w.fsw.Add(native)
		}
	}
}

func (w *localWatcher) Close() error {
	w.doneOnce.Do(func() { close(w.done) })
	err := w.fsw.Close()
	if cerr := w.WatcherBase.Close(); err == nil {
		err = cerr
	}
	return err
}
