package vfskit

// wrapWatcher forwards another backend's events, translating paths. It
// mirrors the wrapped watcher's configuration: reads report the wrapper's
// view, writes pass through to the inner watcher so the source keeps
// producing what the wrapper needs. Incoming events run TryConvertPath on
// every involved path; an event with any untranslatable path is silently
// dropped. Translated events are republished through the base Raise policy,
// so the wrapper's filter still applies.
type wrapWatcher struct {
	*WatcherBase
	inner     Watcher
	ownsInner bool
	convert   func(UPath) (UPath, bool)
	unsubs    []func()
}

// newWrapWatcher wraps inner so its events appear to originate from fs at
// path. convert is the TryConvertPath hook; a nil convert is identity.
func newWrapWatcher(fs FileSystem, path UPath, inner Watcher, convert func(UPath) (UPath, bool), ownsInner bool) *wrapWatcher {
	if convert == nil {
		convert = func(p UPath) (UPath, bool) { return p, true }
	}
	w := &wrapWatcher{
		WatcherBase: NewWatcherBase(fs, path),
		inner:       inner,
		ownsInner:   ownsInner,
		convert:     convert,
	}

	// mirror the inner configuration
	w.WatcherBase.SetFilter(inner.Filter())
	w.WatcherBase.SetNotifyFilter(inner.NotifyFilter())
	w.WatcherBase.SetIncludeSubdirectories(inner.IncludeSubdirectories())
	w.WatcherBase.SetInternalBufferSize(inner.InternalBufferSize())
	w.WatcherBase.SetEnableRaisingEvents(inner.EnableRaisingEvents())

	w.unsubs = []func(){
		inner.OnChanged(func(ev FileChangedEvent) { w.forward(w.RaiseChanged, ev) }),
		inner.OnCreated(func(ev FileChangedEvent) { w.forward(w.RaiseCreated, ev) }),
		inner.OnDeleted(func(ev FileChangedEvent) { w.forward(w.RaiseDeleted, ev) }),
		inner.OnRenamed(func(ev FileRenamedEvent) {
			full, ok := w.convert(ev.FullPath)
			if !ok {
				return
			}
			old, ok := w.convert(ev.OldFullPath)
			if !ok {
				return
			}
			w.RaiseRenamed(FileRenamedEvent{
				FileChangedEvent: FileChangedEvent{FS: w.FileSystem(), Kind: ev.Kind, FullPath: full},
				OldFullPath:      old,
			})
		}),
		inner.OnError(w.RaiseError),
	}
	return w
}

func (w *wrapWatcher) forward(raise func(FileChangedEvent), ev FileChangedEvent) {
	full, ok := w.convert(ev.FullPath)
	if !ok {
		return
	}
	raise(FileChangedEvent{FS: w.FileSystem(), Kind: ev.Kind, FullPath: full})
}

// Configuration writes pass through to the inner watcher as well, so
// enabling or refiltering the wrapper drives the underlying source.

func (w *wrapWatcher) SetFilter(filter string) {
	w.inner.SetFilter(filter)
	w.WatcherBase.SetFilter(filter)
}

func (w *wrapWatcher) SetNotifyFilter(filters NotifyFilters) {
	w.inner.SetNotifyFilter(filters)
	w.WatcherBase.SetNotifyFilter(filters)
}

func (w *wrapWatcher) SetEnableRaisingEvents(enable bool) {
	w.inner.SetEnableRaisingEvents(enable)
	w.WatcherBase.SetEnableRaisingEvents(enable)
}

func (w *wrapWatcher) SetIncludeSubdirectories(include bool) {
	w.inner.SetIncludeSubdirectories(include)
	w.WatcherBase.SetIncludeSubdirectories(include)
}

func (w *wrapWatcher) SetInternalBufferSize(size int) {
	w.inner.SetInternalBufferSize(size)
	w.WatcherBase.SetInternalBufferSize(size)
}

func (w *wrapWatcher) Close() error {
	for _, unsub := range w.unsubs {
		unsub()
	}
	w.unsubs = nil
	var err error
	if w.ownsInner {
		err = w.inner.Close()
	}
	if cerr := w.WatcherBase.Close(); err == nil {
		err = cerr
	}
	return err
}

var _ Watcher = (*wrapWatcher)(nil)
