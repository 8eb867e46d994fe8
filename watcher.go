package vfskit

import (
	"fmt"
	"sync"
)

// Watcher is an event source attached to a backend and a path. Events are
// delivered asynchronously on the watcher's dispatcher goroutine, in the
// order they were raised; delivery to a single subscriber is serialized.
//
// A watcher is created disabled: no events are delivered until
// SetEnableRaisingEvents(true).
type Watcher interface {
	// FileSystem returns the backend the watcher is attached to.
	FileSystem() FileSystem

	// Path returns the watched directory.
	Path() UPath

	// Filter returns the name filter; defaults to "*.*".
	Filter() string
	// SetFilter replaces the name filter. It is compiled lazily; an invalid
	// filter surfaces through the Error stream when events are next raised.
	SetFilter(filter string)

	// NotifyFilter returns the change-kind bitfield the watcher reports.
	NotifyFilter() NotifyFilters
	SetNotifyFilter(filters NotifyFilters)

	// EnableRaisingEvents gates all delivery, the Error stream included.
	EnableRaisingEvents() bool
	SetEnableRaisingEvents(enable bool)

	// IncludeSubdirectories extends matching below the watched directory.
	IncludeSubdirectories() bool
	SetIncludeSubdirectories(include bool)

	// InternalBufferSize is the dispatcher queue capacity. It takes effect
	// before the first event is raised.
	InternalBufferSize() int
	SetInternalBufferSize(size int)

	// OnChanged, OnCreated, OnDeleted, OnRenamed and OnError register
	// subscriber callbacks. Each returns a function that unregisters the
	// callback.
	OnChanged(fn func(FileChangedEvent)) (unregister func())
	OnCreated(fn func(FileChangedEvent)) (unregister func())
	OnDeleted(fn func(FileChangedEvent)) (unregister func())
	OnRenamed(fn func(FileRenamedEvent)) (unregister func())
	OnError(fn func(error)) (unregister func())

	// Close unregisters from any event sources and releases the dispatcher.
	Close() error
}

// WatcherBase carries the watcher configuration, the compiled filter, the
// five subscriber lists and the owned dispatcher. Concrete watchers embed it
// and call the Raise methods, which are the only entry points for emitting.
//
// An event is delivered iff raising is enabled, the filter pattern matches
// the path's final name, and the shouldRaise predicate accepts the path (the
// default checks FullPath.IsInDirectory(Path, IncludeSubdirectories)). The
// Error stream bypasses filter matching and is gated only by the enabled
// flag.
type WatcherBase struct {
	fs   FileSystem
	path UPath

	mu         sync.Mutex
	filter     string
	pattern    *FilterPattern
	notify     NotifyFilters
	enabled    bool
	recursive  bool
	bufferSize int
	dispatcher *EventDispatcher
	closed     bool

	// shouldRaise overrides the containment predicate; nil means the
	// default IsInDirectory check.
	shouldRaise func(full UPath) bool

	changed []func(FileChangedEvent)
	created []func(FileChangedEvent)
	deleted []func(FileChangedEvent)
	renamed []func(FileRenamedEvent)
	errs    []func(error)
}

// NewWatcherBase creates a watcher base attached to fs and path with the
// default configuration: filter "*.*", NotifyDefault, disabled,
// non-recursive, buffer DefaultBufferSize.
func NewWatcherBase(fs FileSystem, path UPath) *WatcherBase {
	return &WatcherBase{
		fs:         fs,
		path:       path,
		filter:     "*.*",
		notify:     NotifyDefault,
		bufferSize: DefaultBufferSize,
	}
}

func (w *WatcherBase) FileSystem() FileSystem { return w.fs }

func (w *WatcherBase) Path() UPath { return w.path }

func (w *WatcherBase) Filter() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.filter
}

func (w *WatcherBase) SetFilter(filter string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if filter == w.filter {
		return
	}
	w.filter = filter
	w.pattern = nil
}

func (w *WatcherBase) NotifyFilter() NotifyFilters {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.notify
}

func (w *WatcherBase) SetNotifyFilter(filters NotifyFilters) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notify = filters
}

func (w *WatcherBase) EnableRaisingEvents() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enabled
}

func (w *WatcherBase) SetEnableRaisingEvents(enable bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.enabled = enable
}

func (w *WatcherBase) IncludeSubdirectories() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.recursive
}

func (w *WatcherBase) SetIncludeSubdirectories(include bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.recursive = include
}

func (w *WatcherBase) InternalBufferSize() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bufferSize
}

func (w *WatcherBase) SetInternalBufferSize(size int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.bufferSize = size
}

// setShouldRaise installs the subclass predicate consulted after the filter
// match. Must be called before events are raised.
func (w *WatcherBase) setShouldRaise(fn func(full UPath) bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.shouldRaise = fn
}

// NewEvent builds a change event originating from the watched backend.
func (w *WatcherBase) NewEvent(kind ChangeKind, full UPath) FileChangedEvent {
	return FileChangedEvent{FS: w.fs, Kind: kind, FullPath: full}
}

// ============================================================================
// Subscription
// ============================================================================

func (w *WatcherBase) OnChanged(fn func(FileChangedEvent)) func() {
	w.mu.Lock()
	w.changed = append(w.changed, fn)
	index := len(w.changed) - 1
	w.mu.Unlock()
	return func() { w.removeChangeSub(&w.changed, index) }
}

func (w *WatcherBase) OnCreated(fn func(FileChangedEvent)) func() {
	w.mu.Lock()
	w.created = append(w.created, fn)
	index := len(w.created) - 1
	w.mu.Unlock()
	return func() { w.removeChangeSub(&w.created, index) }
}

func (w *WatcherBase) OnDeleted(fn func(FileChangedEvent)) func() {
	w.mu.Lock()
	w.deleted = append(w.deleted, fn)
	index := len(w.deleted) - 1
	w.mu.Unlock()
	return func() { w.removeChangeSub(&w.deleted, index) }
}

func (w *WatcherBase) OnRenamed(fn func(FileRenamedEvent)) func() {
	w.mu.Lock()
	w.renamed = append(w.renamed, fn)
	index := len(w.renamed) - 1
	w.mu.Unlock()
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if index < len(w.renamed) {
			// Set to nil instead of removing to avoid index shifting
			w.renamed[index] = nil
		}
	}
}

func (w *WatcherBase) OnError(fn func(error)) func() {
	w.mu.Lock()
	w.errs = append(w.errs, fn)
	index := len(w.errs) - 1
	w.mu.Unlock()
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if index < len(w.errs) {
			w.errs[index] = nil
		}
	}
}

func (w *WatcherBase) removeChangeSub(list *[]func(FileChangedEvent), index int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if index < len(*list) {
		(*list)[index] = nil
	}
}

// ============================================================================
// Raising
// ============================================================================

// RaiseChanged emits ev through the delivery policy.
func (w *WatcherBase) RaiseChanged(ev FileChangedEvent) { w.raiseChange(&w.changed, ev) }

// RaiseCreated emits ev through the delivery policy.
func (w *WatcherBase) RaiseCreated(ev FileChangedEvent) { w.raiseChange(&w.created, ev) }

// RaiseDeleted emits ev through the delivery policy.
func (w *WatcherBase) RaiseDeleted(ev FileChangedEvent) { w.raiseChange(&w.deleted, ev) }

func (w *WatcherBase) raiseChange(list *[]func(FileChangedEvent), ev FileChangedEvent) {
	w.mu.Lock()
	ok, compileErr := w.shouldRaiseLocked(ev.FullPath)
	if compileErr != nil {
		w.mu.Unlock()
		w.RaiseError(compileErr)
		return
	}
	if !ok {
		w.mu.Unlock()
		return
	}
	subs := make([]func(FileChangedEvent), len(*list))
	copy(subs, *list)
	d := w.dispatcherLocked()
	w.mu.Unlock()

	d.Dispatch(func() {
		for _, fn := range subs {
			if fn != nil {
				w.invokeGuarded(func() { fn(ev) }, true)
			}
		}
	})
}

// RaiseRenamed emits ev through the delivery policy. The filter is matched
// against the new name.
func (w *WatcherBase) RaiseRenamed(ev FileRenamedEvent) {
	w.mu.Lock()
	ok, compileErr := w.shouldRaiseLocked(ev.FullPath)
	if compileErr != nil {
		w.mu.Unlock()
		w.RaiseError(compileErr)
		return
	}
	if !ok {
		w.mu.Unlock()
		return
	}
	subs := make([]func(FileRenamedEvent), len(w.renamed))
	copy(subs, w.renamed)
	d := w.dispatcherLocked()
	w.mu.Unlock()

	d.Dispatch(func() {
		for _, fn := range subs {
			if fn != nil {
				w.invokeGuarded(func() { fn(ev) }, true)
			}
		}
	})
}

// RaiseError emits err on the Error stream. It bypasses filter matching and
// is gated only by the enabled flag.
func (w *WatcherBase) RaiseError(err error) {
	w.mu.Lock()
	if !w.enabled || w.closed {
		w.mu.Unlock()
		return
	}
	subs := make([]func(error), len(w.errs))
	copy(subs, w.errs)
	d := w.dispatcherLocked()
	w.mu.Unlock()

	d.Dispatch(func() {
		for _, fn := range subs {
			if fn != nil {
				// no capture here, or a throwing error subscriber would
				// recurse into RaiseError forever
				w.invokeGuarded(func() { fn(err) }, false)
			}
		}
	})
}

// shouldRaiseLocked applies the delivery policy to a path.
func (w *WatcherBase) shouldRaiseLocked(full UPath) (bool, error) {
	if !w.enabled || w.closed {
		return false, nil
	}
	if w.pattern == nil {
		p, err := ParseFilter(w.filter)
		if err != nil {
			return false, err
		}
		w.pattern = &p
	}
	if !w.pattern.Match(full.Name()) {
		return false, nil
	}
	if w.shouldRaise != nil {
		return w.shouldRaise(full), nil
	}
	return full.IsInDirectory(w.path, w.recursive), nil
}

// dispatcherLocked returns the dispatcher, starting it on first use with the
// configured buffer size. Callers hold w.mu.
func (w *WatcherBase) dispatcherLocked() *EventDispatcher {
	if w.dispatcher == nil {
		w.dispatcher = NewEventDispatcher(w.bufferSize)
	}
	return w.dispatcher
}

// invokeGuarded runs a subscriber callback. With capture set, a panicking
// callback is routed back through the Error stream instead of unwinding the
// dispatcher goroutine.
func (w *WatcherBase) invokeGuarded(fn func(), capture bool) {
	if !capture {
		fn()
		return
	}
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("watcher callback panic: %v", r)
			}
			w.RaiseError(err)
		}
	}()
	fn()
}

// Close releases the dispatcher. Events raised after Close are dropped.
func (w *WatcherBase) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	d := w.dispatcher
	w.dispatcher = nil
	w.mu.Unlock()
	if d != nil {
		return d.Close()
	}
	return nil
}

var _ Watcher = (*WatcherBase)(nil)
