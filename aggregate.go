package vfskit

import "sync"

// AggregateWatcher fans the events of any number of child watchers into one
// sink. Children added to the aggregate receive its current configuration,
// and every later configuration change propagates to all children; events
// they raise are republished through the aggregate's own delivery policy.
//
// Events from a single child keep their order; across siblings no ordering
// is guaranteed.
type AggregateWatcher struct {
	*WatcherBase

	listMu   sync.Mutex
	children []*aggregateChild
}

type aggregateChild struct {
	watcher Watcher
	unsubs  []func()
}

// NewAggregateWatcher creates an empty aggregate rooted at path. Events are
// judged against path by the usual policy, so a root ("/") aggregate with
// IncludeSubdirectories set sees everything its children emit.
func NewAggregateWatcher(path UPath) *AggregateWatcher {
	return &AggregateWatcher{WatcherBase: NewWatcherBase(nil, path)}
}

// Add attaches a child watcher. The aggregate's current configuration is
// applied to it and its event streams are forwarded. The aggregate owns the
// child from this point: removing it, or closing the aggregate, closes it.
func (a *AggregateWatcher) Add(child Watcher) {
	a.listMu.Lock()
	defer a.listMu.Unlock()

	child.SetFilter(a.Filter())
	child.SetNotifyFilter(a.NotifyFilter())
	child.SetIncludeSubdirectories(a.IncludeSubdirectories())
	child.SetInternalBufferSize(a.InternalBufferSize())
	child.SetEnableRaisingEvents(a.EnableRaisingEvents())

	entry := &aggregateChild{
		watcher: child,
		unsubs: []func(){
			child.OnChanged(a.RaiseChanged),
			child.OnCreated(a.RaiseCreated),
			child.OnDeleted(a.RaiseDeleted),
			child.OnRenamed(a.RaiseRenamed),
			child.OnError(a.RaiseError),
		},
	}
	a.children = append(a.children, entry)
}

// RemoveFrom detaches and closes every child watching the given backend.
func (a *AggregateWatcher) RemoveFrom(fs FileSystem) {
	a.listMu.Lock()
	defer a.listMu.Unlock()

	kept := a.children[:0]
	for _, c := range a.children {
		if c.watcher.FileSystem() == fs {
			c.dispose()
			continue
		}
		kept = append(kept, c)
	}
	a.children = kept
}

// Clear detaches and closes all children, optionally keeping those attached
// to the given backend.
func (a *AggregateWatcher) Clear(except FileSystem) {
	a.listMu.Lock()
	defer a.listMu.Unlock()

	kept := a.children[:0]
	for _, c := range a.children {
		if except != nil && c.watcher.FileSystem() == except {
			kept = append(kept, c)
			continue
		}
		c.dispose()
	}
	a.children = kept
}

// Watchers returns a snapshot of the current child watchers.
func (a *AggregateWatcher) Watchers() []Watcher {
	a.listMu.Lock()
	defer a.listMu.Unlock()
	out := make([]Watcher, len(a.children))
	for i, c := range a.children {
		out[i] = c.watcher
	}
	return out
}

func (c *aggregateChild) dispose() {
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
	c.watcher.Close()
}

// Configuration setters propagate the new value to every child under the
// list lock before updating the local value. Unchanged values are a no-op so
// repeated writes stay cheap.

func (a *AggregateWatcher) SetFilter(filter string) {
	a.listMu.Lock()
	defer a.listMu.Unlock()
	if filter == a.Filter() {
		return
	}
	for _, c := range a.children {
		c.watcher.SetFilter(filter)
	}
	a.WatcherBase.SetFilter(filter)
}

func (a *AggregateWatcher) SetNotifyFilter(filters NotifyFilters) {
	a.listMu.Lock()
	defer a.listMu.Unlock()
	if filters == a.NotifyFilter() {
		return
	}
	for _, c := range a.children {
		c.watcher.SetNotifyFilter(filters)
	}
	a.WatcherBase.SetNotifyFilter(filters)
}

func (a *AggregateWatcher) SetEnableRaisingEvents(enable bool) {
	a.listMu.Lock()
	defer a.listMu.Unlock()
	if enable == a.EnableRaisingEvents() {
		return
	}
	for _, c := range a.children {
		c.watcher.SetEnableRaisingEvents(enable)
	}
	a.WatcherBase.SetEnableRaisingEvents(enable)
}

func (a *AggregateWatcher) SetIncludeSubdirectories(include bool) {
	a.listMu.Lock()
	defer a.listMu.Unlock()
	if include == a.IncludeSubdirectories() {
		return
	}
	for _, c := range a.children {
		c.watcher.SetIncludeSubdirectories(include)
	}
	a.WatcherBase.SetIncludeSubdirectories(include)
}

func (a *AggregateWatcher) SetInternalBufferSize(size int) {
	a.listMu.Lock()
	defer a.listMu.Unlock()
	if size == a.InternalBufferSize() {
		return
	}
	for _, c := range a.children {
		c.watcher.SetInternalBufferSize(size)
	}
	a.WatcherBase.SetInternalBufferSize(size)
}

// Close detaches and closes all children, then releases the aggregate's
// dispatcher.
func (a *AggregateWatcher) Close() error {
	a.listMu.Lock()
	for _, c := range a.children {
		c.dispose()
	}
	a.children = nil
	a.listMu.Unlock()
	return a.WatcherBase.Close()
}

var _ Watcher = (*AggregateWatcher)(nil)
