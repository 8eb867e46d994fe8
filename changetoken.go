package vfskit

import (
	"sync"
	"sync/atomic"
)

// ChangeToken represents a single-use change notification token.
//
// Consumers can either:
// 1. Poll HasChanged() periodically
// 2. Register a callback via RegisterChangeCallback()
type ChangeToken interface {
	// HasChanged returns true if a change has occurred.
	// Once true, it remains true (tokens are single-use).
	HasChanged() bool

	// ActiveChangeCallbacks indicates if the token proactively raises
	// callbacks. If false, consumers should poll HasChanged instead.
	ActiveChangeCallbacks() bool

	// RegisterChangeCallback registers a callback to be invoked when change
	// occurs. Returns a function to unregister the callback.
	RegisterChangeCallback(callback func()) (unregister func())
}

// CallbackChangeToken is a ChangeToken that supports active callbacks.
type CallbackChangeToken struct {
	mu        sync.RWMutex
	changed   atomic.Bool
	callbacks []func()
}

// NewCallbackChangeToken creates a new ChangeToken that supports active
// callbacks.
func NewCallbackChangeToken() *CallbackChangeToken {
	return &CallbackChangeToken{}
}

func (t *CallbackChangeToken) HasChanged() bool {
	return t.changed.Load()
}

func (t *CallbackChangeToken) ActiveChangeCallbacks() bool {
	return true
}

func (t *CallbackChangeToken) RegisterChangeCallback(callback func()) (unregister func()) {
	t.mu.Lock()
	t.callbacks = append(t.callbacks, callback)
	index := len(t.callbacks) - 1
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if index < len(t.callbacks) {
			// Set to nil instead of removing to avoid index shifting
			t.callbacks[index] = nil
		}
	}
}

// SignalChange marks the token as changed and invokes all callbacks.
func (t *CallbackChangeToken) SignalChange() {
	if t.changed.Swap(true) {
		return // Already changed
	}

	t.mu.RLock()
	callbacks := make([]func(), len(t.callbacks))
	copy(callbacks, t.callbacks)
	t.mu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb()
		}
	}
}

// compositeChangeToken reports a change as soon as any member token does.
// WatchTokenAll hands these out when watching spans several backends; each
// registered callback is forwarded to every member, so a caller may hear
// from more than one member for what is logically a single composite change.
type compositeChangeToken struct {
	tokens []ChangeToken
}

// NewCompositeChangeToken combines tokens into one that trips when any of
// them trips.
func NewCompositeChangeToken(tokens ...ChangeToken) ChangeToken {
	return &compositeChangeToken{tokens: tokens}
}

func (c *compositeChangeToken) HasChanged() bool {
	for _, t := range c.tokens {
		if t.HasChanged() {
			return true
		}
	}
	return false
}

// ActiveChangeCallbacks is true only when every member raises callbacks;
// one polling-only member forces the whole composite to be polled.
func (c *compositeChangeToken) ActiveChangeCallbacks() bool {
	if len(c.tokens) == 0 {
		return false
	}
	for _, t := range c.tokens {
		if !t.ActiveChangeCallbacks() {
			return false
		}
	}
	return true
}

func (c *compositeChangeToken) RegisterChangeCallback(callback func()) (unregister func()) {
	unregisters := make([]func(), len(c.tokens))
	for i, t := range c.tokens {
		unregisters[i] = t.RegisterChangeCallback(callback)
	}
	return func() {
		for _, u := range unregisters {
			u()
		}
	}
}

// NeverChangeToken is a ChangeToken that never changes.
// Useful for static content that will never be modified.
type NeverChangeToken struct{}

func (NeverChangeToken) HasChanged() bool            { return false }
func (NeverChangeToken) ActiveChangeCallbacks() bool { return false }
func (NeverChangeToken) RegisterChangeCallback(callback func()) func() {
	return func() {}
}

// WatchToken drives a single-use change token from a watcher on fs. The
// token signals when any entry under path matching filter is created,
// changed, deleted or renamed; the watcher is released once the token fires.
// Backends that cannot watch yield a NeverChangeToken.
func WatchToken(fs FileSystem, path UPath, filter string) (ChangeToken, error) {
	if !fs.CanWatch(path) {
		return NeverChangeToken{}, nil
	}
	w, err := fs.Watch(path)
	if err != nil {
		return nil, err
	}
	w.SetFilter(filter)
	w.SetIncludeSubdirectories(true)

	t := NewCallbackChangeToken()
	fire := func(FileChangedEvent) { t.SignalChange() }
	w.OnChanged(fire)
	w.OnCreated(fire)
	w.OnDeleted(fire)
	w.OnRenamed(func(FileRenamedEvent) { t.SignalChange() })
	// the watcher cannot be closed from its own dispatcher goroutine
	t.RegisterChangeCallback(func() { go w.Close() })

	w.SetEnableRaisingEvents(true)
	return t, nil
}

// WatchTokenAll watches the same path and filter on several backends and
// combines the per-backend tokens, so one token covers, say, every layer of
// a composed topology. Backends that cannot watch contribute a never-firing
// member; the composite trips as soon as any watchable backend changes.
func WatchTokenAll(path UPath, filter string, backends ...FileSystem) (ChangeToken, error) {
	tokens := make([]ChangeToken, 0, len(backends))
	for _, fs := range backends {
		t, err := WatchToken(fs, path, filter)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return NewCompositeChangeToken(tokens...), nil
}

// OnChange runs action every time the watched source changes. Tokens are
// single-use, so after each firing the loop asks produce for a fresh one
// and re-arms; this is the reload-on-change primitive config consumers
// build on:
//
//	stop := vfskit.OnChange(
//	    func() (vfskit.ChangeToken, error) {
//	        return vfskit.WatchToken(fs, vfskit.Root, "*.json")
//	    },
//	    reloadConfig,
//	)
//	defer stop()
//
// The loop ends when produce fails or stop is called. stop is idempotent.
func OnChange(produce func() (ChangeToken, error), action func()) (stop func()) {
	done := make(chan struct{})
	go func() {
		for {
			token, err := produce()
			if err != nil {
				return
			}

			// A composite token invokes the callback once per fired member;
			// the buffered send collapses those into a single arming.
			fired := make(chan struct{}, 1)
			remove := token.RegisterChangeCallback(func() {
				select {
				case fired <- struct{}{}:
				default:
				}
			})

			select {
			case <-done:
				remove()
				return
			case <-fired:
				remove()
				action()
				// loop around for a fresh token
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
