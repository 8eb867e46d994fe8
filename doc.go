// Package vfskit provides a virtual filesystem abstraction for Go: one
// protocol for hierarchical file and directory storage that can be backed by
// native disk, in-memory trees, or zip archives, and composed into layered
// topologies with sub-tree views, read-only overlays and aggregated mounts —
// all of it watchable as if it were flat.
//
// # Paths
//
// Every path crossing the protocol boundary is a [UPath]: a normalized,
// forward-slash, absolute path value. Native paths enter and leave only
// through ConvertPathToInternal / ConvertPathFromInternal.
//
//	p := vfskit.NewPath(`/a//b/../c`) // "/a/c"
//
// # Backends
//
// A backend implements the [FileSystem] protocol, split into [FileReader]
// and [FileWriter] for compile-time read-only enforcement. Leaf backends
// live in separate driver modules, so you only pull dependencies for the
// backends you actually use:
//
//   - In-memory (github.com/gobeaver/vfskit/driver/memory)
//   - Local disk (github.com/gobeaver/vfskit/driver/local)
//   - ZIP archives (github.com/gobeaver/vfskit/driver/zip)
//
// Drivers provide only the raw operation surface; [NewFileSystem] wraps them
// in a validating front that rejects relative or null paths before they ever
// reach the backend.
//
// # Composition
//
//	fs := memory.New()
//	sub, err := vfskit.NewSubFileSystem(ctx, fs, vfskit.NewPath("/a"), false)
//	ro := vfskit.NewReadOnlyFileSystem(fs)
//
//	mounts := vfskit.NewMountFS()
//	mounts.Mount(vfskit.NewPath("/mem"), fs)
//	mounts.Mount(vfskit.NewPath("/disk"), diskFS)
//
// # Watching
//
// Watchable backends hand out a [Watcher] with five event streams (Changed,
// Created, Deleted, Renamed, Error). Delivery is asynchronous on a dedicated
// dispatcher goroutine per watcher, FIFO, and serialized per subscriber;
// composition backends forward events with paths translated into their own
// namespace, and [AggregateWatcher] fans several sources into one sink.
//
//	w, err := fs.Watch(vfskit.Root)
//	w.SetFilter("*.log")
//	w.OnCreated(func(ev vfskit.FileChangedEvent) { ... })
//	w.SetEnableRaisingEvents(true)
//	defer w.Close()
//
// For the poll-or-callback style of change detection, [WatchToken] adapts a
// watcher into a single-use [ChangeToken], [WatchTokenAll] spans several
// backends with one composite token, and [OnChange] turns the single-use
// tokens into a continuous reload loop.
//
// # Error Handling
//
// Operations fail with a *[PathError] wrapping one of the canonical
// sentinels, so callers branch with errors.Is regardless of backend:
//
//	_, err := fs.OpenRead(ctx, path)
//	if vfskit.IsNotExist(err) {
//	    // missing file
//	}
//
// # Configuration
//
// Drivers register factories with [RegisterDriver]; [CreateDriver] builds
// the backend selected by [Config], and [Open] does both steps from the
// VFSKIT_* environment variables in one call.
package vfskit
