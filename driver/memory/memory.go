package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobeaver/vfskit"
)

// ErrNoSpace is returned when a write would exceed the configured maximum
// total storage size.
var ErrNoSpace = errors.New("no space left on device")

// node is a file or directory in the in-memory tree.
type node struct {
	dir      bool
	data     []byte
	attrs    vfskit.FileAttributes
	ctime    time.Time
	atime    time.Time
	mtime    time.Time
	children map[string]*node
}

func newNode(dir bool, now time.Time) *node {
	n := &node{dir: dir, ctime: now, atime: now, mtime: now}
	if dir {
		n.children = make(map[string]*node)
	}
	return n
}

// Adapter provides an in-memory implementation of the vfskit protocol.
// Useful for testing and staging scenarios.
type Adapter struct {
	vfskit.BackendBase

	mu      sync.RWMutex
	root    *node
	maxSize int64 // Maximum total storage size (0 = unlimited)
	size    int64 // Current total size

	// Watch support
	watchMu  sync.RWMutex
	watchers []*watcher
}

// Config holds configuration for the memory adapter.
type Config struct {
	// MaxSize is the maximum total storage size in bytes (0 = unlimited)
	MaxSize int64
}

// New creates a new in-memory filesystem.
func New(cfg ...Config) vfskit.FileSystem {
	var maxSize int64
	if len(cfg) > 0 {
		maxSize = cfg[0].MaxSize
	}
	a := &Adapter{
		root:    newNode(true, time.Now()),
		maxSize: maxSize,
	}
	return vfskit.NewFileSystem(a)
}

// ============================================================================
// Tree walking. Callers hold a.mu.
// ============================================================================

func segments(p vfskit.UPath) []string {
	rel := p.ToRelative().String()
	if rel == "" {
		return nil
	}
	return strings.Split(rel, "/")
}

// find returns the node at p, or nil.
func (a *Adapter) find(p vfskit.UPath) *node {
	n := a.root
	for _, seg := range segments(p) {
		if n == nil || !n.dir {
			return nil
		}
		n = n.children[seg]
	}
	return n
}

// findParent returns the directory containing p and p's final name.
func (a *Adapter) findParent(p vfskit.UPath) (*node, string) {
	parent := a.find(p.Parent())
	if parent == nil || !parent.dir {
		return nil, ""
	}
	return parent, p.Name()
}

// ============================================================================
// Read protocol
// ============================================================================

func (a *Adapter) DirectoryExists(ctx context.Context, path vfskit.UPath) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n := a.find(path)
	return n != nil && n.dir, nil
}

func (a *Adapter) FileExists(ctx context.Context, path vfskit.UPath) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n := a.find(path)
	return n != nil && !n.dir, nil
}

func (a *Adapter) FileLength(ctx context.Context, path vfskit.UPath) (int64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n := a.find(path)
	if n == nil {
		return 0, &vfskit.PathError{Op: "length", Path: path, Err: vfskit.ErrNotExist}
	}
	if n.dir {
		return 0, &vfskit.PathError{Op: "length", Path: path, Err: vfskit.ErrIsDir}
	}
	return int64(len(n.data)), nil
}

func (a *Adapter) OpenRead(ctx context.Context, path vfskit.UPath) (vfskit.File, error) {
	return a.OpenFile(ctx, path, vfskit.OpenModeOpen, vfskit.AccessRead, vfskit.ShareRead)
}

func (a *Adapter) Attributes(ctx context.Context, path vfskit.UPath) (vfskit.FileAttributes, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n := a.find(path)
	if n == nil {
		return 0, &vfskit.PathError{Op: "attributes", Path: path, Err: vfskit.ErrNotExist}
	}
	attrs := n.attrs
	if n.dir {
		attrs |= vfskit.AttrDirectory
	} else if attrs == 0 {
		attrs = vfskit.AttrNormal
	}
	return attrs, nil
}

func (a *Adapter) CreationTime(ctx context.Context, path vfskit.UPath) (time.Time, error) {
	return a.timeOf(path, func(n *node) time.Time { return n.ctime })
}

func (a *Adapter) LastAccessTime(ctx context.Context, path vfskit.UPath) (time.Time, error) {
	return a.timeOf(path, func(n *node) time.Time { return n.atime })
}

func (a *Adapter) LastWriteTime(ctx context.Context, path vfskit.UPath) (time.Time, error) {
	return a.timeOf(path, func(n *node) time.Time { return n.mtime })
}

func (a *Adapter) timeOf(path vfskit.UPath, get func(*node) time.Time) (time.Time, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n := a.find(path)
	if n == nil {
		return vfskit.DefaultFileTime, nil
	}
	return get(n), nil
}

// EnumeratePaths yields matching paths in name order, directories walked
// depth-first. The tree is snapshotted under the read lock so the sequence
// is stable even while mutators run.
func (a *Adapter) EnumeratePaths(ctx context.Context, path vfskit.UPath, searchPattern string, recursive bool, target vfskit.SearchTarget) iter.Seq2[vfskit.UPath, error] {
	pattern, err := vfskit.ParseFilter(searchPattern)
	if err != nil {
		return func(yield func(vfskit.UPath, error) bool) {
			yield(vfskit.UPath{}, err)
		}
	}

	a.mu.RLock()
	start := a.find(path)
	if start == nil || !start.dir {
		a.mu.RUnlock()
		return func(yield func(vfskit.UPath, error) bool) {
			yield(vfskit.UPath{}, &vfskit.PathError{Op: "enumerate", Path: path, Err: vfskit.ErrNotExist})
		}
	}
	var matches []vfskit.UPath
	a.collect(start, path, pattern, recursive, target, &matches)
	a.mu.RUnlock()

	return func(yield func(vfskit.UPath, error) bool) {
		for _, p := range matches {
			if err := ctx.Err(); err != nil {
				yield(vfskit.UPath{}, err)
				return
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

func (a *Adapter) collect(dir *node, dirPath vfskit.UPath, pattern vfskit.FilterPattern, recursive bool, target vfskit.SearchTarget, out *[]vfskit.UPath) {
	names := make([]string, 0, len(dir.children))
	for name := range dir.children {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		child := dir.children[name]
		childPath := dirPath.JoinString(name)
		include := pattern.Match(name)
		if include {
			if child.dir && target == vfskit.SearchFile {
				include = false
			}
			if !child.dir && target == vfskit.SearchDirectory {
				include = false
			}
		}
		if include {
			*out = append(*out, childPath)
		}
		if recursive && child.dir {
			a.collect(child, childPath, pattern, recursive, target, out)
		}
	}
}

func (a *Adapter) ConvertPathToInternal(path vfskit.UPath) (string, error) {
	return path.String(), nil
}

func (a *Adapter) ConvertPathFromInternal(nativePath string) (vfskit.UPath, error) {
	return vfskit.NewPath(nativePath).ToAbsolute(), nil
}

// ============================================================================
// Write protocol
// ============================================================================

func (a *Adapter) CreateDirectory(ctx context.Context, path vfskit.UPath) error {
	now := time.Now()
	var created []vfskit.UPath

	a.mu.Lock()
	n := a.root
	walked := vfskit.Root
	for _, seg := range segments(path) {
		walked = walked.JoinString(seg)
		child, ok := n.children[seg]
		if !ok {
			child = newNode(true, now)
			n.children[seg] = child
			created = append(created, walked)
		} else if !child.dir {
			a.mu.Unlock()
			return &vfskit.PathError{Op: "createdir", Path: walked, Err: vfskit.ErrNotDir}
		}
		n = child
	}
	a.mu.Unlock()

	for _, p := range created {
		a.raise(vfskit.ChangeCreated, p)
	}
	return nil
}

func (a *Adapter) MoveDirectory(ctx context.Context, src, dst vfskit.UPath) error {
	if dst.IsInDirectory(src, true) {
		return &vfskit.PathError{Op: "movedir", Path: dst, Err: vfskit.ErrNotSupported}
	}

	a.mu.Lock()
	srcParent, srcName := a.findParent(src)
	if srcParent == nil || srcParent.children[srcName] == nil {
		a.mu.Unlock()
		return &vfskit.PathError{Op: "movedir", Path: src, Err: vfskit.ErrNotExist}
	}
	n := srcParent.children[srcName]
	if !n.dir {
		a.mu.Unlock()
		return &vfskit.PathError{Op: "movedir", Path: src, Err: vfskit.ErrNotDir}
	}
	dstParent, dstName := a.findParent(dst)
	if dstParent == nil {
		a.mu.Unlock()
		return &vfskit.PathError{Op: "movedir", Path: dst.Parent(), Err: vfskit.ErrNotExist}
	}
	if dstParent.children[dstName] != nil {
		a.mu.Unlock()
		return &vfskit.PathError{Op: "movedir", Path: dst, Err: vfskit.ErrDestinationExists}
	}
	delete(srcParent.children, srcName)
	dstParent.children[dstName] = n
	n.mtime = time.Now()
	a.mu.Unlock()

	a.raiseRenamed(src, dst)
	return nil
}

func (a *Adapter) DeleteDirectory(ctx context.Context, path vfskit.UPath, recursive bool) error {
	a.mu.Lock()
	if path == vfskit.Root {
		a.mu.Unlock()
		return &vfskit.PathError{Op: "deletedir", Path: path, Err: vfskit.ErrPermission}
	}
	parent, name := a.findParent(path)
	if parent == nil || parent.children[name] == nil {
		a.mu.Unlock()
		return &vfskit.PathError{Op: "deletedir", Path: path, Err: vfskit.ErrNotExist}
	}
	n := parent.children[name]
	if !n.dir {
		a.mu.Unlock()
		return &vfskit.PathError{Op: "deletedir", Path: path, Err: vfskit.ErrNotDir}
	}
	if len(n.children) > 0 && !recursive {
		a.mu.Unlock()
		return &vfskit.PathError{Op: "deletedir", Path: path, Err: vfskit.ErrNotEmpty}
	}
	a.size -= treeSize(n)
	delete(parent.children, name)
	a.mu.Unlock()

	a.raise(vfskit.ChangeDeleted, path)
	return nil
}

func treeSize(n *node) int64 {
	if !n.dir {
		return int64(len(n.data))
	}
	var total int64
	for _, c := range n.children {
		total += treeSize(c)
	}
	return total
}

func (a *Adapter) CopyFile(ctx context.Context, src, dst vfskit.UPath, overwrite bool) error {
	now := time.Now()

	a.mu.Lock()
	srcNode := a.find(src)
	if srcNode == nil {
		a.mu.Unlock()
		return &vfskit.PathError{Op: "copyfile", Path: src, Err: vfskit.ErrNotExist}
	}
	if srcNode.dir {
		a.mu.Unlock()
		return &vfskit.PathError{Op: "copyfile", Path: src, Err: vfskit.ErrIsDir}
	}
	dstParent, dstName := a.findParent(dst)
	if dstParent == nil {
		a.mu.Unlock()
		return &vfskit.PathError{Op: "copyfile", Path: dst.Parent(), Err: vfskit.ErrNotExist}
	}
	existing := dstParent.children[dstName]
	if existing != nil && (existing.dir || !overwrite) {
		a.mu.Unlock()
		return &vfskit.PathError{Op: "copyfile", Path: dst, Err: vfskit.ErrDestinationExists}
	}
	if err := a.reserveLocked(int64(len(srcNode.data)) - existingSize(existing)); err != nil {
		a.mu.Unlock()
		return &vfskit.PathError{Op: "copyfile", Path: dst, Err: err}
	}
	n := newNode(false, now)
	n.data = bytes.Clone(srcNode.data)
	n.attrs = srcNode.attrs
	n.mtime = srcNode.mtime
	dstParent.children[dstName] = n
	a.mu.Unlock()

	if existing == nil {
		a.raise(vfskit.ChangeCreated, dst)
	} else {
		a.raise(vfskit.ChangeChanged, dst)
	}
	return nil
}

func existingSize(n *node) int64 {
	if n == nil || n.dir {
		return 0
	}
	return int64(len(n.data))
}

func (a *Adapter) ReplaceFile(ctx context.Context, src, dst, backup vfskit.UPath, ignoreMetadataErrors bool) error {
	a.mu.Lock()
	srcNode := a.find(src)
	if srcNode == nil || srcNode.dir {
		a.mu.Unlock()
		return &vfskit.PathError{Op: "replacefile", Path: src, Err: vfskit.ErrNotExist}
	}
	dstParent, dstName := a.findParent(dst)
	if dstParent == nil || dstParent.children[dstName] == nil || dstParent.children[dstName].dir {
		a.mu.Unlock()
		return &vfskit.PathError{Op: "replacefile", Path: dst, Err: vfskit.ErrNotExist}
	}
	dstNode := dstParent.children[dstName]

	if !backup.IsNull() {
		backupParent, backupName := a.findParent(backup)
		if backupParent == nil {
			a.mu.Unlock()
			return &vfskit.PathError{Op: "replacefile", Path: backup.Parent(), Err: vfskit.ErrNotExist}
		}
		a.size -= existingSize(backupParent.children[backupName])
		backupParent.children[backupName] = dstNode
	} else {
		a.size -= existingSize(dstNode)
	}

	srcParent, srcName := a.findParent(src)
	delete(srcParent.children, srcName)
	// the replacement keeps the destination's attributes on a best-effort
	// basis
	srcNode.attrs = dstNode.attrs
	dstParent.children[dstName] = srcNode
	a.mu.Unlock()

	a.raise(vfskit.ChangeChanged, dst)
	if !backup.IsNull() {
		a.raise(vfskit.ChangeCreated, backup)
	}
	a.raise(vfskit.ChangeDeleted, src)
	return nil
}

func (a *Adapter) MoveFile(ctx context.Context, src, dst vfskit.UPath) error {
	a.mu.Lock()
	srcParent, srcName := a.findParent(src)
	if srcParent == nil || srcParent.children[srcName] == nil {
		a.mu.Unlock()
		return &vfskit.PathError{Op: "movefile", Path: src, Err: vfskit.ErrNotExist}
	}
	n := srcParent.children[srcName]
	if n.dir {
		a.mu.Unlock()
		return &vfskit.PathError{Op: "movefile", Path: src, Err: vfskit.ErrIsDir}
	}
	dstParent, dstName := a.findParent(dst)
	if dstParent == nil {
		a.mu.Unlock()
		return &vfskit.PathError{Op: "movefile", Path: dst.Parent(), Err: vfskit.ErrNotExist}
	}
	if dstParent.children[dstName] != nil {
		a.mu.Unlock()
		return &vfskit.PathError{Op: "movefile", Path: dst, Err: vfskit.ErrDestinationExists}
	}
	delete(srcParent.children, srcName)
	dstParent.children[dstName] = n
	a.mu.Unlock()

	a.raiseRenamed(src, dst)
	return nil
}

func (a *Adapter) DeleteFile(ctx context.Context, path vfskit.UPath) error {
	a.mu.Lock()
	parent, name := a.findParent(path)
	if parent == nil || parent.children[name] == nil {
		a.mu.Unlock()
		return &vfskit.PathError{Op: "deletefile", Path: path, Err: vfskit.ErrNotExist}
	}
	n := parent.children[name]
	if n.dir {
		a.mu.Unlock()
		return &vfskit.PathError{Op: "deletefile", Path: path, Err: vfskit.ErrIsDir}
	}
	a.size -= int64(len(n.data))
	delete(parent.children, name)
	a.mu.Unlock()

	a.raise(vfskit.ChangeDeleted, path)
	return nil
}

func (a *Adapter) OpenFile(ctx context.Context, path vfskit.UPath, mode vfskit.FileOpenMode, access vfskit.FileAccess, share vfskit.FileShare) (vfskit.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	needsWrite := mode != vfskit.OpenModeOpen
	if needsWrite && !access.CanWrite() {
		return nil, &vfskit.PathError{Op: "openfile", Path: path, Err: vfskit.ErrPermission}
	}

	now := time.Now()
	a.mu.Lock()
	parent, name := a.findParent(path)
	if parent == nil {
		a.mu.Unlock()
		return nil, &vfskit.PathError{Op: "openfile", Path: path.Parent(), Err: vfskit.ErrNotExist}
	}
	n := parent.children[name]
	if n != nil && n.dir {
		a.mu.Unlock()
		return nil, &vfskit.PathError{Op: "openfile", Path: path, Err: vfskit.ErrIsDir}
	}

	created := false
	switch mode {
	case vfskit.OpenModeCreateNew:
		if n != nil {
			a.mu.Unlock()
			return nil, &vfskit.PathError{Op: "openfile", Path: path, Err: vfskit.ErrExist}
		}
	case vfskit.OpenModeOpen:
		if n == nil {
			a.mu.Unlock()
			return nil, &vfskit.PathError{Op: "openfile", Path: path, Err: vfskit.ErrNotExist}
		}
	case vfskit.OpenModeTruncate:
		if n == nil {
			a.mu.Unlock()
			return nil, &vfskit.PathError{Op: "openfile", Path: path, Err: vfskit.ErrNotExist}
		}
	}
	if n == nil {
		n = newNode(false, now)
		parent.children[name] = n
		created = true
	}

	truncated := false
	var buf []byte
	switch mode {
	case vfskit.OpenModeCreate, vfskit.OpenModeTruncate:
		// truncation happens at open, not at close
		if len(n.data) > 0 {
			a.size -= int64(len(n.data))
			n.data = nil
			n.mtime = now
			truncated = true
		}
	default:
		buf = bytes.Clone(n.data)
	}
	pos := int64(0)
	if mode == vfskit.OpenModeAppend {
		pos = int64(len(buf))
	}
	n.atime = now
	a.mu.Unlock()

	if created {
		a.raise(vfskit.ChangeCreated, path)
	} else if truncated {
		a.raise(vfskit.ChangeChanged, path)
	}
	return &memFile{
		adapter:  a,
		path:     path,
		node:     n,
		buf:      buf,
		pos:      pos,
		readable: access.CanRead(),
		writable: access.CanWrite(),
	}, nil
}

func (a *Adapter) SetAttributes(ctx context.Context, path vfskit.UPath, attrs vfskit.FileAttributes) error {
	return a.mutateNode("setattributes", path, func(n *node) { n.attrs = attrs &^ vfskit.AttrDirectory })
}

func (a *Adapter) SetCreationTime(ctx context.Context, path vfskit.UPath, t time.Time) error {
	return a.mutateNode("setcreationtime", path, func(n *node) { n.ctime = t })
}

func (a *Adapter) SetLastAccessTime(ctx context.Context, path vfskit.UPath, t time.Time) error {
	return a.mutateNode("setlastaccesstime", path, func(n *node) { n.atime = t })
}

func (a *Adapter) SetLastWriteTime(ctx context.Context, path vfskit.UPath, t time.Time) error {
	return a.mutateNode("setlastwritetime", path, func(n *node) { n.mtime = t })
}

func (a *Adapter) mutateNode(op string, path vfskit.UPath, fn func(*node)) error {
	a.mu.Lock()
	n := a.find(path)
	if n == nil {
		a.mu.Unlock()
		return &vfskit.PathError{Op: op, Path: path, Err: vfskit.ErrNotExist}
	}
	fn(n)
	a.mu.Unlock()

	a.raise(vfskit.ChangeChanged, path)
	return nil
}

// reserveLocked accounts delta bytes against the size cap. Callers hold a.mu.
func (a *Adapter) reserveLocked(delta int64) error {
	if a.maxSize > 0 && a.size+delta > a.maxSize {
		return ErrNoSpace
	}
	a.size += delta
	return nil
}

// Close drops the tree and closes all watchers.
func (a *Adapter) Close() error {
	a.watchMu.Lock()
	watchers := a.watchers
	a.watchers = nil
	a.watchMu.Unlock()
	for _, w := range watchers {
		w.WatcherBase.Close()
	}

	a.mu.Lock()
	a.root = newNode(true, time.Now())
	a.size = 0
	a.mu.Unlock()
	return nil
}

// ============================================================================
// Watching
// ============================================================================

type watcher struct {
	*vfskit.WatcherBase
	adapter *Adapter
}

func (w *watcher) Close() error {
	w.adapter.removeWatcher(w)
	return w.WatcherBase.Close()
}

func (a *Adapter) CanWatch(path vfskit.UPath) bool { return true }

func (a *Adapter) Watch(path vfskit.UPath) (vfskit.Watcher, error) {
	w := &watcher{
		WatcherBase: vfskit.NewWatcherBase(a.Owner(a), path),
		adapter:     a,
	}
	a.watchMu.Lock()
	a.watchers = append(a.watchers, w)
	a.watchMu.Unlock()
	return w, nil
}

func (a *Adapter) removeWatcher(w *watcher) {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()
	for i, other := range a.watchers {
		if other == w {
			a.watchers = append(a.watchers[:i], a.watchers[i+1:]...)
			return
		}
	}
}

// raise fans an event out to every registered watcher. Never called with
// a.mu held: subscriber callbacks may reenter the filesystem.
func (a *Adapter) raise(kind vfskit.ChangeKind, path vfskit.UPath) {
	a.watchMu.RLock()
	watchers := make([]*watcher, len(a.watchers))
	copy(watchers, a.watchers)
	a.watchMu.RUnlock()

	ev := vfskit.FileChangedEvent{FS: a.Owner(a), Kind: kind, FullPath: path}
	for _, w := range watchers {
		switch kind {
		case vfskit.ChangeCreated:
			w.RaiseCreated(ev)
		case vfskit.ChangeDeleted:
			w.RaiseDeleted(ev)
		default:
			w.RaiseChanged(ev)
		}
	}
}

func (a *Adapter) raiseRenamed(old, new vfskit.UPath) {
	a.watchMu.RLock()
	watchers := make([]*watcher, len(a.watchers))
	copy(watchers, a.watchers)
	a.watchMu.RUnlock()

	for _, w := range watchers {
		w.RaiseRenamed(vfskit.FileRenamedEvent{
			FileChangedEvent: vfskit.FileChangedEvent{FS: a.Owner(a), Kind: vfskit.ChangeRenamed, FullPath: new},
			OldFullPath:      old,
		})
	}
}

// ============================================================================
// File stream
// ============================================================================

// memFile buffers reads and writes locally and flushes written content back
// into the tree on Close.
type memFile struct {
	adapter  *Adapter
	path     vfskit.UPath
	node     *node
	buf      []byte
	pos      int64
	readable bool
	writable bool
	dirty    bool
	closed   bool
}

func (f *memFile) Read(p []byte) (int, error) {
	if f.closed {
		return 0, &vfskit.PathError{Op: "read", Path: f.path, Err: vfskit.ErrClosed}
	}
	if !f.readable {
		return 0, &vfskit.PathError{Op: "read", Path: f.path, Err: vfskit.ErrPermission}
	}
	if f.pos >= int64(len(f.buf)) {
		return 0, io.EOF
	}
	n := copy(p, f.buf[f.pos:])
	f.pos += int64(n)
	return n, nil
}

func (f *memFile) Write(p []byte) (int, error) {
	if f.closed {
		return 0, &vfskit.PathError{Op: "write", Path: f.path, Err: vfskit.ErrClosed}
	}
	if !f.writable {
		return 0, &vfskit.PathError{Op: "write", Path: f.path, Err: vfskit.ErrPermission}
	}
	if need := f.pos + int64(len(p)); need > int64(len(f.buf)) {
		grown := make([]byte, need)
		copy(grown, f.buf)
		f.buf = grown
	}
	copy(f.buf[f.pos:], p)
	f.pos += int64(len(p))
	f.dirty = true
	return len(p), nil
}

func (f *memFile) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, &vfskit.PathError{Op: "seek", Path: f.path, Err: vfskit.ErrClosed}
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = f.pos + offset
	case io.SeekEnd:
		abs = int64(len(f.buf)) + offset
	default:
		return 0, &vfskit.PathError{Op: "seek", Path: f.path, Err: vfskit.ErrNotSupported}
	}
	if abs < 0 {
		return 0, &vfskit.PathError{Op: "seek", Path: f.path, Err: vfskit.ErrNotSupported}
	}
	f.pos = abs
	return abs, nil
}

func (f *memFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if !f.dirty {
		return nil
	}

	a := f.adapter
	a.mu.Lock()
	delta := int64(len(f.buf)) - int64(len(f.node.data))
	if err := a.reserveLocked(delta); err != nil {
		a.mu.Unlock()
		return &vfskit.PathError{Op: "close", Path: f.path, Err: err}
	}
	f.node.data = f.buf
	f.node.mtime = time.Now()
	a.mu.Unlock()

	a.raise(vfskit.ChangeChanged, f.path)
	return nil
}

var _ vfskit.Backend = (*Adapter)(nil)
