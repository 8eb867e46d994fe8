package vfskit

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	// ErrMountNotFound is returned when no mount point matches the path.
	ErrMountNotFound = errors.New("no mount point found for path")
	// ErrMountExists is returned when trying to mount at an existing path.
	ErrMountExists = errors.New("mount point already exists")
	// ErrNilBackend is returned when trying to mount a nil backend.
	ErrNilBackend = errors.New("backend cannot be nil")
)

// MountFS aggregates multiple backends under virtual paths and routes every
// operation to the mount owning the path, using longest-prefix matching so
// nested mounts work. Mounted backends are borrowed: closing the MountFS
// does not close them.
type MountFS struct {
	mu     sync.RWMutex
	mounts map[UPath]FileSystem
	// sorted mount paths for longest-prefix matching
	sortedPaths []UPath
}

// NewMountFS creates an empty mount table.
func NewMountFS() *MountFS {
	return &MountFS{mounts: make(map[UPath]FileSystem)}
}

// Mount attaches a backend at the given virtual path. The path must be
// absolute and unique; nested mounts are supported.
func (m *MountFS) Mount(mountPath UPath, fs FileSystem) error {
	if fs == nil {
		return ErrNilBackend
	}
	if err := mountPath.AssertAbsolute(); err != nil {
		return &PathError{Op: "mount", Path: mountPath, Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.mounts[mountPath]; exists {
		return fmt.Errorf("%w: %s", ErrMountExists, mountPath)
	}
	m.mounts[mountPath] = fs
	m.updateSortedPaths()
	return nil
}

// Unmount removes the backend mounted at the given path.
func (m *MountFS) Unmount(mountPath UPath) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.mounts[mountPath]; !exists {
		return fmt.Errorf("%w: %s", ErrMountNotFound, mountPath)
	}
	delete(m.mounts, mountPath)
	m.updateSortedPaths()
	return nil
}

// Mounts returns a copy of the current mount table.
func (m *MountFS) Mounts() map[UPath]FileSystem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[UPath]FileSystem, len(m.mounts))
	for k, v := range m.mounts {
		result[k] = v
	}
	return result
}

// resolve finds the owning mount and the path within it (absolute in the
// mount's namespace) for a virtual path.
func (m *MountFS) resolve(op string, p UPath) (FileSystem, UPath, UPath, error) {
	if err := p.AssertAbsolute(); err != nil {
		return nil, UPath{}, UPath{}, &PathError{Op: op, Path: p, Err: err}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, mountPath := range m.sortedPaths {
		if rel, ok := stripPrefixPath(p, mountPath); ok {
			return m.mounts[mountPath], rel, mountPath, nil
		}
	}
	return nil, UPath{}, UPath{}, &PathError{Op: op, Path: p, Err: ErrMountNotFound}
}

// updateSortedPaths refreshes the longest-first path list. Must be called
// with the lock held.
func (m *MountFS) updateSortedPaths() {
	paths := make([]UPath, 0, len(m.mounts))
	for p := range m.mounts {
		paths = append(paths, p)
	}
	// longest first for longest-prefix matching
	sort.Slice(paths, func(i, j int) bool {
		return len(paths[i].String()) > len(paths[j].String())
	})
	m.sortedPaths = paths
}

// mountPointChildren lists the next virtual directory level below prefix
// formed by mount paths. Used when the queried path is above every mount.
func (m *MountFS) mountPointChildren(prefix UPath) []UPath {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[UPath]bool)
	var out []UPath
	for mountPath := range m.mounts {
		if !mountPath.IsInDirectory(prefix, true) || mountPath == prefix {
			continue
		}
		rel, _ := stripPrefixPath(mountPath, prefix)
		name := rel.ToRelative().String()
		if i := strings.IndexByte(name, '/'); i >= 0 {
			name = name[:i]
		}
		child := prefix.Join(newPathUnchecked(name))
		if !seen[child] {
			seen[child] = true
			out = append(out, child)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// ============================================================================
// FileSystem implementation
// ============================================================================

func (m *MountFS) DirectoryExists(ctx context.Context, path UPath) (bool, error) {
	if len(m.mountPointChildren(path)) > 0 || path == Root {
		return true, nil
	}
	fs, rel, _, err := m.resolve("direxists", path)
	if err != nil {
		if errors.Is(err, ErrMountNotFound) {
			return false, nil
		}
		return false, err
	}
	return fs.DirectoryExists(ctx, rel)
}

func (m *MountFS) FileExists(ctx context.Context, path UPath) (bool, error) {
	fs, rel, _, err := m.resolve("fileexists", path)
	if err != nil {
		if errors.Is(err, ErrMountNotFound) {
			return false, nil
		}
		return false, err
	}
	return fs.FileExists(ctx, rel)
}

func (m *MountFS) FileLength(ctx context.Context, path UPath) (int64, error) {
	fs, rel, _, err := m.resolve("length", path)
	if err != nil {
		return 0, err
	}
	return fs.FileLength(ctx, rel)
}

func (m *MountFS) OpenRead(ctx context.Context, path UPath) (File, error) {
	fs, rel, _, err := m.resolve("openread", path)
	if err != nil {
		return nil, err
	}
	return fs.OpenRead(ctx, rel)
}

func (m *MountFS) Attributes(ctx context.Context, path UPath) (FileAttributes, error) {
	fs, rel, _, err := m.resolve("attributes", path)
	if err != nil {
		if errors.Is(err, ErrMountNotFound) && (path == Root || len(m.mountPointChildren(path)) > 0) {
			return AttrDirectory, nil
		}
		return 0, err
	}
	return fs.Attributes(ctx, rel)
}

func (m *MountFS) CreationTime(ctx context.Context, path UPath) (time.Time, error) {
	fs, rel, _, err := m.resolve("creationtime", path)
	if err != nil {
		if errors.Is(err, ErrMountNotFound) {
			return DefaultFileTime, nil
		}
		return DefaultFileTime, err
	}
	return fs.CreationTime(ctx, rel)
}

func (m *MountFS) LastAccessTime(ctx context.Context, path UPath) (time.Time, error) {
	fs, rel, _, err := m.resolve("lastaccesstime", path)
	if err != nil {
		if errors.Is(err, ErrMountNotFound) {
			return DefaultFileTime, nil
		}
		return DefaultFileTime, err
	}
	return fs.LastAccessTime(ctx, rel)
}

func (m *MountFS) LastWriteTime(ctx context.Context, path UPath) (time.Time, error) {
	fs, rel, _, err := m.resolve("lastwritetime", path)
	if err != nil {
		if errors.Is(err, ErrMountNotFound) {
			return DefaultFileTime, nil
		}
		return DefaultFileTime, err
	}
	return fs.LastWriteTime(ctx, rel)
}

// EnumeratePaths lists within the owning mount, translating results back
// into mount space. Above the mounts it yields the virtual mount-point
// directories instead.
func (m *MountFS) EnumeratePaths(ctx context.Context, path UPath, searchPattern string, recursive bool, target SearchTarget) iter.Seq2[UPath, error] {
	fs, rel, mountPath, err := m.resolve("enumerate", path)
	if err != nil {
		if !errors.Is(err, ErrMountNotFound) {
			return errorSeq(err)
		}
		children := m.mountPointChildren(path)
		if len(children) == 0 && path != Root {
			return errorSeq(&PathError{Op: "enumerate", Path: path, Err: ErrNotExist})
		}
		return m.enumerateVirtual(ctx, path, children, searchPattern, recursive, target)
	}

	inner := fs.EnumeratePaths(ctx, rel, searchPattern, recursive, target)
	return func(yield func(UPath, error) bool) {
		for q, err := range inner {
			if err != nil {
				if !yield(UPath{}, err) {
					return
				}
				continue
			}
			if !yield(mountPath.Join(q.ToRelative()), nil) {
				return
			}
		}
	}
}

func (m *MountFS) enumerateVirtual(ctx context.Context, path UPath, children []UPath, searchPattern string, recursive bool, target SearchTarget) iter.Seq2[UPath, error] {
	pattern, perr := ParseFilter(searchPattern)
	if perr != nil {
		return errorSeq(perr)
	}
	return func(yield func(UPath, error) bool) {
		for _, child := range children {
			if target != SearchFile && pattern.Match(child.Name()) {
				if !yield(child, nil) {
					return
				}
			}
			if recursive {
				// descend into the child, which is either a mount root or a
				// further virtual directory
				for q, err := range m.EnumeratePaths(ctx, child, searchPattern, recursive, target) {
					if !yield(q, err) {
						return
					}
				}
			}
		}
	}
}

func (m *MountFS) ConvertPathToInternal(path UPath) (string, error) {
	fs, rel, _, err := m.resolve("convert", path)
	if err != nil {
		return "", err
	}
	return fs.ConvertPathToInternal(rel)
}

// ConvertPathFromInternal is not well-defined across mounts: the native
// namespace does not identify which mount a path belongs to.
func (m *MountFS) ConvertPathFromInternal(nativePath string) (UPath, error) {
	return UPath{}, &PathError{Op: "convert", Err: ErrNotSupported}
}

func (m *MountFS) CreateDirectory(ctx context.Context, path UPath) error {
	fs, rel, _, err := m.resolve("createdir", path)
	if err != nil {
		return err
	}
	return fs.CreateDirectory(ctx, rel)
}

func (m *MountFS) MoveDirectory(ctx context.Context, src, dst UPath) error {
	srcFS, srcRel, _, err := m.resolve("movedir", src)
	if err != nil {
		return err
	}
	dstFS, dstRel, _, err := m.resolve("movedir", dst)
	if err != nil {
		return err
	}
	if srcFS != dstFS {
		return &PathError{Op: "movedir", Path: src, Err: ErrNotSupported}
	}
	return srcFS.MoveDirectory(ctx, srcRel, dstRel)
}

func (m *MountFS) DeleteDirectory(ctx context.Context, path UPath, recursive bool) error {
	fs, rel, _, err := m.resolve("deletedir", path)
	if err != nil {
		return err
	}
	return fs.DeleteDirectory(ctx, rel, recursive)
}

// CopyFile copies within a mount natively and falls back to a streaming
// read+write across mounts.
func (m *MountFS) CopyFile(ctx context.Context, src, dst UPath, overwrite bool) error {
	srcFS, srcRel, _, err := m.resolve("copyfile", src)
	if err != nil {
		return err
	}
	dstFS, dstRel, _, err := m.resolve("copyfile", dst)
	if err != nil {
		return err
	}
	if srcFS == dstFS {
		return srcFS.CopyFile(ctx, srcRel, dstRel, overwrite)
	}
	return copyFileAcross(ctx, srcFS, srcRel, dstFS, dstRel, overwrite)
}

func (m *MountFS) ReplaceFile(ctx context.Context, src, dst, backup UPath, ignoreMetadataErrors bool) error {
	srcFS, srcRel, _, err := m.resolve("replacefile", src)
	if err != nil {
		return err
	}
	dstFS, dstRel, _, err := m.resolve("replacefile", dst)
	if err != nil {
		return err
	}
	backupRel := UPath{}
	var backupFS FileSystem
	if !backup.IsNull() {
		backupFS, backupRel, _, err = m.resolve("replacefile", backup)
		if err != nil {
			return err
		}
	}
	if srcFS != dstFS || (backupFS != nil && backupFS != srcFS) {
		return &PathError{Op: "replacefile", Path: src, Err: ErrNotSupported}
	}
	return srcFS.ReplaceFile(ctx, srcRel, dstRel, backupRel, ignoreMetadataErrors)
}

// MoveFile moves within a mount natively and falls back to copy+delete
// across mounts.
func (m *MountFS) MoveFile(ctx context.Context, src, dst UPath) error {
	srcFS, srcRel, _, err := m.resolve("movefile", src)
	if err != nil {
		return err
	}
	dstFS, dstRel, _, err := m.resolve("movefile", dst)
	if err != nil {
		return err
	}
	if srcFS == dstFS {
		return srcFS.MoveFile(ctx, srcRel, dstRel)
	}
	if exists, err := dstFS.FileExists(ctx, dstRel); err != nil {
		return err
	} else if exists {
		return &PathError{Op: "movefile", Path: dst, Err: ErrDestinationExists}
	}
	if exists, err := dstFS.DirectoryExists(ctx, dstRel); err != nil {
		return err
	} else if exists {
		return &PathError{Op: "movefile", Path: dst, Err: ErrDestinationExists}
	}
	if err := copyFileAcross(ctx, srcFS, srcRel, dstFS, dstRel, false); err != nil {
		return err
	}
	return srcFS.DeleteFile(ctx, srcRel)
}

func (m *MountFS) DeleteFile(ctx context.Context, path UPath) error {
	fs, rel, _, err := m.resolve("deletefile", path)
	if err != nil {
		return err
	}
	return fs.DeleteFile(ctx, rel)
}

func (m *MountFS) OpenFile(ctx context.Context, path UPath, mode FileOpenMode, access FileAccess, share FileShare) (File, error) {
	fs, rel, _, err := m.resolve("openfile", path)
	if err != nil {
		return nil, err
	}
	return fs.OpenFile(ctx, rel, mode, access, share)
}

func (m *MountFS) SetAttributes(ctx context.Context, path UPath, attrs FileAttributes) error {
	fs, rel, _, err := m.resolve("setattributes", path)
	if err != nil {
		return err
	}
	return fs.SetAttributes(ctx, rel, attrs)
}

func (m *MountFS) SetCreationTime(ctx context.Context, path UPath, t time.Time) error {
	fs, rel, _, err := m.resolve("setcreationtime", path)
	if err != nil {
		return err
	}
	return fs.SetCreationTime(ctx, rel, t)
}

func (m *MountFS) SetLastAccessTime(ctx context.Context, path UPath, t time.Time) error {
	fs, rel, _, err := m.resolve("setlastaccesstime", path)
	if err != nil {
		return err
	}
	return fs.SetLastAccessTime(ctx, rel, t)
}

func (m *MountFS) SetLastWriteTime(ctx context.Context, path UPath, t time.Time) error {
	fs, rel, _, err := m.resolve("setlastwritetime", path)
	if err != nil {
		return err
	}
	return fs.SetLastWriteTime(ctx, rel, t)
}

// CanWatch reports, for a path inside a mount, whether that mount supports
// watching it; otherwise whether any mount under path supports watching.
func (m *MountFS) CanWatch(path UPath) bool {
	if fs, rel, _, err := m.resolve("canwatch", path); err == nil {
		return fs.CanWatch(rel)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for mountPath, fs := range m.mounts {
		if mountPath.IsInDirectory(path, true) && fs.CanWatch(Root) {
			return true
		}
	}
	return false
}

// Watch on a path inside a mount watches that mount alone; otherwise it fans
// events from every watchable mount under path into one aggregate watcher.
// Either way, child paths are translated back into mount space.
func (m *MountFS) Watch(path UPath) (Watcher, error) {
	if fs, rel, mountPath, err := m.resolve("watch", path); err == nil {
		inner, err := fs.Watch(rel)
		if err != nil {
			return nil, err
		}
		convert := func(q UPath) (UPath, bool) {
			return mountPath.Join(q.ToRelative()), true
		}
		return newWrapWatcher(m, path, inner, convert, true), nil
	}

	agg := NewAggregateWatcher(path)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for mountPath, fs := range m.mounts {
		if !mountPath.IsInDirectory(path, true) || !fs.CanWatch(Root) {
			continue
		}
		inner, err := fs.Watch(Root)
		if err != nil {
			agg.Close()
			return nil, err
		}
		mp := mountPath
		convert := func(q UPath) (UPath, bool) {
			return mp.Join(q.ToRelative()), true
		}
		agg.Add(newWrapWatcher(m, mp, inner, convert, true))
	}
	if len(agg.Watchers()) == 0 {
		agg.Close()
		return nil, &PathError{Op: "watch", Path: path, Err: ErrNotSupported}
	}
	return agg, nil
}

// Close releases the mount table. Mounted backends are borrowed and stay
// open.
func (m *MountFS) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mounts = make(map[UPath]FileSystem)
	m.sortedPaths = nil
	return nil
}

var _ FileSystem = (*MountFS)(nil)
