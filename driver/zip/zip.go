// Package zip provides a read-only vfskit backend over a zip archive.
//
// The archive's central directory is indexed once at open; file content is
// decompressed into memory when a file is opened, which keeps the stream
// seekable. All mutation fails with vfskit.ErrReadOnly and watching is not
// supported.
package zip

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"iter"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobeaver/vfskit"
)

// Adapter is a read-only zip archive backend.
type Adapter struct {
	vfskit.BackendBase

	mu     sync.RWMutex
	path   string
	reader *zip.ReadCloser
	files  map[vfskit.UPath]*zip.File
	dirs   map[vfskit.UPath]time.Time
	closed bool
}

// Open opens the archive at path and indexes its entries.
func Open(path string) (vfskit.FileSystem, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}

	a := &Adapter{
		path:   path,
		reader: r,
		files:  make(map[vfskit.UPath]*zip.File),
		dirs:   make(map[vfskit.UPath]time.Time),
	}
	a.dirs[vfskit.Root] = time.Now()

	for _, f := range r.File {
		p := vfskit.NewPath(f.Name).ToAbsolute()
		if f.FileInfo().IsDir() {
			a.dirs[p] = f.Modified
		} else {
			a.files[p] = f
		}
		// register implicit parent directories
		for dir := p.Parent(); dir != vfskit.Root; dir = dir.Parent() {
			if _, ok := a.dirs[dir]; !ok {
				a.dirs[dir] = f.Modified
			}
		}
	}
	return vfskit.NewFileSystem(a), nil
}

func (a *Adapter) guard(op string, path vfskit.UPath) error {
	if a.closed {
		return &vfskit.PathError{Op: op, Path: path, Err: vfskit.ErrClosed}
	}
	return nil
}

// ============================================================================
// Read protocol
// ============================================================================

func (a *Adapter) DirectoryExists(ctx context.Context, path vfskit.UPath) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.dirs[path]
	return ok && !a.closed, nil
}

func (a *Adapter) FileExists(ctx context.Context, path vfskit.UPath) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.files[path]
	return ok && !a.closed, nil
}

func (a *Adapter) FileLength(ctx context.Context, path vfskit.UPath) (int64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if err := a.guard("length", path); err != nil {
		return 0, err
	}
	f, ok := a.files[path]
	if !ok {
		if _, isDir := a.dirs[path]; isDir {
			return 0, &vfskit.PathError{Op: "length", Path: path, Err: vfskit.ErrIsDir}
		}
		return 0, &vfskit.PathError{Op: "length", Path: path, Err: vfskit.ErrNotExist}
	}
	return int64(f.UncompressedSize64), nil
}

func (a *Adapter) OpenRead(ctx context.Context, path vfskit.UPath) (vfskit.File, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if err := a.guard("openread", path); err != nil {
		return nil, err
	}
	f, ok := a.files[path]
	if !ok {
		if _, isDir := a.dirs[path]; isDir {
			return nil, &vfskit.PathError{Op: "openread", Path: path, Err: vfskit.ErrIsDir}
		}
		return nil, &vfskit.PathError{Op: "openread", Path: path, Err: vfskit.ErrNotExist}
	}

	rc, err := f.Open()
	if err != nil {
		return nil, &vfskit.PathError{Op: "openread", Path: path, Err: err}
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &vfskit.PathError{Op: "openread", Path: path, Err: err}
	}
	return &zipFile{path: path, r: bytes.NewReader(data)}, nil
}

func (a *Adapter) Attributes(ctx context.Context, path vfskit.UPath) (vfskit.FileAttributes, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if err := a.guard("attributes", path); err != nil {
		return 0, err
	}
	if _, ok := a.dirs[path]; ok {
		return vfskit.AttrDirectory | vfskit.AttrReadOnly, nil
	}
	if _, ok := a.files[path]; ok {
		return vfskit.AttrReadOnly, nil
	}
	return 0, &vfskit.PathError{Op: "attributes", Path: path, Err: vfskit.ErrNotExist}
}

// Times: the archive stores only the modified time, so creation and last
// access report it as well rather than failing.

func (a *Adapter) CreationTime(ctx context.Context, path vfskit.UPath) (time.Time, error) {
	return a.LastWriteTime(ctx, path)
}

func (a *Adapter) LastAccessTime(ctx context.Context, path vfskit.UPath) (time.Time, error) {
	return a.LastWriteTime(ctx, path)
}

func (a *Adapter) LastWriteTime(ctx context.Context, path vfskit.UPath) (time.Time, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if f, ok := a.files[path]; ok {
		return f.Modified, nil
	}
	if t, ok := a.dirs[path]; ok {
		return t, nil
	}
	return vfskit.DefaultFileTime, nil
}

func (a *Adapter) EnumeratePaths(ctx context.Context, path vfskit.UPath, searchPattern string, recursive bool, target vfskit.SearchTarget) iter.Seq2[vfskit.UPath, error] {
	pattern, err := vfskit.ParseFilter(searchPattern)
	if err != nil {
		return func(yield func(vfskit.UPath, error) bool) {
			yield(vfskit.UPath{}, err)
		}
	}

	a.mu.RLock()
	if _, ok := a.dirs[path]; !ok {
		a.mu.RUnlock()
		return func(yield func(vfskit.UPath, error) bool) {
			yield(vfskit.UPath{}, &vfskit.PathError{Op: "enumerate", Path: path, Err: vfskit.ErrNotExist})
		}
	}
	var matches []vfskit.UPath
	if target != vfskit.SearchFile {
		for p := range a.dirs {
			if p != path && p.IsInDirectory(path, recursive) && pattern.Match(p.Name()) {
				matches = append(matches, p)
			}
		}
	}
	if target != vfskit.SearchDirectory {
		for p := range a.files {
			if p.IsInDirectory(path, recursive) && pattern.Match(p.Name()) {
				matches = append(matches, p)
			}
		}
	}
	a.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].String() < matches[j].String() })
	return func(yield func(vfskit.UPath, error) bool) {
		for _, p := range matches {
			if !yield(p, nil) {
				return
			}
		}
	}
}

func (a *Adapter) ConvertPathToInternal(path vfskit.UPath) (string, error) {
	return strings.TrimPrefix(path.String(), "/"), nil
}

func (a *Adapter) ConvertPathFromInternal(nativePath string) (vfskit.UPath, error) {
	return vfskit.NewPath(nativePath).ToAbsolute(), nil
}

// ============================================================================
// Write protocol (refused)
// ============================================================================

func readOnly(op string, path vfskit.UPath) error {
	return &vfskit.PathError{Op: op, Path: path, Err: vfskit.ErrReadOnly}
}

func (a *Adapter) CreateDirectory(ctx context.Context, path vfskit.UPath) error {
	return readOnly("createdir", path)
}

func (a *Adapter) MoveDirectory(ctx context.Context, src, dst vfskit.UPath) error {
	return readOnly("movedir", src)
}

func (a *Adapter) DeleteDirectory(ctx context.Context, path vfskit.UPath, recursive bool) error {
	return readOnly("deletedir", path)
}

func (a *Adapter) CopyFile(ctx context.Context, src, dst vfskit.UPath, overwrite bool) error {
	return readOnly("copyfile", dst)
}

func (a *Adapter) ReplaceFile(ctx context.Context, src, dst, backup vfskit.UPath, ignoreMetadataErrors bool) error {
	return readOnly("replacefile", dst)
}

func (a *Adapter) MoveFile(ctx context.Context, src, dst vfskit.UPath) error {
	return readOnly("movefile", src)
}

func (a *Adapter) DeleteFile(ctx context.Context, path vfskit.UPath) error {
	return readOnly("deletefile", path)
}

func (a *Adapter) OpenFile(ctx context.Context, path vfskit.UPath, mode vfskit.FileOpenMode, access vfskit.FileAccess, share vfskit.FileShare) (vfskit.File, error) {
	if mode == vfskit.OpenModeOpen && !access.CanWrite() {
		return a.OpenRead(ctx, path)
	}
	return nil, readOnly("openfile", path)
}

func (a *Adapter) SetAttributes(ctx context.Context, path vfskit.UPath, attrs vfskit.FileAttributes) error {
	return readOnly("setattributes", path)
}

func (a *Adapter) SetCreationTime(ctx context.Context, path vfskit.UPath, t time.Time) error {
	return readOnly("setcreationtime", path)
}

func (a *Adapter) SetLastAccessTime(ctx context.Context, path vfskit.UPath, t time.Time) error {
	return readOnly("setlastaccesstime", path)
}

func (a *Adapter) SetLastWriteTime(ctx context.Context, path vfskit.UPath, t time.Time) error {
	return readOnly("setlastwritetime", path)
}

func (a *Adapter) CanWatch(path vfskit.UPath) bool { return false }

func (a *Adapter) Watch(path vfskit.UPath) (vfskit.Watcher, error) {
	return nil, &vfskit.PathError{Op: "watch", Path: path, Err: vfskit.ErrNotSupported}
}

// Close releases the archive handle.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	return a.reader.Close()
}

// zipFile is a decompressed, seekable view of one archive entry.
type zipFile struct {
	path vfskit.UPath
	r    *bytes.Reader
}

func (f *zipFile) Read(p []byte) (int, error) { return f.r.Read(p) }

func (f *zipFile) Write(p []byte) (int, error) {
	return 0, &vfskit.PathError{Op: "write", Path: f.path, Err: vfskit.ErrReadOnly}
}

func (f *zipFile) Seek(offset int64, whence int) (int64, error) {
	return f.r.Seek(offset, whence)
}

func (f *zipFile) Close() error { return nil }

var _ vfskit.Backend = (*Adapter)(nil)
