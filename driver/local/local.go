package local

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobeaver/vfskit"
)

// Adapter maps the vfskit protocol onto a directory of the operating
// system's filesystem. Paths are anchored under the root given at
// construction; the native form enters and leaves only through the
// ConvertPathTo/FromInternal pair.
type Adapter struct {
	vfskit.BackendBase
	root string
}

// New creates a local filesystem rooted at root, creating the directory if
// needed.
func New(root string) (vfskit.FileSystem, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(absRoot, 0o755); err != nil {
		return nil, err
	}
	return vfskit.NewFileSystem(&Adapter{root: absRoot}), nil
}

// native maps a protocol path to its on-disk location.
func (a *Adapter) native(p vfskit.UPath) string {
	return filepath.Join(a.root, filepath.FromSlash(p.ToRelative().String()))
}

// mapError rewrites an OS error into the canonical taxonomy.
func mapError(op string, path vfskit.UPath, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		err = vfskit.ErrNotExist
	case errors.Is(err, fs.ErrExist):
		err = vfskit.ErrExist
	case errors.Is(err, fs.ErrPermission):
		err = vfskit.ErrPermission
	}
	return &vfskit.PathError{Op: op, Path: path, Err: err}
}

// ============================================================================
// Read protocol
// ============================================================================

func (a *Adapter) DirectoryExists(ctx context.Context, path vfskit.UPath) (bool, error) {
	info, err := os.Stat(a.native(path))
	if err != nil {
		return false, nil
	}
	return info.IsDir(), nil
}

func (a *Adapter) FileExists(ctx context.Context, path vfskit.UPath) (bool, error) {
	info, err := os.Stat(a.native(path))
	if err != nil {
		return false, nil
	}
	return !info.IsDir(), nil
}

func (a *Adapter) FileLength(ctx context.Context, path vfskit.UPath) (int64, error) {
	info, err := os.Stat(a.native(path))
	if err != nil {
		return 0, mapError("length", path, err)
	}
	if info.IsDir() {
		return 0, &vfskit.PathError{Op: "length", Path: path, Err: vfskit.ErrIsDir}
	}
	return info.Size(), nil
}

func (a *Adapter) OpenRead(ctx context.Context, path vfskit.UPath) (vfskit.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	native := a.native(path)
	if info, err := os.Stat(native); err == nil && info.IsDir() {
		return nil, &vfskit.PathError{Op: "openread", Path: path, Err: vfskit.ErrIsDir}
	}
	f, err := os.Open(native)
	if err != nil {
		return nil, mapError("openread", path, err)
	}
	return f, nil
}

func (a *Adapter) Attributes(ctx context.Context, path vfskit.UPath) (vfskit.FileAttributes, error) {
	info, err := os.Stat(a.native(path))
	if err != nil {
		return 0, mapError("attributes", path, err)
	}
	var attrs vfskit.FileAttributes
	if info.IsDir() {
		attrs |= vfskit.AttrDirectory
	}
	if info.Mode().Perm()&0o200 == 0 {
		attrs |= vfskit.AttrReadOnly
	}
	if strings.HasPrefix(info.Name(), ".") {
		attrs |= vfskit.AttrHidden
	}
	if attrs == 0 {
		attrs = vfskit.AttrNormal
	}
	return attrs, nil
}

func (a *Adapter) CreationTime(ctx context.Context, path vfskit.UPath) (time.Time, error) {
	info, err := os.Stat(a.native(path))
	if err != nil {
		return vfskit.DefaultFileTime, nil
	}
	if _, birth := statExtraTimes(info); !birth.IsZero() {
		return birth, nil
	}
	// filesystems without birth time report the write time
	return info.ModTime(), nil
}

func (a *Adapter) LastAccessTime(ctx context.Context, path vfskit.UPath) (time.Time, error) {
	info, err := os.Stat(a.native(path))
	if err != nil {
		return vfskit.DefaultFileTime, nil
	}
	if atime, _ := statExtraTimes(info); !atime.IsZero() {
		return atime, nil
	}
	return info.ModTime(), nil
}

func (a *Adapter) LastWriteTime(ctx context.Context, path vfskit.UPath) (time.Time, error) {
	info, err := os.Stat(a.native(path))
	if err != nil {
		return vfskit.DefaultFileTime, nil
	}
	return info.ModTime(), nil
}

// EnumeratePaths walks the tree lazily: each directory is read only when the
// sequence reaches it, so consumers can stop early on very large trees.
func (a *Adapter) EnumeratePaths(ctx context.Context, path vfskit.UPath, searchPattern string, recursive bool, target vfskit.SearchTarget) iter.Seq2[vfskit.UPath, error] {
	pattern, err := vfskit.ParseFilter(searchPattern)
	if err != nil {
		return func(yield func(vfskit.UPath, error) bool) {
			yield(vfskit.UPath{}, err)
		}
	}
	return func(yield func(vfskit.UPath, error) bool) {
		a.walk(ctx, path, pattern, recursive, target, yield)
	}
}

func (a *Adapter) walk(ctx context.Context, dir vfskit.UPath, pattern vfskit.FilterPattern, recursive bool, target vfskit.SearchTarget, yield func(vfskit.UPath, error) bool) bool {
	if err := ctx.Err(); err != nil {
		return yield(vfskit.UPath{}, err)
	}
	entries, err := os.ReadDir(a.native(dir))
	if err != nil {
		return yield(vfskit.UPath{}, mapError("enumerate", dir, err))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		childPath := dir.JoinString(entry.Name())
		include := pattern.Match(entry.Name())
		if include {
			if entry.IsDir() && target == vfskit.SearchFile {
				include = false
			}
			if !entry.IsDir() && target == vfskit.SearchDirectory {
				include = false
			}
		}
		if include && !yield(childPath, nil) {
			return false
		}
		if recursive && entry.IsDir() {
			if !a.walk(ctx, childPath, pattern, recursive, target, yield) {
				return false
			}
		}
	}
	return true
}

func (a *Adapter) ConvertPathToInternal(path vfskit.UPath) (string, error) {
	return a.native(path), nil
}

func (a *Adapter) ConvertPathFromInternal(nativePath string) (vfskit.UPath, error) {
	abs, err := filepath.Abs(nativePath)
	if err != nil {
		return vfskit.UPath{}, &vfskit.PathError{Op: "convert", Err: vfskit.ErrInvalidPath}
	}
	rel, err := filepath.Rel(a.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return vfskit.UPath{}, &vfskit.PathError{Op: "convert", Err: vfskit.ErrInvalidPath}
	}
	return vfskit.NewPath(filepath.ToSlash(rel)).ToAbsolute(), nil
}

// ============================================================================
// Write protocol
// ============================================================================

func (a *Adapter) CreateDirectory(ctx context.Context, path vfskit.UPath) error {
	if err := os.MkdirAll(a.native(path), 0o755); err != nil {
		return mapError("createdir", path, err)
	}
	return nil
}

func (a *Adapter) MoveDirectory(ctx context.Context, src, dst vfskit.UPath) error {
	info, err := os.Stat(a.native(src))
	if err != nil {
		return mapError("movedir", src, err)
	}
	if !info.IsDir() {
		return &vfskit.PathError{Op: "movedir", Path: src, Err: vfskit.ErrNotDir}
	}
	if _, err := os.Stat(a.native(dst)); err == nil {
		return &vfskit.PathError{Op: "movedir", Path: dst, Err: vfskit.ErrDestinationExists}
	}
	if err := os.Rename(a.native(src), a.native(dst)); err != nil {
		return mapError("movedir", src, err)
	}
	return nil
}

func (a *Adapter) DeleteDirectory(ctx context.Context, path vfskit.UPath, recursive bool) error {
	native := a.native(path)
	info, err := os.Stat(native)
	if err != nil {
		return mapError("deletedir", path, err)
	}
	if !info.IsDir() {
		return &vfskit.PathError{Op: "deletedir", Path: path, Err: vfskit.ErrNotDir}
	}
	if recursive {
		if err := os.RemoveAll(native); err != nil {
			return mapError("deletedir", path, err)
		}
		return nil
	}
	entries, err := os.ReadDir(native)
	if err != nil {
		return mapError("deletedir", path, err)
	}
	if len(entries) > 0 {
		return &vfskit.PathError{Op: "deletedir", Path: path, Err: vfskit.ErrNotEmpty}
	}
	if err := os.Remove(native); err != nil {
		return mapError("deletedir", path, err)
	}
	return nil
}

func (a *Adapter) CopyFile(ctx context.Context, src, dst vfskit.UPath, overwrite bool) error {
	srcInfo, err := os.Stat(a.native(src))
	if err != nil {
		return mapError("copyfile", src, err)
	}
	if srcInfo.IsDir() {
		return &vfskit.PathError{Op: "copyfile", Path: src, Err: vfskit.ErrIsDir}
	}
	if dstInfo, err := os.Stat(a.native(dst)); err == nil {
		if dstInfo.IsDir() || !overwrite {
			return &vfskit.PathError{Op: "copyfile", Path: dst, Err: vfskit.ErrDestinationExists}
		}
	}

	in, err := os.Open(a.native(src))
	if err != nil {
		return mapError("copyfile", src, err)
	}
	defer in.Close()
	out, err := os.Create(a.native(dst))
	if err != nil {
		return mapError("copyfile", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return mapError("copyfile", dst, err)
	}
	if err := out.Close(); err != nil {
		return mapError("copyfile", dst, err)
	}
	// metadata carry-over is best effort
	_ = os.Chtimes(a.native(dst), time.Now(), srcInfo.ModTime())
	return nil
}

func (a *Adapter) ReplaceFile(ctx context.Context, src, dst, backup vfskit.UPath, ignoreMetadataErrors bool) error {
	if _, err := os.Stat(a.native(src)); err != nil {
		return mapError("replacefile", src, err)
	}
	dstInfo, err := os.Stat(a.native(dst))
	if err != nil {
		return mapError("replacefile", dst, err)
	}
	if !backup.IsNull() {
		if err := os.Rename(a.native(dst), a.native(backup)); err != nil {
			return mapError("replacefile", backup, err)
		}
	}
	if err := os.Rename(a.native(src), a.native(dst)); err != nil {
		return mapError("replacefile", dst, err)
	}
	if err := os.Chtimes(a.native(dst), time.Now(), dstInfo.ModTime()); err != nil && !ignoreMetadataErrors {
		return mapError("replacefile", dst, err)
	}
	return nil
}

func (a *Adapter) MoveFile(ctx context.Context, src, dst vfskit.UPath) error {
	info, err := os.Stat(a.native(src))
	if err != nil {
		return mapError("movefile", src, err)
	}
	if info.IsDir() {
		return &vfskit.PathError{Op: "movefile", Path: src, Err: vfskit.ErrIsDir}
	}
	if _, err := os.Stat(a.native(dst)); err == nil {
		return &vfskit.PathError{Op: "movefile", Path: dst, Err: vfskit.ErrDestinationExists}
	}
	if err := os.Rename(a.native(src), a.native(dst)); err != nil {
		return mapError("movefile", src, err)
	}
	return nil
}

func (a *Adapter) DeleteFile(ctx context.Context, path vfskit.UPath) error {
	info, err := os.Stat(a.native(path))
	if err != nil {
		return mapError("deletefile", path, err)
	}
	if info.IsDir() {
		return &vfskit.PathError{Op: "deletefile", Path: path, Err: vfskit.ErrIsDir}
	}
	if err := os.Remove(a.native(path)); err != nil {
		return mapError("deletefile", path, err)
	}
	return nil
}

func (a *Adapter) OpenFile(ctx context.Context, path vfskit.UPath, mode vfskit.FileOpenMode, access vfskit.FileAccess, share vfskit.FileShare) (vfskit.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var flag int
	switch access {
	case vfskit.AccessRead:
		flag = os.O_RDONLY
	case vfskit.AccessWrite:
		flag = os.O_WRONLY
	default:
		flag = os.O_RDWR
	}

	switch mode {
	case vfskit.OpenModeCreateNew:
		flag |= os.O_CREATE | os.O_EXCL
	case vfskit.OpenModeCreate:
		flag |= os.O_CREATE | os.O_TRUNC
	case vfskit.OpenModeOpen:
		// open as-is
	case vfskit.OpenModeOpenOrCreate:
		flag |= os.O_CREATE
	case vfskit.OpenModeTruncate:
		flag |= os.O_TRUNC
	case vfskit.OpenModeAppend:
		flag |= os.O_CREATE | os.O_APPEND
	}
	if mode != vfskit.OpenModeOpen && !access.CanWrite() {
		return nil, &vfskit.PathError{Op: "openfile", Path: path, Err: vfskit.ErrPermission}
	}

	f, err := os.OpenFile(a.native(path), flag, 0o644)
	if err != nil {
		return nil, mapError("openfile", path, err)
	}
	return f, nil
}

func (a *Adapter) SetAttributes(ctx context.Context, path vfskit.UPath, attrs vfskit.FileAttributes) error {
	info, err := os.Stat(a.native(path))
	if err != nil {
		return mapError("setattributes", path, err)
	}
	// only the read-only bit maps onto POSIX permissions
	mode := info.Mode().Perm()
	if attrs.Has(vfskit.AttrReadOnly) {
		mode &^= 0o222
	} else {
		mode |= 0o200
	}
	if err := os.Chmod(a.native(path), mode); err != nil {
		return mapError("setattributes", path, err)
	}
	return nil
}

func (a *Adapter) SetCreationTime(ctx context.Context, path vfskit.UPath, t time.Time) error {
	if _, err := os.Stat(a.native(path)); err != nil {
		return mapError("setcreationtime", path, err)
	}
	// POSIX filesystems do not expose a writable birth time
	return nil
}

func (a *Adapter) SetLastAccessTime(ctx context.Context, path vfskit.UPath, t time.Time) error {
	if err := os.Chtimes(a.native(path), t, time.Time{}); err != nil {
		return mapError("setlastaccesstime", path, err)
	}
	return nil
}

func (a *Adapter) SetLastWriteTime(ctx context.Context, path vfskit.UPath, t time.Time) error {
	if err := os.Chtimes(a.native(path), time.Time{}, t); err != nil {
		return mapError("setlastwritetime", path, err)
	}
	return nil
}

// Close releases nothing: the adapter holds no descriptors between
// operations.
func (a *Adapter) Close() error { return nil }

var _ vfskit.Backend = (*Adapter)(nil)
