package vfskit

import (
	"context"
	"iter"
	"sync/atomic"
	"time"
)

// validatedFS is the filter base every backend is published through. Each
// protocol entry point asserts path absoluteness and non-nullness, then
// delegates to the wrapped Backend. The backend is never called with a
// relative path.
type validatedFS struct {
	backend Backend
	closed  atomic.Bool
}

// NewFileSystem wraps a backend in the validating front that enforces the
// protocol's path preconditions. Driver constructors call this on their
// adapters; it is exported so out-of-tree backends can do the same.
func NewFileSystem(backend Backend) FileSystem {
	v := &validatedFS{backend: backend}
	if h, ok := backend.(OwnerHolder); ok {
		h.SetOwner(v)
	}
	return v
}

func (v *validatedFS) check(op string, paths ...UPath) error {
	if v.closed.Load() {
		return &PathError{Op: op, Err: ErrClosed}
	}
	for _, p := range paths {
		if err := p.AssertAbsolute(); err != nil {
			return &PathError{Op: op, Path: p, Err: err}
		}
	}
	return nil
}

func (v *validatedFS) DirectoryExists(ctx context.Context, path UPath) (bool, error) {
	if err := v.check("direxists", path); err != nil {
		return false, err
	}
	return v.backend.DirectoryExists(ctx, path)
}

func (v *validatedFS) FileExists(ctx context.Context, path UPath) (bool, error) {
	if err := v.check("fileexists", path); err != nil {
		return false, err
	}
	return v.backend.FileExists(ctx, path)
}

func (v *validatedFS) FileLength(ctx context.Context, path UPath) (int64, error) {
	if err := v.check("length", path); err != nil {
		return 0, err
	}
	return v.backend.FileLength(ctx, path)
}

func (v *validatedFS) OpenRead(ctx context.Context, path UPath) (File, error) {
	if err := v.check("openread", path); err != nil {
		return nil, err
	}
	return v.backend.OpenRead(ctx, path)
}

func (v *validatedFS) Attributes(ctx context.Context, path UPath) (FileAttributes, error) {
	if err := v.check("attributes", path); err != nil {
		return 0, err
	}
	return v.backend.Attributes(ctx, path)
}

func (v *validatedFS) CreationTime(ctx context.Context, path UPath) (time.Time, error) {
	if err := v.check("creationtime", path); err != nil {
		return DefaultFileTime, err
	}
	return v.backend.CreationTime(ctx, path)
}

func (v *validatedFS) LastAccessTime(ctx context.Context, path UPath) (time.Time, error) {
	if err := v.check("lastaccesstime", path); err != nil {
		return DefaultFileTime, err
	}
	return v.backend.LastAccessTime(ctx, path)
}

func (v *validatedFS) LastWriteTime(ctx context.Context, path UPath) (time.Time, error) {
	if err := v.check("lastwritetime", path); err != nil {
		return DefaultFileTime, err
	}
	return v.backend.LastWriteTime(ctx, path)
}

func (v *validatedFS) EnumeratePaths(ctx context.Context, path UPath, searchPattern string, recursive bool, target SearchTarget) iter.Seq2[UPath, error] {
	if err := v.check("enumerate", path); err != nil {
		return errorSeq(err)
	}
	return v.backend.EnumeratePaths(ctx, path, searchPattern, recursive, target)
}

func (v *validatedFS) ConvertPathToInternal(path UPath) (string, error) {
	if err := v.check("convert", path); err != nil {
		return "", err
	}
	return v.backend.ConvertPathToInternal(path)
}

func (v *validatedFS) ConvertPathFromInternal(nativePath string) (UPath, error) {
	if v.closed.Load() {
		return UPath{}, &PathError{Op: "convert", Err: ErrClosed}
	}
	return v.backend.ConvertPathFromInternal(nativePath)
}

func (v *validatedFS) CreateDirectory(ctx context.Context, path UPath) error {
	if err := v.check("createdir", path); err != nil {
		return err
	}
	return v.backend.CreateDirectory(ctx, path)
}

func (v *validatedFS) MoveDirectory(ctx context.Context, src, dst UPath) error {
	if err := v.check("movedir", src, dst); err != nil {
		return err
	}
	return v.backend.MoveDirectory(ctx, src, dst)
}

func (v *validatedFS) DeleteDirectory(ctx context.Context, path UPath, recursive bool) error {
	if err := v.check("deletedir", path); err != nil {
		return err
	}
	return v.backend.DeleteDirectory(ctx, path, recursive)
}

func (v *validatedFS) CopyFile(ctx context.Context, src, dst UPath, overwrite bool) error {
	if err := v.check("copyfile", src, dst); err != nil {
		return err
	}
	return v.backend.CopyFile(ctx, src, dst, overwrite)
}

func (v *validatedFS) ReplaceFile(ctx context.Context, src, dst, backup UPath, ignoreMetadataErrors bool) error {
	paths := []UPath{src, dst}
	if !backup.IsNull() {
		paths = append(paths, backup)
	}
	if err := v.check("replacefile", paths...); err != nil {
		return err
	}
	return v.backend.ReplaceFile(ctx, src, dst, backup, ignoreMetadataErrors)
}

func (v *validatedFS) MoveFile(ctx context.Context, src, dst UPath) error {
	if err := v.check("movefile", src, dst); err != nil {
		return err
	}
	return v.backend.MoveFile(ctx, src, dst)
}

func (v *validatedFS) DeleteFile(ctx context.Context, path UPath) error {
	if err := v.check("deletefile", path); err != nil {
		return err
	}
	return v.backend.DeleteFile(ctx, path)
}

func (v *validatedFS) OpenFile(ctx context.Context, path UPath, mode FileOpenMode, access FileAccess, share FileShare) (File, error) {
	if err := v.check("openfile", path); err != nil {
		return nil, err
	}
	return v.backend.OpenFile(ctx, path, mode, access, share)
}

func (v *validatedFS) SetAttributes(ctx context.Context, path UPath, attrs FileAttributes) error {
	if err := v.check("setattributes", path); err != nil {
		return err
	}
	return v.backend.SetAttributes(ctx, path, attrs)
}

func (v *validatedFS) SetCreationTime(ctx context.Context, path UPath, t time.Time) error {
	if err := v.check("setcreationtime", path); err != nil {
		return err
	}
	return v.backend.SetCreationTime(ctx, path, t)
}

func (v *validatedFS) SetLastAccessTime(ctx context.Context, path UPath, t time.Time) error {
	if err := v.check("setlastaccesstime", path); err != nil {
		return err
	}
	return v.backend.SetLastAccessTime(ctx, path, t)
}

func (v *validatedFS) SetLastWriteTime(ctx context.Context, path UPath, t time.Time) error {
	if err := v.check("setlastwritetime", path); err != nil {
		return err
	}
	return v.backend.SetLastWriteTime(ctx, path, t)
}

func (v *validatedFS) CanWatch(path UPath) bool {
	if v.closed.Load() || path.AssertAbsolute() != nil {
		return false
	}
	return v.backend.CanWatch(path)
}

func (v *validatedFS) Watch(path UPath) (Watcher, error) {
	if err := v.check("watch", path); err != nil {
		return nil, err
	}
	return v.backend.Watch(path)
}

// Close closes the wrapped backend once; later operations fail ErrClosed.
func (v *validatedFS) Close() error {
	if v.closed.Swap(true) {
		return nil
	}
	return v.backend.Close()
}

// errorSeq is a sequence that yields a single error.
func errorSeq(err error) iter.Seq2[UPath, error] {
	return func(yield func(UPath, error) bool) {
		yield(UPath{}, err)
	}
}

var _ FileSystem = (*validatedFS)(nil)
