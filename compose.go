package vfskit

import (
	"context"
	"iter"
	"time"
)

// ComposeFS is a path-translating wrapper over another backend. Every
// operation converts the caller's path into the delegate's namespace with
// toDelegate, invokes the delegate, and converts any returned paths back
// with fromDelegate. Enumeration maps lazily; Watch returns the delegate's
// watcher wrapped so its emitted paths are likewise translated.
//
// Composition backends such as SubFileSystem are built on it; it can also be
// used directly for ad-hoc path rewrites.
type ComposeFS struct {
	BackendBase

	delegate     FileSystem
	owned        bool
	toDelegate   func(UPath) (UPath, error)
	fromDelegate func(UPath) (UPath, error)
}

// NewComposeFS builds a path-translating backend over delegate. With owned
// set, closing the wrapper closes the delegate; otherwise the delegate
// outlives it. Nil translation hooks mean identity.
func NewComposeFS(delegate FileSystem, owned bool, toDelegate, fromDelegate func(UPath) (UPath, error)) *ComposeFS {
	identity := func(p UPath) (UPath, error) { return p, nil }
	if toDelegate == nil {
		toDelegate = identity
	}
	if fromDelegate == nil {
		fromDelegate = identity
	}
	return &ComposeFS{
		delegate:     delegate,
		owned:        owned,
		toDelegate:   toDelegate,
		fromDelegate: fromDelegate,
	}
}

// Delegate returns the wrapped backend.
func (c *ComposeFS) Delegate() FileSystem { return c.delegate }

func (c *ComposeFS) convert(op string, p UPath) (UPath, error) {
	q, err := c.toDelegate(p)
	if err != nil {
		return UPath{}, &PathError{Op: op, Path: p, Err: err}
	}
	return q, nil
}

func (c *ComposeFS) DirectoryExists(ctx context.Context, path UPath) (bool, error) {
	p, err := c.convert("direxists", path)
	if err != nil {
		return false, err
	}
	return c.delegate.DirectoryExists(ctx, p)
}

func (c *ComposeFS) FileExists(ctx context.Context, path UPath) (bool, error) {
	p, err := c.convert("fileexists", path)
	if err != nil {
		return false, err
	}
	return c.delegate.FileExists(ctx, p)
}

func (c *ComposeFS) FileLength(ctx context.Context, path UPath) (int64, error) {
	p, err := c.convert("length", path)
	if err != nil {
		return 0, err
	}
	return c.delegate.FileLength(ctx, p)
}

func (c *ComposeFS) OpenRead(ctx context.Context, path UPath) (File, error) {
	p, err := c.convert("openread", path)
	if err != nil {
		return nil, err
	}
	return c.delegate.OpenRead(ctx, p)
}

func (c *ComposeFS) Attributes(ctx context.Context, path UPath) (FileAttributes, error) {
	p, err := c.convert("attributes", path)
	if err != nil {
		return 0, err
	}
	return c.delegate.Attributes(ctx, p)
}

func (c *ComposeFS) CreationTime(ctx context.Context, path UPath) (time.Time, error) {
	p, err := c.convert("creationtime", path)
	if err != nil {
		return DefaultFileTime, err
	}
	return c.delegate.CreationTime(ctx, p)
}

func (c *ComposeFS) LastAccessTime(ctx context.Context, path UPath) (time.Time, error) {
	p, err := c.convert("lastaccesstime", path)
	if err != nil {
		return DefaultFileTime, err
	}
	return c.delegate.LastAccessTime(ctx, p)
}

func (c *ComposeFS) LastWriteTime(ctx context.Context, path UPath) (time.Time, error) {
	p, err := c.convert("lastwritetime", path)
	if err != nil {
		return DefaultFileTime, err
	}
	return c.delegate.LastWriteTime(ctx, p)
}

// EnumeratePaths yields the delegate's sequence with every element mapped
// back into the wrapper's namespace. The mapping is element-wise, so the
// sequence stays lazy.
func (c *ComposeFS) EnumeratePaths(ctx context.Context, path UPath, searchPattern string, recursive bool, target SearchTarget) iter.Seq2[UPath, error] {
	p, err := c.convert("enumerate", path)
	if err != nil {
		return errorSeq(err)
	}
	inner := c.delegate.EnumeratePaths(ctx, p, searchPattern, recursive, target)
	return func(yield func(UPath, error) bool) {
		for q, err := range inner {
			if err != nil {
				if !yield(UPath{}, err) {
					return
				}
				continue
			}
			back, cerr := c.fromDelegate(q)
			if cerr != nil {
				if !yield(UPath{}, &PathError{Op: "enumerate", Path: q, Err: cerr}) {
					return
				}
				continue
			}
			if !yield(back, nil) {
				return
			}
		}
	}
}

func (c *ComposeFS) ConvertPathToInternal(path UPath) (string, error) {
	p, err := c.convert("convert", path)
	if err != nil {
		return "", err
	}
	return c.delegate.ConvertPathToInternal(p)
}

func (c *ComposeFS) ConvertPathFromInternal(nativePath string) (UPath, error) {
	q, err := c.delegate.ConvertPathFromInternal(nativePath)
	if err != nil {
		return UPath{}, err
	}
	back, err := c.fromDelegate(q)
	if err != nil {
		return UPath{}, &PathError{Op: "convert", Path: q, Err: err}
	}
	return back, nil
}

func (c *ComposeFS) CreateDirectory(ctx context.Context, path UPath) error {
	p, err := c.convert("createdir", path)
	if err != nil {
		return err
	}
	return c.delegate.CreateDirectory(ctx, p)
}

func (c *ComposeFS) MoveDirectory(ctx context.Context, src, dst UPath) error {
	s, err := c.convert("movedir", src)
	if err != nil {
		return err
	}
	d, err := c.convert("movedir", dst)
	if err != nil {
		return err
	}
	return c.delegate.MoveDirectory(ctx, s, d)
}

func (c *ComposeFS) DeleteDirectory(ctx context.Context, path UPath, recursive bool) error {
	p, err := c.convert("deletedir", path)
	if err != nil {
		return err
	}
	return c.delegate.DeleteDirectory(ctx, p, recursive)
}

func (c *ComposeFS) CopyFile(ctx context.Context, src, dst UPath, overwrite bool) error {
	s, err := c.convert("copyfile", src)
	if err != nil {
		return err
	}
	d, err := c.convert("copyfile", dst)
	if err != nil {
		return err
	}
	return c.delegate.CopyFile(ctx, s, d, overwrite)
}

func (c *ComposeFS) ReplaceFile(ctx context.Context, src, dst, backup UPath, ignoreMetadataErrors bool) error {
	s, err := c.convert("replacefile", src)
	if err != nil {
		return err
	}
	d, err := c.convert("replacefile", dst)
	if err != nil {
		return err
	}
	b := UPath{}
	if !backup.IsNull() {
		if b, err = c.convert("replacefile", backup); err != nil {
			return err
		}
	}
	return c.delegate.ReplaceFile(ctx, s, d, b, ignoreMetadataErrors)
}

func (c *ComposeFS) MoveFile(ctx context.Context, src, dst UPath) error {
	s, err := c.convert("movefile", src)
	if err != nil {
		return err
	}
	d, err := c.convert("movefile", dst)
	if err != nil {
		return err
	}
	return c.delegate.MoveFile(ctx, s, d)
}

func (c *ComposeFS) DeleteFile(ctx context.Context, path UPath) error {
	p, err := c.convert("deletefile", path)
	if err != nil {
		return err
	}
	return c.delegate.DeleteFile(ctx, p)
}

func (c *ComposeFS) OpenFile(ctx context.Context, path UPath, mode FileOpenMode, access FileAccess, share FileShare) (File, error) {
	p, err := c.convert("openfile", path)
	if err != nil {
		return nil, err
	}
	return c.delegate.OpenFile(ctx, p, mode, access, share)
}

func (c *ComposeFS) SetAttributes(ctx context.Context, path UPath, attrs FileAttributes) error {
	p, err := c.convert("setattributes", path)
	if err != nil {
		return err
	}
	return c.delegate.SetAttributes(ctx, p, attrs)
}

func (c *ComposeFS) SetCreationTime(ctx context.Context, path UPath, t time.Time) error {
	p, err := c.convert("setcreationtime", path)
	if err != nil {
		return err
	}
	return c.delegate.SetCreationTime(ctx, p, t)
}

func (c *ComposeFS) SetLastAccessTime(ctx context.Context, path UPath, t time.Time) error {
	p, err := c.convert("setlastaccesstime", path)
	if err != nil {
		return err
	}
	return c.delegate.SetLastAccessTime(ctx, p, t)
}

func (c *ComposeFS) SetLastWriteTime(ctx context.Context, path UPath, t time.Time) error {
	p, err := c.convert("setlastwritetime", path)
	if err != nil {
		return err
	}
	return c.delegate.SetLastWriteTime(ctx, p, t)
}

func (c *ComposeFS) CanWatch(path UPath) bool {
	p, err := c.toDelegate(path)
	if err != nil {
		return false
	}
	return c.delegate.CanWatch(p)
}

// Watch watches the translated path on the delegate and wraps the returned
// watcher so emitted paths are converted back; events whose path lies
// outside the wrapper's namespace are dropped.
func (c *ComposeFS) Watch(path UPath) (Watcher, error) {
	p, err := c.convert("watch", path)
	if err != nil {
		return nil, err
	}
	inner, err := c.delegate.Watch(p)
	if err != nil {
		return nil, err
	}
	convert := func(q UPath) (UPath, bool) {
		back, err := c.fromDelegate(q)
		return back, err == nil
	}
	return newWrapWatcher(c.Owner(c), path, inner, convert, true), nil
}

// Close closes the delegate when the wrapper owns it.
func (c *ComposeFS) Close() error {
	if c.owned {
		return c.delegate.Close()
	}
	return nil
}

var _ FileSystem = (*ComposeFS)(nil)
