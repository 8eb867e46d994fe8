package vfskit

import (
	"context"
	"errors"
	"time"
)

// ErrReadOnly is returned when a write operation is attempted on a read-only
// filesystem.
var ErrReadOnly = errors.New("filesystem is read-only")

// ReadOnlyFileSystem wraps a backend to prevent all mutation. This is useful
// for:
// - Providing safe read-only access to sensitive data
// - Creating temporary read-only views of filesystems
// - Exposing filesystems to untrusted code
type ReadOnlyFileSystem struct {
	ComposeFS
	opts ReadOnlyOptions
}

// ReadOnlyOptions configures the ReadOnlyFileSystem behavior.
type ReadOnlyOptions struct {
	// AllowCreateDir permits directory creation even in read-only mode.
	// Useful for temporary directories or staging areas.
	// Default: false
	AllowCreateDir bool

	// AllowDelete permits file deletion in read-only mode.
	// Use with caution - typically you want this false.
	// Default: false
	AllowDelete bool
}

// ReadOnlyOption is a functional option for configuring ReadOnlyFileSystem.
type ReadOnlyOption func(*ReadOnlyOptions)

// WithAllowCreateDir allows directory creation in read-only mode.
func WithAllowCreateDir(allow bool) ReadOnlyOption {
	return func(o *ReadOnlyOptions) {
		o.AllowCreateDir = allow
	}
}

// WithAllowDelete allows file deletion in read-only mode.
func WithAllowDelete(allow bool) ReadOnlyOption {
	return func(o *ReadOnlyOptions) {
		o.AllowDelete = allow
	}
}

// NewReadOnlyFileSystem creates a read-only wrapper around a backend. All
// write operations fail with ErrReadOnly unless configured otherwise. The
// wrapper borrows the delegate: closing it leaves the delegate open.
func NewReadOnlyFileSystem(fs FileSystem, opts ...ReadOnlyOption) FileSystem {
	options := ReadOnlyOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	r := &ReadOnlyFileSystem{opts: options}
	r.ComposeFS = *NewComposeFS(fs, false, nil, nil)
	return NewFileSystem(r)
}

// IsReadOnly returns true, indicating this is a read-only filesystem.
func (r *ReadOnlyFileSystem) IsReadOnly() bool { return true }

func readOnlyError(op string, path UPath) error {
	return &PathError{Op: op, Path: path, Err: ErrReadOnly}
}

// ============================================================================
// Write operations (blocked)
// ============================================================================

// CreateDirectory fails with ErrReadOnly unless AllowCreateDir is enabled.
func (r *ReadOnlyFileSystem) CreateDirectory(ctx context.Context, path UPath) error {
	if !r.opts.AllowCreateDir {
		return readOnlyError("createdir", path)
	}
	return r.ComposeFS.CreateDirectory(ctx, path)
}

func (r *ReadOnlyFileSystem) MoveDirectory(ctx context.Context, src, dst UPath) error {
	return readOnlyError("movedir", src)
}

func (r *ReadOnlyFileSystem) DeleteDirectory(ctx context.Context, path UPath, recursive bool) error {
	return readOnlyError("deletedir", path)
}

func (r *ReadOnlyFileSystem) CopyFile(ctx context.Context, src, dst UPath, overwrite bool) error {
	return readOnlyError("copyfile", dst)
}

func (r *ReadOnlyFileSystem) ReplaceFile(ctx context.Context, src, dst, backup UPath, ignoreMetadataErrors bool) error {
	return readOnlyError("replacefile", dst)
}

func (r *ReadOnlyFileSystem) MoveFile(ctx context.Context, src, dst UPath) error {
	return readOnlyError("movefile", src)
}

// DeleteFile fails with ErrReadOnly unless AllowDelete is enabled.
func (r *ReadOnlyFileSystem) DeleteFile(ctx context.Context, path UPath) error {
	if !r.opts.AllowDelete {
		return readOnlyError("deletefile", path)
	}
	return r.ComposeFS.DeleteFile(ctx, path)
}

// OpenFile refuses any write access.
func (r *ReadOnlyFileSystem) OpenFile(ctx context.Context, path UPath, mode FileOpenMode, access FileAccess, share FileShare) (File, error) {
	if access.CanWrite() || mode != OpenModeOpen {
		return nil, readOnlyError("openfile", path)
	}
	return r.ComposeFS.OpenFile(ctx, path, mode, access, share)
}

func (r *ReadOnlyFileSystem) SetAttributes(ctx context.Context, path UPath, attrs FileAttributes) error {
	return readOnlyError("setattributes", path)
}

func (r *ReadOnlyFileSystem) SetCreationTime(ctx context.Context, path UPath, t time.Time) error {
	return readOnlyError("setcreationtime", path)
}

func (r *ReadOnlyFileSystem) SetLastAccessTime(ctx context.Context, path UPath, t time.Time) error {
	return readOnlyError("setlastaccesstime", path)
}

func (r *ReadOnlyFileSystem) SetLastWriteTime(ctx context.Context, path UPath, t time.Time) error {
	return readOnlyError("setlastwritetime", path)
}

// Attributes reports the delegate's attributes with the read-only bit set.
func (r *ReadOnlyFileSystem) Attributes(ctx context.Context, path UPath) (FileAttributes, error) {
	attrs, err := r.ComposeFS.Attributes(ctx, path)
	if err != nil {
		return attrs, err
	}
	return attrs | AttrReadOnly, nil
}

// IsReadOnlyError checks if an error is due to read-only restrictions.
func IsReadOnlyError(err error) bool {
	return errors.Is(err, ErrReadOnly)
}
