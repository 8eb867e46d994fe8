package vfskit

import (
	"context"
	"io"
	"iter"
	"time"
)

// File is an open stream into a backend. Every stream returned by OpenRead
// or OpenFile must be closed by the caller; it holds backend resources.
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
}

// ============================================================================
// Core Interfaces (Interface Segregation)
// ============================================================================

// FileReader is the capability contract every read-only backend must honor.
// Use this type in function signatures to enforce read-only at compile time.
//
// All paths crossing the interface are absolute UPath values; native paths
// enter and leave only through ConvertPathToInternal / ConvertPathFromInternal.
type FileReader interface {
	// DirectoryExists checks if a directory exists at path.
	DirectoryExists(ctx context.Context, path UPath) (bool, error)

	// FileExists checks if a file exists at path.
	FileExists(ctx context.Context, path UPath) (bool, error)

	// FileLength returns the size of a file in bytes.
	FileLength(ctx context.Context, path UPath) (int64, error)

	// OpenRead returns a stream for reading file content.
	OpenRead(ctx context.Context, path UPath) (File, error)

	// Attributes returns the attribute bitfield of a file or directory.
	Attributes(ctx context.Context, path UPath) (FileAttributes, error)

	// CreationTime returns when the path was created, or DefaultFileTime
	// when the path does not exist.
	CreationTime(ctx context.Context, path UPath) (time.Time, error)

	// LastAccessTime returns when the path was last accessed, or
	// DefaultFileTime when the path does not exist.
	LastAccessTime(ctx context.Context, path UPath) (time.Time, error)

	// LastWriteTime returns when the path was last written, or
	// DefaultFileTime when the path does not exist.
	LastWriteTime(ctx context.Context, path UPath) (time.Time, error)

	// EnumeratePaths lazily yields the absolute paths under path whose final
	// name matches searchPattern. Wrappers map the sequence element-wise
	// without collecting it; a leaf backend may gather its matches before the
	// first one is yielded (driver/memory and driver/zip do).
	EnumeratePaths(ctx context.Context, path UPath, searchPattern string, recursive bool, target SearchTarget) iter.Seq2[UPath, error]

	// ConvertPathToInternal translates path into the backend's native form.
	ConvertPathToInternal(path UPath) (string, error)

	// ConvertPathFromInternal translates a native path back into a UPath.
	ConvertPathFromInternal(nativePath string) (UPath, error)
}

// FileWriter extends the read contract with mutation. Every mutator rejects
// relative paths with ErrInvalidPath.
type FileWriter interface {
	// CreateDirectory creates a directory and any missing parents. It is
	// idempotent on existing directories.
	CreateDirectory(ctx context.Context, path UPath) error

	// MoveDirectory moves a directory tree to a new location.
	MoveDirectory(ctx context.Context, src, dst UPath) error

	// DeleteDirectory removes a directory. A non-recursive delete of a
	// populated directory fails with ErrNotEmpty.
	DeleteDirectory(ctx context.Context, path UPath, recursive bool) error

	// CopyFile copies a file. With overwrite false an existing destination
	// fails with ErrDestinationExists.
	CopyFile(ctx context.Context, src, dst UPath, overwrite bool) error

	// ReplaceFile moves dst to backup (when backup is non-null) and then src
	// to dst, preserving destination metadata on a best-effort basis.
	ReplaceFile(ctx context.Context, src, dst, backup UPath, ignoreMetadataErrors bool) error

	// MoveFile moves a file; an existing destination, file or directory,
	// fails with ErrDestinationExists.
	MoveFile(ctx context.Context, src, dst UPath) error

	// DeleteFile removes a file.
	DeleteFile(ctx context.Context, path UPath) error

	// OpenFile opens a file stream with the given mode, access and share.
	OpenFile(ctx context.Context, path UPath, mode FileOpenMode, access FileAccess, share FileShare) (File, error)

	// SetAttributes replaces the attribute bitfield of a path.
	SetAttributes(ctx context.Context, path UPath, attrs FileAttributes) error

	// SetCreationTime sets when the path was created.
	SetCreationTime(ctx context.Context, path UPath, t time.Time) error

	// SetLastAccessTime sets when the path was last accessed.
	SetLastAccessTime(ctx context.Context, path UPath, t time.Time) error

	// SetLastWriteTime sets when the path was last written.
	SetLastWriteTime(ctx context.Context, path UPath, t time.Time) error
}

// Watchable is the change-notification contract of a backend.
type Watchable interface {
	// CanWatch reports whether Watch is supported for path.
	CanWatch(path UPath) bool

	// Watch returns a watcher producing change events for path. The caller
	// owns the watcher and must close it.
	Watch(path UPath) (Watcher, error)
}

// FileSystem is the full read/write protocol. Composition backends wrap
// another FileSystem and recurse; leaf backends execute.
type FileSystem interface {
	FileReader
	FileWriter
	Watchable
	io.Closer
}

// ============================================================================
// Backend seam
// ============================================================================

// Backend is the surface a concrete backend provides. It is the FileSystem
// contract with a relaxed precondition: NewFileSystem guarantees that every
// path reaching a Backend is absolute, non-null and canonical, so backends
// skip input validation entirely.
type Backend = FileSystem

// OwnerHolder is implemented by backends that want to know the public
// handle wrapped around them, so the events and entries they produce can
// reference it. NewFileSystem calls SetOwner once at construction.
type OwnerHolder interface {
	SetOwner(fs FileSystem)
}

// BackendBase is an embeddable helper carrying the owning handle for leaf
// backends.
type BackendBase struct {
	owner FileSystem
}

// SetOwner records the public handle wrapping this backend.
func (b *BackendBase) SetOwner(fs FileSystem) { b.owner = fs }

// Owner returns the public handle, or fallback when none was set.
func (b *BackendBase) Owner(fallback FileSystem) FileSystem {
	if b.owner != nil {
		return b.owner
	}
	return fallback
}
