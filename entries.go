package vfskit

import (
	"context"
	"iter"
	"time"
)

// FileSystemEntry is a thin handle pairing a backend with a path. It borrows
// the backend and never closes it.
type FileSystemEntry struct {
	fs   FileSystem
	path UPath
}

// FileSystem returns the backend the entry points into.
func (e FileSystemEntry) FileSystem() FileSystem { return e.fs }

// Path returns the entry's absolute path.
func (e FileSystemEntry) Path() UPath { return e.path }

// Name returns the entry's final name.
func (e FileSystemEntry) Name() string { return e.path.Name() }

// Parent returns the directory containing the entry.
func (e FileSystemEntry) Parent() DirectoryEntry {
	return DirectoryEntry{FileSystemEntry{e.fs, e.path.Parent()}}
}

// Attributes returns the entry's attribute bitfield.
func (e FileSystemEntry) Attributes(ctx context.Context) (FileAttributes, error) {
	return e.fs.Attributes(ctx, e.path)
}

// LastWriteTime returns when the entry was last written.
func (e FileSystemEntry) LastWriteTime(ctx context.Context) (time.Time, error) {
	return e.fs.LastWriteTime(ctx, e.path)
}

// FileEntry is a handle to a file on a backend.
type FileEntry struct {
	FileSystemEntry
}

// NewFileEntry creates a file handle. The path must be absolute.
func NewFileEntry(fs FileSystem, path UPath) FileEntry {
	return FileEntry{FileSystemEntry{fs, path}}
}

// Exists reports whether the file exists.
func (f FileEntry) Exists(ctx context.Context) (bool, error) {
	return f.fs.FileExists(ctx, f.path)
}

// Length returns the file's size in bytes.
func (f FileEntry) Length(ctx context.Context) (int64, error) {
	return f.fs.FileLength(ctx, f.path)
}

// OpenRead opens the file for reading.
func (f FileEntry) OpenRead(ctx context.Context) (File, error) {
	return f.fs.OpenRead(ctx, f.path)
}

// Open opens the file with explicit mode, access and share.
func (f FileEntry) Open(ctx context.Context, mode FileOpenMode, access FileAccess, share FileShare) (File, error) {
	return f.fs.OpenFile(ctx, f.path, mode, access, share)
}

// ReadAllBytes reads the whole file into memory.
func (f FileEntry) ReadAllBytes(ctx context.Context) ([]byte, error) {
	return ReadAllBytes(ctx, f.fs, f.path)
}

// WriteAllBytes replaces the file's content.
func (f FileEntry) WriteAllBytes(ctx context.Context, data []byte) error {
	return WriteAllBytes(ctx, f.fs, f.path, data)
}

// Delete removes the file.
func (f FileEntry) Delete(ctx context.Context) error {
	return f.fs.DeleteFile(ctx, f.path)
}

// MoveTo moves the file within its backend.
func (f FileEntry) MoveTo(ctx context.Context, dst UPath) error {
	return f.fs.MoveFile(ctx, f.path, dst)
}

// CopyTo copies the file within its backend.
func (f FileEntry) CopyTo(ctx context.Context, dst UPath, overwrite bool) error {
	return f.fs.CopyFile(ctx, f.path, dst, overwrite)
}

// DirectoryEntry is a handle to a directory on a backend.
type DirectoryEntry struct {
	FileSystemEntry
}

// NewDirectoryEntry creates a directory handle. The path must be absolute.
func NewDirectoryEntry(fs FileSystem, path UPath) DirectoryEntry {
	return DirectoryEntry{FileSystemEntry{fs, path}}
}

// Exists reports whether the directory exists.
func (d DirectoryEntry) Exists(ctx context.Context) (bool, error) {
	return d.fs.DirectoryExists(ctx, d.path)
}

// Create creates the directory and any missing parents.
func (d DirectoryEntry) Create(ctx context.Context) error {
	return d.fs.CreateDirectory(ctx, d.path)
}

// Delete removes the directory.
func (d DirectoryEntry) Delete(ctx context.Context, recursive bool) error {
	return d.fs.DeleteDirectory(ctx, d.path, recursive)
}

// EnumeratePaths lazily yields the paths under the directory matching the
// search pattern.
func (d DirectoryEntry) EnumeratePaths(ctx context.Context, searchPattern string, recursive bool, target SearchTarget) iter.Seq2[UPath, error] {
	return d.fs.EnumeratePaths(ctx, d.path, searchPattern, recursive, target)
}

// Watch returns a watcher over the directory.
func (d DirectoryEntry) Watch() (Watcher, error) {
	return d.fs.Watch(d.path)
}
