package vfskit

import (
	"context"
	"io"
)

// Convenience glue layered on the protocol. None of it is backend-specific;
// everything goes through OpenRead / OpenFile so it works for any
// composition of backends.

// ReadAllBytes reads the whole file at path into memory.
func ReadAllBytes(ctx context.Context, fs FileReader, path UPath) ([]byte, error) {
	f, err := fs.OpenRead(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// ReadAllText reads the whole file at path as a string.
func ReadAllText(ctx context.Context, fs FileReader, path UPath) (string, error) {
	data, err := ReadAllBytes(ctx, fs, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteAllBytes writes data to path, creating or truncating the file.
func WriteAllBytes(ctx context.Context, fs FileSystem, path UPath, data []byte) error {
	f, err := fs.OpenFile(ctx, path, OpenModeCreate, AccessWrite, ShareRead)
	if err != nil {
		return err
	}
	if _, werr := f.Write(data); werr != nil {
		f.Close()
		return werr
	}
	return f.Close()
}

// WriteAllText writes text to path, creating or truncating the file.
func WriteAllText(ctx context.Context, fs FileSystem, path UPath, text string) error {
	return WriteAllBytes(ctx, fs, path, []byte(text))
}

// AppendAllText appends text to the file at path, creating it when missing.
func AppendAllText(ctx context.Context, fs FileSystem, path UPath, text string) error {
	f, err := fs.OpenFile(ctx, path, OpenModeAppend, AccessWrite, ShareRead)
	if err != nil {
		return err
	}
	if _, werr := io.WriteString(f, text); werr != nil {
		f.Close()
		return werr
	}
	return f.Close()
}

// CopyFileBetween streams a file from one filesystem to another. With
// overwrite false an existing destination fails with ErrDestinationExists.
// Write times are carried over on a best-effort basis.
func CopyFileBetween(ctx context.Context, src FileReader, srcPath UPath, dst FileSystem, dstPath UPath, overwrite bool) error {
	return copyFileAcross(ctx, src, srcPath, dst, dstPath, overwrite)
}

func copyFileAcross(ctx context.Context, src FileReader, srcPath UPath, dst FileSystem, dstPath UPath, overwrite bool) error {
	if !overwrite {
		exists, err := dst.FileExists(ctx, dstPath)
		if err != nil {
			return err
		}
		if exists {
			return &PathError{Op: "copyfile", Path: dstPath, Err: ErrDestinationExists}
		}
	}

	in, err := src.OpenRead(ctx, srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := dst.OpenFile(ctx, dstPath, OpenModeCreate, AccessWrite, ShareNone)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	// metadata carry-over is best effort
	if mtime, err := src.LastWriteTime(ctx, srcPath); err == nil && !mtime.Equal(DefaultFileTime) {
		_ = dst.SetLastWriteTime(ctx, dstPath, mtime)
	}
	return nil
}

// CopyDirectoryBetween recursively copies a directory tree from one
// filesystem to another.
func CopyDirectoryBetween(ctx context.Context, src FileReader, srcPath UPath, dst FileSystem, dstPath UPath, overwrite bool) error {
	if err := dst.CreateDirectory(ctx, dstPath); err != nil {
		return err
	}
	for p, err := range src.EnumeratePaths(ctx, srcPath, "*", false, SearchBoth) {
		if err != nil {
			return err
		}
		rel, ok := stripPrefixPath(p, srcPath)
		if !ok {
			return &PathError{Op: "copydir", Path: p, Err: ErrInvariant}
		}
		target := dstPath.Join(rel.ToRelative())
		isDir, derr := src.DirectoryExists(ctx, p)
		if derr != nil {
			return derr
		}
		if isDir {
			if err := CopyDirectoryBetween(ctx, src, p, dst, target, overwrite); err != nil {
				return err
			}
			continue
		}
		if err := copyFileAcross(ctx, src, p, dst, target, overwrite); err != nil {
			return err
		}
	}
	return nil
}
