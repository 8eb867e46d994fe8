package vfskit

import (
	"fmt"
	"strings"
)

// UPath is an immutable, normalized, forward-slash path value.
//
// A UPath is always canonical: backslashes are converted to "/", runs of
// separators are collapsed, "." and ".." segments are resolved (".." at the
// absolute root stays at the root), and there is no trailing separator except
// for the root "/" itself. Two UPath values are equal exactly when their
// canonical strings are equal, so UPath is safe to use as a map key and to
// compare with ==.
//
// The zero value is the null path, which carries no value at all and is
// distinct from the empty path NewPath("").
type UPath struct {
	full  string
	valid bool
}

// Root is the absolute root path "/".
var Root = UPath{full: "/", valid: true}

// NewPath canonicalizes s and returns it as a UPath.
func NewPath(s string) UPath {
	return UPath{full: canonicalizePath(s), valid: true}
}

// newPathUnchecked wraps a string that is already known to be canonical.
// Callers must guarantee canonicality; it exists so that internal code which
// manipulates canonical strings directly can skip re-parsing.
func newPathUnchecked(s string) UPath {
	return UPath{full: s, valid: true}
}

// canonicalizePath normalizes an arbitrary path string.
func canonicalizePath(s string) string {
	if strings.ContainsRune(s, '\\') {
		s = strings.ReplaceAll(s, "\\", "/")
	}
	absolute := strings.HasPrefix(s, "/")

	segments := strings.Split(s, "/")
	out := segments[:0:0]
	for _, seg := range segments {
		switch seg {
		case "", ".":
			// dropped
		case "..":
			if n := len(out); n > 0 && out[n-1] != ".." {
				out = out[:n-1]
			} else if !absolute {
				out = append(out, "..")
			}
			// ".." at the absolute root stays at the root
		default:
			out = append(out, seg)
		}
	}

	joined := strings.Join(out, "/")
	if absolute {
		return "/" + joined
	}
	return joined
}

// String returns the canonical string form. The null path formats as "".
func (p UPath) String() string { return p.full }

// IsNull reports whether p is the null path (the zero value).
func (p UPath) IsNull() bool { return !p.valid }

// IsEmpty reports whether p is the empty path "".
func (p UPath) IsEmpty() bool { return p.valid && p.full == "" }

// IsAbsolute reports whether p starts at the root "/".
func (p UPath) IsAbsolute() bool { return p.valid && strings.HasPrefix(p.full, "/") }

// IsRelative reports whether p is a non-null path that is not absolute.
func (p UPath) IsRelative() bool { return p.valid && !strings.HasPrefix(p.full, "/") }

// Join resolves other against p. If other is absolute it is returned
// unchanged; if p is null or empty, other is returned; a null or empty other
// leaves p unchanged.
func (p UPath) Join(other UPath) UPath {
	if other.IsNull() || other.IsEmpty() {
		return p
	}
	if other.IsAbsolute() {
		return other
	}
	if p.IsNull() || p.IsEmpty() {
		return other
	}
	return NewPath(p.full + "/" + other.full)
}

// JoinString is shorthand for p.Join(NewPath(s)).
func (p UPath) JoinString(s string) UPath { return p.Join(NewPath(s)) }

// Parent returns the directory containing p. The parent of the root is the
// root; the parent of a single relative name is the empty path.
func (p UPath) Parent() UPath {
	if p.IsNull() || p.IsEmpty() {
		return UPath{}
	}
	if p.full == "/" {
		return Root
	}
	i := strings.LastIndexByte(p.full, '/')
	switch {
	case i < 0:
		return newPathUnchecked("")
	case i == 0:
		return Root
	default:
		return newPathUnchecked(p.full[:i])
	}
}

// Name returns the final segment of p, or "" when there is none.
func (p UPath) Name() string {
	if !p.valid || p.full == "/" {
		return ""
	}
	if i := strings.LastIndexByte(p.full, '/'); i >= 0 {
		return p.full[i+1:]
	}
	return p.full
}

// NameWithoutExtension returns the final segment with its extension removed.
func (p UPath) NameWithoutExtension() string {
	name := p.Name()
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

// Extension returns the final segment's extension including the leading dot,
// or "" when the name has no extension.
func (p UPath) Extension() string {
	name := p.Name()
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}

// IsInDirectory reports whether p lies inside dir. A path is considered to be
// inside the directory it equals. When recursive is false only direct
// children (and the directory itself) qualify.
func (p UPath) IsInDirectory(dir UPath, recursive bool) bool {
	if p.IsNull() || dir.IsNull() {
		return false
	}
	if p.IsAbsolute() != dir.IsAbsolute() {
		return false
	}
	if !strings.HasPrefix(p.full, dir.full) {
		return false
	}
	rest := p.full[len(dir.full):]
	if rest == "" {
		return true
	}
	if dir.full != "/" {
		if rest[0] != '/' {
			return false
		}
		rest = rest[1:]
	}
	if !recursive && strings.ContainsRune(rest, '/') {
		return false
	}
	return true
}

// ToRelative strips the leading "/" from an absolute path. Relative paths are
// returned unchanged.
func (p UPath) ToRelative() UPath {
	if !p.IsAbsolute() {
		return p
	}
	return newPathUnchecked(strings.TrimPrefix(p.full, "/"))
}

// ToAbsolute anchors a relative path at the root. Absolute paths are returned
// unchanged.
func (p UPath) ToAbsolute() UPath {
	if p.IsNull() || p.IsAbsolute() {
		return p
	}
	return newPathUnchecked("/" + p.full)
}

// AssertNotNull returns ErrInvalidPath when p is the null path.
func (p UPath) AssertNotNull() error {
	if p.IsNull() {
		return fmt.Errorf("%w: path is null", ErrInvalidPath)
	}
	return nil
}

// AssertAbsolute returns ErrInvalidPath unless p is absolute.
func (p UPath) AssertAbsolute() error {
	if err := p.AssertNotNull(); err != nil {
		return err
	}
	if !p.IsAbsolute() {
		return fmt.Errorf("%w: path %q is not absolute", ErrInvalidPath, p.full)
	}
	return nil
}
