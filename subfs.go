package vfskit

import (
	"context"
	"fmt"
)

// SubFileSystem exposes a subtree of a delegate backend as a filesystem of
// its own: a path /x on the view resolves to subPath/x on the delegate, and
// paths coming back from the delegate are asserted to lie under subPath.
type SubFileSystem struct {
	*ComposeFS
	subPath UPath
}

// NewSubFileSystem creates a rooted view of the subPath directory of
// delegate. subPath must exist as a directory on the delegate, otherwise the
// constructor fails with ErrNotExist. With owned set, closing the view
// closes the delegate.
func NewSubFileSystem(ctx context.Context, delegate FileSystem, subPath UPath, owned bool) (FileSystem, error) {
	if err := subPath.AssertAbsolute(); err != nil {
		return nil, &PathError{Op: "subfs", Path: subPath, Err: err}
	}
	ok, err := delegate.DirectoryExists(ctx, subPath)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &PathError{Op: "subfs", Path: subPath, Err: ErrNotExist}
	}

	sub := &SubFileSystem{subPath: subPath}
	sub.ComposeFS = NewComposeFS(delegate, owned,
		func(p UPath) (UPath, error) {
			return subPath.Join(p.ToRelative()), nil
		},
		func(q UPath) (UPath, error) {
			rel, ok := stripPrefixPath(q, subPath)
			if !ok {
				return UPath{}, fmt.Errorf("%w: %q is not under %q", ErrInvariant, q, subPath)
			}
			return rel, nil
		},
	)
	return NewFileSystem(sub), nil
}

// SubPath returns the delegate directory the view is rooted at.
func (s *SubFileSystem) SubPath() UPath { return s.subPath }

// stripPrefixPath rewrites a delegate path under root into an absolute path
// within the view. The root itself maps to "/".
func stripPrefixPath(p, root UPath) (UPath, bool) {
	if p == root {
		return Root, true
	}
	if !p.IsInDirectory(root, true) {
		return UPath{}, false
	}
	rest := p.String()[len(root.String()):]
	if root == Root {
		rest = "/" + rest
	}
	return newPathUnchecked(rest), true
}
