package header

import (
	"fmt"
	"strings"
)

// SplitPath splits a slash-separated archive path into segments.
//
// The empty path yields no segments (the root). Empty, "." and ".."
// segments are rejected outright; archive paths are always relative to the
// root and never traverse upward.
func SplitPath(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	segments := strings.Split(path, "/")
	for _, seg := range segments {
		switch seg {
		case "", ".", "..":
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return segments, nil
}

// Resolve walks the tree from root by slash-separated path.
//
// Every intermediate segment must name a directory; the final segment may
// name either kind. The empty path resolves to root itself.
func Resolve(root *Directory, path string) (Entry, error) {
	segments, err := SplitPath(path)
	if err != nil {
		return nil, err
	}

	var entry Entry = root
	for i, seg := range segments {
		dir, ok := entry.(*Directory)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotADirectory, strings.Join(segments[:i], "/"))
		}
		entry, ok = dir.Get(seg)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, path)
		}
	}
	return entry, nil
}
