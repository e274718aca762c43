package asar

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/hack3ric/hive-asar/internal/header"
)

// Archive provides random access to the members of a parsed asar archive.
//
// An Archive is immutable after New: resolution and listing touch only the
// in-memory tree, while Read and OpenStream go through the shared handle
// gate. Archive implements fs.FS, fs.StatFS, fs.ReadFileFS and
// fs.ReadDirFS.
type Archive struct {
	src        *source
	root       *header.Directory
	dataOffset int64
	dataSize   int64
	logger     *slog.Logger
}

// New parses the archive prefix from r and returns an Archive over it.
//
// r is retained as the shared handle for all subsequent reads. Opening is
// atomic: any framing, header or bounds failure yields no usable Archive.
// Sources implementing io.ReaderAt are read positionlessly; plain seekers
// are serialized behind a mutual-exclusion gate.
func New(r io.ReadSeeker, opts ...Option) (*Archive, error) {
	src := newSource(r)
	headerJSON, dataOffset, err := src.readPrefix()
	if err != nil {
		return nil, err
	}

	root, err := header.Parse(headerJSON)
	if err != nil {
		return nil, err
	}

	total, err := src.size()
	if err != nil {
		return nil, err
	}
	if total < dataOffset {
		return nil, fmt.Errorf("%w: source ends inside header", ErrTruncated)
	}

	a := &Archive{
		src:        src,
		root:       root,
		dataOffset: dataOffset,
		dataSize:   total - dataOffset,
	}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.validateTree("", root); err != nil {
		return nil, err
	}
	a.log().Debug("archive opened", "data_offset", dataOffset, "data_size", a.dataSize)
	return a, nil
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// validateTree checks that every packed file's range lies inside the data
// region, so reads can trust header offsets.
func (a *Archive) validateTree(path string, dir *header.Directory) error {
	for name, entry := range dir.Entries() {
		child := name
		if path != "" {
			child = path + "/" + name
		}
		switch e := entry.(type) {
		case *header.Directory:
			if err := a.validateTree(child, e); err != nil {
				return err
			}
		case *header.File:
			if e.Unpacked {
				continue
			}
			if e.Offset > uint64(a.dataSize) || e.Size > uint64(a.dataSize)-e.Offset {
				return fmt.Errorf("%w: %s extends past data region", ErrTruncated, child)
			}
		}
	}
	return nil
}

// Root returns the archive's root directory.
func (a *Archive) Root() *Directory {
	return a.root
}

// DataOffset returns the absolute position where the data region starts.
func (a *Archive) DataOffset() int64 {
	return a.dataOffset
}

// Entry resolves a slash-separated path to its header entry.
//
// The empty path resolves to the root directory.
func (a *Archive) Entry(path string) (Entry, error) {
	return header.Resolve(a.root, path)
}

// resolveFile resolves path and requires a packed file entry.
func (a *Archive) resolveFile(path string) (*header.File, error) {
	entry, err := header.Resolve(a.root, path)
	if err != nil {
		return nil, err
	}
	file, ok := entry.(*header.File)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrIsADirectory, path)
	}
	if file.Unpacked {
		return nil, fmt.Errorf("%w: %q", ErrUnpacked, path)
	}
	return file, nil
}

// Read returns the full content of the member at path.
//
// It fails with ErrIsADirectory for directories, ErrUnpacked for entries
// stored outside the archive, and io.ErrUnexpectedEOF when the source ends
// before the declared size.
func (a *Archive) Read(path string) ([]byte, error) {
	file, err := a.resolveFile(path)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, file.Size)
	if err := a.src.readFull(buf, a.dataOffset+int64(file.Offset)); err != nil {
		return nil, fmt.Errorf("asar: read %q: %w", path, err)
	}
	return buf, nil
}

// OpenStream returns a streaming cursor over the member at path,
// positioned at its start.
//
// Any number of cursors may be open at once; they share the archive's
// handle and interleave safely.
func (a *Archive) OpenStream(path string) (*File, error) {
	file, err := a.resolveFile(path)
	if err != nil {
		return nil, err
	}
	return newFile(a.src, file, baseName(path), a.dataOffset), nil
}

// List returns the children of the directory at path in insertion order.
//
// It fails with ErrNotADirectory when path names a file.
func (a *Archive) List(path string) ([]DirEntry, error) {
	entry, err := header.Resolve(a.root, path)
	if err != nil {
		return nil, err
	}
	dir, ok := entry.(*header.Directory)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotADirectory, path)
	}

	entries := make([]DirEntry, 0, dir.Len())
	for name, child := range dir.Entries() {
		entries = append(entries, DirEntry{Name: name, Entry: child})
	}
	return entries, nil
}

// baseName returns the final segment of a slash-separated path.
func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
