package asar

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hack3ric/hive-asar/internal/header"
	"github.com/hack3ric/hive-asar/internal/integrity"
	"github.com/hack3ric/hive-asar/internal/wire"
)

// Writer assembles an asar archive: entries accumulate in insertion order,
// offsets are assigned as the running total of prior sizes, and Finalize
// streams header and content to a sink in one pass.
//
// A Writer is single-use and not safe for concurrent use.
type Writer struct {
	root          *header.Directory
	entries       []*pendingEntry
	paths         map[string]struct{}
	withIntegrity bool
	blockSize     uint32
	finalized     bool
	logger        *slog.Logger
}

// pendingEntry is a member waiting for Finalize: its content source is
// consumed exactly once (twice when integrity hashing rewinds a seeker).
type pendingEntry struct {
	path    string
	size    uint64
	content io.Reader
	file    *header.File
}

var errFinalized = errors.New("asar: writer already finalized")

// NewWriter creates an empty archive writer.
func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{
		root:  header.NewDirectory(),
		paths: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// log returns the logger, falling back to a discard logger if nil.
func (w *Writer) log() *slog.Logger {
	if w.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.logger
}

// Add appends a member at the slash-separated path.
//
// Intermediate directories are created implicitly. Exactly size bytes of
// content are consumed at finalize time; a source yielding fewer bytes
// fails Finalize with ErrSizeMismatch. Duplicate paths fail with
// ErrDuplicateEntry, and a path traversing an existing file with
// ErrNotADirectory.
func (w *Writer) Add(path string, size uint64, content io.Reader, opts ...AddOption) error {
	if w.finalized {
		return errFinalized
	}
	segments, err := header.SplitPath(path)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if _, ok := w.paths[path]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateEntry, path)
	}

	dir, err := w.root.MkdirAll(segments[:len(segments)-1])
	if err != nil {
		return fmt.Errorf("asar: add %q: %w", path, err)
	}

	entry := &pendingEntry{
		path:    path,
		size:    size,
		content: content,
		file:    &header.File{Size: size},
	}
	for _, opt := range opts {
		opt(entry)
	}
	if err := dir.Add(segments[len(segments)-1], entry.file); err != nil {
		return fmt.Errorf("%w: %q", ErrDuplicateEntry, path)
	}
	w.paths[path] = struct{}{}
	w.entries = append(w.entries, entry)
	return nil
}

// AddDir creates an empty directory at path, with intermediate directories
// as needed. Adding files below it later is allowed.
func (w *Writer) AddDir(path string) error {
	if w.finalized {
		return errFinalized
	}
	segments, err := header.SplitPath(path)
	if err != nil {
		return err
	}
	if _, err := w.root.MkdirAll(segments); err != nil {
		return fmt.Errorf("asar: add dir %q: %w", path, err)
	}
	return nil
}

// Finalize assigns offsets, serializes the header and streams every
// entry's content to dst in insertion order.
//
// The write is all-or-nothing from the caller's view: on failure the sink's
// partial bytes are undefined and discarding them is the caller's job. The
// Writer cannot be reused afterwards.
func (w *Writer) Finalize(dst io.Writer) error {
	if w.finalized {
		return errFinalized
	}
	w.finalized = true

	var offset uint64
	for _, entry := range w.entries {
		entry.file.Offset = offset
		offset += entry.size
	}

	if w.withIntegrity {
		if err := w.hashEntries(); err != nil {
			return err
		}
	}

	headerJSON, err := header.Serialize(w.root)
	if err != nil {
		return err
	}
	prefix, dataOffset, err := wire.Encode(headerJSON)
	if err != nil {
		return err
	}
	if _, err := dst.Write(prefix); err != nil {
		return fmt.Errorf("asar: write header: %w", err)
	}
	w.log().Debug("header written", "entries", len(w.entries), "data_offset", dataOffset)

	for _, entry := range w.entries {
		n, err := io.Copy(dst, io.LimitReader(entry.content, int64(entry.size)))
		if err != nil {
			return fmt.Errorf("asar: write %q: %w", entry.path, err)
		}
		if uint64(n) != entry.size {
			return fmt.Errorf("%w: %q yielded %d of %d bytes", ErrSizeMismatch, entry.path, n, entry.size)
		}
	}
	return nil
}

// hashEntries runs the integrity hasher over every entry's content before
// the header is serialized. Seekable sources are rewound for the copy pass;
// others are replaced by an in-memory buffer filled while hashing.
func (w *Writer) hashEntries() error {
	for _, entry := range w.entries {
		hasher := integrity.NewHasher(w.blockSize)

		var n int64
		var err error
		if seeker, ok := entry.content.(io.Seeker); ok {
			var pos int64
			if pos, err = seeker.Seek(0, io.SeekCurrent); err != nil {
				return fmt.Errorf("asar: hash %q: %w", entry.path, err)
			}
			if n, err = io.Copy(hasher, io.LimitReader(entry.content, int64(entry.size))); err != nil {
				return fmt.Errorf("asar: hash %q: %w", entry.path, err)
			}
			if _, err = seeker.Seek(pos, io.SeekStart); err != nil {
				return fmt.Errorf("asar: hash %q: %w", entry.path, err)
			}
		} else {
			buf := &bytes.Buffer{}
			tee := io.TeeReader(io.LimitReader(entry.content, int64(entry.size)), buf)
			if n, err = io.Copy(hasher, tee); err != nil {
				return fmt.Errorf("asar: hash %q: %w", entry.path, err)
			}
			entry.content = buf
		}
		if uint64(n) != entry.size {
			return fmt.Errorf("%w: %q yielded %d of %d bytes", ErrSizeMismatch, entry.path, n, entry.size)
		}

		integ := hasher.Sum()
		entry.file.Integrity = &integ
	}
	return nil
}
