package asar

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/hack3ric/hive-asar/internal/header"
)

// File is a streaming cursor over one archive member: a bounded byte range
// of the shared handle with its own logical position.
//
// The cursor repositions the handle before every read, so cursors over the
// same archive interleave freely. File implements io.Reader, io.Seeker,
// io.ReaderAt and fs.File. Dropping a cursor mid-read never affects later
// operations.
type File struct {
	src    *source
	meta   *header.File
	name   string
	start  int64 // absolute start of the member's range
	end    int64 // absolute end, exclusive
	pos    int64 // start <= pos <= end
	closed bool
}

// Interface compliance.
var (
	_ fs.File     = (*File)(nil)
	_ io.Seeker   = (*File)(nil)
	_ io.ReaderAt = (*File)(nil)
)

func newFile(src *source, meta *header.File, name string, dataOffset int64) *File {
	start := dataOffset + int64(meta.Offset)
	return &File{
		src:   src,
		meta:  meta,
		name:  name,
		start: start,
		end:   start + int64(meta.Size),
		pos:   start,
	}
}

// Metadata returns the member's header entry.
func (f *File) Metadata() *FileMetadata {
	return f.meta
}

// Size returns the member's content length in bytes.
func (f *File) Size() int64 {
	return f.end - f.start
}

// Read reads up to len(p) bytes at the cursor's position and advances it.
//
// It returns io.EOF only at exhaustion and io.ErrUnexpectedEOF when the
// underlying source ends before the member's declared range.
func (f *File) Read(p []byte) (int, error) {
	if f.closed {
		return 0, fs.ErrClosed
	}
	remaining := f.end - f.pos
	if remaining == 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	if err := f.src.readFull(p, f.pos); err != nil {
		return 0, err
	}
	f.pos += int64(len(p))
	return len(p), nil
}

// Seek sets the cursor's position within the member.
//
// Positions outside [0, size] fail with ErrOutOfRange; the cursor is left
// unchanged on failure.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, fs.ErrClosed
	}
	var base int64
	switch whence {
	case io.SeekStart:
		base = f.start
	case io.SeekCurrent:
		base = f.pos
	case io.SeekEnd:
		base = f.end
	default:
		return 0, fmt.Errorf("asar: invalid seek whence %d", whence)
	}
	abs := base + offset
	if abs < f.start || abs > f.end {
		return 0, fmt.Errorf("%w: position %d of %d", ErrOutOfRange, abs-f.start, f.Size())
	}
	f.pos = abs
	return f.pos - f.start, nil
}

// ReadAt reads len(p) bytes at off within the member without touching the
// cursor's position.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if f.closed {
		return 0, fs.ErrClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("%w: negative offset", ErrOutOfRange)
	}
	if off >= f.Size() {
		return 0, io.EOF
	}
	short := false
	if max := f.Size() - off; int64(len(p)) > max {
		p = p[:max]
		short = true
	}
	if err := f.src.readFull(p, f.start+off); err != nil {
		return 0, err
	}
	if short {
		return len(p), io.EOF
	}
	return len(p), nil
}

// Stat returns synthetic file info for the member.
func (f *File) Stat() (fs.FileInfo, error) {
	return newFileInfo(f.name, f.meta), nil
}

// Close detaches the cursor. The archive's handle stays open.
func (f *File) Close() error {
	f.closed = true
	return nil
}
