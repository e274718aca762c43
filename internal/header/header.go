// Package header implements the asar header tree: a typed recursive model
// of directory and file entries, the order-preserving JSON codec for it,
// and slash-path resolution over it.
package header

import (
	"errors"
	"iter"
)

// Sentinel errors.
var (
	// ErrInvalidHeader is returned for shapeless nodes or files missing
	// required fields.
	ErrInvalidHeader = errors.New("asar: invalid header")

	// ErrInvalidOffset is returned when a file offset string is not a
	// decimal uint64.
	ErrInvalidOffset = errors.New("asar: invalid file offset")

	// ErrInvalidPath is returned for paths with empty, "." or ".." segments.
	ErrInvalidPath = errors.New("asar: invalid path")

	// ErrNotFound is returned when a path segment does not exist.
	ErrNotFound = errors.New("asar: entry not found")

	// ErrNotADirectory is returned when a path traverses a file entry.
	ErrNotADirectory = errors.New("asar: not a directory")

	// ErrDuplicateEntry is returned when a directory already holds the name.
	ErrDuplicateEntry = errors.New("asar: duplicate entry")
)

// AlgorithmSHA256 is the only integrity algorithm the format defines.
const AlgorithmSHA256 = "SHA256"

// Entry is a node in the header tree: either a *File or a *Directory.
// The variant is decided once at parse time; call sites switch on the
// concrete type instead of re-probing JSON shape.
type Entry interface {
	isEntry()
}

// File is a leaf entry describing one archive member.
type File struct {
	// Size is the member's content length in bytes.
	Size uint64

	// Offset is the content position relative to the data-region start.
	// Meaningless when Unpacked is set.
	Offset uint64

	// Executable marks the member as executable.
	Executable bool

	// Unpacked marks content stored outside the archive. The flag round-trips
	// through the codec; reading unpacked members is not supported.
	Unpacked bool

	// Integrity holds optional content digests computed at write time.
	Integrity *Integrity
}

func (*File) isEntry() {}

// Integrity holds the whole-file and per-block digests of a member.
type Integrity struct {
	// Algorithm names the digest algorithm, currently always SHA256.
	Algorithm string

	// Hash is the hex digest of the whole content.
	Hash string

	// BlockSize is the byte length of each hashed block.
	BlockSize uint32

	// Blocks holds one hex digest per full or trailing partial block.
	Blocks []string
}

// Directory is an interior entry mapping names to children.
// Children keep insertion order and names are unique.
type Directory struct {
	names    []string
	children map[string]Entry
}

func (*Directory) isEntry() {}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{children: make(map[string]Entry)}
}

// Add inserts a child under name, failing with ErrDuplicateEntry when the
// name is taken.
func (d *Directory) Add(name string, entry Entry) error {
	if _, ok := d.children[name]; ok {
		return ErrDuplicateEntry
	}
	if d.children == nil {
		d.children = make(map[string]Entry)
	}
	d.names = append(d.names, name)
	d.children[name] = entry
	return nil
}

// Get returns the child under name.
func (d *Directory) Get(name string) (Entry, bool) {
	e, ok := d.children[name]
	return e, ok
}

// Len returns the number of children.
func (d *Directory) Len() int {
	return len(d.names)
}

// Entries iterates children in insertion order.
func (d *Directory) Entries() iter.Seq2[string, Entry] {
	return func(yield func(string, Entry) bool) {
		for _, name := range d.names {
			if !yield(name, d.children[name]) {
				return
			}
		}
	}
}

// childDir returns the directory under name, creating it if absent.
// It fails with ErrNotADirectory when a file already holds the name.
func (d *Directory) childDir(name string) (*Directory, error) {
	if e, ok := d.children[name]; ok {
		dir, ok := e.(*Directory)
		if !ok {
			return nil, ErrNotADirectory
		}
		return dir, nil
	}
	dir := NewDirectory()
	if err := d.Add(name, dir); err != nil {
		return nil, err
	}
	return dir, nil
}

// MkdirAll walks segments from d, creating intermediate directories, and
// returns the final directory. Traversing a file fails with ErrNotADirectory.
func (d *Directory) MkdirAll(segments []string) (*Directory, error) {
	dir := d
	for _, seg := range segments {
		var err error
		if dir, err = dir.childDir(seg); err != nil {
			return nil, err
		}
	}
	return dir, nil
}
