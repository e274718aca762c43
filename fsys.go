package asar

import (
	"errors"
	"io"
	"io/fs"
	"sort"
	"time"

	"github.com/hack3ric/hive-asar/internal/header"
)

// Interface compliance.
var (
	_ fs.FS         = (*Archive)(nil)
	_ fs.StatFS     = (*Archive)(nil)
	_ fs.ReadFileFS = (*Archive)(nil)
	_ fs.ReadDirFS  = (*Archive)(nil)
)

// Open implements fs.FS.
//
// Files come back as streaming cursors; directories as fs.ReadDirFile
// handles over the immutable tree.
func (a *Archive) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	entry, err := header.Resolve(a.root, fsPath(name))
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: mapFSErr(err)}
	}
	switch e := entry.(type) {
	case *header.Directory:
		return &openDir{dir: e, name: name}, nil
	case *header.File:
		if e.Unpacked {
			return nil, &fs.PathError{Op: "open", Path: name, Err: ErrUnpacked}
		}
		return newFile(a.src, e, baseName(name), a.dataOffset), nil
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
}

// Stat implements fs.StatFS without touching member content.
func (a *Archive) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	entry, err := header.Resolve(a.root, fsPath(name))
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: mapFSErr(err)}
	}
	return entryInfo(baseName(name), entry), nil
}

// ReadFile implements fs.ReadFileFS.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
	}
	content, err := a.Read(fsPath(name))
	if err != nil {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: mapFSErr(err)}
	}
	return content, nil
}

// ReadDir implements fs.ReadDirFS. Entries are sorted by name as the fs
// contract requires; use List for the archive's insertion order.
func (a *Archive) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	entries, err := a.List(fsPath(name))
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: mapFSErr(err)}
	}
	dirEntries := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		dirEntries = append(dirEntries, dirEntry{entryInfo(e.Name, e.Entry)})
	}
	sort.Slice(dirEntries, func(i, j int) bool {
		return dirEntries[i].Name() < dirEntries[j].Name()
	})
	return dirEntries, nil
}

// fsPath converts an fs.ValidPath name to an archive path.
func fsPath(name string) string {
	if name == "." {
		return ""
	}
	return name
}

// mapFSErr converts resolver sentinels to their io/fs counterparts.
func mapFSErr(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fs.ErrNotExist
	case errors.Is(err, ErrInvalidPath):
		return fs.ErrInvalid
	default:
		return err
	}
}

// openDir is an fs.ReadDirFile over a directory entry.
type openDir struct {
	dir    *header.Directory
	name   string
	offset int
	sorted []fs.DirEntry
}

func (d *openDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: ErrIsADirectory}
}

func (d *openDir) Stat() (fs.FileInfo, error) {
	return dirInfo{name: baseName(d.name)}, nil
}

func (d *openDir) Close() error {
	return nil
}

func (d *openDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if d.sorted == nil {
		d.sorted = make([]fs.DirEntry, 0, d.dir.Len())
		for name, child := range d.dir.Entries() {
			d.sorted = append(d.sorted, dirEntry{entryInfo(name, child)})
		}
		sort.Slice(d.sorted, func(i, j int) bool {
			return d.sorted[i].Name() < d.sorted[j].Name()
		})
	}
	if n <= 0 {
		entries := d.sorted[d.offset:]
		d.offset = len(d.sorted)
		return entries, nil
	}
	if d.offset >= len(d.sorted) {
		return nil, io.EOF
	}
	end := d.offset + n
	if end > len(d.sorted) {
		end = len(d.sorted)
	}
	entries := d.sorted[d.offset:end]
	d.offset = end
	return entries, nil
}

// entryInfo synthesizes fs.FileInfo for a header entry.
func entryInfo(name string, entry header.Entry) fs.FileInfo {
	if f, ok := entry.(*header.File); ok {
		return newFileInfo(name, f)
	}
	return dirInfo{name: name}
}

// fileInfo is the synthetic fs.FileInfo of a file member. The format does
// not store timestamps, so ModTime is the zero time.
type fileInfo struct {
	name string
	meta *header.File
}

func newFileInfo(name string, meta *header.File) fileInfo {
	return fileInfo{name: name, meta: meta}
}

func (i fileInfo) Name() string { return i.name }
func (i fileInfo) Size() int64  { return int64(i.meta.Size) }
func (i fileInfo) Mode() fs.FileMode {
	if i.meta.Executable {
		return 0o755
	}
	return 0o644
}
func (i fileInfo) ModTime() time.Time { return time.Time{} }
func (i fileInfo) IsDir() bool        { return false }
func (i fileInfo) Sys() any           { return i.meta }

// dirInfo is the synthetic fs.FileInfo of a directory.
type dirInfo struct {
	name string
}

func (i dirInfo) Name() string       { return i.name }
func (i dirInfo) Size() int64        { return 0 }
func (i dirInfo) Mode() fs.FileMode  { return fs.ModeDir | 0o755 }
func (i dirInfo) ModTime() time.Time { return time.Time{} }
func (i dirInfo) IsDir() bool        { return true }
func (i dirInfo) Sys() any           { return nil }

// dirEntry adapts fs.FileInfo to fs.DirEntry.
type dirEntry struct {
	info fs.FileInfo
}

func (e dirEntry) Name() string               { return e.info.Name() }
func (e dirEntry) IsDir() bool                { return e.info.IsDir() }
func (e dirEntry) Type() fs.FileMode          { return e.info.Mode().Type() }
func (e dirEntry) Info() (fs.FileInfo, error) { return e.info, nil }
