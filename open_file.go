package asar

import (
	"github.com/spf13/afero"
)

// FileArchive couples an Archive with the file handle it owns.
// Close must be called to release the handle.
type FileArchive struct {
	*Archive
	file afero.File
}

// Close closes the underlying file. Cursors obtained from the archive must
// not be used afterwards.
func (fa *FileArchive) Close() error {
	if fa.file == nil {
		return nil
	}
	err := fa.file.Close()
	fa.file = nil
	return err
}

// OpenFile opens and parses an archive from a path on the OS filesystem.
//
// os.File supports positionless reads, so cursors from a FileArchive never
// contend on a mutex.
func OpenFile(path string, opts ...Option) (*FileArchive, error) {
	return OpenFileFs(afero.NewOsFs(), path, opts...)
}

// OpenFileFs opens and parses an archive from a path on fsys.
func OpenFileFs(fsys afero.Fs, path string, opts ...Option) (*FileArchive, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	a, err := New(f, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &FileArchive{Archive: a, file: f}, nil
}
