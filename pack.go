package asar

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Pack walks the tree rooted at dir on fsys and writes an archive of every
// regular file to dst, in lexical walk order.
//
// Symbolic links and irregular files are skipped, and empty directories are
// not preserved. Files with any execute bit set are marked executable in
// the header.
func Pack(ctx context.Context, fsys afero.Fs, dir string, dst io.Writer, opts ...WriterOption) error {
	w := NewWriter(opts...)

	var sources []io.Closer
	defer func() {
		for _, src := range sources {
			src.Close()
		}
	}()

	err := afero.Walk(fsys, dir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		src := &lazyFile{fsys: fsys, path: path}
		sources = append(sources, src)

		var addOpts []AddOption
		if info.Mode()&0o111 != 0 {
			addOpts = append(addOpts, WithExecutable())
		}
		if info.Size() < 0 {
			return ErrSizeMismatch
		}
		return w.Add(filepath.ToSlash(rel), uint64(info.Size()), src, addOpts...)
	})
	if err != nil {
		return err
	}
	return w.Finalize(dst)
}

// PackDir packs a directory on the OS filesystem.
func PackDir(ctx context.Context, dir string, dst io.Writer, opts ...WriterOption) error {
	return Pack(ctx, afero.NewOsFs(), dir, dst, opts...)
}

// lazyFile defers opening a source file until the writer first reads it,
// keeping the number of simultaneously open handles at one during Finalize.
type lazyFile struct {
	fsys afero.Fs
	path string
	f    afero.File
}

func (l *lazyFile) open() error {
	if l.f != nil {
		return nil
	}
	f, err := l.fsys.Open(l.path)
	if err != nil {
		return err
	}
	l.f = f
	return nil
}

func (l *lazyFile) Read(p []byte) (int, error) {
	if err := l.open(); err != nil {
		return 0, err
	}
	return l.f.Read(p)
}

func (l *lazyFile) Seek(offset int64, whence int) (int64, error) {
	if err := l.open(); err != nil {
		return 0, err
	}
	return l.f.Seek(offset, whence)
}

func (l *lazyFile) Close() error {
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
