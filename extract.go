package asar

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/hack3ric/hive-asar/internal/header"
)

// defaultExtractConcurrency bounds parallel member reads during extraction.
const defaultExtractConcurrency = 4

// ExtractOption configures extraction.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	concurrency int
}

// WithExtractConcurrency sets the number of members extracted in parallel
// (default 4). Reads stay safe at any concurrency because every member read
// is an exclusive seek+read unit on the shared handle.
func WithExtractConcurrency(n int) ExtractOption {
	return func(cfg *extractConfig) {
		if n > 0 {
			cfg.concurrency = n
		}
	}
}

// Extract writes the archive's whole tree below dest on fsys.
//
// Directories, including empty ones, are created first; member contents are
// then copied with bounded concurrency. Unpacked entries are skipped.
func (a *Archive) Extract(ctx context.Context, fsys afero.Fs, dest string, opts ...ExtractOption) error {
	cfg := extractConfig{concurrency: defaultExtractConcurrency}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := fsys.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	var files []extractMember
	if err := a.collectMembers(fsys, dest, "", a.root, &files); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)
	for _, m := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return a.extractFile(fsys, dest, m)
		})
	}
	return g.Wait()
}

// ExtractTo extracts the archive below dest on the OS filesystem.
func (a *Archive) ExtractTo(ctx context.Context, dest string, opts ...ExtractOption) error {
	return a.Extract(ctx, afero.NewOsFs(), dest, opts...)
}

type extractMember struct {
	path string
	file *header.File
}

// collectMembers creates the directory skeleton and gathers packed files.
func (a *Archive) collectMembers(fsys afero.Fs, dest, prefix string, dir *header.Directory, files *[]extractMember) error {
	for name, entry := range dir.Entries() {
		path := name
		if prefix != "" {
			path = prefix + "/" + name
		}
		switch e := entry.(type) {
		case *header.Directory:
			if err := fsys.MkdirAll(filepath.Join(dest, filepath.FromSlash(path)), 0o755); err != nil {
				return err
			}
			if err := a.collectMembers(fsys, dest, path, e, files); err != nil {
				return err
			}
		case *header.File:
			if e.Unpacked {
				a.log().Debug("skipped unpacked entry", "path", path)
				continue
			}
			*files = append(*files, extractMember{path: path, file: e})
		}
	}
	return nil
}

// extractFile copies one member to its destination path.
func (a *Archive) extractFile(fsys afero.Fs, dest string, m extractMember) error {
	src := newFile(a.src, m.file, baseName(m.path), a.dataOffset)

	perm := fs.FileMode(0o644)
	if m.file.Executable {
		perm = 0o755
	}
	destPath := filepath.Join(dest, filepath.FromSlash(m.path))
	dst, err := fsys.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("asar: extract %q: %w", m.path, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("asar: extract %q: %w", m.path, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("asar: extract %q: %w", m.path, err)
	}
	return nil
}
