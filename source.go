package asar

import (
	"errors"
	"io"
	"sync"

	"github.com/hack3ric/hive-asar/internal/wire"
)

// source gates a shared random-access handle.
//
// Every read is a seek immediately followed by a read on the same handle.
// The mutex makes that pair one exclusive unit so concurrent cursors cannot
// clobber each other's position; callers queue in arrival order and later
// units always re-seek, so an abandoned read cannot poison the handle.
//
// Sources that already implement io.ReaderAt skip the gate entirely: ReadAt
// is positionless and safe for concurrent use by contract.
type source struct {
	mu sync.Mutex
	rs io.ReadSeeker
	ra io.ReaderAt // non-nil when rs supports positionless reads
}

func newSource(rs io.ReadSeeker) *source {
	s := &source{rs: rs}
	if ra, ok := rs.(io.ReaderAt); ok {
		s.ra = ra
	}
	return s
}

// readFull fills p from absolute offset off, returning io.ErrUnexpectedEOF
// when the source ends before p is full.
func (s *source) readFull(p []byte, off int64) error {
	if len(p) == 0 {
		return nil
	}
	if s.ra != nil {
		n, err := s.ra.ReadAt(p, off)
		if n == len(p) {
			return nil
		}
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.rs.Seek(off, io.SeekStart); err != nil {
		return err
	}
	_, err := io.ReadFull(s.rs, p)
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// readPrefix decodes the archive prefix from the start of the handle as a
// single exclusive unit.
func (s *source) readPrefix() (headerJSON []byte, dataOffset int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.rs.Seek(0, io.SeekStart); err != nil {
		return nil, 0, err
	}
	return wire.Read(s.rs)
}

// size returns the total length of the handle.
func (s *source) size() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rs.Seek(0, io.SeekEnd)
}
