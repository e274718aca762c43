package asar

import (
	"errors"

	"github.com/hack3ric/hive-asar/internal/header"
	"github.com/hack3ric/hive-asar/internal/wire"
)

// Sentinel errors re-exported from the wire codec.
var (
	// ErrMalformedFraming is returned when a declared frame length exceeds
	// the remaining input.
	ErrMalformedFraming = wire.ErrMalformedFraming

	// ErrInvalidEncoding is returned when header bytes are not valid UTF-8.
	ErrInvalidEncoding = wire.ErrInvalidEncoding

	// ErrTruncated is returned when the source ends before the declared
	// frames or file ranges complete.
	ErrTruncated = wire.ErrTruncated
)

// Sentinel errors re-exported from the header model.
var (
	// ErrInvalidHeader is returned for shapeless header nodes or files
	// missing required fields.
	ErrInvalidHeader = header.ErrInvalidHeader

	// ErrInvalidOffset is returned when a file offset string is not a
	// decimal uint64.
	ErrInvalidOffset = header.ErrInvalidOffset

	// ErrInvalidPath is returned for paths with empty, "." or ".." segments.
	ErrInvalidPath = header.ErrInvalidPath

	// ErrNotFound is returned when a path does not exist in the archive.
	ErrNotFound = header.ErrNotFound

	// ErrNotADirectory is returned when a path traverses or lists a file.
	ErrNotADirectory = header.ErrNotADirectory

	// ErrDuplicateEntry is returned when a writer path is already taken.
	ErrDuplicateEntry = header.ErrDuplicateEntry
)

// Sentinel errors specific to the asar package.
var (
	// ErrIsADirectory is returned when reading a path that names a directory.
	ErrIsADirectory = errors.New("asar: is a directory")

	// ErrOutOfRange is returned when seeking beyond a file's bounds.
	ErrOutOfRange = errors.New("asar: seek out of range")

	// ErrSizeMismatch is returned when an entry's content yields fewer bytes
	// than its declared size.
	ErrSizeMismatch = errors.New("asar: content size mismatch")

	// ErrUnpacked is returned when reading an entry whose content is stored
	// outside the archive.
	ErrUnpacked = errors.New("asar: unpacked file is not supported")
)
