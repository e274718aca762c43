package asar

import "log/slog"

// Option configures an Archive.
type Option func(*Archive)

// WithLogger attaches a structured logger to the archive. Without it, debug
// output is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) {
		a.logger = logger
	}
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithIntegrity enables SHA-256 integrity hashing at finalize time: every
// entry gets a whole-file digest plus one digest per 4MB block.
//
// Hashing requires reading each entry's content before the header is
// written. Content sources implementing io.Seeker are rewound between the
// hash and copy passes; anything else is buffered in memory.
func WithIntegrity() WriterOption {
	return func(w *Writer) {
		w.withIntegrity = true
	}
}

// WithBlockSize sets the integrity block size in bytes and implies
// WithIntegrity. A size of 0 keeps the default.
func WithBlockSize(size uint32) WriterOption {
	return func(w *Writer) {
		w.withIntegrity = true
		w.blockSize = size
	}
}

// WithWriterLogger attaches a structured logger to the writer.
func WithWriterLogger(logger *slog.Logger) WriterOption {
	return func(w *Writer) {
		w.logger = logger
	}
}

// AddOption configures a single writer entry.
type AddOption func(*pendingEntry)

// WithExecutable marks the entry as executable in the header.
func WithExecutable() AddOption {
	return func(p *pendingEntry) {
		p.file.Executable = true
	}
}
