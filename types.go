package asar

import "github.com/hack3ric/hive-asar/internal/header"

// Re-export header tree types for the public API.
type (
	// Entry is a node in the header tree: either a *FileMetadata or a
	// *Directory.
	Entry = header.Entry

	// FileMetadata describes one archive member: size, offset within the
	// data region, flags and optional integrity digests.
	FileMetadata = header.File

	// Directory maps names to child entries in insertion order.
	Directory = header.Directory

	// Integrity holds the whole-file and per-block SHA-256 digests of a
	// member, computed at write time.
	Integrity = header.Integrity
)

// AlgorithmSHA256 is the only integrity algorithm the format defines.
const AlgorithmSHA256 = header.AlgorithmSHA256

// DirEntry is one (name, entry) pair of a directory listing, in the
// directory's insertion order.
type DirEntry struct {
	Name  string
	Entry Entry
}
