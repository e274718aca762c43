// Package asar reads and writes Electron's asar archive format: a single
// file bundling a JSON-described directory tree followed by the raw bytes
// of every member.
//
// Reads are lazy and seek-based. Opening an archive parses only the header;
// member content is fetched on demand by resolving a slash-separated path
// to a byte range in the data region. Many streaming cursors can share one
// underlying handle: every access is a seek+read pair executed as one
// exclusive unit, so interleaved reads never clobber each other.
//
// The package implements fs.FS and related interfaces for stdlib
// compatibility.
package asar
