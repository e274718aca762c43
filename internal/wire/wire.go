// Package wire implements the outer binary framing of asar archives.
//
// An archive starts with a 4-byte little-endian length N, followed by an
// N-byte inner frame. The inner frame holds a 4-byte little-endian length M
// and M bytes of UTF-8 header JSON, zero-padded to a 4-byte boundary. The
// data region begins at 4+N (always a multiple of 4). The codec knows
// nothing about the header's tree structure.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// MaxHeaderSize caps the inner frame length accepted by Read (256MB).
// Headers near this size describe hundreds of millions of entries; anything
// larger is a corrupt or hostile length word.
const MaxHeaderSize = 256 << 20

// Sentinel errors.
var (
	// ErrMalformedFraming is returned when a declared length exceeds the
	// remaining input or the frame arithmetic is inconsistent.
	ErrMalformedFraming = errors.New("asar: malformed framing")

	// ErrInvalidEncoding is returned when the header bytes are not valid UTF-8.
	ErrInvalidEncoding = errors.New("asar: header is not valid UTF-8")

	// ErrTruncated is returned when the source ends before the declared
	// frames complete.
	ErrTruncated = errors.New("asar: truncated archive")
)

// Read decodes the archive prefix from r.
//
// It consumes exactly dataOffset bytes and returns the header JSON with
// trailing padding discarded. dataOffset is always a multiple of 4.
func Read(r io.Reader) (headerJSON []byte, dataOffset int64, err error) {
	frameLen, err := readLen(r)
	if err != nil {
		return nil, 0, err
	}
	if frameLen > MaxHeaderSize {
		return nil, 0, fmt.Errorf("%w: frame length %d exceeds limit", ErrMalformedFraming, frameLen)
	}

	pad := padding(frameLen)
	frame := make([]byte, int(frameLen)+pad)
	if _, err := io.ReadFull(r, frame); err != nil {
		return nil, 0, truncated(err)
	}

	headerJSON, err = unpackFrame(frame[:frameLen])
	if err != nil {
		return nil, 0, err
	}
	return headerJSON, 4 + int64(frameLen) + int64(pad), nil
}

// Decode decodes the archive prefix from an in-memory byte slice.
//
// Bytes at and beyond the returned dataOffset belong to the data region.
func Decode(b []byte) (headerJSON []byte, dataOffset int64, err error) {
	if len(b) < 4 {
		return nil, 0, ErrTruncated
	}
	frameLen := binary.LittleEndian.Uint32(b)
	if frameLen > MaxHeaderSize {
		return nil, 0, fmt.Errorf("%w: frame length %d exceeds limit", ErrMalformedFraming, frameLen)
	}
	end := 4 + int(frameLen)
	if end > len(b) {
		return nil, 0, fmt.Errorf("%w: frame length %d exceeds %d remaining bytes", ErrMalformedFraming, frameLen, len(b)-4)
	}

	headerJSON, err = unpackFrame(b[4:end])
	if err != nil {
		return nil, 0, err
	}
	return headerJSON, 4 + int64(frameLen) + int64(padding(frameLen)), nil
}

// Encode produces the archive prefix for the given header JSON.
//
// The returned prefix is dataOffset bytes long; file contents follow it
// directly.
func Encode(headerJSON []byte) (prefix []byte, dataOffset int64, err error) {
	if !utf8.Valid(headerJSON) {
		return nil, 0, ErrInvalidEncoding
	}
	headerLen := len(headerJSON)
	if headerLen > MaxHeaderSize-4 {
		return nil, 0, fmt.Errorf("%w: header length %d exceeds limit", ErrMalformedFraming, headerLen)
	}

	innerLen := 4 + headerLen
	pad := padding(uint32(innerLen))
	frameLen := innerLen + pad

	prefix = make([]byte, 4+frameLen)
	binary.LittleEndian.PutUint32(prefix, uint32(frameLen))
	binary.LittleEndian.PutUint32(prefix[4:], uint32(headerLen))
	copy(prefix[8:], headerJSON)
	return prefix, int64(len(prefix)), nil
}

// unpackFrame extracts the header JSON from an inner frame, discarding
// trailing padding.
func unpackFrame(frame []byte) ([]byte, error) {
	if len(frame) < 4 {
		return nil, fmt.Errorf("%w: inner frame of %d bytes", ErrMalformedFraming, len(frame))
	}
	headerLen := binary.LittleEndian.Uint32(frame)
	if int64(headerLen) > int64(len(frame)-4) {
		return nil, fmt.Errorf("%w: header length %d exceeds %d remaining bytes", ErrMalformedFraming, headerLen, len(frame)-4)
	}
	headerJSON := frame[4 : 4+headerLen]
	if !utf8.Valid(headerJSON) {
		return nil, ErrInvalidEncoding
	}
	return headerJSON, nil
}

// padding returns the byte count needed to round n up to a 4-byte boundary.
func padding(n uint32) int {
	if r := n % 4; r != 0 {
		return int(4 - r)
	}
	return 0
}

// readLen reads a little-endian uint32 length word.
func readLen(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, truncated(err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// truncated maps short-read errors to ErrTruncated, passing real I/O
// failures through.
func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}
