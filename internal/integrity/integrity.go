// Package integrity computes the whole-file and block digests stored in
// asar file entries. Hashing happens at write time only; readers surface
// the stored digests without re-verifying them.
package integrity

import (
	"github.com/opencontainers/go-digest"

	"github.com/hack3ric/hive-asar/internal/header"
)

// DefaultBlockSize is the block length used when none is configured.
// Electron cuts 4MB blocks.
const DefaultBlockSize uint32 = 4 << 20

// Hasher accumulates content into a whole-file digest and fixed-size block
// digests. Block boundaries depend only on the cumulative byte count, so
// the result is identical however the input is split across Write calls.
//
// Hasher implements io.Writer and never fails.
type Hasher struct {
	blockSize uint32
	whole     digest.Digester
	block     digest.Digester
	blockFill uint32
	blocks    []string
}

// NewHasher returns a Hasher cutting blocks of blockSize bytes.
// A blockSize of 0 selects DefaultBlockSize.
func NewHasher(blockSize uint32) *Hasher {
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}
	return &Hasher{
		blockSize: blockSize,
		whole:     digest.SHA256.Digester(),
		block:     digest.SHA256.Digester(),
	}
}

// Write feeds content into the whole-file digest and the current block,
// finalizing a block digest each time the block fills.
func (h *Hasher) Write(p []byte) (int, error) {
	total := len(p)
	for len(p) > 0 {
		room := h.blockSize - h.blockFill
		n := uint32(len(p))
		if n > room {
			n = room
		}
		chunk := p[:n]
		h.whole.Hash().Write(chunk)
		h.block.Hash().Write(chunk)
		h.blockFill += n
		if h.blockFill == h.blockSize {
			h.flushBlock()
		}
		p = p[n:]
	}
	return total, nil
}

// Sum finalizes any partial trailing block and returns the integrity
// record. A zero-byte input yields no blocks.
func (h *Hasher) Sum() header.Integrity {
	if h.blockFill > 0 {
		h.flushBlock()
	}
	return header.Integrity{
		Algorithm: header.AlgorithmSHA256,
		Hash:      h.whole.Digest().Encoded(),
		BlockSize: h.blockSize,
		Blocks:    h.blocks,
	}
}

func (h *Hasher) flushBlock() {
	h.blocks = append(h.blocks, h.block.Digest().Encoded())
	h.block = digest.SHA256.Digester()
	h.blockFill = 0
}
