package integrity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hack3ric/hive-asar/internal/header"
)

const (
	hashABCDEFGHIJ = "72399361da6a7754fec986dca5b7cbaf1c810a28ded4abaf56b2106d06cb78b0"
	hashABCD       = "88d4266fd4e6338d13b845fcf289579d209c897823b9217da3e161936f031589"
	hashEFGH       = "e5e088a0b66163a0a26a5e053d2a4496dc16ab6e0e3dd1adf2d16aa84a078c9d"
	hashIJ         = "c9df9c3f2963b19b9b95f58c4d33b053fa9f8586dd6ee04126e52a868f882108"
	hashEmpty      = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
)

func TestBlockMath(t *testing.T) {
	// 10 bytes with block size 4: blocks of 4, 4 and 2.
	h := NewHasher(4)
	_, err := h.Write([]byte("abcdefghij"))
	require.NoError(t, err)

	integ := h.Sum()
	assert.Equal(t, header.AlgorithmSHA256, integ.Algorithm)
	assert.Equal(t, uint32(4), integ.BlockSize)
	assert.Equal(t, hashABCDEFGHIJ, integ.Hash)
	assert.Equal(t, []string{hashABCD, hashEFGH, hashIJ}, integ.Blocks)
}

func TestSplitInvariance(t *testing.T) {
	input := []byte("abcdefghij")

	one := NewHasher(4)
	_, _ = one.Write(input)
	want := one.Sum()

	splits := [][]int{
		{1, 9}, {9, 1}, {4, 4, 2}, {3, 3, 3, 1}, {5, 5},
		{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}, {10},
	}
	for _, split := range splits {
		h := NewHasher(4)
		rest := input
		for _, n := range split {
			_, _ = h.Write(rest[:n])
			rest = rest[n:]
		}
		assert.Equal(t, want, h.Sum(), "split %v", split)
	}
}

func TestExactBlockMultiple(t *testing.T) {
	h := NewHasher(4)
	_, _ = h.Write([]byte("abcdefgh"))

	integ := h.Sum()
	assert.Equal(t, []string{hashABCD, hashEFGH}, integ.Blocks)
}

func TestEmptyInput(t *testing.T) {
	integ := NewHasher(4).Sum()
	assert.Equal(t, hashEmpty, integ.Hash)
	assert.Empty(t, integ.Blocks)
}

func TestDefaultBlockSize(t *testing.T) {
	h := NewHasher(0)
	_, _ = h.Write([]byte("abc"))

	integ := h.Sum()
	assert.Equal(t, DefaultBlockSize, integ.BlockSize)
	assert.Len(t, integ.Blocks, 1)
}
