package wire

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLayout(t *testing.T) {
	headerJSON := []byte(`{"files":{}}`) // 12 bytes, already aligned

	prefix, dataOffset, err := Encode(headerJSON)
	require.NoError(t, err)

	assert.Equal(t, int64(len(prefix)), dataOffset)
	assert.Zero(t, dataOffset%4)

	frameLen := binary.LittleEndian.Uint32(prefix)
	headerLen := binary.LittleEndian.Uint32(prefix[4:])
	assert.Equal(t, uint32(16), frameLen)
	assert.Equal(t, uint32(12), headerLen)
	assert.Equal(t, headerJSON, prefix[8:8+len(headerJSON)])
}

func TestEncodePadding(t *testing.T) {
	tests := []struct {
		name       string
		headerLen  int
		dataOffset int64
	}{
		{"aligned", 12, 4 + 4 + 12},
		{"one short", 11, 4 + 4 + 12},
		{"one over", 13, 4 + 4 + 16},
		{"empty", 0, 4 + 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headerJSON := bytes.Repeat([]byte("x"), tt.headerLen)

			prefix, dataOffset, err := Encode(headerJSON)
			require.NoError(t, err)
			assert.Equal(t, tt.dataOffset, dataOffset)
			assert.Len(t, prefix, int(dataOffset))
			// padding bytes are zero
			for _, b := range prefix[8+tt.headerLen:] {
				assert.Zero(t, b)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, headerJSON := range []string{`{}`, `{"files":{}}`, `{"a":1}`, `"été"`} {
		t.Run(headerJSON, func(t *testing.T) {
			prefix, dataOffset, err := Encode([]byte(headerJSON))
			require.NoError(t, err)

			decoded, gotOffset, err := Read(bytes.NewReader(prefix))
			require.NoError(t, err)
			assert.Equal(t, headerJSON, string(decoded))
			assert.Equal(t, dataOffset, gotOffset)

			decoded, gotOffset, err = Decode(prefix)
			require.NoError(t, err)
			assert.Equal(t, headerJSON, string(decoded))
			assert.Equal(t, dataOffset, gotOffset)
		})
	}
}

func TestReadConsumesExactlyPrefix(t *testing.T) {
	prefix, dataOffset, err := Encode([]byte(`{"files":{}}`))
	require.NoError(t, err)

	r := bytes.NewReader(append(prefix, "data region"...))
	_, gotOffset, err := Read(r)
	require.NoError(t, err)
	assert.Equal(t, dataOffset, gotOffset)

	rest := make([]byte, r.Len())
	_, err = r.Read(rest)
	require.NoError(t, err)
	assert.Equal(t, "data region", string(rest))
}

func TestMalformedFraming(t *testing.T) {
	valid, _, err := Encode([]byte(`{"files":{}}`))
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func([]byte) []byte
		wantErr error
	}{
		{
			"inner frame too short",
			func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b, 2)
				return b
			},
			ErrMalformedFraming,
		},
		{
			"header length exceeds frame",
			func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[4:], 1<<20)
				return b
			},
			ErrMalformedFraming,
		},
		{
			"frame length over cap",
			func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b, MaxHeaderSize+1)
				return b
			},
			ErrMalformedFraming,
		},
		{
			"truncated mid frame",
			func(b []byte) []byte { return b[:7] },
			ErrTruncated,
		},
		{
			"empty input",
			func([]byte) []byte { return nil },
			ErrTruncated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.mutate(bytes.Clone(valid))
			_, _, err := Read(bytes.NewReader(b))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecodeLengthExceedsInput(t *testing.T) {
	valid, _, err := Encode([]byte(`{"files":{}}`))
	require.NoError(t, err)

	// Decode sees the full remaining input, so a short buffer is framing, not truncation.
	_, _, err = Decode(valid[:7])
	assert.ErrorIs(t, err, ErrMalformedFraming)
}

func TestInvalidEncoding(t *testing.T) {
	prefix, _, err := Encode([]byte(`{"files":{}}`))
	require.NoError(t, err)
	prefix[8] = 0xff
	prefix[9] = 0xfe

	_, _, err = Read(bytes.NewReader(prefix))
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	_, _, err = Encode([]byte{0xff, 0xfe})
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}
