package header

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile(t *testing.T) {
	root, err := Parse([]byte(`{"files":{"a.txt":{"size":5,"offset":"0"}}}`))
	require.NoError(t, err)

	entry, ok := root.Get("a.txt")
	require.True(t, ok)
	file, ok := entry.(*File)
	require.True(t, ok)
	assert.Equal(t, uint64(5), file.Size)
	assert.Equal(t, uint64(0), file.Offset)
	assert.False(t, file.Executable)
	assert.False(t, file.Unpacked)
	assert.Nil(t, file.Integrity)
}

func TestParseFlags(t *testing.T) {
	root, err := Parse([]byte(`{"files":{
		"run.sh":{"size":2,"offset":"0","executable":true},
		"ext.bin":{"size":9,"unpacked":true}
	}}`))
	require.NoError(t, err)

	run, _ := root.Get("run.sh")
	assert.True(t, run.(*File).Executable)

	ext, _ := root.Get("ext.bin")
	file := ext.(*File)
	assert.True(t, file.Unpacked)
	assert.Equal(t, uint64(0), file.Offset)
	assert.Equal(t, uint64(9), file.Size)
}

func TestParsePreservesOrder(t *testing.T) {
	root, err := Parse([]byte(`{"files":{
		"zebra":{"size":1,"offset":"0"},
		"apple":{"size":1,"offset":"1"},
		"mango":{"files":{}}
	}}`))
	require.NoError(t, err)

	var names []string
	for name := range root.Entries() {
		names = append(names, name)
	}
	assert.Equal(t, []string{"zebra", "apple", "mango"}, names)
}

func TestParseIntegrity(t *testing.T) {
	root, err := Parse([]byte(`{"files":{"a":{"size":10,"offset":"0","integrity":{
		"algorithm":"SHA256",
		"hash":"72399361da6a7754fec986dca5b7cbaf1c810a28ded4abaf56b2106d06cb78b0",
		"blockSize":4,
		"blocks":["88d4266fd4e6338d13b845fcf289579d209c897823b9217da3e161936f031589"]
	}}}}`))
	require.NoError(t, err)

	entry, _ := root.Get("a")
	integ := entry.(*File).Integrity
	require.NotNil(t, integ)
	assert.Equal(t, AlgorithmSHA256, integ.Algorithm)
	assert.Equal(t, uint32(4), integ.BlockSize)
	assert.Len(t, integ.Blocks, 1)
}

func TestParseUnknownFieldsIgnored(t *testing.T) {
	root, err := Parse([]byte(`{"files":{"a":{"size":1,"offset":"0","extra":{"nested":[1,2]}}}}`))
	require.NoError(t, err)
	_, ok := root.Get("a")
	assert.True(t, ok)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"not json", `nope`, ErrInvalidHeader},
		{"root is a file", `{"size":1,"offset":"0"}`, ErrInvalidHeader},
		{"shapeless node", `{"files":{"a":{"executable":true}}}`, ErrInvalidHeader},
		{"file missing offset", `{"files":{"a":{"size":1}}}`, ErrInvalidHeader},
		{"file missing size", `{"files":{"a":{"offset":"0"}}}`, ErrInvalidHeader},
		{"offset and unpacked", `{"files":{"a":{"size":1,"offset":"0","unpacked":true}}}`, ErrInvalidHeader},
		{"unpacked false without offset", `{"files":{"a":{"size":1,"unpacked":false}}}`, ErrInvalidHeader},
		{"offset not numeric", `{"files":{"a":{"size":1,"offset":"abc"}}}`, ErrInvalidOffset},
		{"offset negative", `{"files":{"a":{"size":1,"offset":"-1"}}}`, ErrInvalidOffset},
		{"offset overflow", `{"files":{"a":{"size":1,"offset":"18446744073709551616"}}}`, ErrInvalidOffset},
		{"offset not a string", `{"files":{"a":{"size":1,"offset":0}}}`, ErrInvalidHeader},
		{"size not a number", `{"files":{"a":{"size":"1","offset":"0"}}}`, ErrInvalidHeader},
		{"size fractional", `{"files":{"a":{"size":1.5,"offset":"0"}}}`, ErrInvalidHeader},
		{"unknown algorithm", `{"files":{"a":{"size":1,"offset":"0","integrity":{"algorithm":"MD5"}}}}`, ErrInvalidHeader},
		{"duplicate name", `{"files":{"a":{"size":1,"offset":"0"},"a":{"size":2,"offset":"1"}}}`, ErrInvalidHeader},
		{"trailing data", `{"files":{}} extra`, ErrInvalidHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSerialize(t *testing.T) {
	root := NewDirectory()
	require.NoError(t, root.Add("a.txt", &File{Size: 5, Offset: 0}))
	sub := NewDirectory()
	require.NoError(t, sub.Add("b.txt", &File{Size: 6, Offset: 5}))
	require.NoError(t, root.Add("dir", sub))

	out, err := Serialize(root)
	require.NoError(t, err)
	assert.Equal(t,
		`{"files":{"a.txt":{"size":5,"offset":"0"},"dir":{"files":{"b.txt":{"size":6,"offset":"5"}}}}}`,
		string(out))
}

func TestSerializeFlagsAndIntegrity(t *testing.T) {
	root := NewDirectory()
	require.NoError(t, root.Add("run.sh", &File{
		Size:       2,
		Offset:     7,
		Executable: true,
		Integrity: &Integrity{
			Algorithm: AlgorithmSHA256,
			Hash:      "aa",
			BlockSize: 4,
			Blocks:    []string{"bb", "cc"},
		},
	}))
	require.NoError(t, root.Add("ext", &File{Size: 3, Unpacked: true}))

	out, err := Serialize(root)
	require.NoError(t, err)
	assert.Equal(t,
		`{"files":{"run.sh":{"size":2,"offset":"7","executable":true,`+
			`"integrity":{"algorithm":"SHA256","hash":"aa","blockSize":4,"blocks":["bb","cc"]}},`+
			`"ext":{"size":3,"unpacked":true}}}`,
		string(out))
}

func TestRoundTrip(t *testing.T) {
	input := `{"files":{"z":{"size":1,"offset":"0"},"a":{"files":{"n":{"size":2,"offset":"1","executable":true}}},"m":{"size":3,"unpacked":true}}}`

	root, err := Parse([]byte(input))
	require.NoError(t, err)
	out, err := Serialize(root)
	require.NoError(t, err)
	assert.Equal(t, input, string(out))
}

func TestSerializeEmptyRoot(t *testing.T) {
	out, err := Serialize(NewDirectory())
	require.NoError(t, err)
	assert.Equal(t, `{"files":{}}`, string(out))
}
