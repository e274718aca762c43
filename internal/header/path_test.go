package header

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree(t *testing.T) *Directory {
	t.Helper()
	root, err := Parse([]byte(`{"files":{
		"a":{"size":1,"offset":"0"},
		"dir":{"files":{"b":{"size":2,"offset":"1"},"sub":{"files":{}}}}
	}}`))
	require.NoError(t, err)
	return root
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    []string
		wantErr error
	}{
		{"empty is root", "", nil, nil},
		{"single", "a", []string{"a"}, nil},
		{"nested", "dir/b", []string{"dir", "b"}, nil},
		{"leading slash", "/a", nil, ErrInvalidPath},
		{"trailing slash", "a/", nil, ErrInvalidPath},
		{"double slash", "a//b", nil, ErrInvalidPath},
		{"dot segment", "a/./b", nil, ErrInvalidPath},
		{"dotdot segment", "a/../b", nil, ErrInvalidPath},
		{"bare dot", ".", nil, ErrInvalidPath},
		{"bare dotdot", "..", nil, ErrInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitPath(tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve(t *testing.T) {
	root := testTree(t)

	t.Run("empty resolves to root", func(t *testing.T) {
		entry, err := Resolve(root, "")
		require.NoError(t, err)
		assert.Same(t, root, entry)
	})

	t.Run("file at top level", func(t *testing.T) {
		entry, err := Resolve(root, "a")
		require.NoError(t, err)
		assert.Equal(t, uint64(1), entry.(*File).Size)
	})

	t.Run("nested file", func(t *testing.T) {
		entry, err := Resolve(root, "dir/b")
		require.NoError(t, err)
		assert.Equal(t, uint64(2), entry.(*File).Size)
	})

	t.Run("directory as final segment", func(t *testing.T) {
		entry, err := Resolve(root, "dir/sub")
		require.NoError(t, err)
		assert.IsType(t, &Directory{}, entry)
	})

	t.Run("absent path", func(t *testing.T) {
		_, err := Resolve(root, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("absent nested path", func(t *testing.T) {
		_, err := Resolve(root, "dir/missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("file traversed as directory", func(t *testing.T) {
		_, err := Resolve(root, "a/b")
		assert.ErrorIs(t, err, ErrNotADirectory)
	})

	t.Run("dotdot rejected", func(t *testing.T) {
		_, err := Resolve(root, "dir/../a")
		assert.ErrorIs(t, err, ErrInvalidPath)
	})
}
