package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMkdirAll(t *testing.T) {
	dir := t.TempDir()
	fs := New()
	require.NoError(t, fs.MkdirAll(filepath.Join(dir, "foo/bar")))

	exists, err := fs.DirExists(filepath.Join(dir, "foo/bar"))
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestGlob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "helloworld.cabal"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stack.yaml"), nil, 0644))

	fs := New()
	matches, err := fs.Glob(filepath.Join(dir, "*.cabal"))
	assert.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "helloworld.cabal")}, matches)

	matches, err = fs.Glob(filepath.Join(dir, "*.hs"))
	assert.NoError(t, err)
	assert.Empty(t, matches)
}

func TestDirExists(t *testing.T) {
	t.Run("exists", func(t *testing.T) {
		result, err := New().DirExists(t.TempDir())
		assert.NoError(t, err)
		assert.True(t, result)
	})

	t.Run("does not exist", func(t *testing.T) {
		result, err := New().DirExists(t.TempDir() + "foo")
		assert.NoError(t, err)
		assert.False(t, result)
	})

	t.Run("is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "a")
		require.NoError(t, os.WriteFile(file, nil, 0644))
		result, err := New().DirExists(file)
		assert.NoError(t, err)
		assert.False(t, result)
	})
}

func TestFileExists(t *testing.T) {
	t.Run("exists", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "stack.yaml")
		require.NoError(t, os.WriteFile(file, nil, 0644))
		result, err := New().FileExists(file)
		assert.NoError(t, err)
		assert.True(t, result)
	})

	t.Run("does not exist", func(t *testing.T) {
		result, err := New().FileExists(filepath.Join(t.TempDir(), "stack.yaml"))
		assert.NoError(t, err)
		assert.False(t, result)
	})

	t.Run("is a directory", func(t *testing.T) {
		result, err := New().FileExists(t.TempDir())
		assert.NoError(t, err)
		assert.False(t, result)
	})
}

func TestReadWriteRemove(t *testing.T) {
	fs := New()
	file := filepath.Join(t.TempDir(), "a")

	require.NoError(t, fs.WriteFile(file, []byte("contents")))
	data, err := fs.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "contents", string(data))

	require.NoError(t, fs.Remove(file))
	_, err = fs.ReadFile(file)
	assert.True(t, os.IsNotExist(err))
}

func TestCreate(t *testing.T) {
	file := filepath.Join(t.TempDir(), "out.log")
	f, err := New().Create(file)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, file, f.Name())
}
