package fs

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenameWithFallback(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "nested", "f.txt"), []byte("payload"), 0o644))

	dst := filepath.Join(dir, "dst")
	require.NoError(t, RenameWithFallback(src, dst))

	got, err := os.ReadFile(filepath.Join(dst, "nested", "f.txt"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err), "source must be gone after move")
}

func TestRenameWithFallbackMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := RenameWithFallback(filepath.Join(dir, "absent"), filepath.Join(dir, "dst"))
	assert.Error(t, err)
}

func TestCopyDir(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "b.txt"), []byte("b"), 0o644))

	dst := filepath.Join(dir, "dst")
	require.NoError(t, CopyDir(src, dst))

	for _, name := range []string{"a.txt", filepath.Join("sub", "b.txt")} {
		_, err := os.Stat(filepath.Join(dst, name))
		assert.NoError(t, err, name)
	}
	// Unlike a move, the source stays.
	_, err := os.Stat(filepath.Join(src, "a.txt"))
	assert.NoError(t, err)
}

func TestCopyDirRejectsExistingDest(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.MkdirAll(dst, 0o755))

	err := CopyDir(src, dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCopyDirRejectsFileSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	assert.Error(t, CopyDir(src, filepath.Join(dir, "dst")))
}

func TestCopyDirPreservesSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires elevation on windows")
	}
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "real.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Symlink("real.txt", filepath.Join(src, "link.txt")))

	dst := filepath.Join(dir, "dst")
	require.NoError(t, CopyDir(src, dst))

	target, err := os.Readlink(filepath.Join(dst, "link.txt"))
	require.NoError(t, err)
	assert.Equal(t, "real.txt", target)
}

func TestIsDir(t *testing.T) {
	dir := t.TempDir()
	ok, err := IsDir(dir)
	require.NoError(t, err)
	assert.True(t, ok)

	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	ok, err = IsDir(file)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = IsDir(filepath.Join(dir, "absent"))
	assert.Error(t, err)
}
