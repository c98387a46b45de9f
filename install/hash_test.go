package install

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestHashPackageDeterministic(t *testing.T) {
	files := map[string]string{
		"pkg.nimble":  `version = "1.0.0"`,
		"src/main.go": "content",
	}
	a, b := t.TempDir(), t.TempDir()
	writeTree(t, a, files)
	writeTree(t, b, files)

	ha, err := HashPackage(a, nil)
	require.NoError(t, err)
	hb, err := HashPackage(b, nil)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
	assert.Len(t, ha, 64)
}

func TestHashPackageContentSensitive(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "one"})
	h1, err := HashPackage(dir, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("two"), 0o644))
	h2, err := HashPackage(dir, nil)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestHashPackageHonorsSkipDirs(t *testing.T) {
	base := map[string]string{"src/lib.nim": "lib"}
	plain, skipped := t.TempDir(), t.TempDir()
	writeTree(t, plain, base)
	writeTree(t, skipped, base)
	writeTree(t, skipped, map[string]string{"tests/t.nim": "test data"})

	h1, err := HashPackage(plain, []string{"tests"})
	require.NoError(t, err)
	h2, err := HashPackage(skipped, []string{"tests"})
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "skipped directories must not affect the digest")

	h3, err := HashPackage(skipped, nil)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestHashPackageIgnoresVCSDirs(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeTree(t, a, map[string]string{"f": "x"})
	writeTree(t, b, map[string]string{"f": "x", ".git/HEAD": "ref: main"})

	ha, err := HashPackage(a, nil)
	require.NoError(t, err)
	hb, err := HashPackage(b, nil)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
}
