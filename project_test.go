package bunim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindManifestPrefersDirectoryName(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mypkg")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aaa.nimble"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mypkg.nimble"), nil, 0o644))

	path, err := FindManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mypkg.nimble"), path)
}

func TestFindManifestFallsBackToFirst(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zzz.nimble"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc.nimble"), nil, 0o644))

	path, err := FindManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "abc.nimble"), path)
}

func TestFindManifestErrors(t *testing.T) {
	_, err := FindManifest(t.TempDir())
	assert.Error(t, err)

	_, err = FindManifest(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadProject(t *testing.T) {
	dir := t.TempDir()
	manifest := "version = \"0.9.0\"\nrequires \"hmac\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "thing.nimble"), []byte(manifest), 0o644))

	m, err := LoadProject(dir)
	require.NoError(t, err)
	assert.Equal(t, "thing", m.Name)
	assert.Equal(t, "0.9.0", m.Version)
	require.Len(t, m.Dependencies, 1)
}
