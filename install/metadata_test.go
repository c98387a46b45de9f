package install

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	dir := t.TempDir()
	rec := Record{
		Name:        "hmac",
		Version:     "1.2.0",
		URL:         "https://github.com/OpenSystemsLab/hmac.nim",
		Checksum:    "abc123",
		InstalledAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, WriteRecord(dir, rec))

	got, err := ReadRecord(dir)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestReadRecordMissing(t *testing.T) {
	_, err := ReadRecord(t.TempDir())
	assert.Error(t, err)
}

func TestLockPkgDirReleases(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pkgs")

	unlock, err := lockPkgDir(dir)
	require.NoError(t, err)
	unlock()

	// A released lock can be taken again immediately.
	unlock2, err := lockPkgDir(dir)
	require.NoError(t, err)
	unlock2()
}
