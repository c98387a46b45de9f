package install

import (
	"os"
	"path/filepath"
	"time"

	"github.com/nightlyone/lockfile"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// metadataFile is the per-package record written next to the installed
// sources.
const metadataFile = "bunim.toml"

// lockName is the advisory lock guarding mutations of the package
// directory, the one on-disk resource shared between concurrent runs.
const lockName = ".bunim.lock"

// Record describes one installed package.
type Record struct {
	Name        string    `toml:"name"`
	Version     string    `toml:"version"`
	URL         string    `toml:"url"`
	Checksum    string    `toml:"checksum"`
	InstalledAt time.Time `toml:"installed_at"`
}

// WriteRecord persists rec into the installed package directory.
func WriteRecord(dir string, rec Record) error {
	raw, err := toml.Marshal(rec)
	if err != nil {
		return errors.Wrapf(err, "encoding metadata for %s", rec.Name)
	}
	path := filepath.Join(dir, metadataFile)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

// ReadRecord loads the metadata record from an installed package
// directory.
func ReadRecord(dir string) (Record, error) {
	var rec Record
	raw, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		return rec, errors.Wrapf(err, "reading metadata in %s", dir)
	}
	if err := toml.Unmarshal(raw, &rec); err != nil {
		return rec, errors.Wrapf(err, "decoding metadata in %s", dir)
	}
	return rec, nil
}

// lockPkgDir takes the advisory lock for pkgDir, retrying briefly when
// another process holds it. The returned function releases the lock.
func lockPkgDir(pkgDir string) (func(), error) {
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating package dir %s", pkgDir)
	}
	abs, err := filepath.Abs(filepath.Join(pkgDir, lockName))
	if err != nil {
		return nil, errors.Wrap(err, "resolving lock path")
	}
	lf, err := lockfile.New(abs)
	if err != nil {
		return nil, errors.Wrap(err, "creating lockfile")
	}

	for i := 0; ; i++ {
		err = lf.TryLock()
		if err == nil {
			break
		}
		if i >= 20 {
			return nil, errors.Wrapf(err, "locking package dir %s", pkgDir)
		}
		time.Sleep(250 * time.Millisecond)
	}
	return func() { lf.Unlock() }, nil
}
