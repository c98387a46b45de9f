// Package install fetches resolved dependencies, verifies their content,
// and places them in the local package directory.
package install

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// HashPackage computes a hex-encoded sha256 digest over the package
// tree rooted at dir. Files are visited in lexical path order, so the
// digest is independent of filesystem enumeration order. Directories
// named in skipDirs are excluded, as is VCS bookkeeping.
func HashPackage(dir string, skipDirs []string) (string, error) {
	skip := map[string]bool{".git": true, ".hg": true}
	for _, d := range skipDirs {
		skip[d] = true
	}

	h := sha256.New()
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && skip[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		// Path and contents both feed the digest; renames change it.
		io.WriteString(h, filepath.ToSlash(rel))
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(h, f)
		f.Close()
		return err
	})
	if err != nil {
		return "", errors.Wrapf(err, "hashing package contents of %s", dir)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
