package bunim

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ManifestExt is the file extension package manifests carry.
const ManifestExt = ".nimble"

// FindManifest locates the manifest file for the package rooted at dir.
// A manifest named after the directory wins; otherwise the first manifest
// in lexical order is used.
func FindManifest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Wrapf(err, "scanning %s for a manifest", dir)
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ManifestExt) {
			continue
		}
		candidates = append(candidates, e.Name())
	}
	if len(candidates) == 0 {
		return "", errors.Errorf("no %s manifest found in %s", ManifestExt, dir)
	}
	sort.Strings(candidates)

	preferred := filepath.Base(dir) + ManifestExt
	for _, c := range candidates {
		if c == preferred {
			return filepath.Join(dir, c), nil
		}
	}
	return filepath.Join(dir, candidates[0]), nil
}

// LoadProject finds and parses the manifest for the package rooted at
// dir.
func LoadProject(dir string) (*PackageManifest, error) {
	path, err := FindManifest(dir)
	if err != nil {
		return nil, err
	}
	return ParseManifestFile(path)
}
