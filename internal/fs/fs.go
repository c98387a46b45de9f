// Package fs carries the filesystem helpers the installer needs when
// moving fetched packages into place.
package fs

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// RenameWithFallback attempts to rename src to dst and falls back to a
// copy-then-delete when the rename fails, which covers moves across
// filesystem boundaries.
func RenameWithFallback(src, dst string) error {
	fi, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, "cannot stat %s", src)
	}

	if err = os.Rename(src, dst); err == nil {
		return nil
	}

	if fi.IsDir() {
		err = CopyDir(src, dst)
	} else {
		err = copyFile(src, dst)
	}
	if err != nil {
		return err
	}
	return errors.Wrapf(os.RemoveAll(src), "cannot remove %s after copy", src)
}

// CopyDir recursively copies src to dst. dst must not exist yet.
func CopyDir(src, dst string) error {
	fi, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, "cannot stat %s", src)
	}
	if !fi.IsDir() {
		return errors.Errorf("source %s is not a directory", src)
	}
	if _, err = os.Stat(dst); err == nil {
		return errors.Errorf("destination %s already exists", dst)
	}
	if err = os.MkdirAll(dst, fi.Mode()); err != nil {
		return errors.Wrapf(err, "cannot create directory %s", dst)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, "cannot read directory %s", src)
	}
	for _, e := range entries {
		srcPath := filepath.Join(src, e.Name())
		dstPath := filepath.Join(dst, e.Name())
		if e.IsDir() {
			if err = CopyDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		// Symlinks are re-created pointing at the same target.
		if e.Type()&os.ModeSymlink != 0 {
			target, err := os.Readlink(srcPath)
			if err != nil {
				return errors.Wrapf(err, "cannot read symlink %s", srcPath)
			}
			if err = os.Symlink(target, dstPath); err != nil {
				return errors.Wrapf(err, "cannot create symlink %s", dstPath)
			}
			continue
		}
		if err = copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "cannot open %s", src)
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return errors.Wrapf(err, "cannot stat %s", src)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode())
	if err != nil {
		return errors.Wrapf(err, "cannot create %s", dst)
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "cannot copy %s to %s", src, dst)
	}
	return errors.Wrapf(out.Close(), "cannot finalize %s", dst)
}

// IsDir reports whether name exists and is a directory.
func IsDir(name string) (bool, error) {
	fi, err := os.Stat(name)
	if err != nil {
		return false, err
	}
	return fi.IsDir(), nil
}
