package install

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/vcs"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"github.com/bung87/bunim/internal/fs"
)

// Fetcher materializes a package's source tree from its URL: archive
// URLs are downloaded and extracted, anything else is treated as a VCS
// remote and cloned.
type Fetcher struct {
	logger *log.Logger
	client *retryablehttp.Client
}

// NewFetcher returns a Fetcher. A nil logger silences it.
func NewFetcher(logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil
	return &Fetcher{logger: logger, client: client}
}

// Fetch places the package source behind url into dest, which must be an
// empty or nonexistent directory.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string) error {
	if isArchiveURL(url) {
		return f.fetchArchive(ctx, url, dest)
	}
	return f.fetchVCS(url, dest)
}

func isArchiveURL(url string) bool {
	return strings.HasSuffix(url, ".tar.gz") || strings.HasSuffix(url, ".tgz")
}

func (f *Fetcher) fetchVCS(url, dest string) error {
	f.logger.Debug("cloning", "url", url, "dest", dest)
	repo, err := vcs.NewRepo(url, dest)
	if err != nil {
		return errors.Wrapf(err, "initializing repository for %s", url)
	}
	if err := repo.Get(); err != nil {
		return errors.Wrapf(err, "cloning %s", url)
	}
	return nil
}

func (f *Fetcher) fetchArchive(ctx context.Context, url, dest string) error {
	f.logger.Debug("downloading archive", "url", url)
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return errors.Wrapf(err, "building request for %s", url)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "downloading %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return errors.Errorf("downloading %s: unexpected status %s", url, resp.Status)
	}

	if err := extractTarGz(resp.Body, dest); err != nil {
		return errors.Wrapf(err, "extracting archive from %s", url)
	}
	return hoistSingleDir(dest)
}

// extractTarGz unpacks a gzipped tarball into dest, refusing any entry
// that would land outside it.
func extractTarGz(r io.Reader, dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	gz, err := gzip.NewReader(r)
	if err != nil {
		return errors.Wrap(err, "opening gzip stream")
	}
	defer gz.Close()

	cleanDest := filepath.Clean(dest)
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "reading tar stream")
		}

		target := filepath.Join(cleanDest, filepath.FromSlash(hdr.Name))
		if target != cleanDest && !strings.HasPrefix(target, cleanDest+string(os.PathSeparator)) {
			return errors.Errorf("archive entry %q escapes extraction root", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(hdr.Mode)&0o777)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		default:
			// Symlinks and specials in release tarballs are dropped
			// rather than trusted.
		}
	}
}

// hoistSingleDir flattens the single top-level directory layout produced
// by forge-generated tarballs, so dest holds the package root directly.
func hoistSingleDir(dest string) error {
	entries, err := os.ReadDir(dest)
	if err != nil {
		return err
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return nil
	}

	inner := filepath.Join(dest, entries[0].Name())
	children, err := os.ReadDir(inner)
	if err != nil {
		return err
	}
	for _, c := range children {
		if err := fs.RenameWithFallback(filepath.Join(inner, c.Name()), filepath.Join(dest, c.Name())); err != nil {
			return err
		}
	}
	return os.Remove(inner)
}
