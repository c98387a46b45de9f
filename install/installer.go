package install

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/bung87/bunim"
	"github.com/bung87/bunim/internal/fs"
	"github.com/bung87/bunim/registry"
	"github.com/bung87/bunim/solve"
)

// defaultMaxDepth bounds installation recursion. Each level re-parses and
// re-resolves the fetched package's own manifest; there is no global
// consistency across levels.
const defaultMaxDepth = 10

// Installer drives the install flow: resolve a manifest, then fetch,
// verify and place every resolved dependency that is not yet present.
type Installer struct {
	PkgDir   string
	Registry *registry.Registry
	Solver   *solve.Solver
	Fetcher  *Fetcher
	Logger   *log.Logger

	// MaxDepth overrides the recursion bound when positive.
	MaxDepth int
}

// Install resolves and installs the direct dependencies of m, recursing
// into each fetched package's manifest.
func (ins *Installer) Install(ctx context.Context, m *bunim.PackageManifest) error {
	if ins.Logger == nil {
		ins.Logger = log.New(io.Discard)
	}
	depth := ins.MaxDepth
	if depth <= 0 {
		depth = defaultMaxDepth
	}
	return ins.install(ctx, m, make(map[string]bool), depth)
}

func (ins *Installer) install(ctx context.Context, m *bunim.PackageManifest, visited map[string]bool, depth int) error {
	resolved, err := ins.Solver.Resolve(ctx, m)
	if err != nil {
		return errors.Wrapf(err, "resolving dependencies of %s", m.Name)
	}

	for _, rd := range resolved {
		if rd.Name == solve.ToolchainPackage || visited[rd.Name] {
			continue
		}
		visited[rd.Name] = true

		if rd.Installed {
			ins.Logger.Debug("already installed", "package", rd.Name, "version", rd.Version)
			continue
		}
		if err := ins.installOne(ctx, rd, visited, depth); err != nil {
			return err
		}
	}
	return nil
}

func (ins *Installer) installOne(ctx context.Context, rd solve.ResolvedDependency, visited map[string]bool, depth int) error {
	url := rd.SourceURL
	if url == "" {
		var ok bool
		if url, ok = ins.Registry.ResolveSourceURL(rd.Name); !ok {
			return errors.Errorf("no known source for package %s", rd.Name)
		}
	}

	staging, err := os.MkdirTemp("", "bunim-fetch-*")
	if err != nil {
		return errors.Wrap(err, "creating staging dir")
	}
	defer os.RemoveAll(staging)

	// The fetcher wants a nonexistent clone target.
	target := filepath.Join(staging, "src")
	if err := ins.Fetcher.Fetch(ctx, url, target); err != nil {
		return err
	}

	fetched, err := bunim.LoadProject(target)
	if err != nil {
		ins.Logger.Warn("fetched package has no readable manifest", "package", rd.Name, "err", err)
		fetched = &bunim.PackageManifest{Name: rd.Name}
	}

	version := fetched.Version
	if version == "" {
		version = rd.Version
	}
	if version == "" || version == solve.Wildcard {
		version = "0.0.0"
	}

	checksum, err := HashPackage(target, fetched.SkipDirs)
	if err != nil {
		return err
	}

	if err := ins.place(rd.Name, version, url, checksum, target); err != nil {
		return err
	}
	ins.Logger.Info("installed", "package", rd.Name, "version", version)

	if depth <= 1 {
		ins.Logger.Warn("recursion limit reached, skipping nested dependencies", "package", rd.Name)
		return nil
	}
	return ins.install(ctx, fetched, visited, depth-1)
}

// place moves the verified tree into the package directory and records
// the install, all under the directory's advisory lock.
func (ins *Installer) place(name, version, url, checksum, src string) error {
	unlock, err := lockPkgDir(ins.PkgDir)
	if err != nil {
		return err
	}
	defer unlock()

	dest := filepath.Join(ins.PkgDir, name+"-"+version)
	if _, err := os.Stat(dest); err == nil {
		// Another run got here first.
		ins.Logger.Debug("destination already present", "dir", dest)
		return nil
	}
	if err := fs.RenameWithFallback(src, dest); err != nil {
		return errors.Wrapf(err, "placing %s", dest)
	}
	return WriteRecord(dest, Record{
		Name:        name,
		Version:     version,
		URL:         url,
		Checksum:    checksum,
		InstalledAt: time.Now().UTC(),
	})
}
