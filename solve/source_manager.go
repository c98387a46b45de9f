package solve

import (
	"context"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// SourceManager supplies the resolver's view of the outside world: which
// versions of a package are locally known, whether a package is
// installed, and what compiler is on the system. Implementations may
// return empty results freely; the resolver treats missing information as
// benign.
type SourceManager interface {
	// ListVersions returns every known version of the named package, in
	// no particular order.
	ListVersions(name string) ([]string, error)
	// InstalledVersion reports the highest installed version of the
	// named package, if any.
	InstalledVersion(name string) (string, bool)
	// ToolchainVersion reports the installed compiler's version, if one
	// can be determined.
	ToolchainVersion(ctx context.Context) (string, bool)
}

// toolchainProbeTimeout bounds the compiler subprocess invocation.
const toolchainProbeTimeout = 5 * time.Second

var toolchainVersionPattern = regexp.MustCompile(`Version\s+(\S+)`)

// SourceMgr discovers candidates from the on-disk package directory,
// whose entries follow the `<name>-<version>` install convention, and
// probes the toolchain binary for its version. The probe result is cached
// for the life of the SourceMgr.
type SourceMgr struct {
	pkgDir string
	nimBin string
	logger *log.Logger

	probeOnce sync.Once
	probedVer string
	probeOK   bool
}

// NewSourceManager returns a SourceMgr rooted at pkgDir, probing nimBin
// for the toolchain version. An empty nimBin means "nim" from PATH.
func NewSourceManager(pkgDir, nimBin string, logger *log.Logger) *SourceMgr {
	if nimBin == "" {
		nimBin = ToolchainPackage
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &SourceMgr{pkgDir: pkgDir, nimBin: nimBin, logger: logger}
}

// ListVersions scans the package directory for entries named
// `<name>-<version>`. A missing directory is an empty result, not an
// error.
func (sm *SourceMgr) ListVersions(name string) ([]string, error) {
	entries, err := os.ReadDir(sm.pkgDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "scanning package dir %s", sm.pkgDir)
	}

	prefix := name + "-"
	var out []string
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		if v := e.Name()[len(prefix):]; v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

// InstalledVersion returns the highest version of name present in the
// package directory.
func (sm *SourceMgr) InstalledVersion(name string) (string, bool) {
	vs, err := sm.ListVersions(name)
	if err != nil || len(vs) == 0 {
		return "", false
	}
	best := vs[0]
	for _, v := range vs[1:] {
		if Order(v, best) > 0 {
			best = v
		}
	}
	return best, true
}

// ToolchainVersion runs `<nimBin> --version` under a short timeout and
// extracts the version token from its banner. Every failure path is
// logged and reported as absent.
func (sm *SourceMgr) ToolchainVersion(ctx context.Context) (string, bool) {
	sm.probeOnce.Do(func() {
		probeCtx, cancel := context.WithTimeout(ctx, toolchainProbeTimeout)
		defer cancel()

		out, err := exec.CommandContext(probeCtx, sm.nimBin, "--version").Output()
		if err != nil {
			sm.logger.Warn("toolchain probe failed", "bin", sm.nimBin, "err", err)
			return
		}
		m := toolchainVersionPattern.FindSubmatch(out)
		if m == nil {
			sm.logger.Warn("could not parse toolchain version banner", "bin", sm.nimBin)
			return
		}
		sm.probedVer = string(m[1])
		sm.probeOK = true
	})
	return sm.probedVer, sm.probeOK
}
