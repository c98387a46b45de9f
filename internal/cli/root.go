package cli

import (
	"context"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bung87/bunim/registry"
	"github.com/bung87/bunim/solve"
)

var version = "devel" // overridden via ldflags at release time

// Execute runs the bunim CLI and returns the first command error.
func Execute() error {
	var verbose bool

	// Shared per-invocation state, populated in PersistentPreRun so
	// every command sees the same logger and config.
	var (
		logger *charmlog.Logger
		cfg    config
	)

	root := &cobra.Command{
		Use:          "bunim",
		Short:        "bunim installs Nim packages",
		Long:         "bunim reads a .nimble manifest, resolves a consistent set of dependency versions, and fetches and installs the result.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			logger = newLogger(os.Stderr, level)
			cfg = loadConfig()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	env := func() (*charmlog.Logger, config) { return logger, cfg }
	root.AddCommand(newInstallCmd(env))
	root.AddCommand(newDepsCmd(env))
	root.AddCommand(newCheckCmd(env))
	root.AddCommand(newSearchCmd(env))

	return root.ExecuteContext(context.Background())
}

// envFunc hands commands the logger and config built during
// PersistentPreRun.
type envFunc func() (*charmlog.Logger, config)

// newSourceManager wires the local candidate discovery for a config.
func newSourceManager(cfg config, logger *charmlog.Logger) *solve.SourceMgr {
	return solve.NewSourceManager(cfg.PkgDir, cfg.NimBin, logger)
}

// loadRegistry builds the registry index from the configured location,
// which may be a local file or an HTTP URL.
func loadRegistry(ctx context.Context, cfg config, logger *charmlog.Logger) (*registry.Registry, error) {
	reg := registry.New(logger)
	if strings.Contains(cfg.Registry, "://") {
		if err := reg.LoadURL(ctx, cfg.Registry); err != nil {
			return nil, err
		}
		return reg, nil
	}
	if err := reg.LoadFile(cfg.Registry); err != nil {
		return nil, err
	}
	return reg, nil
}

// workingDir resolves the optional [dir] argument commands take.
func workingDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
