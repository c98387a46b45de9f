package cli

import (
	"github.com/spf13/cobra"

	"github.com/bung87/bunim"
	"github.com/bung87/bunim/install"
	"github.com/bung87/bunim/solve"
)

func newInstallCmd(env envFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "install [dir]",
		Short: "Resolve and install the package's dependencies",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, cfg := env()
			ctx := cmd.Context()

			m, err := bunim.LoadProject(workingDir(args))
			if err != nil {
				return err
			}
			reg, err := loadRegistry(ctx, cfg, logger)
			if err != nil {
				return err
			}

			sm := newSourceManager(cfg, logger)
			ins := &install.Installer{
				PkgDir:   cfg.PkgDir,
				Registry: reg,
				Solver:   solve.NewSolver(sm, logger),
				Fetcher:  install.NewFetcher(logger),
				Logger:   logger,
			}
			return ins.Install(ctx, m)
		},
	}
}
