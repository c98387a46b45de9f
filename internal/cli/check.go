package cli

import (
	"github.com/spf13/cobra"

	"github.com/bung87/bunim"
	"github.com/bung87/bunim/solve"
)

func newCheckCmd(env envFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "check [dir]",
		Short: "Verify that the package's dependency constraints are satisfiable",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, cfg := env()

			m, err := bunim.LoadProject(workingDir(args))
			if err != nil {
				return err
			}
			solver := solve.NewSolver(newSourceManager(cfg, logger), logger)
			if _, err := solver.Resolve(cmd.Context(), m); err != nil {
				return err
			}
			logger.Info("dependency constraints are satisfiable", "package", m.Name)
			return nil
		},
	}
}
