package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bung87/bunim"
	"github.com/bung87/bunim/solve"
)

func newDepsCmd(env envFunc) *cobra.Command {
	var feature string

	cmd := &cobra.Command{
		Use:   "deps [dir]",
		Short: "Resolve the package's dependencies and print the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, cfg := env()

			m, err := bunim.LoadProject(workingDir(args))
			if err != nil {
				return err
			}

			solver := solve.NewSolver(newSourceManager(cfg, logger), logger)
			resolved, err := solver.Resolve(cmd.Context(), featureManifest{m: m, feature: feature})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PACKAGE\tVERSION\tINSTALLED\tSOURCE")
			for _, rd := range resolved {
				fmt.Fprintf(w, "%s\t%s\t%v\t%s\n", rd.Name, rd.Version, rd.Installed, rd.SourceURL)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&feature, "feature", "", "fold the named feature's dependencies into the resolution")
	return cmd
}

// featureManifest widens a manifest's direct dependency set with one
// feature's requirements.
type featureManifest struct {
	m       *bunim.PackageManifest
	feature string
}

func (f featureManifest) DependencyConstraints() []solve.Dependency {
	if f.feature == "" {
		return f.m.DependencyConstraints()
	}
	return f.m.FeatureConstraints(f.feature)
}
