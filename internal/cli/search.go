package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSearchCmd(env envFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "search <prefix>",
		Short: "Search the package registry by name prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, cfg := env()

			reg, err := loadRegistry(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			matches := reg.Search(args[0])
			if len(matches) == 0 {
				logger.Info("no packages found", "prefix", args[0])
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLICENSE\tDESCRIPTION")
			for _, p := range matches {
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.License, p.Description)
			}
			return w.Flush()
		},
	}
}
