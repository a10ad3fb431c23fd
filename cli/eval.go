package cli

import (
	"fmt"
	"strings"

	"github.com/dot5enko/rethinking-bridge/bridge"
	"github.com/dot5enko/rethinking-bridge/dump"
	"github.com/spf13/cobra"
)

func newEvalCommand(a *app) *cobra.Command {

	var (
		variable string
		out      string
		compress bool
	)

	cmd := &cobra.Command{
		Use:   "eval <snippet>...",
		Short: "Run R code and print the data frame bound to a variable",
		Example: `  rethinking eval 'd <- data.frame(x = 1:3, y = c("a", "b", "c"))'
  rethinking eval --var howell 'library(rethinking); data(Howell1); howell <- Howell1'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if variable == "" {
				variable = a.cfg.Variable
			}

			snippet := strings.Join(args, "\n")

			return a.withBridge(cmd.Context(), func(b *bridge.Bridge) error {
				result, err := b.Eval(cmd.Context(), snippet, variable)
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), result.String())

				if out != "" {
					return dump.WriteFile(out, result, compress)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&variable, "var", "", "variable to retrieve (default from config, \"d\")")
	cmd.Flags().StringVarP(&out, "out", "o", "", "also write the frame to this Arrow stream file")
	cmd.Flags().BoolVar(&compress, "lz4", false, "LZ4 compress the written file")

	return cmd
}
