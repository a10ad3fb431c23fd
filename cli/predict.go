package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dot5enko/rethinking-bridge/dump"
	"github.com/dot5enko/rethinking-bridge/logging"
	"github.com/dot5enko/rethinking-bridge/posterior"
	"github.com/spf13/cobra"
)

// parseGridFlag reads "weight=25:75:1" (start:stop:step, stop excluded) or
// "weight=30,40".
func parseGridFlag(raw string) (string, []float64, error) {

	name, spec, found := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if !found || name == "" {
		return "", nil, fmt.Errorf("grid '%s' must look like NAME=start:stop:step or NAME=v1,v2", raw)
	}

	if parts := strings.Split(spec, ":"); len(parts) > 1 {
		if len(parts) > 3 {
			return "", nil, fmt.Errorf("grid '%s' has too many ':' parts", raw)
		}

		bounds := []float64{0, 0, 1}
		for i, part := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return "", nil, fmt.Errorf("grid '%s': %w", raw, err)
			}
			bounds[i] = v
		}

		return name, posterior.Arange(bounds[0], bounds[1], bounds[2]), nil
	}

	values := []float64{}
	for _, part := range strings.Split(spec, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return "", nil, fmt.Errorf("grid '%s': %w", raw, err)
		}
		values = append(values, v)
	}

	return name, values, nil
}

func newPredictCommand(a *app) *cobra.Command {

	var (
		drawsFile string
		grids     []string
		seed      int64
		out       string
		compress  bool
	)

	cmd := &cobra.Command{
		Use:     "predict",
		Short:   "Build the posterior predictive table over a predictor grid",
		Example: `  rethinking predict --draws posterior.arrows --grid weight=25:75:1 -o predictive.arrows`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			drawsFrame, err := dump.ReadFile(drawsFile)
			if err != nil {
				return err
			}

			samples, err := posterior.FromFrame(drawsFrame)
			if err != nil {
				return err
			}

			predictors := make([]string, 0, len(grids))
			columns := make([][]float64, 0, len(grids))
			for _, raw := range grids {
				name, values, err := parseGridFlag(raw)
				if err != nil {
					return err
				}
				predictors = append(predictors, name)
				columns = append(columns, values)
			}

			grid, err := posterior.GridFromColumns(predictors, columns)
			if err != nil {
				return err
			}

			sampler := posterior.Sampler{Seed: a.cfg.Seed, Workers: a.cfg.Workers}
			if seed >= 0 {
				sampler.Seed = uint64(seed)
			}

			table, err := sampler.Table(cmd.Context(), grid, samples)
			if err != nil {
				return err
			}

			result, err := table.Frame()
			if err != nil {
				return err
			}

			logging.PrintHeader(cmd.OutOrStdout(), "posterior predictive (%d grid points x %d draws)", grid.Len(), samples.Len())

			if out != "" {
				return dump.WriteFile(out, result, compress)
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&drawsFile, "draws", "", "posterior draws written by 'fit --out'")
	cmd.Flags().StringArrayVar(&grids, "grid", nil, "predictor grid, NAME=start:stop:step or NAME=v1,v2 (repeatable)")
	cmd.Flags().Int64Var(&seed, "seed", -1, "random seed (default from config)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the table to this Arrow stream file")
	cmd.Flags().BoolVar(&compress, "lz4", false, "LZ4 compress the written file")

	_ = cmd.MarkFlagRequired("draws")

	return cmd
}

func newSummaryCommand(a *app) *cobra.Command {

	cmd := &cobra.Command{
		Use:   "summary <draws-file>",
		Short: "Summarise posterior draws: mean, sd, 94% HDI and median",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drawsFrame, err := dump.ReadFile(args[0])
			if err != nil {
				return err
			}

			samples, err := posterior.FromFrame(drawsFrame)
			if err != nil {
				return err
			}

			logging.PrintHeader(cmd.OutOrStdout(), "%s (%d draws)", args[0], samples.Len())
			fmt.Fprint(cmd.OutOrStdout(), posterior.FormatSummary(posterior.Summarize(samples)))
			return nil
		},
	}

	return cmd
}
