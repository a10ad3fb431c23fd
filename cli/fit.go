package cli

import (
	"fmt"
	"math/rand/v2"

	"github.com/dot5enko/rethinking-bridge/bridge"
	"github.com/dot5enko/rethinking-bridge/dump"
	"github.com/dot5enko/rethinking-bridge/logging"
	"github.com/dot5enko/rethinking-bridge/model"
	"github.com/dot5enko/rethinking-bridge/posterior"
	"github.com/spf13/cobra"
)

func newFitCommand(a *app) *cobra.Command {

	var (
		flags    modelFlags
		opts     = model.DefaultFitOptions()
		seed     int64
		out      string
		compress bool
	)

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a linear model with rethinking::quap and summarise the posterior",
		Example: `  rethinking fit --where 'age >= 18' --formula 'height ~ 1 + weight' \
    --prior 'Intercept=normal(156, 100)' --prior 'weight=normal(0, 10)' --prior 'sigma=cauchy(0, 1)'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := flags.model()
			if err != nil {
				return err
			}

			data, err := flags.load(cmd.Context(), a.fetcher)
			if err != nil {
				return err
			}

			opts.Seed = a.cfg.Seed
			if seed >= 0 {
				opts.Seed = uint64(seed)
			}

			return a.withBridge(cmd.Context(), func(b *bridge.Bridge) error {
				samples, err := model.RFitter{Env: b}.Fit(cmd.Context(), m, data, opts)
				if err != nil {
					return err
				}

				logging.PrintHeader(cmd.OutOrStdout(), "%s (%d draws)", m.Formula.String(), samples.Len())
				fmt.Fprint(cmd.OutOrStdout(), posterior.FormatSummary(posterior.Summarize(samples)))

				if out == "" {
					return nil
				}

				draws, err := samples.Frame("draws")
				if err != nil {
					return err
				}
				return dump.WriteFile(out, draws, compress)
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&opts.Draws, "draws", opts.Draws, "draws per chain")
	cmd.Flags().IntVar(&opts.Tune, "tune", opts.Tune, "tuning steps per chain")
	cmd.Flags().IntVar(&opts.Chains, "chains", opts.Chains, "number of chains")
	cmd.Flags().IntVar(&opts.Cores, "cores", opts.Cores, "number of cores")
	cmd.Flags().Int64Var(&seed, "seed", -1, "random seed (default from config)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the posterior draws to this Arrow stream file")
	cmd.Flags().BoolVar(&compress, "lz4", false, "LZ4 compress the written file")

	return cmd
}

func newPriorCommand(a *app) *cobra.Command {

	var (
		flags    modelFlags
		draws    int
		seed     int64
		out      string
		compress bool
	)

	cmd := &cobra.Command{
		Use:   "prior",
		Short: "Sample the prior and the prior predictive distribution of a model",
		Example: `  rethinking prior --where 'age >= 18' --formula 'height ~ 1' \
    --prior 'Intercept=normal(178, 20)' --prior 'sigma=halfnormal(5)'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := flags.model()
			if err != nil {
				return err
			}

			data, err := flags.load(cmd.Context(), a.fetcher)
			if err != nil {
				return err
			}

			s := a.cfg.Seed
			if seed >= 0 {
				s = uint64(seed)
			}
			src := rand.NewPCG(s, 0)

			table, err := m.PriorPredictive(data, draws, src)
			if err != nil {
				return err
			}

			priorDraws, err := m.PriorSamples(draws, src)
			if err != nil {
				return err
			}

			response, err := posterior.NewSampleSet(map[string][]float64{m.Formula.Response: table.Sample})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			logging.PrintHeader(w, "prior (%d draws)", priorDraws.Len())
			fmt.Fprint(w, posterior.FormatSummary(posterior.Summarize(priorDraws)))
			logging.PrintHeader(w, "prior predictive (%d rows)", table.Len())
			fmt.Fprint(w, posterior.FormatSummary(posterior.Summarize(response)))

			if out == "" {
				return nil
			}

			predictive, err := table.Frame()
			if err != nil {
				return err
			}
			return dump.WriteFile(out, predictive, compress)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&draws, "draws", 500, "prior draws")
	cmd.Flags().Int64Var(&seed, "seed", -1, "random seed (default from config)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the prior predictive table to this Arrow stream file")
	cmd.Flags().BoolVar(&compress, "lz4", false, "LZ4 compress the written file")

	return cmd
}
