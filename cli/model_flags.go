package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dot5enko/rethinking-bridge/dataset"
	"github.com/dot5enko/rethinking-bridge/frame"
	"github.com/dot5enko/rethinking-bridge/model"
	"github.com/spf13/cobra"
)

type modelFlags struct {
	data        string
	sep         string
	where       string
	standardize []string
	formula     string
	priors      []string
}

func (f *modelFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.data, "data", "howell", "dataset name (howell, waffle) or CSV URL")
	cmd.Flags().StringVar(&f.sep, "sep", ";", "field separator of a CSV URL")
	cmd.Flags().StringVar(&f.where, "where", "", "row filter, e.g. 'age >= 18'")
	cmd.Flags().StringArrayVar(&f.standardize, "standardize", nil, "add a standardized column, DST=SRC (repeatable)")
	cmd.Flags().StringVar(&f.formula, "formula", "", "model formula, e.g. 'height ~ 1 + weight'")
	cmd.Flags().StringArrayVar(&f.priors, "prior", nil, "parameter prior, e.g. 'Intercept=normal(178, 20)' (repeatable)")

	_ = cmd.MarkFlagRequired("formula")
}

func (f *modelFlags) model() (*model.Model, error) {

	formula, err := model.ParseFormula(f.formula)
	if err != nil {
		return nil, err
	}

	priors := make(map[string]model.Prior, len(f.priors))
	for _, raw := range f.priors {
		name, spec, found := strings.Cut(raw, "=")
		if !found {
			return nil, fmt.Errorf("prior '%s' must look like NAME=family(args)", raw)
		}

		prior, err := model.ParsePrior(spec)
		if err != nil {
			return nil, fmt.Errorf("prior for '%s': %w", strings.TrimSpace(name), err)
		}
		priors[strings.TrimSpace(name)] = prior
	}

	return model.New(formula, priors, model.Gaussian)
}

func (f *modelFlags) load(ctx context.Context, fetcher *dataset.Fetcher) (*frame.Frame, error) {

	sep := ';'
	if f.sep != "" {
		sep = []rune(f.sep)[0]
	}

	data, err := fetcher.Fetch(ctx, dataset.Resolve(f.data, sep))
	if err != nil {
		return nil, err
	}

	if f.where != "" {
		if data, err = dataset.Filter(data, f.where); err != nil {
			return nil, err
		}
	}

	for _, pair := range f.standardize {
		dst, src, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("standardize '%s' must look like DST=SRC", pair)
		}
		if data, err = dataset.Standardize(data, strings.TrimSpace(src), strings.TrimSpace(dst)); err != nil {
			return nil, err
		}
	}

	return data, nil
}
