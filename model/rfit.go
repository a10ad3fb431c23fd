package model

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"text/template"
	"time"

	"github.com/dot5enko/rethinking-bridge/frame"
	"github.com/dot5enko/rethinking-bridge/posterior"
)

const (
	halfNormalDensity = "dhalfnorm_bridge"

	fitDataVariable  = ".bridge_fit_data"
	fitDrawsVariable = ".bridge_fit_draws"
)

// FitOptions holds MCMC style sampler settings. quap draws Draws*Chains samples from its quadratic approximation; Tune and
// Cores have no meaning there and are only logged.
type FitOptions struct {
	Draws  int
	Tune   int
	Chains int
	Cores  int
	Seed   uint64
}

func DefaultFitOptions() FitOptions {
	return FitOptions{Draws: 1000, Tune: 1000, Chains: 4, Cores: 4, Seed: 4}
}

func (o FitOptions) samples() int {
	return max(o.Draws, 1) * max(o.Chains, 1)
}

// Evaluator is the part of bridge.Bridge the fitter needs.
type Evaluator interface {
	Put(ctx context.Context, variable string, f *frame.Frame) error
	Eval(ctx context.Context, snippet string, variable string) (*frame.Frame, error)
}

// RFitter fits models with rethinking::quap in the foreign environment.
type RFitter struct {
	Env Evaluator
}

type quapTemplateData struct {
	Data       string
	Draws      string
	Seed       uint64
	Samples    int
	Lines      []string
	Start      []string
	HalfNormal string
}

var quapTemplate = template.Must(template.New("quap").Parse(`{{.HalfNormal}} <- function(x, sigma, log = FALSE) {
  d <- ifelse(x < 0, 0, 2 * dnorm(x, 0, sigma))
  if (log) log(d) else d
}
set.seed({{.Seed}})
.bridge_fit <- rethinking::quap(
  alist(
{{- range $i, $line := .Lines}}{{if $i}},{{end}}
    {{$line}}
{{- end}}
  ),
  data = as.data.frame({{.Data}}),
  start = list({{range $i, $s := .Start}}{{if $i}}, {{end}}{{$s}}{{end}})
)
{{.Draws}} <- as.data.frame(rethinking::extract.samples(.bridge_fit, n = {{.Samples}}))
`))

// foreignName maps a model parameter to the name used inside the quap
// formula, keeping parameters apart from data columns.
func foreignName(param string) string {
	switch param {
	case posterior.InterceptParameter:
		return "bridge_a"
	case posterior.SigmaParameter:
		return "bridge_sigma"
	default:
		return "bridge_b_" + param
	}
}

// QuapSnippet renders the foreign code that fits m to the data bound to
// dataVariable and binds the draws to drawsVariable.
func QuapSnippet(m *Model, dataVariable, drawsVariable string, opts FitOptions) (string, error) {

	data := quapTemplateData{
		Data:       dataVariable,
		Draws:      drawsVariable,
		Seed:       opts.Seed % math.MaxInt32,
		Samples:    opts.samples(),
		HalfNormal: halfNormalDensity,
	}

	linear := foreignName(posterior.InterceptParameter)
	for _, predictor := range m.Formula.Predictors {
		linear += fmt.Sprintf(" + %s * %s", foreignName(predictor), predictor)
	}

	data.Lines = append(data.Lines,
		fmt.Sprintf("%s ~ dnorm(bridge_mu, %s)", m.Formula.Response, foreignName(posterior.SigmaParameter)),
		"bridge_mu <- "+linear,
	)

	response := fmt.Sprintf("%s$%s", dataVariable, m.Formula.Response)

	for _, param := range m.Parameters() {
		name := foreignName(param)
		data.Lines = append(data.Lines, fmt.Sprintf("%s ~ %s", name, m.Priors[param].quapDensity()))

		switch param {
		case posterior.InterceptParameter:
			data.Start = append(data.Start, fmt.Sprintf("%s = mean(%s)", name, response))
		case posterior.SigmaParameter:
			data.Start = append(data.Start, fmt.Sprintf("%s = sd(%s)", name, response))
		default:
			data.Start = append(data.Start, name+" = 0")
		}
	}

	buf := bytes.Buffer{}
	if err := quapTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("unable to render quap snippet: %w", err)
	}

	return buf.String(), nil
}

// Fit binds data in the foreign environment, fits m and returns the draws
// under the model's parameter names.
func (r RFitter) Fit(ctx context.Context, m *Model, data *frame.Frame, opts FitOptions) (*posterior.SampleSet, error) {

	for _, column := range append([]string{m.Formula.Response}, m.Formula.Predictors...) {
		if data.Schema.Index(column) < 0 {
			return nil, fmt.Errorf("%w: data has no column '%s'", ErrInvalidModel, column)
		}
	}

	snippet, err := QuapSnippet(m, fitDataVariable, fitDrawsVariable, opts)
	if err != nil {
		return nil, err
	}

	if opts.Tune > 0 || opts.Cores > 1 {
		slog.Debug("quap ignores tuning and core settings", "tune", opts.Tune, "cores", opts.Cores)
	}

	before := time.Now()

	if putErr := r.Env.Put(ctx, fitDataVariable, data); putErr != nil {
		return nil, fmt.Errorf("unable to bind fit data: %w", putErr)
	}

	draws, err := r.Env.Eval(ctx, snippet, fitDrawsVariable)
	if err != nil {
		return nil, err
	}

	rename := map[string]string{}
	foreign := make([]string, 0, len(m.Parameters()))
	for _, param := range m.Parameters() {
		name := foreignName(param)
		rename[name] = param
		foreign = append(foreign, name)
	}

	samples, err := posterior.FromFrame(draws, foreign...)
	if err != nil {
		return nil, err
	}

	slog.Info("fitted model", "formula", m.Formula.String(), "draws", samples.Len(), "took_ms", time.Since(before).Milliseconds())

	return samples.Rename(rename)
}
