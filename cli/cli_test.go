package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dot5enko/rethinking-bridge/bridge"
	"github.com/dot5enko/rethinking-bridge/config"
	"github.com/dot5enko/rethinking-bridge/dump"
	"github.com/dot5enko/rethinking-bridge/frame"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(t *testing.T) (*app, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Chdir(t.TempDir())
	color.NoColor = true

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	a := &app{
		stdout: stdout,
		stderr: stderr,
		newBridge: func(ctx context.Context, cfg config.Config) (*bridge.Bridge, error) {
			return nil, errors.New("no interpreter in tests")
		},
	}
	return a, stdout, stderr
}

func writeDraws(t *testing.T) string {
	t.Helper()

	f, err := frame.FromFloat64Columns("draws", []string{"Intercept", "weight", "sigma"}, [][]float64{
		{150, 151, 152, 149, 148},
		{0.9, 0.91, 0.89, 0.9, 0.92},
		{5, 5.1, 4.9, 5, 5.2},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "posterior.arrows")
	require.NoError(t, dump.WriteFile(path, f, true))
	return path
}

func TestPredictCommand(t *testing.T) {
	a, stdout, _ := testApp(t)
	draws := writeDraws(t)
	out := filepath.Join(t.TempDir(), "predictive.arrows")

	code := run(context.Background(), a, []string{"predict", "--draws", draws, "--grid", "weight=30,40", "--seed", "4", "-o", out})
	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "2 grid points x 5 draws")

	table, err := dump.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 10, table.NRows())
	assert.Equal(t, []string{"weight", "slope_weight", "Intercept", "sigma", "mean", "sample"}, table.Names())

	means, err := table.Float64s("mean")
	require.NoError(t, err)
	assert.InDelta(t, 150+0.9*30, means[0], 1e-9)
}

func TestPredictCommandShapeError(t *testing.T) {
	a, _, stderr := testApp(t)
	draws := writeDraws(t)

	code := run(context.Background(), a, []string{"predict", "--draws", draws, "--grid", "age=1:3"})
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "error:")
}

func TestSummaryCommand(t *testing.T) {
	a, stdout, _ := testApp(t)

	code := run(context.Background(), a, []string{"summary", writeDraws(t)})
	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "hdi_3%")
	assert.Contains(t, stdout.String(), "weight")
}

func TestEvalCommandReportsBridgeFailure(t *testing.T) {
	a, _, stderr := testApp(t)

	code := run(context.Background(), a, []string{"eval", "d <- 1"})
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "no interpreter in tests")
}

func TestParseGridFlag(t *testing.T) {
	name, values, err := parseGridFlag("weight=25:28:1")
	require.NoError(t, err)
	assert.Equal(t, "weight", name)
	assert.Equal(t, []float64{25, 26, 27}, values)

	_, values, err = parseGridFlag("A=-1, 0, 1")
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 0, 1}, values)

	for _, raw := range []string{"weight", "=1,2", "w=1:2:3:4", "w=a,b"} {
		_, _, err := parseGridFlag(raw)
		assert.Error(t, err, raw)
	}
}
