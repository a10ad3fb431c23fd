//go:build integration

package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

const rImage = "rocker/tidyverse:4.4.1"

func checkTestcontainersAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}

// startContainerBridge runs R inside a long lived container through docker exec.
func startContainerBridge(t *testing.T) *Bridge {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if !checkTestcontainersAvailable() {
		t.Skip("skipping integration test: no container provider available")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: rImage,
			Cmd:   []string{"sleep", "infinity"},
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	session, err := StartR(ctx, []string{"docker", "exec", "-i", container.GetContainerID(), "R", "--vanilla", "--no-echo"})
	require.NoError(t, err)

	b := New(session, WithTimeout(10*time.Minute))
	t.Cleanup(func() { _ = b.Close() })

	require.NoError(t, b.Exec(ctx, `if (!requireNamespace("arrow", quietly = TRUE)) install.packages("arrow", repos = "https://cloud.r-project.org")`))

	return b
}

func TestIntegrationEvalRoundTrip(t *testing.T) {
	b := startContainerBridge(t)
	ctx := context.Background()

	result, err := b.Eval(ctx, `d <- data.frame(x = 1:3, y = c("a", "b", "c"))`, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y"}, result.Names())
	assert.Equal(t, 3, result.NRows())

	xs, err := result.Float64s("x")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, xs)

	ys, err := result.Strings("y")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ys)

	categorical, err := b.Eval(ctx, `f <- data.frame(g = factor(c("lo", "hi", "lo")))`, "f")
	require.NoError(t, err)
	levels, err := categorical.Strings("g")
	require.NoError(t, err)
	assert.Equal(t, []string{"lo", "hi", "lo"}, levels)

	require.NoError(t, b.Put(ctx, "back", result))
	again, err := b.Eval(ctx, `back$z <- back$x * 2`, "back")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, again.Names())
}

func TestIntegrationErrors(t *testing.T) {
	b := startContainerBridge(t)
	ctx := context.Background()

	_, err := b.Eval(ctx, `stop("boom")`, "")
	var envErr *EnvironmentError
	require.ErrorAs(t, err, &envErr)
	assert.Contains(t, envErr.Message, "boom")

	_, err = b.Eval(ctx, `x <- 1`, "never_bound")
	var lookupErr *LookupError
	assert.ErrorAs(t, err, &lookupErr)

	_, err = b.Eval(ctx, `fn <- function() 1`, "fn")
	var convErr *ConversionError
	assert.ErrorAs(t, err, &convErr)
}
