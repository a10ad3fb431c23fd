package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLz4RoundTrip(t *testing.T) {
	src := bytes.Repeat([]byte("151.765;47.8256065;63;1\n"), 200)

	compressed := bytes.Buffer{}
	require.NoError(t, CompressLz4(src, &compressed))

	assert.True(t, IsLz4(compressed.Bytes()))
	assert.Less(t, compressed.Len(), len(src))

	out := bytes.Buffer{}
	require.NoError(t, DecompressLz4(compressed.Bytes(), &out))
	assert.Equal(t, src, out.Bytes())
}

func TestDecompressRejectsPlainInput(t *testing.T) {
	out := bytes.Buffer{}
	assert.ErrorIs(t, DecompressLz4([]byte("ARROW1"), &out), ErrNotCompressed)
	assert.False(t, IsLz4(nil))
}
