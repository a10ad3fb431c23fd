package bridge

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteR(t *testing.T) {
	cases := map[string]string{
		`d <- 1`:              `"d <- 1"`,
		`x <- "a"`:            `"x <- \"a\""`,
		"a\nb":                `"a\nb"`,
		`C:\data`:             `"C:\\data"`,
		"\x01":                `"\x01"`,
		"weight ~ dnorm(0,1)": `"weight ~ dnorm(0,1)"`,
		"высота":              `"высота"`,
	}

	for input, expected := range cases {
		assert.Equal(t, expected, quoteR(input), input)

		// the escapes used are a subset of Go's, so Go can read them back
		back, err := strconv.Unquote(quoteR(input))
		require.NoError(t, err)
		assert.Equal(t, input, back)
	}
}

func TestStageLinesBoundsLineSize(t *testing.T) {
	text := strings.Repeat("ab\"\\\n\x02ё", 1000)

	lines := stageLines(text)
	require.Greater(t, len(lines), 2)
	assert.Equal(t, ".bridge_buf <- list()\n", lines[0])

	rebuilt := strings.Builder{}
	for _, line := range lines[1:] {
		assert.Less(t, len(line), 4095)
		assert.True(t, strings.HasSuffix(line, "\n"))

		quoted := strings.TrimSuffix(strings.TrimPrefix(line, ".bridge_buf[[length(.bridge_buf) + 1L]] <- "), "\n")
		chunk, err := strconv.Unquote(quoted)
		require.NoError(t, err)
		rebuilt.WriteString(chunk)
	}

	assert.Equal(t, text, rebuilt.String())
}

func TestStageLinesEmptyText(t *testing.T) {
	lines := stageLines("")
	assert.Equal(t, []string{".bridge_buf <- list()\n"}, lines)
}

func TestRequestsEndWithReplyLine(t *testing.T) {
	token := "4a2f1f0e-2b6c-4a53-8a52-1f8f4a7d1d11"

	for _, lines := range [][]string{
		execRequest(token, "d <- data.frame(x = 1:3)"),
		exportRequest(token, "d"),
		importRequest(token, "d", "ffff"),
	} {
		last := lines[len(lines)-1]
		assert.True(t, strings.HasPrefix(last, "local({"))
		assert.Contains(t, last, `cat("\n`+token+` "`)
		assert.Equal(t, 1, strings.Count(last, "\n"))
	}

	assert.Contains(t, exportRequest(token, "d")[0], `exists("d", envir = globalenv(), inherits = FALSE)`)
}

func TestParseReply(t *testing.T) {
	token := "t1"

	res, ok := parseReply(token, "t1 OK")
	require.True(t, ok)
	assert.Equal(t, statusOK, res.status)
	assert.Equal(t, "", res.payload)

	res, ok = parseReply(token, "t1 ERR object 'x' not found")
	require.True(t, ok)
	assert.Equal(t, statusErr, res.status)
	assert.Equal(t, "object 'x' not found", res.payload)

	_, ok = parseReply(token, "[1] t1 OK")
	assert.False(t, ok)

	_, ok = parseReply(token, "t2 OK")
	assert.False(t, ok)
}

func TestParseCommandLine(t *testing.T) {
	args, err := ParseCommandLine(`docker exec -i "r box" R --vanilla --no-echo`)
	require.NoError(t, err)
	assert.Equal(t, []string{"docker", "exec", "-i", "r box", "R", "--vanilla", "--no-echo"}, args)

	_, err = ParseCommandLine("   ")
	assert.Error(t, err)

	_, err = ParseCommandLine(`R "unterminated`)
	assert.Error(t, err)
}
