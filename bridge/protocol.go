package bridge

import (
	"fmt"
	"strings"
)

// Every request is a single line of R evaluated at top level. The interpreter
// answers with a reply line "<token> <status> [payload]" once the request is done;
// anything printed before it is snippet output.

const (
	statusOK      = "OK"
	statusErr     = "ERR"
	statusMissing = "MISSING"
	statusConv    = "CONV"
	statusValue   = "VAL"
)

const rConditionMessage = `gsub("[\r\n]+", " ", conditionMessage(e))`

const rReplyTail = `cat("\n%s ", .bridge_status, "\n", sep = ""); flush(stdout()) })`

// quoteR renders s as a double quoted R string literal.
func quoteR(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)

	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&sb, `\x%02x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')

	return sb.String()
}

// R truncates console input lines, so long text is staged in chunks first.
const stageChunkRunes = 512

const rStagedText = `.text <- paste(unlist(.GlobalEnv$.bridge_buf), collapse = ""); rm(".bridge_buf", envir = globalenv()); `

// stageLines binds the text into .bridge_buf through lines of bounded size.
func stageLines(text string) []string {

	lines := []string{".bridge_buf <- list()\n"}

	runes := []rune(text)
	for start := 0; start < len(runes); start += stageChunkRunes {
		end := min(start+stageChunkRunes, len(runes))
		lines = append(lines, ".bridge_buf[[length(.bridge_buf) + 1L]] <- "+quoteR(string(runes[start:end]))+"\n")
	}

	return lines
}

func wrapRequest(token string, body string) string {
	return "local({ .bridge_status <- tryCatch({ " + body + " }, error = function(e) paste(\"" + statusErr + "\", " + rConditionMessage + ")); " +
		fmt.Sprintf(rReplyTail, token) + "\n"
}

func execRequest(token string, snippet string) []string {
	body := rStagedText + fmt.Sprintf(`eval(parse(text = .text), envir = globalenv()); "%s"`, statusOK)
	return append(stageLines(snippet), wrapRequest(token, body))
}

func exportRequest(token string, name string) []string {
	quoted := quoteR(name)

	body := fmt.Sprintf(`if (!exists(%s, envir = globalenv(), inherits = FALSE)) "%s" `, quoted, statusMissing) +
		fmt.Sprintf(`else if (!requireNamespace("arrow", quietly = TRUE)) "%s the arrow package is not installed" `, statusErr) +
		`else tryCatch(paste("` + statusValue + `", paste(as.character(arrow::write_to_raw(arrow::as_arrow_table(` +
		fmt.Sprintf(`get(%s, envir = globalenv())), format = "stream")), collapse = "")), `, quoted) +
		`error = function(e) paste("` + statusConv + `", ` + rConditionMessage + `))`

	return []string{wrapRequest(token, body)}
}

func importRequest(token string, name string, hexStream string) []string {
	body := rStagedText +
		`.raw <- as.raw(strtoi(substring(.text, seq(1, nchar(.text), 2), seq(2, nchar(.text), 2)), 16L)); ` +
		fmt.Sprintf(`assign(%s, as.data.frame(arrow::read_ipc_stream(.raw)), envir = globalenv()); "%s"`, quoteR(name), statusOK)

	return append(stageLines(hexStream), wrapRequest(token, body))
}

type reply struct {
	status  string
	payload string
}

// parseReply reports whether line is the reply for token.
func parseReply(token string, line string) (reply, bool) {

	rest, found := strings.CutPrefix(line, token+" ")
	if !found {
		return reply{}, false
	}

	status, payload, _ := strings.Cut(rest, " ")

	return reply{status: status, payload: payload}, true
}
