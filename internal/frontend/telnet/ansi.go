// Package telnet provides the Telnet transport for the chat console: a TCP
// acceptor, line-oriented connections and ANSI rendering of chat markdown.
package telnet

import (
	"regexp"
	"strings"
)

// ANSI escape codes used by the console.
const (
	Reset     = "\033[0m"
	Bold      = "\033[1m"
	Dim       = "\033[2m"
	Italic    = "\033[3m"
	Underline = "\033[4m"

	Red         = "\033[31m"
	Green       = "\033[32m"
	Yellow      = "\033[33m"
	Cyan        = "\033[36m"
	BrightCyan  = "\033[96m"
	BrightWhite = "\033[97m"
)

// Colorize wraps text with the given ANSI code and a reset suffix.
//
// Precondition: color must be a valid ANSI escape sequence.
func Colorize(color, text string) string {
	return color + text + Reset
}

// StripANSI removes all ANSI SGR sequences from a string.
//
// Postcondition: Returns text with all \033[...m sequences removed.
func StripANSI(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			if end := strings.IndexByte(s[i+2:], 'm'); end >= 0 {
				i += end + 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

var markdownSpans = []struct {
	re    *regexp.Regexp
	style string
}{
	{regexp.MustCompile(`\*\*([^*\n]+)\*\*`), Bold},
	{regexp.MustCompile(`__([^_\n]+)__`), Underline},
	{regexp.MustCompile(`\*([^*\n]+)\*`), Italic},
	{regexp.MustCompile(`\b_([^_\n]+)_\b`), Italic},
	{regexp.MustCompile("`([^`\n]+)`"), Cyan},
}

// RenderMarkdown converts the chat markdown used in bot replies into ANSI
// styling: code fences become dimmed blocks and bold, underline, italic and
// inline code spans become the matching escape codes.
func RenderMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	fenced := false
	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			fenced = !fenced
			continue
		}
		if fenced {
			out = append(out, Colorize(Dim, "  "+line))
			continue
		}
		for _, span := range markdownSpans {
			line = span.re.ReplaceAllString(line, span.style+"${1}"+Reset)
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
