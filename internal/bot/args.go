package bot

import (
	"strings"
	"unicode"
)

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining arguments after the command.
	Args Args
	// RawArgs is the raw text after the command, preserving spacing.
	RawArgs string
}

// ParseLine splits a text line into a command and arguments.
//
// Postcondition: Returns a ParseResult. If line is empty, Command is empty.
func ParseLine(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	end := strings.IndexFunc(line, unicode.IsSpace)
	if end < 0 {
		return ParseResult{Command: strings.ToLower(line)}
	}

	rest := strings.TrimSpace(line[end:])
	return ParseResult{
		Command: strings.ToLower(line[:end]),
		Args:    ParseArgs(rest),
		RawArgs: rest,
	}
}

type field struct {
	text  string
	start int
}

// Args is a whitespace-split argument list in which double-quoted runs form
// a single argument, so `"Sir Robin" hp 10` has three arguments.
type Args struct {
	raw    string
	fields []field
}

// ParseArgs splits raw into arguments. An unterminated quote extends to the
// end of the input.
func ParseArgs(raw string) Args {
	a := Args{raw: raw}
	i := 0
	for i < len(raw) {
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		if i >= len(raw) {
			break
		}
		start := i
		if raw[i] == '"' {
			i++
			closing := strings.IndexByte(raw[i:], '"')
			if closing < 0 {
				a.fields = append(a.fields, field{text: raw[i:], start: start})
				break
			}
			a.fields = append(a.fields, field{text: raw[i : i+closing], start: start})
			i += closing + 1
			continue
		}
		for i < len(raw) && !isSpace(raw[i]) {
			i++
		}
		a.fields = append(a.fields, field{text: raw[start:i], start: start})
	}
	return a
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// Len returns the number of arguments.
func (a Args) Len() int { return len(a.fields) }

// At returns the i-th argument with quotes removed, or "" when out of range.
func (a Args) At(i int) string {
	if i < 0 || i >= len(a.fields) {
		return ""
	}
	return a.fields[i].text
}

// Rest returns the raw text from the i-th argument to the end of the input,
// or "" when out of range.
func (a Args) Rest(i int) string {
	if i < 0 || i >= len(a.fields) {
		return ""
	}
	return strings.TrimSpace(a.raw[a.fields[i].start:])
}

// Strings returns every argument with quotes removed.
func (a Args) Strings() []string {
	if len(a.fields) == 0 {
		return nil
	}
	out := make([]string, len(a.fields))
	for i, f := range a.fields {
		out[i] = f.text
	}
	return out
}
