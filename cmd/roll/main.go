// Package main rolls dice expressions from the command line, one roll per
// line, e.g. `roll "3d6 vs 12" r3 4d6b3`. With no arguments each line of
// stdin is rolled.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cory-johannsen/dicebot/internal/dice"
)

type styles struct {
	expr     lipgloss.Style
	success  lipgloss.Style
	failure  lipgloss.Style
	critical lipgloss.Style
	err      lipgloss.Style
}

func newStyles(plain bool) styles {
	if plain {
		s := lipgloss.NewStyle()
		return styles{expr: s, success: s, failure: s, critical: s, err: s}
	}
	return styles{
		expr:     lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		success:  lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F")),
		failure:  lipgloss.NewStyle().Foreground(lipgloss.Color("#D75F5F")),
		critical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA500")),
		err:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")),
	}
}

// render styles each roll of set by its skill-check outcome.
func (s styles) render(input string, set dice.RollSet) string {
	lines := make([]string, 0, len(set)+1)
	lines = append(lines, s.expr.Render(input+":"))
	for _, r := range set {
		line := r.String()
		outcome, ok := r.Outcome()
		switch {
		case !ok:
		case outcome.Qualifier != dice.QualifierNone:
			line = s.critical.Render(line)
		case outcome.Success:
			line = s.success.Render(line)
		default:
			line = s.failure.Render(line)
		}
		lines = append(lines, "  "+line)
	}
	return strings.Join(lines, "\n")
}

// run rolls every input and reports whether all of them parsed.
func run(engine *dice.Engine, st styles, inputs []string, out io.Writer) bool {
	ok := true
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		set, err := engine.RollExpr(input)
		if err != nil {
			fmt.Fprintln(out, st.err.Render(fmt.Sprintf("%s: %v", input, err)))
			ok = false
			continue
		}
		fmt.Fprintln(out, st.render(input, set))
	}
	return ok
}

func main() {
	seed := flag.Uint64("seed", 0, "seed for reproducible rolls (0 = crypto/rand)")
	maxDice := flag.Int("max-dice", 1000, "maximum dice in one term")
	maxRepeat := flag.Int("max-repeat", 100, "maximum repeat count")
	plain := flag.Bool("plain", false, "disable colors")
	flag.Parse()

	src := dice.NewCryptoSource()
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
	}
	engine := dice.NewEngine(src, dice.WithLimits(*maxDice, *maxRepeat))

	inputs := flag.Args()
	if len(inputs) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			inputs = append(inputs, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "reading stdin: %v\n", err)
			os.Exit(1)
		}
	}

	if !run(engine, newStyles(*plain), inputs, os.Stdout) {
		os.Exit(1)
	}
}
