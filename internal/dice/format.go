package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders one line: every rolled term, then the total and any
// skill-check outcome, e.g. "4d6b3[5, 3, 2, 6] + 2 (Total: 16)".
func (r Roll) String() string {
	var b strings.Builder
	for _, rt := range r.Terms {
		switch t := rt.Term.(type) {
		case Dice:
			b.WriteString(t.String())
			b.WriteString(formatValues(rt.Values))
		case Number, Operator:
			b.WriteString(t.String())
		case Versus, Repeat:
			continue
		default:
			panic(fmt.Sprintf("dice: unhandled term %T", t))
		}
		b.WriteByte(' ')
	}

	outcome, ok := r.Outcome()
	if !ok {
		fmt.Fprintf(&b, "(Total: %d)", r.Total)
		return b.String()
	}
	label := strconv.FormatInt(r.Versus.Target, 10)
	if r.Versus.Tag != "" {
		label = r.Versus.Tag + " " + label
	}
	fmt.Fprintf(&b, "(Total: %2d vs %s: %s)", r.Total, label, outcome)
	return b.String()
}

// String renders one line per roll.
func (s RollSet) String() string {
	lines := make([]string, len(s))
	for i, r := range s {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}

// Totals returns the total of every roll in order.
func (s RollSet) Totals() []int64 {
	out := make([]int64, len(s))
	for i, r := range s {
		out[i] = r.Total
	}
	return out
}

func formatValues(values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
