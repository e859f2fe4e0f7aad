// Package gurps provides the GURPS table lookups the bot exposes as commands:
// strength-derived lift and damage, size and speed/range modifiers, linear
// values, and reaction rolls.
package gurps

import (
	"fmt"
	"math"
	"strconv"
)

// Strength holds the values derived from a single ST score.
type Strength struct {
	ST     int
	Lift   float64
	Thrust string
	Swing  string
}

// CalcStrength derives Basic Lift and thrust/swing damage for st using the
// "Knowing Your Own Strength" progression.
//
// Postcondition: Lift is rounded to two significant figures.
func CalcStrength(st int) Strength {
	lift := math.Pow(10, float64(st)/10) * 2
	return Strength{
		ST:     st,
		Lift:   roundSignificant(lift, 2),
		Thrust: damageDice(st, 8, 12),
		Swing:  damageDice(st, 6, 10),
	}
}

// String renders the strength summary as a chat reply.
func (s Strength) String() string {
	return fmt.Sprintf("**ST** %d: **Basic Lift** %s; **Damage** *Thr* %s, *Sw* %s",
		s.ST, formatFloat(s.Lift), s.Thrust, s.Swing)
}

// damageDice turns (st-offset)/4 into dice notation. Quarters map to +1, +2
// and a -1 on the next die; below one die the low-ST table applies.
func damageDice(st, offset, lowOffset int) string {
	quarters := st - offset
	if quarters < 4 {
		return fmt.Sprintf("1d%+d", st-lowOffset)
	}
	n := quarters / 4
	switch quarters % 4 {
	case 0:
		return fmt.Sprintf("%dd", n)
	case 1:
		return fmt.Sprintf("%dd+1", n)
	case 2:
		return fmt.Sprintf("%dd+2", n)
	default:
		return fmt.Sprintf("%dd-1", n+1)
	}
}

// roundSignificant rounds v to digits significant figures.
func roundSignificant(v float64, digits int) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	exp := float64(digits-1) - math.Floor(math.Log10(math.Abs(v)))
	if exp >= 0 {
		scale := math.Pow(10, exp)
		return math.Round(v*scale) / scale
	}
	scale := math.Pow(10, -exp)
	return math.Round(v/scale) * scale
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
