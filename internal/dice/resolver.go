package dice

import "fmt"

// Convention is the game-system rule used to judge a versus clause.
type Convention int

const (
	// ConventionPlain succeeds when total >= target, with no criticals.
	ConventionPlain Convention = iota
	// ConventionGURPS is the GURPS 4e 3d6 roll-under success roll.
	ConventionGURPS
	// ConventionD20 is a generic d20 roll-over check.
	ConventionD20
	// ConventionD100 is a generic percentile roll-under check.
	ConventionD100
)

func (c Convention) String() string {
	switch c {
	case ConventionPlain:
		return "plain"
	case ConventionGURPS:
		return "gurps"
	case ConventionD20:
		return "d20"
	case ConventionD100:
		return "d100"
	default:
		return fmt.Sprintf("Convention(%d)", int(c))
	}
}

// InferConvention picks a Convention from the shape of the only Dice term in
// terms. Any other shape, or more than one Dice term, yields ConventionPlain.
func InferConvention(terms []Term) Convention {
	var dice []Dice
	for _, t := range terms {
		if d, ok := t.(Dice); ok {
			dice = append(dice, d)
		}
	}
	if len(dice) != 1 {
		return ConventionPlain
	}
	d := dice[0]
	switch {
	case d.Count == 3 && d.Sides == 6:
		return ConventionGURPS
	case d.Sides == 20 && d.Count == 1:
		return ConventionD20
	case d.Sides == 20 && d.Count == 2 && d.Keep != nil && d.Keep.Amount == 1:
		return ConventionD20
	case d.Sides == 100 && d.Count == 1:
		return ConventionD100
	default:
		return ConventionPlain
	}
}

// Qualifier marks a result beyond plain success or failure.
type Qualifier int

const (
	QualifierNone Qualifier = iota
	QualifierCriticalSuccess
	QualifierCriticalFailure
	// QualifierAutomaticFailure is the GURPS 17 on an effective skill of 16+.
	QualifierAutomaticFailure
)

// Outcome is a resolved skill check.
//
// Margin is signed so that a positive value is a degree of success under
// the outcome's convention.
type Outcome struct {
	Convention Convention
	Success    bool
	Margin     int64
	Qualifier  Qualifier
}

// Resolve judges total against target under c.
func Resolve(c Convention, total, target int64) Outcome {
	switch c {
	case ConventionGURPS:
		return resolveGURPS(total, target)
	case ConventionD20:
		margin := total - target
		return Outcome{Convention: c, Success: margin >= 0, Margin: margin}
	case ConventionD100:
		margin := target - total
		return Outcome{Convention: c, Success: margin >= 0, Margin: margin}
	default:
		margin := total - target
		return Outcome{Convention: ConventionPlain, Success: margin >= 0, Margin: margin}
	}
}

func resolveGURPS(total, target int64) Outcome {
	o := Outcome{Convention: ConventionGURPS, Margin: target - total}
	switch {
	case total < 5 || (target > 14 && total < 6) || (target > 15 && total < 7):
		o.Success = true
		o.Qualifier = QualifierCriticalSuccess
	case target > 15 && total == 17:
		o.Qualifier = QualifierAutomaticFailure
	case total > 16 || o.Margin <= -10:
		o.Qualifier = QualifierCriticalFailure
	default:
		o.Success = o.Margin >= 0
	}
	return o
}

// String renders the outcome, e.g. "Success by 3".
func (o Outcome) String() string {
	switch o.Qualifier {
	case QualifierCriticalSuccess:
		return fmt.Sprintf("Critical Success, Margin of %d", o.Margin)
	case QualifierAutomaticFailure:
		return fmt.Sprintf("Automatic Failure, Margin of %d", o.Margin)
	case QualifierCriticalFailure:
		return fmt.Sprintf("Critical Failure, Margin of %d", abs(o.Margin))
	}
	if o.Success {
		return fmt.Sprintf("Success by %d", abs(o.Margin))
	}
	return fmt.Sprintf("Failure by %d", abs(o.Margin))
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
