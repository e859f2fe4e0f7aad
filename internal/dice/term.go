package dice

import (
	"fmt"
	"strconv"
)

// Term is one lexical unit of a dice expression. The concrete types are
// Dice, Number, Operator, Versus and Repeat; no other type implements Term.
type Term interface {
	fmt.Stringer
	term()
}

// KeepDirection selects which end of the sorted rolls a keep modifier retains.
type KeepDirection int

const (
	// KeepBest keeps the highest values ("b" suffix).
	KeepBest KeepDirection = iota
	// KeepWorst keeps the lowest values ("w" suffix).
	KeepWorst
)

// Keep is the optional keep-best/keep-worst modifier of a Dice term.
type Keep struct {
	Direction KeepDirection
	Amount    int
}

func (k Keep) String() string {
	if k.Direction == KeepWorst {
		return "w" + strconv.Itoa(k.Amount)
	}
	return "b" + strconv.Itoa(k.Amount)
}

// Dice rolls Count dice of Sides faces each.
//
// Invariant: Count and Sides are non-negative; Keep is nil when no modifier was given.
type Dice struct {
	Count int
	Sides int
	Keep  *Keep
}

// Number is a literal signed integer operand.
type Number int64

// Op enumerates the arithmetic operators.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpPow
)

// Operator applies to the running total and the next operand.
type Operator Op

// Versus is a skill-check clause comparing the total against Target.
type Versus struct {
	Target int64
	Tag    string
}

// Repeat requests Count independent evaluations of the expression.
type Repeat int

func (Dice) term()     {}
func (Number) term()   {}
func (Operator) term() {}
func (Versus) term()   {}
func (Repeat) term()   {}

// String renders the term in canonical notation, e.g. "4d6b3".
func (d Dice) String() string {
	s := fmt.Sprintf("%dd%d", d.Count, d.Sides)
	if d.Keep != nil {
		s += d.Keep.String()
	}
	return s
}

func (n Number) String() string { return strconv.FormatInt(int64(n), 10) }

func (o Operator) String() string {
	switch Op(o) {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "×"
	case OpDiv:
		return "/"
	case OpRem:
		return "%"
	case OpPow:
		return "^"
	default:
		panic(fmt.Sprintf("dice: unknown operator %d", int(o)))
	}
}

func (v Versus) String() string {
	if v.Tag == "" {
		return fmt.Sprintf("vs %d", v.Target)
	}
	return fmt.Sprintf("vs %s %d", v.Tag, v.Target)
}

func (r Repeat) String() string { return fmt.Sprintf("r%d", int(r)) }

// Kept returns how many dice contribute to the term's value.
//
// Postcondition: 0 <= result <= d.Count.
func (d Dice) Kept() int {
	if d.Keep == nil {
		return d.Count
	}
	return min(d.Keep.Amount, d.Count)
}
