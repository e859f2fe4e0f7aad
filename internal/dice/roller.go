package dice

import (
	"fmt"
	"math"
	"slices"
	"sync"
)

// Default engine limits.
const (
	DefaultMaxDice   = 1000
	DefaultMaxRepeat = 20
)

// RolledTerm pairs a Term with the values realized for it in one iteration:
// one value per die for Dice, the literal for Number, none otherwise.
type RolledTerm struct {
	Term   Term
	Values []int64
}

// Roll is the outcome of one evaluation of an Expression.
type Roll struct {
	Terms      []RolledTerm
	Total      int64
	Versus     *Versus
	Convention Convention
}

// Outcome resolves the attached versus clause.
//
// Postcondition: ok is false when the roll carries no versus clause.
func (r Roll) Outcome() (Outcome, bool) {
	if r.Versus == nil {
		return Outcome{}, false
	}
	return Resolve(r.Convention, r.Total, r.Versus.Target), true
}

// RollSet holds one Roll per repeat iteration, in order.
type RollSet []Roll

// Engine evaluates expressions against a random Source.
// An Engine is safe for concurrent use when its Source is.
type Engine struct {
	src       Source
	maxDice   int
	maxRepeat int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLimits caps the dice per term and the repeat count. Non-positive values
// keep the defaults.
func WithLimits(maxDice, maxRepeat int) Option {
	return func(e *Engine) {
		if maxDice > 0 {
			e.maxDice = maxDice
		}
		if maxRepeat > 0 {
			e.maxRepeat = maxRepeat
		}
	}
}

// NewEngine creates an Engine drawing from src.
//
// Precondition: src must be non-nil.
func NewEngine(src Source, opts ...Option) *Engine {
	e := &Engine{src: src, maxDice: DefaultMaxDice, maxRepeat: DefaultMaxRepeat}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = sync.OnceValue(func() *Engine {
	return NewEngine(NewCryptoSource())
})

// Evaluate parses, rolls and formats text with a process-wide engine backed
// by crypto/rand.
func Evaluate(text string) (string, error) {
	return defaultEngine().Evaluate(text)
}

// Evaluate parses, rolls and formats text.
func (e *Engine) Evaluate(text string) (string, error) {
	expr, err := Parse(text)
	if err != nil {
		return "", err
	}
	set, err := e.Roll(expr)
	if err != nil {
		return "", err
	}
	return set.String(), nil
}

// Roll evaluates expr once per repeat iteration. Every iteration draws fresh
// values for every die.
//
// Precondition: expr must come from Parse.
// Postcondition: len(result) == expr.Repeat, or a non-nil error and no result.
func (e *Engine) Roll(expr Expression) (RollSet, error) {
	if err := e.validate(expr); err != nil {
		return nil, err
	}
	conv := expr.Convention()
	set := make(RollSet, 0, expr.Repeat)
	for range expr.Repeat {
		r, err := e.rollOnce(expr.Terms)
		if err != nil {
			return nil, err
		}
		r.Versus = expr.Versus
		r.Convention = conv
		set = append(set, r)
	}
	return set, nil
}

// RollExpr parses text and rolls it in a single call.
func (e *Engine) RollExpr(text string) (RollSet, error) {
	expr, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return e.Roll(expr)
}

func (e *Engine) validate(expr Expression) error {
	if expr.Repeat < 1 || expr.Repeat > e.maxRepeat {
		return fmt.Errorf("%w: count must be 1-%d, got %d", ErrInvalidRepeat, e.maxRepeat, expr.Repeat)
	}
	for _, t := range expr.Terms {
		d, ok := t.(Dice)
		if !ok {
			continue
		}
		if d.Sides < 1 {
			return fmt.Errorf("%w: %s has no sides", ErrInvalidDice, d)
		}
		if d.Count > e.maxDice {
			return fmt.Errorf("%w: %s exceeds %d dice", ErrInvalidDice, d, e.maxDice)
		}
	}
	return nil
}

func (e *Engine) rollOnce(terms []Term) (Roll, error) {
	rolled := make([]RolledTerm, 0, len(terms))
	op := OpAdd
	var total int64
	for _, t := range terms {
		var values []int64
		var contribution int64
		operand := true
		switch v := t.(type) {
		case Dice:
			values = make([]int64, v.Count)
			for i := range values {
				values[i] = int64(e.src.Intn(v.Sides) + 1)
			}
			contribution = keepSum(v, values)
		case Number:
			values = []int64{int64(v)}
			contribution = int64(v)
		case Operator:
			op = Op(v)
			operand = false
		case Versus, Repeat:
			operand = false
		default:
			panic(fmt.Sprintf("dice: unhandled term %T", t))
		}
		rolled = append(rolled, RolledTerm{Term: t, Values: values})
		if !operand {
			continue
		}
		var err error
		if total, err = apply(op, total, contribution); err != nil {
			return Roll{}, err
		}
	}
	return Roll{Terms: rolled, Total: total}, nil
}

// keepSum sums the values a Dice term keeps. values is not modified.
func keepSum(d Dice, values []int64) int64 {
	kept := values
	if d.Keep != nil {
		kept = slices.Clone(values)
		slices.Sort(kept)
		if d.Keep.Direction == KeepBest {
			slices.Reverse(kept)
		}
		kept = kept[:d.Kept()]
	}
	var sum int64
	for _, v := range kept {
		sum += v
	}
	return sum
}

func apply(op Op, lhs, rhs int64) (int64, error) {
	switch op {
	case OpAdd:
		r := lhs + rhs
		if (rhs > 0 && r < lhs) || (rhs < 0 && r > lhs) {
			return 0, ErrOverflow
		}
		return r, nil
	case OpSub:
		r := lhs - rhs
		if (rhs > 0 && r > lhs) || (rhs < 0 && r < lhs) {
			return 0, ErrOverflow
		}
		return r, nil
	case OpMul:
		return mul(lhs, rhs)
	case OpDiv:
		if rhs == 0 {
			return 0, ErrDivisionByZero
		}
		if lhs == math.MinInt64 && rhs == -1 {
			return 0, ErrOverflow
		}
		return lhs / rhs, nil
	case OpRem:
		if rhs == 0 {
			return 0, ErrDivisionByZero
		}
		return lhs % rhs, nil
	case OpPow:
		return pow(lhs, rhs)
	default:
		panic(fmt.Sprintf("dice: unknown operator %d", int(op)))
	}
}

func mul(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	r := a * b
	if r/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, ErrOverflow
	}
	return r, nil
}

func pow(base, exp int64) (int64, error) {
	switch {
	case exp < 0:
		return 0, ErrInvalidExponent
	case exp == 0, base == 1:
		return 1, nil
	case base == 0:
		return 0, nil
	case base == -1:
		if exp%2 == 0 {
			return 1, nil
		}
		return -1, nil
	}
	// |base| >= 2 overflows within 63 multiplications.
	result := int64(1)
	for ; exp > 0; exp-- {
		var err error
		if result, err = mul(result, base); err != nil {
			return 0, err
		}
	}
	return result, nil
}
