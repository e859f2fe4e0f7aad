package dice

import (
	"errors"
	"fmt"
)

// Evaluation failures. Every failure rejects the whole expression.
var (
	// ErrEmptyExpression means no term could be extracted from the input.
	ErrEmptyExpression = errors.New("empty expression")
	// ErrIntegerFormat means a numeric field failed to parse. The concrete
	// error is an *IntegerFormatError.
	ErrIntegerFormat = errors.New("invalid integer")
	// ErrDivisionByZero means a Div or Rem operand was zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrInvalidExponent means a Pow operand was negative.
	ErrInvalidExponent = errors.New("negative exponent")
	// ErrInvalidDice means a dice term has no sides or more dice than the
	// engine allows.
	ErrInvalidDice = errors.New("invalid dice")
	// ErrInvalidRepeat means a repeat count is zero or over the engine's limit.
	ErrInvalidRepeat = errors.New("invalid repeat")
	// ErrOverflow means the running total left the int64 range.
	ErrOverflow = errors.New("integer overflow")
)

// IntegerFormatError carries the fragment that failed to parse.
type IntegerFormatError struct {
	Fragment string
	Err      error
}

func (e *IntegerFormatError) Error() string {
	return fmt.Sprintf("invalid integer %q", e.Fragment)
}

// Is reports ErrIntegerFormat as a match.
func (e *IntegerFormatError) Is(target error) bool { return target == ErrIntegerFormat }

func (e *IntegerFormatError) Unwrap() error { return e.Err }
