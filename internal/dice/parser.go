package dice

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

// Expression is a parsed dice expression ready to be rolled.
//
// Invariant: Terms contains at least one Dice term and no Versus or Repeat
// terms; Repeat >= 0 (1 when the input carried no repeat clause).
type Expression struct {
	Raw    string
	Terms  []Term
	Versus *Versus
	Repeat int
}

// Convention reports the game-system convention a versus clause on this
// expression resolves under.
func (e Expression) Convention() Convention {
	return InferConvention(e.Terms)
}

var versusMatcher = sync.OnceValue(func() *regexp.Regexp {
	return regexp.MustCompile(`(?i)^v(?:ersus|s)(?:\s*(?P<tag>[^\d\s-][^\d]*?)[\s-]|\s*)\s*(?P<target>-?\d+)$`)
})

// Parse converts text into an Expression.
//
// Postcondition: returns ErrEmptyExpression when no term could be extracted,
// or an *IntegerFormatError when a numeric field does not parse.
func Parse(text string) (Expression, error) {
	var terms []Term
	for tok := range Tokens(text) {
		t, err := BuildTerm(tok)
		if err != nil {
			return Expression{}, err
		}
		terms = append(terms, t)
	}
	if len(terms) == 0 {
		return Expression{}, ErrEmptyExpression
	}

	expr := Expression{Raw: text, Repeat: 1}
	var arith []Term
	var sawRepeat bool
	for _, t := range foldUnaryMinus(terms) {
		switch v := t.(type) {
		case Versus:
			if expr.Versus == nil {
				vv := v
				expr.Versus = &vv
			}
		case Repeat:
			if !sawRepeat {
				expr.Repeat = int(v)
				sawRepeat = true
			}
		case Dice, Number, Operator:
			arith = append(arith, t)
		default:
			panic("dice: unhandled term type")
		}
	}

	if !containsDice(arith) {
		arith = append([]Term{Dice{Count: 3, Sides: 6}}, arith...)
	}
	expr.Terms = arith
	return expr, nil
}

// MustParse parses expr and panics on error. Useful for package-level constants.
//
// Precondition: expr must be a valid dice expression.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}

// BuildTerm converts a single token into its Term.
func BuildTerm(tok Token) (Term, error) {
	switch tok.Kind {
	case TokenDice:
		return buildDice(normalize(tok.Text))
	case TokenOperator:
		return buildOperator(normalize(tok.Text))
	case TokenVersus:
		return buildVersus(tok.Text)
	case TokenRepeat:
		n, err := parseInt(strings.TrimLeftFunc(normalize(tok.Text), unicode.IsLetter))
		if err != nil {
			return nil, err
		}
		return Repeat(n), nil
	case TokenNumber:
		n, err := parseInt64(normalize(tok.Text))
		if err != nil {
			return nil, err
		}
		return Number(n), nil
	default:
		panic("dice: unknown token kind " + tok.Kind.String())
	}
}

func buildDice(s string) (Term, error) {
	dIdx := strings.IndexByte(s, 'd')
	countStr, rest := s[:dIdx], s[dIdx+1:]

	d := Dice{Count: 3, Sides: 6}
	var err error
	if countStr != "" {
		if d.Count, err = parseInt(countStr); err != nil {
			return nil, err
		}
	}

	sidesStr := rest
	if kIdx := strings.IndexAny(rest, "bw"); kIdx >= 0 {
		sidesStr = rest[:kIdx]
		amount, err := parseInt(rest[kIdx+1:])
		if err != nil {
			return nil, err
		}
		dir := KeepBest
		if rest[kIdx] == 'w' {
			dir = KeepWorst
		}
		d.Keep = &Keep{Direction: dir, Amount: amount}
	}
	if sidesStr != "" {
		if d.Sides, err = parseInt(sidesStr); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func buildOperator(s string) (Term, error) {
	switch s {
	case "+":
		return Operator(OpAdd), nil
	case "-":
		return Operator(OpSub), nil
	case "x", "×", "*":
		return Operator(OpMul), nil
	case "/", "\\", "÷":
		return Operator(OpDiv), nil
	case "%":
		return Operator(OpRem), nil
	case "^":
		return Operator(OpPow), nil
	default:
		return nil, &IntegerFormatError{Fragment: s}
	}
}

func buildVersus(s string) (Term, error) {
	m := versusMatcher().FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil, &IntegerFormatError{Fragment: s}
	}
	re := versusMatcher()
	target, err := parseInt64(m[re.SubexpIndex("target")])
	if err != nil {
		return nil, err
	}
	return Versus{Target: target, Tag: strings.TrimSpace(m[re.SubexpIndex("tag")])}, nil
}

// foldUnaryMinus turns a "-" that follows another operator (or opens the
// expression) and precedes a number into a negative Number.
func foldUnaryMinus(terms []Term) []Term {
	out := make([]Term, 0, len(terms))
	var prevArith Term
	for i := 0; i < len(terms); i++ {
		t := terms[i]
		if op, ok := t.(Operator); ok && Op(op) == OpSub && i+1 < len(terms) {
			_, prevIsOp := prevArith.(Operator)
			if n, ok := terms[i+1].(Number); ok && (prevArith == nil || prevIsOp) {
				t = -n
				i++
			}
		}
		switch t.(type) {
		case Dice, Number, Operator:
			prevArith = t
		}
		out = append(out, t)
	}
	return out
}

func containsDice(terms []Term) bool {
	for _, t := range terms {
		if _, ok := t.(Dice); ok {
			return true
		}
	}
	return false
}

// normalize lowercases s and drops all whitespace.
func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, &IntegerFormatError{Fragment: s, Err: err}
	}
	return n, nil
}

func parseInt64(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &IntegerFormatError{Fragment: s, Err: err}
	}
	return n, nil
}
