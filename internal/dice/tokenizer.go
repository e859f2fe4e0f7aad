package dice

import (
	"iter"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// TokenKind classifies a matched substring by syntactic shape.
type TokenKind int

const (
	TokenDice TokenKind = iota
	TokenOperator
	TokenVersus
	TokenRepeat
	TokenNumber
)

func (k TokenKind) String() string {
	switch k {
	case TokenDice:
		return "dice"
	case TokenOperator:
		return "operator"
	case TokenVersus:
		return "versus"
	case TokenRepeat:
		return "repeat"
	case TokenNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Token is one matched substring of the input.
type Token struct {
	Kind TokenKind
	Text string
	// Pos is the byte offset of Text in the scanned input.
	Pos int
}

// Alternation order matters: RE2 picks the first alternative that matches at
// the leftmost position.
const tokenPattern = `(?i)` +
	`(?P<versus>v(?:ersus|s)(?:\s*[^\d\s-][^\d]*?[\s-]|\s*)\s*-?\d+)` +
	`|(?P<repeat>r(?:epeat)?\s*\d+)` +
	`|(?P<dice>\d*d\d*(?:[bw]\d+)?)` +
	`|(?P<operator>[-+×x*/\\÷%^])` +
	`|(?P<number>\d+)`

var tokenMatcher = sync.OnceValues(func() (*regexp.Regexp, map[int]TokenKind) {
	re := regexp.MustCompile(tokenPattern)
	kinds := map[string]TokenKind{
		"versus":   TokenVersus,
		"repeat":   TokenRepeat,
		"dice":     TokenDice,
		"operator": TokenOperator,
		"number":   TokenNumber,
	}
	byGroup := make(map[int]TokenKind, len(kinds))
	for i, name := range re.SubexpNames() {
		if k, ok := kinds[name]; ok {
			byGroup[i] = k
		}
	}
	return re, byGroup
})

// Tokens scans text and yields every token in order of appearance.
// Characters that match no shape are skipped, and so is every word: a run of
// two or more letters that is not written entirely in dice notation ("dx",
// "db2"). A versus or repeat keyword only counts at the start of a word.
// The sequence may be iterated any number of times.
func Tokens(text string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		re, byGroup := tokenMatcher()
		for pos := 0; pos < len(text); {
			loc := re.FindStringSubmatchIndex(text[pos:])
			if loc == nil {
				return
			}
			start, end := pos+loc[0], pos+loc[1]
			kind := matchedKind(loc, byGroup)

			runStart, runEnd := letterRun(text, start)
			var prose bool
			switch kind {
			case TokenVersus, TokenRepeat:
				prose = runStart != start
			default:
				prose = !notation(text, runStart, runEnd)
			}
			if prose {
				pos = runEnd
				continue
			}

			if !yield(Token{Kind: kind, Text: text[start:end], Pos: start}) {
				return
			}
			pos = end
		}
	}
}

func matchedKind(loc []int, byGroup map[int]TokenKind) TokenKind {
	for group := 1; 2*group+1 < len(loc); group++ {
		if loc[2*group] >= 0 {
			return byGroup[group]
		}
	}
	panic("dice: token match without a group")
}

// letterRun returns the bounds of the run of letters around text[i]. The run
// is empty when text[i] is not a letter.
func letterRun(text string, i int) (int, int) {
	start, end := i, i
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:start])
		if !unicode.IsLetter(r) {
			break
		}
		start -= size
	}
	for end < len(text) {
		r, size := utf8.DecodeRuneInString(text[end:])
		if !unicode.IsLetter(r) {
			break
		}
		end += size
	}
	return start, end
}

// notation reports whether the letter run text[start:end] reads as dice
// notation: single letters always do; longer runs must be made of d and x,
// optionally ending in a keep letter after a d that a digit follows.
func notation(text string, start, end int) bool {
	run := strings.ToLower(text[start:end])
	if utf8.RuneCountInString(run) < 2 {
		return true
	}
	if last := run[len(run)-1]; last == 'b' || last == 'w' {
		digitNext := end < len(text) && text[end] >= '0' && text[end] <= '9'
		if !digitNext || run[len(run)-2] != 'd' {
			return false
		}
		run = run[:len(run)-1]
	}
	return strings.Trim(run, "dx") == ""
}

// Tokenize collects Tokens(text) into a slice.
func Tokenize(text string) []Token {
	var out []Token
	for tok := range Tokens(text) {
		out = append(out, tok)
	}
	return out
}
