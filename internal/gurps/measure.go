package gurps

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidMeasure is returned when a measurement cannot be parsed or is not
// a positive length.
var ErrInvalidMeasure = errors.New("invalid measurement")

const yardsPerMeter = 1 / 0.9144

var yardsPerUnit = map[string]float64{
	"":           1,
	"yd":         1,
	"yds":        1,
	"yard":       1,
	"yards":      1,
	"ft":         1.0 / 3,
	"foot":       1.0 / 3,
	"feet":       1.0 / 3,
	"in":         1.0 / 36,
	"inch":       1.0 / 36,
	"inches":     1.0 / 36,
	"mi":         1760,
	"mile":       1760,
	"miles":      1760,
	"m":          yardsPerMeter,
	"meter":      yardsPerMeter,
	"meters":     yardsPerMeter,
	"metre":      yardsPerMeter,
	"metres":     yardsPerMeter,
	"km":         1000 * yardsPerMeter,
	"kilometer":  1000 * yardsPerMeter,
	"kilometers": 1000 * yardsPerMeter,
	"cm":         yardsPerMeter / 100,
}

// ParseYards converts a measurement such as "12", "30 ft" or "1.5km" into
// yards. A bare number is taken as yards.
func ParseYards(text string) (float64, error) {
	text = strings.TrimSpace(text)
	split := strings.IndexFunc(text, unicode.IsLetter)
	number, unit := text, ""
	if split >= 0 {
		number, unit = text[:split], text[split:]
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(number), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMeasure, text)
	}
	factor, ok := yardsPerUnit[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidMeasure, unit)
	}
	yards := value * factor
	if yards <= 0 || math.IsInf(yards, 0) {
		return 0, fmt.Errorf("%w: %q is not a positive length", ErrInvalidMeasure, text)
	}
	return yards, nil
}

// SizeModifier returns the GURPS size modifier for an object whose longest
// dimension is yards long.
//
// Precondition: yards > 0.
func SizeModifier(yards float64) int {
	exp := math.Floor(math.Log10(yards))
	ord := math.Pow(10, exp)
	// Log10 can land a hair under an exact power of ten.
	if yards/ord >= 10 {
		exp++
		ord *= 10
	}
	mantissa := math.Round(yards/ord*1e9) / 1e9
	return int(exp)*6 + sizeStep(mantissa)
}

// SpeedRange returns the speed/range penalty for a distance or speed in
// yards: the negated size modifier.
//
// Precondition: yards > 0.
func SpeedRange(yards float64) int {
	return -SizeModifier(yards)
}

func sizeStep(mantissa float64) int {
	switch {
	case mantissa > 7:
		return 4
	case mantissa > 5:
		return 3
	case mantissa > 3:
		return 2
	case mantissa > 2:
		return 1
	case mantissa > 1.5:
		return 0
	case mantissa > 1:
		return -1
	default:
		return -2
	}
}

// LinearValue returns the length in yards that corresponds to a size
// modifier. Values one step below a multiple of six keep two significant
// figures; all others keep one.
func LinearValue(sm int) float64 {
	v := float64(sm)
	cof := (math.Mod(v, 6) + 2) / 6
	mag := math.Trunc(v / 6)
	raw := math.Pow(10, cof) * math.Pow(10, mag)
	if (sm+1)%6 == 0 {
		return roundSignificant(raw, 2)
	}
	return roundSignificant(raw, 1)
}

// FormatLinear renders a linear value lookup as a chat reply.
func FormatLinear(sm int) string {
	return fmt.Sprintf("Size: %d; Linear Value: %s", sm, formatFloat(LinearValue(sm)))
}
