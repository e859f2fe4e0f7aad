// Package dice implements the dice-notation expression engine: it scans
// free-text roll expressions such as "4d6b3 vs 12" or "r3 2d6+1" into terms,
// rolls them against a Source, folds the results left to right and resolves
// optional skill checks.
//
// Evaluation is strictly sequential; there is no operator precedence and no
// grouping.
package dice

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
