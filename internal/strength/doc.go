// Package strength scores passwords with a small point-accumulation heuristic.
//
// The evaluator is not an entropy estimator. It awards points for length and
// for each character class present, subtracts points when a well-known weak
// pattern appears, and maps the total onto four bands. The result carries
// human-readable suggestions in a fixed order so the advisory shown next to a
// password field stays stable while the user types.
package strength
