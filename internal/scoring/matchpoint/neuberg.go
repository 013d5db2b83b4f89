package matchpoint

import "github.com/ramonehamilton/bridge-scorer/internal/scoring/score"

// Neuberg rescales matchpoints earned against comparableCount results to a board
// played gameCount times. points is the raw (two per beaten result) score within
// the comparable set; the result is in tenths.
func Neuberg(points, gameCount, comparableCount int) score.Tenths {
	switch comparableCount {
	case 2:
		return score.Tenths((points + 11) * (gameCount - 1))
	case 3:
		return score.Tenths((points + 10) * (gameCount - 1))
	}
	if comparableCount <= 0 {
		return 0
	}

	t := int64(100 * (points + 1) * gameCount)
	c := int64(comparableCount)
	n := t/c - 100

	// An exact .x5 above the median is cut to .x0 before rounding.
	if t%c == 0 && n%10 == 5 && n > int64(100*(gameCount-1)) {
		n -= 5
	}
	return score.Tenths(score.RoundDiv(n, 10))
}
