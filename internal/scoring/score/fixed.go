package score

import "fmt"

// Tenths is a matchpoint amount scaled by 10.
type Tenths int64

// Hundredths is a percentage or IMPs-per-board amount scaled by 100.
type Hundredths int64

// TenthsFromPoints converts whole matchpoints to Tenths.
func TenthsFromPoints(points int) Tenths {
	return Tenths(points) * 10
}

// Float returns t in matchpoints.
func (t Tenths) Float() float64 {
	return float64(t) / 10
}

// String formats t with one decimal.
func (t Tenths) String() string {
	return formatFixed(int64(t), 10, 1)
}

// HundredthsFromWhole converts a whole percentage or IMP amount to Hundredths.
func HundredthsFromWhole(n int) Hundredths {
	return Hundredths(n) * 100
}

// HundredthsFromFloat rounds f to the nearest hundredth.
func HundredthsFromFloat(f float64) Hundredths {
	if f < 0 {
		return Hundredths(f*100 - 0.5)
	}
	return Hundredths(f*100 + 0.5)
}

// Float returns h as a plain number.
func (h Hundredths) Float() float64 {
	return float64(h) / 100
}

// String formats h with two decimals.
func (h Hundredths) String() string {
	return formatFixed(int64(h), 100, 2)
}

// RoundDiv divides num by den rounding half away from zero.
// A zero denominator yields zero; callers treat that as "no score".
func RoundDiv(num, den int64) int64 {
	if den == 0 {
		return 0
	}
	if den < 0 {
		num, den = -num, -den
	}
	if num < 0 {
		return -((-num + den/2) / den)
	}
	return (num + den/2) / den
}

func formatFixed(v, scale int64, digits int) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%0*d", sign, v/scale, digits, v%scale)
}
