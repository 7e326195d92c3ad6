package domain

import "math"

// Progress converts completed/total counters into a whole percentage in
// [0, 100]. A non-positive total yields 0 rather than an error so callers can
// feed raw counters straight through. Rounding is half-up; results are
// clamped so inconsistent counters never escape the percentage range.
func Progress(completed, total int) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(float64(completed) / float64(total) * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
