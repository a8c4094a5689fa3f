package view

import (
	"fmt"
	"math"
)

// FormatDuration renders a second count as m:ss, growing to h:mm:ss past an
// hour. Negative and fractional inputs are floored to zero and whole
// seconds respectively.
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(math.Floor(seconds))

	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
