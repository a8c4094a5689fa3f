package player

// Rates is the fixed ordered set of playback speeds. Cycling always moves
// to the next element, wrapping after the last.
var Rates = []float64{0.75, 1.0, 1.25, 1.5, 2.0}

// DefaultRate is used until the user picks another speed.
const DefaultRate = 1.0

// NextRate returns the rate following current in the cycle. An unknown
// current restarts the cycle at the first element.
func NextRate(current float64) float64 {
	for i, r := range Rates {
		if r == current {
			return Rates[(i+1)%len(Rates)]
		}
	}
	return Rates[0]
}

// ValidRate reports whether r is a member of the rate set.
func ValidRate(r float64) bool {
	for _, rate := range Rates {
		if rate == r {
			return true
		}
	}
	return false
}
