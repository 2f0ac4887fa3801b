package repository

// Horizon is a model head's look-ahead in days. Dedicated heads exist for
// days 1..3; days 4..7 of an outlook are extrapolated from the day-3 head.
type Horizon int

const (
	H1 Horizon = 1
	H2 Horizon = 2
	H3 Horizon = 3
)

// IsValidHorizon reports whether h has a dedicated model head.
func IsValidHorizon(h Horizon) bool { return h >= H1 && h <= H3 }

// Horizons lists every model head horizon in ascending order.
func Horizons() []Horizon { return []Horizon{H1, H2, H3} }
