package models

import "fmt"

// Metal identifies a traded precious metal.
type Metal string

const (
	Gold   Metal = "gold"
	Silver Metal = "silver"
)

// Metals lists every supported metal.
func Metals() []Metal { return []Metal{Gold, Silver} }

// ParseMetal validates a raw metal name.
func ParseMetal(s string) (Metal, error) {
	switch Metal(s) {
	case Gold, Silver:
		return Metal(s), nil
	default:
		return "", fmt.Errorf("%w: metal %q", ErrInvalidParameter, s)
	}
}

// Markup is the retail markup applied on top of the converted spot price.
func (m Metal) Markup() float64 {
	if m == Silver {
		return 1.05
	}
	return 1.03
}

// Purity identifies fineness. Silver is always traded pure; the gold
// factors are fractions of pure metal by mass.
type Purity string

const (
	Purity24K Purity = "24K"
	Purity22K Purity = "22K"
	Purity18K Purity = "18K"
)

var goldPurityFactors = map[Purity]float64{
	Purity24K: 1.0,
	Purity22K: 0.916,
	Purity18K: 0.750,
}

// GoldPurities lists selectable gold purities, finest first.
func GoldPurities() []Purity { return []Purity{Purity24K, Purity22K, Purity18K} }

// PurityFactor returns the multiplier for the given purity. Silver ignores
// the purity selection and always yields 1.0; unknown purities are rejected
// for both metals.
func (m Metal) PurityFactor(p Purity) (float64, error) {
	f, ok := goldPurityFactors[p]
	if !ok {
		return 0, fmt.Errorf("%w: purity %q", ErrInvalidParameter, p)
	}
	if m == Silver {
		return 1.0, nil
	}
	return f, nil
}

// PurityLabel is the display name for the selected purity ("Pure" for silver).
func (m Metal) PurityLabel(p Purity) string {
	if m == Silver {
		return "Pure"
	}
	return string(p)
}

var metalUnits = map[Metal][]int{
	Gold:   {1, 5, 10, 100},
	Silver: {1, 100, 1000}, // 1g, standard bar, 1kg
}

// Units lists the selectable unit weights in grams.
func (m Metal) Units() []int {
	us := metalUnits[m]
	out := make([]int, len(us))
	copy(out, us)
	return out
}

// ValidUnit reports whether grams is a selectable weight for the metal.
func (m Metal) ValidUnit(grams int) bool {
	for _, u := range metalUnits[m] {
		if u == grams {
			return true
		}
	}
	return false
}

// UnitLabel formats a unit weight for display.
func UnitLabel(grams int) string {
	if grams == 1 {
		return "1 gram"
	}
	return fmt.Sprintf("%d grams", grams)
}
