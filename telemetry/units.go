package telemetry

import "fmt"

// Unit is a display scale for a column of values.
type Unit struct {
	Suffix  string
	Divider float64
}

// CountUnit displays raw values without a suffix.
var CountUnit = Unit{Suffix: "", Divider: 1}

// TimeUnit picks the largest time unit that keeps min above one, so the
// smallest value in a column still reads as a whole number of units.
func TimeUnit(min float64) Unit {
	const (
		s  = 1.0
		ms = s / 1_000
		us = ms / 1_000
		ns = us / 1_000
	)
	switch {
	case min > s:
		return Unit{"s", s}
	case min > ms:
		return Unit{"ms", ms}
	case min > us:
		return Unit{"us", us}
	default:
		return Unit{"ns", ns}
	}
}

// Scaled is a value expressed in a display unit.
type Scaled struct {
	Value  float64
	Suffix string
}

// Scale converts v into u.
func (u Unit) Scale(v float64) Scaled {
	return Scaled{Value: v / u.Divider, Suffix: u.Suffix}
}

// String formats the value with three decimals followed by its suffix.
func (s Scaled) String() string {
	if s.Suffix == "" {
		return fmt.Sprintf("%.3f", s.Value)
	}
	return fmt.Sprintf("%.3f %s", s.Value, s.Suffix)
}

// FormatRatio formats an optional ratio with two decimals, or "" when absent.
func FormatRatio(r *float64) string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *r)
}
