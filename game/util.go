package game

import "math"

// mod returns positive modulo (Go's % can return negative).
func mod(a, b float32) float32 {
	return float32(math.Mod(math.Mod(float64(a), float64(b))+float64(b), float64(b)))
}

// reflect bounces a coordinate off [0, limit], returning the new coordinate and
// whether the velocity along that axis must flip.
func reflect(p, limit float32) (float32, bool) {
	switch {
	case p < 0:
		return -p, true
	case p > limit:
		return 2*limit - p, true
	}
	return p, false
}
