package lifecycle

import "unicode/utf16"

// hashMax normalises a hash into the unit interval.
const hashMax = 2147483647

// Hash is the identifier hash behind demo lifecycles. It is a polynomial rolling
// hash over the UTF-16 code units of id, h = h*31 + unit, kept in a signed 32-bit
// register that wraps on overflow. The result is the absolute value of that
// register, so math.MinInt32 maps to 2^31.
//
// The algorithm is fixed: demo data seeded by other clients must land on the
// same stage here.
func Hash(id string) uint32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(id)) {
		h = h*31 + int32(unit)
	}
	if h < 0 {
		return uint32(-int64(h))
	}
	return uint32(h)
}

// unitValue maps a hash into [0, 1]. Only Hash(id) == 2^31 exceeds 1, which the
// weight walk resolves to the last stage.
func unitValue(h uint32) float64 {
	return float64(h) / hashMax
}
