package utils

import (
	"strconv"
)

// ParseFloat converts string to float64, reporting whether the value was
// a well-formed decimal number.
func ParseFloat(value string) (float64, bool) {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return result, true
}

// ParseFloatOrZero converts string to float64, falling back to zero for
// empty or malformed input (PayFast omits fee/net fields in some modes).
func ParseFloatOrZero(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}
