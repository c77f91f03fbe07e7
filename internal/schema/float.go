package schema

import (
	"math"
	"strconv"
)

// Float is used instead of a plain float64 so that (Un)MarshalJSON can be
// overloaded to represent an absent value as `null` rather than forcing
// every value behind a pointer.
type Float float64

// NaN is the canonical representation of an absent value.
var NaN Float = Float(math.NaN())

func (f Float) IsNaN() bool {
	return math.IsNaN(float64(f))
}

// MarshalJSON serializes an absent value as `null`.
func (f Float) MarshalJSON() ([]byte, error) {
	if f.IsNaN() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(f), 'f', -1, 64)), nil
}

// UnmarshalJSON turns `null` back into an absent value.
func (f *Float) UnmarshalJSON(input []byte) error {
	s := string(input)
	if s == "null" {
		*f = NaN
		return nil
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = Float(val)
	return nil
}
