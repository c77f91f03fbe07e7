package series

import "errors"

// ErrEmptyInput is returned by Normalize, and by SumSeries, DiffSeries,
// AverageSeries, MinSeries and MaxSeries, when invoked with no series at
// all. DivideSeries, AsPercent in constant mode and the *WithWildcards
// operators return an empty result with a nil error for empty input.
var ErrEmptyInput = errors.New("series: empty input")

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

func lcm(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	return a / gcd(a, b) * b
}

// Normalize aligns a set of series to a common step (the LCM of their
// individual steps) and a common [start, end) window (the union of their
// windows, trimmed so its span is a multiple of the common step), and
// consolidates each series to that step using its own ConsolidationFunc.
//
// After normalization all series share a step but may still differ in
// length at their original endpoints; callers combining them pairwise must
// stop at the shortest aligned length. An empty input returns ErrEmptyInput.
// A single input series is returned consolidated by factor 1 (a clone).
func Normalize(list []*TimeSeries) ([]*TimeSeries, int64, int64, int64, error) {
	if len(list) == 0 {
		return nil, 0, 0, 0, ErrEmptyInput
	}

	step := list[0].Step
	for _, s := range list[1:] {
		step = lcm(step, s.Step)
	}

	start := list[0].Start
	end := list[0].End
	for _, s := range list[1:] {
		if s.Start < start {
			start = s.Start
		}
		if s.End > end {
			end = s.End
		}
	}
	if step > 0 {
		end -= (end - start) % step
	}

	out := make([]*TimeSeries, len(list))
	for i, s := range list {
		factor := int64(1)
		if s.Step > 0 {
			factor = step / s.Step
		}
		fn := s.Options.ConsolidationFunc
		if fn == "" {
			fn = ConsolidateAverage
		}
		out[i] = s.Consolidate(factor, fn)
	}

	return out, start, end, step, nil
}
