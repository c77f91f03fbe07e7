package series

import (
	"regexp"
	"sort"
)

// SummaryFunc names one of the scalar summaries used by the ranking and
// filtering operators and by threshold alerting.
type SummaryFunc string

const (
	SummaryLast SummaryFunc = "last"
	SummaryMax  SummaryFunc = "max"
	SummaryMin  SummaryFunc = "min"
	SummaryMean SummaryFunc = "mean"
)

// Summary computes a single scalar summary of s's present values. Returns
// NaN if no values are present.
func Summary(s *TimeSeries, f SummaryFunc) float64 {
	switch f {
	case SummaryLast:
		for i := len(s.Values) - 1; i >= 0; i-- {
			if !IsAbsent(s.Values[i]) {
				return s.Values[i]
			}
		}
		return Absent
	case SummaryMax:
		return reducePresent(s.Values, Absent, func(acc, v float64) float64 {
			if IsAbsent(acc) || v > acc {
				return v
			}
			return acc
		})
	case SummaryMin:
		return reducePresent(s.Values, Absent, func(acc, v float64) float64 {
			if IsAbsent(acc) || v < acc {
				return v
			}
			return acc
		})
	case SummaryMean:
		sum, count := 0.0, 0
		for _, v := range s.Values {
			if !IsAbsent(v) {
				sum += v
				count++
			}
		}
		if count == 0 {
			return Absent
		}
		return sum / float64(count)
	default:
		return Absent
	}
}

func reducePresent(values []float64, init float64, fn func(acc, v float64) float64) float64 {
	acc := init
	for _, v := range values {
		if IsAbsent(v) {
			continue
		}
		acc = fn(acc, v)
	}
	return acc
}

// variance computes the population variance of s's present values.
func variance(s *TimeSeries) float64 {
	present := make([]float64, 0, len(s.Values))
	for _, v := range s.Values {
		if !IsAbsent(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return Absent
	}
	mean := 0.0
	for _, v := range present {
		mean += v
	}
	mean /= float64(len(present))
	sq := 0.0
	for _, v := range present {
		d := v - mean
		sq += d * d
	}
	return sq / float64(len(present))
}

// topN returns the n series with the greatest score (descending) or least
// score (ascending), ties broken by input order (stable sort).
func topN(list []*TimeSeries, n int, score func(*TimeSeries) float64, descending bool) []*TimeSeries {
	type scored struct {
		s     *TimeSeries
		score float64
		idx   int
	}
	scoredList := make([]scored, len(list))
	for i, s := range list {
		scoredList[i] = scored{s: s, score: score(s), idx: i}
	}
	sort.SliceStable(scoredList, func(i, j int) bool {
		if descending {
			return scoredList[i].score > scoredList[j].score
		}
		return scoredList[i].score < scoredList[j].score
	})
	if n > len(scoredList) {
		n = len(scoredList)
	}
	if n < 0 {
		n = 0
	}
	out := make([]*TimeSeries, n)
	for i := 0; i < n; i++ {
		out[i] = scoredList[i].s
	}
	return out
}

// Highest returns the n series with the greatest f(series).
func Highest(list []*TimeSeries, n int, f SummaryFunc) []*TimeSeries {
	return topN(list, n, func(s *TimeSeries) float64 { return Summary(s, f) }, true)
}

// Lowest returns the n series with the least f(series).
func Lowest(list []*TimeSeries, n int, f SummaryFunc) []*TimeSeries {
	return topN(list, n, func(s *TimeSeries) float64 { return Summary(s, f) }, false)
}

// MostDeviant returns the n series with the greatest population variance.
func MostDeviant(list []*TimeSeries, n int) []*TimeSeries {
	return topN(list, n, variance, true)
}

func filterByPredicate(list []*TimeSeries, f SummaryFunc, threshold float64, pred func(v, threshold float64) bool) []*TimeSeries {
	out := make([]*TimeSeries, 0, len(list))
	for _, s := range list {
		v := Summary(s, f)
		if !IsAbsent(v) && pred(v, threshold) {
			out = append(out, s)
		}
	}
	return out
}

func CurrentAbove(list []*TimeSeries, n float64) []*TimeSeries {
	return filterByPredicate(list, SummaryLast, n, func(v, n float64) bool { return v >= n })
}

func CurrentBelow(list []*TimeSeries, n float64) []*TimeSeries {
	return filterByPredicate(list, SummaryLast, n, func(v, n float64) bool { return v <= n })
}

func AverageAbove(list []*TimeSeries, n float64) []*TimeSeries {
	return filterByPredicate(list, SummaryMean, n, func(v, n float64) bool { return v >= n })
}

func AverageBelow(list []*TimeSeries, n float64) []*TimeSeries {
	return filterByPredicate(list, SummaryMean, n, func(v, n float64) bool { return v <= n })
}

func MaximumAbove(list []*TimeSeries, n float64) []*TimeSeries {
	return filterByPredicate(list, SummaryMax, n, func(v, n float64) bool { return v >= n })
}

func MaximumBelow(list []*TimeSeries, n float64) []*TimeSeries {
	return filterByPredicate(list, SummaryMax, n, func(v, n float64) bool { return v <= n })
}

// Limit returns the first n series in input order.
func Limit(list []*TimeSeries, n int) []*TimeSeries {
	if n > len(list) {
		n = len(list)
	}
	if n < 0 {
		n = 0
	}
	out := make([]*TimeSeries, n)
	copy(out, list[:n])
	return out
}

// SortByMaxima stably sorts descending by each series' maximum.
func SortByMaxima(list []*TimeSeries) []*TimeSeries {
	out := make([]*TimeSeries, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		return Summary(out[i], SummaryMax) > Summary(out[j], SummaryMax)
	})
	return out
}

// SortByMinima stably sorts ascending by each series' minimum, dropping any
// series whose maximum is <= 0. This drop is a deliberately preserved
// upstream quirk, not a bug in this port.
func SortByMinima(list []*TimeSeries) []*TimeSeries {
	filtered := make([]*TimeSeries, 0, len(list))
	for _, s := range list {
		if Summary(s, SummaryMax) > 0 {
			filtered = append(filtered, s)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return Summary(filtered[i], SummaryMin) < Summary(filtered[j], SummaryMin)
	})
	return filtered
}

// Exclude retains series whose name does not match pattern as a substring
// search.
func Exclude(list []*TimeSeries, pattern string) ([]*TimeSeries, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	out := make([]*TimeSeries, 0, len(list))
	for _, s := range list {
		if !re.MatchString(s.Name) {
			out = append(out, s)
		}
	}
	return out, nil
}
