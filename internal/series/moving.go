package series

import (
	"fmt"
	"math"
	"sort"
)

// MovingAverage computes, for each index i >= n-1, the mean of present
// values in the trailing window [i-n+1, i]; earlier positions and
// all-absent windows are absent.
func MovingAverage(s *TimeSeries, n int) *TimeSeries {
	values := make([]float64, len(s.Values))
	for i := range values {
		if i < n-1 {
			values[i] = Absent
			continue
		}
		sum, count := 0.0, 0
		for j := i - n + 1; j <= i; j++ {
			if !IsAbsent(s.Values[j]) {
				sum += s.Values[j]
				count++
			}
		}
		if count == 0 {
			values[i] = Absent
		} else {
			values[i] = sum / float64(count)
		}
	}
	name := fmt.Sprintf("movingAverage(%s,%d)", s.Name, n)
	return &TimeSeries{Name: name, PathExpression: name, Start: s.Start, End: s.End, Step: s.Step, Values: values, Options: s.Options}
}

// Stdev computes a sliding population standard deviation over the trailing
// n points using the incremental update newSS = SS - drop^2 + add^2,
// sigma = sqrt(newSS/n - mean^2). Leading n-1 positions are absent. Absent
// inputs contribute 0 to both the sum-of-squares update and the mean,
// preserved from the source even though it biases the result downward.
func Stdev(s *TimeSeries, n int) *TimeSeries {
	values := make([]float64, len(s.Values))
	for i := range values {
		values[i] = Absent
	}
	if n <= 0 || len(s.Values) < n {
		name := fmt.Sprintf("stdev(%s,%d)", s.Name, n)
		return &TimeSeries{Name: name, PathExpression: name, Start: s.Start, End: s.End, Step: s.Step, Values: values, Options: s.Options}
	}

	valueAt := func(i int) float64 {
		v := s.Values[i]
		if IsAbsent(v) {
			return 0
		}
		return v
	}

	sum, sumSquares := 0.0, 0.0
	for i := 0; i < n; i++ {
		v := valueAt(i)
		sum += v
		sumSquares += v * v
	}
	avg := sum / float64(n)
	values[n-1] = stddevFrom(sumSquares, avg, n)

	for i := n; i < len(s.Values); i++ {
		drop := valueAt(i - n)
		add := valueAt(i)
		sum += add - drop
		sumSquares = sumSquares - drop*drop + add*add
		avg = sum / float64(n)
		values[i] = stddevFrom(sumSquares, avg, n)
	}

	name := fmt.Sprintf("stdev(%s,%d)", s.Name, n)
	return &TimeSeries{Name: name, PathExpression: name, Start: s.Start, End: s.End, Step: s.Step, Values: values, Options: s.Options}
}

func stddevFrom(sumSquares, avg float64, n int) float64 {
	variance := sumSquares/float64(n) - avg*avg
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// NPercentile produces a one-sample series whose value is the nth
// percentile of s's present values via the ordinal method: sort ascending,
// take the element at index round(n*len/100)-1 clamped to [0,len-1]. A
// non-positive or absent result drops the series (reported via ok=false).
func NPercentile(s *TimeSeries, n float64) (*TimeSeries, bool) {
	present := make([]float64, 0, len(s.Values))
	for _, v := range s.Values {
		if !IsAbsent(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return nil, false
	}
	sort.Float64s(present)

	idx := int(math.Round(n*float64(len(present))/100)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(present)-1 {
		idx = len(present) - 1
	}
	value := present[idx]
	if value <= 0 {
		return nil, false
	}

	name := fmt.Sprintf("nPercentile(%s,%s)", s.Name, formatArg(n))
	return &TimeSeries{
		Name: name, PathExpression: name,
		Start: s.Start, End: s.End, Step: s.End - s.Start,
		Values: []float64{value}, Options: s.Options,
	}, true
}
