package series

import (
	"fmt"
	"math"
)

// Scale multiplies every present value by k.
func Scale(s *TimeSeries, k float64) *TimeSeries {
	out := s.Clone()
	out.Name = fmt.Sprintf("scale(%s,%s)", s.Name, formatArg(k))
	out.PathExpression = out.Name
	for i, v := range out.Values {
		if IsAbsent(v) {
			continue
		}
		out.Values[i] = v * k
	}
	return out
}

// Offset adds c to every present value.
func Offset(s *TimeSeries, c float64) *TimeSeries {
	out := s.Clone()
	out.Name = fmt.Sprintf("offset(%s,%s)", s.Name, formatArg(c))
	out.PathExpression = out.Name
	for i, v := range out.Values {
		if IsAbsent(v) {
			continue
		}
		out.Values[i] = v + c
	}
	return out
}

// Derivative emits v[i]-v[i-1]; the first slot and any slot bordering an
// absent neighbor is absent.
func Derivative(s *TimeSeries) *TimeSeries {
	values := make([]float64, len(s.Values))
	prev := Absent
	for i, v := range s.Values {
		if i == 0 || IsAbsent(v) || IsAbsent(prev) {
			values[i] = Absent
		} else {
			values[i] = v - prev
		}
		prev = v
	}
	name := fmt.Sprintf("derivative(%s)", s.Name)
	return &TimeSeries{Name: name, PathExpression: name, Start: s.Start, End: s.End, Step: s.Step, Values: values, Options: s.Options}
}

// Integral is the running sum of present values from 0, reset at the series
// start; absent inputs pass through as absent without advancing the sum.
func Integral(s *TimeSeries) *TimeSeries {
	values := make([]float64, len(s.Values))
	sum := 0.0
	for i, v := range s.Values {
		if IsAbsent(v) {
			values[i] = Absent
			continue
		}
		sum += v
		values[i] = sum
	}
	name := fmt.Sprintf("integral(%s)", s.Name)
	return &TimeSeries{Name: name, PathExpression: name, Start: s.Start, End: s.End, Step: s.Step, Values: values, Options: s.Options}
}

// NonNegativeDerivative is Derivative but treats a decrease as a counter
// wraparound when maxValue is provided and maxValue >= the decreased value,
// emitting (maxValue-prev)+v+1; otherwise the slot is absent.
func NonNegativeDerivative(s *TimeSeries, maxValue *float64) *TimeSeries {
	values := make([]float64, len(s.Values))
	prev := Absent
	for i, v := range s.Values {
		switch {
		case i == 0 || IsAbsent(v) || IsAbsent(prev):
			values[i] = Absent
		default:
			diff := v - prev
			if diff >= 0 {
				values[i] = diff
			} else if maxValue != nil && *maxValue >= v {
				values[i] = (*maxValue - prev) + v + 1
			} else {
				values[i] = Absent
			}
		}
		prev = v
	}
	name := fmt.Sprintf("nonNegativeDerivative(%s)", s.Name)
	return &TimeSeries{Name: name, PathExpression: name, Start: s.Start, End: s.End, Step: s.Step, Values: values, Options: s.Options}
}

// Log computes log_base(v) for v>0; everything else (v<=0 or absent) is
// absent. base defaults to 10 when <= 0.
func Log(s *TimeSeries, base float64) *TimeSeries {
	if base <= 0 {
		base = 10
	}
	out := s.Clone()
	out.Name = fmt.Sprintf("log(%s,%s)", s.Name, formatArg(base))
	out.PathExpression = out.Name
	div := math.Log(base)
	for i, v := range out.Values {
		if IsAbsent(v) || v <= 0 {
			out.Values[i] = Absent
			continue
		}
		out.Values[i] = math.Log(v) / div
	}
	return out
}

// KeepLastValue replaces an absent slot with the previous emitted value; a
// leading absent slot (index 0) stays absent.
func KeepLastValue(s *TimeSeries) *TimeSeries {
	out := s.Clone()
	out.Name = fmt.Sprintf("keepLastValue(%s)", s.Name)
	out.PathExpression = out.Name
	last := Absent
	for i, v := range out.Values {
		if IsAbsent(v) {
			if i > 0 {
				out.Values[i] = last
			}
			continue
		}
		last = v
	}
	return out
}

// Summarize re-buckets values into buckets of interval seconds anchored at
// s.Start; each bucket's value is the sum of present values it contains, or
// absent if none are present.
func Summarize(s *TimeSeries, interval int64) *TimeSeries {
	if interval <= 0 {
		interval = s.Step
	}
	numBuckets := numSlots(s.Start, s.End, interval)
	sums := make([]float64, numBuckets)
	present := make([]bool, numBuckets)
	for i, v := range s.Values {
		if IsAbsent(v) {
			continue
		}
		ts := s.Start + int64(i)*s.Step
		bucket := (ts - s.Start) / interval
		if bucket < 0 || bucket >= numBuckets {
			continue
		}
		sums[bucket] += v
		present[bucket] = true
	}
	values := make([]float64, numBuckets)
	for i := range values {
		if present[i] {
			values[i] = sums[i]
		} else {
			values[i] = Absent
		}
	}
	name := fmt.Sprintf("summarize(%s,%q)", s.Name, formatDuration(interval))
	return &TimeSeries{
		Name: name, PathExpression: name,
		Start: s.Start, End: s.Start + numBuckets*interval, Step: interval,
		Values: values, Options: s.Options,
	}
}

// Hitcount treats values as a rate per second and redistributes v[i]*step
// proportionally into buckets of width interval, anchored so the last
// bucket ends at s.End.
func Hitcount(s *TimeSeries, interval int64) *TimeSeries {
	if interval <= 0 {
		interval = s.Step
	}
	bucketCount := numSlots(s.Start, s.End, interval)
	newStart := s.End - bucketCount*interval

	sums := make([]float64, bucketCount)
	present := make([]bool, bucketCount)

	add := func(bucket int64, amount float64) {
		if bucket < 0 || bucket >= bucketCount {
			return
		}
		sums[bucket] += amount
		present[bucket] = true
	}

	for i, v := range s.Values {
		if IsAbsent(v) {
			continue
		}
		sampleStart := s.Start + int64(i)*s.Step
		sampleEnd := sampleStart + s.Step

		startBucket, startMod := divmod(sampleStart-newStart, interval)
		endOffset := sampleEnd - newStart
		endBucket, endMod := divmod(endOffset, interval)
		if endMod == 0 {
			endBucket--
			endMod = interval
		}

		if startBucket == endBucket {
			add(startBucket, v*float64(endMod-startMod))
			continue
		}

		add(startBucket, v*float64(interval-startMod))
		for b := startBucket + 1; b < endBucket; b++ {
			add(b, v*float64(interval))
		}
		add(endBucket, v*float64(endMod))
	}

	values := make([]float64, bucketCount)
	for i := range values {
		if present[i] {
			values[i] = sums[i]
		} else {
			values[i] = Absent
		}
	}
	name := fmt.Sprintf("hitcount(%s,%q)", s.Name, formatDuration(interval))
	return &TimeSeries{
		Name: name, PathExpression: name,
		Start: newStart, End: newStart + bucketCount*interval, Step: interval,
		Values: values, Options: s.Options,
	}
}

func divmod(a, b int64) (int64, int64) {
	q := a / b
	r := a % b
	if r < 0 {
		q--
		r += b
	}
	return q, r
}

func formatArg(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

func formatDuration(seconds int64) string {
	return fmt.Sprintf("%ds", seconds)
}
