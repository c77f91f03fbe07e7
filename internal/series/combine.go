package series

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrArity is returned when a combining operator receives a number of
// series it cannot work with (e.g. asPercent given more than one series on
// either side, or divideSeries given a multi-series divisor).
type ErrArity struct {
	Op     string
	Detail string
}

func (e *ErrArity) Error() string {
	return fmt.Sprintf("series: %s: %s", e.Op, e.Detail)
}

// joinedName builds the "<op>(<comma-joined unique pathExpressions>)" name
// shared by every combining operator.
func joinedName(op string, list []*TimeSeries) string {
	seen := make(map[string]bool, len(list))
	parts := make([]string, 0, len(list))
	for _, s := range list {
		if !seen[s.PathExpression] {
			seen[s.PathExpression] = true
			parts = append(parts, s.PathExpression)
		}
	}
	return op + "(" + strings.Join(parts, ",") + ")"
}

func combineElementwise(op string, list []*TimeSeries, reduce func(present []float64) float64) (*TimeSeries, error) {
	normalized, start, _, step, err := Normalize(list)
	if err != nil {
		return nil, err
	}

	n := minLen(normalized)
	values := make([]float64, n)
	scratch := make([]float64, 0, len(normalized))
	for i := 0; i < n; i++ {
		scratch = scratch[:0]
		for _, s := range normalized {
			if i < len(s.Values) && !IsAbsent(s.Values[i]) {
				scratch = append(scratch, s.Values[i])
			}
		}
		if len(scratch) == 0 {
			values[i] = Absent
		} else {
			values[i] = reduce(scratch)
		}
	}

	name := joinedName(op, list)
	return &TimeSeries{
		Name:           name,
		PathExpression: name,
		Start:          start,
		End:            start + int64(len(values))*step,
		Step:           step,
		Values:         values,
		Options:        Options{ConsolidationFunc: ConsolidateAverage},
	}, nil
}

func minLen(list []*TimeSeries) int {
	if len(list) == 0 {
		return 0
	}
	n := len(list[0].Values)
	for _, s := range list[1:] {
		if len(s.Values) < n {
			n = len(s.Values)
		}
	}
	return n
}

// SumSeries returns the elementwise sum across list, ignoring absent values;
// an all-absent column is absent.
func SumSeries(list []*TimeSeries) (*TimeSeries, error) {
	return combineElementwise("sumSeries", list, func(present []float64) float64 {
		sum := 0.0
		for _, v := range present {
			sum += v
		}
		return sum
	})
}

// DiffSeries returns the first series minus the sum of the rest.
func DiffSeries(list []*TimeSeries) (*TimeSeries, error) {
	normalized, start, _, step, err := Normalize(list)
	if err != nil {
		return nil, err
	}
	n := minLen(normalized)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		first := normalized[0].Values[i]
		anyPresent := !IsAbsent(first)
		acc := 0.0
		if anyPresent {
			acc = first
		}
		for _, s := range normalized[1:] {
			if i < len(s.Values) && !IsAbsent(s.Values[i]) {
				acc -= s.Values[i]
				anyPresent = true
			}
		}
		if !anyPresent {
			values[i] = Absent
		} else {
			values[i] = acc
		}
	}
	name := joinedName("diffSeries", list)
	return &TimeSeries{Name: name, PathExpression: name, Start: start, End: start + int64(n)*step, Step: step, Values: values, Options: Options{ConsolidationFunc: ConsolidateAverage}}, nil
}

// AverageSeries returns the elementwise mean of present values.
func AverageSeries(list []*TimeSeries) (*TimeSeries, error) {
	return combineElementwise("averageSeries", list, func(present []float64) float64 {
		sum := 0.0
		for _, v := range present {
			sum += v
		}
		return sum / float64(len(present))
	})
}

// MinSeries returns the elementwise minimum of present values.
func MinSeries(list []*TimeSeries) (*TimeSeries, error) {
	return combineElementwise("minSeries", list, func(present []float64) float64 {
		m := present[0]
		for _, v := range present[1:] {
			if v < m {
				m = v
			}
		}
		return m
	})
}

// MaxSeries returns the elementwise maximum of present values.
func MaxSeries(list []*TimeSeries) (*TimeSeries, error) {
	return combineElementwise("maxSeries", list, func(present []float64) float64 {
		m := present[0]
		for _, v := range present[1:] {
			if v > m {
				m = v
			}
		}
		return m
	})
}

// DivideSeries divides each series in dividends by the single divisor
// series, elementwise. b==0 or either operand absent yields absent.
func DivideSeries(dividends []*TimeSeries, divisor []*TimeSeries) ([]*TimeSeries, error) {
	if len(divisor) != 1 {
		return nil, &ErrArity{Op: "divideSeries", Detail: "exactly one divisor series required"}
	}
	out := make([]*TimeSeries, 0, len(dividends))
	for _, a := range dividends {
		normalized, start, _, step, err := Normalize([]*TimeSeries{a, divisor[0]})
		if err != nil {
			return nil, err
		}
		na, nb := normalized[0], normalized[1]
		n := minLen(normalized)
		values := make([]float64, n)
		for i := 0; i < n; i++ {
			av, bv := na.Values[i], nb.Values[i]
			if IsAbsent(av) || IsAbsent(bv) || bv == 0 {
				values[i] = Absent
			} else {
				values[i] = av / bv
			}
		}
		name := fmt.Sprintf("divideSeries(%s,%s)", a.PathExpression, divisor[0].PathExpression)
		out = append(out, &TimeSeries{Name: name, PathExpression: name, Start: start, End: start + int64(n)*step, Step: step, Values: values, Options: Options{ConsolidationFunc: ConsolidateAverage}})
	}
	return out, nil
}

// AsPercent computes 100*a/b pairwise (exactly one series on each side) or
// 100*a/constant for every series in a when constant != nil.
func AsPercent(a []*TimeSeries, b []*TimeSeries, constant *float64) ([]*TimeSeries, error) {
	if constant != nil {
		out := make([]*TimeSeries, 0, len(a))
		for _, s := range a {
			values := make([]float64, len(s.Values))
			for i, v := range s.Values {
				if IsAbsent(v) || *constant == 0 {
					values[i] = Absent
				} else {
					values[i] = 100 * v / *constant
				}
			}
			name := fmt.Sprintf("asPercent(%s,%s)", s.PathExpression, strconv.FormatFloat(*constant, 'g', -1, 64))
			out = append(out, &TimeSeries{Name: name, PathExpression: name, Start: s.Start, End: s.End, Step: s.Step, Values: values, Options: s.Options})
		}
		return out, nil
	}

	if len(a) != 1 || len(b) != 1 {
		return nil, &ErrArity{Op: "asPercent", Detail: "pairwise mode requires exactly one series on each side"}
	}
	normalized, start, _, step, err := Normalize([]*TimeSeries{a[0], b[0]})
	if err != nil {
		return nil, err
	}
	na, nb := normalized[0], normalized[1]
	n := minLen(normalized)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		av, bv := na.Values[i], nb.Values[i]
		if IsAbsent(av) || IsAbsent(bv) || bv == 0 {
			values[i] = Absent
		} else {
			values[i] = 100 * av / bv
		}
	}
	name := fmt.Sprintf("asPercent(%s,%s)", a[0].PathExpression, b[0].PathExpression)
	return []*TimeSeries{{Name: name, PathExpression: name, Start: start, End: start + int64(n)*step, Step: step, Values: values, Options: Options{ConsolidationFunc: ConsolidateAverage}}}, nil
}

// stripPositions drops the dot-separated segments at the given zero-based
// positions from name.
func stripPositions(name string, positions []int) string {
	parts := strings.Split(name, ".")
	drop := make(map[int]bool, len(positions))
	for _, p := range positions {
		drop[p] = true
	}
	kept := make([]string, 0, len(parts))
	for i, p := range parts {
		if !drop[i] {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ".")
}

// SumSeriesWithWildcards groups input series by the name formed by dropping
// the dot-separated positions in fields, then sums each group. Output names
// are the stripped keys in first-seen order.
func SumSeriesWithWildcards(list []*TimeSeries, fields []int) ([]*TimeSeries, error) {
	return groupedCombine(list, fields, SumSeries)
}

// AverageSeriesWithWildcards is SumSeriesWithWildcards but averages each
// group instead of summing it.
func AverageSeriesWithWildcards(list []*TimeSeries, fields []int) ([]*TimeSeries, error) {
	return groupedCombine(list, fields, AverageSeries)
}

func groupedCombine(list []*TimeSeries, fields []int, combine func([]*TimeSeries) (*TimeSeries, error)) ([]*TimeSeries, error) {
	order := make([]string, 0)
	groups := make(map[string][]*TimeSeries)
	for _, s := range list {
		key := stripPositions(s.Name, fields)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], s)
	}

	out := make([]*TimeSeries, 0, len(order))
	for _, key := range order {
		combined, err := combine(groups[key])
		if err != nil {
			return nil, err
		}
		combined.Name = key
		combined.PathExpression = key
		out = append(out, combined)
	}
	return out, nil
}
