package series

import "fmt"

// Evaluator re-evaluates a pathExpression over an explicit window, used by
// TimeShift to fetch the shifted series. The concrete evaluator (the
// rendering layer) lives outside this package; TimeShift only specifies the
// re-entrant callback shape.
type Evaluator func(pathExpression string, start, end int64) ([]*TimeSeries, error)

// TimeShift re-evaluates s.PathExpression over a window shifted by
// -offsetSeconds, then relabels the result's (start, end) back to s's
// original window. No recursion limit is imposed here.
func TimeShift(eval Evaluator, s *TimeSeries, offsetSeconds int64, offsetLabel string) ([]*TimeSeries, error) {
	shiftedStart := s.Start - offsetSeconds
	shiftedEnd := s.End - offsetSeconds

	shifted, err := eval(s.PathExpression, shiftedStart, shiftedEnd)
	if err != nil {
		return nil, err
	}

	out := make([]*TimeSeries, len(shifted))
	for i, sh := range shifted {
		clone := sh.Clone()
		clone.Start = s.Start
		clone.End = s.End
		clone.Name = fmt.Sprintf("timeShift(%s,%q)", sh.Name, offsetLabel)
		clone.PathExpression = clone.Name
		out[i] = clone
	}
	return out, nil
}
