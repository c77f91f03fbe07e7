package series

import "strconv"

// EvalContext carries the query window a synthetic series is drawn against.
type EvalContext struct {
	StartTime int64
	EndTime   int64
}

// ConstantLine builds a single-sample series spanning the whole query
// window at value v, named after v itself.
func ConstantLine(ctx EvalContext, v float64) *TimeSeries {
	name := strconv.FormatFloat(v, 'g', -1, 64)
	step := ctx.EndTime - ctx.StartTime
	if step <= 0 {
		step = 1
	}
	return &TimeSeries{
		Name: name, PathExpression: name,
		Start: ctx.StartTime, End: ctx.EndTime, Step: step,
		Values:  []float64{v},
		Options: Options{ConsolidationFunc: ConsolidateAverage},
	}
}

// Threshold is ConstantLine with optional name/color overrides.
func Threshold(ctx EvalContext, v float64, label, color string) *TimeSeries {
	out := ConstantLine(ctx, v)
	if label != "" {
		out.Name = label
		out.PathExpression = label
	}
	if color != "" {
		out.Options.Color = color
	}
	return out
}

// Group concatenates every input list into one.
func Group(lists ...[]*TimeSeries) []*TimeSeries {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	out := make([]*TimeSeries, 0, total)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
