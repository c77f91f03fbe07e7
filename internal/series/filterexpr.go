package series

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// FilterByExpr retains series for which a compiled boolean expression over
// their summary statistics evaluates to true. The expression sees the
// variables "last", "max", "min" and "mean", computed via Summary, matching
// the env shape a compound threshold rule would need beyond the fixed
// comparison operators of the ranking/filtering catalog.
func FilterByExpr(list []*TimeSeries, exprString string) ([]*TimeSeries, error) {
	program, err := expr.Compile(exprString, expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("series: compiling filter expression %q: %w", exprString, err)
	}
	return filterCompiled(list, program)
}

func filterCompiled(list []*TimeSeries, program *vm.Program) ([]*TimeSeries, error) {
	out := make([]*TimeSeries, 0, len(list))
	for _, s := range list {
		env := summaryEnv(s)
		result, err := expr.Run(program, env)
		if err != nil {
			return nil, fmt.Errorf("series: running filter expression against %q: %w", s.Name, err)
		}
		if keep, ok := result.(bool); ok && keep {
			out = append(out, s)
		}
	}
	return out, nil
}

func summaryEnv(s *TimeSeries) map[string]any {
	return map[string]any{
		"last": valueOrZero(Summary(s, SummaryLast)),
		"max":  valueOrZero(Summary(s, SummaryMax)),
		"min":  valueOrZero(Summary(s, SummaryMin)),
		"mean": valueOrZero(Summary(s, SummaryMean)),
		"name": s.Name,
	}
}

func valueOrZero(v float64) float64 {
	if IsAbsent(v) {
		return 0
	}
	return v
}
