// Package alerting evaluates threshold rules against cached series,
// grounded on internal/tagger/classifyJob.go's pattern of compiling
// expr-lang rules once and re-running them against a per-target
// environment.
package alerting

import (
	"fmt"

	carbondlog "github.com/carbond/carbond/internal/log"
	"github.com/carbond/carbond/internal/schema"
	"github.com/carbond/carbond/internal/series"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Rule is a compiled threshold rule: Target names the metric it reads from
// the cache, Expr is a boolean expression over last/max/min/mean/name.
type Rule struct {
	Name   string
	Target string
	Expr   string

	program *vm.Program
}

// RuleSpec mirrors internal/config.AlertRule without importing it, keeping
// this package's dependency surface to expr-lang and its own types.
type RuleSpec struct {
	Name   string
	Target string
	Expr   string
}

// Compile compiles each spec's expression once; a rule with an invalid
// expression is dropped and logged rather than failing startup for the
// whole set.
func Compile(specs []RuleSpec) []*Rule {
	rules := make([]*Rule, 0, len(specs))
	for _, spec := range specs {
		program, err := expr.Compile(spec.Expr, expr.AsBool())
		if err != nil {
			carbondlog.ComponentError("alerting", "dropping rule ", spec.Name, ": ", err)
			continue
		}
		rules = append(rules, &Rule{Name: spec.Name, Target: spec.Target, Expr: spec.Expr, program: program})
	}
	return rules
}

// Cache is the read side of internal/cache.Cache a rule evaluator needs.
type Cache interface {
	Get(metric string) []schema.Datapoint
}

// Firing describes one rule whose expression evaluated to true against its
// target's current cached series.
type Firing struct {
	Rule   string
	Target string
}

// Evaluate runs every rule against the cache and returns the ones currently
// firing. A target with no cached points evaluates against an empty series
// (all summary statistics absent), matching internal/series's absent-value
// propagation rather than skipping the rule.
func Evaluate(rules []*Rule, cache Cache) ([]Firing, error) {
	var firing []Firing
	for _, r := range rules {
		points := cache.Get(r.Target)
		s := seriesFromPoints(r.Target, points)

		env := map[string]any{
			"last": valueOrZero(series.Summary(s, series.SummaryLast)),
			"max":  valueOrZero(series.Summary(s, series.SummaryMax)),
			"min":  valueOrZero(series.Summary(s, series.SummaryMin)),
			"mean": valueOrZero(series.Summary(s, series.SummaryMean)),
			"name": r.Target,
		}
		result, err := expr.Run(r.program, env)
		if err != nil {
			return nil, fmt.Errorf("alerting: evaluating rule %q: %w", r.Name, err)
		}
		if fire, ok := result.(bool); ok && fire {
			firing = append(firing, Firing{Rule: r.Name, Target: r.Target})
		}
	}
	return firing, nil
}

func seriesFromPoints(name string, points []schema.Datapoint) *series.TimeSeries {
	if len(points) == 0 {
		return series.New(name, 0, 0, 1)
	}
	start := points[0].Timestamp
	end := points[len(points)-1].Timestamp + 1
	s := series.New(name, start, end, 1)
	for _, dp := range points {
		idx := dp.Timestamp - start
		if idx >= 0 && idx < int64(len(s.Values)) {
			if dp.IsAbsent() {
				s.Values[idx] = series.Absent
			} else {
				s.Values[idx] = float64(dp.Value)
			}
		}
	}
	return s
}

func valueOrZero(v float64) float64 {
	if series.IsAbsent(v) {
		return 0
	}
	return v
}
