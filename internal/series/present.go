package series

import "strings"

// Alias replaces a series' name outright.
func Alias(s *TimeSeries, label string) *TimeSeries {
	out := s.Clone()
	out.Name = label
	return out
}

// Color sets the display color.
func Color(s *TimeSeries, c string) *TimeSeries {
	out := s.Clone()
	out.Options.Color = c
	return out
}

// LineWidth sets the display line width.
func LineWidth(s *TimeSeries, w float64) *TimeSeries {
	out := s.Clone()
	out.Options.LineWidth = w
	return out
}

// Dashed marks the series as dashed with the given dash length, defaulting
// to 5 when d <= 0.
func Dashed(s *TimeSeries, d float64) *TimeSeries {
	out := s.Clone()
	if d <= 0 {
		d = 5
	}
	out.Options.Dashed = true
	out.Options.DashLength = d
	return out
}

// SecondYAxis marks the series for the secondary Y axis.
func SecondYAxis(s *TimeSeries) *TimeSeries {
	out := s.Clone()
	out.Options.SecondYAxis = true
	return out
}

// DrawAsInfinite marks the series as drawn as vertical infinite lines.
func DrawAsInfinite(s *TimeSeries) *TimeSeries {
	out := s.Clone()
	out.Options.DrawAsInfinite = true
	return out
}

// Cumulative sets the consolidation function to sum.
func Cumulative(s *TimeSeries) *TimeSeries {
	out := s.Clone()
	out.Options.ConsolidationFunc = ConsolidateSum
	return out
}

// Substr trims the dot-segments of the displayed name to [a, b) (or [a, inf)
// if b == 0), stripping any outer "op(...)" wrapper first.
func Substr(s *TimeSeries, a, b int) *TimeSeries {
	out := s.Clone()
	name := s.Name
	if idx := strings.IndexByte(name, '('); idx >= 0 && strings.HasSuffix(name, ")") {
		name = name[idx+1 : len(name)-1]
	}
	parts := strings.Split(name, ".")
	if a < 0 {
		a = 0
	}
	if a > len(parts) {
		a = len(parts)
	}
	end := b
	if end == 0 || end > len(parts) {
		end = len(parts)
	}
	if end < a {
		end = a
	}
	out.Name = strings.Join(parts[a:end], ".")
	return out
}
