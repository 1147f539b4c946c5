package bench

import (
	"cmp"
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DataGroup summarises one metric of one result.
type DataGroup struct {
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	StdError float64 `json:"std_error"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	// Ratio is Mean divided by the category baseline's mean. Nil when the
	// category has no baseline.
	Ratio *float64 `json:"ratio"`
	// Samples is the number of observations summarised.
	Samples float64 `json:"samples"`
}

// LogValue implements slog.LogValuer for structured logging.
func (d DataGroup) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Float64("mean", d.Mean),
		slog.Float64("std_dev", d.StdDev),
		slog.Float64("std_error", d.StdError),
		slog.Float64("min", d.Min),
		slog.Float64("max", d.Max),
	}
	if d.Ratio != nil {
		attrs = append(attrs, slog.Float64("ratio", *d.Ratio))
	}
	return slog.GroupValue(attrs...)
}

// ProcessedResult holds the statistics of one method within one category.
type ProcessedResult struct {
	Metadata   MethodMetadata `json:"benchmark"`
	Baseline   bool           `json:"baseline"`
	MethodTime DataGroup      `json:"method_time"` // seconds per call
	Count      DataGroup      `json:"count"`       // calls per frame
	FrameTime  DataGroup      `json:"frame_time"`  // seconds per frame
}

// LogValue implements slog.LogValuer for structured logging.
func (p ProcessedResult) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", p.Metadata.Name()),
		slog.Bool("baseline", p.Baseline),
		slog.Any("method_time", p.MethodTime),
		slog.Any("count", p.Count),
		slog.Any("frame_time", p.FrameTime),
	)
}

// CategoryGroup is every result tagged with one category. The empty name holds
// uncategorised results.
type CategoryGroup struct {
	Name      string            `json:"name"`
	Members   []RawResult       `json:"-"`
	Baseline  *RawResult        `json:"-"`
	Processed []ProcessedResult `json:"processed_results"`
}

// Analyse groups results by category, computes statistics relative to each
// category's baseline and sorts every group by mean time per call.
// Categories are returned in the order they are first seen.
func Analyse(results []RawResult) []CategoryGroup {
	var groups []*CategoryGroup
	index := make(map[string]*CategoryGroup)

	add := func(key string, r RawResult) {
		g, ok := index[key]
		if !ok {
			g = &CategoryGroup{Name: key}
			index[key] = g
			groups = append(groups, g)
		}
		g.Members = append(g.Members, r)
	}

	for _, r := range results {
		if len(r.Metadata.Categories) == 0 {
			add("", r)
			continue
		}
		for _, cat := range r.Metadata.Categories {
			add(cat, r)
		}
	}

	out := make([]CategoryGroup, len(groups))
	for i, g := range groups {
		selectBaseline(g)
		processCategory(g)
		out[i] = *g
	}
	return out
}

// selectBaseline picks the first member claiming to be a baseline.
func selectBaseline(g *CategoryGroup) {
	for i := range g.Members {
		m := &g.Members[i]
		if !m.Metadata.Baseline || m.Failed {
			continue
		}
		if g.Baseline == nil {
			g.Baseline = m
			continue
		}
		slog.Warn("ignoring extra baseline in category",
			"category", g.Name,
			"baseline", g.Baseline.Metadata.Name(),
			"ignored", m.Metadata.Name(),
		)
	}
}

func processCategory(g *CategoryGroup) {
	var baseMethod, baseCount, baseFrame *float64
	if g.Baseline != nil {
		slog.Debug("category baseline", "category", g.Name, "baseline", g.Baseline.Metadata.Name())
		baseMethod = baselineMean(g.Baseline.ElapsedPerMethod())
		baseCount = baselineMean(g.Baseline.CallCounts())
		baseFrame = baselineMean(g.Baseline.ElapsedPerFrame())
	}

	g.Processed = make([]ProcessedResult, 0, len(g.Members))
	for i := range g.Members {
		r := &g.Members[i]
		if r.Failed {
			continue
		}
		g.Processed = append(g.Processed, ProcessedResult{
			Metadata:   r.Metadata,
			Baseline:   r == g.Baseline,
			MethodTime: NewDataGroup(r.ElapsedPerMethod(), baseMethod),
			Count:      NewDataGroup(r.CallCounts(), baseCount),
			FrameTime:  NewDataGroup(r.ElapsedPerFrame(), baseFrame),
		})
	}

	slices.SortStableFunc(g.Processed, func(a, b ProcessedResult) int {
		return cmp.Compare(a.MethodTime.Mean, b.MethodTime.Mean)
	})
}

// baselineMean returns the mean of s, or nil when it is zero and so cannot
// serve as a ratio denominator.
func baselineMean(s Series) *float64 {
	if len(s.Values) == 0 {
		return nil
	}
	m := stat.Mean(s.Values, s.Weights)
	if m == 0 {
		return nil
	}
	return &m
}

// NewDataGroup computes descriptive statistics over s. StdDev is the
// Bessel-corrected sample deviation; with a single observation StdDev and
// StdError are zero. baselineMean, when non-nil, sets Ratio.
func NewDataGroup(s Series, baselineMean *float64) DataGroup {
	n := s.Len()
	if n == 0 {
		return DataGroup{}
	}

	d := DataGroup{
		Mean:    stat.Mean(s.Values, s.Weights),
		Min:     floats.Min(s.Values),
		Max:     floats.Max(s.Values),
		Samples: n,
	}
	if n > 1 {
		d.StdDev = stat.StdDev(s.Values, s.Weights)
		d.StdError = d.StdDev / math.Sqrt(n)
	}
	if baselineMean != nil {
		ratio := d.Mean / *baselineMean
		d.Ratio = &ratio
	}
	return d
}
