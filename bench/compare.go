package bench

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// FrameCountKey prefixes the frame-count entry of report metadata.
const FrameCountKey = "FrameCount:"

// ParseFrameCount reads the frame count from report metadata. It returns 0 when
// no valid entry exists.
func ParseFrameCount(meta []string) int {
	for _, m := range meta {
		if v, ok := strings.CutPrefix(m, FrameCountKey); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err == nil {
				return n
			}
		}
	}
	return 0
}

// Comparison contrasts the per-call time of one method across two runs.
type Comparison struct {
	Name  string
	A, B  DataGroup
	// TStatistic is Welch's t for A minus B, with each run's frame count as its
	// sample size.
	TStatistic       float64
	DegreesOfFreedom float64
	// PValue is the two-sided p-value of TStatistic. NaN when undefined.
	PValue float64
	// FasterIsA reports whether A has the lower mean.
	FasterIsA bool
	// PercentFaster is how much slower the slower run is relative to the faster one.
	PercentFaster float64
}

// ComparisonSet is the outcome of comparing two runs.
type ComparisonSet struct {
	Matched []Comparison
	// OnlyA and OnlyB list names present in a single run.
	OnlyA, OnlyB []string
}

// Compare matches processed results of two runs by name and compares their
// per-call times. Names appearing in several categories are compared once.
func Compare(a, b []CategoryGroup, aFrames, bFrames int) ComparisonSet {
	as := uniqueResults(a)
	bs := uniqueResults(b)

	bIndex := make(map[string]ProcessedResult, len(bs))
	for _, r := range bs {
		bIndex[r.Metadata.Name()] = r
	}
	aNames := make(map[string]bool, len(as))

	var set ComparisonSet
	for _, ra := range as {
		name := ra.Metadata.Name()
		aNames[name] = true
		rb, ok := bIndex[name]
		if !ok {
			set.OnlyA = append(set.OnlyA, name)
			continue
		}
		set.Matched = append(set.Matched, compareGroups(name, ra.MethodTime, rb.MethodTime, float64(aFrames), float64(bFrames)))
	}
	for _, rb := range bs {
		if !aNames[rb.Metadata.Name()] {
			set.OnlyB = append(set.OnlyB, rb.Metadata.Name())
		}
	}
	return set
}

func uniqueResults(groups []CategoryGroup) []ProcessedResult {
	seen := make(map[string]bool)
	var out []ProcessedResult
	for _, g := range groups {
		for _, r := range g.Processed {
			if seen[r.Metadata.Name()] {
				continue
			}
			seen[r.Metadata.Name()] = true
			out = append(out, r)
		}
	}
	return out
}

func compareGroups(name string, a, b DataGroup, na, nb float64) Comparison {
	c := Comparison{Name: name, A: a, B: b, PValue: math.NaN()}

	va := a.StdDev * a.StdDev / na
	vb := b.StdDev * b.StdDev / nb
	c.TStatistic = (a.Mean - b.Mean) / math.Sqrt(va+vb)

	// Welch-Satterthwaite
	if na > 1 && nb > 1 && va+vb > 0 {
		c.DegreesOfFreedom = (va + vb) * (va + vb) / (va*va/(na-1) + vb*vb/(nb-1))
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: c.DegreesOfFreedom}
		c.PValue = 2 * t.Survival(math.Abs(c.TStatistic))
	}

	diff := math.Abs(a.Mean - b.Mean)
	if a.Mean < b.Mean {
		c.FasterIsA = true
		if a.Mean > 0 {
			c.PercentFaster = diff / a.Mean * 100
		}
	} else if b.Mean > 0 {
		c.PercentFaster = diff / b.Mean * 100
	}
	return c
}
