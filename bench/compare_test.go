package bench

import (
	"math"
	"slices"
	"testing"
)

func processed(name string, mean, stdDev float64) ProcessedResult {
	return ProcessedResult{
		Metadata:   MethodMetadata{FullName: name},
		MethodTime: DataGroup{Mean: mean, StdDev: stdDev},
	}
}

func TestParseFrameCount(t *testing.T) {
	tests := []struct {
		name string
		meta []string
		want int
	}{
		{"present", []string{"RunID:x", "FrameCount:300"}, 300},
		{"missing", []string{"RunID:x"}, 0},
		{"invalid", []string{"FrameCount:lots"}, 0},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseFrameCount(tt.meta); got != tt.want {
				t.Errorf("ParseFrameCount(%v) = %d, want %d", tt.meta, got, tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	a := []CategoryGroup{
		{Name: "x", Processed: []ProcessedResult{processed("shared", 1.0, 0.2), processed("only a", 1, 0)}},
		{Name: "y", Processed: []ProcessedResult{processed("shared", 1.0, 0.2)}},
	}
	b := []CategoryGroup{
		{Name: "x", Processed: []ProcessedResult{processed("shared", 2.0, 0.4), processed("only b", 1, 0)}},
	}

	set := Compare(a, b, 100, 100)

	if len(set.Matched) != 1 {
		t.Fatalf("matched %d results, want 1", len(set.Matched))
	}
	if !slices.Equal(set.OnlyA, []string{"only a"}) || !slices.Equal(set.OnlyB, []string{"only b"}) {
		t.Errorf("unmatched = %v / %v", set.OnlyA, set.OnlyB)
	}

	c := set.Matched[0]
	wantT := (1.0 - 2.0) / math.Sqrt(0.04/100+0.16/100)
	if math.Abs(c.TStatistic-wantT) > 1e-9 {
		t.Errorf("t = %v, want %v", c.TStatistic, wantT)
	}
	if !c.FasterIsA {
		t.Error("expected A to be faster")
	}
	if math.Abs(c.PercentFaster-100) > 1e-9 {
		t.Errorf("percent faster = %v, want 100", c.PercentFaster)
	}
	if c.DegreesOfFreedom <= 0 || c.DegreesOfFreedom > 198 {
		t.Errorf("degrees of freedom = %v, want within (0, 198]", c.DegreesOfFreedom)
	}
	if !(c.PValue >= 0 && c.PValue < 1e-6) {
		t.Errorf("p-value = %v, want a tiny positive value", c.PValue)
	}
}
