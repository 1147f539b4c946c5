package telemetry

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gocarina/gocsv"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/pthm-cable/benchmarker/bench"
	"github.com/pthm-cable/benchmarker/config"
)

// sampleGroups analyses two methods in category "move" (one baseline) and one
// uncategorised method. Frequency is 1e6 ticks per second.
func sampleGroups() []bench.CategoryGroup {
	const freq = 1_000_000
	results := []bench.RawResult{
		bench.NewRawResult(bench.MethodMetadata{
			ID: 1, FullName: "Integrate", Description: "per-entity loop",
			Categories: []string{"move"}, Baseline: true,
		}, []bench.Frame{{Count: 10, Time: 200}, {Count: 10, Time: 220}}, freq),
		bench.NewRawResult(bench.MethodMetadata{
			ID: 2, FullName: "IntegrateMapped", Categories: []string{"move"},
		}, []bench.Frame{{Count: 10, Time: 100}, {Count: 10, Time: 120}}, freq),
		bench.NewRawResult(bench.MethodMetadata{
			ID: 3, FullName: "Bounds",
		}, []bench.Frame{{Count: 1, Time: 5000}, {Count: 1, Time: 5000}}, freq),
	}
	return bench.Analyse(results)
}

func TestTimeUnit(t *testing.T) {
	tests := []struct {
		min  float64
		want string
	}{
		{2.5, "s"},
		{0.002, "ms"},
		{3e-6, "us"},
		{4e-9, "ns"},
		{0, "ns"},
	}
	for _, tt := range tests {
		if got := TimeUnit(tt.min).Suffix; got != tt.want {
			t.Errorf("TimeUnit(%v) = %s, want %s", tt.min, got, tt.want)
		}
	}

	if got := TimeUnit(0.002).Scale(0.0125).String(); got != "12.500 ms" {
		t.Errorf("scaled = %q, want %q", got, "12.500 ms")
	}
	if got := CountUnit.Scale(2).String(); got != "2.000" {
		t.Errorf("count = %q, want %q", got, "2.000")
	}
}

func TestFormatRatio(t *testing.T) {
	r := 0.456
	if got := FormatRatio(&r); got != "0.46" {
		t.Errorf("FormatRatio = %q, want 0.46", got)
	}
	if got := FormatRatio(nil); got != "" {
		t.Errorf("FormatRatio(nil) = %q, want empty", got)
	}
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	app := Application{GoVersion: "go1.25", Platform: "linux/amd64", NumCPU: 8}
	if err := WriteMarkdown(&buf, app, sampleGroups(), []string{"FrameCount:2"}); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"**Application**", "- Platform:linux/amd64", "- FrameCount:2", "**Results**", "IntegrateMapped", "per-entity loop", " us "} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}

	var table []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "|") {
			table = append(table, line)
		}
	}
	// 2 title rows, 1 spacer, 2 "move" rows, 1 spacer, 1 uncategorised row
	if len(table) != 7 {
		t.Fatalf("got %d table rows, want 7:\n%s", len(table), out)
	}
	for _, line := range table {
		if len(line) != len(table[0]) {
			t.Errorf("row width %d differs from header width %d: %q", len(line), len(table[0]), line)
		}
		if strings.Count(line, "|") != columnCount+1 {
			t.Errorf("row has %d separators, want %d", strings.Count(line, "|"), columnCount+1)
		}
	}
	if !strings.HasPrefix(table[2], "|---") {
		t.Errorf("expected dashed spacer row, got %q", table[2])
	}
	// faster method sorts first and carries a ratio to the baseline
	if !strings.Contains(table[3], "IntegrateMapped") || !strings.Contains(table[3], "0.52") {
		t.Errorf("first data row = %q, want IntegrateMapped with ratio 0.52", table[3])
	}
}

func TestWriteMarkdownEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, Application{}, nil, nil); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	if !strings.Contains(buf.String(), "**Results**") {
		t.Error("expected results header even without categories")
	}
}

func TestReportRoundTrip(t *testing.T) {
	groups := sampleGroups()
	report := NewReport(groups, []string{"FrameCount:2"})

	path := filepath.Join(t.TempDir(), "r.json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteJSON(f, report); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	f.Close()

	back, err := ReadReport(path)
	if err != nil {
		t.Fatalf("ReadReport: %v", err)
	}
	if back.FrameCount() != 2 {
		t.Errorf("frame count = %d, want 2", back.FrameCount())
	}
	if len(back.Categories) != len(groups) {
		t.Fatalf("categories = %d, want %d", len(back.Categories), len(groups))
	}
	move := back.Categories[0]
	if move.Processed[0].MethodTime.Ratio == nil {
		t.Error("ratio lost in round trip")
	}
	if back.Categories[1].Processed[0].MethodTime.Ratio != nil {
		t.Error("absent ratio should stay null")
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"ratio": null`) {
		t.Error("expected null ratio in JSON output")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleGroups()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	var rows []ResultCSV
	if err := gocsv.Unmarshal(strings.NewReader(buf.String()), &rows); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Name != "IntegrateMapped" || !rows[0].MethodRatio.Valid {
		t.Errorf("first row = %+v, want IntegrateMapped with ratio", rows[0])
	}
	if rows[2].MethodRatio.Valid {
		t.Error("uncategorised row should have an empty ratio")
	}
	if math.Abs(rows[2].MethodMean-0.005) > 1e-12 {
		t.Errorf("bounds mean = %v, want 0.005", rows[2].MethodMean)
	}
}

func TestResultGauges(t *testing.T) {
	g, err := NewResultGauges(sampleGroups())
	if err != nil {
		t.Fatalf("NewResultGauges: %v", err)
	}

	got := testutil.ToFloat64(g.methodTime.WithLabelValues("", "Bounds", "mean"))
	if math.Abs(got-0.005) > 1e-12 {
		t.Errorf("Bounds mean gauge = %v, want 0.005", got)
	}
	ratio := testutil.ToFloat64(g.methodTime.WithLabelValues("move", "Integrate", "ratio"))
	if math.Abs(ratio-1) > 1e-12 {
		t.Errorf("baseline ratio gauge = %v, want 1", ratio)
	}

	path := filepath.Join(t.TempDir(), "bench.prom")
	if err := g.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "benchmark_calls_per_frame") {
		t.Errorf("textfile missing calls metric:\n%s", data)
	}
}

func TestOutputManager(t *testing.T) {
	if om, err := NewOutputManager("", nil); om != nil || err != nil {
		t.Fatalf("empty dir should disable output, got %v, %v", om, err)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}

	dir := filepath.Join(t.TempDir(), "out")
	om, err := NewOutputManager(dir, cfg.Derived.Formats)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	paths, err := om.WriteResults("Results-Test", sampleGroups(), []string{"FrameCount:2"})
	if err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("wrote %d files, want 4: %v", len(paths), paths)
	}
	for _, ext := range []string{".md", ".json", ".csv", ".prom"} {
		if _, err := os.Stat(filepath.Join(dir, "Results-Test"+ext)); err != nil {
			t.Errorf("missing %s output: %v", ext, err)
		}
	}

	if err := om.WriteConfig(cfg); err != nil {
		t.Errorf("WriteConfig: %v", err)
	}
}

func TestWriteMarkdown_NonASCIIAlignment(t *testing.T) {
	groups := bench.Analyse([]bench.RawResult{
		bench.NewRawResult(bench.MethodMetadata{ID: 1, FullName: "Größe", Description: "Δt über alle Partikel"},
			[]bench.Frame{{Count: 1, Time: 10}}, 1000),
		bench.NewRawResult(bench.MethodMetadata{ID: 2, FullName: "Plain", Description: "ascii"},
			[]bench.Frame{{Count: 1, Time: 20}}, 1000),
	})

	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, Application{}, groups, nil); err != nil {
		t.Fatal(err)
	}

	var widths []int
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "|") {
			widths = append(widths, utf8.RuneCountInString(line))
		}
	}
	if len(widths) != 5 {
		t.Fatalf("got %d table rows, want 5", len(widths))
	}
	for i, w := range widths {
		if w != widths[0] {
			t.Errorf("row %d is %d runes wide, header is %d", i, w, widths[0])
		}
	}
}

func TestOutputManager_OnlyEnabledFormats(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Output.Formats = []string{config.FormatCSV}
	cfg.RecomputeDerived()

	om, err := NewOutputManager(t.TempDir(), cfg.Derived.Formats)
	if err != nil {
		t.Fatal(err)
	}
	paths, err := om.WriteResults("r", sampleGroups(), nil)
	if err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	if len(paths) != 1 || !strings.HasSuffix(paths[0], "r.csv") {
		t.Errorf("paths = %v, want only the csv file", paths)
	}
}
