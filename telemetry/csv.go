package telemetry

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/benchmarker/bench"
)

// OptFloat is a float column that may be empty.
type OptFloat struct {
	Value float64
	Valid bool
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (o OptFloat) MarshalCSV() (string, error) {
	if !o.Valid {
		return "", nil
	}
	return strconv.FormatFloat(o.Value, 'g', -1, 64), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (o *OptFloat) UnmarshalCSV(s string) error {
	if s == "" {
		*o = OptFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*o = OptFloat{Value: v, Valid: true}
	return nil
}

func optFloat(p *float64) OptFloat {
	if p == nil {
		return OptFloat{}
	}
	return OptFloat{Value: *p, Valid: true}
}

// ResultCSV is a flat row of one processed result. Times are in seconds.
type ResultCSV struct {
	Category    string `csv:"category"`
	Name        string `csv:"name"`
	Description string `csv:"description"`
	Baseline    bool   `csv:"baseline"`

	MethodMean     float64  `csv:"method_mean_s"`
	MethodRatio    OptFloat `csv:"method_ratio"`
	MethodStdDev   float64  `csv:"method_std_dev_s"`
	MethodStdError float64  `csv:"method_std_error_s"`
	MethodMin      float64  `csv:"method_min_s"`
	MethodMax      float64  `csv:"method_max_s"`
	Calls          float64  `csv:"calls"`

	CountMean     float64  `csv:"count_mean"`
	CountRatio    OptFloat `csv:"count_ratio"`
	CountStdDev   float64  `csv:"count_std_dev"`
	CountStdError float64  `csv:"count_std_error"`
	CountMin      float64  `csv:"count_min"`
	CountMax      float64  `csv:"count_max"`

	FrameMean     float64  `csv:"frame_mean_s"`
	FrameRatio    OptFloat `csv:"frame_ratio"`
	FrameStdDev   float64  `csv:"frame_std_dev_s"`
	FrameStdError float64  `csv:"frame_std_error_s"`
	FrameMin      float64  `csv:"frame_min_s"`
	FrameMax      float64  `csv:"frame_max_s"`
}

// ToCSV flattens every processed result of every category.
func ToCSV(groups []bench.CategoryGroup) []ResultCSV {
	var rows []ResultCSV
	for _, g := range groups {
		for _, p := range g.Processed {
			rows = append(rows, ResultCSV{
				Category:    g.Name,
				Name:        p.Metadata.Name(),
				Description: p.Metadata.Description,
				Baseline:    p.Baseline,

				MethodMean:     p.MethodTime.Mean,
				MethodRatio:    optFloat(p.MethodTime.Ratio),
				MethodStdDev:   p.MethodTime.StdDev,
				MethodStdError: p.MethodTime.StdError,
				MethodMin:      p.MethodTime.Min,
				MethodMax:      p.MethodTime.Max,
				Calls:          p.MethodTime.Samples,

				CountMean:     p.Count.Mean,
				CountRatio:    optFloat(p.Count.Ratio),
				CountStdDev:   p.Count.StdDev,
				CountStdError: p.Count.StdError,
				CountMin:      p.Count.Min,
				CountMax:      p.Count.Max,

				FrameMean:     p.FrameTime.Mean,
				FrameRatio:    optFloat(p.FrameTime.Ratio),
				FrameStdDev:   p.FrameTime.StdDev,
				FrameStdError: p.FrameTime.StdError,
				FrameMin:      p.FrameTime.Min,
				FrameMax:      p.FrameTime.Max,
			})
		}
	}
	return rows
}

// WriteCSV writes one row per processed result with a header line.
func WriteCSV(w io.Writer, groups []bench.CategoryGroup) error {
	if err := gocsv.Marshal(ToCSV(groups), w); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}
