package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pthm-cable/benchmarker/bench"
)

// ReportVersion is incremented when the JSON format changes.
const ReportVersion = 1

// Report is the machine-readable form of one analysed recording.
type Report struct {
	Version     int                   `json:"version"`
	Application Application           `json:"application"`
	MetaData    []string              `json:"meta_data"`
	Categories  []bench.CategoryGroup `json:"categories"`
}

// NewReport assembles a report for the current process.
func NewReport(groups []bench.CategoryGroup, meta []string) Report {
	if groups == nil {
		groups = []bench.CategoryGroup{}
	}
	return Report{
		Version:     ReportVersion,
		Application: CurrentApplication(),
		MetaData:    meta,
		Categories:  groups,
	}
}

// FrameCount returns the recorded frame count from the report metadata.
func (r Report) FrameCount() int {
	return bench.ParseFrameCount(r.MetaData)
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// ReadReport loads a report written by WriteJSON.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", path, err)
	}
	if r.Version > ReportVersion {
		return nil, fmt.Errorf("report %s has version %d, newest supported is %d", path, r.Version, ReportVersion)
	}
	return &r, nil
}
