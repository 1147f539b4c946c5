package telemetry

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pthm-cable/benchmarker/bench"
	"github.com/pthm-cable/benchmarker/config"
)

// OutputManager writes analysed results to an output directory in the enabled formats.
type OutputManager struct {
	dir     string
	formats map[string]bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// formats holds the enabled format names, as in config's Derived.Formats.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string, formats map[string]bool) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir, formats: make(map[string]bool, len(formats))}
	for f, on := range formats {
		om.formats[f] = on
	}
	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	configPath := filepath.Join(om.dir, "config.yaml")
	return cfg.WriteYAML(configPath)
}

// WriteResults writes groups under <dir>/<name>.<ext> for every enabled format
// and returns the written paths.
func (om *OutputManager) WriteResults(name string, groups []bench.CategoryGroup, meta []string) ([]string, error) {
	if om == nil {
		return nil, nil
	}

	base := filepath.Join(om.dir, name)
	report := NewReport(groups, meta)
	var paths []string

	writeFile := func(ext string, write func(io.Writer) error) error {
		path := base + ext
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := write(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", path, err)
		}
		paths = append(paths, path)
		return nil
	}

	if om.formats[config.FormatMarkdown] {
		err := writeFile(".md", func(w io.Writer) error {
			return WriteMarkdown(w, report.Application, groups, meta)
		})
		if err != nil {
			return paths, err
		}
	}

	if om.formats[config.FormatJSON] {
		if err := writeFile(".json", func(w io.Writer) error { return WriteJSON(w, report) }); err != nil {
			return paths, err
		}
	}

	if om.formats[config.FormatCSV] {
		if err := writeFile(".csv", func(w io.Writer) error { return WriteCSV(w, groups) }); err != nil {
			return paths, err
		}
	}

	if om.formats[config.FormatPrometheus] {
		gauges, err := NewResultGauges(groups)
		if err != nil {
			return paths, err
		}
		path := base + ".prom"
		if err := gauges.WriteTextfile(path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	slog.Info("saved benchmark results", "dir", om.dir, "name", name, "files", len(paths))
	return paths, nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}
