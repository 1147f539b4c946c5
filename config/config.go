// Package config provides configuration loading and access for benchmark runs.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Output format names.
const (
	FormatMarkdown   = "markdown"
	FormatJSON       = "json"
	FormatCSV        = "csv"
	FormatPrometheus = "prometheus"
)

// Config holds all benchmark configuration parameters.
type Config struct {
	Recording RecordingConfig `yaml:"recording"`
	Output    OutputConfig    `yaml:"output"`
	Suite     SuiteConfig     `yaml:"suite"`
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// RecordingConfig holds recording session parameters.
type RecordingConfig struct {
	FrameCount        int  `yaml:"frame_count"`          // Ring length in frames
	AutoEnd           bool `yaml:"auto_end"`             // End after frame_count frames instead of wrapping
	WaitForFirstFrame bool `yaml:"wait_for_first_frame"` // Start accumulating at the first frame boundary
	ClearOnWrap       bool `yaml:"clear_on_wrap"`        // Zero slots when the ring wraps
}

// OutputConfig holds report output settings.
type OutputConfig struct {
	Dir      string   `yaml:"dir"`
	Name     string   `yaml:"name"`     // Result file prefix (empty = Results-<mode>)
	AutoLog  bool     `yaml:"auto_log"` // Write reports when a recording ends
	Formats  []string `yaml:"formats"`
	Metadata []string `yaml:"metadata"` // Extra "Key:Value" lines added to every report
}

// SuiteConfig holds warmup/measure loop sizes.
type SuiteConfig struct {
	WarmupCount int `yaml:"warmup_count"` // Unrecorded frames before measuring
	RunCount    int `yaml:"run_count"`    // Recorded frames
	Iterations  int `yaml:"iterations"`   // Benchmark calls per frame
}

// ScreenConfig holds display settings for the graphical frame driver.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds demo workload parameters.
type WorldConfig struct {
	Particles int     `yaml:"particles"`
	MaxSpeed  float64 `yaml:"max_speed"` // World units per second
	Lifetime  float64 `yaml:"lifetime"`  // Seconds before a particle respawns
	DT        float64 `yaml:"dt"`        // Seconds per frame in headless mode
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32      float32         // World.DT as float32
	ScreenW32 float32         // Screen.Width as float32
	ScreenH32 float32         // Screen.Height as float32
	Formats   map[string]bool // enabled output formats
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// Validate checks values that would make a run fail later.
func (c *Config) Validate() error {
	if c.Recording.FrameCount <= 0 {
		return fmt.Errorf("recording.frame_count must be positive, got %d", c.Recording.FrameCount)
	}
	if c.Suite.RunCount <= 0 {
		return fmt.Errorf("suite.run_count must be positive, got %d", c.Suite.RunCount)
	}
	known := []string{FormatMarkdown, FormatJSON, FormatCSV, FormatPrometheus}
	for _, f := range c.Output.Formats {
		if !slices.Contains(known, f) {
			return fmt.Errorf("output.formats: unknown format %q", f)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.World.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	c.Derived.Formats = make(map[string]bool, len(c.Output.Formats))
	for _, f := range c.Output.Formats {
		c.Derived.Formats[f] = true
	}
}

// RecomputeDerived refreshes derived values after fields were changed in code,
// e.g. by command-line overrides.
func (c *Config) RecomputeDerived() {
	c.computeDerived()
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
