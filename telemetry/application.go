package telemetry

import (
	"log/slog"
	"os"
	"runtime"
	"runtime/debug"
)

// Application describes the process that produced a report.
type Application struct {
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	NumCPU    int    `json:"num_cpu"`
	Hostname  string `json:"hostname"`
	Module    string `json:"module,omitempty"`
	Version   string `json:"version,omitempty"`
}

// CurrentApplication collects the running process's build and host details.
func CurrentApplication() Application {
	app := Application{
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		NumCPU:    runtime.NumCPU(),
	}
	if host, err := os.Hostname(); err == nil {
		app.Hostname = host
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		app.Module = info.Main.Path
		app.Version = info.Main.Version
	}
	return app
}

// LogValue implements slog.LogValuer for structured logging.
func (a Application) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("go_version", a.GoVersion),
		slog.String("platform", a.Platform),
		slog.Int("num_cpu", a.NumCPU),
		slog.String("hostname", a.Hostname),
	)
}
