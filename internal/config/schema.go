package config

// Config is the fiberbus configuration tree, stored as JSON.
type Config struct {
	Bus      BusConfig      `json:"bus"`
	Scenario ScenarioConfig `json:"scenario"`
	Monitor  MonitorConfig  `json:"monitor"`
}

// BusConfig holds bus-wide defaults.
type BusConfig struct {
	// DefaultCapacity is used for scenario channels that omit a capacity.
	DefaultCapacity int `json:"default_capacity"`
}

// ScenarioConfig points at the workload script to run when none is given
// on the command line.
type ScenarioConfig struct {
	Path string `json:"path"`
}

// MonitorConfig controls periodic bus stats logging during a run.
type MonitorConfig struct {
	Enabled bool `json:"enabled"`
	// Schedule is a cron expression with a seconds field, e.g. "*/2 * * * * *".
	Schedule string `json:"schedule"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Bus:      BusConfig{DefaultCapacity: 16},
		Scenario: ScenarioConfig{Path: "examples/pingpong.yaml"},
		Monitor:  MonitorConfig{Enabled: true, Schedule: "*/2 * * * * *"},
	}
}
