package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"dungeon-crawlers/sim/internal/ai"
	"dungeon-crawlers/sim/internal/sim"
	"dungeon-crawlers/sim/internal/world"
	"dungeon-crawlers/sim/logging"
)

// LoggingConfig is the scenario-file view of the event pipeline settings.
type LoggingConfig struct {
	Sinks        []string `yaml:"sinks"`
	BufferSize   int      `yaml:"buffer_size"`
	MinSeverity  string   `yaml:"min_severity"`
	Color        bool     `yaml:"color"`
	JSONPath     string   `yaml:"json_path"`
	JSONGzip     bool     `yaml:"json_gzip"`
	FlushSeconds int      `yaml:"flush_seconds"`
	JournalPath  string   `yaml:"journal_path"`
	JournalBatch int      `yaml:"journal_batch"`
}

// FileConfig is the full scenario file: world geometry, population, archetype
// personalities, and logging.
type FileConfig struct {
	TickRate   int                       `yaml:"tick_rate"`
	Listen     string                    `yaml:"listen"`
	Seed       int64                     `yaml:"seed"`
	World      world.Config              `yaml:"world"`
	SafeZones  []sim.SafeZoneSpec        `yaml:"safe_zones"`
	Enemies    []sim.EnemySpec           `yaml:"enemies"`
	Crawlers   []sim.CrawlerSpec         `yaml:"crawlers"`
	Archetypes map[string]ai.Personality `yaml:"archetypes"`
	Logging    LoggingConfig             `yaml:"logging"`
}

func (c FileConfig) normalized() FileConfig {
	if c.TickRate <= 0 {
		c.TickRate = 15
	}
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	if len(c.Logging.Sinks) == 0 {
		c.Logging.Sinks = []string{"console"}
	}
	return c
}

// LoadConfig reads and normalizes a scenario file.
func LoadConfig(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("app: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a scenario document.
func ParseConfig(data []byte) (FileConfig, error) {
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("app: parse config: %w", err)
	}
	return cfg.normalized(), nil
}

// severityFromName maps a scenario string to a logging severity. Unknown
// names fall back to Info.
func severityFromName(name string) logging.Severity {
	switch name {
	case "debug":
		return logging.SeverityDebug
	case "warn":
		return logging.SeverityWarn
	case "error":
		return logging.SeverityError
	default:
		return logging.SeverityInfo
	}
}

// loggingConfig builds the router configuration from the scenario section.
func (c FileConfig) loggingConfig() logging.Config {
	out := logging.DefaultConfig()
	out.EnabledSinks = c.Logging.Sinks
	if c.Logging.BufferSize > 0 {
		out.BufferSize = c.Logging.BufferSize
	}
	out.MinimumSeverity = severityFromName(c.Logging.MinSeverity)
	out.Console.UseColor = c.Logging.Color
	out.JSON.FilePath = c.Logging.JSONPath
	out.JSON.Gzip = c.Logging.JSONGzip
	if c.Logging.FlushSeconds > 0 {
		out.JSON.FlushInterval = time.Duration(c.Logging.FlushSeconds) * time.Second
	}
	out.Journal.Path = c.Logging.JournalPath
	if c.Logging.JournalBatch > 0 {
		out.Journal.MaxBatch = c.Logging.JournalBatch
	}
	return out
}

// personalities normalizes every archetype and returns pointer records for
// the engine.
func (c FileConfig) personalities() (map[string]*ai.Personality, error) {
	if len(c.Archetypes) == 0 {
		return map[string]*ai.Personality{"default": ai.DefaultPersonality("default")}, nil
	}
	out, err := ai.NormalizeCatalog(c.Archetypes)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	return out, nil
}
