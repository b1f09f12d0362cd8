package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AnalyzerConfig controls the per-file processing pipeline.
type AnalyzerConfig struct {
	InputDir        string   `yaml:"input_dir"`
	OutputDir       string   `yaml:"output_dir"`
	ChunkSize       int      `yaml:"chunk_size"`
	MemoryCeilingGB float64  `yaml:"memory_ceiling_gb"`
	OutputFormats   []string `yaml:"output_formats"`
}

// DatesConfig lists candidate timestamp layouts in preference order, plus an
// optional forced layout that skips detection when it validates.
type DatesConfig struct {
	Formats     []string `yaml:"formats"`
	ForceFormat string   `yaml:"force_format"`
}

// ColumnsConfig names the columns a file must have and the full schema we
// expect from a well-behaved export.
type ColumnsConfig struct {
	Required []string `yaml:"required"`
	Expected []string `yaml:"expected"`
}

// FiltersConfig holds the row-exclusion rules: column name to the set of
// values that disqualify a row.
type FiltersConfig struct {
	Exclude map[string][]string `yaml:"exclude"`
}

// UnitConfig scales a raw metric for display.
type UnitConfig struct {
	Label   string  `yaml:"label"`
	Divisor float64 `yaml:"divisor"`
}

// UnitsConfig holds the display units for volume and packet totals.
type UnitsConfig struct {
	Volume  UnitConfig `yaml:"volume"`
	Packets UnitConfig `yaml:"packets"`
}

// ClickHouseConfig holds the connection settings for the stats store.
type ClickHouseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ExportConfig groups the sinks finalized statistics can be pushed to.
type ExportConfig struct {
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// NATSConfig holds the event transport settings.
type NATSConfig struct {
	Enabled          bool   `yaml:"enabled"`
	URL              string `yaml:"url"`
	RequestSubject   string `yaml:"request_subject"`
	CompletedSubject string `yaml:"completed_subject"`
}

// EventsConfig groups event transports.
type EventsConfig struct {
	NATS NATSConfig `yaml:"nats"`
}

// APIConfig holds the HTTP API settings.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// SMTPConfig holds the mail relay settings. To is a comma-separated list.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// NotifyConfig enables the batch-completion email.
type NotifyConfig struct {
	Enabled bool       `yaml:"enabled"`
	SMTP    SMTPConfig `yaml:"smtp"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Dates    DatesConfig    `yaml:"dates"`
	Columns  ColumnsConfig  `yaml:"columns"`
	Filters  FiltersConfig  `yaml:"filters"`
	Units    UnitsConfig    `yaml:"units"`
	Export   ExportConfig   `yaml:"export"`
	Events   EventsConfig   `yaml:"events"`
	API      APIConfig      `yaml:"api"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// DefaultDateFormats returns the candidate layouts in preference order. The
// month-first dotted form leads because it is the factory default of the
// exporting devices; detection overrides it whenever the data disagrees.
func DefaultDateFormats() []string {
	return []string{
		"01.02.2006 15:04:05",
		"02.01.2006 15:04:05",
		"2006-01-02 15:04:05",
		"01/02/2006 15:04:05",
		"02/01/2006 15:04:05",
		"2006/01/02 15:04:05",
		"01-02-2006 15:04:05",
		"02-01-2006 15:04:05",
	}
}

// DefaultRequiredColumns returns the columns a file cannot be analyzed
// without.
func DefaultRequiredColumns() []string {
	return []string{"Start Time", "Attack Name", "Source IP Address", "Destination IP Address"}
}

// DefaultExpectedColumns returns the full schema of a well-behaved export.
func DefaultExpectedColumns() []string {
	return []string{
		"S.No", "Start Time", "End Time", "Device IP Address", "Threat Category",
		"Attack Name", "Policy Name", "Action", "Attack ID", "Source IP Address",
		"Source Port", "Destination IP Address", "Destination Port", "Direction",
		"Protocol", "Radware ID", "Duration", "Total Packets", "Packet Type",
		"Total Mbits", "Max pps", "Max bps", "Physical Port", "Risk", "VLAN Tag",
		"Footprint", "Device Name", "Device Type", "Workflow Rule Process",
		"Activation Id", "Protected Object",
	}
}

// LoadConfig reads the configuration from a YAML file, applies defaults and
// returns a validated Config.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fills zero values with defaults and rejects settings that cannot
// work at all. Components receive config values explicitly, so tests can
// build a Config literal and call Validate to get the same defaulting.
func (c *Config) Validate() error {
	if c.Analyzer.ChunkSize == 0 {
		c.Analyzer.ChunkSize = 50000
	}
	if c.Analyzer.ChunkSize < 0 {
		return fmt.Errorf("analyzer.chunk_size must be positive, got %d", c.Analyzer.ChunkSize)
	}
	if c.Analyzer.MemoryCeilingGB == 0 {
		c.Analyzer.MemoryCeilingGB = 2
	}
	if c.Analyzer.OutputDir == "" {
		c.Analyzer.OutputDir = "output"
	}
	if len(c.Analyzer.OutputFormats) == 0 {
		c.Analyzer.OutputFormats = []string{"json", "html"}
	}

	if len(c.Dates.Formats) == 0 {
		c.Dates.Formats = DefaultDateFormats()
	}
	if len(c.Columns.Required) == 0 {
		c.Columns.Required = DefaultRequiredColumns()
	}
	if len(c.Columns.Expected) == 0 {
		c.Columns.Expected = DefaultExpectedColumns()
	}
	if c.Filters.Exclude == nil {
		c.Filters.Exclude = map[string][]string{
			"Policy Name": {"Packet Anomalies"},
		}
	}

	if c.Units.Volume.Label == "" && c.Units.Volume.Divisor == 0 {
		c.Units.Volume = UnitConfig{Label: "MB", Divisor: 1}
	}
	if c.Units.Packets.Divisor == 0 {
		c.Units.Packets = UnitConfig{Label: c.Units.Packets.Label, Divisor: 1}
	}

	if c.Events.NATS.URL == "" {
		c.Events.NATS.URL = "nats://127.0.0.1:4222"
	}
	if c.Events.NATS.RequestSubject == "" {
		c.Events.NATS.RequestSubject = "forensicflow.analyze.request"
	}
	if c.Events.NATS.CompletedSubject == "" {
		c.Events.NATS.CompletedSubject = "forensicflow.analyze.completed"
	}

	if c.Export.ClickHouse.Enabled {
		if c.Export.ClickHouse.Host == "" {
			return fmt.Errorf("export.clickhouse.host is required when the exporter is enabled")
		}
		if c.Export.ClickHouse.Port == 0 {
			c.Export.ClickHouse.Port = 9000
		}
		if c.Export.ClickHouse.Database == "" {
			c.Export.ClickHouse.Database = "forensicflow"
		}
		if c.Export.ClickHouse.Username == "" {
			c.Export.ClickHouse.Username = "default"
		}
	}

	if c.API.ListenAddr == "" {
		c.API.ListenAddr = ":8080"
	}

	if c.Notify.Enabled {
		if c.Notify.SMTP.Host == "" || c.Notify.SMTP.From == "" || c.Notify.SMTP.To == "" {
			return fmt.Errorf("notify.smtp host, from and to are required when notification is enabled")
		}
		if c.Notify.SMTP.Port == 0 {
			c.Notify.SMTP.Port = 587
		}
	}

	return nil
}
