// Package config loads the pnlcalc configuration file. Both YAML and JSON
// are accepted, YAML is tried first.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quantegy/pnl"
)

// Config groups everything pnlcalc needs for a run.
type Config struct {
	Engine  EngineConfig  `json:"engine" yaml:"engine"`
	Report  ReportConfig  `json:"report" yaml:"report"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Quotes  QuotesConfig  `json:"quotes,omitempty" yaml:"quotes,omitempty"`
	Server  ServerConfig  `json:"server,omitempty" yaml:"server,omitempty"`
}

// EngineConfig selects the matching strategy and the input files.
type EngineConfig struct {
	Strategy  string `json:"strategy" yaml:"strategy"` // "FIFO" or "LIFO"
	OrderLog  string `json:"order_log" yaml:"order_log"`
	Positions string `json:"positions,omitempty" yaml:"positions,omitempty"`
}

// ReportConfig controls how results are rendered.
type ReportConfig struct {
	Currency string `json:"currency,omitempty" yaml:"currency,omitempty"` // ISO code, empty for plain numbers
	TopN     int    `json:"top_n,omitempty" yaml:"top_n,omitempty"`
	CSVOut   string `json:"csv_out,omitempty" yaml:"csv_out,omitempty"`
}

// JournalConfig selects the run journal backend.
type JournalConfig struct {
	Type           string `json:"type,omitempty" yaml:"type,omitempty"` // "", "csv" or "sqlite"
	DBPath         string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	TimeseriesFile string `json:"timeseries_file,omitempty" yaml:"timeseries_file,omitempty"`
	PositionsFile  string `json:"positions_file,omitempty" yaml:"positions_file,omitempty"`
}

// QuotesConfig points at an HTTP quote endpoint. URL must contain a
// "{symbol}" placeholder, Path is a JSONPath into the response.
type QuotesConfig struct {
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// ServerConfig configures the result server.
type ServerConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// LoadFromFile loads a configuration from a file. YAML is tried first,
// JSON as a fallback, then the result is validated.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration back, YAML for .yaml/.yml
// extensions and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if _, err := pnl.ParseMatchingStrategy(c.Engine.Strategy); err != nil {
		return err
	}
	if c.Engine.OrderLog == "" {
		return fmt.Errorf("engine.order_log is required")
	}
	if c.Report.TopN < 0 {
		return fmt.Errorf("report.top_n must not be negative")
	}
	switch c.Journal.Type {
	case "":
		// journaling disabled
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for sqlite journal")
		}
	case "csv":
		if c.Journal.TimeseriesFile == "" || c.Journal.PositionsFile == "" {
			return fmt.Errorf("journal.timeseries_file and journal.positions_file required for csv journal")
		}
	default:
		return fmt.Errorf("journal.type must be empty, 'csv' or 'sqlite'")
	}
	if c.Quotes.URL != "" && !strings.Contains(c.Quotes.URL, "{symbol}") {
		return fmt.Errorf("quotes.url must contain a {symbol} placeholder")
	}
	if c.Quotes.URL != "" && c.Quotes.Path == "" {
		return fmt.Errorf("quotes.path is required when quotes.url is set")
	}
	return nil
}

// Default returns a configuration with sensible defaults. Strategy and
// order log still have to be filled in for Validate to pass the latter.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Strategy: "FIFO",
		},
		Server: ServerConfig{
			Addr: "localhost:8742",
		},
	}
}
