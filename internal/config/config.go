package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the converter configuration (releve.yaml).
type Config struct {
	// Input is the directory holding releve_<account>_<YYYYMM>.pdf files.
	Input  string       `yaml:"input"`
	Output OutputConfig `yaml:"output"`
	// RulesFile replaces the built-in category rules when set.
	RulesFile string       `yaml:"rules_file,omitempty"`
	Log       LogConfig    `yaml:"log"`
	Server    ServerConfig `yaml:"server"`
}

// OutputConfig names the two CSV views.
type OutputConfig struct {
	All         string `yaml:"all"`
	Categorized string `yaml:"categorized"`
}

// LogConfig controls zerolog output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Environment variables that override the file.
const (
	EnvInput             = "RELEVE_INPUT"
	EnvOutputAll         = "RELEVE_OUTPUT_ALL"
	EnvOutputCategorized = "RELEVE_OUTPUT_CATEGORIZED"
	EnvRulesFile         = "RELEVE_RULES_FILE"
	EnvLogLevel          = "RELEVE_LOG_LEVEL"
	EnvLogPretty         = "RELEVE_LOG_PRETTY"
	EnvServerAddr        = "RELEVE_SERVER_ADDR"
)

// Default returns the configuration matching the historical directory layout.
func Default() *Config {
	return &Config{
		Input: "files",
		Output: OutputConfig{
			All:         "public/data.csv",
			Categorized: "data/data2.csv",
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads a releve.yaml file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from RELEVE_* environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvInput); ok {
		c.Input = v
	}
	if v, ok := lookup(EnvOutputAll); ok {
		c.Output.All = v
	}
	if v, ok := lookup(EnvOutputCategorized); ok {
		c.Output.Categorized = v
	}
	if v, ok := lookup(EnvRulesFile); ok {
		c.RulesFile = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogPretty); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLogPretty, err)
		}
		c.Log.Pretty = b
	}
	if v, ok := lookup(EnvServerAddr); ok {
		c.Server.Addr = v
	}
	return nil
}
