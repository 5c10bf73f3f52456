// Package mcpserver wires the parser, watcher, registry, and executor
// into an MCP server exposing justfile recipes as tools over stdio.
package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"go.yaml.in/yaml/v4"
)

// serverConfig holds all configurable just-mcp server defaults. Loaded
// once at startup: environment variables take precedence over an
// optional YAML config file, which takes precedence over the
// hardcoded default.
type serverConfig struct {
	Admin      bool   `yaml:"admin"`
	JSONLogs   bool   `yaml:"json_logs"`
	LogLevel   string `yaml:"log_level"`
	ParserTier string `yaml:"parser"`

	Timeout     time.Duration `yaml:"timeout"`
	OutputLimit int           `yaml:"output_limit"`
	Concurrency int           `yaml:"concurrency"`
	QueueLimit  int           `yaml:"queue_limit"`

	WatchDirs []string `yaml:"watch_dirs"`
}

// cfg is the active server configuration, initialized at package load
// time.
var cfg = loadConfig()

func defaultConfig() *serverConfig {
	return &serverConfig{
		LogLevel:    "info",
		ParserTier:  "auto",
		Timeout:     300 * time.Second,
		OutputLimit: 1 << 20,
		Concurrency: 10,
		QueueLimit:  100,
	}
}

// loadConfig resolves the layered configuration: hardcoded default,
// then an optional YAML file named by JUST_MCP_CONFIG, then
// JUST_MCP_*/RUST_LOG environment overrides. Invalid values log a
// warning and fall back rather than aborting startup.
func loadConfig() *serverConfig {
	c := defaultConfig()
	if path := os.Getenv("JUST_MCP_CONFIG"); path != "" {
		mergeConfigFile(c, path)
	}

	if v := os.Getenv("JUST_MCP_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.Timeout = time.Duration(secs) * time.Second
		} else {
			slog.Warn("invalid JUST_MCP_TIMEOUT, using default", "value", v)
		}
	}
	if v := os.Getenv("JUST_MCP_OUTPUT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.OutputLimit = n
		} else {
			slog.Warn("invalid JUST_MCP_OUTPUT_LIMIT, using default", "value", v)
		}
	}
	if v := os.Getenv("RUST_LOG"); v != "" {
		c.LogLevel = v
	}
	return c
}

// mergeConfigFile overlays YAML-file settings onto c for every field
// the file sets explicitly; a missing or unreadable file is logged and
// ignored rather than failing startup.
func mergeConfigFile(c *serverConfig, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("could not read config file, ignoring", "path", path, "error", err)
		return
	}
	var fileCfg serverConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		slog.Warn("could not parse config file, ignoring", "path", path, "error", err)
		return
	}
	if fileCfg.Admin {
		c.Admin = true
	}
	if fileCfg.JSONLogs {
		c.JSONLogs = true
	}
	if fileCfg.LogLevel != "" {
		c.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.ParserTier != "" {
		c.ParserTier = fileCfg.ParserTier
	}
	if fileCfg.Timeout > 0 {
		c.Timeout = fileCfg.Timeout
	}
	if fileCfg.OutputLimit > 0 {
		c.OutputLimit = fileCfg.OutputLimit
	}
	if fileCfg.Concurrency > 0 {
		c.Concurrency = fileCfg.Concurrency
	}
	if fileCfg.QueueLimit > 0 {
		c.QueueLimit = fileCfg.QueueLimit
	}
	if len(fileCfg.WatchDirs) > 0 {
		c.WatchDirs = fileCfg.WatchDirs
	}
}

func levelFromString(s string) slog.Level {
	switch s {
	case "trace", "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
