package mcpserver

import "time"

// WatchDirSpec is one parsed `--watch-dir PATH[:NAME]` argument.
type WatchDirSpec struct {
	Path string
	Name string
}

// RunOptions carries the CLI front-end's parsed flags into Run.
// cmd/justmcp/main.go only builds one of these and calls Run.
type RunOptions struct {
	WatchDirs   []WatchDirSpec
	Admin       bool
	JSONLogs    bool
	LogLevelSet bool // true if --log-level was passed explicitly
	LogLevel    string
	ParserTier  string
	Timeout     time.Duration
	OutputLimit int
}

// resolvedConfig is the final, merged configuration for one Run: the
// env/YAML-loaded package singleton cfg, overlaid with explicit
// RunOptions from CLI flags. Built once per Run call so tests (and a
// future multi-instance embedding) never mutate the package-level cfg.
type resolvedConfig struct {
	watchDirs   []WatchDirSpec
	admin       bool
	jsonLogs    bool
	logLevel    string
	parserTier  string
	justBinary  string
	timeout     time.Duration
	outputLimit int
	concurrency int
	queueLimit  int
}

// resolveConfig merges opts onto the package-level cfg. RUST_LOG
// overrides the --log-level flag only when the flag is left at its
// default: an explicitly-passed --log-level wins over RUST_LOG, but
// RUST_LOG wins over the flag's own default. Every other flag always
// overrides its env/file-derived default, matching ordinary CLI
// semantics.
func resolveConfig(opts RunOptions) *resolvedConfig {
	r := &resolvedConfig{
		watchDirs:   opts.WatchDirs,
		admin:       opts.Admin || cfg.Admin,
		jsonLogs:    opts.JSONLogs || cfg.JSONLogs,
		logLevel:    cfg.LogLevel,
		parserTier:  cfg.ParserTier,
		justBinary:  "just",
		timeout:     cfg.Timeout,
		outputLimit: cfg.OutputLimit,
		concurrency: cfg.Concurrency,
		queueLimit:  cfg.QueueLimit,
	}
	if opts.LogLevelSet {
		r.logLevel = opts.LogLevel
	}
	if opts.ParserTier != "" && opts.ParserTier != "auto" {
		r.parserTier = opts.ParserTier
	}
	if opts.Timeout > 0 {
		r.timeout = opts.Timeout
	}
	if opts.OutputLimit > 0 {
		r.outputLimit = opts.OutputLimit
	}
	if len(r.watchDirs) == 0 {
		for _, d := range cfg.WatchDirs {
			r.watchDirs = append(r.watchDirs, ParseWatchDirSpec(d))
		}
	}
	if len(r.watchDirs) == 0 {
		r.watchDirs = []WatchDirSpec{{Path: "."}}
	}
	return r
}

// ParseWatchDirSpec splits a "PATH[:NAME]" string. A Windows-style
// drive-letter colon ("C:\x") is not mistaken for a name separator
// since only a single trailing ":name" with no path separators in name
// is recognized. This is the one splitting rule for the whole program:
// cmd/justmcp's --watch-dir flag and a config file's watch_dirs list
// both route through it, so the same input behaves identically
// regardless of which entry point it arrives through.
func ParseWatchDirSpec(s string) WatchDirSpec {
	for i := len(s) - 1; i > 0; i-- {
		if s[i] == ':' {
			name := s[i+1:]
			if name != "" && !containsPathSeparator(name) {
				return WatchDirSpec{Path: s[:i], Name: name}
			}
			break
		}
	}
	return WatchDirSpec{Path: s}
}

func containsPathSeparator(s string) bool {
	for _, r := range s {
		if r == '/' || r == '\\' {
			return true
		}
	}
	return false
}
