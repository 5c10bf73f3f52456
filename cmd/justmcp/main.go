// Command justmcp starts the just-mcp server over stdio. This file
// stays intentionally thin: parse flags, build a mcpserver.RunOptions,
// hand off.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/just-mcp/just-mcp/internal/cliutil"
	"github.com/just-mcp/just-mcp/internal/mcpserver"
	"github.com/just-mcp/just-mcp/jmerrors"
)

// watchDirFlag collects repeated -w/--watch-dir occurrences.
type watchDirFlag []string

func (f *watchDirFlag) String() string { return fmt.Sprint([]string(*f)) }
func (f *watchDirFlag) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var watchDirs watchDirFlag
	fs := flag.NewFlagSet("just-mcp", flag.ContinueOnError)
	fs.Var(&watchDirs, "watch-dir", "PATH[:NAME] to watch; repeatable")
	fs.Var(&watchDirs, "w", "shorthand for --watch-dir")
	admin := fs.Bool("admin", false, "expose _admin_sync and _admin_create_task")
	jsonLogs := fs.Bool("json-logs", false, "emit JSON log records on stderr")
	logLevel := fs.String("log-level", "info", "trace|debug|info|warn|error")
	parserTier := fs.String("parser", "auto", "auto|ast|cli|regex")
	timeoutSecs := fs.Int("timeout", 300, "default per-execution deadline, in seconds")
	outputLimit := fs.Int("output-limit", 1<<20, "per-stream truncation cap, in bytes")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		cliutil.Writef(os.Stderr, "just-mcp: %v\n", err)
		return 2
	}

	opts := mcpserver.RunOptions{
		Admin:       *admin,
		JSONLogs:    *jsonLogs,
		LogLevelSet: flagWasSet(fs, "log-level"),
		LogLevel:    *logLevel,
		ParserTier:  *parserTier,
	}
	if flagWasSet(fs, "timeout") {
		opts.Timeout = secondsToDuration(*timeoutSecs)
	}
	if flagWasSet(fs, "output-limit") {
		opts.OutputLimit = *outputLimit
	}
	for _, d := range watchDirs {
		opts.WatchDirs = append(opts.WatchDirs, mcpserver.ParseWatchDirSpec(d))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcpserver.Run(ctx, opts); err != nil {
		cliutil.Writef(os.Stderr, "just-mcp: %v\n", err)
		var fatal *jmerrors.FatalError
		if errors.As(err, &fatal) {
			return 70
		}
		return 64
	}
	return 0
}

func flagWasSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func secondsToDuration(secs int) time.Duration {
	return time.Duration(secs) * time.Second
}
