package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/just-mcp/just-mcp/executor"
	"github.com/just-mcp/just-mcp/jmerrors"
	"github.com/just-mcp/just-mcp/parser"
	"github.com/just-mcp/just-mcp/registry"
	"github.com/just-mcp/just-mcp/watcher"
)

// Version is the just-mcp release version advertised during the MCP
// handshake.
const Version = "0.1.0"

const serverInstructions = `just-mcp exposes a project's justfile recipes as MCP tools.

Each recipe under a watched directory becomes a tool named "just_<recipe>"
(or "just_<recipe>@<name>" when --watch-dir supplies a display name, or
"just_<recipe>_<slug>" when more than one watch directory is unnamed).
Recipes are re-parsed and republished automatically whenever a justfile
changes; re-issue tools/list after a notifications/tools/list_changed to
see the current set.

Configuration: defaults can be set in a YAML file named by
JUST_MCP_CONFIG; these environment variables override the file:
- JUST_MCP_TIMEOUT (default: 300s) — per-execution wall-clock deadline
- JUST_MCP_OUTPUT_LIMIT (default: 1048576) — per-stream truncation cap
- RUST_LOG — logger verbosity (trace|debug|info|warn|error)

--admin exposes _admin_sync (force a re-scan of every watch target) and
_admin_create_task (append a new recipe to a watched justfile).`

// Server bundles one running instance's state: the parser pipeline,
// tool registry, executor, filesystem watcher, and the live *mcp.Server
// they publish through.
type Server struct {
	mcpServer *mcp.Server
	reg       *registry.Registry
	exec      *executor.Executor
	pipeline  *parser.Pipeline
	watch     *watcher.Watcher
	targets   map[string]*target
	admin     bool
	logger    *slog.Logger
	coalesce  *coalescer
}

// Run starts the just-mcp server over stdio and blocks until the client
// disconnects or ctx is cancelled.
func Run(ctx context.Context, opts RunOptions) error {
	rc := resolveConfig(opts)
	logger := newLogger(rc.jsonLogs, rc.logLevel)

	s, err := newServer(ctx, rc, logger)
	if err != nil {
		return err
	}

	if err := s.watch.Start(ctx); err != nil {
		return &jmerrors.FatalError{Reason: "starting watcher", Cause: err}
	}
	defer s.watch.Close()

	go s.consumeParseRequests(ctx)

	logger.Info("just-mcp starting", "targets", len(s.targets), "admin", s.admin)
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// newServer wires the parser, registry, executor, and watcher into a
// fully registered *Server. The watcher is constructed but not started;
// Run (and tests, which substitute their own transport) decide when
// filesystem events begin flowing.
func newServer(ctx context.Context, rc *resolvedConfig, logger *slog.Logger) (*Server, error) {
	wts, infos, err := buildWatchTargets(rc.watchDirs)
	if err != nil {
		return nil, &jmerrors.FatalError{Reason: "resolving watch directories", Cause: err}
	}

	pipeline, err := parser.New(parserOptions(rc, logger)...)
	if err != nil {
		return nil, &jmerrors.FatalError{Reason: "constructing parser pipeline", Cause: err}
	}

	reg := registry.New(infos)
	exec := executor.New(
		executor.WithJustBinary(rc.justBinary),
		executor.WithConcurrency(rc.concurrency),
		executor.WithQueueLimit(rc.queueLimit),
		executor.WithDefaultDeadline(rc.timeout),
		executor.WithOutputLimit(rc.outputLimit),
		executor.WithLogger(logger),
	)

	wtch, err := watcher.New(wts, logger)
	if err != nil {
		return nil, &jmerrors.FatalError{Reason: "constructing watcher", Cause: err}
	}

	s := &Server{
		reg:      reg,
		exec:     exec,
		pipeline: pipeline,
		watch:    wtch,
		targets:  make(map[string]*target, len(wts)),
		admin:    rc.admin,
		logger:   logger,
	}
	s.coalesce = newCoalescer(s.applyChangeSet)

	s.mcpServer = mcp.NewServer(
		&mcp.Implementation{Name: "just-mcp", Version: Version},
		&mcp.ServerOptions{
			Instructions:      serverInstructions,
			Logger:            logger,
			CompletionHandler: s.completeArgument,
		},
	)

	for _, wt := range wts {
		t := newTarget(wt)
		s.targets[t.info.ID] = t
		s.coalesce.push(initialSync(ctx, t, pipeline, reg))
	}
	s.coalesce.flushNow()

	s.registerResources()
	s.registerPrompts()
	if s.admin {
		s.registerAdminTools()
	}
	return s, nil
}

// consumeParseRequests drains the watcher's ParseRequest channel and
// applies each one to the registry, coalescing the resulting
// notifications.
func (s *Server) consumeParseRequests(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-s.watch.Requests():
			if !ok {
				return
			}
			s.handleParseRequest(ctx, req)
		}
	}
}

func (s *Server) handleParseRequest(ctx context.Context, req watcher.ParseRequest) {
	t, ok := s.targets[req.Target.ID]
	if !ok {
		return
	}
	var recipes []parser.Recipe
	if !req.Deleted {
		session, err := s.pipeline.Parse(ctx, req.Path, req.Bytes)
		if err != nil {
			s.logger.Warn("just-mcp: parse failed", "path", req.Path, "err", err)
		} else {
			recipes = session.Recipes
		}
	}
	flat := t.setFile(req.Path, recipes)
	s.coalesce.push(s.reg.Apply(t.info, flat))
}

// syncTarget re-walks and re-parses one target's root from scratch,
// used by _admin_sync to recover a degraded target without waiting for
// the next filesystem event.
func (s *Server) syncTarget(ctx context.Context, t *target) registry.ToolChangeSet {
	t.mu.Lock()
	t.recipesByFile = make(map[string][]parser.Recipe)
	t.mu.Unlock()
	return initialSync(ctx, t, s.pipeline, s.reg)
}

func buildWatchTargets(specs []WatchDirSpec) ([]*watcher.WatchTarget, []registry.TargetInfo, error) {
	wts := make([]*watcher.WatchTarget, 0, len(specs))
	infos := make([]registry.TargetInfo, 0, len(specs))
	for _, spec := range specs {
		abs, err := filepath.Abs(spec.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving %q: %w", spec.Path, err)
		}
		wt := watcher.NewWatchTarget(abs, spec.Name)
		wts = append(wts, wt)
		infos = append(infos, registry.TargetInfo{ID: wt.ID, Name: wt.Name, Root: wt.Root})
	}
	return wts, infos, nil
}

// parserOptions translates --parser auto|ast|cli|regex into the
// pipeline's WithForcedTier option; "ast" names the formal-grammar tier
// from the CLI surface's point of view.
func parserOptions(rc *resolvedConfig, logger *slog.Logger) []parser.Option {
	opts := []parser.Option{parser.WithLogger(parser.NewSlogAdapter(logger))}
	if rc.justBinary != "" {
		opts = append(opts, parser.WithJustBinary(rc.justBinary))
	}
	switch rc.parserTier {
	case "ast":
		opts = append(opts, parser.WithForcedTier(parser.TierGrammar))
	case "cli":
		opts = append(opts, parser.WithForcedTier(parser.TierCLI))
	case "regex":
		opts = append(opts, parser.WithForcedTier(parser.TierRegex))
	}
	return opts
}
