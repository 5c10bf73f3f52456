package watcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/just-mcp/just-mcp/jmerrors"
)

// Logger is the minimal structured-logging surface the watcher needs.
type Logger interface {
	Debug(msg string, attrs ...any)
	Info(msg string, attrs ...any)
	Warn(msg string, attrs ...any)
	Error(msg string, attrs ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Watcher supervises one fsnotify.Watcher across every registered
// WatchTarget, debouncing per-path events into ParseRequest values. It
// is the sole owner and writer of each WatchTarget's hash map; nothing
// else mutates it.
type Watcher struct {
	fsw     *fsnotify.Watcher
	out     chan ParseRequest
	logger  Logger
	targets []*WatchTarget
	byRoot  map[string]*WatchTarget // longest-prefix lookup built in New

	mu     sync.Mutex
	timers map[string]*time.Timer

	retryMu sync.Mutex
	retries map[string]int
}

// New constructs a Watcher over the given targets. Call Start to begin
// watching; ParseRequest values are delivered on the channel returned
// by Requests.
func New(targets []*WatchTarget, logger Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: creating fsnotify watcher: %w", err)
	}
	if logger == nil {
		logger = nopLogger{}
	}
	byRoot := make(map[string]*WatchTarget, len(targets))
	for _, t := range targets {
		byRoot[t.Root] = t
	}
	return &Watcher{
		fsw:     fsw,
		out:     make(chan ParseRequest, 64),
		logger:  logger,
		targets: targets,
		byRoot:  byRoot,
		timers:  make(map[string]*time.Timer),
		retries: make(map[string]int),
	}, nil
}

// Requests returns the channel ParseRequest values are delivered on.
func (w *Watcher) Requests() <-chan ParseRequest { return w.out }

// Start registers recursive filesystem notifications for every target
// and begins the dispatch loop. It returns once initial registration
// completes; event translation runs in background goroutines until ctx
// is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	for _, t := range w.targets {
		if err := w.armTarget(t); err != nil {
			w.degradeAfterRetries(t, err)
		}
	}
	go w.loop(ctx)
	return nil
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) armTarget(t *WatchTarget) error {
	return filepath.WalkDir(t.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

func (w *Watcher) degradeAfterRetries(t *WatchTarget, cause error) {
	w.retryMu.Lock()
	w.retries[t.ID]++
	attempt := w.retries[t.ID]
	w.retryMu.Unlock()

	werr := &jmerrors.WatchError{Target: t.ID, Attempt: attempt, Cause: cause}
	w.logger.Error("watcher: registration failed", "target", t.ID, "attempt", attempt, "err", werr)

	if attempt > maxWatchRetries {
		t.setDegraded(true)
		w.logger.Warn("watcher: target degraded to manual sync only", "target", t.ID)
		return
	}
	backoff := time.Second << attempt
	time.AfterFunc(backoff, func() {
		if err := w.armTarget(t); err != nil {
			w.degradeAfterRetries(t, err)
		}
	})
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher: fsnotify error", "err", err)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !matchesJustfile(ev.Name) {
		// A newly created directory still needs recursive registration
		// even though its name itself never matches a justfile.
		if ev.Op.Has(fsnotify.Create) {
			if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
				_ = w.fsw.Add(ev.Name)
			}
		}
		return
	}

	target := w.targetFor(ev.Name)
	if target == nil {
		return
	}

	if ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename) {
		w.cancelTimer(ev.Name)
		target.clearHash(ev.Name)
		w.out <- ParseRequest{Target: target, Path: ev.Name, Deleted: true}
		return
	}

	w.arm(target, ev.Name)
}

// targetFor resolves the WatchTarget owning path by longest matching
// root prefix.
func (w *Watcher) targetFor(path string) *WatchTarget {
	var best *WatchTarget
	bestLen := -1
	for root, t := range w.byRoot {
		rel, err := filepath.Rel(root, path)
		if err != nil || len(rel) >= 2 && rel[:2] == ".." {
			continue
		}
		if len(root) > bestLen {
			best = t
			bestLen = len(root)
		}
	}
	return best
}

func (w *Watcher) arm(target *WatchTarget, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.timers[path]; ok {
		timer.Reset(DebounceWindow)
		return
	}
	w.timers[path] = time.AfterFunc(DebounceWindow, func() {
		w.fire(target, path)
	})
}

func (w *Watcher) cancelTimer(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.timers[path]; ok {
		timer.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) fire(target *WatchTarget, path string) {
	w.mu.Lock()
	delete(w.timers, path)
	w.mu.Unlock()

	bytes, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			target.clearHash(path)
			w.out <- ParseRequest{Target: target, Path: path, Deleted: true}
			return
		}
		w.logger.Warn("watcher: read failed", "path", path, "err", err)
		target.clearHash(path)
		w.out <- ParseRequest{Target: target, Path: path, Deleted: true}
		return
	}

	hash := sha256.Sum256(bytes)
	if last, ok := target.lastHash(path); ok && last == hash {
		return
	}
	target.setHash(path, hash)
	w.out <- ParseRequest{Target: target, Path: path, Bytes: bytes}
}
