// Package jmerrors provides structured error types for just-mcp.
//
// These error types enable programmatic error handling via errors.Is()
// and errors.As(), letting callers distinguish between the error
// categories the core's component design calls out: validation
// failures, missing tools, degraded parses, watcher faults, executor
// overload, and malformed JSON-RPC framing.
//
// # Error Categories
//
//   - ValidationError: an ExecutionRequest violates an argument invariant
//   - ToolNotFoundError: a tools/call named a tool absent from the registry
//   - ParseFailureError: a parser tier failed for a recipe (demoted internally)
//   - WatchError: a filesystem-notification backend failure
//   - OverloadError: the executor's admission queue is full
//   - ProtocolError: malformed JSON or JSON-RPC framing
//   - FatalError: an invariant violation warranting process exit
//
// # Usage with errors.Is
//
//	result, err := executor.Execute(ctx, req)
//	if errors.Is(err, jmerrors.ErrValidation) {
//	    // reject without ever spawning a process
//	}
//
// # Usage with errors.As
//
//	var ve *jmerrors.ValidationError
//	if errors.As(err, &ve) {
//	    fmt.Printf("rejected argument %q: %s\n", ve.Argument, ve.Reason)
//	}
package jmerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrValidation matches any ValidationError.
	ErrValidation = errors.New("validation error")

	// ErrToolNotFound matches any ToolNotFoundError.
	ErrToolNotFound = errors.New("tool not found")

	// ErrParseFailure matches any ParseFailureError.
	ErrParseFailure = errors.New("parse failure")

	// ErrWatch matches any WatchError.
	ErrWatch = errors.New("watch error")

	// ErrOverload matches any OverloadError.
	ErrOverload = errors.New("executor overloaded")

	// ErrProtocol matches any ProtocolError.
	ErrProtocol = errors.New("protocol error")

	// ErrFatal matches any FatalError.
	ErrFatal = errors.New("fatal invariant violation")
)

// ValidationError indicates an ExecutionRequest violated a §3 invariant:
// an unknown argument, an oversized value, a forbidden-pattern match, or
// too many arguments. Never retried; the call is rejected before any
// child process is spawned.
type ValidationError struct {
	Tool     string
	Argument string
	Reason   string
	Cause    error
}

func (e *ValidationError) Error() string {
	if e.Argument != "" {
		return fmt.Sprintf("validation: tool %q argument %q: %s", e.Tool, e.Argument, e.Reason)
	}
	return fmt.Sprintf("validation: tool %q: %s", e.Tool, e.Reason)
}

// Unwrap returns the underlying cause, if any, for error chaining.
func (e *ValidationError) Unwrap() error { return e.Cause }

// Is reports whether target is the ValidationError sentinel.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ToolNotFoundError indicates the named tool was absent from the
// registry at dispatch time.
type ToolNotFoundError struct {
	Tool string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool not found: %q", e.Tool)
}

func (e *ToolNotFoundError) Is(target error) bool { return target == ErrToolNotFound }

// ParseFailureError records a tier-specific parse failure. It is never
// surfaced to an MCP client directly; the parser pipeline demotes it to
// the next fallback tier (or the floor tier) and the registry reflects
// the best-effort result. It exists so the failure can still be logged
// with enough context to diagnose.
type ParseFailureError struct {
	Path   string
	Tier   string
	Recipe string
	Cause  error
}

func (e *ParseFailureError) Error() string {
	if e.Recipe != "" {
		return fmt.Sprintf("parse: %s: tier %s failed for recipe %q: %v", e.Path, e.Tier, e.Recipe, e.Cause)
	}
	return fmt.Sprintf("parse: %s: tier %s failed: %v", e.Path, e.Tier, e.Cause)
}

func (e *ParseFailureError) Unwrap() error        { return e.Cause }
func (e *ParseFailureError) Is(target error) bool { return target == ErrParseFailure }

// WatchError records a filesystem-notification backend failure for a
// specific WatchTarget. The watcher re-arms the target up to 3 times
// with exponential backoff before degrading it to manual
// _admin_sync-only updates.
type WatchError struct {
	Target  string
	Attempt int
	Cause   error
}

func (e *WatchError) Error() string {
	return fmt.Sprintf("watch: target %q attempt %d: %v", e.Target, e.Attempt, e.Cause)
}

func (e *WatchError) Unwrap() error        { return e.Cause }
func (e *WatchError) Is(target error) bool { return target == ErrWatch }

// OverloadError indicates the executor's admission queue was full when
// a request arrived. Clients may retry.
type OverloadError struct {
	QueueDepth int
	QueueLimit int
}

func (e *OverloadError) Error() string {
	return fmt.Sprintf("executor overloaded: queue depth %d exceeds limit %d", e.QueueDepth, e.QueueLimit)
}

func (e *OverloadError) Is(target error) bool { return target == ErrOverload }

// ProtocolError indicates malformed JSON or JSON-RPC framing on the
// stdio transport. The reader continues with the next line after
// reporting one of these.
type ProtocolError struct {
	Line  string
	Cause error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol: %v", e.Cause)
}

func (e *ProtocolError) Unwrap() error        { return e.Cause }
func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

// FatalError indicates an invariant violation or unrecoverable I/O
// failure. Callers that receive one should exit with code 70.
type FatalError struct {
	Reason string
	Cause  error
}

func (e *FatalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fatal: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("fatal: %s", e.Reason)
}

func (e *FatalError) Unwrap() error        { return e.Cause }
func (e *FatalError) Is(target error) bool { return target == ErrFatal }
