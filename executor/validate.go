package executor

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/just-mcp/just-mcp/jmerrors"
)

const (
	maxArgBytes  = 1024
	maxArgCount  = 50
	envKeyFormat = `^[A-Z_][A-Z0-9_]*$`
)

var (
	envKeyRe = regexp.MustCompile(envKeyFormat)

	// forbiddenSubstrings are the shell metacharacters and
	// path-traversal tokens rejected in argument values. Arguments
	// never reach a shell (the executor builds argv directly), but
	// recipe bodies may themselves interpolate the value into a shell
	// command, so these are rejected at the boundary.
	forbiddenSubstrings = []string{";", "&", "|", "`", "$(", "${", "../"}
)

// Validate checks req's arguments, environment keys, and working
// directory against the execution invariants. All checks run before
// any process is constructed.
func Validate(req ExecutionRequest) error {
	if len(req.Arguments) > maxArgCount {
		return &jmerrors.ValidationError{
			Tool: req.ToolName, Reason: fmt.Sprintf("argument count %d exceeds limit %d", len(req.Arguments), maxArgCount),
		}
	}

	for name, value := range req.Arguments {
		if !slices.Contains(req.DeclaredParams, name) && name != req.Variadic {
			return &jmerrors.ValidationError{
				Tool: req.ToolName, Argument: name, Reason: "unknown argument",
			}
		}
		str := stringifyArg(value)
		if len(str) > maxArgBytes {
			return &jmerrors.ValidationError{
				Tool: req.ToolName, Argument: name,
				Reason: fmt.Sprintf("value exceeds %d bytes", maxArgBytes),
			}
		}
		if forbidden, pattern := containsForbiddenPattern(str); forbidden {
			return &jmerrors.ValidationError{
				Tool: req.ToolName, Argument: name,
				Reason: fmt.Sprintf("value matches forbidden pattern %q", pattern),
			}
		}
	}

	for _, required := range req.RequiredParams {
		if _, ok := req.Arguments[required]; !ok {
			return &jmerrors.ValidationError{
				Tool: req.ToolName, Argument: required, Reason: "missing required argument",
			}
		}
	}

	for key := range req.EnvOverlay {
		if !envKeyRe.MatchString(key) {
			return &jmerrors.ValidationError{
				Tool: req.ToolName, Argument: key, Reason: "environment key does not match " + envKeyFormat,
			}
		}
	}

	if req.WorkDir != "" && req.BaseDir != "" {
		if err := confineWorkDir(req.WorkDir, req.BaseDir); err != nil {
			return &jmerrors.ValidationError{Tool: req.ToolName, Reason: err.Error()}
		}
	}

	return nil
}

func containsForbiddenPattern(s string) (bool, string) {
	for _, p := range forbiddenSubstrings {
		if strings.Contains(s, p) {
			return true, p
		}
	}
	return false, ""
}

// confineWorkDir rejects a working-directory override that does not
// lie within base, compared on resolved absolute paths.
func confineWorkDir(workDir, base string) error {
	absWork, err := filepath.Abs(workDir)
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return fmt.Errorf("resolving base directory: %w", err)
	}
	rel, err := filepath.Rel(absBase, absWork)
	if err != nil {
		return fmt.Errorf("working directory is not under %s", base)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("working directory %q escapes target tree %q", workDir, base)
	}
	return nil
}

// stringifyArg renders a JSON-decoded argument value (string, number,
// or bool) as the literal text passed as an argv token.
func stringifyArg(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
