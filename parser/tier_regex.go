package parser

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

// regexHeaderRe is deliberately looser than the grammar tier's header
// regex: it accepts the same shape but tier 3 only ever populates
// name, parameters, dependencies, and a raw body.
var regexHeaderRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_-]*)(\s+[^:]*)?\s*:(.*)$`)

// parseRegexTier is the line-based scanner fallback: no attributes, no
// doc-comment attachment, no multi-line conditional defaults. Every
// recipe it produces is marked Tier: TierRegex so callers can annotate
// the result as approximate.
func parseRegexTier(src []byte) []Recipe {
	var recipes []Recipe
	scanner := bufio.NewScanner(bytes.NewReader(src))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var current *Recipe
	var body []string
	lineNum := 0

	flush := func() {
		if current == nil {
			return
		}
		current.Body = strings.Join(body, "\n")
		recipes = append(recipes, *current)
		current = nil
		body = nil
	}

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if current != nil && len(line) > 0 && (line[0] == '\t' || strings.HasPrefix(line, "    ")) {
			if line[0] == '\t' {
				body = append(body, line[1:])
			} else {
				body = append(body, line[4:])
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}

		if m := regexHeaderRe.FindStringSubmatch(trimmed); m != nil {
			flush()
			r := Recipe{Name: m[1], Line: lineNum, Tier: TierRegex}
			for _, tok := range strings.Fields(m[2]) {
				p := Parameter{Name: tok}
				if idx := strings.IndexByte(tok, '='); idx > 0 {
					p.Name = tok[:idx]
					p.Default = unquote(tok[idx+1:])
					p.HasDefault = true
				}
				r.Parameters = append(r.Parameters, p)
			}
			if deps := strings.Fields(m[3]); len(deps) > 0 {
				r.Dependencies = deps
			}
			current = &r
			continue
		}
	}
	flush()
	return recipes
}

// parseFloor is the tier-4 fallback: if every other tier failed or
// raised, it produces a single Recipe named after the file stem so the
// registry never loses the file entirely.
func parseFloor(stem string, cause error) Recipe {
	msg := "parse failed"
	if cause != nil {
		msg = cause.Error()
	}
	return Recipe{
		Name:        stem,
		DocComments: []string{"parsing failed: " + msg},
		Tier:        TierFloor,
	}
}
