package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// grammarScanner holds the tier-1 extractor's per-parse scratch state.
// It is pooled so the paramDoc map is reused across calls rather than
// reallocated per file.
type grammarScanner struct {
	paramDoc map[string]string
}

var grammarScannerPool = sync.Pool{
	New: func() any { return &grammarScanner{paramDoc: make(map[string]string)} },
}

func getGrammarScanner() *grammarScanner {
	s := grammarScannerPool.Get().(*grammarScanner)
	for k := range s.paramDoc {
		delete(s.paramDoc, k)
	}
	return s
}

func putGrammarScanner(s *grammarScanner) { grammarScannerPool.Put(s) }

var (
	attributeLineRe = regexp.MustCompile(`^\[([A-Za-z_-]+)(\(([^)]*)\))?\]$`)
	paramDocRe      = regexp.MustCompile(`^#\s*\{\{(\w+)\}\}:\s*(.*)$`)
	recipeHeaderRe  = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_-]*)(\s+[^:]*)?:\s*(.*)$`)
	variadicParamRe = regexp.MustCompile(`^([*+])([A-Za-z_][A-Za-z0-9_-]*)$`)
	defaultParamRe  = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_-]*)=(.+)$`)
	paramNameRe     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
	importModLineRe = regexp.MustCompile(`^(import|mod)\b`)
)

// parseGrammar runs the formal-grammar tier over src, returning every
// recipe whose header and body parsed without an error node, plus a
// fallback record per recipe that didn't (a well-formed tier-1 result
// never falls through; malformed ones do).
func parseGrammar(src []byte) ([]Recipe, []FallbackRecord) {
	s := getGrammarScanner()
	defer putGrammarScanner(s)

	var (
		recipes   []Recipe
		fallbacks []FallbackRecord
	)

	scanner := bufio.NewScanner(bytes.NewReader(src))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var (
		current     *Recipe
		pendingDoc  []string
		pendingAttr = map[string]string{}
		lineNum     int
		bodyLines   []string
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Body = strings.Join(bodyLines, "\n")
		recipes = append(recipes, *current)
		current = nil
		bodyLines = nil
	}

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if current != nil && len(line) > 0 && (line[0] == '\t' || strings.HasPrefix(line, "    ")) {
			body := line
			if line[0] == '\t' {
				body = line[1:]
			} else {
				body = line[4:]
			}
			bodyLines = append(bodyLines, body)
			continue
		}

		flush()
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			pendingDoc = nil
			pendingAttr = map[string]string{}
			continue
		}

		if importModLineRe.MatchString(trimmed) {
			fallbacks = append(fallbacks, FallbackRecord{
				Tier:    TierGrammar,
				Message: fmt.Sprintf("line %d: %s directive not expanded by grammar tier", lineNum, strings.Fields(trimmed)[0]),
			})
			pendingDoc = nil
			pendingAttr = map[string]string{}
			continue
		}

		if m := attributeLineRe.FindStringSubmatch(trimmed); m != nil {
			val := ""
			if len(m) > 3 {
				val = strings.Trim(m[3], `'"`)
			}
			pendingAttr[m[1]] = val
			continue
		}

		if m := paramDocRe.FindStringSubmatch(trimmed); m != nil {
			s.paramDoc[m[1]] = m[2]
			continue
		}

		if after, ok := strings.CutPrefix(trimmed, "#"); ok {
			pendingDoc = append(pendingDoc, strings.TrimSpace(after))
			continue
		}

		// A first colon that is part of ":=" marks a variable
		// assignment, alias, or setting line, never a recipe header.
		if i := strings.IndexByte(trimmed, ':'); i >= 0 && i+1 < len(trimmed) && trimmed[i+1] == '=' {
			pendingDoc = nil
			pendingAttr = map[string]string{}
			continue
		}

		if m := recipeHeaderRe.FindStringSubmatch(trimmed); m != nil {
			name := m[1]
			if name == "" || len(name) > 100 {
				fallbacks = append(fallbacks, FallbackRecord{
					Tier: TierGrammar, Recipe: name,
					Message: fmt.Sprintf("line %d: recipe name out of bounds", lineNum),
				})
				pendingDoc, pendingAttr = nil, map[string]string{}
				continue
			}
			r := Recipe{
				Name:        name,
				DocComments: append([]string(nil), pendingDoc...),
				Attributes:  pendingAttr,
				Line:        lineNum,
				Tier:        TierGrammar,
			}
			if paramStr := strings.TrimSpace(m[2]); paramStr != "" {
				params, err := parseParamList(paramStr, s.paramDoc)
				if err != nil {
					fallbacks = append(fallbacks, FallbackRecord{
						Tier: TierGrammar, Recipe: name,
						Message: fmt.Sprintf("line %d: %v", lineNum, err),
					})
					pendingDoc, pendingAttr = nil, map[string]string{}
					continue
				}
				r.Parameters = params
			}
			if depStr := strings.TrimSpace(m[3]); depStr != "" {
				r.Dependencies = strings.Fields(depStr)
			}
			current = &r
			pendingDoc = nil
			pendingAttr = map[string]string{}
			for k := range s.paramDoc {
				delete(s.paramDoc, k)
			}
			continue
		}

		// Anything else resets doc/attribute state without erroring;
		// a bare variable assignment or alias line is valid justfile
		// syntax tier 1 doesn't need to model for recipe extraction.
		pendingDoc = nil
		pendingAttr = map[string]string{}
	}
	flush()

	return recipes, fallbacks
}

// parseParamList splits a recipe header's parameter segment into
// Parameter values, attaching any "{{name}}: desc" doc comments
// collected for the current recipe.
func parseParamList(s string, docs map[string]string) ([]Parameter, error) {
	var params []Parameter
	seen := map[string]bool{}
	for _, tok := range strings.Fields(s) {
		p := Parameter{}
		switch {
		case variadicParamRe.MatchString(tok):
			m := variadicParamRe.FindStringSubmatch(tok)
			p.Variadic = true
			p.Name = m[2]
		case defaultParamRe.MatchString(tok):
			m := defaultParamRe.FindStringSubmatch(tok)
			p.Name = m[1]
			p.Default = unquote(m[2])
			p.HasDefault = true
		default:
			p.Name = tok
		}
		if !paramNameRe.MatchString(p.Name) {
			return nil, fmt.Errorf("malformed parameter token %q", tok)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate parameter %q", p.Name)
		}
		seen[p.Name] = true
		if d, ok := docs[p.Name]; ok {
			p.Description = d
		}
		params = append(params, p)
	}
	return params, nil
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
