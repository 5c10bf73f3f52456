package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Pipeline runs the three-tier fallback strategy over justfile bytes.
// It is safe for concurrent use: each Parse call is independent except
// for the shared content-hash cache, which is internally synchronized.
type Pipeline struct {
	cfg   *pipelineConfig
	cache *sessionCache
}

// New constructs a Pipeline. Parsing itself never performs I/O beyond
// the external-CLI tier's two `just` subprocess invocations.
func New(opts ...Option) (*Pipeline, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("parser: invalid options: %w", err)
	}
	return &Pipeline{cfg: cfg, cache: newSessionCache()}, nil
}

// Parse runs the pipeline over src, the contents of the justfile at
// path. It never panics on malformed input; any internal fault is
// demoted to the floor tier.
func (p *Pipeline) Parse(ctx context.Context, path string, src []byte) (session *ParseSession, err error) {
	start := nowFunc()
	hash := contentHash(src)

	if !p.cfg.cacheDisabled {
		if cached, ok := p.cache.get(path, hash); ok {
			p.cfg.logger.Debug("parser: cache hit", "path", path)
			return cached, nil
		}
	}

	defer func() {
		if r := recover(); r != nil {
			p.cfg.logger.Warn("parser: recovered from panic, using floor tier", "path", path, "panic", r)
			session = &ParseSession{
				Path:      path,
				Recipes:   []Recipe{parseFloor(stem(path), fmt.Errorf("internal panic: %v", r))},
				Fallbacks: []FallbackRecord{{Tier: TierFloor, Message: fmt.Sprintf("panic: %v", r)}},
				Elapsed:   nowFunc().Sub(start),
			}
			err = nil
		}
	}()

	session = p.parse(ctx, path, src)
	session.Elapsed = nowFunc().Sub(start)

	if !p.cfg.cacheDisabled {
		p.cache.put(path, hash, session)
	}
	return session, nil
}

func (p *Pipeline) parse(ctx context.Context, path string, src []byte) *ParseSession {
	if p.cfg.forceTier != "" {
		return p.parseForced(ctx, path, src)
	}

	grammarRecipes, grammarFallbacks := parseGrammar(src)
	session := &ParseSession{Path: path, Recipes: grammarRecipes, Fallbacks: grammarFallbacks}

	needsCLI := false
	failedNames := map[string]bool{}
	for _, f := range grammarFallbacks {
		needsCLI = true
		if f.Recipe != "" {
			failedNames[f.Recipe] = true
		}
	}
	if !needsCLI {
		if len(session.Recipes) == 0 {
			session.Recipes = []Recipe{parseFloor(stem(path), fmt.Errorf("no recipes found"))}
		}
		return session
	}

	names, err := summaryNames(ctx, p.cfg, path)
	if err != nil {
		p.cfg.logger.Warn("parser: just --summary unavailable, falling back to regex tier", "path", path, "err", err)
		regexRecipes := parseRegexTier(src)
		session.Recipes = mergeRecipes(grammarRecipes, regexRecipes, failedNames)
		session.Fallbacks = append(session.Fallbacks, FallbackRecord{Tier: TierCLI, Message: err.Error()})
		if len(session.Recipes) == 0 {
			session.Recipes = []Recipe{parseFloor(stem(path), err)}
		}
		return session
	}

	haveNames := map[string]bool{}
	for _, r := range grammarRecipes {
		haveNames[r.Name] = true
	}
	var missing []string
	for _, n := range names {
		if !haveNames[n] {
			missing = append(missing, n)
		}
	}

	cliRecipes, cliFallbacks := parseCLI(ctx, p.cfg, path, missing)
	session.Fallbacks = append(session.Fallbacks, cliFallbacks...)
	session.Recipes = orderRecipes(grammarRecipes, cliRecipes)

	if len(session.Recipes) == 0 {
		session.Recipes = []Recipe{parseFloor(stem(path), fmt.Errorf("no recipes recovered by any tier"))}
	}
	return session
}

func (p *Pipeline) parseForced(ctx context.Context, path string, src []byte) *ParseSession {
	switch p.cfg.forceTier {
	case TierGrammar:
		recipes, fallbacks := parseGrammar(src)
		return &ParseSession{Path: path, Recipes: recipes, Fallbacks: fallbacks}
	case TierRegex:
		return &ParseSession{Path: path, Recipes: parseRegexTier(src)}
	case TierCLI:
		names, err := summaryNames(ctx, p.cfg, path)
		if err != nil {
			return &ParseSession{
				Path:      path,
				Recipes:   []Recipe{parseFloor(stem(path), err)},
				Fallbacks: []FallbackRecord{{Tier: TierCLI, Message: err.Error()}},
			}
		}
		recipes, fallbacks := parseCLI(ctx, p.cfg, path, names)
		return &ParseSession{Path: path, Recipes: recipes, Fallbacks: fallbacks}
	case TierFloor:
		return &ParseSession{Path: path, Recipes: []Recipe{parseFloor(stem(path), nil)}}
	default:
		return &ParseSession{Path: path, Recipes: []Recipe{parseFloor(stem(path), fmt.Errorf("unknown forced tier"))}}
	}
}

// mergeRecipes keeps every successfully grammar-parsed recipe and
// backfills only the names the grammar tier failed on from the regex
// pass, preserving invariant (b): a well-formed tier-1 result is never
// replaced by a lower tier.
func mergeRecipes(grammarRecipes, regexRecipes []Recipe, failedNames map[string]bool) []Recipe {
	out := append([]Recipe(nil), grammarRecipes...)
	for _, r := range regexRecipes {
		if failedNames[r.Name] {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}

// orderRecipes places grammar-tier recipes in source order first (the
// order they were encountered), then any CLI/regex-recovered recipes
// from import/mod expansion, sorted by name for determinism since they
// carry no line number in this file.
func orderRecipes(grammarRecipes, recovered []Recipe) []Recipe {
	out := append([]Recipe(nil), grammarRecipes...)
	sort.SliceStable(recovered, func(i, j int) bool { return recovered[i].Name < recovered[j].Name })
	out = append(out, recovered...)
	return out
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// nowFunc is a seam for tests; production code always uses time.Now.
var nowFunc = time.Now
