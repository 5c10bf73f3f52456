package mcpserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseWatchDirSpec(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  WatchDirSpec
	}{
		{"bare path", "./services/api", WatchDirSpec{Path: "./services/api"}},
		{"path with name", "./services/api:api", WatchDirSpec{Path: "./services/api", Name: "api"}},
		{"windows drive letter not mistaken for name", `C:\justfiles`, WatchDirSpec{Path: `C:\justfiles`}},
		{"trailing colon with empty name", "./services/api:", WatchDirSpec{Path: "./services/api:"}},
		{"name containing a slash is not a name", "./a:b/c", WatchDirSpec{Path: "./a:b/c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseWatchDirSpec(tt.input))
		})
	}
}

func TestResolveConfig_Defaults(t *testing.T) {
	rc := resolveConfig(RunOptions{})
	assert.Equal(t, []WatchDirSpec{{Path: "."}}, rc.watchDirs, "no watch dirs anywhere falls back to the current directory")
	assert.Equal(t, cfg.LogLevel, rc.logLevel)
	assert.Equal(t, cfg.Timeout, rc.timeout)
}

func TestResolveConfig_ExplicitOverridesBeatDefaults(t *testing.T) {
	rc := resolveConfig(RunOptions{
		Admin:       true,
		LogLevelSet: true,
		LogLevel:    "debug",
		ParserTier:  "cli",
		Timeout:     5 * time.Second,
		OutputLimit: 4096,
		WatchDirs:   []WatchDirSpec{{Path: "/srv/app"}},
	})

	assert.True(t, rc.admin)
	assert.Equal(t, "debug", rc.logLevel)
	assert.Equal(t, "cli", rc.parserTier)
	assert.Equal(t, 5*time.Second, rc.timeout)
	assert.Equal(t, 4096, rc.outputLimit)
	assert.Equal(t, []WatchDirSpec{{Path: "/srv/app"}}, rc.watchDirs)
}

func TestResolveConfig_UnsetParserTierKeepsDefault(t *testing.T) {
	rc := resolveConfig(RunOptions{ParserTier: "auto"})
	assert.Equal(t, cfg.ParserTier, rc.parserTier)
}
