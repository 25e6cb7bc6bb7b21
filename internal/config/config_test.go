package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultThresholds verifies default configuration values
func TestDefaultThresholds(t *testing.T) {
	cfg := DefaultThresholds()

	assert.Equal(t, ModeStrict, cfg.Mode)
	assert.Equal(t, 2.0, cfg.SectionImbalanceFactor)
	assert.Empty(t, cfg.Rules)
	assert.Equal(t, DefaultPattern, cfg.Default.PathPattern)
	assert.Equal(t, 14.0, *cfg.Default.Grade.Max)
	assert.Nil(t, cfg.Default.Grade.Min)
	assert.Equal(t, 14.0, *cfg.Default.ARI.Max)
	assert.Equal(t, 30.0, *cfg.Default.FleschEase.Min)
	assert.Equal(t, 18.0, *cfg.Default.GunningFog.Max)
	assert.Equal(t, 4, *cfg.Default.MaxHeadingDepth)
	assert.Equal(t, 0.75, *cfg.Default.MaxCodeRatio)
	assert.Equal(t, 375, *cfg.Default.MaxLines)
	require.NoError(t, cfg.Validate())
}

// TestLoadValidFile tests loading a valid YAML config file
func TestLoadValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "docqa.yaml")

	configContent := `mode: lenient
sectionImbalanceFactor: 3
syllableExceptions:
  - kubectl:3
perTypeThresholds:
  - pathPattern: "blog/**"
    grade: {max: 16}
    fleschEase: {min: 20}
    maxLines: 500
  - pathPattern: "*.api.md"
    maxCodeRatio: 0.9
  - pathPattern: default
    grade: {min: 6, max: 12}
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, ModeLenient, cfg.Mode)
	assert.Equal(t, 3.0, cfg.SectionImbalanceFactor)
	assert.Equal(t, []string{"kubectl:3"}, cfg.SyllableExceptions)
	require.Len(t, cfg.Rules, 2)
	assert.Equal(t, "blog/**", cfg.Rules[0].PathPattern)

	// The default entry is merged over the built-in fallback.
	assert.Equal(t, 6.0, *cfg.Default.Grade.Min)
	assert.Equal(t, 12.0, *cfg.Default.Grade.Max)
	assert.Equal(t, 14.0, *cfg.Default.ARI.Max)
	assert.Equal(t, 375, *cfg.Default.MaxLines)

	assert.Equal(t, 3, cfg.Lexicon().CountSyllables("kubectl"))
}

// TestLoadFileNotExists tests fallback to defaults when file doesn't exist
func TestLoadFileNotExists(t *testing.T) {
	cfg, err := Load("/nonexistent/path/docqa.yaml")
	require.NoError(t, err, "Load should not error on missing file")
	assert.Equal(t, DefaultThresholds(), cfg)
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), []byte("mode: lenient\n"), 0644))

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, ModeLenient, cfg.Mode)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultThresholds(), cfg)
}

func TestParseRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantField string
		wantMsg   string
	}{
		{
			name:    "unknown top-level key",
			content: "mode: strict\nmaxWords: 10\n",
			wantMsg: "maxWords",
		},
		{
			name:    "unknown rule key",
			content: "perTypeThresholds:\n  - pathPattern: a.md\n    readingLevel: 3\n",
			wantMsg: "readingLevel",
		},
		{
			name:    "unknown range key",
			content: "perTypeThresholds:\n  - pathPattern: a.md\n    grade: {maximum: 3}\n",
			wantMsg: "maximum",
		},
		{
			name:      "bad mode",
			content:   "mode: relaxed\n",
			wantField: "mode",
		},
		{
			name:      "zero factor",
			content:   "sectionImbalanceFactor: 0\n",
			wantField: "sectionImbalanceFactor",
		},
		{
			name:      "negative factor",
			content:   "sectionImbalanceFactor: -1.5\n",
			wantField: "sectionImbalanceFactor",
		},
		{
			name:      "malformed syllable exception",
			content:   "syllableExceptions:\n  - kubectl\n",
			wantField: "syllableExceptions[0]",
		},
		{
			name:      "min above max",
			content:   "perTypeThresholds:\n  - pathPattern: a.md\n    ari: {min: 10, max: 5}\n",
			wantField: "perTypeThresholds[0].ari",
		},
		{
			name:      "min above max on default",
			content:   "perTypeThresholds:\n  - pathPattern: default\n    grade: {min: 20}\n",
			wantField: "default.grade",
		},
		{
			name:      "heading depth out of range",
			content:   "perTypeThresholds:\n  - pathPattern: a.md\n    maxHeadingDepth: 7\n",
			wantField: "perTypeThresholds[0].maxHeadingDepth",
		},
		{
			name:      "code ratio above one",
			content:   "perTypeThresholds:\n  - pathPattern: a.md\n    maxCodeRatio: 1.5\n",
			wantField: "perTypeThresholds[0].maxCodeRatio",
		},
		{
			name:      "non-positive max lines",
			content:   "perTypeThresholds:\n  - pathPattern: a.md\n    maxLines: 0\n",
			wantField: "perTypeThresholds[0].maxLines",
		},
		{
			name:      "empty pattern",
			content:   "perTypeThresholds:\n  - grade: {max: 3}\n",
			wantField: "perTypeThresholds[0].pathPattern",
		},
		{
			name:      "unclosed bracket",
			content:   "perTypeThresholds:\n  - pathPattern: \"docs/[ab.md\"\n",
			wantField: "perTypeThresholds[0].pathPattern",
		},
		{
			name:      "duplicate default",
			content:   "perTypeThresholds:\n  - pathPattern: default\n  - pathPattern: default\n",
			wantField: "perTypeThresholds[1]",
		},
		{
			name:    "not yaml",
			content: "mode: [unterminated\n",
			wantMsg: "cannot parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.content))
			require.Error(t, err)
			assert.Nil(t, cfg)

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "want *ConfigurationError, got %T", err)
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, cfgErr.Field)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestRuleFor(t *testing.T) {
	cfg, err := Parse([]byte(`perTypeThresholds:
  - pathPattern: "blog/**"
    grade: {max: 16}
  - pathPattern: "blog/drafts/*.md"
    grade: {max: 20}
  - pathPattern: "README.md"
    maxLines: 100
  - pathPattern: "/abs/only.md"
    maxLines: 10
`))
	require.NoError(t, err)

	tests := []struct {
		path        string
		wantPattern string
	}{
		{"blog/post.md", "blog/**"},
		{"blog/drafts/wip.md", "blog/**"}, // first match wins
		{"/repo/site/blog/post.md", "blog/**"},
		{"./blog/post.md", "blog/**"},
		{"README.md", "README.md"},
		{"docs/README.md", "README.md"},
		{"docs/NOT_README.md", DefaultPattern},
		{"/abs/only.md", "/abs/only.md"},
		{"/other/abs/only.md", DefaultPattern},
		{"guide/intro.md", DefaultPattern},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.wantPattern, cfg.RuleFor(tt.path).PathPattern)
		})
	}

	blog := cfg.RuleFor("blog/post.md")
	assert.Equal(t, 16.0, *blog.Grade.Max)
	assert.Equal(t, 14.0, *blog.ARI.Max, "unset fields inherit from the default entry")
}

func TestCompileGlob(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"*.md", "a.md", true},
		{"*.md", "docs/a.md", true},
		{"docs/*.md", "docs/a.md", true},
		{"docs/*.md", "docs/sub/a.md", false},
		{"docs/**/*.md", "docs/a.md", true},
		{"docs/**/*.md", "docs/x/y/a.md", true},
		{"docs/**", "docs/x/y/a.md", true},
		{"?.md", "a.md", true},
		{"?.md", "ab.md", false},
		{"a+b.md", "a+b.md", true},
		{"a+b.md", "aab.md", false},
		{"docs/[ab].md", "docs/a.md", true},
		{"docs/{guide,faq}.md", "docs/faq.md", true},
		{"/docs/*.md", "docs/a.md", false},
		{"/docs/*.md", "/docs/a.md", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			g, err := compileGlob(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.match(tt.path))
		})
	}
}

func TestWithOverrides(t *testing.T) {
	base, err := Parse([]byte("perTypeThresholds:\n  - pathPattern: \"blog/**\"\n    grade: {max: 16}\n"))
	require.NoError(t, err)

	out := base.WithOverrides(Overrides{Mode: ModeLenient, MaxGrade: Float(10), MaxLines: Int(50)})

	assert.Equal(t, ModeLenient, out.Mode)
	assert.Equal(t, 10.0, *out.Default.Grade.Max)
	assert.Equal(t, 10.0, *out.RuleFor("blog/a.md").Grade.Max)
	assert.Equal(t, 50, *out.RuleFor("blog/a.md").MaxLines)
	assert.Equal(t, 14.0, *out.Default.ARI.Max, "unset override keeps config value")

	// The original is untouched.
	assert.Equal(t, ModeStrict, base.Mode)
	assert.Equal(t, 14.0, *base.Default.Grade.Max)
	assert.Equal(t, 16.0, *base.RuleFor("blog/a.md").Grade.Max)
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg, err := Parse([]byte("mode: lenient\nperTypeThresholds:\n  - pathPattern: \"blog/**\"\n    grade: {max: 16}\n"))
	require.NoError(t, err)

	data, err := cfg.Marshal()
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "mode: lenient")
	assert.Contains(t, text, "blog/**")
	assert.Less(t, strings.Index(text, "blog/**"), strings.Index(text, "pathPattern: default"),
		"default entry is rendered last")

	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg.Mode, again.Mode)
	assert.Equal(t, *cfg.Default.MaxLines, *again.Default.MaxLines)
	assert.Equal(t, *cfg.RuleFor("blog/x.md").Grade.Max, *again.RuleFor("blog/x.md").Grade.Max)
}

func TestConfigurationError(t *testing.T) {
	inner := errors.New("boom")
	err := &ConfigurationError{Field: "mode", Message: "bad", Err: inner}

	assert.Equal(t, "invalid configuration: mode: bad: boom", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "invalid configuration: x", (&ConfigurationError{Message: "x"}).Error())
}

func TestRangeContains(t *testing.T) {
	r := Range{Min: Float(1), Max: Float(2)}
	assert.True(t, r.Contains(1))
	assert.True(t, r.Contains(2))
	assert.False(t, r.Contains(0.9))
	assert.False(t, r.Contains(2.1))
	assert.True(t, Range{}.Contains(-100))
	assert.True(t, Range{}.IsZero())
}
