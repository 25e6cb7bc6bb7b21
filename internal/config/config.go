package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/harrison/docqa/internal/readability"
)

// Evaluation modes
const (
	ModeStrict  = "strict"
	ModeLenient = "lenient"
)

// DefaultPattern names the fallback entry in perTypeThresholds.
const DefaultPattern = "default"

// DefaultFileName is the config file looked up in a repository root.
const DefaultFileName = ".docqa.yaml"

// Range is an inclusive target range. A nil bound is unbounded.
type Range struct {
	Min *float64 `yaml:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty"`
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// IsZero reports whether both bounds are open.
func (r Range) IsZero() bool {
	return r.Min == nil && r.Max == nil
}

// Rule holds the target ranges for documents matching PathPattern.
// Nil fields inherit from the default entry.
type Rule struct {
	PathPattern     string   `yaml:"pathPattern"`
	Grade           Range    `yaml:"grade,omitempty"`
	ARI             Range    `yaml:"ari,omitempty"`
	FleschEase      Range    `yaml:"fleschEase,omitempty"`
	GunningFog      Range    `yaml:"gunningFog,omitempty"`
	MaxHeadingDepth *int     `yaml:"maxHeadingDepth,omitempty"`
	MaxCodeRatio    *float64 `yaml:"maxCodeRatio,omitempty"`
	MaxLines        *int     `yaml:"maxLines,omitempty"`

	matcher *glob
}

// Matches reports whether path is selected by the rule's pattern.
func (r *Rule) Matches(path string) bool {
	m := r.matcher
	if m == nil {
		var err error
		if m, err = compileGlob(r.PathPattern); err != nil {
			return false
		}
	}
	return m.match(path)
}

// ThresholdConfig is the immutable threshold configuration of a run.
type ThresholdConfig struct {
	Mode                   string
	SectionImbalanceFactor float64
	SyllableExceptions     []string
	Rules                  []Rule
	Default                Rule
}

// fileConfig mirrors the YAML layout.
type fileConfig struct {
	Mode                   string   `yaml:"mode,omitempty"`
	SectionImbalanceFactor *float64 `yaml:"sectionImbalanceFactor,omitempty"`
	SyllableExceptions     []string `yaml:"syllableExceptions,omitempty"`
	PerTypeThresholds      []Rule   `yaml:"perTypeThresholds,omitempty"`
}

// DefaultRule returns the built-in fallback targets.
func DefaultRule() Rule {
	return Rule{
		PathPattern:     DefaultPattern,
		Grade:           Range{Max: Float(14)},
		ARI:             Range{Max: Float(14)},
		FleschEase:      Range{Min: Float(30)},
		GunningFog:      Range{Max: Float(18)},
		MaxHeadingDepth: Int(4),
		MaxCodeRatio:    Float(0.75),
		MaxLines:        Int(375),
	}
}

// DefaultThresholds returns a ThresholdConfig with sensible default values
func DefaultThresholds() *ThresholdConfig {
	return &ThresholdConfig{
		Mode:                   ModeStrict,
		SectionImbalanceFactor: 2.0,
		Default:                DefaultRule(),
	}
}

// Load loads configuration from the specified file path.
// If the file doesn't exist, the default configuration is returned without error.
func Load(path string) (*ThresholdConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultThresholds(), nil
	}
	if err != nil {
		return nil, &ConfigurationError{Field: path, Message: "cannot read config file", Err: err}
	}
	return Parse(data)
}

// LoadFromDir loads .docqa.yaml from dir, falling back to defaults.
func LoadFromDir(dir string) (*ThresholdConfig, error) {
	return Load(filepath.Join(dir, DefaultFileName))
}

// Parse decodes and validates a YAML configuration. Unknown keys are
// rejected.
func Parse(data []byte) (*ThresholdConfig, error) {
	var raw fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, &ConfigurationError{Message: "cannot parse YAML", Err: err}
	}

	cfg := DefaultThresholds()
	if raw.Mode != "" {
		cfg.Mode = raw.Mode
	}
	if raw.SectionImbalanceFactor != nil {
		cfg.SectionImbalanceFactor = *raw.SectionImbalanceFactor
	}
	cfg.SyllableExceptions = raw.SyllableExceptions

	seenDefault := false
	for i, rule := range raw.PerTypeThresholds {
		if rule.PathPattern != DefaultPattern {
			cfg.Rules = append(cfg.Rules, rule)
			continue
		}
		if seenDefault {
			return nil, fieldError(fmt.Sprintf("perTypeThresholds[%d]", i), "duplicate %q entry", DefaultPattern)
		}
		seenDefault = true
		cfg.Default = merge(DefaultRule(), rule)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every option and compiles the path patterns.
// It must be called before the config is shared between goroutines.
func (c *ThresholdConfig) Validate() error {
	switch c.Mode {
	case ModeStrict, ModeLenient:
	default:
		return fieldError("mode", "invalid mode %q, must be one of: %s, %s", c.Mode, ModeStrict, ModeLenient)
	}

	if c.SectionImbalanceFactor <= 0 {
		return fieldError("sectionImbalanceFactor", "must be > 0, got %v", c.SectionImbalanceFactor)
	}

	for i, entry := range c.SyllableExceptions {
		if _, _, err := readability.ParseSyllableException(entry); err != nil {
			return &ConfigurationError{Field: fmt.Sprintf("syllableExceptions[%d]", i), Err: err}
		}
	}

	if err := validateRule(DefaultPattern, &c.Default); err != nil {
		return err
	}
	for i := range c.Rules {
		field := fmt.Sprintf("perTypeThresholds[%d]", i)
		rule := &c.Rules[i]
		if rule.PathPattern == "" {
			return fieldError(field+".pathPattern", "cannot be empty")
		}
		m, err := compileGlob(rule.PathPattern)
		if err != nil {
			return &ConfigurationError{Field: field + ".pathPattern", Err: err}
		}
		rule.matcher = m
		if err := validateRule(field, rule); err != nil {
			return err
		}
	}
	return nil
}

func validateRule(field string, r *Rule) error {
	ranges := []struct {
		name string
		r    Range
	}{
		{"grade", r.Grade},
		{"ari", r.ARI},
		{"fleschEase", r.FleschEase},
		{"gunningFog", r.GunningFog},
	}
	for _, rg := range ranges {
		if rg.r.Min != nil && rg.r.Max != nil && *rg.r.Min > *rg.r.Max {
			return fieldError(field+"."+rg.name, "min %v is greater than max %v", *rg.r.Min, *rg.r.Max)
		}
	}
	if r.MaxHeadingDepth != nil && (*r.MaxHeadingDepth < 1 || *r.MaxHeadingDepth > 6) {
		return fieldError(field+".maxHeadingDepth", "must be between 1 and 6, got %d", *r.MaxHeadingDepth)
	}
	if r.MaxCodeRatio != nil && (*r.MaxCodeRatio < 0 || *r.MaxCodeRatio > 1) {
		return fieldError(field+".maxCodeRatio", "must be between 0 and 1, got %v", *r.MaxCodeRatio)
	}
	if r.MaxLines != nil && *r.MaxLines <= 0 {
		return fieldError(field+".maxLines", "must be > 0, got %d", *r.MaxLines)
	}
	return nil
}

// RuleFor returns the targets for path: the first rule whose pattern
// matches, merged over the default entry, or the default entry itself.
func (c *ThresholdConfig) RuleFor(path string) Rule {
	for i := range c.Rules {
		if c.Rules[i].Matches(path) {
			return merge(c.Default, c.Rules[i])
		}
	}
	return c.Default
}

// Lexicon returns the default lexicon extended with the configured
// syllable exceptions. Invalid entries are skipped; Validate reports them.
func (c *ThresholdConfig) Lexicon() *readability.Lexicon {
	if len(c.SyllableExceptions) == 0 {
		return readability.DefaultLexicon()
	}
	overrides := make(map[string]int, len(c.SyllableExceptions))
	for _, entry := range c.SyllableExceptions {
		word, n, err := readability.ParseSyllableException(entry)
		if err != nil {
			continue
		}
		overrides[word] = n
	}
	return readability.DefaultLexicon().WithSyllableOverrides(overrides)
}

// Overrides carries command-line flags. Nil or empty values keep the
// configured setting.
type Overrides struct {
	Mode     string
	MaxGrade *float64
	MaxARI   *float64
	MaxLines *int
}

// WithOverrides returns a copy of c with CLI flags applied to the default
// entry and every rule. CLI flags take precedence over config file settings.
func (c *ThresholdConfig) WithOverrides(o Overrides) *ThresholdConfig {
	out := *c
	out.SyllableExceptions = append([]string(nil), c.SyllableExceptions...)
	out.Rules = append([]Rule(nil), c.Rules...)

	if o.Mode != "" {
		out.Mode = o.Mode
	}
	apply := func(r *Rule) {
		if o.MaxGrade != nil {
			r.Grade.Max = Float(*o.MaxGrade)
		}
		if o.MaxARI != nil {
			r.ARI.Max = Float(*o.MaxARI)
		}
		if o.MaxLines != nil {
			r.MaxLines = Int(*o.MaxLines)
		}
	}
	apply(&out.Default)
	for i := range out.Rules {
		apply(&out.Rules[i])
	}
	return &out
}

// Marshal renders the configuration as YAML, with the default entry last.
func (c *ThresholdConfig) Marshal() ([]byte, error) {
	factor := c.SectionImbalanceFactor
	raw := fileConfig{
		Mode:                   c.Mode,
		SectionImbalanceFactor: &factor,
		SyllableExceptions:     c.SyllableExceptions,
	}
	raw.PerTypeThresholds = append(raw.PerTypeThresholds, c.Rules...)
	def := c.Default
	def.PathPattern = DefaultPattern
	raw.PerTypeThresholds = append(raw.PerTypeThresholds, def)

	data, err := yaml.Marshal(&raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// merge overlays the non-nil fields of over onto base.
func merge(base, over Rule) Rule {
	out := base
	out.PathPattern = over.PathPattern
	out.matcher = over.matcher
	out.Grade = mergeRange(base.Grade, over.Grade)
	out.ARI = mergeRange(base.ARI, over.ARI)
	out.FleschEase = mergeRange(base.FleschEase, over.FleschEase)
	out.GunningFog = mergeRange(base.GunningFog, over.GunningFog)
	if over.MaxHeadingDepth != nil {
		out.MaxHeadingDepth = over.MaxHeadingDepth
	}
	if over.MaxCodeRatio != nil {
		out.MaxCodeRatio = over.MaxCodeRatio
	}
	if over.MaxLines != nil {
		out.MaxLines = over.MaxLines
	}
	return out
}

func mergeRange(base, over Range) Range {
	out := base
	if over.Min != nil {
		out.Min = over.Min
	}
	if over.Max != nil {
		out.Max = over.Max
	}
	return out
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
