package readability

import (
	"fmt"
	"strconv"
	"strings"
)

// HeuristicVersion identifies the syllable counting rules. Bump it whenever
// CountSyllables changes behavior so stored baselines can be invalidated.
const HeuristicVersion = 1

// DefaultAbbreviations are tokens whose trailing period does not end a sentence.
var DefaultAbbreviations = []string{
	"e.g.", "i.e.", "cf.", "vs.", "viz.", "approx.", "al.",
	"mr.", "mrs.", "ms.", "dr.", "prof.", "sr.", "jr.", "st.",
	"u.s.", "u.k.", "e.u.", "a.m.", "p.m.",
	"inc.", "ltd.", "co.", "corp.",
	"no.", "fig.", "eq.", "sec.", "vol.", "ch.", "ref.",
}

// DefaultSyllableOverrides are words the vowel-group heuristic gets wrong.
var DefaultSyllableOverrides = map[string]int{
	"api":        3,
	"cli":        3,
	"sdk":        3,
	"yaml":       2,
	"json":       2,
	"every":      2,
	"business":   2,
	"different":  3,
	"people":     2,
	"create":     2,
	"created":    3,
	"idea":       3,
	"area":       3,
	"being":      2,
	"doing":      2,
	"going":      2,
	"queue":      1,
	"queues":     1,
	"config":     2,
	"kubernetes": 4,
}

// DefaultComplexWordExceptions are words never counted as complex for the
// Gunning Fog index despite having three or more syllables.
var DefaultComplexWordExceptions = []string{
	"documentation", "application", "applications", "configuration",
	"repository", "repositories", "kubernetes", "everything", "anything",
}

// Lexicon is the immutable lookup data used by an Engine. Build it once
// per run and share it by pointer; it is never modified after NewLexicon.
type Lexicon struct {
	abbreviations     map[string]struct{}
	syllableOverrides map[string]int
	complexExceptions map[string]struct{}
}

// NewLexicon builds a lexicon from abbreviations, syllable overrides and
// complex word exceptions. Keys are matched case-insensitively.
func NewLexicon(abbreviations []string, overrides map[string]int, complexExceptions []string) *Lexicon {
	lex := &Lexicon{
		abbreviations:     make(map[string]struct{}, len(abbreviations)),
		syllableOverrides: make(map[string]int, len(overrides)),
		complexExceptions: make(map[string]struct{}, len(complexExceptions)),
	}
	for _, a := range abbreviations {
		lex.abbreviations[strings.ToLower(a)] = struct{}{}
	}
	for w, n := range overrides {
		lex.syllableOverrides[strings.ToLower(w)] = n
	}
	for _, w := range complexExceptions {
		lex.complexExceptions[strings.ToLower(w)] = struct{}{}
	}
	return lex
}

// DefaultLexicon returns a lexicon with the built-in tables.
func DefaultLexicon() *Lexicon {
	return NewLexicon(DefaultAbbreviations, DefaultSyllableOverrides, DefaultComplexWordExceptions)
}

// WithSyllableOverrides returns a new lexicon with extra overrides layered
// on top of lex. lex itself is left unchanged.
func (lex *Lexicon) WithSyllableOverrides(extra map[string]int) *Lexicon {
	merged := make(map[string]int, len(lex.syllableOverrides)+len(extra))
	for w, n := range lex.syllableOverrides {
		merged[w] = n
	}
	for w, n := range extra {
		merged[strings.ToLower(w)] = n
	}
	return &Lexicon{
		abbreviations:     lex.abbreviations,
		syllableOverrides: merged,
		complexExceptions: lex.complexExceptions,
	}
}

// IsAbbreviation reports whether token (including its trailing period)
// is a known abbreviation.
func (lex *Lexicon) IsAbbreviation(token string) bool {
	_, ok := lex.abbreviations[strings.ToLower(token)]
	return ok
}

// ParseSyllableException parses a "word:count" entry.
func ParseSyllableException(entry string) (string, int, error) {
	word, count, ok := strings.Cut(entry, ":")
	word = strings.TrimSpace(word)
	if !ok || word == "" || strings.ContainsAny(word, " \t") {
		return "", 0, fmt.Errorf("syllable exception %q must have the form word:count", entry)
	}
	n, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil || n < 1 {
		return "", 0, fmt.Errorf("syllable exception %q must have a positive count", entry)
	}
	return strings.ToLower(word), n, nil
}
