// Package readability computes prose statistics and readability formulas
// (Flesch-Kincaid Grade, Flesch Reading Ease, ARI, Coleman-Liau, Gunning
// Fog and SMOG) from a document's prose stream.
//
// The Engine is a pure function of its input and its Lexicon. A single
// Engine may be shared by any number of goroutines.
package readability

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/harrison/docqa/internal/models"
)

// LowConfidenceWords is the prose length below which scores are flagged
// as statistically weak.
const LowConfidenceWords = 100

// WordsPerMinute is the reading speed used for reading time estimates.
const WordsPerMinute = 200

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)

// Counts holds the raw statistics behind the formulas.
type Counts struct {
	Words         int
	Sentences     int
	Syllables     int
	Characters    int
	ComplexWords  int
	Polysyllables int
}

// Engine scores prose using an immutable Lexicon.
type Engine struct {
	lexicon *Lexicon
}

// NewEngine creates an Engine. A nil lexicon selects DefaultLexicon.
func NewEngine(lexicon *Lexicon) *Engine {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &Engine{lexicon: lexicon}
}

// Analyze counts prose and computes every readability score.
func (e *Engine) Analyze(prose string) models.ReadabilityMetrics {
	c := e.Count(prose)

	m := models.ReadabilityMetrics{
		Words:              c.Words,
		Sentences:          c.Sentences,
		Syllables:          c.Syllables,
		Characters:         c.Characters,
		ComplexWords:       c.ComplexWords,
		Polysyllables:      c.Polysyllables,
		LowConfidence:      c.Words < LowConfidenceWords,
		ReadingTimeMinutes: ReadingTime(c.Words),
		HeuristicVersion:   HeuristicVersion,
	}

	if c.Words == 0 || c.Sentences == 0 {
		undefined := models.UndefinedScore()
		m.FleschKincaidGrade = undefined
		m.FleschReadingEase = undefined
		m.ARI = undefined
		m.ColemanLiau = undefined
		m.GunningFog = undefined
		m.SMOG = undefined
		return m
	}

	m.FleschKincaidGrade = models.DefinedScore(round1(FleschKincaidGrade(c)))
	m.FleschReadingEase = models.DefinedScore(round1(FleschReadingEase(c)))
	m.ARI = models.DefinedScore(round1(AutomatedReadabilityIndex(c)))
	m.ColemanLiau = models.DefinedScore(round1(ColemanLiau(c)))
	m.GunningFog = models.DefinedScore(round1(GunningFog(c)))
	m.SMOG = models.DefinedScore(round1(SMOG(c)))
	return m
}

// Count tokenizes prose and gathers the statistics used by the formulas.
// Paragraph breaks (blank lines) always close an open sentence.
func (e *Engine) Count(prose string) Counts {
	var c Counts

	for _, para := range paragraphBreak.Split(prose, -1) {
		open := false
		sentenceStart := true

		for _, tok := range strings.Fields(para) {
			if isWordToken(tok) {
				core := trimToken(tok)
				syllables := e.lexicon.CountSyllables(core)

				c.Words++
				c.Syllables += syllables
				c.Characters += countLetters(tok)
				if syllables >= 3 {
					c.Polysyllables++
					if e.isComplex(core, syllables, sentenceStart) {
						c.ComplexWords++
					}
				}
				open = true
				sentenceStart = false
			}

			if endsSentence(tok) && !e.lexicon.IsAbbreviation(trimOpeners(trimClosers(tok))) {
				if open {
					c.Sentences++
					open = false
				}
				sentenceStart = true
			}
		}

		if open {
			c.Sentences++
		}
	}

	return c
}

// isComplex applies the Gunning Fog exclusions to a polysyllabic word:
// proper nouns, hyphenated compounds, inflected forms that only reach three
// syllables through -es/-ed/-ing, and lexicon exceptions.
func (e *Engine) isComplex(word string, syllables int, sentenceStart bool) bool {
	if strings.ContainsAny(word, "-–") {
		return false
	}
	if first, _ := utf8.DecodeRuneInString(word); !sentenceStart && unicode.IsUpper(first) {
		return false
	}
	lower := strings.ToLower(word)
	if _, ok := e.lexicon.complexExceptions[lower]; ok {
		return false
	}
	for _, suffix := range []string{"ing", "es", "ed"} {
		if stem, ok := strings.CutSuffix(lower, suffix); ok && len(stem) > 2 {
			if e.lexicon.CountSyllables(stem) < 3 {
				return false
			}
		}
	}
	return syllables >= 3
}

// FleschKincaidGrade = 0.39·(words/sentences) + 11.8·(syllables/words) − 15.59
func FleschKincaidGrade(c Counts) float64 {
	return 0.39*wordsPerSentence(c) + 11.8*syllablesPerWord(c) - 15.59
}

// FleschReadingEase = 206.835 − 1.015·(words/sentences) − 84.6·(syllables/words)
func FleschReadingEase(c Counts) float64 {
	return 206.835 - 1.015*wordsPerSentence(c) - 84.6*syllablesPerWord(c)
}

// AutomatedReadabilityIndex = 4.71·(characters/words) + 0.5·(words/sentences) − 21.43
func AutomatedReadabilityIndex(c Counts) float64 {
	return 4.71*float64(c.Characters)/float64(c.Words) + 0.5*wordsPerSentence(c) - 21.43
}

// ColemanLiau = 0.0588·L − 0.296·S − 15.8 where L and S are letters and
// sentences per 100 words.
func ColemanLiau(c Counts) float64 {
	l := float64(c.Characters) / float64(c.Words) * 100
	s := float64(c.Sentences) / float64(c.Words) * 100
	return 0.0588*l - 0.296*s - 15.8
}

// GunningFog = 0.4·[(words/sentences) + 100·(complex words/words)]
func GunningFog(c Counts) float64 {
	return 0.4 * (wordsPerSentence(c) + 100*float64(c.ComplexWords)/float64(c.Words))
}

// SMOG = 1.0430·√(polysyllables·30/sentences) + 3.1291. The 30-sentence
// scaling is applied whatever the actual sentence count.
func SMOG(c Counts) float64 {
	return 1.0430*math.Sqrt(float64(c.Polysyllables)*30/float64(c.Sentences)) + 3.1291
}

func wordsPerSentence(c Counts) float64 {
	return float64(c.Words) / float64(c.Sentences)
}

func syllablesPerWord(c Counts) float64 {
	return float64(c.Syllables) / float64(c.Words)
}

// round1 rounds to one decimal place, halves away from zero.
func round1(v float64) float64 {
	r := math.Round(v*10) / 10
	if r == 0 {
		return 0 // no negative zero
	}
	return r
}

// ReadingTime estimates minutes at WordsPerMinute, rounding any prose up to
// at least one minute.
func ReadingTime(words int) int {
	minutes := words / WordsPerMinute
	if minutes == 0 && words > 0 {
		return 1
	}
	return minutes
}

// isWordToken reports whether a whitespace-delimited token is a word: it
// must contain at least one letter or digit.
func isWordToken(tok string) bool {
	for _, r := range tok {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func countLetters(tok string) int {
	n := 0
	for _, r := range tok {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

// trimToken strips surrounding punctuation, keeping inner hyphens and
// apostrophes.
func trimToken(tok string) string {
	return strings.TrimFunc(tok, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func trimClosers(tok string) string {
	return strings.TrimRight(tok, "\"')]}»”’*_`")
}

func trimOpeners(tok string) string {
	return strings.TrimLeft(tok, "\"'([{«“‘*_`")
}

// endsSentence reports whether tok ends in sentence punctuation, ignoring
// closing quotes and brackets.
func endsSentence(tok string) bool {
	t := trimClosers(tok)
	if t == "" {
		return false
	}
	switch t[len(t)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}
