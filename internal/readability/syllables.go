package readability

import (
	"strings"
	"unicode"
)

// CountSyllables estimates the syllables in word with a vowel-group
// heuristic (HeuristicVersion 1):
//
//   - lexicon overrides win;
//   - words of at most three letters have one syllable;
//   - otherwise count maximal runs of a, e, i, o, u, y;
//   - a trailing "e" after a consonant is silent, except consonant + "le";
//   - "-es" and "-ed" after a consonant do not add a syllable, except after
//     the stems that voice them (t/d for "-ed"; s, x, z, ch, sh, c, g for "-es");
//   - every word has at least one syllable;
//   - hyphenated compounds sum their parts.
//
// The result is approximate but deterministic.
func (lex *Lexicon) CountSyllables(word string) int {
	parts := strings.FieldsFunc(word, func(r rune) bool { return r == '-' || r == '–' })
	if len(parts) > 1 {
		total := 0
		for _, part := range parts {
			if hasLetter(part) {
				total += lex.countSimple(part)
			}
		}
		if total < 1 {
			total = 1
		}
		return total
	}
	return lex.countSimple(word)
}

func (lex *Lexicon) countSimple(word string) int {
	w := normalizeWord(word)
	if w == "" {
		return 1
	}
	if n, ok := lex.syllableOverrides[w]; ok {
		return n
	}
	if len(w) <= 3 {
		return 1
	}

	count := vowelGroups(w)
	n := len(w)

	switch {
	case strings.HasSuffix(w, "le") && !isVowel(w[n-3]):
		// "table", "simple": consonant + "le" is its own syllable
	case strings.HasSuffix(w, "e") && !isVowel(w[n-2]):
		count--
	case strings.HasSuffix(w, "ed") && !isVowel(w[n-3]):
		if !strings.HasSuffix(w, "ted") && !strings.HasSuffix(w, "ded") {
			count--
		}
	case strings.HasSuffix(w, "es") && !isVowel(w[n-3]):
		if !voicedPlural(w) {
			count--
		}
	}

	if count < 1 {
		count = 1
	}
	return count
}

// voicedPlural reports whether the "-es" ending of w is pronounced.
func voicedPlural(w string) bool {
	for _, stem := range []string{"ses", "xes", "zes", "ches", "shes", "ces", "ges"} {
		if strings.HasSuffix(w, stem) {
			return true
		}
	}
	return false
}

// normalizeWord lower-cases word and keeps ASCII letters only. Apostrophes
// are dropped so that "don't" scores like "dont".
func normalizeWord(word string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(word) {
		if r >= 'a' && r <= 'z' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func vowelGroups(w string) int {
	groups := 0
	inGroup := false
	for i := 0; i < len(w); i++ {
		if isVowel(w[i]) {
			if !inGroup {
				groups++
			}
			inGroup = true
		} else {
			inGroup = false
		}
	}
	return groups
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
