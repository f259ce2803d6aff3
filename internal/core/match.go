package core

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultConfidenceFloor is the score a fuzzy name match must exceed.
const DefaultConfidenceFloor = 20

// Scorer rates the similarity of two names from 0 (unrelated) to 100 (equal).
type Scorer interface {
	Score(a, b string) int
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(a, b string) int

// Score calls f(a, b).
func (f ScorerFunc) Score(a, b string) int { return f(a, b) }

// DefaultScorer compares processed names by edit distance and keeps the
// better of the plain ratio and the token-sorted ratio, so "Smith John"
// scores the same as "John Smith".
type DefaultScorer struct{}

// Score implements Scorer.
func (DefaultScorer) Score(a, b string) int {
	pa, pb := ProcessName(a), ProcessName(b)
	if pa == "" || pb == "" {
		return 0
	}
	plain := ratio(pa, pb)
	sorted := ratio(sortTokens(pa), sortTokens(pb))
	if sorted > plain {
		return sorted
	}
	return plain
}

// ProcessName folds case, strips diacritics, replaces everything that is not
// a letter or digit with a space and collapses runs of spaces.
func ProcessName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}
	s = cases.Fold().String(s)

	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func ratio(a, b string) int {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * float64(maxLen-dist) / float64(maxLen)))
}

// BestMatch scores name against every candidate and returns the first
// candidate with the highest score. ok is false when candidates is empty.
func BestMatch(name string, candidates []string, scorer Scorer) (match string, score int, ok bool) {
	if scorer == nil {
		scorer = DefaultScorer{}
	}
	score = -1
	for _, c := range candidates {
		if s := scorer.Score(name, c); s > score {
			match, score, ok = c, s, true
		}
	}
	if !ok {
		return "", 0, false
	}
	return match, score, true
}
