// Package similarity scores a recited verse against every known translation
// so a player is never penalized for memorizing a different published wording.
package similarity

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// TranslationScore is the full breakdown against a single translation
type TranslationScore struct {
	Translation      string `json:"translation"`
	Score            int    `json:"score"`
	WordAccuracy     int    `json:"wordAccuracy"`
	SequenceAccuracy int    `json:"sequenceAccuracy"`
}

// Result is the outcome of scoring one submission against all translations
type Result struct {
	BestScore       int                `json:"bestScore"`
	BestTranslation string             `json:"bestTranslation"`
	Scores          []TranslationScore `json:"scores"`
	Feedback        string             `json:"feedback"`
}

// Metric weights: character sequence 40%, word presence 30%, word order 30%.
const (
	sequenceWeight = 0.4
	overlapWeight  = 0.3
	orderWeight    = 0.3
)

var (
	punctRe = regexp.MustCompile(`[.,!?;:'"()\-—]`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// Normalize lowercases, strips punctuation and collapses whitespace.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = punctRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Words returns the normalized word tokens of a text.
func Words(text string) []string {
	norm := Normalize(text)
	if norm == "" {
		return nil
	}
	return strings.Split(norm, " ")
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for j := 0; j <= len(a); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(b); i++ {
		curr[0] = i
		for j := 1; j <= len(a); j++ {
			if b[i-1] == a[j-1] {
				curr[j] = prev[j-1]
			} else {
				curr[j] = min(prev[j-1], min(curr[j-1], prev[j])) + 1
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(a)]
}

// sequenceSimilarity is 1 - editDistance/maxLen over normalized characters,
// clamped at zero. Identical normalized strings score 1 regardless of length.
func sequenceSimilarity(input, target string) float64 {
	ni := Normalize(input)
	nt := Normalize(target)

	if ni == nt {
		return 1
	}
	if len(ni) == 0 || len(nt) == 0 {
		return 0
	}

	ri := []rune(ni)
	rt := []rune(nt)
	dist := levenshtein(ri, rt)
	maxLen := len(ri)
	if len(rt) > maxLen {
		maxLen = len(rt)
	}
	return math.Max(0, 1-float64(dist)/float64(maxLen))
}

// wordOverlap is the Jaccard similarity of the two word sets, ignoring
// order and repetition.
func wordOverlap(input, target string) float64 {
	inSet := toSet(Words(input))
	tgtSet := toSet(Words(target))

	if len(inSet) == 0 || len(tgtSet) == 0 {
		return 0
	}

	intersection := 0
	for w := range inSet {
		if tgtSet[w] {
			intersection++
		}
	}
	union := len(inSet) + len(tgtSet) - intersection
	return float64(intersection) / float64(union)
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// wordOrderSimilarity is 2*LCS/(m+n) over word tokens. It rewards preserved
// ordering without requiring exact alignment.
func wordOrderSimilarity(input, target string) float64 {
	in := Words(input)
	tgt := Words(target)

	if len(in) == 0 || len(tgt) == 0 {
		return 0
	}

	m, n := len(in), len(tgt)
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if in[i-1] == tgt[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}
	return 2 * float64(prev[n]) / float64(m+n)
}

func scoreAgainst(input, target, translation string) TranslationScore {
	seqSim := sequenceSimilarity(input, target)
	wordSim := wordOverlap(input, target)
	orderSim := wordOrderSimilarity(input, target)

	combined := seqSim*sequenceWeight + wordSim*overlapWeight + orderSim*orderWeight

	return TranslationScore{
		Translation:      translation,
		Score:            int(math.Round(combined * 100)),
		WordAccuracy:     int(math.Round(wordSim * 100)),
		SequenceAccuracy: int(math.Round(seqSim * 100)),
	}
}

// Score evaluates the input against every supplied translation and returns
// the best match plus the full breakdown, sorted descending by score.
func Score(input string, translations map[string]string) Result {
	if len(translations) == 0 {
		return Result{Feedback: feedback(0)}
	}

	names := make([]string, 0, len(translations))
	for name := range translations {
		names = append(names, name)
	}
	sort.Strings(names)

	scores := make([]TranslationScore, 0, len(names))
	for _, name := range names {
		scores = append(scores, scoreAgainst(input, translations[name], name))
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	return Result{
		BestScore:       scores[0].Score,
		BestTranslation: scores[0].Translation,
		Scores:          scores,
		Feedback:        feedback(scores[0].Score),
	}
}

func feedback(score int) string {
	switch {
	case score >= 95:
		return "Perfect! Word-perfect recall!"
	case score >= 85:
		return "Excellent! Nearly perfect!"
	case score >= 70:
		return "Good job! You got most of it right."
	case score >= 50:
		return "Nice effort! Keep practicing."
	case score >= 30:
		return "Getting there! Review the verse."
	default:
		return "Keep memorizing! You'll get it!"
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
