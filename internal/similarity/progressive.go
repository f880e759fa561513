package similarity

import (
	"math"
	"regexp"
	"strings"
)

// Blanks are scored word-for-word, so only trailing punctuation needs to go.
var blankPunctRe = regexp.MustCompile(`[.,!?;:'"]`)

// NormalizeWord prepares a single blank answer for exact comparison.
func NormalizeWord(w string) string {
	return blankPunctRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(w)), "")
}

// BlankResult is the outcome of scoring a progressive round submission
type BlankResult struct {
	Score    int    `json:"score"`
	Correct  int    `json:"correct"`
	Total    int    `json:"total"`
	Feedback string `json:"feedback"`
}

// ScoreBlanks compares the supplied answers against the hidden words,
// position by position. Missing answers count as wrong.
func ScoreBlanks(answers, correctWords []string) BlankResult {
	if len(correctWords) == 0 {
		return BlankResult{Feedback: blankFeedback(0)}
	}

	correct := 0
	for i, want := range correctWords {
		var given string
		if i < len(answers) {
			given = answers[i]
		}
		if NormalizeWord(given) == NormalizeWord(want) {
			correct++
		}
	}

	score := int(math.Round(float64(correct) / float64(len(correctWords)) * 100))
	return BlankResult{
		Score:    score,
		Correct:  correct,
		Total:    len(correctWords),
		Feedback: blankFeedback(score),
	}
}

func blankFeedback(score int) string {
	switch {
	case score == 100:
		return "Perfect!"
	case score >= 70:
		return "Great job!"
	case score >= 50:
		return "Good effort!"
	default:
		return "Keep practicing!"
	}
}
