package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreIdenticalText(t *testing.T) {
	texts := []string{
		"In the beginning God created the heavens and the earth.",
		"Jesus wept.",
		"For God so loved the world, that he gave his only Son",
	}
	for _, s := range texts {
		res := Score(s, map[string]string{"ESV": s})
		assert.Equal(t, 100, res.BestScore, "text: %s", s)
		assert.Equal(t, "ESV", res.BestTranslation)
		require.Len(t, res.Scores, 1)
		assert.Equal(t, 100, res.Scores[0].SequenceAccuracy)
	}
}

func TestScoreIgnoresPunctuationAndCase(t *testing.T) {
	res := Score(
		"jesus wept",
		map[string]string{"KJV": "Jesus wept."},
	)
	assert.Equal(t, 100, res.BestScore)
	assert.Equal(t, "Perfect! Word-perfect recall!", res.Feedback)
}

func TestScoreEmptyInput(t *testing.T) {
	res := Score("", map[string]string{"ESV": "The Lord is my shepherd"})
	require.Len(t, res.Scores, 1)
	assert.Equal(t, 0, res.BestScore)
	assert.Equal(t, 0, res.Scores[0].SequenceAccuracy)
	assert.Equal(t, 0, res.Scores[0].WordAccuracy)
	assert.Equal(t, "Keep memorizing! You'll get it!", res.Feedback)
}

func TestScorePicksBestTranslation(t *testing.T) {
	translations := map[string]string{
		"A": "walk by faith not by sight",
		"B": "completely different wording here altogether",
	}
	res := Score("walk by faith not by sight", translations)

	assert.Equal(t, "A", res.BestTranslation)
	assert.Equal(t, 100, res.BestScore)

	alone := Score("walk by faith not by sight", map[string]string{"B": translations["B"]})
	assert.GreaterOrEqual(t, res.BestScore, alone.BestScore)

	// breakdown covers every translation, sorted descending
	require.Len(t, res.Scores, 2)
	assert.GreaterOrEqual(t, res.Scores[0].Score, res.Scores[1].Score)
}

func TestWordOrderMatters(t *testing.T) {
	target := map[string]string{"T": "a b"}
	inOrder := Score("a b", target)
	reversed := Score("b a", target)

	// same word set, worse order -> strictly lower score
	assert.Less(t, reversed.BestScore, inOrder.BestScore)
}

func TestScoreToleratesMinorSlips(t *testing.T) {
	target := "For all have sinned and fall short of the glory of God"
	res := Score("For all have sinned and fallen short of the glory of God",
		map[string]string{"NIV": target})
	assert.GreaterOrEqual(t, res.BestScore, 85)
}

func TestFeedbackBands(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, "Perfect! Word-perfect recall!"},
		{95, "Perfect! Word-perfect recall!"},
		{90, "Excellent! Nearly perfect!"},
		{75, "Good job! You got most of it right."},
		{60, "Nice effort! Keep practicing."},
		{40, "Getting there! Review the verse."},
		{10, "Keep memorizing! You'll get it!"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, feedback(tt.score), "score %d", tt.score)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "for god so loved the world",
		Normalize("  For God so loved   the world! "))
	assert.Equal(t, "", Normalize(".,!?"))
}

func TestScoreBlanks(t *testing.T) {
	correct := []string{"beginning", "created", "heavens", "earth"}

	tests := []struct {
		name     string
		answers  []string
		score    int
		feedback string
	}{
		{"all correct", []string{"beginning", "created", "heavens", "earth"}, 100, "Perfect!"},
		{"case and punctuation ignored", []string{"Beginning", "created.", "HEAVENS", "earth,"}, 100, "Perfect!"},
		{"three of four", []string{"beginning", "created", "heavens", "moon"}, 75, "Great job!"},
		{"half", []string{"beginning", "created", "x", "y"}, 50, "Good effort!"},
		{"none", []string{"a", "b", "c", "d"}, 0, "Keep practicing!"},
		{"short submission", []string{"beginning"}, 25, "Keep practicing!"},
		{"empty submission", nil, 0, "Keep practicing!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ScoreBlanks(tt.answers, correct)
			assert.Equal(t, tt.score, res.Score)
			assert.Equal(t, tt.feedback, res.Feedback)
			assert.Equal(t, 4, res.Total)
		})
	}
}
