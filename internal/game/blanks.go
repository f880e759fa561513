package game

import (
	"math/rand"
	"sort"
	"strings"

	"versebattle/internal/model"
)

// DefaultBlankDensities maps round number to the fraction of words hidden
// in a progressive round.
var DefaultBlankDensities = map[int]float64{
	4: 0.30,
	5: 0.50,
	6: 0.70,
}

const fallbackBlankDensity = 0.30

// GenerateBlanks derives the hidden-word set for a progressive round from
// the verse text and round number. Indices are drawn uniformly without
// replacement and returned sorted ascending for stable display order.
// Deterministic given a fixed rng; callers recompute fresh every round.
func GenerateBlanks(text string, round int, densities map[int]float64, rng *rand.Rand) *model.ProgressiveRoundData {
	words := strings.Fields(text)
	if len(words) == 0 {
		return &model.ProgressiveRoundData{BlankPercentage: int(fallbackBlankDensity * 100)}
	}

	if densities == nil {
		densities = DefaultBlankDensities
	}
	density, ok := densities[round]
	if !ok {
		density = fallbackBlankDensity
	}

	count := int(float64(len(words)) * density)
	if count < 1 {
		count = 1
	}
	if count > len(words) {
		count = len(words)
	}

	indices := rng.Perm(len(words))[:count]
	sort.Ints(indices)

	correct := make([]string, len(indices))
	for i, idx := range indices {
		correct[i] = words[idx]
	}

	return &model.ProgressiveRoundData{
		BlankIndices:    indices,
		BlankPercentage: int(density*100 + 0.5),
		CorrectWords:    correct,
	}
}
