package model

import "sort"

// Difficulty tiers for memory verses
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// VerseContext is the passage immediately before or after a verse
type VerseContext struct {
	Reference string `json:"reference" bson:"reference"`
	Text      string `json:"text" bson:"text"`
}

// Verse is one memorizable passage with parallel texts in several translations
type Verse struct {
	ID           string            `json:"id" bson:"_id"`
	Reference    string            `json:"reference" bson:"reference"`
	Book         string            `json:"book" bson:"book"`
	Chapter      int               `json:"chapter" bson:"chapter"`
	VerseNum     int               `json:"verse" bson:"verse"`
	Difficulty   Difficulty        `json:"difficulty" bson:"difficulty"`
	Translations map[string]string `json:"translations" bson:"translations"`
	Before       *VerseContext     `json:"before,omitempty" bson:"before,omitempty"`
	After        *VerseContext     `json:"after,omitempty" bson:"after,omitempty"`
}

// TextIn returns the verse text in the given translation, falling back to
// any available translation when the requested one is missing.
func (v *Verse) TextIn(translation string) string {
	if t, ok := v.Translations[translation]; ok {
		return t
	}
	keys := make([]string, 0, len(v.Translations))
	for k := range v.Translations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		return v.Translations[keys[0]]
	}
	return ""
}
