package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProgressiveAnswers(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want []string
	}{
		{"numbered", "1:beginning 2:created 3:earth", 3, []string{"beginning", "created", "earth"}},
		{"positional", "beginning created earth", 3, []string{"beginning", "created", "earth"}},
		{"mixed", "2:created earth", 3, []string{"", "created", "earth"}},
		{"out of order", "3:earth 1:beginning", 3, []string{"beginning", "", "earth"}},
		{"too many words", "a b c d", 2, []string{"a", "b"}},
		{"index out of range", "9:zzz one", 2, []string{"9:zzz", "one"}},
		{"empty", "", 2, []string{"", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseProgressiveAnswers(tt.text, tt.n))
		})
	}
}
