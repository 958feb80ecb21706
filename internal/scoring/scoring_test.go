package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestScore_WorkedExample checks the documented reference calculation:
// TimSort against Small Random (9) and Large Random (9) plus 50 credits.
func TestScore_WorkedExample(t *testing.T) {
	bids := []Bid{{Tier: 0, Item: 0}}
	datasets := []string{"Small Random", "Large Random"}

	score := Score(bids, datasets, 50)

	assert.Equal(t, 18.5, score)
	assert.Equal(t, "18.50", FormatScore(score))
}

func TestScore_EmptySelections(t *testing.T) {
	assert.Equal(t, 0.0, Score(nil, nil, 0))
	assert.Equal(t, 0.25, Score(nil, nil, 25))
}

// TestScore_UnknownDatasetSkipped verifies that dataset names missing from
// the catalog contribute nothing instead of failing.
func TestScore_UnknownDatasetSkipped(t *testing.T) {
	bids := []Bid{{Tier: 0, Item: 0}}

	with := Score(bids, []string{"Small Random", "No Such Dataset"}, 0)
	without := Score(bids, []string{"Small Random"}, 0)

	assert.Equal(t, without, with)
}

// TestScore_InvalidBidSkipped verifies out-of-range bids are ignored.
func TestScore_InvalidBidSkipped(t *testing.T) {
	bids := []Bid{
		{Tier: 0, Item: 0},
		{Tier: 99, Item: 0},
		{Tier: 0, Item: -1},
	}

	score := Score(bids, []string{"Small Random"}, 0)

	assert.Equal(t, 9.0, score)
}

// TestScore_Deterministic reruns the same selection and expects an identical
// result every time.
func TestScore_Deterministic(t *testing.T) {
	bids := []Bid{{Tier: 0, Item: 0}, {Tier: 1, Item: 2}, {Tier: 3, Item: 4}}
	datasets := []string{"Small Random", "Strings", "Mixed Size"}

	first := Score(bids, datasets, 120)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(bids, datasets, 120))
	}
}

func TestParseCredits(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"plain number", "50", 50},
		{"whitespace", " 75 ", 75},
		{"empty", "", 0},
		{"non-numeric", "abc", 0},
		{"float rejected", "12.5", 0},
		{"negative allowed", "-10", -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCredits(tt.input))
		})
	}
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "18.50", FormatScore(18.5))
	assert.Equal(t, "0.00", FormatScore(0))
	assert.Equal(t, "27.00", FormatScore(27))
}
