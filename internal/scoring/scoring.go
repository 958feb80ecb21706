// Package scoring computes the bid simulation score. The computation is pure
// and deterministic: identical selections always produce an identical score.
package scoring

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cld-events/bidsim-api/internal/catalog"
)

// Bid references one algorithm catalog entry by position.
type Bid struct {
	Tier int `json:"tier"`
	Item int `json:"item"`
}

// Score sums, for each selected bid, the item's score at every selected
// dataset's catalog index, then adds credits/100. Dataset names not present in
// the catalog are skipped; bids outside the catalog are skipped the same way.
// No rounding happens here: callers truncate for display only.
func Score(bids []Bid, datasets []string, credits int) float64 {
	total := 0
	for _, b := range bids {
		if !catalog.ValidBid(b.Tier, b.Item) {
			continue
		}
		scores := catalog.Tiers[b.Tier].Items[b.Item].Scores
		for _, ds := range datasets {
			if idx := catalog.DatasetIndex(ds); idx >= 0 {
				total += scores[idx]
			}
		}
	}
	return float64(credits)/100 + float64(total)
}

// ParseCredits converts free-form user input to a credit count.
// Non-numeric input counts as zero credits.
func ParseCredits(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// FormatScore renders a score with two decimal places for display.
func FormatScore(score float64) string {
	return fmt.Sprintf("%.2f", score)
}
