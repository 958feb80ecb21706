// Package catalog holds the static reference tables for the bid simulation.
//
// The tier/item and dataset orderings are the contract between a submission's
// selections and the score lookup: a bid is addressed by (tier index, item
// index) and each item's score vector is aligned positionally with Datasets.
// Server and client share these tables; they are never persisted.
package catalog

// Item is a single biddable algorithm with its per-dataset score vector.
type Item struct {
	Name   string
	Scores []int
}

// Tier groups items of comparable strength.
type Tier struct {
	Title string
	Items []Item
}

// Tiers is the algorithm catalog, ordered: index positions are stable.
var Tiers = []Tier{
	{
		Title: "Tier 1 – Elite", Items: []Item{
			{Name: "TimSort", Scores: []int{9, 9, 10, 8, 9, 8, 9, 7, 9, 9}},
			{Name: "Merge Sort", Scores: []int{9, 9, 8, 8, 9, 7, 9, 7, 8, 9}},
			{Name: "Quick Sort", Scores: []int{9, 9, 7, 5, 8, 7, 9, 7, 8, 8}},
			{Name: "Heap Sort", Scores: []int{8, 8, 7, 7, 8, 6, 8, 6, 7, 8}},
			{Name: "Intro Sort", Scores: []int{9, 9, 8, 7, 9, 7, 9, 7, 8, 9}},
			{Name: "Dual Pivot Quick", Scores: []int{8, 9, 7, 6, 8, 7, 9, 6, 8, 8}},
			{Name: "Block Sort", Scores: []int{8, 8, 7, 7, 8, 6, 8, 6, 7, 8}},
			{Name: "Smooth Sort", Scores: []int{7, 8, 8, 7, 7, 6, 7, 6, 6, 7}},
			{Name: "Library Sort", Scores: []int{8, 8, 7, 7, 8, 6, 8, 6, 7, 8}},
			{Name: "Grail Sort", Scores: []int{8, 8, 7, 7, 8, 6, 8, 6, 7, 7}},
		},
	},
	{
		Title: "Tier 2 – Strong", Items: []Item{
			{Name: "Radix Sort", Scores: []int{8, 9, 7, 7, 9, 10, 9, 2, 1, 8}},
			{Name: "Counting Sort", Scores: []int{7, 8, 6, 6, 9, 10, 2, 1, 1, 7}},
			{Name: "Bucket Sort", Scores: []int{8, 8, 7, 7, 6, 6, 5, 9, 2, 7}},
			{Name: "Flash Sort", Scores: []int{7, 8, 6, 6, 7, 6, 6, 4, 3, 7}},
			{Name: "Pigeonhole Sort", Scores: []int{6, 7, 5, 5, 8, 9, 1, 1, 1, 6}},
			{Name: "Spread Sort", Scores: []int{8, 8, 7, 7, 8, 7, 8, 4, 4, 8}},
			{Name: "American Flag", Scores: []int{7, 8, 6, 6, 7, 8, 7, 2, 1, 7}},
			{Name: "Cartesian Tree", Scores: []int{6, 6, 6, 5, 6, 5, 6, 4, 4, 6}},
			{Name: "Strand Sort", Scores: []int{7, 6, 7, 5, 6, 5, 6, 4, 5, 6}},
			{Name: "Comb Sort", Scores: []int{6, 5, 6, 5, 6, 5, 6, 4, 5, 6}},
		},
	},
	{
		Title: "Tier 3 – Basic", Items: []Item{
			{Name: "Insertion Sort", Scores: []int{8, 2, 9, 3, 6, 6, 2, 4, 5, 6}},
			{Name: "Selection Sort", Scores: []int{6, 2, 6, 3, 5, 5, 2, 3, 4, 5}},
			{Name: "Bubble Sort", Scores: []int{6, 1, 7, 2, 5, 5, 1, 3, 4, 5}},
			{Name: "Shell Sort", Scores: []int{7, 5, 7, 6, 6, 6, 5, 5, 6, 7}},
			{Name: "Cocktail Sort", Scores: []int{6, 1, 7, 2, 5, 5, 1, 3, 4, 5}},
			{Name: "Gnome Sort", Scores: []int{6, 1, 7, 2, 5, 5, 1, 3, 4, 5}},
			{Name: "Odd-Even Sort", Scores: []int{6, 2, 6, 3, 5, 5, 2, 3, 4, 5}},
			{Name: "Cycle Sort", Scores: []int{6, 3, 6, 4, 5, 5, 3, 3, 4, 5}},
			{Name: "Pancake Sort", Scores: []int{6, 2, 6, 3, 5, 5, 2, 3, 4, 5}},
			{Name: "Tree Sort", Scores: []int{7, 4, 6, 4, 6, 5, 4, 4, 5, 6}},
		},
	},
	{
		Title: "Tier 4 – Wildcards", Items: []Item{
			{Name: "Bogo Sort", Scores: []int{2, 0, 3, 1, 2, 1, 0, 0, 0, 1}},
			{Name: "Bozo Sort", Scores: []int{2, 0, 3, 1, 2, 1, 0, 0, 0, 1}},
			{Name: "Stalin Sort", Scores: []int{4, 1, 6, 2, 3, 3, 1, 2, 2, 3}},
			{Name: "Sleep Sort", Scores: []int{3, 1, 3, 2, 2, 2, 1, 1, 0, 2}},
			{Name: "Miracle Sort", Scores: []int{1, 0, 10, 0, 1, 1, 0, 0, 0, 1}},
			{Name: "Slow Sort", Scores: []int{3, 1, 4, 2, 3, 2, 1, 1, 1, 2}},
			{Name: "Stooge Sort", Scores: []int{3, 1, 4, 2, 3, 2, 1, 1, 1, 2}},
			{Name: "Thanos Sort", Scores: []int{4, 1, 4, 2, 3, 2, 1, 1, 1, 3}},
			{Name: "Quantum Bogo", Scores: []int{1, 0, 2, 0, 1, 0, 0, 0, 0, 0}},
			{Name: "Intelligent Design", Scores: []int{2, 0, 3, 1, 2, 1, 0, 0, 0, 1}},
		},
	},
}

// Datasets is the dataset catalog, ordered to match each item's score vector.
var Datasets = []string{
	"Small Random", "Large Random", "Nearly Sorted", "Reverse Sorted",
	"Many Duplicates", "Small Range", "Wide Range", "Floating Data",
	"Strings", "Mixed Size",
}

// DatasetIndex returns the catalog index of name, or -1 if unknown.
func DatasetIndex(name string) int {
	for i, d := range Datasets {
		if d == name {
			return i
		}
	}
	return -1
}

// ValidBid reports whether (tier, item) addresses a catalog entry.
func ValidBid(tier, item int) bool {
	if tier < 0 || tier >= len(Tiers) {
		return false
	}
	return item >= 0 && item < len(Tiers[tier].Items)
}
