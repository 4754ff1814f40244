package models

import "fmt"

// Category is one of the five fixed harassment categories. The numeric
// values are part of the wire format and must not change.
type Category int

const (
	Neutral             Category = 0 // No Harassment / Neutral
	DirectInsult        Category = 1 // Direct Insult / Profanity
	SexistImplication   Category = 2 // Sexist / Sexual Implication
	Sarcasm             Category = 3 // Sarcasm / Microaggression
	AppearanceCriticism Category = 4 // Appearance-based Criticism
)

// NumCategories is the size of the closed category set.
const NumCategories = 5

// Categories lists every category in label order.
var Categories = [NumCategories]Category{
	Neutral,
	DirectInsult,
	SexistImplication,
	Sarcasm,
	AppearanceCriticism,
}

var categoryNames = [NumCategories]string{
	"No Harassment / Neutral",
	"Direct Insult / Profanity",
	"Sexist / Sexual Implication",
	"Sarcasm / Microaggression",
	"Appearance-based Criticism",
}

// Valid reports whether c is inside [0,4].
func (c Category) Valid() bool {
	return c >= 0 && int(c) < NumCategories
}

// Harmful reports whether c is one of the harassment categories (1-4).
func (c Category) Harmful() bool {
	return c.Valid() && c != Neutral
}

// Name returns the display name of the category.
func (c Category) Name() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

func (c Category) String() string {
	return c.Name()
}

// CategoryFromInt converts a raw label into a Category.
func CategoryFromInt(v int) (Category, bool) {
	c := Category(v)
	return c, c.Valid()
}

// CategoryCounts is a per-category tally indexed by Category.
type CategoryCounts [NumCategories]int

// Add increments the counter for c. Invalid categories are ignored.
func (cc *CategoryCounts) Add(c Category) {
	if c.Valid() {
		cc[c]++
	}
}

// Total returns the sum of all counters.
func (cc CategoryCounts) Total() int {
	total := 0
	for _, n := range cc {
		total += n
	}
	return total
}

// LabelMap returns display name -> id, as exposed by the labels endpoint.
func LabelMap() map[string]int {
	m := make(map[string]int, NumCategories)
	for _, c := range Categories {
		m[c.Name()] = int(c)
	}
	return m
}

// ReverseLabelMap returns id -> display name.
func ReverseLabelMap() map[int]string {
	m := make(map[int]string, NumCategories)
	for _, c := range Categories {
		m[int(c)] = c.Name()
	}
	return m
}
