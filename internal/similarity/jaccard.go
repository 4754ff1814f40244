package similarity

import (
	"strings"

	"github.com/samber/lo"
)

type wordSet map[string]struct{}

func words(text string) wordSet {
	fields := strings.Fields(fold(text))
	set := make(wordSet, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func jaccard(a, b wordSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	inter := lo.CountBy(lo.Keys(a), func(w string) bool {
		_, ok := b[w]
		return ok
	})
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// Jaccard returns |A∩B| / |A∪B| over the case-folded word sets of a and b,
// or 0 when either side has no words.
func Jaccard(a, b string) float64 {
	return jaccard(words(a), words(b))
}

// JaccardStrategy scores against precomputed word sets. It never fails.
type JaccardStrategy struct {
	sets []wordSet
}

// NewJaccard precomputes the word set of every text.
func NewJaccard(texts []string) *JaccardStrategy {
	sets := make([]wordSet, len(texts))
	for i, t := range texts {
		sets[i] = words(t)
	}
	return &JaccardStrategy{sets: sets}
}

// Name implements Strategy.
func (j *JaccardStrategy) Name() string { return "jaccard" }

// Scores implements Strategy.
func (j *JaccardStrategy) Scores(query string) ([]float64, error) {
	q := words(query)
	scores := make([]float64, len(j.sets))
	for i, set := range j.sets {
		scores[i] = jaccard(q, set)
	}
	return scores, nil
}
