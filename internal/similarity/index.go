// Package similarity ranks corpus exemplars against a query text.
package similarity

import (
	"errors"
	"sort"

	"socialguard/internal/corpus"
	"socialguard/internal/models"

	"go.uber.org/zap"
)

// DefaultLimit is used when a caller asks for a non-positive k.
const DefaultLimit = 3

// ErrUnavailable is returned by a strategy that cannot score in its
// current state.
var ErrUnavailable = errors.New("similarity strategy unavailable")

// Strategy scores a query against every indexed text, in index order.
type Strategy interface {
	Name() string
	Scores(query string) ([]float64, error)
}

// Index is built once from a corpus and never mutated; concurrent reads are safe.
type Index struct {
	examples   []models.Exemplar
	strategies []Strategy
	logger     *zap.Logger
}

// NewIndex builds the strategy list (TF-IDF, then Jaccard) over the corpus texts.
func NewIndex(c *corpus.Corpus, logger *zap.Logger) *Index {
	examples := make([]models.Exemplar, c.Len())
	for i := range examples {
		examples[i] = c.At(i)
	}
	texts := c.Texts()

	tfidf := NewTFIDF(texts, MaxFeatures)
	logger.Info("Similarity index built",
		zap.Int("documents", len(texts)),
		zap.Int("vocabulary", tfidf.VocabularySize()))

	return NewIndexWithStrategies(examples, logger, tfidf, NewJaccard(texts))
}

// NewIndexWithStrategies builds an index with an explicit strategy order.
func NewIndexWithStrategies(examples []models.Exemplar, logger *zap.Logger, strategies ...Strategy) *Index {
	return &Index{examples: examples, strategies: strategies, logger: logger}
}

// Len returns the number of indexed exemplars, always equal to the corpus size.
func (ix *Index) Len() int { return len(ix.examples) }

// Similar returns up to k exemplars ranked by descending similarity. Equal
// scores keep corpus order. An empty index yields an empty ranking.
func (ix *Index) Similar(text string, k int) []models.ScoredExemplar {
	if k <= 0 {
		k = DefaultLimit
	}
	if len(ix.examples) == 0 {
		return []models.ScoredExemplar{}
	}

	scores, ok := ix.score(text)
	if !ok {
		return []models.ScoredExemplar{}
	}

	ranked := make([]models.ScoredExemplar, len(ix.examples))
	for i, ex := range ix.examples {
		ranked[i] = models.ScoredExemplar{Text: ex.Text, Label: ex.Label, Similarity: scores[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

func (ix *Index) score(text string) ([]float64, bool) {
	for _, s := range ix.strategies {
		scores, err := s.Scores(text)
		if err != nil {
			ix.logger.Debug("Similarity strategy skipped",
				zap.String("strategy", s.Name()), zap.Error(err))
			continue
		}
		if len(scores) != len(ix.examples) {
			ix.logger.Warn("Similarity strategy returned wrong score count",
				zap.String("strategy", s.Name()),
				zap.Int("scores", len(scores)),
				zap.Int("examples", len(ix.examples)))
			continue
		}
		return scores, true
	}
	return nil, false
}
