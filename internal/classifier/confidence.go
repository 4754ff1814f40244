package classifier

import (
	"math"

	"socialguard/internal/models"
)

// Blending weights for the external-model confidence.
const (
	similarityWeight  = 0.4
	consistencyWeight = 0.4
	priorWeight       = 0.2
	basePrior         = 0.70

	// fallbackScale caps the fallback vote below the external model.
	fallbackScale = 0.7
)

// Confidence scores an externally chosen category against the exemplars
// that were ranked for the same query:
//
//	0.4*max_similarity + 0.4*consistency + 0.2*0.70
//
// clamped to [MinConfidence, MaxConfidence]. similar must be ranked.
func Confidence(chosen models.Category, similar []models.ScoredExemplar) float64 {
	var maxSim, consistency float64
	if len(similar) > 0 {
		maxSim = similar[0].Similarity
		agree := 0
		for _, ex := range similar {
			if ex.Label == chosen {
				agree++
			}
		}
		consistency = float64(agree) / float64(len(similar))
	}
	return clamp(similarityWeight*maxSim + consistencyWeight*consistency + priorWeight*basePrior)
}

// Vote picks the majority label among ranked exemplars. Ties go to the label
// reached first in rank order. ok is false when similar is empty.
func Vote(similar []models.ScoredExemplar) (winner models.Category, confidence float64, ok bool) {
	if len(similar) == 0 {
		return models.Neutral, 0, false
	}

	var votes models.CategoryCounts
	for _, ex := range similar {
		votes.Add(ex.Label)
	}

	best := 0
	for _, ex := range similar {
		if ex.Label.Valid() && votes[ex.Label] > best {
			winner, best = ex.Label, votes[ex.Label]
		}
	}
	if best == 0 {
		return models.Neutral, 0, false
	}

	return winner, clamp(float64(votes[winner]) / float64(len(similar)) * fallbackScale), true
}

func clamp(v float64) float64 {
	return math.Max(models.MinConfidence, math.Min(models.MaxConfidence, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
