// Package risk turns per-comment predictions into per-author risk profiles.
package risk

import (
	"errors"
	"fmt"
	"time"

	"socialguard/internal/models"

	"github.com/samber/lo"
)

// Tier boundaries. Comparisons are strict, so a ratio equal to a boundary
// lands in the lower tier.
const (
	HighRiskAbove   = 0.3
	MediumRiskAbove = 0.1
	LowRiskAbove    = 0.05

	// DefaultThreshold is the flagging cutoff when the caller supplies none.
	DefaultThreshold = 0.8
	// MinComments is the fewest comments an author needs to be evaluated.
	MinComments = 1
)

// ErrInvalidThreshold reports a flagging threshold outside [0,1].
var ErrInvalidThreshold = errors.New("threshold must be within [0,1]")

// ValidateThreshold checks a caller-supplied flagging threshold.
func ValidateThreshold(threshold float64) error {
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}
	return nil
}

// Tier maps a harmful ratio to a risk tier.
func Tier(ratio float64) models.RiskTier {
	switch {
	case ratio > HighRiskAbove:
		return models.RiskHigh
	case ratio > MediumRiskAbove:
		return models.RiskMedium
	case ratio > LowRiskAbove:
		return models.RiskLow
	default:
		return models.RiskSafe
	}
}

// Profile derives one author's profile from their predicted categories.
// ok is false for an author without comments.
func Profile(categories []models.Category, threshold float64) (profile models.UserProfile, ok bool) {
	if len(categories) < MinComments {
		return models.UserProfile{}, false
	}

	harmful := lo.CountBy(categories, models.Category.Harmful)
	ratio := float64(harmful) / float64(len(categories))

	return models.UserProfile{
		TotalComments:   len(categories),
		HarmfulComments: harmful,
		HarmfulRatio:    ratio,
		RiskCategory:    Tier(ratio),
		Flagged:         ratio > threshold,
	}, true
}

// Recommendations returns the moderator guidance for a tier.
func Recommendations(tier models.RiskTier) []string {
	switch tier {
	case models.RiskHigh:
		return []string{"Bu kullanıcı yüksek risk kategorisinde. Dikkatli izleme önerilir."}
	case models.RiskMedium:
		return []string{"Bu kullanıcı orta risk kategorisinde. Periyodik kontrol önerilir."}
	default:
		return []string{"Bu kullanıcı güvenli kategorisinde."}
	}
}

// Aggregate groups classified comments by author, in order of each author's
// first comment, and builds a user analysis per author.
func Aggregate(comments []models.ClassifiedComment, threshold float64, now time.Time) []models.UserAnalysis {
	byAuthor := lo.GroupBy(comments, func(c models.ClassifiedComment) string { return c.Author })
	authors := lo.Uniq(lo.Map(comments, func(c models.ClassifiedComment, _ int) string { return c.Author }))

	out := make([]models.UserAnalysis, 0, len(authors))
	for _, author := range authors {
		categories := lo.Map(byAuthor[author], func(c models.ClassifiedComment, _ int) models.Category {
			return models.Category(c.PredictedCategoryID)
		})
		profile, ok := Profile(categories, threshold)
		if !ok {
			continue
		}
		out = append(out, models.UserAnalysis{
			UserID:            author,
			UserProfile:       profile,
			Recommendations:   Recommendations(profile.RiskCategory),
			AnalysisTimestamp: now,
		})
	}
	return out
}

// CountFlagged returns how many analyses are flagged.
func CountFlagged(analyses []models.UserAnalysis) int {
	return lo.CountBy(analyses, func(a models.UserAnalysis) bool { return a.Flagged })
}
