package risk

import (
	"testing"
	"time"

	"socialguard/internal/models"

	"github.com/stretchr/testify/require"
)

func TestTier_Boundaries(t *testing.T) {
	tests := []struct {
		ratio float64
		want  models.RiskTier
	}{
		{0.0, models.RiskSafe},
		{0.05, models.RiskSafe},
		{0.051, models.RiskLow},
		{0.1, models.RiskLow},
		{0.11, models.RiskMedium},
		{0.30, models.RiskMedium},
		{0.31, models.RiskHigh},
		{1.0, models.RiskHigh},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, Tier(tt.ratio), "ratio %v", tt.ratio)
	}
}

func categories(total, harmful int) []models.Category {
	out := make([]models.Category, total)
	for i := 0; i < harmful; i++ {
		out[i] = models.Category(1 + i%4)
	}
	return out
}

func TestProfile_FlagIsStrictlyAboveThreshold(t *testing.T) {
	req := require.New(t)

	atThreshold, ok := Profile(categories(5, 4), DefaultThreshold)
	req.True(ok)
	req.InDelta(0.8, atThreshold.HarmfulRatio, 1e-12)
	req.False(atThreshold.Flagged)

	above, ok := Profile(categories(1000, 801), DefaultThreshold)
	req.True(ok)
	req.InDelta(0.801, above.HarmfulRatio, 1e-12)
	req.True(above.Flagged)
	req.Equal(models.RiskHigh, above.RiskCategory)
}

func TestProfile_Counts(t *testing.T) {
	req := require.New(t)

	p, ok := Profile(categories(10, 3), 0.5)
	req.True(ok)
	req.Equal(models.UserProfile{
		TotalComments:   10,
		HarmfulComments: 3,
		HarmfulRatio:    0.3,
		RiskCategory:    models.RiskMedium,
		Flagged:         false,
	}, p)

	zeroThreshold, ok := Profile(categories(2, 1), 0)
	req.True(ok)
	req.True(zeroThreshold.Flagged)

	clean, ok := Profile(categories(3, 0), 0)
	req.True(ok)
	req.False(clean.Flagged)
	req.Equal(models.RiskSafe, clean.RiskCategory)
}

func TestProfile_NoCommentsIsExcluded(t *testing.T) {
	_, ok := Profile(nil, DefaultThreshold)
	require.False(t, ok)
}

func TestValidateThreshold(t *testing.T) {
	require.NoError(t, ValidateThreshold(0))
	require.NoError(t, ValidateThreshold(1))
	require.NoError(t, ValidateThreshold(0.8))
	require.ErrorIs(t, ValidateThreshold(-0.1), ErrInvalidThreshold)
	require.ErrorIs(t, ValidateThreshold(1.01), ErrInvalidThreshold)
}

func TestAggregate_GroupsByAuthorInFirstSeenOrder(t *testing.T) {
	req := require.New(t)
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	comment := func(author string, category models.Category) models.ClassifiedComment {
		return models.ClassifiedComment{Text: "yorum", Author: author, PredictedCategoryID: int(category)}
	}

	comments := []models.ClassifiedComment{
		comment("zeynep", models.Neutral),
		comment("troll42", models.DirectInsult),
		comment("zeynep", models.Neutral),
		comment("troll42", models.AppearanceCriticism),
		comment("ahmet", models.Sarcasm),
		comment("troll42", models.Neutral),
	}

	got := Aggregate(comments, 0.5, now)
	req.Len(got, 3)
	req.Equal([]string{"zeynep", "troll42", "ahmet"}, []string{got[0].UserID, got[1].UserID, got[2].UserID})

	req.Equal(2, got[0].TotalComments)
	req.Zero(got[0].HarmfulComments)
	req.Equal(models.RiskSafe, got[0].RiskCategory)
	req.Equal([]string{"Bu kullanıcı güvenli kategorisinde."}, got[0].Recommendations)

	req.Equal(3, got[1].TotalComments)
	req.Equal(2, got[1].HarmfulComments)
	req.Equal(models.RiskHigh, got[1].RiskCategory)
	req.True(got[1].Flagged)
	req.Contains(got[1].Recommendations[0], "yüksek risk")

	req.True(got[2].Flagged)
	req.Equal(now, got[2].AnalysisTimestamp)
	req.Equal(2, CountFlagged(got))
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil, DefaultThreshold, time.Now())
	require.Empty(t, got)
	require.Zero(t, CountFlagged(got))
}

func TestRecommendations(t *testing.T) {
	require.Contains(t, Recommendations(models.RiskMedium)[0], "orta risk")
	require.Equal(t, Recommendations(models.RiskSafe), Recommendations(models.RiskLow))
}
