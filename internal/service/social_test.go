package service

import (
	"context"
	"errors"
	"testing"

	"socialguard/internal/models"

	"github.com/stretchr/testify/require"
)

func scrapedPost() *models.ScrapeResult {
	return &models.ScrapeResult{
		PostOwner: "yazar",
		Comments: []models.AuthoredComment{
			{Text: "harika olmuş", Author: "ayse"},
			{Text: "çok çirkinsin", Author: "troll"},
			{Text: "tebrikler", Author: "ayse"},
			{Text: "aptal mısın", Author: "troll"},
		},
	}
}

func socialClassifier() *scriptedClassifier {
	return &scriptedClassifier{answers: map[string]models.Category{
		"çok çirkinsin": models.AppearanceCriticism,
		"aptal mısın":   models.DirectInsult,
	}}
}

func TestAnalyzeSocialMedia(t *testing.T) {
	req := require.New(t)
	store := &memStore{}
	notifier := &fakeNotifier{}
	fetcher := &fakeFetcher{result: scrapedPost()}
	a := newTestAnalyzer(Deps{
		Classifier: socialClassifier(),
		Repo:       store,
		Fetcher:    fetcher,
		Notifier:   notifier,
	}, Config{})

	got, err := a.AnalyzeSocialMedia(context.Background(), models.SocialMediaAnalysisRequest{
		URL: "https://www.instagram.com/p/abc123/",
	})
	req.NoError(err)
	req.Equal(100, fetcher.gotMax)

	req.Equal("analysis-1", got.ID)
	req.Equal("instagram", got.Platform)
	req.Equal("yazar", got.PostOwner)
	req.Equal(4, got.TotalComments)
	req.Equal(2, got.AnalyzedUsers)
	req.Equal(1, got.FlaggedUsers)
	req.Equal(0.8, got.Threshold)
	req.Equal([]string{"troll"}, got.FlaggedAuthors())

	req.Equal("ayse", got.UserAnalyses[0].UserID)
	req.Equal(models.RiskSafe, got.UserAnalyses[0].RiskCategory)
	req.Equal(models.RiskHigh, got.UserAnalyses[1].RiskCategory)

	req.Equal(4, got.Comments[1].PredictedCategoryID)
	req.Equal("Appearance-based Criticism", got.Comments[1].PredictedCategoryName)

	req.Len(store.analyses, 1)
	req.Len(notifier.notified, 1)
}

func TestAnalyzeSocialMedia_NoFlagsNoNotification(t *testing.T) {
	notifier := &fakeNotifier{}
	high := 1.0
	a := newTestAnalyzer(Deps{
		Classifier: socialClassifier(),
		Fetcher:    &fakeFetcher{result: scrapedPost()},
		Notifier:   notifier,
	}, Config{})

	got, err := a.AnalyzeSocialMedia(context.Background(), models.SocialMediaAnalysisRequest{
		URL: "https://x.com/someone/status/1", MaxComments: 10, Threshold: &high,
	})
	require.NoError(t, err)
	require.Zero(t, got.FlaggedUsers)
	require.Equal(t, "twitter", got.Platform)
	require.Empty(t, notifier.notified)
}

func TestAnalyzeSocialMedia_Errors(t *testing.T) {
	bad := 1.5
	ctx := context.Background()

	a := newTestAnalyzer(Deps{Classifier: socialClassifier(), Fetcher: &fakeFetcher{result: scrapedPost()}}, Config{})
	_, err := a.AnalyzeSocialMedia(ctx, models.SocialMediaAnalysisRequest{URL: "https://instagram.com/p/1", Threshold: &bad})
	require.ErrorIs(t, err, ErrInvalidThreshold)

	a = newTestAnalyzer(Deps{Classifier: socialClassifier()}, Config{})
	_, err = a.AnalyzeSocialMedia(ctx, models.SocialMediaAnalysisRequest{URL: "https://instagram.com/p/1"})
	require.ErrorIs(t, err, ErrScraperUnavailable)

	a = newTestAnalyzer(Deps{Classifier: socialClassifier(), Fetcher: &fakeFetcher{result: &models.ScrapeResult{}}}, Config{})
	_, err = a.AnalyzeSocialMedia(ctx, models.SocialMediaAnalysisRequest{URL: "https://instagram.com/p/1"})
	require.ErrorIs(t, err, ErrNoComments)

	boom := errors.New("scraper down")
	a = newTestAnalyzer(Deps{Classifier: socialClassifier(), Fetcher: &fakeFetcher{err: boom}}, Config{})
	_, err = a.AnalyzeSocialMedia(ctx, models.SocialMediaAnalysisRequest{URL: "https://instagram.com/p/1"})
	require.ErrorIs(t, err, boom)
}

func TestAnalyzeSocialMedia_SaveFailureStillReturnsResult(t *testing.T) {
	a := newTestAnalyzer(Deps{
		Classifier: socialClassifier(),
		Repo:       &memStore{failSaves: true},
		Fetcher:    &fakeFetcher{result: scrapedPost()},
	}, Config{})

	got, err := a.AnalyzeSocialMedia(context.Background(), models.SocialMediaAnalysisRequest{URL: "https://instagram.com/p/1"})
	require.NoError(t, err)
	require.Empty(t, got.ID)
	require.Equal(t, 1, got.FlaggedUsers)
}

func TestAnalyzeComments(t *testing.T) {
	req := require.New(t)
	zero := 0.0
	a := newTestAnalyzer(Deps{Classifier: socialClassifier()}, Config{})

	got, err := a.AnalyzeComments(context.Background(), models.AnalyzeCommentsRequest{
		Comments:  scrapedPost().Comments,
		Threshold: &zero,
	})
	req.NoError(err)
	req.Equal("manual", got.Platform)
	req.Equal("unknown", got.PostOwner)
	req.Equal(1, got.FlaggedUsers)

	_, err = a.AnalyzeComments(context.Background(), models.AnalyzeCommentsRequest{})
	req.ErrorIs(err, ErrNoComments)
}

func TestDetectPlatform(t *testing.T) {
	tests := map[string]string{
		"https://www.instagram.com/p/abc/":      "instagram",
		"https://instagram.com/reel/xyz":        "instagram",
		"https://twitter.com/a/status/1":        "twitter",
		"https://x.com/a/status/1":              "twitter",
		"https://www.youtube.com/watch?v=1":     "youtube",
		"https://youtu.be/1":                    "youtube",
		"https://m.facebook.com/story.php?id=1": "facebook",
		"https://www.tiktok.com/@user/video/1":  "tiktok",
		"https://forum.example.org/thread/42":   "forum.example.org",
		"not a url":                             "unknown",
	}
	for in, want := range tests {
		require.Equal(t, want, DetectPlatform(in), in)
	}
}

func TestAnalyzeComments_ConfiguredZeroThreshold(t *testing.T) {
	req := require.New(t)
	zero := 0.0
	a := newTestAnalyzer(Deps{Classifier: socialClassifier()}, Config{DefaultThreshold: &zero})
	req.Zero(a.DetectionThreshold().Threshold)

	got, err := a.AnalyzeComments(context.Background(), models.AnalyzeCommentsRequest{
		Comments: scrapedPost().Comments,
	})
	req.NoError(err)
	req.Zero(got.Threshold)
	// any harmful comment is above a zero threshold
	req.Equal(1, got.FlaggedUsers)
	req.Equal([]string{"troll"}, got.FlaggedAuthors())
}
