package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"socialguard/internal/classifier"
	"socialguard/internal/models"
	"socialguard/internal/risk"

	"github.com/abadojack/whatlanggo"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	unknown        = "unknown"
	manualPlatform = "manual"
)

// AnalyzeSocialMedia fetches a post's comments, classifies them and builds a
// risk profile for every author.
func (a *Analyzer) AnalyzeSocialMedia(ctx context.Context, req models.SocialMediaAnalysisRequest) (*models.Analysis, error) {
	threshold, err := a.threshold(req.Threshold)
	if err != nil {
		return nil, err
	}
	if a.deps.Fetcher == nil {
		return nil, ErrScraperUnavailable
	}
	maxComments := req.MaxComments
	if maxComments <= 0 {
		maxComments = a.cfg.DefaultMaxComments
	}
	start := a.now()

	scraped, err := a.deps.Fetcher.FetchComments(ctx, req.URL, maxComments)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}
	if len(scraped.Comments) == 0 {
		return nil, ErrNoComments
	}

	a.log(ctx).Info("Comments fetched",
		zap.String("url", req.URL),
		zap.String("post_owner", scraped.PostOwner),
		zap.Int("comments", len(scraped.Comments)))

	return a.analyze(ctx, start, &models.Analysis{
		URL:       req.URL,
		Platform:  DetectPlatform(req.URL),
		PostOwner: lo.Ternary(scraped.PostOwner == "", unknown, scraped.PostOwner),
		Threshold: threshold,
	}, scraped.Comments)
}

// AnalyzeComments runs the same analysis over comments supplied by the caller.
func (a *Analyzer) AnalyzeComments(ctx context.Context, req models.AnalyzeCommentsRequest) (*models.Analysis, error) {
	threshold, err := a.threshold(req.Threshold)
	if err != nil {
		return nil, err
	}
	if len(req.Comments) == 0 {
		return nil, ErrNoComments
	}

	return a.analyze(ctx, a.now(), &models.Analysis{
		Platform:  lo.Ternary(req.Platform == "", manualPlatform, req.Platform),
		PostOwner: unknown,
		Threshold: threshold,
	}, req.Comments)
}

func (a *Analyzer) threshold(v *float64) (float64, error) {
	if v == nil {
		return *a.cfg.DefaultThreshold, nil
	}
	if err := risk.ValidateThreshold(*v); err != nil {
		return 0, err
	}
	return *v, nil
}

func (a *Analyzer) analyze(ctx context.Context, start time.Time, analysis *models.Analysis, comments []models.AuthoredComment) (*models.Analysis, error) {
	texts := lo.Map(comments, func(c models.AuthoredComment, _ int) string { return c.Text })

	classified := make([]models.ClassifiedComment, 0, len(comments))
	err := a.classifyEach(ctx, texts, func(i int, res classifier.Result) {
		p := res.Prediction
		classified = append(classified, models.ClassifiedComment{
			Text:                  comments[i].Text,
			Author:                comments[i].Author,
			PredictedCategoryID:   int(p.Category),
			PredictedCategoryName: p.CategoryName(),
			PredictedConfidence:   p.Confidence,
			Method:                p.Method,
			Language:              detectLanguage(comments[i].Text),
		})
	})
	if err != nil {
		return nil, err
	}

	now := a.now()
	analysis.Comments = classified
	analysis.TotalComments = len(classified)
	analysis.UserAnalyses = risk.Aggregate(classified, analysis.Threshold, now)
	analysis.AnalyzedUsers = len(analysis.UserAnalyses)
	analysis.FlaggedUsers = risk.CountFlagged(analysis.UserAnalyses)
	analysis.AnalysisTimestamp = now
	analysis.Duration = now.Sub(start).Seconds()

	logger := a.log(ctx)
	logger.Info("Analysis completed",
		zap.String("platform", analysis.Platform),
		zap.Int("comments", analysis.TotalComments),
		zap.Int("analyzed_users", analysis.AnalyzedUsers),
		zap.Int("flagged_users", analysis.FlaggedUsers),
		zap.Float64("threshold", analysis.Threshold))

	if a.deps.Repo != nil {
		if err := a.deps.Repo.SaveAnalysis(ctx, analysis); err != nil {
			logger.Error("Failed to save analysis", zap.Error(err))
		}
	}

	if a.deps.Notifier != nil && analysis.FlaggedUsers > 0 {
		if err := a.deps.Notifier.NotifyFlagged(ctx, analysis); err != nil {
			logger.Warn("Failed to notify about flagged users", zap.Error(err))
		}
	}

	return analysis, nil
}

// DetectPlatform names the social network a post URL belongs to.
func DetectPlatform(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return unknown
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	switch {
	case host == "instagram.com" || strings.HasSuffix(host, ".instagram.com"):
		return "instagram"
	case host == "twitter.com" || host == "x.com":
		return "twitter"
	case host == "youtube.com" || host == "youtu.be" || strings.HasSuffix(host, ".youtube.com"):
		return "youtube"
	case host == "tiktok.com" || strings.HasSuffix(host, ".tiktok.com"):
		return "tiktok"
	case host == "facebook.com" || strings.HasSuffix(host, ".facebook.com"):
		return "facebook"
	default:
		return host
	}
}

// detectLanguage returns an ISO 639-1 code, or "" when the guess is unreliable.
func detectLanguage(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
