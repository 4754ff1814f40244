package models

import "time"

// AuthoredComment is a single scraped comment.
type AuthoredComment struct {
	Text   string `json:"text" binding:"required"`
	Author string `json:"author" binding:"required"`
}

// ScrapeResult is what the scraper collaborator returns for one post.
type ScrapeResult struct {
	Comments      []AuthoredComment `json:"comments"`
	PostOwner     string            `json:"post_owner"`
	TotalComments int               `json:"total_comments"`
}

// ClassifiedComment is an authored comment annotated with its prediction.
type ClassifiedComment struct {
	Text                  string  `json:"text"`
	Author                string  `json:"author"`
	PredictedCategoryID   int     `json:"predicted_category_id"`
	PredictedCategoryName string  `json:"predicted_category_name"`
	PredictedConfidence   float64 `json:"predicted_confidence"`
	Method                Method  `json:"method"`
	Language              string  `json:"language,omitempty"`
}

// RiskTier buckets an author's harmful ratio.
type RiskTier string

const (
	RiskSafe   RiskTier = "safe"
	RiskLow    RiskTier = "low_risk"
	RiskMedium RiskTier = "medium_risk"
	RiskHigh   RiskTier = "high_risk"
)

// RiskTiers lists tiers from least to most severe.
var RiskTiers = []RiskTier{RiskSafe, RiskLow, RiskMedium, RiskHigh}

// UserProfile is derived from one author's predictions for a single run.
type UserProfile struct {
	TotalComments   int      `json:"total_comments"`
	HarmfulComments int      `json:"harmful_comments"`
	HarmfulRatio    float64  `json:"harmful_ratio"`
	RiskCategory    RiskTier `json:"risk_category"`
	Flagged         bool     `json:"flagged"`
}

// UserAnalysis is a profile plus the report shown to moderators.
type UserAnalysis struct {
	UserID string `json:"user_id"`
	UserProfile
	Recommendations   []string  `json:"recommendations"`
	AnalysisTimestamp time.Time `json:"analysis_timestamp"`
}

// Analysis is the full result of analysing one post's comments.
type Analysis struct {
	ID                string              `json:"id,omitempty"`
	URL               string              `json:"url"`
	Platform          string              `json:"platform"`
	PostOwner         string              `json:"post_owner"`
	TotalComments     int                 `json:"total_comments"`
	AnalyzedUsers     int                 `json:"analyzed_users"`
	FlaggedUsers      int                 `json:"flagged_users"`
	Threshold         float64             `json:"threshold"`
	UserAnalyses      []UserAnalysis      `json:"user_analyses"`
	Comments          []ClassifiedComment `json:"comments"`
	AnalysisTimestamp time.Time           `json:"analysis_timestamp"`
	Duration          float64             `json:"analysis_duration"`
}

// FlaggedAuthors returns the ids of flagged authors in analysis order.
func (a *Analysis) FlaggedAuthors() []string {
	var out []string
	for _, ua := range a.UserAnalyses {
		if ua.Flagged {
			out = append(out, ua.UserID)
		}
	}
	return out
}
