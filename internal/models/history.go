package models

import "time"

// PredictionType distinguishes how a prediction record was produced.
type PredictionType string

const (
	PredictionSingle  PredictionType = "single"
	PredictionBatch   PredictionType = "batch"
	PredictionDataset PredictionType = "dataset"
)

// Valid reports whether t is a known prediction type.
func (t PredictionType) Valid() bool {
	switch t {
	case PredictionSingle, PredictionBatch, PredictionDataset:
		return true
	}
	return false
}

// PredictionItem is one classified text inside a prediction record.
type PredictionItem struct {
	Comment      string  `json:"comment"`
	CategoryID   int     `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Confidence   float64 `json:"confidence"`
	Method       Method  `json:"method"`
	Username     string  `json:"username,omitempty"`
	Platform     string  `json:"platform,omitempty"`
}

// PredictionRecord is a persisted single, batch or dataset run.
type PredictionRecord struct {
	ID             string           `json:"id"`
	Type           PredictionType   `json:"prediction_type"`
	Filename       string           `json:"filename,omitempty"`
	TotalComments  int              `json:"total_comments"`
	CategoryCounts CategoryCounts   `json:"category_counts"`
	Predictions    []PredictionItem `json:"predictions,omitempty"`
	ProcessingTime float64          `json:"processing_time"`
	CreatedAt      time.Time        `json:"created_at"`
}

// AnalysisSummary is the list view of a stored analysis.
type AnalysisSummary struct {
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	Platform      string    `json:"platform"`
	PostOwner     string    `json:"post_owner"`
	TotalComments int       `json:"total_comments"`
	AnalyzedUsers int       `json:"analyzed_users"`
	FlaggedUsers  int       `json:"flagged_users"`
	Threshold     float64   `json:"threshold"`
	Duration      float64   `json:"analysis_duration"`
	CreatedAt     time.Time `json:"created_at"`
}

// AnalysisStats aggregates over every stored analysis.
type AnalysisStats struct {
	TotalAnalyses         int            `json:"total_analyses"`
	TotalCommentsAnalyzed int            `json:"total_comments_analyzed"`
	TotalUsersAnalyzed    int            `json:"total_users_analyzed"`
	TotalFlaggedUsers     int            `json:"total_flagged_users"`
	PlatformDistribution  map[string]int `json:"platform_distribution"`
}
