package models

// CommentRequest for single comment endpoints
type CommentRequest struct {
	Comment string `json:"comment" binding:"required"`
	Limit   int    `json:"limit,omitempty" binding:"omitempty,min=1,max=50"`
}

// PredictionResponse returned by the predict endpoint
type PredictionResponse struct {
	PredictionID   int     `json:"prediction_id"`
	PredictionName string  `json:"prediction_name"`
	Comment        string  `json:"comment"`
	Confidence     float64 `json:"confidence"`
	Method         Method  `json:"method"`
}

// BatchPredictRequest for batch classification
type BatchPredictRequest struct {
	Comments []string `json:"comments" binding:"required,min=1"`
}

// BatchPredictResponse carries per-item results and category totals
type BatchPredictResponse struct {
	Results        []PredictionItem `json:"results"`
	CategoryCounts CategoryCounts   `json:"category_counts"`
}

// SocialMediaAnalysisRequest asks for a post to be scraped and analysed
type SocialMediaAnalysisRequest struct {
	URL         string   `json:"url" binding:"required,url"`
	MaxComments int      `json:"max_comments,omitempty" binding:"omitempty,min=1,max=5000"`
	Threshold   *float64 `json:"threshold,omitempty"`
}

// AnalyzeCommentsRequest analyses comments supplied by the caller
type AnalyzeCommentsRequest struct {
	Comments  []AuthoredComment `json:"comments" binding:"required,min=1,dive"`
	Threshold *float64          `json:"threshold,omitempty"`
	Platform  string            `json:"platform,omitempty"`
}

// DatasetRow is one row of an uploaded dataset, optionally labelled
type DatasetRow struct {
	Comment  string `json:"comment"`
	Label    int    `json:"label"`
	Username string `json:"username"`
	Platform string `json:"platform"`
}

// DatasetSample is a preview row returned after labelling
type DatasetSample struct {
	Comment   string `json:"comment"`
	Label     int    `json:"label"`
	LabelName string `json:"label_name"`
	Username  string `json:"username"`
	Platform  string `json:"platform"`
}

// DatasetUploadResponse describes a labelled upload
type DatasetUploadResponse struct {
	Message     string          `json:"message"`
	TotalRows   int             `json:"total_rows"`
	Columns     []string        `json:"columns"`
	SampleData  []DatasetSample `json:"sample_data"`
	OutputFile  string          `json:"output_file"`
	DownloadURL string          `json:"download_url"`
}

// DatasetStats describes the loaded training corpus
type DatasetStats struct {
	TotalExamples   int            `json:"total_examples"`
	LabelStatistics map[string]int `json:"label_statistics"`
	RowsRead        int            `json:"rows_read"`
	RowsSkipped     int            `json:"rows_skipped"`
	FewShotEnabled  bool           `json:"fewshot_enabled"`
	DatasetPath     string         `json:"dataset_path"`
	Columns         []string       `json:"columns"`
}

// SimilarExamplesResponse lists corpus exemplars ranked against a query
type SimilarExamplesResponse struct {
	Query           string           `json:"query"`
	SimilarExamples []ScoredExemplar `json:"similar_examples"`
	TotalFound      int              `json:"total_found"`
}

// ThresholdInfo describes the flagging defaults
type ThresholdInfo struct {
	Threshold      float64    `json:"threshold"`
	MinComments    int        `json:"min_comments"`
	RiskCategories []RiskTier `json:"risk_categories"`
}
