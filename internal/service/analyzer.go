// Package service holds the request-level workflows built on the classifier:
// single and batch prediction, dataset labelling, post analysis and history.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"socialguard/internal/classifier"
	"socialguard/internal/corpus"
	"socialguard/internal/models"
	"socialguard/internal/repository"
	"socialguard/internal/requestid"
	"socialguard/internal/risk"

	"go.uber.org/zap"
)

// DefaultSimilarLimit is the number of exemplars returned by SimilarExamples
// when the caller does not ask for a specific count.
const DefaultSimilarLimit = 10

var (
	ErrEmptyComment       = errors.New("comment must not be empty")
	ErrNoComments         = errors.New("no comments to analyse")
	ErrScraperUnavailable = errors.New("comment scraper is not configured")
	ErrInvalidThreshold   = risk.ErrInvalidThreshold
	ErrNotFound           = repository.ErrNotFound
)

// Classifier decides a category for one text.
type Classifier interface {
	ClassifyDetailed(ctx context.Context, text string) classifier.Result
	HasGenerator() bool
}

// Ranker ranks corpus exemplars against a query text.
type Ranker interface {
	Similar(text string, k int) []models.ScoredExemplar
}

// HistoryStore persists analyses and prediction runs.
type HistoryStore interface {
	SaveAnalysis(ctx context.Context, a *models.Analysis) error
	ListAnalyses(ctx context.Context, limit, offset int) ([]models.AnalysisSummary, error)
	CountAnalyses(ctx context.Context) (int, error)
	GetAnalysis(ctx context.Context, id string) (*models.Analysis, error)
	DeleteAnalysis(ctx context.Context, id string) error
	AnalysisStats(ctx context.Context) (*models.AnalysisStats, error)

	SavePrediction(ctx context.Context, p *models.PredictionRecord) error
	ListPredictions(ctx context.Context, predType models.PredictionType, limit, offset int) ([]models.PredictionRecord, error)
	CountPredictions(ctx context.Context, predType models.PredictionType) (int, error)
	GetPrediction(ctx context.Context, id string) (*models.PredictionRecord, error)
	DeletePrediction(ctx context.Context, id string) error
}

// CommentFetcher returns the comments of a social media post.
type CommentFetcher interface {
	FetchComments(ctx context.Context, url string, maxComments int) (*models.ScrapeResult, error)
}

// Notifier is told about analyses that flagged at least one author.
type Notifier interface {
	NotifyFlagged(ctx context.Context, a *models.Analysis) error
}

// Config for the analyzer
type Config struct {
	Pacer              Pacer
	DefaultThreshold   *float64
	DefaultMaxComments int
	OutputDir          string
	ModelInfo          map[string]interface{}
}

// Deps are the collaborators of the analyzer. Fetcher and Notifier may be nil.
type Deps struct {
	Classifier Classifier
	Ranker     Ranker
	Corpus     *corpus.Corpus
	Repo       HistoryStore
	Fetcher    CommentFetcher
	Notifier   Notifier
}

// Analyzer handles classification business logic
type Analyzer struct {
	deps   Deps
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// NewAnalyzer creates a new analyzer service
func NewAnalyzer(deps Deps, cfg Config, logger *zap.Logger) *Analyzer {
	if cfg.DefaultThreshold == nil {
		threshold := risk.DefaultThreshold
		cfg.DefaultThreshold = &threshold
	}
	if cfg.DefaultMaxComments <= 0 {
		cfg.DefaultMaxComments = 100
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./data"
	}
	if deps.Corpus == nil {
		deps.Corpus = corpus.New(nil)
	}
	return &Analyzer{
		deps:   deps,
		cfg:    cfg,
		logger: logger.Named("service"),
		now:    time.Now,
	}
}

func (a *Analyzer) log(ctx context.Context) *zap.Logger {
	return a.logger.With(zap.String("request_id", requestid.From(ctx)))
}

func predictionItem(text string, p models.Prediction) models.PredictionItem {
	return models.PredictionItem{
		Comment:      text,
		CategoryID:   int(p.Category),
		CategoryName: p.CategoryName(),
		Confidence:   p.Confidence,
		Method:       p.Method,
	}
}

// Predict classifies one comment and records it as a single prediction.
func (a *Analyzer) Predict(ctx context.Context, text string) (*models.PredictionResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyComment
	}
	start := a.now()

	p := a.deps.Classifier.ClassifyDetailed(ctx, text).Prediction

	record := &models.PredictionRecord{
		Type:          models.PredictionSingle,
		TotalComments: 1,
		Predictions:   []models.PredictionItem{predictionItem(text, p)},
	}
	record.CategoryCounts.Add(p.Category)
	record.ProcessingTime = a.now().Sub(start).Seconds()
	a.savePrediction(ctx, record)

	return &models.PredictionResponse{
		PredictionID:   int(p.Category),
		PredictionName: p.CategoryName(),
		Comment:        text,
		Confidence:     p.Confidence,
		Method:         p.Method,
	}, nil
}

// PredictBatch classifies comments one at a time with pacing between calls
// and records the run as a batch prediction.
func (a *Analyzer) PredictBatch(ctx context.Context, comments []string) (*models.BatchPredictResponse, error) {
	if len(comments) == 0 {
		return nil, ErrNoComments
	}
	start := a.now()

	resp := &models.BatchPredictResponse{Results: make([]models.PredictionItem, 0, len(comments))}
	err := a.classifyEach(ctx, comments, func(i int, res classifier.Result) {
		resp.Results = append(resp.Results, predictionItem(comments[i], res.Prediction))
		resp.CategoryCounts.Add(res.Prediction.Category)
	})
	if err != nil {
		return nil, err
	}

	a.savePrediction(ctx, &models.PredictionRecord{
		Type:           models.PredictionBatch,
		TotalComments:  len(comments),
		CategoryCounts: resp.CategoryCounts,
		Predictions:    resp.Results,
		ProcessingTime: a.now().Sub(start).Seconds(),
	})

	a.log(ctx).Info("Batch prediction completed",
		zap.Int("total", len(comments)),
		zap.Ints("category_counts", resp.CategoryCounts[:]))
	return resp, nil
}

// classifyEach runs texts through the classifier sequentially. It waits
// between calls, never after the last one, and stops early when ctx is done.
func (a *Analyzer) classifyEach(ctx context.Context, texts []string, fn func(i int, res classifier.Result)) error {
	for i, text := range texts {
		res := a.deps.Classifier.ClassifyDetailed(ctx, text)
		fn(i, res)

		if i == len(texts)-1 {
			break
		}
		if err := a.cfg.Pacer.Wait(ctx, res.ExternalErr != nil); err != nil {
			a.log(ctx).Warn("Batch interrupted",
				zap.Int("processed", i+1),
				zap.Int("total", len(texts)),
				zap.Error(err))
			return err
		}
	}
	return nil
}

// SimilarExamples ranks corpus exemplars against text.
func (a *Analyzer) SimilarExamples(ctx context.Context, text string, limit int) (*models.SimilarExamplesResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyComment
	}
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	similar := a.deps.Ranker.Similar(text, limit)
	return &models.SimilarExamplesResponse{
		Query:           text,
		SimilarExamples: similar,
		TotalFound:      len(similar),
	}, nil
}

// DatasetStats describes the loaded training corpus.
func (a *Analyzer) DatasetStats() *models.DatasetStats {
	report := a.deps.Corpus.Report()
	counts := a.deps.Corpus.LabelCounts()

	labels := make(map[string]int, models.NumCategories)
	for _, c := range models.Categories {
		labels[c.Name()] = counts[c]
	}

	return &models.DatasetStats{
		TotalExamples:   a.deps.Corpus.Len(),
		LabelStatistics: labels,
		RowsRead:        report.RowsRead,
		RowsSkipped:     report.RowsSkipped,
		FewShotEnabled:  a.deps.Classifier.HasGenerator(),
		DatasetPath:     report.Path,
		Columns:         report.Columns,
	}
}

// DetectionThreshold returns the flagging defaults.
func (a *Analyzer) DetectionThreshold() models.ThresholdInfo {
	return models.ThresholdInfo{
		Threshold:      *a.cfg.DefaultThreshold,
		MinComments:    risk.MinComments,
		RiskCategories: models.RiskTiers,
	}
}

// ModelInfo reports the configured generator, if any.
func (a *Analyzer) ModelInfo() map[string]interface{} {
	info := map[string]interface{}{"generator_enabled": a.deps.Classifier.HasGenerator()}
	for k, v := range a.cfg.ModelInfo {
		info[k] = v
	}
	return info
}

// savePrediction stores a run. Failures are logged only, the caller still
// gets its result.
func (a *Analyzer) savePrediction(ctx context.Context, p *models.PredictionRecord) {
	if a.deps.Repo == nil {
		return
	}
	if err := a.deps.Repo.SavePrediction(ctx, p); err != nil {
		a.log(ctx).Error("Failed to save prediction", zap.String("type", string(p.Type)), zap.Error(err))
	}
}

// ListAnalyses returns one page of stored analyses, newest first, and the
// number of analyses stored overall.
func (a *Analyzer) ListAnalyses(ctx context.Context, limit, offset int) ([]models.AnalysisSummary, int, error) {
	analyses, err := a.deps.Repo.ListAnalyses(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := a.deps.Repo.CountAnalyses(ctx)
	if err != nil {
		return nil, 0, err
	}
	return analyses, total, nil
}

// GetAnalysis returns one stored analysis.
func (a *Analyzer) GetAnalysis(ctx context.Context, id string) (*models.Analysis, error) {
	return a.deps.Repo.GetAnalysis(ctx, id)
}

// DeleteAnalysis removes one stored analysis.
func (a *Analyzer) DeleteAnalysis(ctx context.Context, id string) error {
	return a.deps.Repo.DeleteAnalysis(ctx, id)
}

// AnalysisStats summarises all stored analyses.
func (a *Analyzer) AnalysisStats(ctx context.Context) (*models.AnalysisStats, error) {
	return a.deps.Repo.AnalysisStats(ctx)
}

// ListPredictions returns one page of stored prediction runs, newest first,
// and the number of matching runs stored overall.
func (a *Analyzer) ListPredictions(ctx context.Context, predType models.PredictionType, limit, offset int) ([]models.PredictionRecord, int, error) {
	predictions, err := a.deps.Repo.ListPredictions(ctx, predType, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := a.deps.Repo.CountPredictions(ctx, predType)
	if err != nil {
		return nil, 0, err
	}
	return predictions, total, nil
}

// GetPrediction returns one stored prediction run.
func (a *Analyzer) GetPrediction(ctx context.Context, id string) (*models.PredictionRecord, error) {
	return a.deps.Repo.GetPrediction(ctx, id)
}

// DeletePrediction removes one stored prediction run.
func (a *Analyzer) DeletePrediction(ctx context.Context, id string) error {
	return a.deps.Repo.DeletePrediction(ctx, id)
}
