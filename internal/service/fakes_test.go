package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"socialguard/internal/classifier"
	"socialguard/internal/models"
	"socialguard/internal/repository"

	"go.uber.org/zap"
)

// scriptedClassifier answers from a text -> category table. Texts listed in
// failing come back as fallback predictions with an external error.
type scriptedClassifier struct {
	answers map[string]models.Category
	failing map[string]bool
	calls   []string
	onCall  func()
}

func (s *scriptedClassifier) ClassifyDetailed(_ context.Context, text string) classifier.Result {
	s.calls = append(s.calls, text)
	if s.onCall != nil {
		s.onCall()
	}
	c := s.answers[text]
	if s.failing[text] {
		return classifier.Result{
			Prediction:  models.Prediction{Category: c, Confidence: 0.5, Method: models.MethodFallbackVote},
			ExternalErr: errors.New("quota exceeded"),
		}
	}
	return classifier.Result{
		Prediction: models.Prediction{Category: c, Confidence: 0.9, Method: models.MethodExternalModel},
	}
}

func (s *scriptedClassifier) HasGenerator() bool { return true }

type recordingRanker struct {
	k int
}

func (r *recordingRanker) Similar(text string, k int) []models.ScoredExemplar {
	r.k = k
	return []models.ScoredExemplar{{Text: text, Label: models.Neutral, Similarity: 1}}
}

type memStore struct {
	mu          sync.Mutex
	analyses    []*models.Analysis
	predictions []*models.PredictionRecord
	failSaves   bool
}

func (m *memStore) SaveAnalysis(_ context.Context, a *models.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves {
		return errors.New("disk full")
	}
	a.ID = "analysis-1"
	m.analyses = append(m.analyses, a)
	return nil
}

func (m *memStore) ListAnalyses(_ context.Context, limit, offset int) ([]models.AnalysisSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AnalysisSummary
	for i := offset; i < len(m.analyses) && len(out) < limit; i++ {
		out = append(out, models.AnalysisSummary{ID: m.analyses[i].ID, Platform: m.analyses[i].Platform})
	}
	return out, nil
}

func (m *memStore) CountAnalyses(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.analyses), nil
}

func (m *memStore) GetAnalysis(_ context.Context, id string) (*models.Analysis, error) {
	for _, a := range m.analyses {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) DeleteAnalysis(context.Context, string) error { return repository.ErrNotFound }

func (m *memStore) AnalysisStats(context.Context) (*models.AnalysisStats, error) {
	return &models.AnalysisStats{TotalAnalyses: len(m.analyses)}, nil
}

func (m *memStore) SavePrediction(_ context.Context, p *models.PredictionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves {
		return errors.New("disk full")
	}
	m.predictions = append(m.predictions, p)
	return nil
}

func (m *memStore) matching(predType models.PredictionType) []*models.PredictionRecord {
	var out []*models.PredictionRecord
	for _, p := range m.predictions {
		if predType == "" || p.Type == predType {
			out = append(out, p)
		}
	}
	return out
}

func (m *memStore) ListPredictions(_ context.Context, predType models.PredictionType, limit, offset int) ([]models.PredictionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.matching(predType)
	var out []models.PredictionRecord
	for i := offset; i < len(all) && len(out) < limit; i++ {
		out = append(out, *all[i])
	}
	return out, nil
}

func (m *memStore) CountPredictions(_ context.Context, predType models.PredictionType) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.matching(predType)), nil
}

func (m *memStore) GetPrediction(context.Context, string) (*models.PredictionRecord, error) {
	return nil, repository.ErrNotFound
}

func (m *memStore) DeletePrediction(context.Context, string) error { return nil }

type fakeFetcher struct {
	result *models.ScrapeResult
	err    error
	gotMax int
}

func (f *fakeFetcher) FetchComments(_ context.Context, _ string, maxComments int) (*models.ScrapeResult, error) {
	f.gotMax = maxComments
	return f.result, f.err
}

type fakeNotifier struct {
	notified []*models.Analysis
}

func (f *fakeNotifier) NotifyFlagged(_ context.Context, a *models.Analysis) error {
	f.notified = append(f.notified, a)
	return nil
}

func newTestAnalyzer(deps Deps, cfg Config) *Analyzer {
	a := NewAnalyzer(deps, cfg, zap.NewNop())
	fixed := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }
	return a
}
