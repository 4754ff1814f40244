package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"socialguard/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a history record does not exist.
var ErrNotFound = errors.New("record not found")

// HistoryRepository stores analyses and prediction runs.
type HistoryRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new repository over an open database.
func NewHistoryRepository(db *sqlx.DB, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{db: db, logger: logger.Named("repository")}
}

// Close closes the underlying database.
func (r *HistoryRepository) Close() error {
	return r.db.Close()
}

type analysisRow struct {
	ID            string    `db:"id"`
	URL           string    `db:"url"`
	Platform      string    `db:"platform"`
	PostOwner     string    `db:"post_owner"`
	TotalComments int       `db:"total_comments"`
	AnalyzedUsers int       `db:"analyzed_users"`
	FlaggedUsers  int       `db:"flagged_users"`
	Threshold     float64   `db:"threshold"`
	UserAnalyses  string    `db:"user_analyses"`
	Comments      string    `db:"comments"`
	Duration      float64   `db:"analysis_duration"`
	CreatedAt     time.Time `db:"created_at"`
}

type predictionRow struct {
	ID             string    `db:"id"`
	Type           string    `db:"prediction_type"`
	Filename       string    `db:"filename"`
	TotalComments  int       `db:"total_comments"`
	CategoryCounts string    `db:"category_counts"`
	Predictions    string    `db:"predictions"`
	ProcessingTime float64   `db:"processing_time"`
	CreatedAt      time.Time `db:"created_at"`
}

// SaveAnalysis stores a, assigning its ID when empty.
func (r *HistoryRepository) SaveAnalysis(ctx context.Context, a *models.Analysis) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.AnalysisTimestamp.IsZero() {
		a.AnalysisTimestamp = time.Now()
	}

	users, err := json.Marshal(a.UserAnalyses)
	if err != nil {
		return fmt.Errorf("failed to encode user analyses: %w", err)
	}
	comments, err := json.Marshal(a.Comments)
	if err != nil {
		return fmt.Errorf("failed to encode comments: %w", err)
	}

	query := r.db.Rebind(`
		INSERT INTO analyses (
			id, url, platform, post_owner, total_comments, analyzed_users,
			flagged_users, threshold, user_analyses, comments, analysis_duration, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = r.db.ExecContext(ctx, query,
		a.ID, a.URL, a.Platform, a.PostOwner, a.TotalComments, a.AnalyzedUsers,
		a.FlaggedUsers, a.Threshold, string(users), string(comments), a.Duration,
		a.AnalysisTimestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	r.logger.Debug("Analysis saved", zap.String("id", a.ID), zap.Int("flagged_users", a.FlaggedUsers))
	return nil
}

// ListAnalyses returns summaries, newest first.
func (r *HistoryRepository) ListAnalyses(ctx context.Context, limit, offset int) ([]models.AnalysisSummary, error) {
	query := r.db.Rebind(`
		SELECT id, url, platform, post_owner, total_comments, analyzed_users,
		       flagged_users, threshold, analysis_duration, created_at
		FROM analyses
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`)
	var rows []analysisRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}

	out := make([]models.AnalysisSummary, len(rows))
	for i, row := range rows {
		out[i] = models.AnalysisSummary{
			ID:            row.ID,
			URL:           row.URL,
			Platform:      row.Platform,
			PostOwner:     row.PostOwner,
			TotalComments: row.TotalComments,
			AnalyzedUsers: row.AnalyzedUsers,
			FlaggedUsers:  row.FlaggedUsers,
			Threshold:     row.Threshold,
			Duration:      row.Duration,
			CreatedAt:     row.CreatedAt,
		}
	}
	return out, nil
}

// CountAnalyses returns how many analyses are stored.
func (r *HistoryRepository) CountAnalyses(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM analyses`); err != nil {
		return 0, fmt.Errorf("failed to count analyses: %w", err)
	}
	return n, nil
}

// GetAnalysis returns one analysis with its users and comments.
func (r *HistoryRepository) GetAnalysis(ctx context.Context, id string) (*models.Analysis, error) {
	var row analysisRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT * FROM analyses WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	a := &models.Analysis{
		ID:                row.ID,
		URL:               row.URL,
		Platform:          row.Platform,
		PostOwner:         row.PostOwner,
		TotalComments:     row.TotalComments,
		AnalyzedUsers:     row.AnalyzedUsers,
		FlaggedUsers:      row.FlaggedUsers,
		Threshold:         row.Threshold,
		Duration:          row.Duration,
		AnalysisTimestamp: row.CreatedAt,
	}
	if err := json.Unmarshal([]byte(row.UserAnalyses), &a.UserAnalyses); err != nil {
		return nil, fmt.Errorf("failed to decode user analyses: %w", err)
	}
	if err := json.Unmarshal([]byte(row.Comments), &a.Comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return a, nil
}

// DeleteAnalysis removes one analysis.
func (r *HistoryRepository) DeleteAnalysis(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "analyses", id)
}

// AnalysisStats aggregates over every stored analysis.
func (r *HistoryRepository) AnalysisStats(ctx context.Context) (*models.AnalysisStats, error) {
	var totals struct {
		Analyses int `db:"analyses"`
		Comments int `db:"comments"`
		Users    int `db:"users"`
		Flagged  int `db:"flagged"`
	}
	err := r.db.GetContext(ctx, &totals, `
		SELECT COUNT(*) AS analyses,
		       COALESCE(SUM(total_comments), 0) AS comments,
		       COALESCE(SUM(analyzed_users), 0) AS users,
		       COALESCE(SUM(flagged_users), 0) AS flagged
		FROM analyses
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate analyses: %w", err)
	}

	var platforms []struct {
		Platform string `db:"platform"`
		Count    int    `db:"count"`
	}
	err = r.db.SelectContext(ctx, &platforms,
		`SELECT platform, COUNT(*) AS count FROM analyses GROUP BY platform`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate platforms: %w", err)
	}

	stats := &models.AnalysisStats{
		TotalAnalyses:         totals.Analyses,
		TotalCommentsAnalyzed: totals.Comments,
		TotalUsersAnalyzed:    totals.Users,
		TotalFlaggedUsers:     totals.Flagged,
		PlatformDistribution:  make(map[string]int, len(platforms)),
	}
	for _, p := range platforms {
		stats.PlatformDistribution[p.Platform] = p.Count
	}
	return stats, nil
}

// SavePrediction stores a prediction run, assigning its ID when empty.
func (r *HistoryRepository) SavePrediction(ctx context.Context, p *models.PredictionRecord) error {
	if !p.Type.Valid() {
		return fmt.Errorf("invalid prediction type %q", p.Type)
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	counts, err := json.Marshal(p.CategoryCounts)
	if err != nil {
		return fmt.Errorf("failed to encode category counts: %w", err)
	}
	items, err := json.Marshal(p.Predictions)
	if err != nil {
		return fmt.Errorf("failed to encode predictions: %w", err)
	}

	query := r.db.Rebind(`
		INSERT INTO predictions (
			id, prediction_type, filename, total_comments, category_counts,
			predictions, processing_time, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = r.db.ExecContext(ctx, query,
		p.ID, string(p.Type), p.Filename, p.TotalComments, string(counts),
		string(items), p.ProcessingTime, p.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}

	r.logger.Debug("Prediction saved", zap.String("id", p.ID), zap.String("type", string(p.Type)))
	return nil
}

// ListPredictions returns runs newest first, without per-item results. An
// empty predType lists every type.
func (r *HistoryRepository) ListPredictions(ctx context.Context, predType models.PredictionType, limit, offset int) ([]models.PredictionRecord, error) {
	query := `
		SELECT id, prediction_type, filename, total_comments, category_counts,
		       '' AS predictions, processing_time, created_at
		FROM predictions`
	args := []interface{}{}
	if predType != "" {
		query += ` WHERE prediction_type = ?`
		args = append(args, string(predType))
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var rows []predictionRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}

	out := make([]models.PredictionRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

// CountPredictions returns how many runs of predType are stored. An empty
// predType counts every type.
func (r *HistoryRepository) CountPredictions(ctx context.Context, predType models.PredictionType) (int, error) {
	query := `SELECT COUNT(*) FROM predictions`
	args := []interface{}{}
	if predType != "" {
		query += ` WHERE prediction_type = ?`
		args = append(args, string(predType))
	}

	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("failed to count predictions: %w", err)
	}
	return n, nil
}

// GetPrediction returns one run with its per-item results.
func (r *HistoryRepository) GetPrediction(ctx context.Context, id string) (*models.PredictionRecord, error) {
	var row predictionRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT * FROM predictions WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return row.toRecord()
}

// DeletePrediction removes one prediction run.
func (r *HistoryRepository) DeletePrediction(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "predictions", id)
}

func (r *HistoryRepository) deleteByID(ctx context.Context, table, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM `+table+` WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (row predictionRow) toRecord() (*models.PredictionRecord, error) {
	rec := &models.PredictionRecord{
		ID:             row.ID,
		Type:           models.PredictionType(row.Type),
		Filename:       row.Filename,
		TotalComments:  row.TotalComments,
		ProcessingTime: row.ProcessingTime,
		CreatedAt:      row.CreatedAt,
	}
	if err := json.Unmarshal([]byte(row.CategoryCounts), &rec.CategoryCounts); err != nil {
		return nil, fmt.Errorf("failed to decode category counts: %w", err)
	}
	if row.Predictions != "" {
		if err := json.Unmarshal([]byte(row.Predictions), &rec.Predictions); err != nil {
			return nil, fmt.Errorf("failed to decode predictions: %w", err)
		}
	}
	return rec, nil
}
