package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"socialguard/internal/models"
	"socialguard/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handler handles HTTP requests
type Handler struct {
	analyzer *service.Analyzer
	logger   *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(analyzer *service.Analyzer, logger *zap.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		logger:   logger.Named("handler"),
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		// Classification
		api.GET("/labels", h.Labels)
		api.GET("/dataset-stats", h.DatasetStats)
		api.POST("/similar-examples", h.SimilarExamples)
		api.POST("/predict", h.Predict)
		api.POST("/batch-predict", h.BatchPredict)

		// Datasets
		api.POST("/upload-dataset", h.UploadDataset)
		api.GET("/download-dataset/:filename", h.DownloadDataset)

		// Author risk analysis
		api.POST("/social-media-analysis", h.SocialMediaAnalysis)
		api.POST("/analyze-comments", h.AnalyzeComments)
		api.GET("/detection-threshold", h.DetectionThreshold)

		// History
		api.GET("/analyses/history", h.ListAnalyses)
		api.GET("/analyses/stats/summary", h.AnalysisStats)
		api.GET("/analyses/:id", h.GetAnalysis)
		api.DELETE("/analyses/:id", h.DeleteAnalysis)
		api.GET("/predictions/history", h.ListPredictions)
		api.GET("/predictions/:id", h.GetPrediction)
		api.DELETE("/predictions/:id", h.DeletePrediction)
	}

	// Health check
	r.GET("/health", h.HealthCheck)
}

// fail maps service errors to status codes. Anything unexpected is logged
// and answered with msg.
func (h *Handler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrEmptyComment),
		errors.Is(err, service.ErrNoComments),
		errors.Is(err, service.ErrInvalidThreshold),
		errors.Is(err, service.ErrUnsupportedFormat),
		errors.Is(err, service.ErrMissingColumns):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrScraperUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func page(c *gin.Context) (limit, offset int, ok bool) {
	limit, offset = defaultPageSize, 0
	var err error
	if v := c.Query("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 1 || limit > maxPageSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return 0, 0, false
		}
	}
	if v := c.Query("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
			return 0, 0, false
		}
	}
	return limit, offset, true
}

// HealthCheck reports liveness and the configured model
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"model":  h.analyzer.ModelInfo(),
	})
}

// Labels returns the category name and id maps
func (h *Handler) Labels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"labels":         models.LabelMap(),
		"reverse_labels": models.ReverseLabelMap(),
	})
}

// DatasetStats describes the loaded corpus
func (h *Handler) DatasetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.analyzer.DatasetStats())
}

// SimilarExamples ranks corpus exemplars against a comment
func (h *Handler) SimilarExamples(c *gin.Context) {
	var req models.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.analyzer.SimilarExamples(c.Request.Context(), req.Comment, req.Limit)
	if err != nil {
		h.fail(c, err, "failed to find similar examples")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Predict classifies one comment
func (h *Handler) Predict(c *gin.Context) {
	var req models.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.analyzer.Predict(c.Request.Context(), req.Comment)
	if err != nil {
		h.fail(c, err, "prediction failed")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// BatchPredict classifies a list of comments
func (h *Handler) BatchPredict(c *gin.Context) {
	var req models.BatchPredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.analyzer.PredictBatch(c.Request.Context(), req.Comments)
	if err != nil {
		h.fail(c, err, "batch prediction failed")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UploadDataset labels an uploaded CSV or JSON dataset
func (h *Handler) UploadDataset(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.fail(c, err, "failed to read upload")
		return
	}
	defer f.Close()

	resp, err := h.analyzer.LabelDataset(c.Request.Context(), fh.Filename, f)
	if err != nil {
		h.fail(c, err, "dataset labelling failed")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DownloadDataset serves a labelled dataset
func (h *Handler) DownloadDataset(c *gin.Context) {
	path, err := h.analyzer.DatasetFile(c.Param("filename"))
	if err != nil {
		h.fail(c, err, "download failed")
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

// SocialMediaAnalysis scrapes a post and profiles its commenters
func (h *Handler) SocialMediaAnalysis(c *gin.Context) {
	var req models.SocialMediaAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	analysis, err := h.analyzer.AnalyzeSocialMedia(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "social media analysis failed")
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// AnalyzeComments profiles the authors of comments sent in the request
func (h *Handler) AnalyzeComments(c *gin.Context) {
	var req models.AnalyzeCommentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	analysis, err := h.analyzer.AnalyzeComments(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "comment analysis failed")
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// DetectionThreshold returns the flagging defaults
func (h *Handler) DetectionThreshold(c *gin.Context) {
	c.JSON(http.StatusOK, h.analyzer.DetectionThreshold())
}

// ListAnalyses returns stored analyses
func (h *Handler) ListAnalyses(c *gin.Context) {
	limit, offset, ok := page(c)
	if !ok {
		return
	}

	analyses, total, err := h.analyzer.ListAnalyses(c.Request.Context(), limit, offset)
	if err != nil {
		h.fail(c, err, "failed to list analyses")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"analyses": analyses,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetAnalysis returns one stored analysis
func (h *Handler) GetAnalysis(c *gin.Context) {
	analysis, err := h.analyzer.GetAnalysis(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to get analysis")
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// DeleteAnalysis removes one stored analysis
func (h *Handler) DeleteAnalysis(c *gin.Context) {
	if err := h.analyzer.DeleteAnalysis(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "failed to delete analysis")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "analysis deleted"})
}

// AnalysisStats summarises stored analyses
func (h *Handler) AnalysisStats(c *gin.Context) {
	stats, err := h.analyzer.AnalysisStats(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to get stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListPredictions returns stored prediction runs, optionally filtered by type
func (h *Handler) ListPredictions(c *gin.Context) {
	limit, offset, ok := page(c)
	if !ok {
		return
	}
	predType := models.PredictionType(c.Query("type"))
	if predType != "" && !predType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be one of single, batch, dataset"})
		return
	}

	predictions, total, err := h.analyzer.ListPredictions(c.Request.Context(), predType, limit, offset)
	if err != nil {
		h.fail(c, err, "failed to list predictions")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"predictions": predictions,
		"total":       total,
		"limit":       limit,
		"offset":      offset,
	})
}

// GetPrediction returns one stored prediction run
func (h *Handler) GetPrediction(c *gin.Context) {
	prediction, err := h.analyzer.GetPrediction(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to get prediction")
		return
	}
	c.JSON(http.StatusOK, prediction)
}

// DeletePrediction removes one stored prediction run
func (h *Handler) DeletePrediction(c *gin.Context) {
	if err := h.analyzer.DeletePrediction(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "failed to delete prediction")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "prediction deleted"})
}
