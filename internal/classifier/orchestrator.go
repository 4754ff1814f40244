// Package classifier decides a category for one text: it asks the external
// generator with exemplar context and falls back to a similarity vote.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"socialguard/internal/exemplar"
	"socialguard/internal/models"
	"socialguard/internal/requestid"

	"go.uber.org/zap"
)

const (
	// SimilarLimit is how many ranked exemplars feed the prompt, the vote
	// and the confidence estimate.
	SimilarLimit = 5

	DefaultCallTimeout = 30 * time.Second
)

var (
	// ErrInvalidCategory reports a generator answer without a digit run in [0,4].
	ErrInvalidCategory = errors.New("invalid category in generator response")
	// ErrNoGenerator reports that no external generator is configured.
	ErrNoGenerator = errors.New("no generator configured")
)

var digitRun = regexp.MustCompile(`[0-9]+`)

// Ranker returns corpus exemplars ranked by similarity to text.
type Ranker interface {
	Similar(text string, k int) []models.ScoredExemplar
}

// Config tunes the orchestrator. The number of ranked exemplars is fixed at
// SimilarLimit because the vote and the confidence blend are calibrated to it.
type Config struct {
	CallTimeout time.Duration
}

// Result is a prediction plus what produced it.
type Result struct {
	Prediction models.Prediction
	Similar    []models.ScoredExemplar
	// ExternalErr is set when the generator failed or answered out of
	// range. It stays nil when no generator is configured.
	ExternalErr error
}

// Orchestrator is immutable after construction and safe for concurrent use.
type Orchestrator struct {
	generator TextGenerator
	ranker    Ranker
	static    exemplar.Set
	cfg       Config
	logger    *zap.Logger
}

// NewOrchestrator wires the classifier. generator may be nil, in which case
// every request takes the fallback path.
func NewOrchestrator(generator TextGenerator, ranker Ranker, static exemplar.Set, cfg Config, logger *zap.Logger) *Orchestrator {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	return &Orchestrator{
		generator: generator,
		ranker:    ranker,
		static:    static,
		cfg:       cfg,
		logger:    logger.Named("classifier"),
	}
}

// HasGenerator reports whether an external generator is configured.
func (o *Orchestrator) HasGenerator() bool {
	return o.generator != nil
}

// Classify never fails: every path ends in a valid prediction.
func (o *Orchestrator) Classify(ctx context.Context, text string) models.Prediction {
	return o.ClassifyDetailed(ctx, text).Prediction
}

// ClassifyDetailed runs one classification: rank, one external attempt,
// then fallback vote or default.
func (o *Orchestrator) ClassifyDetailed(ctx context.Context, text string) Result {
	similar := o.ranker.Similar(text, SimilarLimit)
	logger := o.logger.With(zap.String("request_id", requestid.From(ctx)))

	category, err := o.callExternal(ctx, text, similar)
	if err == nil {
		conf := round3(Confidence(category, similar))
		logger.Debug("External model prediction",
			zap.Int("category", int(category)),
			zap.Float64("confidence", conf),
			zap.Int("similar", len(similar)))
		return Result{
			Prediction: models.Prediction{Category: category, Confidence: conf, Method: models.MethodExternalModel},
			Similar:    similar,
		}
	}

	var externalErr error
	if !errors.Is(err, ErrNoGenerator) {
		logger.Warn("External classification failed, using fallback vote", zap.Error(err))
		externalErr = err
	}

	winner, conf, ok := Vote(similar)
	if !ok {
		logger.Debug("No exemplars available, returning default prediction")
		return Result{
			Prediction:  models.Prediction{Category: models.Neutral, Confidence: models.MinConfidence, Method: models.MethodDefault},
			Similar:     similar,
			ExternalErr: externalErr,
		}
	}

	return Result{
		Prediction:  models.Prediction{Category: winner, Confidence: round3(conf), Method: models.MethodFallbackVote},
		Similar:     similar,
		ExternalErr: externalErr,
	}
}

func (o *Orchestrator) callExternal(ctx context.Context, text string, similar []models.ScoredExemplar) (models.Category, error) {
	if o.generator == nil {
		return 0, ErrNoGenerator
	}

	callCtx, cancel := context.WithTimeout(ctx, o.cfg.CallTimeout)
	defer cancel()

	resp, err := o.generator.Generate(callCtx, BuildPrompt(o.static, similar, text))
	if err != nil {
		return 0, fmt.Errorf("generator call: %w", err)
	}
	return ParseCategory(resp)
}

// ParseCategory reads the first run of digits in resp as a category.
func ParseCategory(resp string) (models.Category, error) {
	run := digitRun.FindString(resp)
	if run == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCategory, truncate(resp, 40))
	}
	v, err := strconv.Atoi(run)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCategory, run)
	}
	c, ok := models.CategoryFromInt(v)
	if !ok {
		return 0, fmt.Errorf("%w: %d out of range", ErrInvalidCategory, v)
	}
	return c, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
