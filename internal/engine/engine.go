// Package engine assembles the classification stack from configuration.
package engine

import (
	"socialguard/internal/classifier"
	"socialguard/internal/config"
	"socialguard/internal/corpus"
	"socialguard/internal/exemplar"
	"socialguard/internal/llm"
	"socialguard/internal/similarity"

	"go.uber.org/zap"
)

// Engine is the classification stack shared by the server and the
// evaluation CLI.
type Engine struct {
	Corpus     *corpus.Corpus
	Index      *similarity.Index
	Classifier *classifier.Orchestrator
	generator  *llm.MultiProviderClient
}

// New loads the corpus, builds the similarity index and connects the
// generative providers. Missing corpus or providers degrade the engine
// instead of failing it.
func New(cfg *config.Config, logger *zap.Logger) *Engine {
	c, err := corpus.LoadFile(cfg.Corpus.Path, logger)
	if err != nil {
		logger.Warn("Running with a degraded corpus", zap.Error(err))
	}
	ix := similarity.NewIndex(c, logger)

	e := &Engine{Corpus: c, Index: ix}

	// interface stays nil unless a client exists
	var generator classifier.TextGenerator
	if providers := cfg.GenerativeProviders(); len(providers) > 0 {
		client, err := llm.NewMultiProviderClient(llm.MultiProviderConfig{
			Providers:   providers,
			MaxFailures: cfg.MaxFailuresBeforeSwitch,
		}, logger)
		if err != nil {
			logger.Warn("No generative provider available, using fallback vote only", zap.Error(err))
		} else {
			e.generator = client
			generator = client
			logger.Info("Multi-provider client initialized", zap.Int("provider_count", len(providers)))
		}
	} else {
		logger.Warn("No generative provider configured, using fallback vote only")
	}

	e.Classifier = classifier.NewOrchestrator(generator, ix, exemplar.Static(), classifier.Config{
		CallTimeout: cfg.Classifier.CallTimeout,
	}, logger)
	return e
}

// ModelInfo describes the active provider, or nothing without one.
func (e *Engine) ModelInfo() map[string]interface{} {
	if e.generator == nil {
		return map[string]interface{}{}
	}
	info := e.generator.GetModelInfo()
	info["providers"] = e.generator.GetProvidersInfo()
	return info
}

// Close releases provider clients.
func (e *Engine) Close() error {
	if e.generator == nil {
		return nil
	}
	return e.generator.Close()
}
