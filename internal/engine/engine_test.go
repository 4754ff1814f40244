package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"socialguard/internal/config"
	"socialguard/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WithoutProvidersUsesFallback(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "corpus.csv")
	req.NoError(os.WriteFile(path, []byte("text,label\nsen bir aptalsın,1\nçok güzel video,0\n"), 0o644))

	cfg := &config.Config{}
	cfg.Corpus.Path = path
	cfg.Gemini.APIKey = "YOUR_API_KEY_HERE"

	e := New(cfg, zap.NewNop())
	defer e.Close()

	req.Equal(2, e.Corpus.Len())
	req.False(e.Classifier.HasGenerator())
	req.Empty(e.ModelInfo())

	got := e.Classifier.Classify(context.Background(), "sen bir aptalsın")
	req.Equal(models.DirectInsult, got.Category)
	req.Equal(models.MethodFallbackVote, got.Method)
}

func TestNew_MissingCorpusDegrades(t *testing.T) {
	cfg := &config.Config{}
	cfg.Corpus.Path = filepath.Join(t.TempDir(), "missing.csv")

	e := New(cfg, zap.NewNop())
	require.Zero(t, e.Corpus.Len())
	require.Equal(t, models.MethodDefault, e.Classifier.Classify(context.Background(), "yorum").Method)
}
