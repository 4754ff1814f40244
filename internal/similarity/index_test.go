package similarity

import (
	"errors"
	"strings"
	"testing"

	"socialguard/internal/corpus"
	"socialguard/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testCorpus() *corpus.Corpus {
	return corpus.New([]models.Exemplar{
		{Text: "Bu çok güzel bir paylaşım", Label: models.Neutral},
		{Text: "Sen gerçekten aptalsın ya", Label: models.DirectInsult},
		{Text: "Kadınlar hep böyle yapar işte", Label: models.SexistImplication},
		{Text: "Aferin sana çok başarılısın (!)", Label: models.Sarcasm},
		{Text: "Ne kadar şişmansın sen", Label: models.AppearanceCriticism},
		{Text: "Çok güzel bir video olmuş", Label: models.Neutral},
	})
}

func TestSelfSimilarityIsOne(t *testing.T) {
	texts := []string{
		"Bu çok güzel bir paylaşım",
		"Sen gerçekten aptalsın ya",
		"İSTANBUL çok kalabalık",
		"tek",
	}
	tfidf := NewTFIDF(testCorpus().Texts(), MaxFeatures)

	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			require.InDelta(t, 1.0, tfidf.Similarity(text, text), 1e-9)
			require.InDelta(t, 1.0, Jaccard(text, text), 1e-9)
		})
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"partial overlap", "a b c", "b c d", 0.5},
		{"case folded", "Merhaba DÜNYA", "merhaba dünya", 1.0},
		{"turkish dotted capital", "İyi akşamlar", "iyi akşamlar", 1.0},
		{"whitespace collapsed", "  selam   millet ", "selam millet", 1.0},
		{"disjoint", "selam", "güle güle", 0.0},
		{"empty side", "", "selam", 0.0},
		{"both empty", "", "", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, Jaccard(tt.a, tt.b), 1e-9)
		})
	}
}

func TestTFIDF_VocabularyCap(t *testing.T) {
	req := require.New(t)
	texts := []string{"a b c", "a b", "a"}

	full := NewTFIDF(texts, MaxFeatures)
	// a, b, c, "a b", "b c"
	req.Equal(5, full.VocabularySize())

	capped := NewTFIDF(texts, 2)
	req.Equal(2, capped.VocabularySize())
	// "a b" and "b" tie on frequency; ties resolve alphabetically
	_, hasA := capped.vocab["a"]
	_, hasBigram := capped.vocab["a b"]
	req.True(hasA)
	req.True(hasBigram)
}

func TestTFIDF_UnrelatedTextScoresZero(t *testing.T) {
	tfidf := NewTFIDF(testCorpus().Texts(), MaxFeatures)
	require.Zero(t, tfidf.Similarity("xyz", "Bu çok güzel bir paylaşım"))
}

func TestIndex_ExactMatchRankedFirst(t *testing.T) {
	req := require.New(t)
	ix := NewIndex(testCorpus(), zap.NewNop())
	req.Equal(6, ix.Len())

	got := ix.Similar("Bu çok güzel bir paylaşım", 5)
	req.Len(got, 5)
	req.Equal("Bu çok güzel bir paylaşım", got[0].Text)
	req.Equal(models.Neutral, got[0].Label)
	req.InDelta(1.0, got[0].Similarity, 1e-9)
	for i := 1; i < len(got); i++ {
		req.LessOrEqual(got[i].Similarity, got[i-1].Similarity)
	}
	// shares "çok güzel bir"
	req.Equal("Çok güzel bir video olmuş", got[1].Text)
}

func TestIndex_EmptyCorpus(t *testing.T) {
	ix := NewIndex(corpus.New(nil), zap.NewNop())
	got := ix.Similar("herhangi bir metin", 5)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestIndex_TiesKeepCorpusOrder(t *testing.T) {
	req := require.New(t)
	ix := NewIndex(testCorpus(), zap.NewNop())

	got := ix.Similar("zzz", 3)
	req.Len(got, 3)
	want := testCorpus().Texts()[:3]
	for i, ex := range got {
		req.Zero(ex.Similarity)
		req.Equal(want[i], ex.Text)
	}
}

func TestIndex_DefaultLimit(t *testing.T) {
	ix := NewIndex(testCorpus(), zap.NewNop())
	require.Len(t, ix.Similar("güzel", 0), DefaultLimit)
}

func TestIndex_FallsBackToJaccardOnEmptyVocabulary(t *testing.T) {
	req := require.New(t)
	c := corpus.New([]models.Exemplar{
		{Text: "!!! ???", Label: models.Sarcasm},
		{Text: "...", Label: models.Neutral},
	})
	ix := NewIndex(c, zap.NewNop())

	got := ix.Similar("!!! ???", 2)
	req.Len(got, 2)
	req.Equal("!!! ???", got[0].Text)
	req.InDelta(1.0, got[0].Similarity, 1e-9)
	req.Zero(got[1].Similarity)
}

type failingStrategy struct{}

func (failingStrategy) Name() string { return "failing" }

func (failingStrategy) Scores(string) ([]float64, error) {
	return nil, errors.New("boom")
}

func TestIndex_StrategyOrder(t *testing.T) {
	req := require.New(t)
	examples := []models.Exemplar{
		{Text: "selam millet", Label: models.Neutral},
		{Text: "mal mısın", Label: models.DirectInsult},
	}
	texts := []string{examples[0].Text, examples[1].Text}

	ix := NewIndexWithStrategies(examples, zap.NewNop(), failingStrategy{}, NewJaccard(texts))
	got := ix.Similar("mal mısın sen", 1)
	req.Len(got, 1)
	req.Equal(models.DirectInsult, got[0].Label)
	req.InDelta(2.0/3.0, got[0].Similarity, 1e-9)

	none := NewIndexWithStrategies(examples, zap.NewNop(), failingStrategy{})
	req.Empty(none.Similar("mal mısın", 1))
}

func TestIndex_RoundTripFromLoadedCorpus(t *testing.T) {
	req := require.New(t)
	src := strings.Join([]string{
		"text,label",
		"Harika bir içerik eline sağlık,0",
		"Gerizekalı mısın sen,1",
		"Sen kadınsın ne anlarsın,2",
		"Saçların berbat keşke değiştirsen,4",
	}, "\n")
	c, err := corpus.Load(strings.NewReader(src), zap.NewNop())
	req.NoError(err)

	ix := NewIndex(c, zap.NewNop())
	for i := 0; i < c.Len(); i++ {
		ex := c.At(i)
		got := ix.Similar(ex.Text, 5)
		req.Equal(ex.Text, got[0].Text)
		req.Equal(ex.Label, got[0].Label)
		req.InDelta(1.0, got[0].Similarity, 1e-9)
	}
}
