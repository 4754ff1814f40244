package similarity

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxFeatures caps the vocabulary; the most frequent terms are kept.
const MaxFeatures = 1000

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// fold lowercases with Turkish rules (İ->i, I->ı). A caser holds state, so
// one is created per call.
func fold(s string) string {
	return cases.Lower(language.Turkish).String(s)
}

// normalize folds case and collapses whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(fold(s)), " ")
}

// terms returns the unigrams followed by the bigrams of text.
func terms(text string) []string {
	tokens := tokenPattern.FindAllString(fold(text), -1)
	out := make([]string, 0, 2*len(tokens))
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

// vector is a sparse, L2-normalised term weight vector.
type vector map[int]float64

func (v vector) dot(o vector) float64 {
	if len(o) < len(v) {
		v, o = o, v
	}
	var sum float64
	for idx, w := range v {
		sum += w * o[idx]
	}
	return sum
}

// TFIDF is a term-weighted vector space over unigrams and bigrams of a
// fixed document set. It is read-only after NewTFIDF.
type TFIDF struct {
	vocab      map[string]int
	idf        []float64
	docs       []vector
	normalized []string
}

// NewTFIDF fits the vocabulary and document vectors. Idf uses the smoothed
// form ln((1+n)/(1+df))+1.
func NewTFIDF(texts []string, maxFeatures int) *TFIDF {
	if maxFeatures <= 0 {
		maxFeatures = MaxFeatures
	}

	docTerms := make([][]string, len(texts))
	df := make(map[string]int)
	total := make(map[string]int)
	for i, text := range texts {
		docTerms[i] = terms(text)
		for _, term := range docTerms[i] {
			total[term]++
		}
		for _, term := range lo.Uniq(docTerms[i]) {
			df[term]++
		}
	}

	kept := lo.Keys(total)
	sort.Slice(kept, func(i, j int) bool {
		if total[kept[i]] != total[kept[j]] {
			return total[kept[i]] > total[kept[j]]
		}
		return kept[i] < kept[j]
	})
	if len(kept) > maxFeatures {
		kept = kept[:maxFeatures]
	}
	sort.Strings(kept)

	t := &TFIDF{
		vocab:      make(map[string]int, len(kept)),
		idf:        make([]float64, len(kept)),
		docs:       make([]vector, len(texts)),
		normalized: make([]string, len(texts)),
	}
	n := float64(len(texts))
	for i, term := range kept {
		t.vocab[term] = i
		t.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	for i, text := range texts {
		t.docs[i] = t.vectorize(docTerms[i])
		t.normalized[i] = normalize(text)
	}
	return t
}

// VocabularySize returns the number of retained terms.
func (t *TFIDF) VocabularySize() int { return len(t.vocab) }

func (t *TFIDF) vectorize(ts []string) vector {
	v := make(vector)
	for _, term := range ts {
		if idx, ok := t.vocab[term]; ok {
			v[idx]++
		}
	}
	var norm float64
	for idx, tf := range v {
		w := tf * t.idf[idx]
		v[idx] = w
		norm += w * w
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for idx := range v {
		v[idx] /= norm
	}
	return v
}

// Similarity returns the cosine similarity of a and b in this space.
// Texts equal after normalisation always score 1.0.
func (t *TFIDF) Similarity(a, b string) float64 {
	na := normalize(a)
	if na != "" && na == normalize(b) {
		return 1.0
	}
	return math.Min(t.vectorize(terms(a)).dot(t.vectorize(terms(b))), 1.0)
}

// Name implements Strategy.
func (t *TFIDF) Name() string { return "tfidf" }

// Scores implements Strategy. It fails with ErrUnavailable when the
// vocabulary is empty.
func (t *TFIDF) Scores(query string) ([]float64, error) {
	if len(t.vocab) == 0 {
		return nil, ErrUnavailable
	}
	q := t.vectorize(terms(query))
	nq := normalize(query)
	scores := make([]float64, len(t.docs))
	for i, doc := range t.docs {
		if nq != "" && nq == t.normalized[i] {
			scores[i] = 1.0
			continue
		}
		scores[i] = math.Min(q.dot(doc), 1.0)
	}
	return scores, nil
}
