package models

// Exemplar is a labelled example text used as classification context.
type Exemplar struct {
	Text  string   `json:"text"`
	Label Category `json:"label"`
}

// ScoredExemplar is an exemplar ranked against a query text.
type ScoredExemplar struct {
	Text       string   `json:"text"`
	Label      Category `json:"label"`
	Similarity float64  `json:"similarity"`
}

// Method records which path produced a prediction.
type Method string

const (
	MethodExternalModel Method = "EXTERNAL_MODEL"
	MethodFallbackVote  Method = "FALLBACK_VOTE"
	MethodDefault       Method = "DEFAULT"
)

// Confidence bounds every prediction is clamped to.
const (
	MinConfidence = 0.50
	MaxConfidence = 0.95
)

// Prediction is the outcome of classifying one text.
type Prediction struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
	Method     Method   `json:"method"`
}

// CategoryName is a convenience for response payloads.
func (p Prediction) CategoryName() string {
	return p.Category.Name()
}
