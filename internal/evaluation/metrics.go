package evaluation

import "socialguard/internal/models"

// Metrics are precision, recall and F1 for one category or an average.
// Undefined ratios count as 0.
type Metrics struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// CategoryReport adds raw counts to a category's metrics.
type CategoryReport struct {
	Metrics
	Predicted int
	Correct   int
}

// Report summarises an evaluation run.
type Report struct {
	Total         int
	Accuracy      float64
	AvgConfidence float64
	PerCategory   [models.NumCategories]CategoryReport
	MacroAvg      Metrics
	WeightedAvg   Metrics
	// Confusion[true][predicted]
	Confusion [models.NumCategories][models.NumCategories]int
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func f1(p, r float64) float64 {
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// Compute derives the report from per-row outcomes. The macro average runs
// over the categories that occur as a true or a predicted label; categories
// absent from both sides are listed with zeros but not averaged.
func Compute(rows []Row) Report {
	rep := Report{Total: len(rows)}
	if len(rows) == 0 {
		return rep
	}

	correct := 0
	confidence := 0.0
	for _, r := range rows {
		if !r.True.Valid() || !r.Predicted.Valid() {
			continue
		}
		rep.Confusion[r.True][r.Predicted]++
		rep.PerCategory[r.True].Support++
		rep.PerCategory[r.Predicted].Predicted++
		if r.Correct() {
			rep.PerCategory[r.True].Correct++
			correct++
		}
		confidence += r.Confidence
	}
	rep.Accuracy = ratio(correct, len(rows))
	rep.AvgConfidence = confidence / float64(len(rows))

	totalSupport, present := 0, 0
	for i := range rep.PerCategory {
		c := &rep.PerCategory[i]
		c.Precision = ratio(c.Correct, c.Predicted)
		c.Recall = ratio(c.Correct, c.Support)
		c.F1 = f1(c.Precision, c.Recall)

		if c.Support > 0 || c.Predicted > 0 {
			present++
			rep.MacroAvg.Precision += c.Precision
			rep.MacroAvg.Recall += c.Recall
			rep.MacroAvg.F1 += c.F1
		}

		rep.WeightedAvg.Precision += c.Precision * float64(c.Support)
		rep.WeightedAvg.Recall += c.Recall * float64(c.Support)
		rep.WeightedAvg.F1 += c.F1 * float64(c.Support)
		totalSupport += c.Support
	}
	if present > 0 {
		rep.MacroAvg.Precision /= float64(present)
		rep.MacroAvg.Recall /= float64(present)
		rep.MacroAvg.F1 /= float64(present)
	}
	rep.MacroAvg.Support = totalSupport
	rep.WeightedAvg.Support = totalSupport
	if totalSupport > 0 {
		rep.WeightedAvg.Precision /= float64(totalSupport)
		rep.WeightedAvg.Recall /= float64(totalSupport)
		rep.WeightedAvg.F1 /= float64(totalSupport)
	}
	return rep
}
