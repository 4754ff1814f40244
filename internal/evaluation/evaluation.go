// Package evaluation scores the classifier against a labelled test set.
package evaluation

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"socialguard/internal/classifier"
	"socialguard/internal/corpus"
	"socialguard/internal/models"
	"socialguard/internal/service"

	"go.uber.org/zap"
)

// ErrMissingColumns is returned when the test set has no comment or label column.
var ErrMissingColumns = errors.New("test set must have comment and label columns")

// Sample is one labelled test comment.
type Sample struct {
	Comment string
	Label   models.Category
}

// Row is the outcome for one sample.
type Row struct {
	Comment    string
	True       models.Category
	Predicted  models.Category
	Confidence float64
	Method     models.Method
}

// Correct reports whether the prediction matches the label.
func (r Row) Correct() bool { return r.True == r.Predicted }

// Classifier decides a category for one text.
type Classifier interface {
	ClassifyDetailed(ctx context.Context, text string) classifier.Result
}

// LoadTestSet reads a CSV test set from path.
func LoadTestSet(path string, logger *zap.Logger) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open test set: %w", err)
	}
	defer f.Close()
	return ReadTestSet(f, logger)
}

// ReadTestSet parses comment,label rows. Rows missing either value, or with a
// label outside the category range, are dropped.
func ReadTestSet(r io.Reader, logger *zap.Logger) ([]Sample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingColumns, err)
	}
	commentCol, labelCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "comment":
			commentCol = i
		case "label":
			labelCol = i
		}
	}
	if commentCol < 0 || labelCol < 0 {
		return nil, ErrMissingColumns
	}

	var samples []Sample
	dropped := 0
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read test set: %w", err)
		}
		if commentCol >= len(fields) || labelCol >= len(fields) || strings.TrimSpace(fields[commentCol]) == "" {
			dropped++
			continue
		}
		label, ok := corpus.ParseLabel(fields[labelCol])
		if !ok {
			dropped++
			continue
		}
		samples = append(samples, Sample{Comment: fields[commentCol], Label: label})
	}

	logger.Info("Test set loaded", zap.Int("samples", len(samples)), zap.Int("dropped", dropped))
	return samples, nil
}

// Run classifies every sample in order, pacing between calls. progress, when
// set, is called after each sample.
func Run(ctx context.Context, cls Classifier, samples []Sample, pacer service.Pacer, progress func(i int, row Row)) ([]Row, error) {
	rows := make([]Row, 0, len(samples))
	for i, s := range samples {
		res := cls.ClassifyDetailed(ctx, s.Comment)
		row := Row{
			Comment:    s.Comment,
			True:       s.Label,
			Predicted:  res.Prediction.Category,
			Confidence: res.Prediction.Confidence,
			Method:     res.Prediction.Method,
		}
		rows = append(rows, row)
		if progress != nil {
			progress(i, row)
		}

		if i == len(samples)-1 {
			break
		}
		if err := pacer.Wait(ctx, res.ExternalErr != nil); err != nil {
			return rows, err
		}
	}
	return rows, nil
}

// WriteResultsCSV writes comment,true_label,predicted_label,confidence,correct.
func WriteResultsCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"comment", "true_label", "predicted_label", "confidence", "correct"}); err != nil {
		return err
	}
	for _, r := range rows {
		correct := "0"
		if r.Correct() {
			correct = "1"
		}
		if err := cw.Write([]string{
			r.Comment,
			strconv.Itoa(int(r.True)),
			strconv.Itoa(int(r.Predicted)),
			strconv.FormatFloat(r.Confidence, 'f', 3, 64),
			correct,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
