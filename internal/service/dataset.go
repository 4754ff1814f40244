package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"socialguard/internal/classifier"
	"socialguard/internal/models"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// sampleRows is how many labelled rows the upload response previews.
const sampleRows = 5

var (
	ErrUnsupportedFormat = errors.New("dataset must be a .csv or .json file")
	ErrMissingColumns    = errors.New("dataset is missing required columns")
)

var (
	requiredColumns = []string{"comment", "username", "platform"}
	labeledColumns  = []string{"comment", "label", "username", "platform"}
)

// LabelDataset classifies every comment of an uploaded dataset, writes the
// labelled rows as JSON to the output directory and records the run.
func (a *Analyzer) LabelDataset(ctx context.Context, filename string, r io.Reader) (*models.DatasetUploadResponse, error) {
	rows, err := ReadDataset(filename, r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoComments
	}
	start := a.now()

	texts := lo.Map(rows, func(row models.DatasetRow, _ int) string { return row.Comment })
	items := make([]models.PredictionItem, 0, len(rows))
	var counts models.CategoryCounts

	err = a.classifyEach(ctx, texts, func(i int, res classifier.Result) {
		rows[i].Label = int(res.Prediction.Category)
		counts.Add(res.Prediction.Category)

		item := predictionItem(rows[i].Comment, res.Prediction)
		item.Username = rows[i].Username
		item.Platform = rows[i].Platform
		items = append(items, item)
	})
	if err != nil {
		return nil, err
	}

	base := filepath.Base(filename)
	outputName := "labeled_" + strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
	if err := a.writeDataset(outputName, rows); err != nil {
		return nil, err
	}

	a.savePrediction(ctx, &models.PredictionRecord{
		Type:           models.PredictionDataset,
		Filename:       base,
		TotalComments:  len(rows),
		CategoryCounts: counts,
		Predictions:    items,
		ProcessingTime: a.now().Sub(start).Seconds(),
	})

	a.log(ctx).Info("Dataset labelled",
		zap.String("filename", base),
		zap.String("output", outputName),
		zap.Int("rows", len(rows)))

	sample := lo.Map(rows[:min(sampleRows, len(rows))], func(row models.DatasetRow, _ int) models.DatasetSample {
		return models.DatasetSample{
			Comment:   row.Comment,
			Label:     row.Label,
			LabelName: models.Category(row.Label).Name(),
			Username:  row.Username,
			Platform:  row.Platform,
		}
	})

	return &models.DatasetUploadResponse{
		Message:     "Veri seti başarıyla işlendi",
		TotalRows:   len(rows),
		Columns:     labeledColumns,
		SampleData:  sample,
		OutputFile:  outputName,
		DownloadURL: "/api/v1/download-dataset/" + outputName,
	}, nil
}

func (a *Analyzer) writeDataset(name string, rows []models.DatasetRow) error {
	if err := os.MkdirAll(a.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode labelled dataset: %w", err)
	}
	if err := os.WriteFile(filepath.Join(a.cfg.OutputDir, name), data, 0644); err != nil {
		return fmt.Errorf("failed to write labelled dataset: %w", err)
	}
	return nil
}

// DatasetFile resolves a labelled dataset name to its path in the output
// directory. Names that would leave the directory are reported as not found.
func (a *Analyzer) DatasetFile(name string) (string, error) {
	if name == "" || filepath.Base(name) != name || !strings.HasSuffix(name, ".json") {
		return "", ErrNotFound
	}
	path := filepath.Join(a.cfg.OutputDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}
	return path, nil
}

// ReadDataset parses an uploaded CSV or JSON dataset. Column names are
// case-insensitive; comment, username and platform are required.
func ReadDataset(filename string, r io.Reader) ([]models.DatasetRow, error) {
	var records []map[string]string
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		records, err = readCSVRecords(r)
	case ".json":
		records, err = readJSONRecords(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}

	if len(records) > 0 {
		missing := lo.Filter(requiredColumns, func(col string, _ int) bool {
			_, ok := records[0][col]
			return !ok
		})
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
		}
	}

	return lo.Map(records, func(rec map[string]string, _ int) models.DatasetRow {
		return models.DatasetRow{
			Comment:  rec["comment"],
			Username: rec["username"],
			Platform: rec["platform"],
		}
	}), nil
}

func readCSVRecords(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	header = lo.Map(header, func(h string, _ int) string {
		return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	})

	var records []map[string]string
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		rec := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(fields) {
				rec[col] = fields[i]
			} else {
				rec[col] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func readJSONRecords(r io.Reader) ([]map[string]string, error) {
	var raw []map[string]interface{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode json dataset: %w", err)
	}

	return lo.Map(raw, func(obj map[string]interface{}, _ int) map[string]string {
		rec := make(map[string]string, len(obj))
		for k, v := range obj {
			key := strings.ToLower(strings.TrimSpace(k))
			if v == nil {
				rec[key] = ""
				continue
			}
			if s, ok := v.(string); ok {
				rec[key] = s
			} else {
				rec[key] = fmt.Sprint(v)
			}
		}
		return rec
	}), nil
}
