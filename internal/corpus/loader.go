package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"

	"socialguard/internal/models"

	"go.uber.org/zap"
)

// Corpus is the ordered, validated training set. It is never mutated after Load.
type Corpus struct {
	examples []models.Exemplar
	report   LoadReport
}

// LoadReport summarises a load for the dataset-stats endpoint and for operators.
type LoadReport struct {
	Path        string
	Columns     []string
	RowsRead    int
	RowsSkipped int
}

// LoadError is returned when the source is unreadable or lacks the required
// columns. The corpus returned alongside it is empty but usable.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("corpus %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ErrMissingColumns reports a source without text/label columns.
var ErrMissingColumns = errors.New("source must contain text and label columns")

// Values treated as a missing label, matching the corpus export tooling.
var naValues = map[string]struct{}{
	"": {}, "nan": {}, "NaN": {}, "null": {}, "NULL": {},
}

// New builds a corpus from already validated exemplars.
func New(examples []models.Exemplar) *Corpus {
	cp := make([]models.Exemplar, len(examples))
	copy(cp, examples)
	return &Corpus{examples: cp, report: LoadReport{RowsRead: len(cp)}}
}

// Len returns the number of exemplars.
func (c *Corpus) Len() int { return len(c.examples) }

// At returns the i-th exemplar.
func (c *Corpus) At(i int) models.Exemplar { return c.examples[i] }

// Texts returns the exemplar texts in corpus order.
func (c *Corpus) Texts() []string {
	out := make([]string, len(c.examples))
	for i, ex := range c.examples {
		out[i] = ex.Text
	}
	return out
}

// Report returns load statistics.
func (c *Corpus) Report() LoadReport { return c.report }

// LabelCounts tallies exemplars per category.
func (c *Corpus) LabelCounts() models.CategoryCounts {
	var counts models.CategoryCounts
	for _, ex := range c.examples {
		counts.Add(ex.Label)
	}
	return counts
}

// LoadFile reads a CSV corpus. It always returns a non-nil corpus; a
// *LoadError means the corpus is empty and the service runs degraded.
func LoadFile(path string, logger *zap.Logger) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("Corpus source unreadable, continuing with empty corpus",
			zap.String("path", path), zap.Error(err))
		return &Corpus{report: LoadReport{Path: path}}, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	c, err := Load(f, logger)
	c.report.Path = path
	if err != nil {
		return c, &LoadError{Path: path, Err: err}
	}
	return c, nil
}

// Load parses CSV rows with at least "text" and "label" columns. Rows with a
// missing, unparseable or out-of-range label are skipped.
func Load(r io.Reader, logger *zap.Logger) (*Corpus, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		logger.Warn("Failed to read corpus header", zap.Error(err))
		return &Corpus{}, fmt.Errorf("failed to read header: %w", err)
	}

	columns := normalizeHeader(header)
	textIdx, labelIdx := indexOf(columns, "text"), indexOf(columns, "label")
	if textIdx < 0 || labelIdx < 0 {
		logger.Warn("Corpus source is missing required columns", zap.Strings("columns", columns))
		return &Corpus{report: LoadReport{Columns: columns}}, ErrMissingColumns
	}

	c := &Corpus{report: LoadReport{Columns: columns}}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				c.report.RowsSkipped++
				logger.Debug("Skipping malformed corpus line", zap.Int("line", line), zap.Error(err))
				continue
			}
			logger.Warn("Corpus read aborted", zap.Int("line", line), zap.Error(err))
			break
		}
		c.report.RowsRead++

		if textIdx >= len(record) || labelIdx >= len(record) {
			c.report.RowsSkipped++
			continue
		}

		label, ok := ParseLabel(record[labelIdx])
		if !ok {
			c.report.RowsSkipped++
			continue
		}

		c.examples = append(c.examples, models.Exemplar{Text: record[textIdx], Label: label})
	}

	counts := c.LabelCounts()
	logger.Info("Training corpus loaded",
		zap.Int("examples", len(c.examples)),
		zap.Int("rows_read", c.report.RowsRead),
		zap.Int("rows_skipped", c.report.RowsSkipped),
		zap.Ints("label_distribution", counts[:]))

	return c, nil
}

// ParseLabel coerces a raw label into a category. Integral numbers ("2",
// "2.0") are taken as is; anything else keeps only its digits ("label_2").
func ParseLabel(raw string) (models.Category, bool) {
	if _, missing := naValues[strings.TrimSpace(raw)]; missing {
		return 0, false
	}
	raw = strings.TrimSpace(raw)

	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		if f != math.Trunc(f) || f < 0 || f >= models.NumCategories {
			return 0, false
		}
		return models.CategoryFromInt(int(f))
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if digits == "" {
		return 0, false
	}
	v, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return models.CategoryFromInt(v)
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		out[i] = strings.ToLower(strings.TrimFunc(h, unicode.IsSpace))
	}
	return out
}

func indexOf(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}
