package evaluation

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"socialguard/internal/models"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

var (
	matchStyle   = color.New(color.FgGreen)
	missStyle    = color.New(color.FgRed)
	headingStyle = color.New(color.Bold, color.FgCyan)
)

// PrintRow writes one coloured progress line.
func PrintRow(w io.Writer, i, total int, row Row) {
	mark, style := "✔", matchStyle
	if !row.Correct() {
		mark, style = "✘", missStyle
	}
	fmt.Fprintf(w, "[%d/%d] %q\n", i+1, total, truncate(row.Comment, 80))
	fmt.Fprintln(w, style.Sprintf("  %s true=%d predicted=%d (%s) confidence=%.3f %s",
		mark, row.True, row.Predicted, row.Predicted.Name(), row.Confidence, row.Method))
}

func heading(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render(strings.ToUpper(title)))
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	return table
}

func f4(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }

// Render writes the summary, classification report, confusion matrix and
// per-category breakdown.
func (r Report) Render(w io.Writer) {
	heading(w, "Evaluation results")
	fmt.Fprintf(w, "Samples:        %d\n", r.Total)
	fmt.Fprintf(w, "Accuracy:       %s (%.2f%%)\n", f4(r.Accuracy), r.Accuracy*100)
	fmt.Fprintf(w, "Avg confidence: %s\n", f4(r.AvgConfidence))

	heading(w, "Classification report")
	report := newTable(w, []string{"Category", "Precision", "Recall", "F1", "Support"})
	for _, c := range models.Categories {
		m := r.PerCategory[c]
		report.Append([]string{
			fmt.Sprintf("%d: %s", c, c.Name()),
			f4(m.Precision), f4(m.Recall), f4(m.F1), strconv.Itoa(m.Support),
		})
	}
	report.Append([]string{"accuracy", "", "", f4(r.Accuracy), strconv.Itoa(r.Total)})
	for _, avg := range []struct {
		name string
		m    Metrics
	}{{"macro avg", r.MacroAvg}, {"weighted avg", r.WeightedAvg}} {
		report.Append([]string{avg.name, f4(avg.m.Precision), f4(avg.m.Recall), f4(avg.m.F1), strconv.Itoa(avg.m.Support)})
	}
	report.Render()

	heading(w, "Confusion matrix")
	header := []string{""}
	for _, c := range models.Categories {
		header = append(header, fmt.Sprintf("Pred-%d", c))
	}
	matrix := newTable(w, header)
	for _, t := range models.Categories {
		line := []string{fmt.Sprintf("True-%d", t)}
		for _, p := range models.Categories {
			line = append(line, strconv.Itoa(r.Confusion[t][p]))
		}
		matrix.Append(line)
	}
	matrix.Render()

	heading(w, "Per-category analysis")
	detail := newTable(w, []string{"Category", "True", "Predicted", "Correct", "Accuracy"})
	for _, c := range models.Categories {
		m := r.PerCategory[c]
		detail.Append([]string{
			fmt.Sprintf("%d: %s", c, c.Name()),
			strconv.Itoa(m.Support), strconv.Itoa(m.Predicted), strconv.Itoa(m.Correct),
			fmt.Sprintf("%s (%.2f%%)", f4(m.Recall), m.Recall*100),
		})
	}
	detail.Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
