// Command evaluate replays a labelled test set through the classifier and
// prints per-category metrics.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"socialguard/internal/config"
	"socialguard/internal/engine"
	"socialguard/internal/evaluation"
	"socialguard/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	testFile   string
	outputPath string
)

var rootCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate the few-shot classifier on a labelled test set",
	Long: `Classifies every row of a CSV test set (comment,label) one by one,
prints a per-row trace, the classification report and the confusion matrix,
and writes the per-row results to a CSV file.`,
	SilenceUsage: true,
	RunE:         runEvaluate,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yml", "path to the YAML config")
	rootCmd.Flags().StringVarP(&testFile, "test-file", "t", "", "CSV test set with comment and label columns")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "data/fewshot_evaluation_results.csv", "where to write per-row results")
	_ = rootCmd.MarkFlagRequired("test-file")
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	samples, err := evaluation.LoadTestSet(testFile, logger)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no usable rows in %s", testFile)
	}

	eng := engine.New(cfg, logger)
	defer eng.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Evaluating %d comments from %s\n\n", len(samples), testFile)

	pacer := service.Pacer{Delay: cfg.Batch.Delay, FailureDelay: cfg.Batch.FailureDelay}
	rows, err := evaluation.Run(ctx, eng.Classifier, samples, pacer, func(i int, row evaluation.Row) {
		evaluation.PrintRow(out, i, len(samples), row)
	})
	if err != nil {
		// keep whatever finished before the interrupt
		logger.Warn("Evaluation interrupted", zap.Int("completed", len(rows)), zap.Error(err))
		if len(rows) == 0 {
			return err
		}
	}

	evaluation.Compute(rows).Render(out)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	defer f.Close()

	if err := evaluation.WriteResultsCSV(f, rows); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	fmt.Fprintf(out, "\nResults saved to %s\n", outputPath)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
