package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"scope3-dict/internal/dictionary/model"
	"scope3-dict/internal/dictionary/service"
	"scope3-dict/internal/fileio"
)

func learnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Learn dictionary entries from labelled files and print them",
		Long: `Learn dictionary entries from one or more training files.

Columns: item name, supplier name, amount, category label.

Examples:
  dictctl learn --train history.xlsx
  dictctl learn --train 2023.csv --train 2024.csv --source-marker=""`,
		RunE: runLearn,
	}
	cmd.Flags().StringArrayP("train", "t", nil, "training file (repeatable)")
	_ = cmd.MarkFlagRequired("train")
	return cmd
}

func runLearn(cmd *cobra.Command, _ []string) error {
	files, _ := cmd.Flags().GetStringArray("train")
	store := service.NewStore()
	if err := learnFiles(cmd.Context(), store, files); err != nil {
		return err
	}
	printEntries(os.Stdout, store.Snapshot())
	printStats(os.Stdout, store.Stats())
	return nil
}

// learnFiles обучает по каждому файлу отдельным проходом; проход с ошибкой словарь не меняет.
func learnFiles(ctx context.Context, store *service.Store, files []string) error {
	for _, path := range files {
		rows, err := readTraining(path)
		if err != nil {
			return err
		}

		learner := service.NewLearner(cfg.Options(), logger)
		bar := newLazyBar("[cyan]Learning " + path + "[reset]")
		learner.OnGroup = bar.set
		learned, err := store.Learn(ctx, learner, rows)
		bar.finish()
		if err != nil {
			return fmt.Errorf("learn %s: %w", path, err)
		}
		logger.Info().Str("file", path).Int("rows", len(rows)).Int("learned", len(learned)).Msg("learned")
	}
	return nil
}

func readTraining(path string) ([]model.TrainingRow, error) {
	recs, err := readFile(path)
	if err != nil {
		return nil, err
	}
	rows, issues := fileio.TrainingRows(recs)
	logIssues(path, issues)
	return rows, nil
}

func readFile(path string) ([]fileio.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return fileio.ReadRecords(f, path)
}

func logIssues(path string, issues []model.RowIssue) {
	for _, is := range issues {
		logger.Warn().Str("file", path).Int("line", is.Line).Str("reason", is.Reason).Msg("row skipped")
	}
}

func progressEnabled() bool { return !viper.GetBool("cli.no_progress") }
