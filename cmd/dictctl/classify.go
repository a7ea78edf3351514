package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"scope3-dict/internal/dictionary/model"
	"scope3-dict/internal/dictionary/service"
	"scope3-dict/internal/fileio"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Learn from training files, then classify a query file",
		Long: `Learn dictionary entries from training files, add manual entries,
then classify every row of the query file (item name, supplier name, amount).

Manual entries use "keywords|category|code", keywords separated by "," or "、".

Examples:
  dictctl classify -t history.xlsx -q invoices.csv
  dictctl classify -t history.xlsx -q invoices.xlsx --out results.xlsx
  dictctl classify -q invoices.csv --entry "AWS,クラウド|インターネット附随サービス|734101"`,
		RunE: runClassify,
	}
	cmd.Flags().StringArrayP("train", "t", nil, "training file (repeatable)")
	cmd.Flags().StringP("query", "q", "", "file to classify")
	cmd.Flags().StringArrayP("entry", "e", nil, `manual entry "keywords|category|code" (repeatable)`)
	cmd.Flags().StringP("out", "o", "", "write results to .csv or .xlsx")
	cmd.Flags().Int("workers", 0, "parallel matching workers (0 = number of CPUs)")
	_ = cmd.MarkFlagRequired("query")

	_ = viper.BindPFlag("match.workers", cmd.Flags().Lookup("workers"))
	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	trainFiles, _ := cmd.Flags().GetStringArray("train")
	manual, _ := cmd.Flags().GetStringArray("entry")
	queryFile, _ := cmd.Flags().GetString("query")
	out, _ := cmd.Flags().GetString("out")

	store := service.NewStore()
	if err := learnFiles(ctx, store, trainFiles); err != nil {
		return err
	}
	for _, raw := range manual {
		if _, err := addManual(store, raw); err != nil {
			return fmt.Errorf("entry %q: %w", raw, err)
		}
	}

	snapshot := store.Snapshot()
	if len(snapshot) == 0 {
		return fmt.Errorf("%w: pass --train or --entry", service.ErrEmptyDictionary)
	}

	recs, err := readFile(queryFile)
	if err != nil {
		return err
	}
	queries, issues := fileio.QueryRows(recs)
	logIssues(queryFile, issues)

	matcher := service.NewMatcher(cfg.Stopwords)
	bar := newLazyBar("[cyan]Classifying[reset]")
	matcher.Progress = bar.add(len(queries))
	results, err := matcher.MatchBatch(ctx, queries, snapshot, viper.GetInt("match.workers"))
	bar.finish()
	if err != nil {
		return fmt.Errorf("classify %s: %w", queryFile, err)
	}

	printResults(os.Stdout, results)
	printStats(os.Stdout, store.Stats())
	printSummary(os.Stdout, service.Summarize(results), len(issues))

	if out != "" {
		return writeResults(out, results)
	}
	return nil
}

// addManual разбирает "keywords|category|code".
func addManual(store *service.Store, raw string) (model.Entry, error) {
	parts := strings.Split(raw, "|")
	if len(parts) != 3 {
		return model.Entry{}, &service.ValidationError{Field: "entry", Message: `want "keywords|category|code"`}
	}
	return store.AddManual(parts[0], parts[1], parts[2])
}

func writeResults(path string, results []model.MatchResult) (err error) {
	write := fileio.WriteResultsCSV
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
	case ".xlsx":
		write = fileio.WriteResultsXLSX
	default:
		return fmt.Errorf("%w: %s", fileio.ErrUnsupportedFile, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := write(f, results); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Info().Str("file", path).Int("rows", len(results)).Msg("results written")
	return nil
}
