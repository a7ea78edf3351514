package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/schollz/progressbar/v3"

	"scope3-dict/internal/dictionary/model"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func printEntries(w io.Writer, entries []model.Entry) {
	t := newTable("Code", "Category", "Keywords", "Suppliers", "Amount", "Freq", "Conf", "Source")
	for _, e := range entries {
		amount := "-"
		if e.AmountRange != nil {
			amount = fmt.Sprintf("%s..%s", formatAmount(e.AmountRange.Min), formatAmount(e.AmountRange.Max))
		}
		t.Row(
			e.CategoryCode,
			e.Category,
			strings.Join(e.Keywords, ", "),
			strings.Join(e.SupplierHints, ", "),
			amount,
			strconv.Itoa(e.Frequency),
			fmt.Sprintf("%.2f", e.Confidence),
			string(e.Source),
		)
	}
	fmt.Fprintln(w, t)
}

func printResults(w io.Writer, results []model.MatchResult) {
	t := newTable("Item", "Supplier", "Amount", "Category", "Code", "Conf")
	for _, r := range results {
		code := ""
		if r.MatchedEntry != nil {
			code = r.MatchedEntry.CategoryCode
		}
		t.Row(r.ItemName, r.SupplierName, formatAmount(r.Amount), r.PredictedCategory, code, fmt.Sprintf("%.2f", r.Confidence))
	}
	fmt.Fprintln(w, t)
}

func printStats(w io.Writer, st model.Stats) {
	fmt.Fprintf(w, "dictionary: %d entries (learned %d, manual %d)\n", st.TotalEntries, st.LearnedEntries, st.ManualEntries)
}

func printSummary(w io.Writer, sum model.MatchSummary, skipped int) {
	fmt.Fprintf(w, "matched: %d/%d", sum.Matched, sum.Total)
	if skipped > 0 {
		fmt.Fprintf(w, " (skipped rows: %d)", skipped)
	}
	fmt.Fprintln(w)
}

func formatAmount(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// progress: прогресс-бар в stderr, создаётся, когда становится известен объём работы.
type progress struct {
	desc string
	bar  *progressbar.ProgressBar
}

func newLazyBar(desc string) *progress { return &progress{desc: desc} }

func (p *progress) start(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(p.desc),
		progressbar.OptionClearOnFinish(),
	)
}

// set: для Learner.OnGroup.
func (p *progress) set(done, total int) {
	if !progressEnabled() {
		return
	}
	if p.bar == nil {
		p.start(total)
	}
	_ = p.bar.Set(done)
}

// add: для Matcher.Progress; Add у progressbar потокобезопасен.
func (p *progress) add(total int) func() {
	if !progressEnabled() || total == 0 {
		return nil
	}
	p.start(total)
	return func() { _ = p.bar.Add(1) }
}

func (p *progress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
