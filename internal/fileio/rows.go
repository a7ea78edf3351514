package fileio

import (
	"scope3-dict/internal/dictionary/model"
	"scope3-dict/internal/utils"
)

// позиции колонок
const (
	colItem = iota
	colSupplier
	colAmount
	colLabel
)

const (
	minTrainingCols = 4
	minQueryCols    = 3
)

// TrainingRows: col0 наименование, col1 поставщик, col2 сумма, col3 метка категории.
// Строки без обязательных полей или с нечисловой суммой пропускаются с предупреждением.
func TrainingRows(recs []Record) ([]model.TrainingRow, []model.RowIssue) {
	out := make([]model.TrainingRow, 0, len(recs))
	var issues []model.RowIssue
	for _, rec := range recs {
		if len(rec.Cells) < minTrainingCols {
			issues = append(issues, model.RowIssue{Line: rec.Line, Reason: "too few columns"})
			continue
		}
		item, supplier, label := rec.Cell(colItem), rec.Cell(colSupplier), rec.Cell(colLabel)
		if item == "" || supplier == "" || label == "" {
			issues = append(issues, model.RowIssue{Line: rec.Line, Reason: "missing item, supplier or category label"})
			continue
		}
		amount, ok := utils.ParseAmount(rec.Cell(colAmount))
		if !ok {
			issues = append(issues, model.RowIssue{Line: rec.Line, Reason: "non-numeric amount"})
			continue
		}
		out = append(out, model.TrainingRow{
			Line:          rec.Line,
			ItemName:      item,
			SupplierName:  supplier,
			Amount:        amount,
			CategoryLabel: label,
		})
	}
	return out, issues
}

// QueryRows: col0 наименование, col1 поставщик, col2 сумма.
func QueryRows(recs []Record) ([]model.QueryRow, []model.RowIssue) {
	out := make([]model.QueryRow, 0, len(recs))
	var issues []model.RowIssue
	for _, rec := range recs {
		if len(rec.Cells) < minQueryCols {
			issues = append(issues, model.RowIssue{Line: rec.Line, Reason: "too few columns"})
			continue
		}
		item, supplier := rec.Cell(colItem), rec.Cell(colSupplier)
		if item == "" || supplier == "" {
			issues = append(issues, model.RowIssue{Line: rec.Line, Reason: "missing item or supplier"})
			continue
		}
		amount, ok := utils.ParseAmount(rec.Cell(colAmount))
		if !ok {
			issues = append(issues, model.RowIssue{Line: rec.Line, Reason: "non-numeric amount"})
			continue
		}
		out = append(out, model.QueryRow{Line: rec.Line, ItemName: item, SupplierName: supplier, Amount: amount})
	}
	return out, issues
}
