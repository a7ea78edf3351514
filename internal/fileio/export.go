package fileio

import (
	"encoding/csv"
	"io"
	"strconv"

	excelize "github.com/xuri/excelize/v2"

	"scope3-dict/internal/dictionary/model"
)

var resultHeader = []string{"item", "supplier", "amount", "predicted_category", "category_code", "confidence", "entry_id"}

func resultCells(r model.MatchResult) []string {
	code, id := "", ""
	if r.MatchedEntry != nil {
		code, id = r.MatchedEntry.CategoryCode, r.MatchedEntry.ID
	}
	return []string{
		r.ItemName,
		r.SupplierName,
		strconv.FormatFloat(r.Amount, 'f', -1, 64),
		r.PredictedCategory,
		code,
		strconv.FormatFloat(r.Confidence, 'f', 3, 64),
		id,
	}
}

// WriteResultsCSV пишет UTF-8 с BOM, чтобы Excel открыл японский текст без кракозябр.
func WriteResultsCSV(w io.Writer, results []model.MatchResult) error {
	if _, err := io.WriteString(w, "\uFEFF"); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(resultHeader); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write(resultCells(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteResultsXLSX(w io.Writer, results []model.MatchResult) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	if err := f.SetSheetRow(sheet, "A1", &resultHeader); err != nil {
		return err
	}
	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := resultCells(r)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
		// числа: числами, чтобы в Excel работали суммы
		if err := f.SetCellFloat(sheet, cellAt(3, i+2), r.Amount, -1, 64); err != nil {
			return err
		}
		if err := f.SetCellFloat(sheet, cellAt(6, i+2), r.Confidence, 3, 64); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func cellAt(col, row int) string {
	c, _ := excelize.CoordinatesToCellName(col, row)
	return c
}
