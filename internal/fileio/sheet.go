package fileio

import (
	"bytes"
	"errors"
	"io"

	xls "github.com/extrame/xls"
	excelize "github.com/xuri/excelize/v2"
)

// Таблицы читаются только с первого листа; ячейки отдаются как текст.

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := f.GetSheetName(0)
	if name == "" {
		return nil, nil
	}
	return f.GetRows(name)
}

// выгрузки бухгалтерии в .xls встречаются и в UTF-8, и в cp932
var xlsCharsets = []string{"utf-8", "shift_jis"}

// ширина, дальше которой .xls не просматриваем
const xlsProbeCols = 64

func readXLS(r io.Reader) ([][]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	wb, err := openXLS(b)
	if err != nil {
		return nil, err
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	// Row.LastCol() у extrame/xls ненадёжен: читаем до xlsProbeCols и режем по последней непустой
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	width := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, xlsProbeCols)
		for j := range cells {
			cells[j] = row.Col(j)
			if j+1 > width && normalizeCell(cells[j]) != "" {
				width = j + 1
			}
		}
		rows = append(rows, cells)
	}
	for i, cells := range rows {
		if len(cells) > width {
			rows[i] = cells[:width]
		}
	}
	return rows, nil
}

func openXLS(b []byte) (*xls.WorkBook, error) {
	var lastErr error
	for _, cs := range xlsCharsets {
		wb, err := xls.OpenReader(bytes.NewReader(b), cs)
		if err == nil && wb != nil {
			return wb, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("xls: failed to open workbook")
	}
	return nil, lastErr
}
