package fileio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var ErrUnsupportedFile = errors.New("unsupported file")

// Record — строка таблицы с номером строки в файле (1-based).
type Record struct {
	Line  int
	Cells []string
}

// Cell возвращает i-ю ячейку или "", если строка короче.
func (r Record) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// ReadRecords — выберет парсер по расширению, отбросит строку заголовков (первую)
// и полностью пустые строки. Колонки определяются только позицией.
func ReadRecords(r io.Reader, filename string) ([]Record, error) {
	var (
		rows [][]string
		err  error
	)
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(r)
	case ".xls":
		rows, err = readXLS(r)
	case ".csv", ".txt":
		rows, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return toRecords(rows), nil
}

// toRecords — AoA в записи, пропуская шапку и полностью пустые строки.
func toRecords(rows [][]string) []Record {
	var out []Record
	for i := 1; i < len(rows); i++ {
		cells := make([]string, len(rows[i]))
		empty := true
		for j, v := range rows[i] {
			cells[j] = normalizeCell(v)
			if cells[j] != "" {
				empty = false
			}
		}
		if !empty {
			out = append(out, Record{Line: i + 1, Cells: cells})
		}
	}
	return out
}

// normalizeCell — убирает BOM и крайние пробелы (включая NBSP и U+3000).
func normalizeCell(v string) string {
	v = strings.TrimPrefix(v, "\uFEFF")
	return strings.TrimFunc(v, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '\u00A0' || r == '\u3000'
	})
}
