package fileio

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// readCSV reads CSV auto-detecting encoding and converting to UTF-8.
// Valid UTF-8 is taken as is; otherwise chardet picks Shift_JIS / EUC-JP / ISO-2022-JP / Windows-1251.
func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)

	peek, _ := br.Peek(4096)
	var dec io.Reader = br
	if e := detectEncoding(peek); e != nil {
		dec = transform.NewReader(br, e.NewDecoder())
	}

	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// detectEncoding: nil: UTF-8 (или не удалось определить).
func detectEncoding(peek []byte) encoding.Encoding {
	if len(peek) == 0 || utf8.Valid(trimPartialRune(peek)) {
		return nil
	}
	det, err := chardet.NewTextDetector().DetectBest(peek)
	if err != nil || det == nil {
		return nil
	}
	switch strings.ToLower(det.Charset) {
	case "shift_jis", "windows-31j", "cp932":
		return japanese.ShiftJIS
	case "euc-jp":
		return japanese.EUCJP
	case "iso-2022-jp":
		return japanese.ISO2022JP
	case "windows-1251", "cp1251":
		return charmap.Windows1251
	}
	// из Excel японские CSV почти всегда в Shift_JIS
	return japanese.ShiftJIS
}

// trimPartialRune отрезает хвост, если Peek разрезал многобайтовый символ.
func trimPartialRune(p []byte) []byte {
	for i := len(p) - 1; i >= 0 && i >= len(p)-utf8.UTFMax; i-- {
		if utf8.RuneStart(p[i]) {
			if !utf8.FullRune(p[i:]) {
				return p[:i]
			}
			break
		}
	}
	return p
}
