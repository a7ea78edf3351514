package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var rxKeepNums = regexp.MustCompile(`[^\d\.\-]`)

// валюта, разделители тысяч и пробелы (включая NBSP/NNBSP и U+3000)
var amountNoise = strings.NewReplacer(
	" ", "", "\u00A0", "", "\u202F", "", "\u3000", "", "\t", "",
	",", "", "，", "", "¥", "", "￥", "", "円", "", "－", "-", "．", ".",
)

// ParseAmount парсит "180000", "180,000", "¥180,000", "１８０，０００円", "(1,200)".
// Пустая строка: (0, true): сумма просто не указана. Мусор: (0, false).
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	s = strings.Map(func(r rune) rune {
		if r >= '０' && r <= '９' {
			return r - 0xFEE0
		}
		return r
	}, s)

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = amountNoise.Replace(s)
	if s == "" || s == "-" || s == "." {
		return 0, false
	}
	// после чистки должны остаться только цифры, точка и минус
	if rxKeepNums.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}
