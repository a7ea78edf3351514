package service

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Полноширинные Ａ-Ｚ ａ-ｚ ０-９ → ASCII сдвигом на 0xFEE0. Остальное не трогаем
// (полуширинная катакана и знаки препинания остаются как есть).
const fullwidthOffset = 0xFEE0

func narrowAlnum(r rune) rune {
	switch {
	case r >= 'Ａ' && r <= 'Ｚ', r >= 'ａ' && r <= 'ｚ', r >= '０' && r <= '９':
		return r - fullwidthOffset
	}
	return r
}

// NormalizeText убирает все пробелы (включая U+3000) и сужает полноширинные латиницу и цифры.
// Регистр сохраняется: сравнение без учёта регистра делается через foldKey.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}
	// Chain хранит буферы, поэтому собираем на каждый вызов
	t := transform.Chain(runes.Remove(runes.In(unicode.White_Space)), runes.Map(narrowAlnum))
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return narrowAlnum(r)
		}, s)
	}
	return out
}

// foldKey: ключ для сравнения.
func foldKey(s string) string { return strings.ToLower(s) }

// containsEither: a ⊂ b или b ⊂ a.
func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

var (
	reParenASCII = regexp.MustCompile(`\(.*?\)`)
	reParenWide  = regexp.MustCompile(`（.*?）`)
	reLegalForm  = regexp.MustCompile(`(?i)(株式会社|㈱|有限会社|㈲|合同会社|LLC|Inc|Corp|Ltd|Co\.)`)
	// 引 и 落 из пометок банка "引落" / "自動引落"
	reDebitNoise = regexp.MustCompile(`[引落]`)
)

const minSupplierLen = 2

// NormalizeSupplier убирает скобки, организационно-правовые формы и банковские пометки.
// Пустая строка: "информации о поставщике нет".
func NormalizeSupplier(s string) string {
	if s == "" {
		return ""
	}
	out := reParenASCII.ReplaceAllString(s, "")
	out = reParenWide.ReplaceAllString(out, "")
	out = reLegalForm.ReplaceAllString(out, "")
	out = reDebitNoise.ReplaceAllString(out, "")
	out = strings.TrimSpace(NormalizeText(out))
	if utf8.RuneCountInString(out) < minSupplierLen {
		return ""
	}
	return out
}
