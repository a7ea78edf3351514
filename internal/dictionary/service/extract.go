package service

import (
	"strings"
	"unicode/utf8"
)

// DefaultStopwords: служебные слова из счетов ("за месяц", "за год", "использование", "плата", "расходы").
var DefaultStopwords = []string{"月分", "年分", "利用", "料金", "費用"}

// аббревиатуры юрлиц, которые не являются ключевыми словами
var legalAbbrev = map[string]struct{}{"LTD": {}, "INC": {}, "CO": {}}

const (
	maxKeywords = 8

	minScriptLen = 2
	maxScriptLen = 8

	minAlnumLen = 2
	maxAlnumLen = 12
)

type runeClass int

const (
	classOther runeClass = iota
	classKanji
	classKatakana
	classHiragana
	classAlnum
)

// минимальная длина непрерывного отрезка, чтобы он стал кандидатом
var minRun = map[runeClass]int{
	classKanji:    1,
	classKatakana: 2,
	classHiragana: 2,
	classAlnum:    2,
}

func classify(r rune) runeClass {
	switch {
	case r >= 0x4E00 && r <= 0x9FAF:
		return classKanji
	case r >= 0x30A1 && r <= 0x30F6, r == 'ー':
		return classKatakana
	case r >= 0x3042 && r <= 0x3093:
		return classHiragana
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return classAlnum
	}
	return classOther
}

type Extractor struct {
	stop map[string]struct{}
}

// NewExtractor: nil: стоп-слова по умолчанию, пустой срез: без стоп-слов.
func NewExtractor(stopwords []string) *Extractor {
	if stopwords == nil {
		stopwords = DefaultStopwords
	}
	stop := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		if w = strings.TrimSpace(w); w != "" {
			stop[w] = struct{}{}
		}
	}
	return &Extractor{stop: stop}
}

// Extract возвращает до 8 уникальных ключевых слов: сначала иероглифы/кана, затем латиница/цифры,
// каждая группа в порядке появления.
func (e *Extractor) Extract(text string) []string {
	norm := NormalizeText(text)
	if norm == "" {
		return nil
	}

	var script, alnum []string
	for _, run := range splitRuns(norm) {
		n := utf8.RuneCountInString(run.text)
		if n < minRun[run.class] {
			continue
		}
		if run.class == classAlnum {
			if e.keepAlnum(run.text, n) {
				alnum = append(alnum, run.text)
			}
			continue
		}
		if e.keepScript(run.text, n) {
			script = append(script, run.text)
		}
	}

	out := make([]string, 0, maxKeywords)
	seen := make(map[string]struct{}, len(script)+len(alnum))
	for _, w := range append(script, alnum...) {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}

func (e *Extractor) keepScript(w string, n int) bool {
	if n < minScriptLen || n > maxScriptLen {
		return false
	}
	_, stop := e.stop[w]
	return !stop
}

func (e *Extractor) keepAlnum(w string, n int) bool {
	if n < minAlnumLen || n > maxAlnumLen || isDigits(w) {
		return false
	}
	_, legal := legalAbbrev[strings.ToUpper(w)]
	return !legal
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type run struct {
	class runeClass
	text  string
}

// splitRuns режет строку на максимальные отрезки одного класса, отбрасывая classOther.
func splitRuns(s string) []run {
	var out []run
	start, cur := 0, classOther
	flush := func(end int) {
		if cur != classOther && end > start {
			out = append(out, run{class: cur, text: s[start:end]})
		}
	}
	for i, r := range s {
		c := classify(r)
		if c == cur {
			continue
		}
		flush(i)
		start, cur = i, c
	}
	flush(len(s))
	return out
}
