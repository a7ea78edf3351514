package service

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"scope3-dict/internal/dictionary/model"
)

const (
	DefaultSourceMarker = "環境省DB"
	DefaultLabelPrefix  = "環境省DB 5産連表"

	minGroupSize       = 2
	minFreqShare       = 0.1
	maxSignificant     = 6
	maxSupplierHints   = 4
	minLearnConfidence = 0.70
	maxLearnConfidence = 0.95
)

// "... 734101 インターネット附随サービス": код из 6 цифр, пробел(ы), название
var reCategoryLabel = regexp.MustCompile(`(\d{6})[\s\x{3000}]+(.+?)[\s\x{3000}]*$`)

func DefaultOptions() model.Options {
	return model.Options{
		SourceMarker: DefaultSourceMarker,
		LabelPrefix:  DefaultLabelPrefix,
		Stopwords:    DefaultStopwords,
	}
}

type Learner struct {
	opts model.Options
	ext  *Extractor
	log  zerolog.Logger

	// OnGroup вызывается после каждой обработанной группы (для прогресса).
	OnGroup func(done, total int)
	newID   func() string
}

func NewLearner(opts model.Options, logger zerolog.Logger) *Learner {
	return &Learner{
		opts:  opts,
		ext:   NewExtractor(opts.Stopwords),
		log:   logger,
		newID: uuid.NewString,
	}
}

// Eligible: метка есть и содержит маркер источника.
func (l *Learner) Eligible(row model.TrainingRow) bool {
	label := strings.TrimSpace(row.CategoryLabel)
	if label == "" {
		return false
	}
	return l.opts.SourceMarker == "" || strings.Contains(label, l.opts.SourceMarker)
}

type group struct {
	label string
	rows  []model.TrainingRow
}

// Learn строит новые записи словаря по размеченным строкам. Словарь не трогает:
// вызывающий сам добавляет пачку в Store. Повторное обучение даёт дубли: так и задумано.
// Между группами проверяется ctx; при отмене возвращается ctx.Err() и ни одной записи.
func (l *Learner) Learn(ctx context.Context, rows []model.TrainingRow) ([]model.Entry, error) {
	groups, eligible := l.groupRows(rows)
	if eligible == 0 {
		return nil, ErrNoTrainingData
	}
	l.log.Debug().Int("rows", len(rows)).Int("eligible", eligible).Int("groups", len(groups)).Msg("learn: grouped")

	out := make([]model.Entry, 0, len(groups))
	for i, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry, ok := l.learnGroup(g); ok {
			out = append(out, entry)
		}
		if l.OnGroup != nil {
			l.OnGroup(i+1, len(groups))
		}
	}

	l.log.Info().Int("eligible", eligible).Int("groups", len(groups)).Int("entries", len(out)).Msg("learn done")
	return out, nil
}

// groupRows группирует допустимые строки по точной метке, сохраняя порядок первого появления.
func (l *Learner) groupRows(rows []model.TrainingRow) ([]*group, int) {
	idx := make(map[string]*group)
	var order []*group
	eligible := 0
	for _, r := range rows {
		if !l.Eligible(r) {
			continue
		}
		eligible++
		g, ok := idx[r.CategoryLabel]
		if !ok {
			g = &group{label: r.CategoryLabel}
			idx[r.CategoryLabel] = g
			order = append(order, g)
		}
		g.rows = append(g.rows, r)
	}
	return order, eligible
}

func (l *Learner) learnGroup(g *group) (model.Entry, bool) {
	n := len(g.rows)
	if n < minGroupSize {
		l.log.Debug().Str("label", g.label).Int("rows", n).Msg("learn: group too small")
		return model.Entry{}, false
	}

	keywords := l.significantKeywords(g.rows)
	if len(keywords) == 0 {
		l.log.Debug().Str("label", g.label).Msg("learn: no significant keywords")
		return model.Entry{}, false
	}

	code, category := l.parseLabel(g.label)
	return model.Entry{
		ID:            l.newID(),
		Keywords:      keywords,
		Category:      category,
		CategoryCode:  code,
		Confidence:    learnedConfidence(n),
		Source:        model.SourceLearned,
		Frequency:     n,
		AmountRange:   amountRange(g.rows),
		SupplierHints: supplierHints(g.rows),
	}, true
}

// significantKeywords: частота по группе, порог max(1, floor(n*0.1)),
// сортировка по убыванию частоты (при равенстве: порядок первого появления), топ-6.
func (l *Learner) significantKeywords(rows []model.TrainingRow) []string {
	freq := make(map[string]int)
	var order []string
	for _, r := range rows {
		for _, kw := range l.ext.Extract(r.ItemName) {
			if _, ok := freq[kw]; !ok {
				order = append(order, kw)
			}
			freq[kw]++
		}
	}

	minFreq := int(math.Floor(float64(len(rows)) * minFreqShare))
	if minFreq < 1 {
		minFreq = 1
	}
	kept := make([]string, 0, len(order))
	for _, kw := range order {
		if freq[kw] >= minFreq {
			kept = append(kept, kw)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return freq[kept[i]] > freq[kept[j]] })
	if len(kept) > maxSignificant {
		kept = kept[:maxSignificant]
	}
	return kept
}

// parseLabel возвращает (код, категория). Без кода: метка без префикса и пустой код.
func (l *Learner) parseLabel(label string) (string, string) {
	if m := reCategoryLabel.FindStringSubmatch(label); m != nil {
		return m[1], strings.TrimSpace(m[2])
	}
	name := label
	if l.opts.LabelPrefix != "" {
		name = strings.Replace(name, l.opts.LabelPrefix, "", 1)
	}
	return "", strings.TrimSpace(name)
}

func supplierHints(rows []model.TrainingRow) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, r := range rows {
		s := NormalizeSupplier(r.SupplierName)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if len(out) == maxSupplierHints {
			break
		}
	}
	return out
}

func amountRange(rows []model.TrainingRow) *model.AmountRange {
	var amounts []float64
	for _, r := range rows {
		if r.Amount > 0 {
			amounts = append(amounts, r.Amount)
		}
	}
	if len(amounts) == 0 {
		return nil
	}
	sort.Float64s(amounts)
	return &model.AmountRange{Min: amounts[0], Max: amounts[len(amounts)-1]}
}

// learnedConfidence = clamp(0.70 + log10(n+1)/10, 0.70, 0.95)
func learnedConfidence(n int) float64 {
	c := minLearnConfidence + math.Log10(float64(n+1))/10
	return math.Min(maxLearnConfidence, math.Max(minLearnConfidence, c))
}
