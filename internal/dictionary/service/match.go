package service

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"scope3-dict/internal/dictionary/model"
)

// веса сигналов
const (
	keywordWeight      = 0.4
	supplierWeight     = 0.3
	amountInRange      = 0.2
	amountNoRange      = 0.1
	confidenceWeight   = 0.1
	acceptThreshold    = 0.3
	maxMatchConfidence = 0.95
)

type Matcher struct {
	ext *Extractor

	// Progress вызывается после каждой строки MatchBatch; должен быть безопасен для горутин.
	Progress func()
}

func NewMatcher(stopwords []string) *Matcher {
	return &Matcher{ext: NewExtractor(stopwords)}
}

// query: подготовленный запрос: ключевые слова и поставщик уже нормализованы и приведены к нижнему регистру.
type query struct {
	keywords []string
	supplier string
	amount   float64
}

func (m *Matcher) prepare(q model.QueryRow) query {
	kws := m.ext.Extract(q.ItemName)
	for i := range kws {
		kws[i] = foldKey(kws[i])
	}
	return query{
		keywords: kws,
		supplier: foldKey(NormalizeSupplier(q.SupplierName)),
		amount:   q.Amount,
	}
}

// Match ищет запись с максимальным баллом. При равенстве побеждает первая.
// Совпадение принимается только при балле > 0.3. Словарь не изменяется.
func (m *Matcher) Match(q model.QueryRow, entries []model.Entry) (model.MatchResult, error) {
	if len(entries) == 0 {
		return model.MatchResult{}, ErrEmptyDictionary
	}
	return m.match(q, entries), nil
}

func (m *Matcher) match(q model.QueryRow, entries []model.Entry) model.MatchResult {
	pq := m.prepare(q)

	best, bestScore := -1, 0.0
	for i := range entries {
		if s := score(&entries[i], pq); best < 0 || s > bestScore {
			best, bestScore = i, s
		}
	}

	res := model.MatchResult{
		ItemName:          q.ItemName,
		SupplierName:      q.SupplierName,
		Amount:            q.Amount,
		PredictedCategory: model.Unclassified,
	}
	if best < 0 || bestScore <= acceptThreshold {
		return res
	}
	entry := entries[best]
	res.MatchedEntry = &entry
	res.Confidence = math.Min(bestScore, maxMatchConfidence)
	res.PredictedCategory = entry.Category
	return res
}

// MatchBatch сопоставляет строки параллельно по одному снимку словаря.
// Порядок результатов совпадает с порядком queries.
func (m *Matcher) MatchBatch(ctx context.Context, queries []model.QueryRow, entries []model.Entry, workers int) ([]model.MatchResult, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyDictionary
	}
	if len(queries) == 0 {
		return nil, ErrNoQueryData
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	out := make([]model.MatchResult, len(queries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = m.match(queries[i], entries)
			if m.Progress != nil {
				m.Progress()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func score(e *model.Entry, q query) float64 {
	s := keywordScore(e.Keywords, q.keywords) * keywordWeight

	if len(e.SupplierHints) > 0 && q.supplier != "" {
		for _, h := range e.SupplierHints {
			if containsEither(q.supplier, foldKey(h)) {
				s += supplierWeight
				break
			}
		}
	}

	switch {
	case q.amount > 0 && e.AmountRange != nil:
		if e.AmountRange.Contains(q.amount) {
			s += amountInRange
		}
	case q.amount > 0:
		s += amountNoRange
	}

	return s + e.Confidence*confidenceWeight
}

// keywordScore: доля ключевых слов записи, которые входят в какое-либо слово запроса или содержат его.
func keywordScore(entryKeywords, queryKeywords []string) float64 {
	if len(entryKeywords) == 0 || len(queryKeywords) == 0 {
		return 0
	}
	matched := 0
	for _, kw := range entryKeywords {
		kw = foldKey(kw)
		for _, qk := range queryKeywords {
			if containsEither(kw, qk) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(entryKeywords))
}

// Summarize считает, сколько строк прохода нашли запись.
func Summarize(results []model.MatchResult) model.MatchSummary {
	sum := model.MatchSummary{Total: len(results)}
	for _, r := range results {
		if r.Matched() {
			sum.Matched++
		}
	}
	return sum
}
