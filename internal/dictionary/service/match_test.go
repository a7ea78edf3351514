package service

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scope3-dict/internal/dictionary/model"
)

func dictEntry(id string, keywords []string, hints []string, rng *model.AmountRange, conf float64) model.Entry {
	return model.Entry{
		ID:            id,
		Keywords:      keywords,
		Category:      "cat-" + id,
		CategoryCode:  "000000",
		Confidence:    conf,
		Source:        model.SourceLearned,
		Frequency:     2,
		AmountRange:   rng,
		SupplierHints: hints,
	}
}

func TestMatcher_Match(t *testing.T) {
	m := NewMatcher(nil)
	rng := &model.AmountRange{Min: 100, Max: 200}

	tests := []struct {
		name      string
		entries   []model.Entry
		query     model.QueryRow
		wantID    string
		wantScore float64
	}{
		{
			name:      "all signals, capped at 0.95",
			entries:   []model.Entry{dictEntry("a", []string{"保守"}, []string{"アルファ"}, rng, 0.95)},
			query:     model.QueryRow{ItemName: "保守", SupplierName: "アルファ", Amount: 150},
			wantID:    "a",
			wantScore: 0.95,
		},
		{
			name:      "amount outside range adds nothing",
			entries:   []model.Entry{dictEntry("a", []string{"保守"}, []string{"アルファ"}, rng, 0.8)},
			query:     model.QueryRow{ItemName: "保守", SupplierName: "アルファ", Amount: 500},
			wantID:    "a",
			wantScore: 0.4 + 0.3 + 0.08,
		},
		{
			name:      "amount without range is a weak signal",
			entries:   []model.Entry{dictEntry("a", []string{"保守"}, nil, nil, 0.9)},
			query:     model.QueryRow{ItemName: "保守", Amount: 5000},
			wantID:    "a",
			wantScore: 0.4 + 0.1 + 0.09,
		},
		{
			name:      "partial keyword ratio",
			entries:   []model.Entry{dictEntry("a", []string{"保守", "点検", "ABC", "XYZ"}, nil, nil, 0.8)},
			query:     model.QueryRow{ItemName: "保守/点検", Amount: 10},
			wantID:    "a",
			wantScore: 0.5*0.4 + 0.1 + 0.08,
		},
		{
			name:      "keyword containment is bidirectional and case-insensitive",
			entries:   []model.Entry{dictEntry("a", []string{"AWSusagefee"}, nil, nil, 0.8)},
			query:     model.QueryRow{ItemName: "aws請求"},
			wantID:    "a",
			wantScore: 0.4 + 0.08,
		},
		{
			name:      "supplier containment is case-insensitive",
			entries:   []model.Entry{dictEntry("a", []string{"ZZZ"}, []string{"AmazonWebServicesJapan"}, nil, 0.5)},
			query:     model.QueryRow{ItemName: "請求書", SupplierName: "amazon web services"},
			wantID:    "a",
			wantScore: 0.3 + 0.05,
		},
		{
			name: "strictly higher later entry wins",
			entries: []model.Entry{
				dictEntry("a", []string{"保守"}, nil, nil, 0.7),
				dictEntry("b", []string{"保守"}, nil, nil, 0.9),
			},
			query:     model.QueryRow{ItemName: "保守"},
			wantID:    "b",
			wantScore: 0.4 + 0.09,
		},
		{
			name: "first entry wins exact ties",
			entries: []model.Entry{
				dictEntry("a", []string{"保守"}, nil, nil, 0.8),
				dictEntry("b", []string{"保守"}, nil, nil, 0.8),
			},
			query:     model.QueryRow{ItemName: "保守"},
			wantID:    "a",
			wantScore: 0.4 + 0.08,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := m.Match(tt.query, tt.entries)
			require.NoError(t, err)
			require.True(t, res.Matched())
			assert.Equal(t, tt.wantID, res.MatchedEntry.ID)
			assert.Equal(t, "cat-"+tt.wantID, res.PredictedCategory)
			assert.InDelta(t, tt.wantScore, res.Confidence, 1e-9)
			assert.Equal(t, tt.query.ItemName, res.ItemName)
			assert.Equal(t, tt.query.SupplierName, res.SupplierName)
			assert.Equal(t, tt.query.Amount, res.Amount)
		})
	}
}

func TestMatcher_NoMatch(t *testing.T) {
	m := NewMatcher(nil)

	tests := []struct {
		name    string
		entries []model.Entry
		query   model.QueryRow
	}{
		{
			name: "no shared evidence",
			entries: []model.Entry{
				dictEntry("a", []string{"ABCsystem"}, []string{"アルファ"}, &model.AmountRange{Min: 100, Max: 200}, 0.95),
				dictEntry("b", []string{"電気料金"}, []string{"東京電力"}, nil, 0.95),
			},
			query: model.QueryRow{ItemName: "請求書", SupplierName: "ベータ"},
		},
		{
			name:    "score exactly at threshold is rejected",
			entries: []model.Entry{dictEntry("a", []string{"ZZZ"}, []string{"アルファ"}, nil, 0)},
			query:   model.QueryRow{ItemName: "請求書", SupplierName: "アルファ"},
		},
		{
			name:    "empty query",
			entries: []model.Entry{dictEntry("a", []string{"保守"}, []string{"アルファ"}, nil, 0.95)},
			query:   model.QueryRow{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := m.Match(tt.query, tt.entries)
			require.NoError(t, err)
			assert.False(t, res.Matched())
			assert.Nil(t, res.MatchedEntry)
			assert.Zero(t, res.Confidence)
			assert.Equal(t, model.Unclassified, res.PredictedCategory)
		})
	}
}

func TestMatcher_SupplierHintRaisesScore(t *testing.T) {
	m := NewMatcher(nil)
	entries := []model.Entry{dictEntry("a", []string{"保守"}, []string{"アルファ"}, nil, 0.8)}

	with, err := m.Match(model.QueryRow{ItemName: "保守/点検", SupplierName: "株式会社アルファ"}, entries)
	require.NoError(t, err)
	without, err := m.Match(model.QueryRow{ItemName: "保守/点検", SupplierName: "ベータ"}, entries)
	require.NoError(t, err)

	require.True(t, with.Matched())
	require.True(t, without.Matched())
	assert.Greater(t, with.Confidence, without.Confidence)
	assert.InDelta(t, 0.3, with.Confidence-without.Confidence, 1e-9)
}

func TestMatcher_ConfidenceBounds(t *testing.T) {
	m := NewMatcher(nil)
	entries := []model.Entry{
		dictEntry("a", []string{"保守"}, []string{"アルファ"}, &model.AmountRange{Min: 1, Max: 1e9}, 0.95),
		dictEntry("b", []string{"点検"}, nil, nil, 0.7),
	}
	queries := []model.QueryRow{
		{ItemName: "保守", SupplierName: "アルファ", Amount: 10},
		{ItemName: "点検", Amount: 10},
		{ItemName: "請求書"},
		{ItemName: "保守点検作業", SupplierName: "アルファ"},
	}
	for _, q := range queries {
		res, err := m.Match(q, entries)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Confidence, 0.0)
		assert.LessOrEqual(t, res.Confidence, 0.95)
	}
}

func TestMatcher_EmptyDictionary(t *testing.T) {
	m := NewMatcher(nil)
	_, err := m.Match(model.QueryRow{ItemName: "保守"}, nil)
	assert.ErrorIs(t, err, ErrEmptyDictionary)

	_, err = m.MatchBatch(context.Background(), []model.QueryRow{{ItemName: "保守"}}, nil, 2)
	assert.ErrorIs(t, err, ErrEmptyDictionary)
}

func TestMatcher_MatchBatch(t *testing.T) {
	m := NewMatcher(nil)
	var done atomic.Int32
	m.Progress = func() { done.Add(1) }

	entries := []model.Entry{
		dictEntry("a", []string{"保守"}, nil, nil, 0.8),
		dictEntry("b", []string{"電気料金"}, nil, nil, 0.8),
	}
	var queries []model.QueryRow
	for i := 0; i < 50; i++ {
		item := "保守"
		if i%2 == 1 {
			item = "電気料金"
		}
		if i%5 == 0 {
			item = "請求書"
		}
		queries = append(queries, model.QueryRow{ItemName: item})
	}

	results, err := m.MatchBatch(context.Background(), queries, entries, 4)
	require.NoError(t, err)
	require.Len(t, results, len(queries))
	assert.EqualValues(t, len(queries), done.Load())

	for i, r := range results {
		assert.Equal(t, queries[i].ItemName, r.ItemName)
		switch {
		case i%5 == 0:
			assert.False(t, r.Matched())
		case i%2 == 1:
			assert.Equal(t, "b", r.MatchedEntry.ID)
		default:
			assert.Equal(t, "a", r.MatchedEntry.ID)
		}
	}
	assert.Equal(t, model.MatchSummary{Matched: 40, Total: 50}, Summarize(results))

	_, err = m.MatchBatch(context.Background(), nil, entries, 4)
	assert.ErrorIs(t, err, ErrNoQueryData)
}

func TestMatcher_MatchBatchCanceled(t *testing.T) {
	m := NewMatcher(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.MatchBatch(ctx, []model.QueryRow{{ItemName: "保守"}}, []model.Entry{dictEntry("a", []string{"保守"}, nil, nil, 0.8)}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMatcher_DoesNotMutateDictionary(t *testing.T) {
	m := NewMatcher(nil)
	entries := []model.Entry{dictEntry("a", []string{"AWS"}, []string{"Amazon"}, nil, 0.8)}
	res, err := m.Match(model.QueryRow{ItemName: "aws", SupplierName: "amazon"}, entries)
	require.NoError(t, err)
	require.True(t, res.Matched())
	assert.Equal(t, []string{"AWS"}, entries[0].Keywords)
	assert.Equal(t, []string{"Amazon"}, entries[0].SupplierHints)
}

func TestLearnThenMatch_EndToEnd(t *testing.T) {
	store := NewStore()
	learner := NewLearner(anyLabel(), zerolog.Nop())
	label := "734101 Internet-related services"

	learned, err := store.Learn(context.Background(), learner, []model.TrainingRow{
		trainRow("AWS usage fee", "Amazon Web Services Japan", 180000, label),
		trainRow("AWS usage fee monthly", "AmazonWebServices", 95000, label),
	})
	require.NoError(t, err)
	require.Len(t, learned, 1)

	e := learned[0]
	assert.Equal(t, "734101", e.CategoryCode)
	assert.Equal(t, "Internet-related services", e.Category)
	require.NotNil(t, e.AmountRange)
	assert.Equal(t, model.AmountRange{Min: 95000, Max: 180000}, *e.AmountRange)
	assert.Condition(t, func() bool {
		for _, kw := range e.Keywords {
			if strings.Contains(strings.ToLower(kw), "aws") {
				return true
			}
		}
		return false
	}, "keywords %v should contain an AWS-derived token", e.Keywords)

	res, err := NewMatcher(nil).Match(model.QueryRow{
		ItemName:     "AWS monthly invoice",
		SupplierName: "Amazon Web Services",
		Amount:       120000,
	}, store.Snapshot())
	require.NoError(t, err)
	require.True(t, res.Matched())
	assert.Equal(t, e.ID, res.MatchedEntry.ID)
	assert.Equal(t, "Internet-related services", res.PredictedCategory)
	assert.Greater(t, res.Confidence, 0.3)
	assert.LessOrEqual(t, res.Confidence, 0.95)
}

func TestLearnThenMatch_JapaneseLabels(t *testing.T) {
	store := NewStore()
	learner := NewLearner(DefaultOptions(), zerolog.Nop())

	_, err := store.Learn(context.Background(), learner, []model.TrainingRow{
		trainRow("AWS利用料 2024年4月分", "アマゾンウェブサービスジャパン合同会社", 180000, internetLabel),
		trainRow("AWS利用料 5月分", "アマゾンウェブサービスジャパン合同会社", 95000, internetLabel),
		trainRow("コピー用紙 A4", "株式会社オフィス商事", 5000, "環境省DB 5産連表 164101 紙製品"),
		trainRow("コピー用紙 A3", "株式会社オフィス商事", 7000, "環境省DB 5産連表 164101 紙製品"),
	})
	require.NoError(t, err)

	_, err = store.AddManual("電気、電力", "電力", "461101")
	require.NoError(t, err)
	assert.Equal(t, model.Stats{TotalEntries: 3, LearnedEntries: 2, ManualEntries: 1}, store.Stats())

	m := NewMatcher(nil)
	results, err := m.MatchBatch(context.Background(), []model.QueryRow{
		{ItemName: "AWS利用料 6月分", SupplierName: "アマゾンウェブサービスジャパン", Amount: 120000},
		{ItemName: "コピー用紙 B5", SupplierName: "オフィス商事", Amount: 6000},
		{ItemName: "電気代", SupplierName: "東京電力", Amount: 30000},
		{ItemName: "交通費", SupplierName: "JR東日本", Amount: 0},
	}, store.Snapshot(), 2)
	require.NoError(t, err)

	assert.Equal(t, "インターネット附随サービス", results[0].PredictedCategory)
	assert.Equal(t, "734101", results[0].MatchedEntry.CategoryCode)
	assert.Equal(t, "紙製品", results[1].PredictedCategory)
	assert.Equal(t, "電力", results[2].PredictedCategory)
	assert.Equal(t, model.Unclassified, results[3].PredictedCategory)
}
