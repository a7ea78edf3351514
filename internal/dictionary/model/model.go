package model

type Source string

const (
	SourceManual  Source = "manual"
	SourceLearned Source = "learned"
)

// Unclassified: категория для строк, которым не нашлось записи в словаре.
const Unclassified = "未分類"

type AmountRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains: границы включительно.
func (r AmountRange) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Entry: запись словаря. После создания не меняется.
type Entry struct {
	ID            string       `json:"id"`
	Keywords      []string     `json:"keywords"`      // 1..8, порядок значим
	Category      string       `json:"category"`      // название категории
	CategoryCode  string       `json:"categoryCode"`  // 6 цифр или ""
	Confidence    float64      `json:"confidence"`    // 0.70..0.95 для learned, 0.90 для manual
	Source        Source       `json:"source"`        // manual | learned
	Frequency     int          `json:"frequency"`     // сколько строк обучения поддерживают запись
	AmountRange   *AmountRange `json:"amountRange,omitempty"`
	SupplierHints []string     `json:"supplierHints,omitempty"` // до 4 нормализованных поставщиков
}

// TrainingRow: строка обучающего файла: col0 item, col1 supplier, col2 amount, col3 label.
type TrainingRow struct {
	Line          int     // номер строки в файле (1-based), для предупреждений
	ItemName      string
	SupplierName  string
	Amount        float64
	CategoryLabel string
}

// QueryRow: строка файла для классификации (без метки).
type QueryRow struct {
	Line         int     `json:"-"`
	ItemName     string  `json:"itemName"`
	SupplierName string  `json:"supplierName"`
	Amount       float64 `json:"amount"`
}

type MatchResult struct {
	ItemName          string  `json:"itemName"`
	SupplierName      string  `json:"supplierName"`
	Amount            float64 `json:"amount"`
	MatchedEntry      *Entry  `json:"matchedEntry,omitempty"`
	Confidence        float64 `json:"confidence"`
	PredictedCategory string  `json:"predictedCategory"`
}

func (r MatchResult) Matched() bool { return r.MatchedEntry != nil }

// RowIssue: строка, пропущенная при разборе файла.
type RowIssue struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type Stats struct {
	TotalEntries   int `json:"totalEntries"`
	LearnedEntries int `json:"learnedEntries"`
	ManualEntries  int `json:"manualEntries"`
}

type MatchSummary struct {
	Matched int `json:"matched"`
	Total   int `json:"total"`
}

// Options: параметры обучения и извлечения ключевых слов.
type Options struct {
	SourceMarker string   // подстрока метки, по которой строка допускается к обучению; "": любая непустая
	LabelPrefix  string   // срезается с метки, если в ней нет 6-значного кода
	Stopwords    []string // служебные слова, не являющиеся ключевыми
}
