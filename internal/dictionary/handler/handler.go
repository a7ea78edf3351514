package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"scope3-dict/internal/config"
	"scope3-dict/internal/dictionary/model"
	"scope3-dict/internal/dictionary/service"
	"scope3-dict/internal/fileio"
)

type dictionaryResponse struct {
	Entries []model.Entry `json:"entries"`
	Stats   model.Stats   `json:"stats"`
}

type learnResponse struct {
	File    string           `json:"file"`
	Rows    int              `json:"rows"`
	Learned []model.Entry    `json:"learned"`
	Skipped []model.RowIssue `json:"skipped"`
	Stats   model.Stats      `json:"stats"`
}

type matchResponse struct {
	File    string              `json:"file"`
	Results []model.MatchResult `json:"results"`
	Skipped []model.RowIssue    `json:"skipped"`
	Summary model.MatchSummary  `json:"summary"`
}

type manualRequest struct {
	Keywords     string `json:"keywords"`
	Category     string `json:"category"`
	CategoryCode string `json:"categoryCode"`
}

// Dictionary отдаёт весь словарь в порядке добавления и статистику.
func Dictionary(store *service.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dictionaryResponse{Entries: store.Snapshot(), Stats: store.Stats()})
	}
}

func Entry(store *service.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := store.Get(chi.URLParam(r, "id"))
		if !ok {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "entry not found"})
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// AddEntry: ручная запись: {"keywords":"AWS、クラウド","category":"...","categoryCode":"734101"}.
func AddEntry(store *service.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req manualRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, &service.ValidationError{Field: "body", Message: err.Error()})
			return
		}
		e, err := store.AddManual(req.Keywords, req.Category, req.CategoryCode)
		if err != nil {
			writeError(w, r, err)
			return
		}
		zerolog.Ctx(r.Context()).Info().Str("id", e.ID).Str("category", e.Category).Strs("keywords", e.Keywords).Msg("manual entry added")
		writeJSON(w, http.StatusCreated, e)
	}
}

// Learn разбирает обучающий файл и добавляет записи. При любой ошибке словарь не меняется.
func Learn(cfg config.Config, store *service.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := zerolog.Ctx(r.Context())

		recs, name, err := readUpload(r, cfg.MaxUploadMB)
		if err != nil {
			writeError(w, r, err)
			return
		}
		rows, issues := fileio.TrainingRows(recs)
		for _, is := range issues {
			log.Debug().Int("line", is.Line).Str("reason", is.Reason).Msg("training row skipped")
		}

		learner := service.NewLearner(cfg.Options(), *log)
		learned, err := store.Learn(r.Context(), learner, rows)
		if err != nil {
			writeError(w, r, err)
			return
		}

		log.Info().
			Str("file", name).
			Int("rows", len(rows)).
			Int("skipped", len(issues)).
			Int("learned", len(learned)).
			Dur("elapsed", time.Since(start)).
			Msg("learn done")
		writeJSON(w, http.StatusOK, learnResponse{
			File:    name,
			Rows:    len(rows),
			Learned: learned,
			Skipped: nonNil(issues),
			Stats:   store.Stats(),
		})
	}
}

// Match классифицирует все строки файла по снимку словаря.
// ?format=csv|xlsx: вернуть результат файлом вместо JSON.
func Match(cfg config.Config, store *service.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := zerolog.Ctx(r.Context())

		snapshot := store.Snapshot()
		if len(snapshot) == 0 {
			writeError(w, r, service.ErrEmptyDictionary)
			return
		}

		recs, name, err := readUpload(r, cfg.MaxUploadMB)
		if err != nil {
			writeError(w, r, err)
			return
		}
		queries, issues := fileio.QueryRows(recs)
		for _, is := range issues {
			log.Debug().Int("line", is.Line).Str("reason", is.Reason).Msg("query row skipped")
		}

		matcher := service.NewMatcher(cfg.Stopwords)
		results, err := matcher.MatchBatch(r.Context(), queries, snapshot, cfg.MatchWorkers)
		if err != nil {
			writeError(w, r, err)
			return
		}
		summary := service.Summarize(results)
		log.Info().
			Str("file", name).
			Int("rows", summary.Total).
			Int("matched", summary.Matched).
			Int("skipped", len(issues)).
			Dur("elapsed", time.Since(start)).
			Msg("match done")

		switch format(r) {
		case "csv":
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="results.csv"`)
			err = fileio.WriteResultsCSV(w, results)
		case "xlsx":
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			w.Header().Set("Content-Disposition", `attachment; filename="results.xlsx"`)
			err = fileio.WriteResultsXLSX(w, results)
		default:
			writeJSON(w, http.StatusOK, matchResponse{File: name, Results: results, Skipped: nonNil(issues), Summary: summary})
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("write results")
		}
	}
}

// MatchOne: одна строка JSON: {"itemName":"...","supplierName":"...","amount":120000}.
func MatchOne(cfg config.Config, store *service.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q model.QueryRow
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			writeError(w, r, &service.ValidationError{Field: "body", Message: err.Error()})
			return
		}
		if q.ItemName == "" {
			writeError(w, r, &service.ValidationError{Field: "itemName", Message: "required"})
			return
		}
		res, err := service.NewMatcher(cfg.Stopwords).Match(q, store.Snapshot())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func nonNil(in []model.RowIssue) []model.RowIssue {
	if in == nil {
		return []model.RowIssue{}
	}
	return in
}
