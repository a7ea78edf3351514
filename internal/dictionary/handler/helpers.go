package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"scope3-dict/internal/dictionary/service"
	"scope3-dict/internal/fileio"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// writeError: ошибки валидации и "нет данных": клиенту, остальное: 500 с логом.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
	}
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		body.Error = "internal"
	}
	writeJSON(w, status, body)
}

// errBadUpload: файл не пришёл или не читается как multipart.
var errBadUpload = errors.New("bad upload")

func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case service.IsValidation(err), errors.Is(err, errBadUpload):
		return http.StatusBadRequest
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, fileio.ErrUnsupportedFile):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, service.ErrNoTrainingData),
		errors.Is(err, service.ErrNoQueryData),
		errors.Is(err, service.ErrEmptyDictionary):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// readUpload читает поле "file" multipart-формы и разбирает таблицу.
func readUpload(r *http.Request, maxMB int) ([]fileio.Record, string, error) {
	if maxMB <= 0 {
		maxMB = 32
	}
	if err := r.ParseMultipartForm(int64(maxMB) << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("%w: multipart form: %v", errBadUpload, err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("%w: missing file: %v", errBadUpload, err)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	recs, err := fileio.ReadRecords(file, header.Filename)
	if err != nil {
		if errors.Is(err, fileio.ErrUnsupportedFile) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("%w: %v", errBadUpload, err)
	}
	return recs, header.Filename, nil
}

func format(r *http.Request) string {
	return strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
}
