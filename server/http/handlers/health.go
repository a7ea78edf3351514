package handlers

import (
	"encoding/json"
	"net/http"

	"scope3-dict/internal/dictionary/service"
)

func Health(store *service.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "ok",
			"entries": store.Len(),
		})
	}
}
