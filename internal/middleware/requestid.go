package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const headerRequestID = "X-Request-ID"

type ctxKey struct{}

const maxRequestIDLen = 128

// RequestID берёт X-Request-ID клиента, если он печатный ASCII разумной длины, иначе выдаёт UUID.
// ID попадает в контекст, в ответ и в логи (поле rid).
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get(headerRequestID)
			if !validRequestID(rid) {
				rid = uuid.NewString()
			}
			w.Header().Set(headerRequestID, rid)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, rid)))
		})
	}
}

func validRequestID(rid string) bool {
	if rid == "" || len(rid) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(rid); i++ {
		if rid[i] < 0x21 || rid[i] > 0x7E {
			return false
		}
	}
	return true
}

func GetRequestID(r *http.Request) string {
	rid, _ := r.Context().Value(ctxKey{}).(string)
	return rid
}
