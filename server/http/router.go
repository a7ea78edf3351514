package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"scope3-dict/internal/config"
	dictHnd "scope3-dict/internal/dictionary/handler"
	"scope3-dict/internal/dictionary/service"
	"scope3-dict/internal/middleware"
	"scope3-dict/server/http/handlers"
)

func NewRouter(cfg config.Config, logger zerolog.Logger, store *service.Store) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	r.Get("/health", handlers.Health(store))

	r.Route("/dictionary", func(r chi.Router) {
		r.Get("/", dictHnd.Dictionary(store))
		r.Get("/entries/{id}", dictHnd.Entry(store))
		r.Post("/entries", dictHnd.AddEntry(store))
		r.Post("/learn", dictHnd.Learn(cfg, store))
	})

	r.Post("/match", dictHnd.Match(cfg, store))
	r.Post("/match/one", dictHnd.MatchOne(cfg, store))

	return r
}
