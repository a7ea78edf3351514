package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scope3-dict/internal/config"
	"scope3-dict/internal/dictionary/service"
	serverhttp "scope3-dict/server/http"
)

func main() {
	cfgFile := flag.String("config", "", "config file (yaml)")
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := config.SetupLogger(cfg, os.Stdout)

	// словарь живёт, пока живёт процесс
	store := service.NewStore()
	r := serverhttp.NewRouter(cfg, logger, store)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info().
		Str("addr", cfg.Addr()).
		Str("source_marker", cfg.SourceMarker).
		Strs("stopwords", cfg.Stopwords).
		Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info().Int("entries", store.Len()).Msg("bye")
}
