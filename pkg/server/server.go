package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	handlers "github.com/de-tools/zombie-exorcist/pkg/handlers/findings"
	zombiemiddleware "github.com/de-tools/zombie-exorcist/pkg/server/middleware"
)

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server
}

type Config struct {
	Addr            string
	ReportsDir      string
	ShutdownTimeout time.Duration
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	handler := handlers.NewHandler(config.ReportsDir)

	router := chi.NewRouter()

	router.Use(zombiemiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/findings", handler.GetFindings)
		r.Get("/ledger", handler.GetLedger)
		r.Get("/status", handler.GetStatus)
	})

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
	}
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// Router exposes the configured mux for tests.
func (w *WebAPI) Router() http.Handler {
	return w.router
}
