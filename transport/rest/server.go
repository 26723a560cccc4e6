package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// NewRouter wires the REST routes.
func NewRouter(handlers *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Get("/ping", handlers.Ping)

	r.Route("/personas", func(r chi.Router) {
		r.Get("/", handlers.ListPersonas)
		r.Post("/{id}/reply", handlers.PersonaReply)
	})

	r.Route("/players/{id}", func(r chi.Router) {
		r.Get("/stats", handlers.PlayerStats)
		r.Get("/history", handlers.PlayerHistory)
	})

	return r
}

// Start serves the REST API until ctx is cancelled.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
