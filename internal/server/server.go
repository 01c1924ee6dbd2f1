// Package server служебный HTTP-сервер: проверка здоровья и выгрузка CSV.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"assistant-bot/internal/export"
)

// Pinger проверка доступности хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	store       export.Source
	pinger      Pinger
	loc         *time.Location
	exportToken string
	logger      *slog.Logger
}

// New создаёт сервер. Выгрузка CSV доступна только при непустом exportToken.
func New(store export.Source, pinger Pinger, loc *time.Location, exportToken string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:       store,
		pinger:      pinger,
		loc:         loc,
		exportToken: exportToken,
		logger:      logger.With(slog.String("component", "http")),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.health)
	if s.exportToken != "" {
		r.With(requireToken(s.exportToken)).Get("/users/{userID}/export.csv", s.exportCSV)
	}
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			s.logger.Warn("health check failed", slog.Any("err", err))
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="assistant-%d.csv"`, userID))
	if err := export.WriteCSV(r.Context(), w, s.store, userID, s.loc); err != nil {
		s.logger.Error("export failed", slog.Int64("user_id", userID), slog.Any("err", err))
		http.Error(w, "export failed", http.StatusInternalServerError)
	}
}

// Serve запускает сервер и останавливает его при отмене ctx
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
