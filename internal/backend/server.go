// Package backend wires the reference /todos server: SQLite store, chi
// handlers and an http.Server with graceful shutdown.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/idilsaglam/todo-sync/internal/backend/handlers"
	"github.com/idilsaglam/todo-sync/internal/backend/store"
)

const shutdownGrace = 5 * time.Second

type Config struct {
	Port          string
	DBPath        string
	Token         string
	AllowedOrigin string
}

// ConfigFromEnv reads PORT, DB_PATH, TODO_SERVER_TOKEN and
// TODO_SERVER_ALLOWED_ORIGIN.
func ConfigFromEnv() Config {
	return Config{
		Port:          getEnv("PORT", "3000"),
		DBPath:        getEnv("DB_PATH", "./data/todos.db"),
		Token:         os.Getenv("TODO_SERVER_TOKEN"),
		AllowedOrigin: os.Getenv("TODO_SERVER_ALLOWED_ORIGIN"),
	}
}

func (c Config) Addr() string { return net.JoinHostPort("", c.Port) }

// Serve runs the server until ctx is cancelled, then drains in-flight
// requests.
func Serve(ctx context.Context, cfg Config, log *slog.Logger) error {
	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}

	s, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	h := handlers.New(s,
		handlers.WithLogger(log),
		handlers.WithToken(cfg.Token),
		handlers.WithAllowedOrigin(cfg.AllowedOrigin),
	)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", "http://localhost"+srv.Addr, "db", cfg.DBPath, "auth", cfg.Token != "")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
