package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/idilsaglam/todo-sync/internal/backend"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := backend.Serve(ctx, backend.ConfigFromEnv(), log); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}
