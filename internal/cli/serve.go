package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/todo-sync/internal/backend"
)

func (a *app) serveCmd() *cobra.Command {
	cfg := backend.ConfigFromEnv()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference /todos backend",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			level := slog.LevelInfo
			if a.verbose {
				level = slog.LevelDebug
			}
			log := slog.New(slog.NewJSONHandler(a.errOut, &slog.HandlerOptions{Level: level}))
			return backend.Serve(ctx, cfg, log)
		},
	}
	cmd.Flags().StringVar(&cfg.Port, "port", cfg.Port, "listen port ($PORT)")
	cmd.Flags().StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path ($DB_PATH)")
	cmd.Flags().StringVar(&cfg.Token, "token", cfg.Token, "require this bearer token ($TODO_SERVER_TOKEN)")
	cmd.Flags().StringVar(&cfg.AllowedOrigin, "allowed-origin", cfg.AllowedOrigin, "CORS origin ($TODO_SERVER_ALLOWED_ORIGIN)")
	return cmd
}
