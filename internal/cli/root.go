// Package cli is the todo command tree. Run keeps the exit code contract:
// 0 ok, 1 runtime failure, 2 usage or validation error.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/todo-sync/internal/auth"
	"github.com/idilsaglam/todo-sync/internal/config"
	"github.com/idilsaglam/todo-sync/internal/controller"
	"github.com/idilsaglam/todo-sync/internal/syncclient"
	"github.com/idilsaglam/todo-sync/internal/ui"
)

// usageError marks failures that should exit 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usage(format string, a ...any) error { return usageError{fmt.Errorf(format, a...)} }

func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// app carries what every subcommand needs once config is loaded.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	verbose bool
	cfg     *config.Config
	log     *slog.Logger

	// newRemote is swapped in tests.
	newRemote func(cfg *config.Config, token string) controller.Remote
}

func defaultRemote(cfg *config.Config, token string) controller.Remote {
	return syncclient.New(cfg.BaseURL,
		syncclient.WithToken(token),
		syncclient.WithTimeout(cfg.Timeout),
	)
}

// Run executes the command line and returns the process exit code.
func Run(args []string) int {
	return run(context.Background(), args, os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	a := &app{in: in, out: out, errOut: errOut, newRemote: defaultRemote}
	root := a.rootCmd()
	if args == nil {
		// cobra falls back to os.Args for nil
		args = []string{}
	}
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	ui.Fail(errOut, err.Error())
	if errors.Is(err, errNotFound) {
		ui.Hint(errOut, "run `todo ls --plain --all` to see valid ids")
	}
	var ue usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "todo",
		Short: "todo - keep a remote todo list in sync from the terminal",
		Long: `todo talks to a /todos backend. Changes are only shown once the
backend has confirmed them.

Run "todo ls" for the interactive list or "todo serve" to start a local backend.`,
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return usage("missing subcommand")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		a.lsCmd(),
		a.addCmd(),
		a.doneCmd(),
		a.rmCmd(),
		a.editCmd(),
		a.authCmd(),
		a.configCmd(),
		a.serveCmd(),
	)
	return root
}

func (a *app) setup() error {
	if a.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		a.cfg = cfg
	}
	if err := ui.SetTheme(a.cfg.Theme); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
	return nil
}

func (a *app) token() (string, error) {
	ti, err := auth.Get(a.cfg.Token)
	if err != nil {
		return "", err
	}
	if ti == nil {
		return "", nil
	}
	return ti.Token, nil
}

func (a *app) controller(ctx context.Context, showCompleted bool, log *slog.Logger) (*controller.Controller, error) {
	tok, err := a.token()
	if err != nil {
		return nil, err
	}
	return controller.New(ctx, a.newRemote(a.cfg, tok),
		controller.WithLogger(log),
		controller.WithShowCompleted(showCompleted),
	), nil
}
