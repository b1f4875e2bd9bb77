package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/todo-sync/internal/model"
	"github.com/idilsaglam/todo-sync/internal/todostore"
	"github.com/idilsaglam/todo-sync/internal/tui"
	"github.com/idilsaglam/todo-sync/internal/ui"
)

type lsOptions struct {
	plain bool
	all   bool
	group bool
}

func (a *app) lsCmd() *cobra.Command {
	var opt lsOptions
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List todos (interactive unless --plain)",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			showCompleted := opt.all || a.cfg.ShowCompleted
			if opt.plain {
				return a.listPlain(cmd, showCompleted, opt.group)
			}
			return a.listTUI(cmd, showCompleted)
		},
	}
	cmd.Flags().BoolVar(&opt.plain, "plain", false, "print once instead of opening the interactive list")
	cmd.Flags().BoolVarP(&opt.all, "all", "a", false, "include completed todos")
	cmd.Flags().BoolVar(&opt.group, "group", false, "group output by pending/done (with --plain)")
	return cmd
}

func (a *app) listTUI(cmd *cobra.Command, showCompleted bool) error {
	log, closeLog, err := a.tuiLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	c, err := a.controller(cmd.Context(), showCompleted, log)
	if err != nil {
		return err
	}
	return tui.Run(c)
}

// tuiLogger keeps slog output off the alternate screen.
func (a *app) tuiLogger() (*slog.Logger, func(), error) {
	if a.cfg.LogFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(a.cfg.LogFile), 0o700); err != nil {
		return nil, nil, fmt.Errorf("log dir: %w", err)
	}
	f, err := os.OpenFile(a.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), func() { f.Close() }, nil
}

func (a *app) listPlain(cmd *cobra.Command, showCompleted, group bool) error {
	c, err := a.controller(cmd.Context(), showCompleted, a.log)
	if err != nil {
		return err
	}
	if err := settle(c, c.Load()); err != nil {
		return err
	}
	renderList(a.out, c.Visible(), showCompleted, group)
	return nil
}

func renderList(w io.Writer, items []model.Todo, showCompleted, group bool) {
	t := ui.Current()
	d, p := todostore.Stats(items)
	scope := "open"
	if showCompleted {
		scope = "all"
	}
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %s",
		ui.C(t.Title, "Todos"),
		ui.C(t.Success, t.SymDone), d,
		ui.C(t.Pending, t.SymUnchecked), p,
		ui.C(t.Accent, "Showing"), scope,
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, ui.C(t.Muted, ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")

	if group {
		lines = append(lines, groupLines(items)...)
	} else {
		lines = append(lines, flatLines(items)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(t.Muted, "Tip: add with `todo add \"Buy milk\" --due 2024-01-31`"))
	ui.Panel(w, lines)
}

func flatLines(items []model.Todo) []string {
	t := ui.Current()
	if len(items) == 0 {
		return []string{ui.C(t.Muted, "no todos")}
	}
	today := model.Today()
	out := make([]string, 0, len(items))
	for _, it := range items {
		box, color := t.BoxUnchecked, t.Muted
		if it.Completed {
			box, color = t.BoxChecked, t.Success
		}
		name := it.Name
		if r := []rune(name); len(r) > 60 {
			name = string(r[:57]) + "..."
		}
		line := fmt.Sprintf("%s %s %s", ui.Dim(fmt.Sprintf("#%-3d", it.ID)), ui.C(color, box), name)
		if it.DueDate != "" {
			due := t.Muted
			// DateLayout strings order lexically
			if !it.Completed && it.DueDate < today {
				due = t.Overdue
			}
			line += "  " + ui.C(due, "due "+it.DueDate)
		}
		if it.Completed && it.CompletionDate != "" {
			line += "  " + ui.C(t.Success, "done "+it.CompletionDate)
		}
		out = append(out, line)
	}
	return out
}

func groupLines(items []model.Todo) []string {
	t := ui.Current()
	var pend, done []model.Todo
	for _, it := range items {
		if it.Completed {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	var lines []string
	lines = append(lines, ui.C(t.Accent, "Pending"))
	if len(pend) == 0 {
		lines = append(lines, ui.C(t.Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(t.Accent, "Done"))
	if len(done) == 0 {
		lines = append(lines, ui.C(t.Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(done)...)
	}
	return lines
}
