package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/todo-sync/internal/controller"
	"github.com/idilsaglam/todo-sync/internal/editsession"
	"github.com/idilsaglam/todo-sync/internal/model"
	"github.com/idilsaglam/todo-sync/internal/ui"
)

func (a *app) addCmd() *cobra.Command {
	var (
		due         string
		done        bool
		completedOn string
	)
	cmd := &cobra.Command{
		Use:     "add <name...>",
		Short:   "Add a todo (name can be multiple words)",
		Example: `  todo add Buy milk --due 2024-01-31`,
		Args:    usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if completedOn != "" && !done {
				return usage("--completed-on needs --done")
			}
			c, err := a.controller(cmd.Context(), true, a.log)
			if err != nil {
				return err
			}
			c.SetFormName(strings.Join(args, " "))
			c.SetFormDueDate(due)
			if done {
				c.ToggleFormCompleted()
				c.SetFormCompletionDate(completedOn)
			}
			send, err := c.SubmitCreate()
			if err != nil {
				return usageError{err}
			}
			before := len(c.Visible())
			if err := settle(c, send); err != nil {
				return err
			}
			if v := c.Visible(); len(v) > before {
				t := v[len(v)-1]
				ui.OK(a.out, fmt.Sprintf("added #%d %s", t.ID, t.Name))
				return nil
			}
			ui.OK(a.out, "added")
			return nil
		},
	}
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&done, "done", false, "create it already completed")
	cmd.Flags().StringVar(&completedOn, "completed-on", "", "completion date for --done (YYYY-MM-DD)")
	return cmd
}

func (a *app) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a todo completed",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.byID(cmd, args[0], func(c *controller.Controller, t model.Todo) error {
				if t.Completed {
					ui.OK(a.out, fmt.Sprintf("#%d already completed", t.ID))
					return nil
				}
				if err := settle(c, c.Complete(t.ID)); err != nil {
					return err
				}
				ui.OK(a.out, fmt.Sprintf("completed #%d %s", t.ID, t.Name))
				return nil
			})
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a todo",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.byID(cmd, args[0], func(c *controller.Controller, t model.Todo) error {
				if err := settle(c, c.Delete(t.ID)); err != nil {
					return err
				}
				ui.OK(a.out, fmt.Sprintf("removed #%d %s", t.ID, t.Name))
				return nil
			})
		},
	}
}

func (a *app) editCmd() *cobra.Command {
	var name, due, completedOn string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a todo's name or dates",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("name") && !flags.Changed("due") && !flags.Changed("completed-on") {
				return usage("nothing to change: pass --name, --due or --completed-on")
			}
			return a.byID(cmd, args[0], func(c *controller.Controller, t model.Todo) error {
				if err := c.BeginEdit(t.ID); err != nil {
					if errors.Is(err, editsession.ErrCompleted) {
						return usageError{err}
					}
					return err
				}
				var err error
				if flags.Changed("name") {
					err = errors.Join(err, c.EditName(t.ID, name))
				}
				if flags.Changed("due") {
					err = errors.Join(err, c.EditDueDate(t.ID, due))
				}
				if flags.Changed("completed-on") {
					err = errors.Join(err, c.EditCompletionDate(t.ID, completedOn))
				}
				if err != nil {
					return err
				}
				send, err := c.SaveEdit(t.ID)
				if err != nil {
					c.CancelEdit(t.ID)
					return usageError{err}
				}
				if err := settle(c, send); err != nil {
					return err
				}
				saved, _ := c.Get(t.ID)
				ui.OK(a.out, fmt.Sprintf("saved #%d %s", saved.ID, saved.Name))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&due, "due", "", "new due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&completedOn, "completed-on", "", "new completion date (YYYY-MM-DD)")
	return cmd
}

// byID loads the full list, resolves id and hands the record to fn.
func (a *app) byID(cmd *cobra.Command, arg string, fn func(*controller.Controller, model.Todo) error) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	c, err := a.controller(cmd.Context(), true, a.log)
	if err != nil {
		return err
	}
	if err := loadAll(c, id); err != nil {
		return err
	}
	t, _ := c.Get(id)
	return fn(c, t)
}
