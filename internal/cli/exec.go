package cli

import (
	"errors"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todo-sync/internal/controller"
)

var errNotFound = errors.New("todo not found")

// settle runs a controller command on the calling goroutine and applies its
// result. One-shot commands have no update loop, so they drive it by hand.
func settle(c *controller.Controller, cmd tea.Cmd) error {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if f, ok := msg.(controller.FetchedMsg); ok && f.Err != nil {
		// the controller only logs list failures
		return f.Err
	}
	c.Handle(msg)
	if n, ok := c.Notice(); ok {
		c.Acknowledge()
		return errors.New(n.String())
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, usage("not a todo id: %s", s)
	}
	return id, nil
}

// loadAll fetches every record so per-id commands can check and report it.
func loadAll(c *controller.Controller, id int64) error {
	if err := settle(c, c.SetShowCompleted(true)); err != nil {
		return err
	}
	if _, ok := c.Get(id); !ok {
		return fmt.Errorf("%w: #%d", errNotFound, id)
	}
	return nil
}
