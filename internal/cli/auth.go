package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/todo-sync/internal/auth"
	"github.com/idilsaglam/todo-sync/internal/ui"
)

var errNotLoggedIn = errors.New("not logged in")

func (a *app) authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the backend token",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "login [token]",
			Short: "Save a token (read from stdin when omitted)",
			Args:  usageArgs(cobra.MaximumNArgs(1)),
			RunE:  a.runLogin,
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Remove the saved token",
			Args:  usageArgs(cobra.NoArgs),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := auth.Delete(); err != nil {
					return err
				}
				ui.OK(a.out, "logged out")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show where the active token comes from",
			Args:  usageArgs(cobra.NoArgs),
			RunE:  a.runStatus,
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Decode the active token's claims",
			Args:  usageArgs(cobra.NoArgs),
			RunE:  a.runWhoami,
		},
	)
	return cmd
}

func (a *app) runLogin(cmd *cobra.Command, args []string) error {
	var token string
	if len(args) == 1 {
		token = args[0]
	} else {
		sc := bufio.NewScanner(a.in)
		if sc.Scan() {
			token = sc.Text()
		}
		if err := sc.Err(); err != nil {
			return fmt.Errorf("read token: %w", err)
		}
	}
	ti, err := auth.Set(token)
	if err != nil {
		if errors.Is(err, auth.ErrEmptyToken) {
			return usageError{err}
		}
		return err
	}
	msg := "logged in"
	if ti.ExpiresAt != nil {
		msg += ", expires " + ti.ExpiresAt.Local().Format(time.RFC1123)
	}
	ui.OK(a.out, msg)
	return nil
}

func (a *app) runStatus(cmd *cobra.Command, args []string) error {
	ti, err := auth.Get(a.cfg.Token)
	if err != nil {
		return err
	}
	if ti == nil {
		return errNotLoggedIn
	}
	fmt.Fprintf(a.out, "source:  %s\n", ti.Source)
	fmt.Fprintf(a.out, "token:   %s\n", mask(ti.Token))
	if ti.ExpiresAt != nil {
		state := "valid"
		if ti.Expired(time.Now()) {
			state = "expired"
		}
		fmt.Fprintf(a.out, "expires: %s (%s)\n", ti.ExpiresAt.Local().Format(time.RFC1123), state)
	}
	return nil
}

func (a *app) runWhoami(cmd *cobra.Command, args []string) error {
	ti, err := auth.Get(a.cfg.Token)
	if err != nil {
		return err
	}
	if ti == nil {
		return errNotLoggedIn
	}
	c, err := auth.Inspect(ti.Token)
	if err != nil {
		return err
	}
	if c.Subject != "" {
		fmt.Fprintf(a.out, "subject: %s\n", c.Subject)
	}
	if c.Name != "" {
		fmt.Fprintf(a.out, "name:    %s\n", c.Name)
	}
	if c.Email != "" {
		fmt.Fprintf(a.out, "email:   %s\n", c.Email)
	}
	if c.Issuer != "" {
		fmt.Fprintf(a.out, "issuer:  %s\n", c.Issuer)
	}
	return nil
}

func mask(tok string) string {
	if len(tok) <= 8 {
		return strings.Repeat("*", len(tok))
	}
	return tok[:4] + strings.Repeat("*", len(tok)-8) + tok[len(tok)-4:]
}
