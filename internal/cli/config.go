package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/todo-sync/internal/config"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show merged configuration",
			Args:  usageArgs(cobra.NoArgs),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg := *a.cfg
				if cfg.Token != "" {
					cfg.Token = mask(cfg.Token)
				}
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("marshal config: %w", err)
				}
				fmt.Fprintln(a.out, "# Merged configuration (global + project + env)")
				fmt.Fprint(a.out, string(data))
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show configuration file paths",
			Args:  usageArgs(cobra.NoArgs),
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(a.out, "Global:  %s\n", config.GlobalConfigPath())
				fmt.Fprintf(a.out, "Project: %s\n", config.ProjectConfigPath())
			},
		},
	)
	return cmd
}
