package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"radar/internal/config"
	"radar/internal/logging"
)

// commandContext carries lazily initialized shared state between
// commands: configuration and the logging system.
type commandContext struct {
	configFlag *string
	cfg        *config.Config
	sys        *logging.System
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(*c.configFlag)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) ensureLogging() (*logging.System, error) {
	if c.sys != nil {
		return c.sys, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.sys = logging.Setup(logging.Config{
		MinLevel:   cfg.MinLevel(),
		JSONFormat: cfg.LogJSONFormat,
		Colors:     cfg.ColorsEnabled(),
	})
	return c.sys, nil
}

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := &commandContext{configFlag: &configFlag}

	rootCmd := &cobra.Command{
		Use:           "radar",
		Short:         "Radar task runner",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureLogging()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newWorkerCommand(ctx))

	return rootCmd
}
