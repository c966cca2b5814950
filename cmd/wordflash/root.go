package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vytor/wordflash/internal/config"
	"github.com/vytor/wordflash/internal/logger"
)

// cli carries the configuration resolved before any subcommand runs.
type cli struct {
	cfg config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "wordflash",
		Short:         "Vocabulary trainer backend: API, job workers and admin tools",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}
	root.PersistentFlags().String("db", "", "database path (overrides DB_PATH)")
	root.PersistentFlags().String("log-level", "", "log level (overrides LOG_LEVEL)")
	root.PersistentFlags().Bool("no-color", false, "disable colored log output")

	root.AddCommand(
		c.serveCmd(),
		c.workerCmd(),
		c.enqueueCmd(),
		c.jobsCmd(),
		c.mergeCmd(),
		c.renameCmd(),
		c.auditCmd(),
		c.importCmd(),
		c.migrateCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	c.cfg = config.Load()
	if path, _ := cmd.Flags().GetString("db"); path != "" {
		c.cfg.DBPath = path
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		c.cfg.LogLevel = level
	}
	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	noColor, _ := cmd.Flags().GetBool("no-color")
	logger.SetDefault(logger.New(
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithLevel(logger.ParseLevel(c.cfg.LogLevel)),
		logger.WithColors(!noColor),
	))
	return nil
}
