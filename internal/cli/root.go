// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/teamchat/internal/config"
)

// Build information, filled in by main.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions holds the global flags.
type rootOptions struct {
	configPath string
	model      string
	offline    bool
	logLevel   string
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "teamchat",
		Short: "Chat with a team of AI personas",
		Long: `teamchat is a terminal chat with a small team of AI personas.

Pick a teammate, upload a .txt, .csv or .pdf for them to reference, and
talk. Switching persona starts a fresh conversation.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default ~/.teamchat/config.toml)")
	pf.StringVarP(&opts.model, "model", "m", "", "model name (overrides config)")
	pf.BoolVar(&opts.offline, "offline", false, "reply locally without contacting the API")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newChatCommand(opts),
		newIngestCommand(),
		newPersonasCommand(opts),
		newConfigCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	root := NewRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:")+" "+err.Error())
		return 1
	}
	return 0
}

// loadConfig reads .env files and the config file, then applies flags.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.model != "" {
		cfg.Completion.Model = o.model
	}
	if o.offline {
		cfg.Completion.Offline = true
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// resolveConfigPath returns the --config value or the default location.
func (o *rootOptions) resolveConfigPath() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.ConfigPath()
}

func newVersionCommand() *cobra.Command {
	var verbose bool
	command := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "teamchat %s\n", Version)
			if verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\nbuilt:  %s\n", GitCommit, BuildDate)
			}
		},
	}
	command.Flags().BoolVarP(&verbose, "verbose", "v", false, "show commit and build date")
	return command
}
