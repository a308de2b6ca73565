// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/teamchat/internal/persona"
)

func newPersonasCommand(opts *rootOptions) *cobra.Command {
	var write, verbose bool

	command := &cobra.Command{
		Use:   "personas",
		Short: "List the team",
		Long: `List the personas, defaults overlaid with the personas file.

--write saves the current team to the personas file so it can be edited.
A running teamchat picks up edits to that file immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			team, err := persona.LoadTeam(cfg.Personas.File)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if write {
				if err := persona.WriteFile(cfg.Personas.File, team.List()); err != nil {
					return err
				}
				fmt.Fprintln(out, SuccessStyle.Render("Wrote "+cfg.Personas.File))
				return nil
			}

			fmt.Fprintln(out, TitleStyle.Render("Team"))
			for i, p := range team.List() {
				fmt.Fprintf(out, "%2d. %s\n", i+1, p.Name)
				if verbose {
					fmt.Fprintln(out, "    "+DimStyle.Render(p.Prompt))
				}
			}
			return nil
		},
	}
	command.Flags().BoolVar(&write, "write", false, "write the team to the personas file")
	command.Flags().BoolVarP(&verbose, "verbose", "v", false, "show prompts")
	return command
}
