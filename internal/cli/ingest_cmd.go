// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/teamchat/internal/ingest"
	"github.com/jeranaias/teamchat/internal/prompt"
	"github.com/jeranaias/teamchat/internal/util"
)

func newIngestCommand() *cobra.Command {
	var preview bool

	command := &cobra.Command{
		Use:   "ingest <path>",
		Short: "Print the text teamchat extracts from a document",
		Long: `Extract a .txt, .csv or .pdf the same way /upload does and print the
result. With --preview only the part that reaches the system prompt is shown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := ingest.IngestFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if preview {
				text = prompt.FirstNChars(text, prompt.KnowledgeCap)
			}
			fmt.Fprintln(out, strings.TrimRight(text, "\n"))
			fmt.Fprintln(cmd.ErrOrStderr(), DimStyle.Render(fmt.Sprintf("%d characters (%d reach the prompt)",
				util.RuneLen(text), util.RuneLen(prompt.FirstNChars(text, prompt.KnowledgeCap)))))
			return nil
		},
	}
	command.Flags().BoolVar(&preview, "preview", false, "only print what reaches the system prompt")
	return command
}
