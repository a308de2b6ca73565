// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/teamchat/internal/logging"
	"github.com/jeranaias/teamchat/internal/ui/chat"
	"github.com/jeranaias/teamchat/internal/ui/styles"
)

// runTUI opens the full-screen chat view. Logs go to the log file so they
// do not draw over the screen.
func runTUI(opts *rootOptions) error {
	if err := RequiresTTY("open the chat view"); err != nil {
		return err
	}
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger, closer, err := logging.File(cfg.Log.File, level)
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: "+err.Error()+"; logging disabled"))
		logger = zerolog.Nop()
	} else {
		defer closer.Close()
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	theme := styles.NewTheme(cfg.UI.Theme, cfg.UI.NoColor)
	m := chat.New(chat.Options{
		Session:             a.session,
		Registry:            a.registry,
		Theme:               theme,
		ModelName:           a.modelName,
		RenderMarkdown:      cfg.UI.RenderMarkdown,
		ShowKnowledgeBanner: cfg.UI.ShowKnowledgeBanner,
		Logger:              logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	a.watchPersonas(func(names []string) {
		p.Send(chat.PersonasUpdatedMsg{Names: names})
	})

	logger.Info().Str("session", a.session.ID()).Str("model", a.modelName).Msg("chat view started")
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat view: %w", err)
	}
	return nil
}
