// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/jeranaias/teamchat/internal/commands"
	"github.com/jeranaias/teamchat/internal/completion"
	"github.com/jeranaias/teamchat/internal/config"
	"github.com/jeranaias/teamchat/internal/ingest"
	"github.com/jeranaias/teamchat/internal/persona"
	"github.com/jeranaias/teamchat/internal/session"
)

// =============================================================================
// APPLICATION WIRING
// =============================================================================

// app is everything a front end needs, built from one Config.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	session   *session.Session
	registry  *commands.Registry
	modelName string
	watcher   *persona.Watcher
}

// newApp loads the team, picks the completer and starts a session.
func newApp(cfg *config.Config, logger zerolog.Logger) (*app, error) {
	team, err := persona.LoadTeam(cfg.Personas.File)
	if err != nil {
		return nil, err
	}

	var completer completion.Completer
	modelName := cfg.Completion.Model
	if cfg.Completion.Offline {
		completer = completion.Echo{}
		modelName = "offline"
	} else {
		completer = completion.NewClient(completion.Config{
			APIKey:  cfg.Completion.APIKey,
			Model:   cfg.Completion.Model,
			BaseURL: cfg.Completion.BaseURL,
		}, logger)
	}

	s := session.New(team, completer,
		session.WithIngestor(ingest.New(ingest.WithLogger(logger))),
		session.WithRebuildOnUpload(cfg.Session.RebuildOnUpload),
		session.WithLogger(logger),
	)
	if err := s.Start(); err != nil {
		return nil, err
	}
	if !completer.Configured() {
		logger.Warn().Msg("no API key configured; messages will fail until OPENAI_API_KEY is set")
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		session:   s,
		registry:  commands.NewRegistry(),
		modelName: modelName,
	}, nil
}

// watchPersonas applies edits of the personas file to the session while the
// app runs. notify receives the names that changed.
func (a *app) watchPersonas(notify func(names []string)) {
	path := a.cfg.Personas.File
	if !a.cfg.Personas.Watch || path == "" {
		return
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		a.logger.Debug().Str("path", path).Msg("personas directory missing; not watching")
		return
	}

	w, err := persona.NewWatcher(path, 0, func(personas []persona.Persona) {
		changed := a.session.ApplyPersonas(personas)
		if len(changed) > 0 && notify != nil {
			notify(changed)
		}
	}, a.logger)
	if err != nil {
		a.logger.Warn().Err(err).Msg("personas watcher unavailable")
		return
	}
	if err := w.Watch(); err != nil {
		a.logger.Warn().Err(err).Msg("personas watcher unavailable")
		w.Close()
		return
	}
	a.watcher = w
}

// Close stops background work.
func (a *app) Close() {
	if a.watcher != nil {
		a.watcher.Close()
	}
}

// personaNames lists the team in order, for completion.
func (a *app) personaNames() []string {
	personas := a.session.Personas()
	names := make([]string, len(personas))
	for i, p := range personas {
		names[i] = p.Name
	}
	return names
}

// commandContext returns a context for running slash commands.
func (a *app) commandContext() *commands.Context {
	return &commands.Context{
		Session:   a.session,
		Registry:  a.registry,
		ModelName: a.modelName,
	}
}
