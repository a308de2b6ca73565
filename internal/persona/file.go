// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package persona

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/teamchat/internal/util"
)

// fileFormat is the on-disk layout of a personas file:
//
//	[[persona]]
//	name = "Alex (Strategist)"
//	prompt = "You are Alex, ..."
type fileFormat struct {
	Persona []Persona `toml:"persona"`
}

// LoadFile reads personas from a TOML file. Entries without a name are
// rejected; prompts are kept verbatim.
func LoadFile(path string) ([]Persona, error) {
	var f fileFormat
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("failed to decode personas file %s: %w", path, err)
	}
	for i, p := range f.Persona {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("personas file %s: entry %d has no name", path, i+1)
		}
	}
	return f.Persona, nil
}

// WriteFile writes personas to path as TOML with owner-only permissions.
func WriteFile(path string, personas []Persona) error {
	var buf bytes.Buffer
	buf.WriteString("# teamchat personas\n")
	buf.WriteString("# Edits to this file are picked up while teamchat is running.\n\n")
	if err := toml.NewEncoder(&buf).Encode(fileFormat{Persona: personas}); err != nil {
		return fmt.Errorf("failed to encode personas: %w", err)
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0600)
}

// LoadTeam returns the default team overlaid with the personas in path.
// A missing file is not an error.
func LoadTeam(path string) (*Team, error) {
	team := DefaultTeam()
	if path == "" {
		return team, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return team, nil
	}
	personas, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	team.Merge(personas)
	return team, nil
}
