// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package persona

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEAM TESTS
// =============================================================================

func TestDefaultTeam_Order(t *testing.T) {
	team := DefaultTeam()

	assert.Equal(t, []string{
		"Alex (Strategist)",
		"Becky (Marketing Guru)",
		"Chris (Tech Lead)",
		"Dana (Sales Pro)",
		"Eli (Data Analyst)",
	}, team.Names())

	first, ok := team.First()
	require.True(t, ok)
	assert.Equal(t, "You are Alex, a strategic planner focused on long-term goals and market insights.", first.Prompt)
}

func TestDefaults_ReturnsCopy(t *testing.T) {
	d := Defaults()
	d[0].Prompt = "changed"

	p, _ := DefaultTeam().Get("Alex (Strategist)")
	assert.NotEqual(t, "changed", p.Prompt)
}

func TestTeam_EmptyFirst(t *testing.T) {
	_, ok := NewTeam().First()
	assert.False(t, ok)
}

func TestTeam_Edit(t *testing.T) {
	team := DefaultTeam()

	require.NoError(t, team.Edit("Chris (Tech Lead)", "You are Chris, terse."))
	p, _ := team.Get("Chris (Tech Lead)")
	assert.Equal(t, "You are Chris, terse.", p.Prompt)
	assert.Equal(t, 2, team.Index("Chris (Tech Lead)"), "edit must not move the persona")

	err := team.Edit("Zed", "nope")
	assert.True(t, errors.Is(err, ErrUnknownPersona))
}

func TestTeam_Resolve(t *testing.T) {
	team := DefaultTeam()

	tests := []struct {
		name    string
		query   string
		want    string
		wantErr bool
	}{
		{"exact name", "Dana (Sales Pro)", "Dana (Sales Pro)", false},
		{"index", "2", "Becky (Marketing Guru)", false},
		{"prefix", "eli", "Eli (Data Analyst)", false},
		{"index out of range", "9", "", true},
		{"no match", "zed", "", true},
		{"empty", "", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := team.Resolve(tc.query)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnknownPersona)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, p.Name)
		})
	}
}

func TestTeam_ResolveAmbiguousPrefix(t *testing.T) {
	team := NewTeam(Persona{Name: "Sam A"}, Persona{Name: "Sam B"})

	_, err := team.Resolve("sam")
	assert.ErrorIs(t, err, ErrUnknownPersona)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestTeam_Merge(t *testing.T) {
	team := DefaultTeam()

	changed := team.Merge([]Persona{
		{Name: "Alex (Strategist)", Prompt: "You are Alex, but brief."},
		{Name: "Becky (Marketing Guru)", Prompt: Defaults()[1].Prompt},
		{Name: "Fay (Legal)", Prompt: "You are Fay, a careful lawyer."},
		{Name: "", Prompt: "ignored"},
	})

	assert.Equal(t, []string{"Alex (Strategist)", "Fay (Legal)"}, changed)
	assert.Equal(t, 6, team.Len())
	assert.Equal(t, "Fay (Legal)", team.Names()[5])
	assert.Equal(t, 0, team.Index("Alex (Strategist)"))
}

// =============================================================================
// FILE TESTS
// =============================================================================

func TestWriteFileThenLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.toml")

	require.NoError(t, WriteFile(path, Defaults()))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadFile_RejectsNamelessEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[persona]]\nprompt = \"x\"\n"), 0600))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[persona]\nname ="), 0600))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadTeam(t *testing.T) {
	t.Run("missing file gives defaults", func(t *testing.T) {
		team, err := LoadTeam(filepath.Join(t.TempDir(), "nope.toml"))
		require.NoError(t, err)
		assert.Equal(t, 5, team.Len())
	})

	t.Run("file overlays defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "personas.toml")
		require.NoError(t, WriteFile(path, []Persona{{Name: "Eli (Data Analyst)", Prompt: "You are Eli, in SQL only."}}))

		team, err := LoadTeam(path)
		require.NoError(t, err)
		p, _ := team.Get("Eli (Data Analyst)")
		assert.Equal(t, "You are Eli, in SQL only.", p.Prompt)
	})
}

// =============================================================================
// WATCHER TESTS
// =============================================================================

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.toml")
	require.NoError(t, WriteFile(path, Defaults()))

	got := make(chan []Persona, 4)
	w, err := NewWatcher(path, 20*time.Millisecond, func(p []Persona) { got <- p }, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, w.Watch())
	defer w.Close()

	require.NoError(t, WriteFile(path, []Persona{{Name: "Alex (Strategist)", Prompt: "edited"}}))

	select {
	case personas := <-got:
		require.Len(t, personas, 1)
		assert.Equal(t, "edited", personas[0].Prompt)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report the change")
	}
}
