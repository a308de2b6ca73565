// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/teamchat/internal/completion"
	"github.com/jeranaias/teamchat/internal/ingest"
	"github.com/jeranaias/teamchat/internal/persona"
	"github.com/jeranaias/teamchat/internal/session"
)

func newContext(t *testing.T, opts ...session.Option) *Context {
	t.Helper()
	opts = append([]session.Option{session.WithIngestor(ingest.New(ingest.WithTempDir(t.TempDir())))}, opts...)
	s := session.New(persona.DefaultTeam(), completion.Echo{}, opts...)
	require.NoError(t, s.Start())
	return &Context{Ctx: context.Background(), Session: s, ModelName: "gpt-4"}
}

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a b  c", []string{"a", "b", "c"}},
		{`"my file.txt"`, []string{"my file.txt"}},
		{`'single quoted' x`, []string{"single quoted", "x"}},
		{`"esc \"q\""`, []string{`esc "q"`}},
		{`""`, []string{""}},
		{"héllo wörld", []string{"héllo", "wörld"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseArgs(tt.in))
		})
	}
}

func TestParse(t *testing.T) {
	r := NewRegistry()

	res := r.Parse("hello there")
	assert.False(t, res.IsCommand)

	res = r.Parse("  /P  Chris (Tech Lead) ")
	assert.True(t, res.IsCommand)
	require.NotNil(t, res.Command)
	assert.Equal(t, "/persona", res.Command.Name)
	assert.Equal(t, "Chris (Tech Lead)", res.RawArgs)
	assert.Equal(t, "Chris (Tech Lead)", res.Arg(0))

	res = r.Parse("/edit You're Alex, be brief.")
	assert.Equal(t, "You're Alex, be brief.", res.Arg(0))

	res = r.Parse(`/upload "my notes.txt"`)
	assert.Equal(t, "my notes.txt", res.Arg(0))

	res = r.Parse("/nope")
	assert.True(t, res.IsCommand)
	assert.Nil(t, res.Command)
}

func TestExtractCommandName(t *testing.T) {
	assert.Equal(t, "/persona", ExtractCommandName("/persona chris"))
	assert.Equal(t, "/help", ExtractCommandName(" /help"))
	assert.Equal(t, "", ExtractCommandName("hello"))
	assert.True(t, IsCommand("  /x"))
	assert.False(t, IsCommand("x /y"))
}

func TestRegistryOrderAndAliases(t *testing.T) {
	r := NewRegistry()
	var names []string
	for _, c := range r.All() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"/help", "/persona", "/personas", "/edit", "/upload", "/forget", "/export", "/quit"}, names)

	assert.Equal(t, "/quit", r.Get("/exit").Name)
	assert.Equal(t, "/help", r.Get("/?").Name)
	assert.Nil(t, r.Get("/unknown"))

	help := r.HelpText()
	for _, n := range names {
		assert.Contains(t, help, n)
	}
}

// =============================================================================
// HANDLER TESTS
// =============================================================================

func TestExecuteUnknownAndMissingArgs(t *testing.T) {
	r := NewRegistry()
	ctx := newContext(t)

	res := r.Execute(ctx, "/bogus")
	assert.Equal(t, KindError, res.Kind)
	assert.ErrorIs(t, res.Err, ErrUnknownCommand)

	res = r.Execute(ctx, "/upload")
	assert.Equal(t, KindError, res.Kind)
	var verr *ValidationError
	assert.ErrorAs(t, res.Err, &verr)
}

func TestPersonaCommand(t *testing.T) {
	r := NewRegistry()
	ctx := newContext(t)
	_, err := ctx.Session.Submit(context.Background(), "hi")
	require.NoError(t, err)

	res := r.Execute(ctx, "/persona")
	assert.Equal(t, "Chatting with: Alex (Strategist)", res.Text)

	res = r.Execute(ctx, "/persona 1")
	assert.False(t, res.Reset)
	assert.Len(t, ctx.Session.Messages(), 3)

	res = r.Execute(ctx, "/persona chris")
	assert.Equal(t, KindSuccess, res.Kind)
	assert.True(t, res.Reset)
	assert.Equal(t, "Chatting with: Chris (Tech Lead)", res.Text)
	assert.Len(t, ctx.Session.Messages(), 1)

	res = r.Execute(ctx, "/persona 9")
	assert.Equal(t, KindError, res.Kind)
	assert.ErrorIs(t, res.Err, persona.ErrUnknownPersona)
}

func TestPersonasCommand(t *testing.T) {
	res := NewRegistry().Execute(newContext(t), "/personas")
	assert.Contains(t, res.Text, " * 1. Alex (Strategist)")
	assert.Contains(t, res.Text, "   5. Eli (Data Analyst)")
}

func TestEditCommand(t *testing.T) {
	r := NewRegistry()
	ctx := newContext(t)

	res := r.Execute(ctx, "/edit")
	assert.Contains(t, res.Text, "You are Alex, a strategic planner")

	res = r.Execute(ctx, "/edit You are Alex. Be brief.")
	assert.Equal(t, KindSuccess, res.Kind)
	assert.Contains(t, res.Text, deferredNote)
	p, _ := ctx.Session.ActivePersona()
	assert.Equal(t, "You are Alex. Be brief.", p.Prompt)

	ctx = newContext(t, session.WithRebuildOnUpload(true))
	res = r.Execute(ctx, "/edit You are Alex. Be brief.")
	assert.NotContains(t, res.Text, deferredNote)
	assert.Equal(t, "You are Alex. Be brief.", ctx.Session.Messages()[0].Content)
}

func TestUploadAndForget(t *testing.T) {
	r := NewRegistry()
	ctx := newContext(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "brief notes.TXT")
	require.NoError(t, os.WriteFile(path, []byte("Launch is in May."), 0600))

	res := r.Execute(ctx, "/upload "+path)
	require.Equal(t, KindSuccess, res.Kind, res.Text)
	assert.True(t, strings.HasPrefix(res.Text, UploadSuccessText))
	assert.Equal(t, "Launch is in May.", ctx.Session.KnowledgeBase())

	res = r.Execute(ctx, "/upload "+filepath.Join(dir, "missing.txt"))
	assert.Equal(t, KindError, res.Kind)
	assert.Equal(t, "Launch is in May.", ctx.Session.KnowledgeBase())

	bad := filepath.Join(dir, "deck.pptx")
	require.NoError(t, os.WriteFile(bad, []byte("x"), 0600))
	res = r.Execute(ctx, "/upload "+bad)
	assert.ErrorIs(t, res.Err, ingest.ErrUnsupportedFormat)

	res = r.Execute(ctx, "/forget")
	assert.Equal(t, KindSuccess, res.Kind)
	assert.Empty(t, ctx.Session.KnowledgeBase())

	res = r.Execute(ctx, "/forget")
	assert.Equal(t, "No document loaded.", res.Text)
}

func TestExportCommand(t *testing.T) {
	r := NewRegistry()
	ctx := newContext(t)

	res := r.Execute(ctx, "/export "+t.TempDir())
	assert.Equal(t, KindError, res.Kind, "nothing to export yet")

	_, err := ctx.Session.Submit(context.Background(), "hello")
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "chat.md")
	res = r.Execute(ctx, "/export "+out)
	require.Equal(t, KindSuccess, res.Kind, res.Text)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestQuitAndHelp(t *testing.T) {
	r := NewRegistry()
	ctx := newContext(t)
	assert.True(t, r.Execute(ctx, "/q").Quit)
	assert.Contains(t, r.Execute(ctx, "/help").Text, "/upload <path>")
}

// =============================================================================
// COMPLETION TESTS
// =============================================================================

func TestCompleteCommands(t *testing.T) {
	c := NewCompleter(NewRegistry(), nil)

	lines := c.Lines("/pe")
	assert.Equal(t, []string{"/persona", "/personas"}, lines)

	assert.Empty(t, c.Complete("hello"))
	assert.Contains(t, c.Lines("/"), "/help")
}

func TestCompletePersonas(t *testing.T) {
	team := persona.DefaultTeam()
	c := NewCompleter(NewRegistry(), team.Names)

	assert.Equal(t, []string{"/persona Chris (Tech Lead)"}, c.Lines("/persona ch"))
	assert.Len(t, c.Lines("/persona "), 5)
	assert.Empty(t, c.Lines("/persona zed"))
}

func TestCompleteFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.docx"), nil, 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.CSV"), nil, 0600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0700))

	c := NewCompleter(NewRegistry(), nil)
	lines := c.Lines("/upload " + dir + string(os.PathSeparator) + "n")
	assert.ElementsMatch(t, []string{
		"/upload " + filepath.Join(dir, "notes.txt"),
		"/upload " + filepath.Join(dir, "nested") + string(os.PathSeparator),
	}, lines)

	lines = c.Lines("/export " + dir + string(os.PathSeparator) + "notes")
	assert.Len(t, lines, 2, "export offers any extension")
}
