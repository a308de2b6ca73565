// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/teamchat/internal/export"
	"github.com/jeranaias/teamchat/internal/session"
)

// UploadSuccessText is shown after a document is imported.
const UploadSuccessText = "Document imported! Your AI can now reference it."

// deferredNote follows changes that only apply to the next conversation.
const deferredNote = "It takes effect when you next switch persona."

// =============================================================================
// CONTEXT AND RESULT
// =============================================================================

// Context carries what handlers act on.
type Context struct {
	Ctx       context.Context
	Session   *session.Session
	Registry  *Registry
	ModelName string
}

func (c *Context) context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

// ResultKind tells front ends how to style a Result.
type ResultKind int

const (
	KindInfo ResultKind = iota
	KindSuccess
	KindError
)

// Result is the outcome of a command.
type Result struct {
	Kind ResultKind
	Text string
	Err  error

	// Quit asks the front end to exit.
	Quit bool

	// Reset means the conversation was replaced and should be redrawn.
	Reset bool
}

func info(format string, args ...any) Result {
	return Result{Kind: KindInfo, Text: fmt.Sprintf(format, args...)}
}

func success(format string, args ...any) Result {
	return Result{Kind: KindSuccess, Text: fmt.Sprintf(format, args...)}
}

func failure(err error) Result {
	return Result{Kind: KindError, Text: err.Error(), Err: err}
}

// =============================================================================
// EXECUTION
// =============================================================================

// ErrUnknownCommand is returned for input that names no registered command.
var ErrUnknownCommand = errors.New("unknown command")

// Execute parses and runs one slash command.
func (r *Registry) Execute(ctx *Context, input string) Result {
	in := r.Parse(input)
	if !in.IsCommand {
		return failure(fmt.Errorf("not a command: %q", input))
	}
	if in.Command == nil {
		return failure(fmt.Errorf("%w: %s (try /help)", ErrUnknownCommand, in.CommandName))
	}
	if err := ValidateArgs(in.Command, in); err != nil {
		return failure(err)
	}
	if ctx.Registry == nil {
		ctx.Registry = r
	}
	return in.Command.Handler(ctx, in)
}

// =============================================================================
// HANDLERS
// =============================================================================

func handleHelp(ctx *Context, _ ParseResult) Result {
	return info("%s", ctx.Registry.HelpText())
}

func handleQuit(*Context, ParseResult) Result {
	return Result{Kind: KindInfo, Text: "Goodbye!", Quit: true}
}

func handlePersona(ctx *Context, in ParseResult) Result {
	query := in.Arg(0)
	if query == "" {
		p, ok := ctx.Session.ActivePersona()
		if !ok {
			return failure(session.ErrNotStarted)
		}
		return info("Chatting with: %s", p.Name)
	}

	p, err := ctx.Session.ResolvePersona(query)
	if err != nil {
		return failure(err)
	}
	if cur, ok := ctx.Session.ActivePersona(); ok && cur.Name == p.Name {
		return info("Already chatting with: %s", p.Name)
	}
	if err := ctx.Session.SelectPersona(p.Name); err != nil {
		return failure(err)
	}
	res := success("Chatting with: %s", p.Name)
	res.Reset = true
	return res
}

func handlePersonas(ctx *Context, _ ParseResult) Result {
	active, _ := ctx.Session.ActivePersona()
	var sb strings.Builder
	sb.WriteString("Team:\n")
	for i, p := range ctx.Session.Personas() {
		marker := " "
		if p.Name == active.Name {
			marker = "*"
		}
		fmt.Fprintf(&sb, " %s %d. %s\n", marker, i+1, p.Name)
	}
	return info("%s", strings.TrimRight(sb.String(), "\n"))
}

func handleEdit(ctx *Context, in ParseResult) Result {
	p, ok := ctx.Session.ActivePersona()
	if !ok {
		return failure(session.ErrNotStarted)
	}
	text := strings.TrimSpace(in.Arg(0))
	if text == "" {
		return info("%s:\n%s", p.Name, p.Prompt)
	}
	if err := ctx.Session.EditPersona(p.Name, text); err != nil {
		return failure(err)
	}
	if ctx.Session.SystemPromptStale() {
		return success("Updated %s. %s", p.Name, deferredNote)
	}
	return success("Updated %s.", p.Name)
}

func handleUpload(ctx *Context, in ParseResult) Result {
	path := expandHome(in.Arg(0))
	f, err := os.Open(path)
	if err != nil {
		return failure(fmt.Errorf("open %s: %w", path, err))
	}
	defer f.Close()

	if err := ctx.Session.LoadDocument(ctx.context(), filepath.Base(path), f); err != nil {
		return failure(err)
	}
	if ctx.Session.SystemPromptStale() {
		return success("%s %s", UploadSuccessText, deferredNote)
	}
	return success("%s", UploadSuccessText)
}

func handleForget(ctx *Context, _ ParseResult) Result {
	if ctx.Session.KnowledgeBase() == "" {
		return info("No document loaded.")
	}
	ctx.Session.ClearKnowledgeBase()
	if ctx.Session.SystemPromptStale() {
		return success("Knowledge base cleared. %s", deferredNote)
	}
	return success("Knowledge base cleared.")
}

func handleExport(ctx *Context, in ParseResult) Result {
	t := export.FromSession(ctx.Session, ctx.ModelName)
	path, err := export.ToFile(t, expandHome(in.Arg(0)))
	if err != nil {
		return failure(err)
	}
	return success("Transcript saved to %s", path)
}

// expandHome replaces a leading ~ with the home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
