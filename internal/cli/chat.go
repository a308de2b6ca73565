// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-based chat for terminals where the full-screen view is
// unwanted. Shares slash commands with the full-screen view.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/teamchat/internal/commands"
	"github.com/jeranaias/teamchat/internal/completion"
	"github.com/jeranaias/teamchat/internal/config"
	"github.com/jeranaias/teamchat/internal/logging"
	"github.com/jeranaias/teamchat/internal/model"
	"github.com/jeranaias/teamchat/internal/session"
	"github.com/jeranaias/teamchat/internal/ui/styles"
	"github.com/jeranaias/teamchat/internal/util"
)

// chatPrompt is plain text; liner miscounts the width of styled prompts.
const chatPrompt = "you> "

func newChatCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat line by line with history",
		Long: `Chat line by line. Up and down recall earlier lines; Tab completes
slash commands, persona names and file paths. Ctrl+D or /quit exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), opts)
		},
	}
}

// replLogLevel picks the level for logs written under the prompt. Only
// warnings reach the terminal unless --log-level or the config asked for
// something other than the default.
func replLogLevel(cfg *config.Config, flag string) string {
	if flag != "" {
		return flag
	}
	if cfg.Log.Level != config.Default().Log.Level {
		return cfg.Log.Level
	}
	return "warn"
}

func runChat(ctx context.Context, opts *rootOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(replLogLevel(cfg, opts.logLevel))
	if err != nil {
		return err
	}
	logger := logging.Stderr(level, !ColorsEnabled())

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	in := newLineInput(commands.NewCompleter(a.registry, a.personaNames))
	defer in.Close()

	r := newREPL(a, in, os.Stdout)
	if IsStdoutTTY() && cfg.UI.RenderMarkdown {
		theme := styles.NewTheme(cfg.UI.Theme, cfg.UI.NoColor || !ColorsEnabled())
		if md, err := theme.MarkdownRenderer(GetTerminalWidth() - 4); err == nil {
			r.markdown = md
		}
	}
	r.showBanner = cfg.UI.ShowKnowledgeBanner

	a.watchPersonas(func(names []string) {
		fmt.Fprintln(os.Stdout, "\n"+InfoStyle.Render("Personas updated: "+strings.Join(names, ", ")))
	})
	return r.run(ctx)
}

// =============================================================================
// LINE INPUT
// =============================================================================

// lineReader is the part of liner the REPL needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

// lineInput wraps liner with persistent history.
type lineInput struct {
	line        *liner.State
	historyFile string
}

func newLineInput(completer *commands.Completer) *lineInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completer.Lines)

	historyFile, err := config.HistoryPath()
	if err != nil {
		historyFile = ""
	}
	in := &lineInput{line: line, historyFile: historyFile}
	in.loadHistory()
	return in
}

func (in *lineInput) loadHistory() {
	if in.historyFile == "" {
		return
	}
	if f, err := os.Open(in.historyFile); err == nil {
		in.line.ReadHistory(f)
		f.Close()
	}
}

// Prompt reads one line and records it in history.
func (in *lineInput) Prompt(prompt string) (string, error) {
	text, err := in.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) != "" {
		in.line.AppendHistory(text)
	}
	return text, nil
}

// Close saves history with owner-only permissions and restores the terminal.
func (in *lineInput) Close() {
	defer in.line.Close()
	if in.historyFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(in.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(in.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	in.line.WriteHistory(f)
}

// =============================================================================
// REPL
// =============================================================================

type repl struct {
	app        *app
	in         lineReader
	out        io.Writer
	cmdCtx     *commands.Context
	markdown   *glamour.TermRenderer
	showBanner bool
}

func newREPL(a *app, in lineReader, out io.Writer) *repl {
	return &repl{
		app:        a,
		in:         in,
		out:        out,
		cmdCtx:     a.commandContext(),
		showBanner: true,
	}
}

// run reads lines until /quit, Ctrl+D or Ctrl+C.
func (r *repl) run(ctx context.Context) error {
	r.cmdCtx.Ctx = ctx
	r.printWelcome()

	for {
		line, err := r.in.Prompt(chatPrompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(r.out, DimStyle.Render("Goodbye!"))
				return nil
			}
			return err
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}

		if commands.IsCommand(text) {
			res := r.app.registry.Execute(r.cmdCtx, text)
			r.printResult(res)
			if res.Quit {
				return nil
			}
			if res.Reset {
				r.printBanner()
			}
			continue
		}

		fmt.Fprintln(r.out, DimStyle.Render(styles.ThinkingText(3)))
		reply, err := r.app.session.Submit(ctx, text)
		if err != nil {
			r.printError(err)
			continue
		}
		r.printReply(reply)
	}
}

func (r *repl) printWelcome() {
	fmt.Fprintln(r.out, TitleStyle.Render("teamchat")+" "+DimStyle.Render("("+r.app.modelName+")"))
	r.printBanner()
	fmt.Fprintln(r.out, DimStyle.Render("Type /help for commands, /quit to exit."))
	fmt.Fprintln(r.out)
}

// printBanner shows who is active and whether a document is loaded.
func (r *repl) printBanner() {
	if p, ok := r.app.session.ActivePersona(); ok {
		fmt.Fprintln(r.out, InfoStyle.Render("Chatting with: "+p.Name))
	}
	if kb := r.app.session.KnowledgeBase(); kb != "" && r.showBanner {
		fmt.Fprintln(r.out, SuccessStyle.Render(fmt.Sprintf("Knowledge base loaded (%d chars)", util.RuneLen(kb))))
	}
}

func (r *repl) printResult(res commands.Result) {
	switch res.Kind {
	case commands.KindSuccess:
		fmt.Fprintln(r.out, SuccessStyle.Render(res.Text))
	case commands.KindError:
		fmt.Fprintln(r.out, ErrorStyle.Render(res.Text))
	default:
		fmt.Fprintln(r.out, res.Text)
	}
}

func (r *repl) printError(err error) {
	msg := err.Error()
	if errors.Is(err, completion.ErrNotConfigured) {
		msg = "No API key configured. Set OPENAI_API_KEY, or run with --offline."
	} else if errors.Is(err, session.ErrEmptyMessage) {
		return
	}
	fmt.Fprintln(r.out, ErrorStyle.Render(msg))
}

func (r *repl) printReply(reply model.Message) {
	name := "Assistant"
	if p, ok := r.app.session.ActivePersona(); ok {
		name = p.Name
	}
	fmt.Fprintln(r.out, PersonaStyle.Render(name+":"))

	content := reply.Content
	switch {
	case strings.HasPrefix(content, completion.ErrorPrefix):
		fmt.Fprintln(r.out, ErrorStyle.Render(content))
	case r.markdown != nil:
		if out, err := r.markdown.Render(content); err == nil {
			fmt.Fprint(r.out, out)
			return
		}
		fmt.Fprintln(r.out, content)
	default:
		fmt.Fprintln(r.out, content)
	}
	fmt.Fprintln(r.out)
}
