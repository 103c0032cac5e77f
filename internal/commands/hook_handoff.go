package commands

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dotcommander/dothook/internal/app"
	"github.com/dotcommander/dothook/internal/clipboard"
	"github.com/dotcommander/dothook/internal/handoff"
	"github.com/dotcommander/dothook/internal/hookio"
	"github.com/dotcommander/dothook/internal/llm"
	"github.com/dotcommander/dothook/internal/transcript"
)

const slashCommandTool = "SlashCommand"

func newHookHandoffCmd() *cobra.Command {
	return newHookHandlerCmd("handoff", "UserPromptSubmit: /handoff writes a handoff document", runHandoff)
}

func runHandoff(hc *hookContext) error {
	note, ok := handoff.NoteFromPrompt(hc.Input.Prompt)
	if !ok {
		return nil
	}
	if hc.Input.TranscriptPath == "" {
		return hc.emit(hookio.Block("No transcript_path provided"))
	}

	entries, err := transcript.ReadEntries(hc.Input.TranscriptPath)
	if err != nil && !errors.Is(err, transcript.ErrNoTranscript) {
		return hc.emit(hookio.Block("Error reading transcript: " + err.Error()))
	}

	cfg := app.EffectiveHandoffSettings()
	msgs := transcript.ConversationMessages(entries, cfg.MaxContentChars)
	if len(msgs) == 0 {
		hc.record("messages=0")
		return hc.emit(hookio.Block("No conversation history found to summarize."))
	}
	todos := transcript.LatestTodos(entries)

	selected := handoff.Select(msgs, handoff.Budget{
		MaxMessages: cfg.MaxMessages,
		MaxChars:    cfg.MaxTotalChars,
		KeepTail:    cfg.KeepTail,
	})
	absDir, err := filepath.Abs(hc.ProjectDir)
	if err != nil {
		absDir = hc.ProjectDir
	}
	prompt := handoff.Prompt(absDir, selected, todos)

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	summary := handoff.Summarize(hc.Ctx, llm.NewClaudeRunner(cfg.Model, cfg.AllowedTools), hc.ProjectDir, prompt, timeout)

	rel, err := handoff.Save(hc.ProjectDir, handoff.Document{
		Slug:    handoff.Slug(msgs),
		Summary: strings.TrimSpace(summary),
		Note:    note,
	})
	if err != nil {
		return hc.emit(hookio.Block("Error saving handoff: " + err.Error()))
	}

	copied := clipboard.Copy(hc.Ctx, handoff.PickupCommand(rel))
	hc.record("file=%s messages=%d selected=%d", filepath.Base(rel), len(msgs), len(selected))
	return hc.emit(hookio.Block(handoff.ResultMessage(rel, copied)))
}

func newHookPickupCmd() *cobra.Command {
	return newHookHandlerCmd("pickup", "UserPromptSubmit: /pickup lists pending handoffs", runPickup)
}

func runPickup(hc *hookContext) error {
	arg, ok := handoff.PickupArg(hc.Input.Prompt)
	if !ok {
		return nil
	}
	hc.note("Detected /pickup command, processing...")

	if arg != "" {
		if name := filepath.Base(arg); strings.HasSuffix(name, ".md") {
			markHandled(hc, name)
		}
	}

	pending, err := handoff.Pending(hc.ProjectDir)
	if err != nil {
		return err
	}
	if len(pending) == 0 && arg == "" {
		return nil
	}

	listing := ""
	if len(pending) > 0 {
		listing = handoff.ListingContext(pending)
	}
	hc.record("arg=%s pending=%d", arg, len(pending))
	return hc.emit(hookio.Context(hookio.EventUserPromptSubmit, listing))
}

func newHookPostPickupCmd() *cobra.Command {
	return newHookHandlerCmd("post-pickup", "PostToolUse: mark a picked-up handoff as handled", runPostPickup)
}

func runPostPickup(hc *hookContext) error {
	if hc.Input.ToolName != slashCommandTool {
		return nil
	}
	name, ok := handoff.SlashCommandHandoff(hc.Input.ToolInputString("command"))
	if !ok {
		return nil
	}
	markHandled(hc, name)
	return nil
}

func markHandled(hc *hookContext, name string) {
	if err := handoff.MarkHandled(hc.ProjectDir, name); err != nil {
		hc.say("Could not mark handoff as handled: %s (%v)", name, err)
		hc.record("handled=%s error=%v", name, err)
		return
	}
	hc.note("Marked handoff as handled: %s", name)
	hc.record("handled=%s", name)
}
