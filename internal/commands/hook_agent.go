package commands

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dotcommander/dothook/internal/agentid"
	"github.com/dotcommander/dothook/internal/hookio"
)

const (
	transcriptPathEnv = "CLAUDE_TRANSCRIPT_PATH"
	subagentLogFn     = "subagent_stop.json"
)

func newHookSubagentStopCmd() *cobra.Command {
	return newHookHandlerCmd("subagent-stop", "SubagentStop: surface and remember the subagent id", runSubagentStop)
}

func runSubagentStop(hc *hookContext) error {
	raw := hc.Input.Raw
	sessionID := hc.Input.SessionID
	if sessionID == "" {
		sessionID = "unknown"
	}

	entry := map[string]any{
		"timestamp":       hookio.Timestamp(),
		"session_id":      raw["session_id"],
		"hook_event_name": raw["hook_event_name"],
		"cwd":             raw["cwd"],
	}
	if result, ok := firstObject(raw, "toolUseResult", "tool_use_result"); ok {
		id := result["agentId"]
		if id == nil {
			id = result["agent_id"]
		}
		entry["tool_use_result"] = map[string]any{"agentId": id}
	}
	if err := hookio.AppendJSONArray(filepath.Join(hookio.LogsDir(hc.ProjectDir), subagentLogFn), entry); err != nil {
		hc.note("subagent log not written: %v", err)
	}

	transcriptPath := hc.Input.String("transcript_path", "transcriptPath")
	if transcriptPath == "" {
		transcriptPath = os.Getenv(transcriptPathEnv)
	}
	hc.note("SubagentStop hook input keys: %v", sortedKeys(raw))
	hc.note("Provided transcript_path: %s", transcriptPath)

	id := agentid.FromHookInput(raw)
	hc.note("Agent id from input: %s", id)
	if id == "" {
		attempts := 0
		if transcriptPath != "" {
			var err error
			id, attempts, err = agentid.PollTranscript(hc.Ctx, transcriptPath, agentid.FromTranscriptLine, agentid.DefaultPoll)
			if err != nil && !errors.Is(err, agentid.ErrNotFound) {
				hc.note("transcript scan failed: %v", err)
			}
			hc.note("Agent id from transcript after %d attempt(s): %s", attempts, id)
		}
		hc.Debug.Log("transcript_extract_result", map[string]any{
			"session_id":      sessionID,
			"transcript_path": transcriptPath,
			"found_agent_id":  nullable(id),
			"attempts":        attempts,
		})
		if id == "" {
			hc.note("No agent_id found in SubagentStop input or transcript")
			hc.record("agent_id=none")
			return nil
		}
	}

	hc.note("SubagentStop: agent id %s detected", id)
	if err := hc.emit(hookio.Context(hookio.EventSubagentStop, "✅ Subagent ID: "+id)); err != nil {
		return err
	}
	hc.record("agent_id=%s", id)

	target := agentid.LastFilePath(hc.ProjectDir, hc.Input.SessionID)
	hc.note("About to write agent id: %s to %s", id, target)
	hc.Debug.Log("about_to_write", map[string]any{"session_id": sessionID, "agent_id": id, "file_path": target})
	path, err := agentid.WriteLast(hc.ProjectDir, hc.Input.SessionID, id)
	if err != nil {
		return err
	}
	hc.note("Wrote agent id to %s", path)
	hc.Debug.Log("wrote_file", map[string]any{"session_id": sessionID, "agent_id": id, "file_path": path})
	return nil
}

func newHookLastAgentCmd() *cobra.Command {
	return newHookHandlerCmd("last-agent", "UserPromptSubmit: inject the session's last subagent id", runLastAgent)
}

func runLastAgent(hc *hookContext) error {
	sessionID := hc.Input.SessionID
	if sessionID == "" {
		hc.say("No session id provided in hook input; attempting fallback behavior")
	}

	var id, source string
	path, fallback := agentid.FindLastFile(hc.ProjectDir, sessionID)
	if fallback {
		hc.note("Found fallback last_agent file: %s", path)
		hc.Debug.Log("fallback_file", map[string]any{"found_fpath": path})
	}
	if path != "" {
		if found, err := agentid.ReadLast(path); err == nil {
			id, source = found, "file "+path
		}
	}

	if id == "" && sessionID != "" {
		hc.say("No valid last agent file found; attempting transcript fallback")
		found := ""
		if home, err := os.UserHomeDir(); err == nil {
			var transcriptPath string
			found, transcriptPath, err = agentid.SearchProjects(hc.Ctx, agentid.ProjectsDir(home), sessionID, agentid.DefaultPoll)
			if err == nil {
				hc.note("Found valid tool agent id %s in transcript %s", found, transcriptPath)
				if _, werr := agentid.WriteLast(hc.ProjectDir, sessionID, found); werr != nil {
					hc.note("last agent file not written: %v", werr)
				}
			}
		}
		hc.Debug.Log("transcript_search", map[string]any{"session_id": sessionID, "found_agent_id": nullable(found)})
		if found != "" {
			id, source = found, "transcript search"
		}
	}

	if id == "" {
		hc.say("No agent id found through file or transcript search")
		hc.record("agent_id=none")
		return nil
	}

	hc.say("Found agent id: %s from %s", id, source)
	label := sessionID
	if label == "" {
		label = "unknown"
	}
	hc.record("agent_id=%s source=%s", id, source)
	return hc.emit(hookio.Context(hookio.EventUserPromptSubmit, "✅ Last subagent ID for session "+label+": "+id))
}

func firstObject(m map[string]any, keys ...string) (map[string]any, bool) {
	for _, k := range keys {
		if obj, ok := m[k].(map[string]any); ok && len(obj) > 0 {
			return obj, true
		}
	}
	return nil, false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// nullable maps "" to JSON null in debug records.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
