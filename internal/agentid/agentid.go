// Package agentid extracts and validates subagent identifiers.
//
// Agent ids are exactly eight hex characters. They are only ever taken from
// explicit agentId fields; free-form strings are never scanned, so session
// ids, message uuids and leafUuids cannot be mistaken for an agent id.
package agentid

import (
	"regexp"
	"sort"
	"strings"
)

var pattern = regexp.MustCompile(`^[0-9a-fA-F]{8}$`)

// Validate returns the trimmed id when v is a string holding exactly eight
// hex characters.
func Validate(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if !pattern.MatchString(s) {
		return "", false
	}
	return s, true
}

// Extractor pulls an agent id out of a decoded JSON object, or returns "".
type Extractor func(obj map[string]any) string

// fromResult tries agentId, then agent_id, on a toolUseResult object and
// returns the first that validates.
func fromResult(v any) string {
	result, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"agentId", "agent_id"} {
		if id, ok := Validate(result[key]); ok {
			return id
		}
	}
	return ""
}

// trustedResult reads agentId, or agent_id only when agentId is unset or
// empty. A present but malformed agentId yields "".
func trustedResult(v any) string {
	result, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	id, _ := Validate(firstNonNil(result, "agentId", "agent_id"))
	return id
}

// Trusted reads only the top-level toolUseResult of a transcript line.
func Trusted(obj map[string]any) string {
	return trustedResult(obj["toolUseResult"])
}

// FromObject searches v recursively and returns the first id found under a
// toolUseResult object. Ids anywhere else are ignored. Object keys are
// visited in sorted order so the result does not depend on map iteration.
func FromObject(v any) string {
	switch node := v.(type) {
	case map[string]any:
		if id := trustedResult(node["toolUseResult"]); id != "" {
			return id
		}
		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch child := node[k].(type) {
			case map[string]any, []any:
				if id := FromObject(child); id != "" {
					return id
				}
			}
		}
	case []any:
		for _, child := range node {
			if id := FromObject(child); id != "" {
				return id
			}
		}
	}
	return ""
}

// FromTranscriptLine is the extractor used while a subagent transcript is
// still being flushed: the hook-input locations first, then any nested
// toolUseResult.
func FromTranscriptLine(obj map[string]any) string {
	if id := FromHookInput(obj); id != "" {
		return id
	}
	return FromObject(obj)
}

// FromHookInput checks the places a SubagentStop payload may carry the id:
// top-level agentId/agent_id/agentIdValue, then toolUseResult/tool_use_result,
// then a toolUseResult nested in tool_response/toolResponse.
func FromHookInput(obj map[string]any) string {
	for _, key := range []string{"agentId", "agent_id", "agentIdValue"} {
		if id, ok := Validate(obj[key]); ok {
			return id
		}
	}

	if id := fromResult(firstNonNil(obj, "toolUseResult", "tool_use_result")); id != "" {
		return id
	}

	if resp, ok := firstNonNil(obj, "tool_response", "toolResponse").(map[string]any); ok {
		if id := fromResult(firstNonNil(resp, "toolUseResult", "tool_use_result")); id != "" {
			return id
		}
	}
	return ""
}

// firstNonNil mirrors `a or b` lookups: the first key whose value is truthy.
func firstNonNil(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case nil:
			continue
		case string:
			if v == "" {
				continue
			}
			return v
		case []any:
			if len(v) == 0 {
				continue
			}
			return v
		case map[string]any:
			if len(v) == 0 {
				continue
			}
			return v
		default:
			return v
		}
	}
	return nil
}
