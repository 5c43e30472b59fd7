// Package plan turns raw language-model output into an ordered list of
// shell commands to execute.
package plan

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"
)

// TaskCommand is one planned shell invocation. Never mutated after parsing.
type TaskCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// Extract pulls a command list out of raw model text. Models are told to
// answer with a bare JSON array but routinely wrap it in markdown fences or
// prose, so three candidates are tried in order: the first fenced code
// block, then the span from the first '[' to the last ']', then the whole
// text. A candidate that fails to parse yields an empty list; extraction
// never fails the caller.
func Extract(raw string, logger *zap.Logger) []TaskCommand {
	candidate := jsonArrayCandidate(raw)

	var commands []TaskCommand
	if err := json.Unmarshal([]byte(candidate), &commands); err != nil {
		logger.Warn("could not parse command list from model output",
			zap.Error(err),
			zap.String("text", raw))
		return nil
	}
	return commands
}

func jsonArrayCandidate(text string) string {
	if start := strings.Index(text, "```"); start != -1 {
		after := text[start+3:]
		// Skip the language tag line; a fence with no newline starts at 0
		contentStart := 0
		if i := strings.Index(after, "\n"); i != -1 {
			contentStart = i + 1
		}
		content := after[contentStart:]
		if end := strings.Index(content, "```"); end != -1 {
			return strings.TrimSpace(content[:end])
		}
	}

	if start := strings.Index(text, "["); start != -1 {
		if end := strings.LastIndex(text, "]"); end > start {
			return text[start : end+1]
		}
	}

	return strings.TrimSpace(text)
}
