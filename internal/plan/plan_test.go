package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestExtract_FencedBlock(t *testing.T) {
	raw := "Here is the plan:\n```json\n[{\"command\": \"df -h\", \"description\": \"disk space\"}]\n```\nLet me know."

	commands := Extract(raw, zap.NewNop())

	assert.Equal(t, []TaskCommand{
		{Command: "df -h", Description: "disk space"},
	}, commands)
}

func TestExtract_FencedBlockWithoutLanguageTag(t *testing.T) {
	raw := "```\n[{\"command\": \"uptime\"}]\n```"

	commands := Extract(raw, zap.NewNop())

	assert.Len(t, commands, 1)
	assert.Equal(t, "uptime", commands[0].Command)
	assert.Empty(t, commands[0].Description)
}

func TestExtract_BareArray(t *testing.T) {
	raw := `[{"command": "free -m", "description": "memory"}]`

	commands := Extract(raw, zap.NewNop())

	assert.Equal(t, []TaskCommand{
		{Command: "free -m", Description: "memory"},
	}, commands)
}

func TestExtract_ArrayEmbeddedInProse(t *testing.T) {
	raw := `Sure! Run these: [{"command": "ls"}, {"command": "pwd"}] and you're done.`

	commands := Extract(raw, zap.NewNop())

	assert.Len(t, commands, 2)
	assert.Equal(t, "ls", commands[0].Command)
	assert.Equal(t, "pwd", commands[1].Command)
}

func TestExtract_BracketScanUsesFirstAndLast(t *testing.T) {
	// Inner brackets in command text must not cut the array short
	raw := `[{"command": "echo [a]", "description": "brackets"}]`

	commands := Extract(raw, zap.NewNop())

	assert.Len(t, commands, 1)
	assert.Equal(t, "echo [a]", commands[0].Command)
}

func TestExtract_UnterminatedFenceFallsBack(t *testing.T) {
	raw := "```json\n[{\"command\": \"ls\"}]"

	commands := Extract(raw, zap.NewNop())

	assert.Len(t, commands, 1)
	assert.Equal(t, "ls", commands[0].Command)
}

func TestExtract_EmptyArray(t *testing.T) {
	commands := Extract("[]", zap.NewNop())
	assert.Empty(t, commands)
}

func TestExtract_Garbage(t *testing.T) {
	for _, raw := range []string{
		"",
		"I cannot help with that.",
		"```json\nnot json\n```",
		`{"command": "ls"}`,
		"] backwards [",
	} {
		commands := Extract(raw, zap.NewNop())
		assert.Empty(t, commands, "input: %q", raw)
	}
}

func TestJSONArrayCandidate_BracketSpan(t *testing.T) {
	assert.Equal(t, `[{"command":"ls"}]`, jsonArrayCandidate("  \n[{\"command\":\"ls\"}]\n "))
}

func TestJSONArrayCandidate_WholeTextTrimmed(t *testing.T) {
	assert.Equal(t, "no array here", jsonArrayCandidate("  no array here \n"))
}
