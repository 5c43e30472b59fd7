package bot

import (
	"fmt"
	"strings"

	"github.com/jkirui/shellbot-agent/internal/executor"
	"github.com/jkirui/shellbot-agent/internal/plan"
)

const (
	maxStdoutLen = 500
	maxStderrLen = 300
)

// formatPlan renders the ordered command list announced before execution.
func formatPlan(commands []plan.TaskCommand) string {
	var b strings.Builder
	b.WriteString("📝 Execution plan:\n")
	for i, c := range commands {
		fmt.Fprintf(&b, "%d. %s → `%s`\n", i+1, c.Description, c.Command)
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatReport renders the post-execution report. Results are a prefix of
// the command list, so descriptions are looked up by index.
func formatReport(commands []plan.TaskCommand, results []executor.CommandResult) string {
	var b strings.Builder
	b.WriteString("📋 Task execution report\n\n")

	for i, result := range results {
		desc := "unknown"
		if i < len(commands) {
			desc = commands[i].Description
		}

		status := "❌"
		if result.Success {
			status = "✅"
		}

		fmt.Fprintf(&b, "%s %s\n", status, desc)
		fmt.Fprintf(&b, "  Command: %s\n", result.Command)
		if result.Stdout != "" {
			fmt.Fprintf(&b, "  Output:\n%s\n", truncate(result.Stdout, maxStdoutLen))
		}
		if result.Stderr != "" {
			fmt.Fprintf(&b, "  Error:\n%s\n", truncate(result.Stderr, maxStderrLen))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
