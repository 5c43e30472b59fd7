package executor

// CommandResult is the outcome of attempting one command. ExitCode is nil
// when the process was killed, timed out, or never started; Success is true
// only for a clean zero exit.
type CommandResult struct {
	Command  string `json:"command"`
	Success  bool   `json:"success"`
	ExitCode *int   `json:"exit_code,omitempty"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}
