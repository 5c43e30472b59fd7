// Package executor runs shell commands sequentially with per-command
// timeouts and fail-stop semantics.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jkirui/shellbot-agent/internal/plan"
)

// TimeoutError is returned by Run when a command exceeds its wall-clock
// budget. The child process has already been killed by then.
type TimeoutError struct {
	Command string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command timed out after %s: %s", e.Timeout, e.Command)
}

// Executor runs commands through `sh -c` in a fixed working directory.
type Executor struct {
	workingDir string
	timeout    time.Duration
	logger     *zap.Logger
}

// New creates an executor. An empty workingDir means the process's current
// directory.
func New(workingDir string, timeout time.Duration, logger *zap.Logger) *Executor {
	if workingDir == "" {
		workingDir = "."
	}
	return &Executor{
		workingDir: workingDir,
		timeout:    timeout,
		logger:     logger,
	}
}

// Run executes a single command. A non-zero exit is a normal completion
// (result with Success=false, no error); the error return is reserved for
// commands that never produced an exit status: timeouts and start failures.
func (e *Executor) Run(ctx context.Context, command string) (*CommandResult, error) {
	e.logger.Info("running command", zap.String("cmd", command))

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = e.workingDir

	// Run the shell in its own process group and kill the whole group on
	// timeout. Killing only the shell would leave background children
	// alive holding the output pipes, and Wait would block on them long
	// past the deadline.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return nil, &TimeoutError{Command: command, Timeout: e.timeout}
	}

	result := &CommandResult{
		Command: command,
		Stdout:  sanitize(stdout.Bytes()),
		Stderr:  sanitize(stderr.Bytes()),
	}

	if err == nil {
		code := 0
		result.Success = true
		result.ExitCode = &code
		e.logger.Info("command succeeded", zap.String("cmd", command))
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		result.ExitCode = &code
		e.logger.Error("command failed",
			zap.String("cmd", command),
			zap.Int("exit_code", code),
			zap.String("stderr", result.Stderr))
		return result, nil
	}

	// The shell never started
	return nil, fmt.Errorf("command failed to start: %s: %w", command, err)
}

// RunAll executes commands in order, stopping at the first one that does
// not succeed. A runner-level failure (timeout, start error) is recorded as
// a result with no exit code. The returned slice covers exactly the
// commands attempted, which is a prefix of the input.
func (e *Executor) RunAll(ctx context.Context, commands []plan.TaskCommand) []CommandResult {
	var results []CommandResult
	for _, task := range commands {
		e.logger.Info("executing task",
			zap.String("description", task.Description),
			zap.String("cmd", task.Command))

		result, err := e.Run(ctx, task.Command)
		if err != nil {
			e.logger.Error("command did not complete", zap.Error(err))
			results = append(results, CommandResult{
				Command: task.Command,
				Success: false,
				Stderr:  err.Error(),
			})
			break
		}

		results = append(results, *result)
		if !result.Success {
			e.logger.Info("command failed, stopping remaining tasks")
			break
		}
	}
	return results
}

// sanitize decodes process output as UTF-8, replacing invalid byte
// sequences instead of propagating them into chat messages.
func sanitize(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}
