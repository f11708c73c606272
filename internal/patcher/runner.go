package patcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"bocchi/internal/domain"
)

// CommandResult contains the output of a synchronous mod-tools command
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes short-lived mod-tools commands with a timeout
type Runner struct {
	timeout time.Duration
}

// NewRunner creates a new runner with the given timeout
func NewRunner(timeout time.Duration) *Runner {
	return &Runner{timeout: timeout}
}

// Run executes the tool with args and returns its captured output
func (r *Runner) Run(ctx context.Context, toolPath string, args ...string) (*CommandResult, error) {
	result := &CommandResult{}

	if err := checkExecutable(toolPath); err != nil {
		return result, err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, toolPath, args...)
	cmd.WaitDelay = 100 * time.Millisecond

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	name := "mod-tools"
	if len(args) > 0 {
		name = args[0]
	}

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return result, fmt.Errorf("%s timed out after %v", name, r.timeout)
		}
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, &domain.CommandFailedError{
				Command:  name,
				ExitCode: result.ExitCode,
				Stderr:   strings.TrimSpace(result.Stderr),
			}
		}
		return result, &domain.ProcessError{Op: "run " + name, Err: err}
	}

	return result, nil
}

// checkExecutable verifies the tool exists and can be executed
func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", domain.ErrToolsMissing, path)
	}
	if err != nil {
		return fmt.Errorf("checking mod-tools: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", domain.ErrToolsMissing, path)
	}
	if info.Mode()&0111 == 0 {
		return fmt.Errorf("%w: %s is not executable", domain.ErrToolsMissing, path)
	}
	return nil
}

// ToolsPresent reports whether an executable exists at path
func ToolsPresent(path string) bool {
	return checkExecutable(path) == nil
}
