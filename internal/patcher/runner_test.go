package patcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bocchi/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/bash\n"+body), 0755))
	return path
}

func TestRunner_Success(t *testing.T) {
	script := writeScript(t, "mod-tools", `echo "args: $@"
echo "stderr message" >&2
exit 0
`)

	result, err := NewRunner(time.Minute).Run(context.Background(), script, "mkoverlay", "a", "b")
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, "args: mkoverlay a b")
	assert.Contains(t, result.Stderr, "stderr message")
	assert.Equal(t, 0, result.ExitCode)
}

func TestRunner_NonZeroExit(t *testing.T) {
	script := writeScript(t, "mod-tools", `echo "conflict in Ahri" >&2
exit 42
`)

	result, err := NewRunner(time.Minute).Run(context.Background(), script, "mkoverlay")
	require.Error(t, err)
	assert.Equal(t, 42, result.ExitCode)

	var cmdErr *domain.CommandFailedError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, "mkoverlay", cmdErr.Command)
	assert.Equal(t, 42, cmdErr.ExitCode)
	assert.Equal(t, "conflict in Ahri", cmdErr.Stderr)
	assert.ErrorIs(t, err, domain.ErrCommandFailed)
}

func TestRunner_Timeout(t *testing.T) {
	script := writeScript(t, "mod-tools", "exec sleep 10\n")

	_, err := NewRunner(100*time.Millisecond).Run(context.Background(), script, "mkoverlay")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestRunner_MissingOrNotExecutable(t *testing.T) {
	_, err := NewRunner(time.Minute).Run(context.Background(), filepath.Join(t.TempDir(), "mod-tools"))
	assert.ErrorIs(t, err, domain.ErrToolsMissing)

	path := filepath.Join(t.TempDir(), "mod-tools")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/bash\n"), 0644))
	_, err = NewRunner(time.Minute).Run(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrToolsMissing)
	assert.False(t, ToolsPresent(path))
}
