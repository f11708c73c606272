package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"bocchi/internal/logging"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForVerbosity(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, logging.LevelForVerbosity(0))
	assert.Equal(t, zerolog.InfoLevel, logging.LevelForVerbosity(1))
	assert.Equal(t, zerolog.DebugLevel, logging.LevelForVerbosity(2))
	assert.Equal(t, zerolog.TraceLevel, logging.LevelForVerbosity(5))
}

func TestSetupLogger_WritesConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "state", "bocchi.log")

	closeLog := logging.SetupLogger(logging.Options{
		Verbosity: 1,
		NoColor:   true,
		Console:   &console,
		LogFile:   logFile,
	})
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	logger := logging.GetLogger("acquirer")
	logger.Info().Str("skin", "Ahri/DRX Ahri.zip").Msg("Downloaded")
	logger.Debug().Msg("hidden at verbosity 1")
	closeLog()

	assert.Contains(t, console.String(), "Downloaded")
	assert.Contains(t, console.String(), "component=acquirer")
	assert.NotContains(t, console.String(), "hidden at verbosity 1")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"acquirer"`)
	assert.Contains(t, string(data), `"message":"Downloaded"`)
}

func TestSetupLogger_FileDisabled(t *testing.T) {
	var console bytes.Buffer
	closeLog := logging.SetupLogger(logging.Options{Console: &console, NoColor: true, LogFile: "-"})
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })
	defer closeLog()

	logger := logging.GetLogger("patcher")
	logger.Warn().Msg("stderr line")
	assert.Contains(t, console.String(), "stderr line")
}
