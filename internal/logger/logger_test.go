package logger

import (
	"os"
	"testing"

	"github.com/avolkov/offerhub/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_OpensLogFileForCleanup(t *testing.T) {
	t.Cleanup(func() {
		Cleanup()
		logFile = nil
		_ = os.RemoveAll("./logs")
	})

	Setup(config.LoggerConfig{LogLevel: config.LevelInfo, OutputFile: "test.log"})

	require.NotNil(t, logFile, "Cleanup must close the opened file, not a nil handle")
	_, err := os.Stat("./logs/test.log")
	assert.NoError(t, err)
}
