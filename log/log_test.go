package log

import (
	"errors"
	"path"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogNotInitialized(t *testing.T) {
	Info("Test log.Info", " value is ", 10)
	Infof("Test log.Infof %d", 10)
	Infow("Test log.Infow", "value", 10)
	Debugf("Test log.Debugf %d", 10)
	Error("Test log.Error", " value is ", 10)
	Errorf("Test log.Errorf %d", 10)
	Errorw("Test log.Errorw", "value", 10)
	Warnf("Test log.Warnf %d", 10)
	Warnw("Test log.Warnw", "value", 10)
}

func TestNewLogger(t *testing.T) {
	cfg := Config{
		Environment: EnvironmentDevelopment,
		Level:       "debug",
		Outputs:     []string{"stderr"},
	}
	Init(cfg)
	Info("Test log.Info", " value is ", 10)
	Errorf("Test log.Errorf with error: %v", errors.New("boom"))
	WithFields("module", "test").Debugf("Test with fields %d", 10)
	require.NotNil(t, GetDefaultLogger().GetSugaredLogger())
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	_, _, err := NewLogger(Config{
		Environment: EnvironmentProduction,
		Level:       "loud",
	})
	require.Error(t, err)
}

func TestNewLoggerToFile(t *testing.T) {
	logPath := path.Join(t.TempDir(), "relayer.log")
	logger, level, err := NewLogger(Config{
		Environment: EnvironmentProduction,
		Level:       "warn",
		Outputs:     []string{logPath},
	})
	require.NoError(t, err)
	require.Equal(t, "warn", level.String())
	logger.Warn("written to file")
	require.FileExists(t, logPath)
}
