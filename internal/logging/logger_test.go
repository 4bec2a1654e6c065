package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger("capacitor", &buf, WARN)

	logger.Info("скрыто %d", 1)
	logger.Warn("Failed to access block at %s", "1,2,3")

	out := buf.String()
	assert.NotContains(t, out, "скрыто", "INFO ниже порога не должен попадать в вывод")
	assert.Contains(t, out, "[WARN] [capacitor] Failed to access block at 1,2,3")
}

func TestDefaultLoggerReplacement(t *testing.T) {
	var buf bytes.Buffer
	prev := current()
	SetDefaultLogger(NewConsoleLogger("test", &buf, TRACE))
	defer SetDefaultLogger(prev)

	Debug("debug %s", "message")
	Error("error %d", 42)

	assert.Contains(t, buf.String(), "[DEBUG] [test] debug message")
	assert.Contains(t, buf.String(), "[ERROR] [test] error 42")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, ERROR, ParseLevel("ERROR"))
	assert.Equal(t, INFO, ParseLevel("что-то"))
	assert.Equal(t, "WARN", WARN.String())
}

func TestLoggerManagerConsoleComponents(t *testing.T) {
	lm := &LoggerManager{loggers: make(map[string]*Logger)}

	a, err := lm.GetLogger("replanting")
	require.NoError(t, err)
	b, err := lm.GetLogger("replanting")
	require.NoError(t, err)

	assert.Same(t, a, b, "Повторный запрос должен вернуть тот же логгер")
	assert.Equal(t, []string{"replanting"}, lm.ListComponents())

	require.NoError(t, lm.SetLogLevel("replanting", ERROR, ERROR))
	assert.Error(t, lm.SetLogLevel("missing", INFO, INFO))
	assert.NoError(t, lm.CloseAll())
	assert.Empty(t, lm.ListComponents())
}

func TestLoggerManagerConsoleLevel(t *testing.T) {
	lm := &LoggerManager{loggers: make(map[string]*Logger), level: INFO}

	_, err := lm.GetLogger(ComponentToolSwap)
	require.NoError(t, err)
	_, err = lm.GetLogger(ComponentCapacitor)
	require.NoError(t, err)
	assert.Equal(t, []string{ComponentCapacitor, ComponentToolSwap}, lm.ListComponents())

	lm.SetConsoleLevel(ERROR)
	l, err := lm.GetLogger(ComponentCapacitor)
	require.NoError(t, err)
	assert.Equal(t, ERROR, l.minConsoleLevel)
	assert.NoError(t, lm.CloseAll())
}
