package utils

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTimestampSuffix(t *testing.T) {
	moment := time.Date(2025, time.October, 31, 9, 5, 0, 0, time.UTC)
	assert.Equal(t, "_20251031_09_05", TimestampSuffix(moment))
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, EnsureDirectories(filepath.Join(root, "IN"), filepath.Join(root, "OUT", "nested")))
	assert.DirExists(t, filepath.Join(root, "OUT", "nested"))

	file := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	err := EnsureDirectories(filepath.Join(file, "sub"))
	var ioErr *models.IOError
	assert.True(t, errors.As(err, &ioErr))
}

func TestLoggerLevelsAndComponents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewETLLoggerWithCore(core, true)

	logger.Info("Старт %s", "расчёта")
	logger.Named("Cleaner").Debug("удалено %d строк", 3)
	logger.Warn("предупреждение")
	logger.Error("ошибка: %v", "нет файла")

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)
	assert.Equal(t, "Старт расчёта", entries[0].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, "Cleaner", entries[1].LoggerName)
	assert.Equal(t, "удалено 3 строк", entries[1].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestLoggerSkipsDebugWhenNotVerbose(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewETLLoggerWithCore(core, false)

	logger.Debug("детали")
	logger.Info("итог")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "итог", logs.All()[0].Message)
}

func TestNewETLLoggerWritesInfoAndDebugFiles(t *testing.T) {
	dir := t.TempDir()
	var hooked []string
	hook := func(entry zapcore.Entry) error {
		hooked = append(hooked, entry.Message)
		return nil
	}

	logger, err := NewETLLogger(dir, "spod", "_20251031_10_00", true, hook)
	require.NoError(t, err)
	logger.Info("этап завершён")
	logger.Named("Aggregator").Debug("агрегировано %d строк", 5)
	require.NoError(t, logger.Close())

	assert.Equal(t, filepath.Join(dir, "INFO_spod_20251031_10_00.log"), logger.InfoPath)

	info, err := os.ReadFile(logger.InfoPath)
	require.NoError(t, err)
	assert.Contains(t, string(info), "INFO - этап завершён")
	assert.NotContains(t, string(info), "агрегировано")

	debug, err := os.ReadFile(logger.DebugPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(debug), "Aggregator - агрегировано 5 строк"))

	assert.Equal(t, []string{"этап завершён", "агрегировано 5 строк"}, hooked)
}
