package models_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/LilVoxy/spod_rost/ETL/config"
	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *models.SQLRunLogRepository {
	t.Helper()

	cfg := config.GetConfig()
	cfg.Journal.DSN = filepath.Join(t.TempDir(), "runs.db")
	db, err := config.ConnectJournal(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { config.CloseJournal(db) })

	repository := models.NewSQLRunLogRepository(db, models.DialectSQLite)
	require.NoError(t, repository.CreateRunLogTable())
	// Повторное создание таблицы не должно падать
	require.NoError(t, repository.CreateRunLogTable())
	return repository
}

func TestRunLogRepositorySuccessfulRun(t *testing.T) {
	repository := newTestRepository(t)
	start := time.Now().Add(-3 * time.Second)

	require.NoError(t, repository.CreateLogEntry("run-1", start))

	run, err := repository.GetRun("run-1")
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, models.RunStatusInProgress, run.Status)
	assert.True(t, run.EndTime.IsZero())

	stats := models.RunStats{
		CurrentRows:  10,
		PreviousRows: 8,
		DroppedRows:  2,
		SpodRows:     3,
		ReportPath:   "OUT/report.xlsx",
		ExportPath:   "OUT/report_SPOD.csv",
	}
	archive := []byte{1, 2, 3}
	require.NoError(t, repository.UpdateLogEntrySuccess("run-1", start.Add(3*time.Second), stats, archive))

	run, err = repository.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusSuccess, run.Status)
	assert.Equal(t, 10, run.CurrentRows)
	assert.Equal(t, 8, run.PreviousRows)
	assert.Equal(t, 2, run.DroppedRows)
	assert.Equal(t, 3, run.SpodRows)
	assert.Equal(t, "OUT/report.xlsx", run.ReportPath)
	assert.InDelta(t, 3.0, run.ExecutionTimeSeconds, 0.01)
	assert.WithinDuration(t, start.Add(3*time.Second), run.EndTime, time.Millisecond)

	stored, err := repository.GetSpodArchive("run-1")
	require.NoError(t, err)
	assert.Equal(t, archive, stored)

	last, err := repository.GetLastSuccessfulRun()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "run-1", last.ID)
}

func TestRunLogRepositoryFailedRun(t *testing.T) {
	repository := newTestRepository(t)
	start := time.Now()

	require.NoError(t, repository.CreateLogEntry("run-2", start))
	require.NoError(t, repository.UpdateLogEntryFailure("run-2", start.Add(time.Second), "файл не найден"))

	run, err := repository.GetRun("run-2")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, run.Status)
	assert.Equal(t, "файл не найден", run.ErrorMessage)

	last, err := repository.GetLastSuccessfulRun()
	require.NoError(t, err)
	assert.Nil(t, last)

	archive, err := repository.GetSpodArchive("run-2")
	require.NoError(t, err)
	assert.Empty(t, archive)
}

func TestRunLogRepositoryStatsWindow(t *testing.T) {
	repository := newTestRepository(t)
	now := time.Now()

	require.NoError(t, repository.CreateLogEntry("old", now.AddDate(0, 0, -10)))
	require.NoError(t, repository.CreateLogEntry("recent", now.Add(-time.Hour)))
	require.NoError(t, repository.CreateLogEntry("latest", now))

	runs, err := repository.GetRunStats(7)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "latest", runs[0].ID)
	assert.Equal(t, "recent", runs[1].ID)
}

func TestRunLogRepositoryUnknownRun(t *testing.T) {
	repository := newTestRepository(t)

	run, err := repository.GetRun("absent")
	require.NoError(t, err)
	assert.Nil(t, run)

	assert.Error(t, repository.UpdateLogEntryFailure("absent", time.Now(), "ошибка"))
}
