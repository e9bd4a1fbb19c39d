package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/LilVoxy/spod_rost/ETL/config"
	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/LilVoxy/spod_rost/ETL/utils"
	"github.com/LilVoxy/spod_rost/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zapcore"
)

var sourceHeaders = []interface{}{
	"ТБ", "ГОСБ", "ВКО", "Таб. номер ВКО", "ИНН", "Остаток срочной задолженности по основному долгу",
}

func writeSource(t *testing.T, path string, rows ...[]interface{}) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	workbook := excelize.NewFile()
	defer workbook.Close()
	all := append([][]interface{}{sourceHeaders}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := row
		require.NoError(t, workbook.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, workbook.SaveAs(path))
}

func newTestConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.GetConfig()
	cfg.Paths.ProjectRoot = t.TempDir()
	return cfg
}

func openTestJournal(t *testing.T, cfg config.Config) *Journal {
	t.Helper()
	journal, err := OpenJournal(cfg)
	require.NoError(t, err)
	t.Cleanup(journal.Close)
	return journal
}

func TestRunnerExecuteWritesReportAndJournal(t *testing.T) {
	cfg := newTestConfig(t)
	writeSource(t, cfg.InputPath(models.PeriodCurrent),
		[]interface{}{"Сибирский", "8644", "Иванов", 85461, 7707083893, "150,5"},
		[]interface{}{"Сибирский", "8644", "Серая зона", 1, 1, "10"},
		[]interface{}{"Уральский", "7003", "Петров", "12", "500", "70"},
	)
	writeSource(t, cfg.InputPath(models.PeriodPrevious),
		[]interface{}{"Сибирский", "8644", "Иванов", 85461, 7707083893, "100"},
		[]interface{}{"Уральский", "7003", "", "", "600", "30"},
	)
	journal := openTestJournal(t, cfg)

	var finished []models.RunLog
	var hooked int
	runner := NewRunner(cfg, utils.NewNopLogger(), journal.Repository,
		WithRunObserver(func(run models.RunLog) { finished = append(finished, run) }),
		WithLogHooks(func(zapcore.Entry) error { hooked++; return nil }),
	)

	run, err := runner.Execute()
	require.NoError(t, err)

	assert.Equal(t, models.RunStatusSuccess, run.Status)
	assert.Equal(t, 2, run.CurrentRows)
	assert.Equal(t, 2, run.PreviousRows)
	assert.Equal(t, 1, run.DroppedRows)
	assert.Equal(t, 3, run.SpodRows)
	assert.FileExists(t, run.ReportPath)
	assert.FileExists(t, run.ExportPath)
	assert.Positive(t, hooked)
	require.Len(t, finished, 1)
	assert.Equal(t, run.ID, finished[0].ID)

	stored, err := journal.Repository.GetRun(run.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.RunStatusSuccess, stored.Status)
	assert.Equal(t, run.ExportPath, stored.ExportPath)

	archive, err := journal.Repository.GetSpodArchive(run.ID)
	require.NoError(t, err)
	restored, err := processor.DecompressExport(archive)
	require.NoError(t, err)
	written, err := os.ReadFile(run.ExportPath)
	require.NoError(t, err)
	assert.Equal(t, written, restored)

	history, err := runner.History(1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, run.ID, history[0].ID)
}

func TestRunnerExecuteRecordsFailure(t *testing.T) {
	cfg := newTestConfig(t)
	writeSource(t, cfg.InputPath(models.PeriodCurrent),
		[]interface{}{"Сибирский", "8644", "Иванов", 85461, 7707083893, "150"},
	)
	journal := openTestJournal(t, cfg)
	runner := NewRunner(cfg, utils.NewNopLogger(), journal.Repository)

	run, err := runner.Execute()

	var ioErr *models.IOError
	require.True(t, errors.As(err, &ioErr))
	require.NotNil(t, run)
	assert.Equal(t, models.RunStatusFailed, run.Status)
	assert.NotEmpty(t, run.ErrorMessage)

	stored, err := journal.Repository.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, stored.Status)

	entries, err := os.ReadDir(cfg.Paths.ProjectRoot)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotEqual(t, cfg.Paths.OutputDir, entry.Name(), "каталог результатов не должен создаваться при ошибке")
	}
}

func TestRunnerWithoutJournal(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Journal.Enabled = false
	journal := openTestJournal(t, cfg)
	assert.Nil(t, journal.Repository)

	runner := NewRunner(cfg, utils.NewNopLogger(), journal.Repository)

	_, err := runner.History(30)
	assert.ErrorIs(t, err, ErrJournalDisabled)
}
