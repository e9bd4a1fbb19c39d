package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Identifiers.TNTotalLength)
	assert.Equal(t, 12, cfg.Identifiers.INNTotalLength)
	assert.Equal(t, SelectionRow, cfg.Normalization.ManagerSelection)
	assert.Equal(t, "Не найден КМ", cfg.Defaults.ManagerName)
	assert.Equal(t, filepath.Join(".", "IN", "АКТИВЫ 31-10-2025 (ОСТАТОК-V2).xlsx"), cfg.InputPath(models.PeriodCurrent))
	assert.Equal(t, filepath.Join(".", "IN", "АКТИВЫ 31-12-2024 (ОСТАТОК-V2).xlsx"), cfg.InputPath(models.PeriodPrevious))
}

func TestLoadOverridesFromYAML(t *testing.T) {
	path := writeConfig(t, `
paths:
  project_root: /data/spod
source:
  current_file: t0.csv
normalization:
  manager_selection: TOTAL
export:
  contest_date: 31/12/2025
run_interval: 1h
journal:
  enabled: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/data/spod", "IN", "t0.csv"), cfg.InputPath(models.PeriodCurrent))
	assert.Equal(t, "АКТИВЫ 31-12-2024 (ОСТАТОК-V2).xlsx", cfg.Source.PreviousFile)
	assert.Equal(t, SelectionTotal, cfg.Normalization.ManagerSelection)
	assert.Equal(t, time.Hour, cfg.RunInterval)
	assert.False(t, cfg.Journal.Enabled)
	assert.Equal(t, filepath.Join("/data/spod", "OUT"), cfg.OutputDir())

	contest, err := cfg.Export.ContestTime()
	require.NoError(t, err)
	assert.Equal(t, time.December, contest.Month())
}

func TestLoadReplacesDropRules(t *testing.T) {
	path := writeConfig(t, "normalization:\n  drop_rules:\n    tb: [\"99\"]\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DropRules{models.ColumnTB: {"99"}}, cfg.Normalization.DropRules)
	assert.NotEmpty(t, GetConfig().Normalization.DropRules[models.ColumnManagerID])
}

func TestLoadClearsDropRules(t *testing.T) {
	path := writeConfig(t, "normalization:\n  drop_rules: {}\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Empty(t, cfg.Normalization.DropRules)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "unknown_section: 1\n")

	_, err := Load(path)

	var configErr *models.ConfigError
	assert.True(t, errors.As(err, &configErr))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	var ioErr *models.IOError
	assert.True(t, errors.As(err, &ioErr))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero tn length", func(c *Config) { c.Identifiers.TNTotalLength = 0 }, "identifiers.tn_total_length"},
		{"long fill char", func(c *Config) { c.Identifiers.INNFillChar = "00" }, "identifiers.inn_fill_char"},
		{"empty current file", func(c *Config) { c.Source.CurrentFile = " " }, "source.current_file"},
		{"duplicate header", func(c *Config) { c.Source.Columns.GOSB = c.Source.Columns.TB }, "source.columns"},
		{"unknown drop column", func(c *Config) { c.Normalization.DropRules["region"] = []string{"x"} }, "normalization.drop_rules"},
		{"bad selection", func(c *Config) { c.Normalization.ManagerSelection = "sum" }, "normalization.manager_selection"},
		{"empty default", func(c *Config) { c.Defaults.ManagerTN = "" }, "defaults"},
		{"bad contest date", func(c *Config) { c.Export.ContestDate = "2025-10-31" }, "export.contest_date"},
		{"bad driver", func(c *Config) { c.Journal.Driver = "postgres" }, "journal.driver"},
		{"zero interval", func(c *Config) { c.RunInterval = 0 }, "run_interval"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := GetConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()

			var configErr *models.ConfigError
			require.True(t, errors.As(err, &configErr), "ожидалась ошибка конфигурации, получено %v", err)
			assert.Equal(t, tc.field, configErr.Field)
		})
	}
}

func TestColumnHeaders(t *testing.T) {
	columns := DefaultColumns

	assert.Equal(t, models.ColumnManagerID, columns.RenameMap()["Таб. номер ВКО"])
	assert.Equal(t, "ИНН", columns.Header(models.ColumnClientID))
	assert.Equal(t, "unknown", columns.Header("unknown"))
}

func TestJournalDSN(t *testing.T) {
	cfg := GetConfig()
	cfg.Paths.ProjectRoot = t.TempDir()

	dsn, err := journalDSN(cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Paths.ProjectRoot, "log", "report_runs.db")+"?_time_format=sqlite", dsn)
	assert.DirExists(t, filepath.Join(cfg.Paths.ProjectRoot, "log"))

	cfg.Journal.Driver = models.DialectMySQL
	cfg.Journal.DSN = "user:pass@tcp(localhost:3306)/spod"
	dsn, err = journalDSN(cfg)
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")
}
