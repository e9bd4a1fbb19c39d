package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/LilVoxy/spod_rost/ETL/models"
	"gopkg.in/yaml.v3"
)

// Формат даты турнира в настройках и выгрузке СПОД
const ContestDateLayout = "02/01/2006"

// Режимы выбора менеджера внутри ключа
const (
	// SelectionRow - менеджер строки с максимальным фактом
	SelectionRow = "row"
	// SelectionTotal - менеджер с максимальной суммой факта по ключу
	SelectionTotal = "total"
)

// Config содержит конфигурацию расчёта. Создаётся один раз при старте и дальше не меняется.
type Config struct {
	Paths         PathsConfig         `yaml:"paths"`
	Source        SourceConfig        `yaml:"source"`
	Normalization NormalizationConfig `yaml:"normalization"`
	Identifiers   IdentifierConfig    `yaml:"identifiers"`
	Defaults      DefaultsConfig      `yaml:"defaults"`
	Export        ExportConfig        `yaml:"export"`
	Journal       JournalConfig       `yaml:"journal"`
	Server        ServerConfig        `yaml:"server"`

	// Интервал запуска в режиме scheduled
	RunInterval time.Duration `yaml:"run_interval"`

	// Включение/отключение подробного журнала DEBUG
	EnableDetailedLogging bool `yaml:"enable_detailed_logging"`
}

// PathsConfig описывает каталоги проекта
type PathsConfig struct {
	ProjectRoot string `yaml:"project_root"`
	InputDir    string `yaml:"input_dir"`
	OutputDir   string `yaml:"output_dir"`
	LogDir      string `yaml:"log_dir"`
}

// SourceConfig описывает исходные файлы T-0 и T-1
type SourceConfig struct {
	CurrentFile  string       `yaml:"current_file"`
	PreviousFile string       `yaml:"previous_file"`
	SheetName    string       `yaml:"sheet_name"`
	Columns      ColumnConfig `yaml:"columns"`
}

// ColumnConfig описывает заголовки исходных колонок
type ColumnConfig struct {
	TB          string `yaml:"tb"`
	GOSB        string `yaml:"gosb"`
	ManagerName string `yaml:"manager_name"`
	ManagerID   string `yaml:"manager_id"`
	ClientID    string `yaml:"client_id"`
	Fact        string `yaml:"fact"`
}

// RenameMap возвращает словарь перевода русских заголовков в единые идентификаторы
func (c ColumnConfig) RenameMap() map[string]string {
	return map[string]string{
		c.TB:          models.ColumnTB,
		c.GOSB:        models.ColumnGOSB,
		c.ManagerName: models.ColumnManagerName,
		c.ManagerID:   models.ColumnManagerID,
		c.ClientID:    models.ColumnClientID,
		c.Fact:        models.ColumnFact,
	}
}

// Header возвращает исходный заголовок для единого идентификатора колонки
func (c ColumnConfig) Header(column string) string {
	for header, id := range c.RenameMap() {
		if id == column {
			return header
		}
	}
	return column
}

// DropRules - запрещённые значения по колонкам
type DropRules map[string][]string

// UnmarshalYAML заменяет правила целиком: набор из файла не сливается со значениями по умолчанию
func (r *DropRules) UnmarshalYAML(value *yaml.Node) error {
	rules := make(map[string][]string)
	if err := value.Decode(&rules); err != nil {
		return err
	}
	*r = rules
	return nil
}

// NormalizationConfig содержит правила очистки
type NormalizationConfig struct {
	// Запрещённые значения по колонкам (единые идентификаторы колонок)
	DropRules DropRules `yaml:"drop_rules"`

	// Режим выбора менеджера: row или total
	ManagerSelection string `yaml:"manager_selection"`
}

// IdentifierConfig описывает дополнение идентификаторов лидирующими символами
type IdentifierConfig struct {
	TNFillChar      string `yaml:"tn_fill_char"`
	TNTotalLength   int    `yaml:"tn_total_length"`
	INNFillChar     string `yaml:"inn_fill_char"`
	INNTotalLength  int    `yaml:"inn_total_length"`
	SpodTNMinLength int    `yaml:"spod_tn_min_length"`
}

// DefaultsConfig содержит менеджера по умолчанию
type DefaultsConfig struct {
	ManagerName string `yaml:"manager_name"`
	ManagerTN   string `yaml:"manager_tn"`
}

// ExportConfig содержит параметры выгрузки СПОД и турнира
type ExportConfig struct {
	FilePrefix     string  `yaml:"file_prefix"`
	LogTopic       string  `yaml:"log_topic"`
	ContestCode    string  `yaml:"contest_code"`
	TournamentCode string  `yaml:"tournament_code"`
	ContestDate    string  `yaml:"contest_date"`
	PlanValue      float64 `yaml:"plan_value"`
	Priority       string  `yaml:"priority"`
}

// ContestTime возвращает дату турнира
func (c ExportConfig) ContestTime() (time.Time, error) {
	return time.Parse(ContestDateLayout, c.ContestDate)
}

// JournalConfig содержит настройки журнала запусков
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
}

// ServerConfig содержит настройки сервера отчётов
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Значения конфигурации по умолчанию
var (
	DefaultColumns = ColumnConfig{
		TB:          "ТБ",
		GOSB:        "ГОСБ",
		ManagerName: "ВКО",
		ManagerID:   "Таб. номер ВКО",
		ClientID:    "ИНН",
		Fact:        "Остаток срочной задолженности по основному долгу",
	}

	DefaultIdentifiers = IdentifierConfig{
		TNFillChar:      "0",
		TNTotalLength:   8,
		INNFillChar:     "0",
		INNTotalLength:  12,
		SpodTNMinLength: 20,
	}

	DefaultExport = ExportConfig{
		FilePrefix:     "YEAR_SPOD_Active_Rost_Ost",
		LogTopic:       "spod",
		ContestCode:    "01_2025-2_14-1_2",
		TournamentCode: "t_01_2025-2_14-1_2_1001",
		ContestDate:    "31/10/2025",
		PlanValue:      0,
		Priority:       "1",
	}
)

// GetConfig возвращает конфигурацию по умолчанию
func GetConfig() Config {
	return Config{
		Paths: PathsConfig{
			ProjectRoot: ".",
			InputDir:    "IN",
			OutputDir:   "OUT",
			LogDir:      "log",
		},
		Source: SourceConfig{
			CurrentFile:  "АКТИВЫ 31-10-2025 (ОСТАТОК-V2).xlsx",
			PreviousFile: "АКТИВЫ 31-12-2024 (ОСТАТОК-V2).xlsx",
			SheetName:    "Sheet1",
			Columns:      DefaultColumns,
		},
		Normalization: NormalizationConfig{
			DropRules: DropRules{
				models.ColumnManagerName: {"-", "Серая зона"},
				models.ColumnManagerID:   {"-", "Green_Zone", "Tech_Sib"},
				models.ColumnClientID:    {"Report_id не определен"},
			},
			ManagerSelection: SelectionRow,
		},
		Identifiers: DefaultIdentifiers,
		Defaults: DefaultsConfig{
			ManagerName: "Не найден КМ",
			ManagerTN:   "90000009",
		},
		Export: DefaultExport,
		Journal: JournalConfig{
			Enabled: true,
			Driver:  models.DialectSQLite,
			DSN:     "log/report_runs.db",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		RunInterval:           24 * time.Hour,
		EnableDetailedLogging: true,
	}
}

// Load читает YAML поверх значений по умолчанию и проверяет результат.
// Пустой путь означает конфигурацию по умолчанию.
func Load(path string) (Config, error) {
	cfg := GetConfig()
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return Config{}, &models.IOError{Op: "open config", Path: path, Err: err}
		}
		defer file.Close()

		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return Config{}, &models.ConfigError{Field: path, Reason: err.Error()}
		}
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) normalize() {
	cfg.Paths.ProjectRoot = strings.TrimSpace(cfg.Paths.ProjectRoot)
	if cfg.Paths.ProjectRoot == "" {
		cfg.Paths.ProjectRoot = "."
	}
	cfg.Normalization.ManagerSelection = strings.ToLower(strings.TrimSpace(cfg.Normalization.ManagerSelection))
	if cfg.Normalization.ManagerSelection == "" {
		cfg.Normalization.ManagerSelection = SelectionRow
	}
	cfg.Journal.Driver = strings.ToLower(strings.TrimSpace(cfg.Journal.Driver))
}

// Validate проверяет конфигурацию до обращения к файлам
func (cfg Config) Validate() error {
	if err := cfg.Identifiers.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Source.CurrentFile) == "" {
		return &models.ConfigError{Field: "source.current_file", Reason: "не задан"}
	}
	if strings.TrimSpace(cfg.Source.PreviousFile) == "" {
		return &models.ConfigError{Field: "source.previous_file", Reason: "не задан"}
	}
	if err := cfg.Source.Columns.validate(); err != nil {
		return err
	}
	for column := range cfg.Normalization.DropRules {
		if !isKnownColumn(column) {
			return &models.ConfigError{Field: "normalization.drop_rules", Reason: fmt.Sprintf("неизвестная колонка %q", column)}
		}
	}
	switch cfg.Normalization.ManagerSelection {
	case SelectionRow, SelectionTotal:
	default:
		return &models.ConfigError{Field: "normalization.manager_selection", Reason: fmt.Sprintf("ожидается %s или %s", SelectionRow, SelectionTotal)}
	}
	if strings.TrimSpace(cfg.Defaults.ManagerName) == "" || strings.TrimSpace(cfg.Defaults.ManagerTN) == "" {
		return &models.ConfigError{Field: "defaults", Reason: "менеджер по умолчанию должен быть задан"}
	}
	if err := cfg.Export.validate(); err != nil {
		return err
	}
	if cfg.Journal.Enabled {
		switch cfg.Journal.Driver {
		case models.DialectMySQL, models.DialectSQLite:
		default:
			return &models.ConfigError{Field: "journal.driver", Reason: fmt.Sprintf("неподдерживаемый драйвер %q", cfg.Journal.Driver)}
		}
		if strings.TrimSpace(cfg.Journal.DSN) == "" {
			return &models.ConfigError{Field: "journal.dsn", Reason: "не задан"}
		}
	}
	if cfg.RunInterval <= 0 {
		return &models.ConfigError{Field: "run_interval", Reason: "должен быть положительным"}
	}
	return nil
}

func (c IdentifierConfig) validate() error {
	checks := []struct {
		field  string
		fill   string
		length int
	}{
		{"identifiers.tn", c.TNFillChar, c.TNTotalLength},
		{"identifiers.inn", c.INNFillChar, c.INNTotalLength},
	}
	for _, check := range checks {
		if check.length <= 0 {
			return &models.ConfigError{Field: check.field + "_total_length", Reason: "длина должна быть положительной"}
		}
		if utf8.RuneCountInString(check.fill) != 1 {
			return &models.ConfigError{Field: check.field + "_fill_char", Reason: "ожидается ровно один символ"}
		}
	}
	if c.SpodTNMinLength < 0 {
		return &models.ConfigError{Field: "identifiers.spod_tn_min_length", Reason: "не может быть отрицательной"}
	}
	return nil
}

func (c ColumnConfig) validate() error {
	seen := make(map[string]bool)
	for _, header := range []string{c.TB, c.GOSB, c.ManagerName, c.ManagerID, c.ClientID, c.Fact} {
		header = strings.TrimSpace(header)
		if header == "" {
			return &models.ConfigError{Field: "source.columns", Reason: "пустой заголовок колонки"}
		}
		if seen[header] {
			return &models.ConfigError{Field: "source.columns", Reason: fmt.Sprintf("заголовок %q указан дважды", header)}
		}
		seen[header] = true
	}
	return nil
}

func (c ExportConfig) validate() error {
	if strings.TrimSpace(c.FilePrefix) == "" {
		return &models.ConfigError{Field: "export.file_prefix", Reason: "не задан"}
	}
	if strings.TrimSpace(c.ContestCode) == "" || strings.TrimSpace(c.TournamentCode) == "" {
		return &models.ConfigError{Field: "export", Reason: "коды конкурса и турнира обязательны"}
	}
	if _, err := c.ContestTime(); err != nil {
		return &models.ConfigError{Field: "export.contest_date", Reason: fmt.Sprintf("ожидается формат ДД/ММ/ГГГГ: %v", err)}
	}
	return nil
}

func isKnownColumn(column string) bool {
	for _, known := range models.RequiredColumns {
		if column == known {
			return true
		}
	}
	return false
}

// InputPath возвращает путь к исходному файлу периода
func (cfg Config) InputPath(period models.Period) string {
	name := cfg.Source.CurrentFile
	if period == models.PeriodPrevious {
		name = cfg.Source.PreviousFile
	}
	return filepath.Join(cfg.Paths.ProjectRoot, cfg.Paths.InputDir, name)
}

// OutputDir возвращает каталог выходных файлов
func (cfg Config) OutputDir() string {
	return filepath.Join(cfg.Paths.ProjectRoot, cfg.Paths.OutputDir)
}

// LogDir возвращает каталог журналов
func (cfg Config) LogDir() string {
	return filepath.Join(cfg.Paths.ProjectRoot, cfg.Paths.LogDir)
}
