package models

import (
	"time"
)

// Статусы запуска расчёта
const (
	RunStatusInProgress = "in_progress"
	RunStatusSuccess    = "success"
	RunStatusFailed     = "failed"
)

// RunLog представляет запись журнала о запуске расчёта
type RunLog struct {
	ID                   string    `json:"id"`
	StartTime            time.Time `json:"start_time"`
	EndTime              time.Time `json:"end_time,omitempty"`
	Status               string    `json:"status"` // "success", "failed", "in_progress"
	CurrentRows          int       `json:"current_rows"`
	PreviousRows         int       `json:"previous_rows"`
	DroppedRows          int       `json:"dropped_rows"`
	SpodRows             int       `json:"spod_rows"`
	ReportPath           string    `json:"report_path,omitempty"`
	ExportPath           string    `json:"export_path,omitempty"`
	ErrorMessage         string    `json:"error_message,omitempty"`
	ExecutionTimeSeconds float64   `json:"execution_time_seconds"`
}

// RunStats - счётчики успешного запуска
type RunStats struct {
	CurrentRows  int
	PreviousRows int
	DroppedRows  int
	SpodRows     int
	ReportPath   string
	ExportPath   string
}

// RunLogRepository представляет репозиторий журнала запусков
type RunLogRepository interface {
	// CreateRunLogTable создает таблицу журнала, если она не существует
	CreateRunLogTable() error

	// CreateLogEntry создает новую запись о запуске
	CreateLogEntry(id string, startTime time.Time) error

	// UpdateLogEntrySuccess обновляет запись при успешном завершении и сохраняет архив выгрузки СПОД
	UpdateLogEntrySuccess(id string, endTime time.Time, stats RunStats, spodArchive []byte) error

	// UpdateLogEntryFailure обновляет запись при неудачном завершении
	UpdateLogEntryFailure(id string, endTime time.Time, errorMessage string) error

	// GetRun возвращает запись по идентификатору (nil, если записи нет)
	GetRun(id string) (*RunLog, error)

	// GetLastSuccessfulRun получает информацию о последнем успешном запуске
	GetLastSuccessfulRun() (*RunLog, error)

	// GetRunStats получает запуски за последние days дней
	GetRunStats(days int) ([]RunLog, error)

	// GetSpodArchive возвращает сжатую выгрузку СПОД запуска
	GetSpodArchive(id string) ([]byte, error)
}
