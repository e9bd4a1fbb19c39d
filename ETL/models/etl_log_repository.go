package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Диалекты SQL, поддерживаемые журналом
const (
	DialectMySQL  = "mysql"
	DialectSQLite = "sqlite"
)

// SQLRunLogRepository реализация RunLogRepository для MySQL и SQLite
type SQLRunLogRepository struct {
	db      *sql.DB
	dialect string
}

// NewSQLRunLogRepository создает новый экземпляр SQLRunLogRepository
func NewSQLRunLogRepository(db *sql.DB, dialect string) *SQLRunLogRepository {
	return &SQLRunLogRepository{
		db:      db,
		dialect: dialect,
	}
}

const runLogColumns = `
	id, start_time, end_time, status,
	current_rows, previous_rows, dropped_rows, spod_rows,
	IFNULL(report_path, ''), IFNULL(export_path, ''), IFNULL(error_message, ''),
	execution_time_seconds`

// CreateRunLogTable создает таблицу журнала запусков, если она не существует
func (r *SQLRunLogRepository) CreateRunLogTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS report_runs (
		id VARCHAR(36) PRIMARY KEY,
		start_time DATETIME(3) NOT NULL,
		end_time DATETIME(3) NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'in_progress',
		current_rows INT DEFAULT 0,
		previous_rows INT DEFAULT 0,
		dropped_rows INT DEFAULT 0,
		spod_rows INT DEFAULT 0,
		report_path TEXT,
		export_path TEXT,
		error_message TEXT,
		execution_time_seconds DOUBLE DEFAULT 0,
		spod_archive LONGBLOB
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`
	if r.dialect == DialectSQLite {
		query = `
		CREATE TABLE IF NOT EXISTS report_runs (
			id TEXT PRIMARY KEY,
			start_time DATETIME NOT NULL,
			end_time DATETIME NULL,
			status TEXT NOT NULL DEFAULT 'in_progress',
			current_rows INTEGER DEFAULT 0,
			previous_rows INTEGER DEFAULT 0,
			dropped_rows INTEGER DEFAULT 0,
			spod_rows INTEGER DEFAULT 0,
			report_path TEXT,
			export_path TEXT,
			error_message TEXT,
			execution_time_seconds REAL DEFAULT 0,
			spod_archive BLOB
		);
		`
	}

	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("ошибка при создании таблицы report_runs: %w", err)
	}
	return nil
}

// CreateLogEntry создает новую запись о запуске.
// Время в журнале хранится в UTC, чтобы строки времени SQLite сравнивались корректно.
func (r *SQLRunLogRepository) CreateLogEntry(id string, startTime time.Time) error {
	_, err := r.db.Exec(
		`INSERT INTO report_runs (id, start_time, status) VALUES (?, ?, ?)`,
		id, startTime.UTC(), RunStatusInProgress,
	)
	if err != nil {
		return fmt.Errorf("ошибка при создании записи о запуске: %w", err)
	}
	return nil
}

// UpdateLogEntrySuccess обновляет запись при успешном завершении
func (r *SQLRunLogRepository) UpdateLogEntrySuccess(id string, endTime time.Time, stats RunStats, spodArchive []byte) error {
	executionTime, err := r.executionSeconds(id, endTime)
	if err != nil {
		return err
	}

	query := `
	UPDATE report_runs
	SET
		end_time = ?,
		status = ?,
		current_rows = ?,
		previous_rows = ?,
		dropped_rows = ?,
		spod_rows = ?,
		report_path = ?,
		export_path = ?,
		execution_time_seconds = ?,
		spod_archive = ?
	WHERE id = ?
	`
	_, err = r.db.Exec(query,
		endTime.UTC(),
		RunStatusSuccess,
		stats.CurrentRows,
		stats.PreviousRows,
		stats.DroppedRows,
		stats.SpodRows,
		stats.ReportPath,
		stats.ExportPath,
		executionTime,
		spodArchive,
		id,
	)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении записи о запуске: %w", err)
	}
	return nil
}

// UpdateLogEntryFailure обновляет запись при неудачном завершении
func (r *SQLRunLogRepository) UpdateLogEntryFailure(id string, endTime time.Time, errorMessage string) error {
	executionTime, err := r.executionSeconds(id, endTime)
	if err != nil {
		return err
	}

	query := `
	UPDATE report_runs
	SET
		end_time = ?,
		status = ?,
		error_message = ?,
		execution_time_seconds = ?
	WHERE id = ?
	`
	if _, err := r.db.Exec(query, endTime.UTC(), RunStatusFailed, errorMessage, executionTime, id); err != nil {
		return fmt.Errorf("ошибка при обновлении записи о запуске: %w", err)
	}
	return nil
}

// executionSeconds рассчитывает длительность запуска по времени начала из журнала
func (r *SQLRunLogRepository) executionSeconds(id string, endTime time.Time) (float64, error) {
	var startTime time.Time
	err := r.db.QueryRow(`SELECT start_time FROM report_runs WHERE id = ?`, id).Scan(&startTime)
	if err != nil {
		return 0, fmt.Errorf("ошибка при получении времени начала запуска %s: %w", id, err)
	}
	return endTime.Sub(startTime).Seconds(), nil
}

// GetRun возвращает запись по идентификатору
func (r *SQLRunLogRepository) GetRun(id string) (*RunLog, error) {
	row := r.db.QueryRow(`SELECT `+runLogColumns+` FROM report_runs WHERE id = ?`, id)
	log, err := scanRunLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении запуска %s: %w", id, err)
	}
	return log, nil
}

// GetLastSuccessfulRun получает информацию о последнем успешном запуске
func (r *SQLRunLogRepository) GetLastSuccessfulRun() (*RunLog, error) {
	query := `SELECT ` + runLogColumns + `
	FROM report_runs
	WHERE status = ?
	ORDER BY end_time DESC
	LIMIT 1`

	log, err := scanRunLog(r.db.QueryRow(query, RunStatusSuccess))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Нет успешных запусков
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении информации о последнем успешном запуске: %w", err)
	}
	return log, nil
}

// GetRunStats получает запуски за определенный период
func (r *SQLRunLogRepository) GetRunStats(days int) ([]RunLog, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	query := `SELECT ` + runLogColumns + `
	FROM report_runs
	WHERE start_time >= ?
	ORDER BY start_time DESC`

	rows, err := r.db.Query(query, since)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении статистики запусков: %w", err)
	}
	defer rows.Close()

	var logs []RunLog
	for rows.Next() {
		log, err := scanRunLog(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка при сканировании записи о запуске: %w", err)
		}
		logs = append(logs, *log)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка после итерации по записям о запусках: %w", err)
	}
	return logs, nil
}

// GetSpodArchive возвращает сжатую выгрузку СПОД запуска
func (r *SQLRunLogRepository) GetSpodArchive(id string) ([]byte, error) {
	var archive []byte
	err := r.db.QueryRow(`SELECT spod_archive FROM report_runs WHERE id = ?`, id).Scan(&archive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении архива выгрузки запуска %s: %w", id, err)
	}
	return archive, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRunLog(row rowScanner) (*RunLog, error) {
	var log RunLog
	var endTime sql.NullTime
	err := row.Scan(
		&log.ID, &log.StartTime, &endTime, &log.Status,
		&log.CurrentRows, &log.PreviousRows, &log.DroppedRows, &log.SpodRows,
		&log.ReportPath, &log.ExportPath, &log.ErrorMessage,
		&log.ExecutionTimeSeconds,
	)
	if err != nil {
		return nil, err
	}
	if endTime.Valid {
		log.EndTime = endTime.Time
	}
	return &log, nil
}
