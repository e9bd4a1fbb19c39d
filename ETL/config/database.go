package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// ConnectJournal устанавливает подключение к базе журнала запусков
func ConnectJournal(cfg Config) (*sql.DB, error) {
	dsn, err := journalDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Journal.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе журнала: %w", err)
	}

	// Настройка параметров подключения
	if cfg.Journal.Driver == models.DialectSQLite {
		// SQLite не допускает параллельной записи из нескольких соединений
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	// Проверка подключения
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось установить соединение с базой журнала: %w", err)
	}

	log.Printf("Успешное подключение к базе журнала (%s)", cfg.Journal.Driver)
	return db, nil
}

// journalDSN подготавливает строку подключения для выбранного драйвера
func journalDSN(cfg Config) (string, error) {
	switch cfg.Journal.Driver {
	case models.DialectMySQL:
		// Время в журнале читается в time.Time, поэтому parseTime обязателен
		mysqlCfg, err := mysql.ParseDSN(cfg.Journal.DSN)
		if err != nil {
			return "", &models.ConfigError{Field: "journal.dsn", Reason: err.Error()}
		}
		mysqlCfg.ParseTime = true
		return mysqlCfg.FormatDSN(), nil
	case models.DialectSQLite:
		dsn := cfg.Journal.DSN
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") && !filepath.IsAbs(dsn) {
			dsn = filepath.Join(cfg.Paths.ProjectRoot, dsn)
		}
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return "", &models.IOError{Op: "mkdir", Path: filepath.Dir(dsn), Err: err}
			}
		}
		// Время пишется в формате, который драйвер читает обратно в time.Time
		if !strings.Contains(dsn, "_time_format=") {
			separator := "?"
			if strings.Contains(dsn, "?") {
				separator = "&"
			}
			dsn += separator + "_time_format=sqlite"
		}
		return dsn, nil
	default:
		return "", &models.ConfigError{Field: "journal.driver", Reason: fmt.Sprintf("неподдерживаемый драйвер %q", cfg.Journal.Driver)}
	}
}

// CloseJournal закрывает подключение к базе журнала
func CloseJournal(db *sql.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		log.Printf("Ошибка при закрытии соединения с базой журнала: %v", err)
		return
	}
	log.Println("Соединение с базой журнала закрыто")
}
