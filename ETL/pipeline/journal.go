package pipeline

import (
	"database/sql"
	"fmt"

	"github.com/LilVoxy/spod_rost/ETL/config"
	"github.com/LilVoxy/spod_rost/ETL/models"
)

// Journal - подключение к журналу запусков
type Journal struct {
	db         *sql.DB
	Repository models.RunLogRepository
}

// OpenJournal подключается к журналу и создаёт таблицу запусков.
// При отключенном журнале возвращает Journal без репозитория.
func OpenJournal(cfg config.Config) (*Journal, error) {
	if !cfg.Journal.Enabled {
		return &Journal{}, nil
	}

	db, err := config.ConnectJournal(cfg)
	if err != nil {
		return nil, err
	}

	repository := models.NewSQLRunLogRepository(db, cfg.Journal.Driver)
	if err := repository.CreateRunLogTable(); err != nil {
		config.CloseJournal(db)
		return nil, fmt.Errorf("ошибка при создании таблицы журнала запусков: %w", err)
	}
	return &Journal{db: db, Repository: repository}, nil
}

// Close закрывает подключение к журналу
func (j *Journal) Close() {
	config.CloseJournal(j.db)
}
