package load

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/LilVoxy/spod_rost/ETL/config"
	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/LilVoxy/spod_rost/ETL/utils"
	"github.com/LilVoxy/spod_rost/processor"
)

// LoadResult описывает записанные файлы запуска
type LoadResult struct {
	ReportPath string
	ExportPath string

	// Сжатая копия выгрузки СПОД для журнала запусков
	SpodArchive []byte
}

// LoadManager отвечает за запись отчёта и выгрузки СПОД в каталог OUT
type LoadManager struct {
	cfg    config.Config
	logger *utils.ETLLogger
	loader Loader
}

// NewLoadManager создает новый экземпляр LoadManager
func NewLoadManager(cfg config.Config, logger *utils.ETLLogger) *LoadManager {
	return &LoadManager{
		cfg:    cfg,
		logger: logger,
		loader: NewFileLoader(
			NewExcelLoader(cfg.Source.Columns, logger),
			NewCSVLoader(logger),
		),
	}
}

// OutputPaths возвращает пути отчёта и выгрузки для суффикса запуска
func (m *LoadManager) OutputPaths(suffix string) (reportPath, exportPath string) {
	prefix := m.cfg.Export.FilePrefix
	reportPath = filepath.Join(m.cfg.OutputDir(), fmt.Sprintf("%s%s.xlsx", prefix, suffix))
	exportPath = filepath.Join(m.cfg.OutputDir(), fmt.Sprintf("%s_SPOD%s.csv", prefix, suffix))
	return reportPath, exportPath
}

// Load выполняет фазу записи результатов.
// Если выгрузку записать не удалось, отчёт удаляется, чтобы в OUT не осталось половины результата.
func (m *LoadManager) Load(transformedData *models.TransformedData, suffix string) (*LoadResult, error) {
	startTime := time.Now()
	m.logger.Info("Начало фазы Load (Запись отчёта)")

	if err := utils.EnsureDirectories(m.cfg.OutputDir()); err != nil {
		return nil, err
	}
	reportPath, exportPath := m.OutputPaths(suffix)

	// 1. Отчёт Excel
	m.logger.Info("Запись отчёта %s", reportPath)
	if err := m.loader.LoadReport(transformedData, reportPath); err != nil {
		m.logger.Error("Ошибка при записи отчёта: %v", err)
		return nil, fmt.Errorf("ошибка при записи отчёта: %w", err)
	}

	// 2. Выгрузка СПОД
	m.logger.Info("Запись выгрузки СПОД %s", exportPath)
	content, err := m.loader.LoadSpodCSV(transformedData.Spod, exportPath)
	if err != nil {
		m.logger.Error("Ошибка при записи выгрузки СПОД: %v", err)
		if removeErr := os.Remove(reportPath); removeErr != nil && !os.IsNotExist(removeErr) {
			m.logger.Error("Не удалось удалить неполный отчёт %s: %v", reportPath, removeErr)
		}
		return nil, fmt.Errorf("ошибка при записи выгрузки СПОД: %w", err)
	}

	// 3. Архив выгрузки для журнала
	archive := processor.CompressExport(content)
	m.logger.Debug("Выгрузка СПОД сжата: %d -> %d байт", len(content), len(archive))

	m.logger.Info("Фаза Load завершена. Длительность: %v", time.Since(startTime))
	return &LoadResult{
		ReportPath:  reportPath,
		ExportPath:  exportPath,
		SpodArchive: archive,
	}, nil
}
