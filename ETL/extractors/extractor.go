package extractors

import (
	"time"

	"github.com/LilVoxy/spod_rost/ETL/config"
	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/LilVoxy/spod_rost/ETL/utils"
)

// Extractor координирует чтение и очистку файлов T-0 и T-1
type Extractor struct {
	cfg             config.Config
	logger          *utils.ETLLogger
	sourceExtractor *SourceExtractor
	normalizer      *Normalizer
}

// NewExtractor создает новый экземпляр Extractor
func NewExtractor(cfg config.Config, logger *utils.ETLLogger) *Extractor {
	return &Extractor{
		cfg:             cfg,
		logger:          logger,
		sourceExtractor: NewSourceExtractor(cfg.Source, logger),
		normalizer:      NewNormalizer(cfg.Normalization, cfg.Identifiers, logger),
	}
}

// Extract читает и очищает оба периода. Отсутствие любого из файлов прерывает
// расчёт до чтения данных.
func (e *Extractor) Extract() (*models.ExtractedData, error) {
	startTime := time.Now()
	e.logger.LogExtractStart()

	currentPath := e.cfg.InputPath(models.PeriodCurrent)
	previousPath := e.cfg.InputPath(models.PeriodPrevious)
	for _, path := range []string{currentPath, previousPath} {
		if err := CheckExists(path); err != nil {
			e.logger.Error("Ожидаемый файл отсутствует: %v", err)
			return nil, err
		}
	}

	current, err := e.extractPeriod(currentPath)
	if err != nil {
		return nil, err
	}
	previous, err := e.extractPeriod(previousPath)
	if err != nil {
		return nil, err
	}

	extractedData := &models.ExtractedData{
		Current:         current.Records,
		Previous:        previous.Records,
		DroppedCurrent:  current.Dropped(),
		DroppedPrevious: previous.Dropped(),
	}

	e.logger.LogExtractComplete(
		len(extractedData.Current),
		len(extractedData.Previous),
		extractedData.DroppedCurrent+extractedData.DroppedPrevious,
		time.Since(startTime),
	)
	return extractedData, nil
}

// extractPeriod читает один файл и очищает его
func (e *Extractor) extractPeriod(path string) (*NormalizeResult, error) {
	table, err := e.sourceExtractor.ReadSourceFile(path)
	if err != nil {
		e.logger.Error("Ошибка при чтении файла %s: %v", path, err)
		return nil, err
	}
	return e.normalizer.Normalize(table), nil
}
