package transform

import (
	"fmt"

	"github.com/LilVoxy/spod_rost/ETL/config"
	"github.com/LilVoxy/spod_rost/ETL/extractors"
	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/LilVoxy/spod_rost/ETL/utils"
	"github.com/shopspring/decimal"
)

// Количество знаков после запятой в числовых полях СПОД
const SpodDecimals = 5

// FormatDecimal форматирует число с фиксированной точностью SpodDecimals знаков
func FormatDecimal(value decimal.Decimal) string {
	return value.StringFixed(SpodDecimals)
}

// FormatDecimalString форматирует float64 вида 0.00000 без экспоненциальной записи
func FormatDecimalString(value float64) string {
	return FormatDecimal(decimal.NewFromFloat(value))
}

// ExportBuilder готовит данные для загрузки в СПОД
type ExportBuilder struct {
	export      config.ExportConfig
	identifiers config.IdentifierConfig
	logger      *utils.ETLLogger
}

// NewExportBuilder создает новый экземпляр ExportBuilder
func NewExportBuilder(export config.ExportConfig, identifiers config.IdentifierConfig, logger *utils.ETLLogger) *ExportBuilder {
	return &ExportBuilder{
		export:      export,
		identifiers: identifiers,
		logger:      logger.Named("Exporter"),
	}
}

// BuildSpodDataset формирует по одной строке выгрузки на каждую строку свода
func (b *ExportBuilder) BuildSpodDataset(summary models.ManagerSummary) ([]models.SpodExportRow, error) {
	contestDate, err := b.export.ContestTime()
	if err != nil {
		return nil, &models.ConfigError{Field: "export.contest_date", Reason: err.Error()}
	}

	personNumberLength := b.identifiers.TNTotalLength
	if b.identifiers.SpodTNMinLength > personNumberLength {
		personNumberLength = b.identifiers.SpodTNMinLength
	}
	planValue := FormatDecimalString(b.export.PlanValue)

	dataset := make([]models.SpodExportRow, 0, len(summary.Rows))
	for _, row := range summary.Rows {
		dataset = append(dataset, models.SpodExportRow{
			ManagerPersonNumber: extractors.FormatIdentifier(row.ManagerID, personNumberLength, b.identifiers.TNFillChar),
			ContestCode:         b.export.ContestCode,
			TournamentCode:      b.export.TournamentCode,
			ContestDate:         contestDate.Format(config.ContestDateLayout),
			PlanValue:           planValue,
			FactValue:           FormatDecimal(row.Delta),
			PriorityType:        b.export.Priority,
		})
	}

	b.logger.Debug("SPOD: подготовлено %d строк для выгрузки", len(dataset))
	return dataset, nil
}

// validateSpodDataset проверяет, что в выгрузке нет пустых табельных номеров
func validateSpodDataset(dataset []models.SpodExportRow) error {
	for i, row := range dataset {
		if row.ManagerPersonNumber == "" {
			return fmt.Errorf("строка %d выгрузки СПОД без табельного номера", i+1)
		}
	}
	return nil
}
