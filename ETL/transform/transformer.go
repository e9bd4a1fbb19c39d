package transform

import (
	"fmt"
	"time"

	"github.com/LilVoxy/spod_rost/ETL/config"
	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/LilVoxy/spod_rost/ETL/utils"
)

// Transformer координирует построение таблиц отчёта по очищенным данным
type Transformer struct {
	logger         *utils.ETLLogger
	assembler      *VariantAssembler
	summaryBuilder *SummaryBuilder
	exportBuilder  *ExportBuilder
}

// NewTransformer создает новый экземпляр Transformer
func NewTransformer(cfg config.Config, logger *utils.ETLLogger) *Transformer {
	return &Transformer{
		logger:         logger,
		assembler:      NewVariantAssembler(NewAggregator(logger), NewManagerResolver(cfg, logger), logger),
		summaryBuilder: NewSummaryBuilder(logger),
		exportBuilder:  NewExportBuilder(cfg.Export, cfg.Identifiers, logger),
	}
}

// Transform строит четыре варианта ключа, своды по менеджерам и выгрузку СПОД
func (t *Transformer) Transform(extractedData *models.ExtractedData) (*models.TransformedData, error) {
	startTime := time.Now()
	t.logger.Info("Начало фазы Transform (Расчёт приростов)")

	transformedData := &models.TransformedData{}

	// 1. Варианты ключа строятся независимо друг от друга
	for _, variant := range models.AllVariants() {
		t.logger.Info("Формирую лист %s", variant)
		dataset := t.assembler.AssembleVariant(variant, extractedData.Current, extractedData.Previous)
		transformedData.Variants = append(transformedData.Variants, dataset)
	}

	// 2. Своды по менеджерам
	byTN := transformedData.Variant(models.VariantIDTN)
	byTBTN := transformedData.Variant(models.VariantIDTBTN)
	if byTN == nil || byTBTN == nil {
		return nil, fmt.Errorf("не построены варианты %s и %s", models.VariantIDTN, models.VariantIDTBTN)
	}
	transformedData.ManagerSummary = t.summaryBuilder.BuildManagerSummary(byTN, false, SummaryTNVKO)
	transformedData.ManagerSummaryTB = t.summaryBuilder.BuildManagerSummary(byTBTN, true, SummaryTNVKOTB)

	// 3. Выгрузка СПОД
	spod, err := t.exportBuilder.BuildSpodDataset(transformedData.ManagerSummary)
	if err != nil {
		t.logger.Error("Ошибка при подготовке выгрузки СПОД: %v", err)
		return nil, fmt.Errorf("ошибка при подготовке выгрузки СПОД: %w", err)
	}
	if err := validateSpodDataset(spod); err != nil {
		return nil, err
	}
	transformedData.Spod = spod

	t.logger.Info("Фаза Transform завершена. Длительность: %v", time.Since(startTime))
	return transformedData, nil
}
