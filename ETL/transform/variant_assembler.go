package transform

import (
	"sort"

	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/LilVoxy/spod_rost/ETL/utils"
	"github.com/shopspring/decimal"
)

// VariantAssembler строит таблицу одного варианта ключа из двух периодов
type VariantAssembler struct {
	aggregator *Aggregator
	resolver   *ManagerResolver
	logger     *utils.ETLLogger
}

// NewVariantAssembler создает новый экземпляр VariantAssembler
func NewVariantAssembler(aggregator *Aggregator, resolver *ManagerResolver, logger *utils.ETLLogger) *VariantAssembler {
	return &VariantAssembler{
		aggregator: aggregator,
		resolver:   resolver,
		logger:     logger.Named("VariantAssembler"),
	}
}

// AssembleVariant объединяет агрегаты T-0 и T-1 и актуального менеджера по ключу варианта.
// Факт отсутствующего периода равен нулю. Строки отсортированы по убыванию прироста,
// при равенстве - по возрастанию ключа.
func (a *VariantAssembler) AssembleVariant(variant models.KeyVariant, current, previous []models.ClientRecord) models.VariantDataset {
	a.logger.Debug("%s: старт построения набора данных", variant)

	aggCurrent := a.aggregator.AggregateFacts(current, variant, models.PeriodCurrent)
	aggPrevious := a.aggregator.AggregateFacts(previous, variant, models.PeriodPrevious)

	bestCurrent := a.resolver.SelectBestManager(current, variant)
	bestPrevious := a.resolver.SelectBestManager(previous, variant)
	latest := a.resolver.BuildLatestManager(bestCurrent, bestPrevious)

	// Полное внешнее соединение агрегатов по ключу
	rows := make([]models.VariantRow, 0, len(aggCurrent)+len(aggPrevious))
	index := make(map[string]int, len(aggCurrent)+len(aggPrevious))
	for _, fact := range aggCurrent {
		index[fact.Key.Hash()] = len(rows)
		rows = append(rows, models.VariantRow{Key: fact.Key, FactT0: fact.Fact, FactT1: decimal.Zero})
	}
	for _, fact := range aggPrevious {
		if i, ok := index[fact.Key.Hash()]; ok {
			rows[i].FactT1 = fact.Fact
			continue
		}
		index[fact.Key.Hash()] = len(rows)
		rows = append(rows, models.VariantRow{Key: fact.Key, FactT0: decimal.Zero, FactT1: fact.Fact})
	}

	// Левые соединения с менеджерами периодов и актуальным менеджером
	currentByKey := resolvedByKey(bestCurrent)
	previousByKey := resolvedByKey(bestPrevious)
	latestByKey := make(map[string]models.Manager, len(latest))
	for _, l := range latest {
		latestByKey[l.Key.Hash()] = l.Manager
	}

	for i := range rows {
		hash := rows[i].Key.Hash()
		rows[i].Delta = rows[i].FactT0.Sub(rows[i].FactT1)
		rows[i].ManagerT0 = currentByKey[hash]
		rows[i].ManagerT1 = previousByKey[hash]
		if manager, ok := latestByKey[hash]; ok {
			rows[i].Latest = manager
		} else {
			rows[i].Latest = a.resolver.Default()
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if cmp := rows[i].Delta.Cmp(rows[j].Delta); cmp != 0 {
			return cmp > 0
		}
		return rows[i].Key.Less(rows[j].Key)
	})

	a.logger.Debug("%s: итоговый набор содержит %d строк", variant, len(rows))
	return models.VariantDataset{Variant: variant, Rows: rows}
}

func resolvedByKey(selections []models.ResolvedManager) map[string]models.Manager {
	result := make(map[string]models.Manager, len(selections))
	for _, s := range selections {
		result[s.Key.Hash()] = s.Manager
	}
	return result
}
