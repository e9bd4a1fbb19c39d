package transform

import (
	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/LilVoxy/spod_rost/ETL/utils"
	"github.com/shopspring/decimal"
)

// Aggregator суммирует факт по ключу группировки
type Aggregator struct {
	logger *utils.ETLLogger
}

// NewAggregator создает новый экземпляр Aggregator
func NewAggregator(logger *utils.ETLLogger) *Aggregator {
	return &Aggregator{logger: logger.Named("Aggregator")}
}

// AggregateFacts группирует записи по точному совпадению ключа варианта и суммирует факт.
// Порядок результата - порядок первого появления ключа.
func (a *Aggregator) AggregateFacts(records []models.ClientRecord, variant models.KeyVariant, period models.Period) []models.AggregatedFact {
	index := make(map[string]int)
	facts := make([]models.AggregatedFact, 0)

	for _, record := range records {
		key := variant.KeyOf(record)
		hash := key.Hash()
		if i, ok := index[hash]; ok {
			facts[i].Fact = facts[i].Fact.Add(record.Fact)
			continue
		}
		index[hash] = len(facts)
		facts = append(facts, models.AggregatedFact{
			Key:    key,
			Fact:   decimal.Zero.Add(record.Fact),
			Period: period,
		})
	}

	a.logger.Debug("%s: агрегировано %d строк для периода %s", variant, len(facts), period)
	return facts
}
