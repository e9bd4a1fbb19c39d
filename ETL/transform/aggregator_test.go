package transform

import (
	"testing"

	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/LilVoxy/spod_rost/ETL/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateFactsSumsByKeyInFirstSeenOrder(t *testing.T) {
	records := []models.ClientRecord{
		record("2", "Сибирский", "00000001", "Иванов", "10"),
		record("1", "Сибирский", "00000001", "Иванов", "5.5"),
		record("2", "Уральский", "00000002", "Петров", "2.25"),
	}
	aggregator := NewAggregator(utils.NewNopLogger())

	byID := aggregator.AggregateFacts(records, models.VariantID, models.PeriodCurrent)
	require.Len(t, byID, 2)
	assert.Equal(t, models.GroupKey{"2"}, byID[0].Key)
	assert.True(t, byID[0].Fact.Equal(dec("12.25")))
	assert.Equal(t, models.PeriodCurrent, byID[0].Period)
	assert.Equal(t, models.GroupKey{"1"}, byID[1].Key)

	byTB := aggregator.AggregateFacts(records, models.VariantIDTB, models.PeriodPrevious)
	require.Len(t, byTB, 3)
	assert.Equal(t, models.GroupKey{"2", "Уральский"}, byTB[2].Key)
	assert.True(t, byTB[2].Fact.Equal(dec("2.25")))
}

func TestAggregateFactsEmptyInput(t *testing.T) {
	facts := NewAggregator(utils.NewNopLogger()).AggregateFacts(nil, models.VariantIDTBTN, models.PeriodCurrent)
	assert.Empty(t, facts)
}
