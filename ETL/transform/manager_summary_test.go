package transform

import (
	"testing"

	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/LilVoxy/spod_rost/ETL/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildManagerSummaryDistinctInFirstSeenOrder(t *testing.T) {
	ivanov := models.Manager{Name: "Иванов", ID: "00000001"}
	petrov := models.Manager{Name: "Петров", ID: "00000002"}
	dataset := &models.VariantDataset{
		Variant: models.VariantIDTBTN,
		Rows: []models.VariantRow{
			{Key: models.GroupKey{"1", "Сибирский", "00000002"}, FactT0: dec("50"), FactT1: dec("10"), Delta: dec("40"), Latest: petrov},
			{Key: models.GroupKey{"2", "Сибирский", "00000001"}, FactT0: dec("30"), FactT1: dec("0"), Delta: dec("30"), Latest: ivanov},
			{Key: models.GroupKey{"3", "Уральский", "00000002"}, FactT0: dec("5"), FactT1: dec("1"), Delta: dec("4"), Latest: petrov},
			{Key: models.GroupKey{"4", "Сибирский", "00000002"}, FactT0: dec("0"), FactT1: dec("20"), Delta: dec("-20"), Latest: petrov},
		},
	}
	builder := NewSummaryBuilder(utils.NewNopLogger())

	plain := builder.BuildManagerSummary(dataset, false, SummaryTNVKO)
	require.Len(t, plain.Rows, 2)
	assert.False(t, plain.IncludeTB)
	assert.Equal(t, "00000002", plain.Rows[0].ManagerID)
	assert.True(t, plain.Rows[0].Delta.Equal(dec("24")))
	assert.True(t, plain.Rows[0].FactT0.Equal(dec("55")))
	assert.Equal(t, "00000001", plain.Rows[1].ManagerID)

	withTB := builder.BuildManagerSummary(dataset, true, SummaryTNVKOTB)
	require.Len(t, withTB.Rows, 3)
	assert.True(t, withTB.IncludeTB)
	assert.Equal(t, "Сибирский", withTB.Rows[0].TB)
	assert.True(t, withTB.Rows[0].Delta.Equal(dec("20")))
	assert.Equal(t, "Уральский", withTB.Rows[2].TB)
}

func TestBuildManagerSummaryIgnoresTBOutsideKey(t *testing.T) {
	dataset := &models.VariantDataset{
		Variant: models.VariantIDTN,
		Rows: []models.VariantRow{
			{Key: models.GroupKey{"1", "00000001"}, Latest: models.Manager{Name: "Иванов", ID: "00000001"}},
		},
	}

	summary := NewSummaryBuilder(utils.NewNopLogger()).BuildManagerSummary(dataset, true, SummaryTNVKOTB)

	assert.False(t, summary.IncludeTB)
	require.Len(t, summary.Rows, 1)
	assert.Empty(t, summary.Rows[0].TB)
}
