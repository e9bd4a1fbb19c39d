package transform

import (
	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/LilVoxy/spod_rost/ETL/utils"
)

// Имена сводов по менеджерам
const (
	SummaryTNVKO   = "TN_VKO"
	SummaryTNVKOTB = "TN_VKO_TB"
)

// SummaryBuilder строит своды уникальных комбинаций ТН + ВКО (+ ТБ)
type SummaryBuilder struct {
	logger *utils.ETLLogger
}

// NewSummaryBuilder создает новый экземпляр SummaryBuilder
func NewSummaryBuilder(logger *utils.ETLLogger) *SummaryBuilder {
	return &SummaryBuilder{logger: logger.Named("SummaryBuilder")}
}

// BuildManagerSummary выделяет уникальные комбинации актуального ТН, ВКО и (опционально) ТБ
// в порядке первого появления и суммирует по ним факты и прирост.
// ТБ учитывается, только если он входит в ключ варианта.
func (b *SummaryBuilder) BuildManagerSummary(dataset *models.VariantDataset, includeTB bool, name string) models.ManagerSummary {
	withTB := includeTB && hasColumn(dataset.Variant, models.ColumnTB)

	summary := models.ManagerSummary{Name: name, IncludeTB: withTB}
	index := make(map[string]int)
	for _, row := range dataset.Rows {
		entry := models.ManagerSummaryRow{
			ManagerID:   row.Latest.ID,
			ManagerName: row.Latest.Name,
		}
		if withTB {
			entry.TB = dataset.Column(row, models.ColumnTB)
		}

		hash := models.GroupKey{entry.ManagerID, entry.ManagerName, entry.TB}.Hash()
		i, ok := index[hash]
		if !ok {
			i = len(summary.Rows)
			index[hash] = i
			summary.Rows = append(summary.Rows, entry)
		}
		summary.Rows[i].FactT0 = summary.Rows[i].FactT0.Add(row.FactT0)
		summary.Rows[i].FactT1 = summary.Rows[i].FactT1.Add(row.FactT1)
		summary.Rows[i].Delta = summary.Rows[i].Delta.Add(row.Delta)
	}

	b.logger.Debug("%s: агрегировано %d строк", name, len(summary.Rows))
	return summary
}

func hasColumn(variant models.KeyVariant, column string) bool {
	for _, c := range variant.Columns() {
		if c == column {
			return true
		}
	}
	return false
}
