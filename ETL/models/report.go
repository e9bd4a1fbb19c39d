package models

import (
	"github.com/shopspring/decimal"
)

// AggregatedFact - сумма факта по ключу за один период
type AggregatedFact struct {
	Key    GroupKey
	Fact   decimal.Decimal
	Period Period
}

// Manager - пара "ВКО" (имя менеджера) и табельный номер
type Manager struct {
	Name string
	ID   string
}

// IsZero сообщает, что менеджер не определён
func (m Manager) IsZero() bool {
	return m.Name == "" && m.ID == ""
}

// ResolvedManager - лучший менеджер ключа за один период
type ResolvedManager struct {
	Key     GroupKey
	Manager Manager
}

// LatestManager - актуальный менеджер ключа с учётом приоритета T-0 > T-1 > значение по умолчанию
type LatestManager struct {
	Key     GroupKey
	Manager Manager
}

// VariantRow - строка итоговой таблицы варианта ключа
type VariantRow struct {
	Key       GroupKey
	FactT0    decimal.Decimal
	FactT1    decimal.Decimal
	Delta     decimal.Decimal
	ManagerT0 Manager
	ManagerT1 Manager
	Latest    Manager
}

// VariantDataset - таблица одного варианта ключа
type VariantDataset struct {
	Variant KeyVariant
	Rows    []VariantRow
}

// Column возвращает значение колонки ключа строки
func (d *VariantDataset) Column(row VariantRow, column string) string {
	for i, name := range d.Variant.Columns() {
		if name == column && i < len(row.Key) {
			return row.Key[i]
		}
	}
	return ""
}

// ManagerSummaryRow - уникальная комбинация ТН + ВКО (+ ТБ) с суммами фактов
type ManagerSummaryRow struct {
	ManagerID   string
	ManagerName string
	TB          string
	FactT0      decimal.Decimal
	FactT1      decimal.Decimal
	Delta       decimal.Decimal
}

// ManagerSummary - свод по менеджерам
type ManagerSummary struct {
	Name      string
	IncludeTB bool
	Rows      []ManagerSummaryRow
}

// SpodExportRow - строка выгрузки в СПОД, все поля уже отформатированы
type SpodExportRow struct {
	ManagerPersonNumber string
	ContestCode         string
	TournamentCode      string
	ContestDate         string
	PlanValue           string
	FactValue           string
	PriorityType        string
}

// SpodHeaders - заголовки выгрузки СПОД в порядке колонок
var SpodHeaders = []string{
	"MANAGER_PERSON_NUMBER",
	"CONTEST_CODE",
	"TOURNAMENT_CODE",
	"CONTEST_DATE",
	"PLAN_VALUE",
	"FACT_VALUE",
	"priority_type",
}

// Values возвращает значения строки в порядке SpodHeaders
func (r SpodExportRow) Values() []string {
	return []string{
		r.ManagerPersonNumber,
		r.ContestCode,
		r.TournamentCode,
		r.ContestDate,
		r.PlanValue,
		r.FactValue,
		r.PriorityType,
	}
}
