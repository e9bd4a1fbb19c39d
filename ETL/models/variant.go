package models

import (
	"strings"
)

// KeyVariant задаёт набор атрибутов, образующих ключ группировки
type KeyVariant string

const (
	VariantID     KeyVariant = "ID"
	VariantIDTB   KeyVariant = "ID_TB"
	VariantIDTN   KeyVariant = "ID_TN"
	VariantIDTBTN KeyVariant = "ID_TB_TN"
)

// AllVariants возвращает варианты ключей в порядке формирования листов отчёта
func AllVariants() []KeyVariant {
	return []KeyVariant{VariantID, VariantIDTB, VariantIDTN, VariantIDTBTN}
}

// Columns возвращает колонки ключа варианта
func (v KeyVariant) Columns() []string {
	switch v {
	case VariantIDTB:
		return []string{ColumnClientID, ColumnTB}
	case VariantIDTN:
		return []string{ColumnClientID, ColumnManagerID}
	case VariantIDTBTN:
		return []string{ColumnClientID, ColumnTB, ColumnManagerID}
	default:
		return []string{ColumnClientID}
	}
}

// Valid проверяет, что вариант входит в перечень известных
func (v KeyVariant) Valid() bool {
	for _, known := range AllVariants() {
		if v == known {
			return true
		}
	}
	return false
}

// KeyOf строит ключ группировки записи для варианта
func (v KeyVariant) KeyOf(record ClientRecord) GroupKey {
	columns := v.Columns()
	key := make(GroupKey, 0, len(columns))
	for _, column := range columns {
		switch column {
		case ColumnClientID:
			key = append(key, record.ClientID)
		case ColumnTB:
			key = append(key, record.TB)
		case ColumnManagerID:
			key = append(key, record.ManagerID)
		}
	}
	return key
}

// GroupKey - упорядоченный кортеж значений ключа
type GroupKey []string

const keySeparator = "\x1f"

// Hash возвращает строку, пригодную для использования в качестве ключа map
func (k GroupKey) Hash() string {
	return strings.Join(k, keySeparator)
}

// Less сравнивает ключи лексикографически по элементам кортежа
func (k GroupKey) Less(other GroupKey) bool {
	for i := 0; i < len(k) && i < len(other); i++ {
		if k[i] != other[i] {
			return k[i] < other[i]
		}
	}
	return len(k) < len(other)
}
