package models

import (
	"github.com/shopspring/decimal"
)

// Единые идентификаторы колонок исходных файлов
const (
	ColumnTB          = "tb"
	ColumnGOSB        = "gosb"
	ColumnManagerName = "manager_name"
	ColumnManagerID   = "manager_id"
	ColumnClientID    = "client_id"
	ColumnFact        = "fact_value"
)

// RequiredColumns перечисляет колонки, без которых файл не обрабатывается
var RequiredColumns = []string{
	ColumnTB,
	ColumnGOSB,
	ColumnManagerName,
	ColumnManagerID,
	ColumnClientID,
	ColumnFact,
}

// Period обозначает срез данных: текущий (T-0) или предыдущий (T-1)
type Period string

const (
	PeriodCurrent  Period = "T0"
	PeriodPrevious Period = "T1"
)

// RawTable представляет сырую таблицу, прочитанную из файла.
// Заголовки уже переведены в единые идентификаторы колонок.
type RawTable struct {
	Source  string
	Headers []string
	Rows    [][]string
}

// Value возвращает значение колонки в строке или пустую строку
func (t *RawTable) Value(row []string, column string) string {
	for i, header := range t.Headers {
		if header == column {
			if i < len(row) {
				return row[i]
			}
			return ""
		}
	}
	return ""
}

// ClientRecord представляет одну очищенную строку клиента за период
type ClientRecord struct {
	Row         int
	ClientID    string
	TB          string
	GOSB        string
	ManagerID   string
	ManagerName string
	Fact        decimal.Decimal
}

// HasManager сообщает, указан ли в строке хоть какой-то менеджер
func (r ClientRecord) HasManager() bool {
	return r.ManagerID != "" || r.ManagerName != ""
}
