package load

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/LilVoxy/spod_rost/ETL/config"
	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/LilVoxy/spod_rost/ETL/utils"
	"github.com/xuri/excelize/v2"
)

// Имена листов отчёта, не совпадающие с вариантами ключа
const (
	SheetTNVKO   = "TN_VKO"
	SheetTNVKOTB = "TN_VKO_TB"
	SheetSpod    = "SPOD"
)

// Заголовки числовых и служебных колонок
const (
	HeaderFactT0        = "Факт_T0"
	HeaderFactT1        = "Факт_T1"
	HeaderDelta         = "Прирост"
	HeaderLatestName    = "ВКО_Актуальный"
	HeaderLatestID      = "Таб. номер ВКО_Актуальный"
	minColumnWidth      = 70
	maxColumnWidth      = 200
	numberFormatPattern = "#,##0.00"
)

// sheet - таблица листа: заголовки и строки значений
type sheet struct {
	name    string
	headers []string
	rows    [][]interface{}
}

// ExcelLoader записывает отчёт в книгу Excel с форматированием листов
type ExcelLoader struct {
	columns config.ColumnConfig
	logger  *utils.ETLLogger
}

// NewExcelLoader создает новый экземпляр ExcelLoader
func NewExcelLoader(columns config.ColumnConfig, logger *utils.ETLLogger) *ExcelLoader {
	return &ExcelLoader{
		columns: columns,
		logger:  logger.Named("ExcelLoader"),
	}
}

// Load записывает все листы отчёта в файл path
func (l *ExcelLoader) Load(data *models.TransformedData, path string) error {
	sheets := make([]sheet, 0, len(data.Variants)+3)
	for i := range data.Variants {
		sheets = append(sheets, l.variantSheet(&data.Variants[i]))
	}
	sheets = append(sheets,
		l.summarySheet(SheetTNVKO, data.ManagerSummary),
		l.summarySheet(SheetTNVKOTB, data.ManagerSummaryTB),
		spodSheet(data.Spod),
	)

	workbook := excelize.NewFile()
	defer workbook.Close()

	defaultSheet := workbook.GetSheetName(0)
	for i, s := range sheets {
		if i == 0 {
			if err := workbook.SetSheetName(defaultSheet, s.name); err != nil {
				return &models.IOError{Op: "excel", Path: path, Err: err}
			}
		} else if _, err := workbook.NewSheet(s.name); err != nil {
			return &models.IOError{Op: "excel", Path: path, Err: err}
		}
		if err := writeSheet(workbook, s); err != nil {
			return &models.IOError{Op: "excel", Path: path, Err: err}
		}
		l.logger.Debug("Лист %s: записано %d строк", s.name, len(s.rows))
	}
	workbook.SetActiveSheet(0)

	if err := workbook.SaveAs(path); err != nil {
		return &models.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// variantSheet готовит лист варианта ключа с русскими заголовками ключевых колонок
func (l *ExcelLoader) variantSheet(dataset *models.VariantDataset) sheet {
	var headers []string
	for _, column := range dataset.Variant.Columns() {
		headers = append(headers, l.columns.Header(column))
	}
	headers = append(headers,
		HeaderFactT0, HeaderFactT1, HeaderDelta,
		"ВКО_T0", "Таб. номер ВКО_T0",
		"ВКО_T1", "Таб. номер ВКО_T1",
		HeaderLatestName, HeaderLatestID,
	)

	rows := make([][]interface{}, 0, len(dataset.Rows))
	for _, row := range dataset.Rows {
		values := make([]interface{}, 0, len(headers))
		for _, key := range row.Key {
			values = append(values, key)
		}
		values = append(values,
			row.FactT0.InexactFloat64(), row.FactT1.InexactFloat64(), row.Delta.InexactFloat64(),
			row.ManagerT0.Name, row.ManagerT0.ID,
			row.ManagerT1.Name, row.ManagerT1.ID,
			row.Latest.Name, row.Latest.ID,
		)
		rows = append(rows, values)
	}
	return sheet{name: string(dataset.Variant), headers: headers, rows: rows}
}

// summarySheet готовит лист свода по менеджерам
func (l *ExcelLoader) summarySheet(name string, summary models.ManagerSummary) sheet {
	headers := []string{HeaderLatestID, HeaderLatestName}
	if summary.IncludeTB {
		headers = append(headers, l.columns.TB)
	}
	headers = append(headers, HeaderFactT0, HeaderFactT1, HeaderDelta)

	rows := make([][]interface{}, 0, len(summary.Rows))
	for _, row := range summary.Rows {
		values := []interface{}{row.ManagerID, row.ManagerName}
		if summary.IncludeTB {
			values = append(values, row.TB)
		}
		values = append(values, row.FactT0.InexactFloat64(), row.FactT1.InexactFloat64(), row.Delta.InexactFloat64())
		rows = append(rows, values)
	}
	return sheet{name: name, headers: headers, rows: rows}
}

// spodSheet готовит лист выгрузки СПОД; все значения - строки
func spodSheet(dataset []models.SpodExportRow) sheet {
	rows := make([][]interface{}, 0, len(dataset))
	for _, row := range dataset {
		values := make([]interface{}, 0, len(models.SpodHeaders))
		for _, value := range row.Values() {
			values = append(values, value)
		}
		rows = append(rows, values)
	}
	return sheet{name: SheetSpod, headers: models.SpodHeaders, rows: rows}
}

// writeSheet записывает данные листа и применяет форматирование:
// жирный заголовок, закреплённая первая строка, автофильтр, ширина колонок, числовой формат фактов
func writeSheet(workbook *excelize.File, s sheet) error {
	header := make([]interface{}, len(s.headers))
	for i, h := range s.headers {
		header[i] = h
	}
	if err := workbook.SetSheetRow(s.name, "A1", &header); err != nil {
		return err
	}
	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := row
		if err := workbook.SetSheetRow(s.name, cell, &row); err != nil {
			return err
		}
	}

	numberFormat := numberFormatPattern
	headerStyle, err := workbook.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{WrapText: true},
	})
	if err != nil {
		return err
	}
	wrapStyle, err := workbook.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true},
	})
	if err != nil {
		return err
	}
	numberStyle, err := workbook.NewStyle(&excelize.Style{
		CustomNumFmt: &numberFormat,
		Alignment:    &excelize.Alignment{WrapText: true},
	})
	if err != nil {
		return err
	}

	for col, name := range s.headers {
		column, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := workbook.SetColWidth(s.name, column, column, float64(columnWidth(s, col))); err != nil {
			return err
		}
		style := wrapStyle
		if isNumericHeader(name) {
			style = numberStyle
		}
		if err := workbook.SetColStyle(s.name, column, style); err != nil {
			return err
		}
	}
	if err := workbook.SetRowStyle(s.name, 1, 1, headerStyle); err != nil {
		return err
	}

	if err := workbook.SetPanes(s.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	lastColumn, err := excelize.ColumnNumberToName(max(1, len(s.headers)))
	if err != nil {
		return err
	}
	lastCell, err := excelize.JoinCellName(lastColumn, len(s.rows)+1)
	if err != nil {
		return err
	}
	return workbook.AutoFilter(s.name, "A1:"+lastCell, nil)
}

// columnWidth рассчитывает ширину колонки по самому длинному значению, ограничивая её диапазоном
func columnWidth(s sheet, col int) int {
	longest := utf8.RuneCountInString(s.headers[col])
	for _, row := range s.rows {
		if col < len(row) {
			if length := utf8.RuneCountInString(toString(row[col])); length > longest {
				longest = length
			}
		}
	}
	return clampWidth(longest + 2)
}

// clampWidth ограничивает ширину столбца диапазоном 70-200
func clampWidth(length int) int {
	return max(minColumnWidth, min(length, maxColumnWidth))
}

func isNumericHeader(header string) bool {
	return strings.HasPrefix(header, "Факт") || header == HeaderDelta
}

func toString(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
