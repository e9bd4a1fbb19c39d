package extractors

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/LilVoxy/spod_rost/ETL/config"
	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/LilVoxy/spod_rost/ETL/utils"
	"github.com/xuri/excelize/v2"
)

// SourceExtractor читает исходные таблицы T-0 и T-1 из xlsx или csv
type SourceExtractor struct {
	source config.SourceConfig
	logger *utils.ETLLogger
}

// NewSourceExtractor создает новый экземпляр SourceExtractor
func NewSourceExtractor(source config.SourceConfig, logger *utils.ETLLogger) *SourceExtractor {
	return &SourceExtractor{
		source: source,
		logger: logger.Named("DataLoader"),
	}
}

// CheckExists проверяет, что файл существует и является обычным файлом
func CheckExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &models.IOError{Op: "stat", Path: path, Err: err}
	}
	if info.IsDir() {
		return &models.IOError{Op: "stat", Path: path, Err: errors.New("ожидался файл, найден каталог")}
	}
	return nil
}

// ReadSourceFile загружает таблицу и переводит заголовки в единые идентификаторы колонок
func (e *SourceExtractor) ReadSourceFile(path string) (*models.RawTable, error) {
	if err := CheckExists(path); err != nil {
		return nil, err
	}

	e.logger.Info("Загружаю данные из файла %s", filepath.Base(path))

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx", ".xlsm":
		rows, err = e.readWorkbook(path)
	default:
		return nil, &models.IOError{Op: "read", Path: path, Err: fmt.Errorf("неподдерживаемый формат %s", filepath.Ext(path))}
	}
	if err != nil {
		return nil, err
	}

	table, err := e.buildTable(path, rows)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Из файла %s прочитано строк: %d", filepath.Base(path), len(table.Rows))
	return table, nil
}

// readWorkbook читает строки листа из книги Excel
func (e *SourceExtractor) readWorkbook(path string) ([][]string, error) {
	workbook, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &models.IOError{Op: "open", Path: path, Err: err}
	}
	defer workbook.Close()

	if index, err := workbook.GetSheetIndex(e.source.SheetName); err != nil || index < 0 {
		return nil, &models.SchemaError{File: path, Missing: []string{"лист " + e.source.SheetName}}
	}

	// Числа читаются как записаны в книге, без формата отображения ("1,234,567.89")
	rows, err := workbook.GetRows(e.source.SheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &models.IOError{Op: "read", Path: path, Err: err}
	}
	return rows, nil
}

// readCSV читает файл с разделителем ";" или ",", разделитель определяется по строке заголовков
func readCSV(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.IOError{Op: "open", Path: path, Err: err}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &models.IOError{Op: "read", Path: path, Err: err}
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// detectDelimiter выбирает "," только если в заголовке запятых больше, чем точек с запятой
func detectDelimiter(data []byte) rune {
	header := data
	if end := bytes.IndexByte(data, '\n'); end >= 0 {
		header = data[:end]
	}
	if bytes.Count(header, []byte(",")) > bytes.Count(header, []byte(";")) {
		return ','
	}
	return ';'
}

// buildTable проверяет наличие обязательных колонок и собирает RawTable
func (e *SourceExtractor) buildTable(path string, rows [][]string) (*models.RawTable, error) {
	if len(rows) == 0 {
		return nil, &models.SchemaError{File: path, Missing: e.requiredHeaders(nil)}
	}

	renameMap := e.source.Columns.RenameMap()
	headers := make([]string, len(rows[0]))
	present := make(map[string]bool)
	for i, header := range rows[0] {
		header = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if id, ok := renameMap[header]; ok {
			header = id
		}
		headers[i] = header
		present[header] = true
	}

	if missing := e.requiredHeaders(present); len(missing) > 0 {
		return nil, &models.SchemaError{File: path, Missing: missing}
	}

	table := &models.RawTable{
		Source:  filepath.Base(path),
		Headers: headers,
		Rows:    make([][]string, 0, len(rows)-1),
	}
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// requiredHeaders возвращает исходные заголовки обязательных колонок, которых нет среди present
func (e *SourceExtractor) requiredHeaders(present map[string]bool) []string {
	var missing []string
	for _, column := range models.RequiredColumns {
		if !present[column] {
			missing = append(missing, e.source.Columns.Header(column))
		}
	}
	return missing
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
