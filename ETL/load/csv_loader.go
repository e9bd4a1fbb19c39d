package load

import (
	"bytes"
	"encoding/csv"
	"os"

	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/LilVoxy/spod_rost/ETL/utils"
)

// CSVLoader записывает выгрузку СПОД с разделителем ";"
type CSVLoader struct {
	logger *utils.ETLLogger
}

// NewCSVLoader создает новый экземпляр CSVLoader
func NewCSVLoader(logger *utils.ETLLogger) *CSVLoader {
	return &CSVLoader{logger: logger.Named("CSVLoader")}
}

// EncodeSpodCSV кодирует строки выгрузки в CSV с заголовком
func EncodeSpodCSV(rows []models.SpodExportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Comma = ';'

	if err := writer.Write(models.SpodHeaders); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := writer.Write(row.Values()); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load записывает выгрузку в файл и возвращает её содержимое
func (l *CSVLoader) Load(rows []models.SpodExportRow, path string) ([]byte, error) {
	content, err := EncodeSpodCSV(rows)
	if err != nil {
		return nil, &models.IOError{Op: "encode csv", Path: path, Err: err}
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, &models.IOError{Op: "write", Path: path, Err: err}
	}
	l.logger.Debug("Записано %d строк выгрузки СПОД в %s", len(rows), path)
	return content, nil
}
