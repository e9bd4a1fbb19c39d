package load

import (
	"github.com/LilVoxy/spod_rost/ETL/models"
)

// Loader интерфейс для записи результатов расчёта
type Loader interface {
	// LoadReport записывает многолистовой отчёт Excel
	LoadReport(data *models.TransformedData, path string) error

	// LoadSpodCSV записывает выгрузку СПОД в текстовый файл и возвращает записанные байты
	LoadSpodCSV(rows []models.SpodExportRow, path string) ([]byte, error)
}

// FileLoader реализация Loader для файлов в каталоге OUT
type FileLoader struct {
	// Загрузчики для отдельных форматов
	excelLoader *ExcelLoader
	csvLoader   *CSVLoader
}

// NewFileLoader создает новый экземпляр FileLoader
func NewFileLoader(excelLoader *ExcelLoader, csvLoader *CSVLoader) *FileLoader {
	return &FileLoader{
		excelLoader: excelLoader,
		csvLoader:   csvLoader,
	}
}

// LoadReport записывает многолистовой отчёт Excel
func (l *FileLoader) LoadReport(data *models.TransformedData, path string) error {
	return l.excelLoader.Load(data, path)
}

// LoadSpodCSV записывает выгрузку СПОД
func (l *FileLoader) LoadSpodCSV(rows []models.SpodExportRow, path string) ([]byte, error) {
	return l.csvLoader.Load(rows, path)
}
