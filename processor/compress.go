package processor

import (
	"fmt"

	"github.com/golang/snappy"
)

// CompressExport сжимает содержимое выгрузки перед сохранением в журнал запусков
func CompressExport(data []byte) []byte {
	return snappy.Encode(nil, data)
}

// DecompressExport восстанавливает выгрузку из архива журнала
func DecompressExport(data []byte) ([]byte, error) {
	decompressed, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("ошибка при распаковке выгрузки: %w", err)
	}
	return decompressed, nil
}
