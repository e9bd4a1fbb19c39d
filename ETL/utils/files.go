package utils

import (
	"os"
	"time"

	"github.com/LilVoxy/spod_rost/ETL/models"
)

// TimestampSuffix формирует суффикс вида _YYYYMMDD_HH_MM
func TimestampSuffix(t time.Time) string {
	return t.Format("_20060102_15_04")
}

// EnsureDirectories создаёт недостающие каталоги
func EnsureDirectories(directories ...string) error {
	for _, directory := range directories {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return &models.IOError{Op: "mkdir", Path: directory, Err: err}
		}
	}
	return nil
}
