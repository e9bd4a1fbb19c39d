package models

import (
	"fmt"
	"strings"
)

// ParseError описывает строку источника, значение которой не удалось разобрать.
// Такие ошибки не покидают нормализатор: строка отбрасывается и учитывается в счётчике.
type ParseError struct {
	File   string
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("строка %d файла %s: не удалось разобрать значение %q в колонке %s: %v",
		e.Row, e.File, e.Value, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError возникает, если во входном файле нет обязательных колонок
type SchemaError struct {
	File    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("отсутствуют обязательные колонки [%s] в файле %s",
		strings.Join(e.Missing, ", "), e.File)
}

// IOError оборачивает ошибки чтения входных и записи выходных файлов
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("ошибка ввода-вывода (%s) %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ConfigError сообщает о некорректной статической конфигурации
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("некорректная конфигурация %s: %s", e.Field, e.Reason)
}
