package extractors

import (
	"errors"
	"strings"

	"github.com/LilVoxy/spod_rost/ETL/config"
	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/LilVoxy/spod_rost/ETL/utils"
	"github.com/shopspring/decimal"
)

var errEmptyNumber = errors.New("пустое число")

// FormatIdentifier приводит идентификатор к строке фиксированной длины с лидирующими символами.
// Текст без цифр возвращается как есть, пустое значение остаётся пустым.
func FormatIdentifier(value string, totalLength int, fillChar string) string {
	text := strings.TrimSpace(value)
	if text == "" {
		return text
	}
	text = trimZeroFraction(text)

	var digits strings.Builder
	for _, ch := range text {
		if ch >= '0' && ch <= '9' {
			digits.WriteRune(ch)
		}
	}
	if digits.Len() == 0 {
		return text
	}

	result := digits.String()
	if missing := totalLength - len(result); missing > 0 {
		result = strings.Repeat(fillChar, missing) + result
	}
	return result
}

// trimZeroFraction убирает нулевую дробную часть, которую Excel добавляет к числовым ячейкам ("85461.0")
func trimZeroFraction(text string) string {
	sep := strings.LastIndexByte(text, '.')
	if sep <= 0 || sep == len(text)-1 {
		return text
	}
	for _, ch := range text[:sep] {
		if ch < '0' || ch > '9' {
			return text
		}
	}
	for _, ch := range text[sep+1:] {
		if ch != '0' {
			return text
		}
	}
	return text[:sep]
}

// NormalizeString возвращает строку без пробелов по краям
func NormalizeString(value string) string {
	return strings.TrimSpace(value)
}

// ParseFact разбирает числовое значение с учётом запятой как десятичного разделителя
// и пробелов между разрядами. Пустое значение считается нулём.
func ParseFact(value string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", ",", ".").Replace(strings.TrimSpace(value))
	if cleaned == "" {
		return decimal.Zero, nil
	}
	parsed, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, &models.ParseError{Column: models.ColumnFact, Value: value, Err: err}
	}
	return parsed, nil
}

// SafeToFloat разбирает число так же, как ParseFact, и возвращает float64
func SafeToFloat(value string) (float64, error) {
	if strings.TrimSpace(value) == "" {
		return 0, &models.ParseError{Column: models.ColumnFact, Value: value, Err: errEmptyNumber}
	}
	parsed, err := ParseFact(value)
	if err != nil {
		return 0, err
	}
	return parsed.InexactFloat64(), nil
}

// NormalizeResult содержит очищенные записи и счётчики отброшенных строк
type NormalizeResult struct {
	Records          []models.ClientRecord
	DroppedForbidden map[string]int
	DroppedMalformed int
	ParseErrors      []*models.ParseError
}

// Dropped возвращает общее количество отброшенных строк
func (r *NormalizeResult) Dropped() int {
	total := r.DroppedMalformed
	for _, count := range r.DroppedForbidden {
		total += count
	}
	return total
}

// Normalizer очищает сырые таблицы: форматирует идентификаторы, удаляет запрещённые значения,
// разбирает числовой факт
type Normalizer struct {
	forbidden   map[string]map[string]struct{}
	identifiers config.IdentifierConfig
	logger      *utils.ETLLogger
}

// NewNormalizer создает новый экземпляр Normalizer
func NewNormalizer(rules config.NormalizationConfig, identifiers config.IdentifierConfig, logger *utils.ETLLogger) *Normalizer {
	forbidden := make(map[string]map[string]struct{}, len(rules.DropRules))
	for column, values := range rules.DropRules {
		set := make(map[string]struct{}, len(values))
		for _, value := range values {
			set[strings.ToLower(strings.TrimSpace(value))] = struct{}{}
		}
		forbidden[column] = set
	}
	return &Normalizer{
		forbidden:   forbidden,
		identifiers: identifiers,
		logger:      logger.Named("Cleaner"),
	}
}

// Normalize возвращает очищенные записи таблицы. Ошибки разбора отдельных строк
// не прерывают обработку: строка отбрасывается и учитывается в счётчике.
func (n *Normalizer) Normalize(table *models.RawTable) *NormalizeResult {
	result := &NormalizeResult{
		Records:          make([]models.ClientRecord, 0, len(table.Rows)),
		DroppedForbidden: make(map[string]int),
	}

	for i, row := range table.Rows {
		// Строка 1 - заголовок
		rowNumber := i + 2

		record := models.ClientRecord{
			Row:         rowNumber,
			TB:          NormalizeString(table.Value(row, models.ColumnTB)),
			GOSB:        NormalizeString(table.Value(row, models.ColumnGOSB)),
			ManagerName: NormalizeString(table.Value(row, models.ColumnManagerName)),
			ManagerID: FormatIdentifier(table.Value(row, models.ColumnManagerID),
				n.identifiers.TNTotalLength, n.identifiers.TNFillChar),
			ClientID: FormatIdentifier(table.Value(row, models.ColumnClientID),
				n.identifiers.INNTotalLength, n.identifiers.INNFillChar),
		}

		if column, forbidden := n.forbiddenColumn(record); forbidden {
			result.DroppedForbidden[column]++
			continue
		}

		fact, err := ParseFact(table.Value(row, models.ColumnFact))
		if err != nil {
			var parseErr *models.ParseError
			if errors.As(err, &parseErr) {
				parseErr.File = table.Source
				parseErr.Row = rowNumber
				result.ParseErrors = append(result.ParseErrors, parseErr)
			}
			result.DroppedMalformed++
			n.logger.Debug("%v", err)
			continue
		}
		record.Fact = fact

		result.Records = append(result.Records, record)
	}

	for column, count := range result.DroppedForbidden {
		n.logger.Debug("Файл %s, колонка %s: удалено %d строк", table.Source, column, count)
	}
	if result.DroppedMalformed > 0 {
		n.logger.Warn("Файл %s: отброшено %d строк с некорректным фактом", table.Source, result.DroppedMalformed)
	}
	n.logger.Debug("После очистки в %s осталось строк: %d", table.Source, len(result.Records))
	return result
}

// forbiddenColumn возвращает первую колонку, значение которой запрещено правилами
func (n *Normalizer) forbiddenColumn(record models.ClientRecord) (string, bool) {
	for _, column := range models.RequiredColumns {
		values, ok := n.forbidden[column]
		if !ok {
			continue
		}
		var value string
		switch column {
		case models.ColumnTB:
			value = record.TB
		case models.ColumnGOSB:
			value = record.GOSB
		case models.ColumnManagerName:
			value = record.ManagerName
		case models.ColumnManagerID:
			value = record.ManagerID
		case models.ColumnClientID:
			value = record.ClientID
		default:
			continue
		}
		if _, hit := values[strings.ToLower(value)]; hit {
			return column, true
		}
	}
	return "", false
}
