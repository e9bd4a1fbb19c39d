package extractors

import (
	"errors"
	"testing"

	"github.com/LilVoxy/spod_rost/ETL/config"
	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/LilVoxy/spod_rost/ETL/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatIdentifier(t *testing.T) {
	cases := []struct {
		name   string
		value  string
		length int
		want   string
	}{
		{"pads short number", "85461", 8, "00085461"},
		{"strips excel fraction", "85461.0", 8, "00085461"},
		{"keeps thousands separator digits", "12,000", 8, "00012000"},
		{"keeps comma group digits", "85461,00", 8, "08546100"},
		{"trims spaces", "  85461 ", 8, "00085461"},
		{"keeps long value", "1234567890123", 12, "1234567890123"},
		{"keeps only digits", "ТН-85461", 8, "00085461"},
		{"text without digits", " Green_Zone ", 8, "Green_Zone"},
		{"empty stays empty", "   ", 8, ""},
		{"inn", "7707083893", 12, "007707083893"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatIdentifier(tc.value, tc.length, "0"))
		})
	}
}

func TestFormatIdentifierIsIdempotent(t *testing.T) {
	for _, value := range []string{"85461", "85461.0", "Tech_Sib", "", "000123"} {
		once := FormatIdentifier(value, 8, "0")
		assert.Equal(t, once, FormatIdentifier(once, 8, "0"), value)
	}
}

func TestSafeToFloat(t *testing.T) {
	value, err := SafeToFloat("43,51")
	require.NoError(t, err)
	assert.InDelta(t, 43.51, value, 1e-9)

	value, err = SafeToFloat("1 234 567,8")
	require.NoError(t, err)
	assert.InDelta(t, 1234567.8, value, 1e-9)

	_, err = SafeToFloat("abc")
	var parseErr *models.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "abc", parseErr.Value)

	_, err = SafeToFloat(" ")
	assert.True(t, errors.As(err, &parseErr))
}

func TestParseFact(t *testing.T) {
	fact, err := ParseFact("1 000,25")
	require.NoError(t, err)
	assert.True(t, fact.Equal(decimal.RequireFromString("1000.25")))

	fact, err = ParseFact("")
	require.NoError(t, err)
	assert.True(t, fact.IsZero())

	_, err = ParseFact("12,3,4")
	var parseErr *models.ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func newTestNormalizer() *Normalizer {
	cfg := config.GetConfig()
	return NewNormalizer(cfg.Normalization, cfg.Identifiers, utils.NewNopLogger())
}

func rawTable(rows ...[]string) *models.RawTable {
	return &models.RawTable{
		Source: "test.xlsx",
		Headers: []string{
			models.ColumnTB, models.ColumnGOSB, models.ColumnManagerName,
			models.ColumnManagerID, models.ColumnClientID, models.ColumnFact,
		},
		Rows: rows,
	}
}

func TestNormalizeFormatsAndParses(t *testing.T) {
	result := newTestNormalizer().Normalize(rawTable(
		[]string{" Сибирский ", "8644", " Иванов И.И. ", "85461.0", "7707083893", "43,51"},
	))

	require.Len(t, result.Records, 1)
	record := result.Records[0]
	assert.Equal(t, "Сибирский", record.TB)
	assert.Equal(t, "Иванов И.И.", record.ManagerName)
	assert.Equal(t, "00085461", record.ManagerID)
	assert.Equal(t, "007707083893", record.ClientID)
	assert.Equal(t, 2, record.Row)
	assert.True(t, record.Fact.Equal(decimal.RequireFromString("43.51")))
	assert.Equal(t, 0, result.Dropped())
}

func TestNormalizeDropsForbiddenRows(t *testing.T) {
	result := newTestNormalizer().Normalize(rawTable(
		[]string{"ТБ", "1", "серая зона", "1", "1", "10"},
		[]string{"ТБ", "1", "Петров", "green_zone", "2", "10"},
		[]string{"ТБ", "1", "Петров", "-", "3", "10"},
		[]string{"ТБ", "1", "Петров", "5", "Report_id не определен", "10"},
		[]string{"ТБ", "1", "Петров", "5", "4", "10"},
	))

	require.Len(t, result.Records, 1)
	assert.Equal(t, "000000000004", result.Records[0].ClientID)
	assert.Equal(t, 1, result.DroppedForbidden[models.ColumnManagerName])
	assert.Equal(t, 2, result.DroppedForbidden[models.ColumnManagerID])
	assert.Equal(t, 1, result.DroppedForbidden[models.ColumnClientID])
	assert.Equal(t, 4, result.Dropped())
}

func TestNormalizeCountsMalformedFacts(t *testing.T) {
	result := newTestNormalizer().Normalize(rawTable(
		[]string{"ТБ", "1", "Петров", "5", "1", "не число"},
		[]string{"ТБ", "1", "Петров", "5", "2", ""},
	))

	require.Len(t, result.Records, 1)
	assert.True(t, result.Records[0].Fact.IsZero())
	assert.Equal(t, 1, result.DroppedMalformed)
	require.Len(t, result.ParseErrors, 1)
	assert.Equal(t, 2, result.ParseErrors[0].Row)
	assert.Equal(t, "test.xlsx", result.ParseErrors[0].File)
}

func TestNormalizeKeepsRowsWithoutManager(t *testing.T) {
	result := newTestNormalizer().Normalize(rawTable(
		[]string{"ТБ", "1", "", "", "1", "5"},
	))

	require.Len(t, result.Records, 1)
	assert.False(t, result.Records[0].HasManager())
}
