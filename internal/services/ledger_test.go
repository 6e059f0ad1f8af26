package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLedger_FiltersAndReports(t *testing.T) {
	records, report := ParseLedger([]byte(testLedgerCSV))

	assert.Equal(t, "utf-8-sig", report.Encoding)
	assert.Equal(t, 14, report.RowsRead)
	assert.Equal(t, 8, report.Accepted)
	assert.Equal(t, 2, report.Discarded[DiscardYear])
	assert.Equal(t, 2, report.Discarded[DiscardVolume])
	assert.Equal(t, 2, report.Discarded[DiscardPoint])
	require.Len(t, records, 8)

	for _, rec := range records {
		assert.GreaterOrEqual(t, rec.Year, MinLedgerYear)
		assert.Greater(t, rec.AnnualVolumeMillionGallons, 0.0)
	}
}

func TestParseLedger_MinimumYearIsInclusive(t *testing.T) {
	records, report := ParseLedger([]byte(csvLines(
		"2019,10,Public_Supply,39.25,-77.5,,",
		"2020,20,Public_Supply,39.25,-77.5,,",
	)))

	require.Len(t, records, 1)
	assert.Equal(t, 2020, records[0].Year)
	assert.Equal(t, 1, report.Discarded[DiscardYear])
}

func TestParseLedger_PointOfDiversionFallback(t *testing.T) {
	records, _ := ParseLedger([]byte(csvLines(
		"2021,10,Public_Supply,39.1,-77.1,39.9,-77.9",
		"2021,10,Public_Supply,,-77.1,39.9,-77.9",
	)))

	require.Len(t, records, 2)
	assert.Equal(t, orb.Point{-77.1, 39.1}, records[0].Point, "point of use preferred")
	assert.Equal(t, orb.Point{-77.9, 39.9}, records[1].Point, "incomplete point of use falls back")
}

func TestParseLedger_TrimsCategoryAndHeaders(t *testing.T) {
	data := " Year , Annual_Volume_Million_Gallons ,USGS_Use_Category_Assigned_Simplified,Latitude_POU,Longitude_POU\n" +
		"2021,10, Public_Supply ,39.1,-77.1\n"

	records, _ := ParseLedger([]byte(data))

	require.Len(t, records, 1)
	assert.Equal(t, PublicSupplyCategory, records[0].UseCategory)
}

func TestParseLedger_ShortRowsAndEmptyInput(t *testing.T) {
	records, report := ParseLedger([]byte(csvLines("2021,10")))
	assert.Empty(t, records)
	assert.Equal(t, 1, report.Discarded[DiscardPoint])

	records, report = ParseLedger(nil)
	assert.Empty(t, records)
	assert.Zero(t, report.RowsRead)
}

func TestDecodeLedgerText_EncodingChain(t *testing.T) {
	tests := []struct {
		name     string
		in       []byte
		wantText string
		wantEnc  string
	}{
		{
			name:     "utf-8 with bom",
			in:       append([]byte{0xEF, 0xBB, 0xBF}, []byte("Year,Café")...),
			wantText: "Year,Café",
			wantEnc:  "utf-8-sig",
		},
		{
			name:     "plain utf-8",
			in:       []byte("Year,Café"),
			wantText: "Year,Café",
			wantEnc:  "utf-8-sig",
		},
		{
			name:     "windows-1252 smart quotes",
			in:       []byte{'a', 0x93, 'b', 0x94, ' ', 0xE9},
			wantText: "a“b” é",
			wantEnc:  "cp1252",
		},
		{
			name:     "byte undefined in cp1252 falls to latin-1",
			in:       []byte{'a', 0x81, 0xE9},
			wantText: "a\u0081é",
			wantEnc:  "latin-1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, enc := DecodeLedgerText(tt.in)
			assert.Equal(t, tt.wantEnc, enc)
			assert.Equal(t, tt.wantText, text)
		})
	}
}

func TestDecodeLedgerText_LossyFallback(t *testing.T) {
	saved := ledgerDecoders
	t.Cleanup(func() { ledgerDecoders = saved })
	ledgerDecoders = ledgerDecoders[:2]

	text, enc := DecodeLedgerText([]byte{'o', 'k', 0xFF})

	assert.Equal(t, lossyEncoding, enc)
	assert.Equal(t, "ok\uFFFD", text)
}

func TestParseLedger_Windows1252File(t *testing.T) {
	data := []byte(ledgerHeader + "2021,10,Public_Supply,39.1,-77.1,,\n" + "2021,5,Caf\xe9,39.1,-77.1,,\n")

	records, report := ParseLedger(data)

	assert.Equal(t, "cp1252", report.Encoding)
	require.Len(t, records, 2)
	assert.Equal(t, "Café", records[1].UseCategory)
}

func TestReadLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte(testLedgerCSV), 0o600))

	records, report, err := ReadLedger(path)
	require.NoError(t, err)
	assert.Len(t, records, 8)
	assert.Equal(t, 8, report.Accepted)

	_, _, err = ReadLedger(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
