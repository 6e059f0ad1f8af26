package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"aquagrid/internal/models"
	"aquagrid/internal/utils"

	"github.com/paulmach/orb"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const (
	// MinLedgerYear is the earliest usage year that contributes to a baseline.
	MinLedgerYear = 2020

	// PublicSupplyCategory is the use category preferred when building utility baselines.
	PublicSupplyCategory = "Public_Supply"
)

// Ledger columns.
const (
	colYear         = "Year"
	colAnnualVolume = "Annual_Volume_Million_Gallons"
	colUseCategory  = "USGS_Use_Category_Assigned_Simplified"
	colLatPOU       = "Latitude_POU"
	colLngPOU       = "Longitude_POU"
	colLatPOD       = "Latitude_POD"
	colLngPOD       = "Longitude_POD"
)

// Discard reasons reported in LedgerReport.
const (
	DiscardMalformed = "malformed"
	DiscardYear      = "year"
	DiscardVolume    = "volume"
	DiscardPoint     = "point"
	DiscardUnmatched = "unmatched"
)

// LedgerReport summarizes how a ledger file was read.
type LedgerReport struct {
	Encoding  string         `json:"encoding"`
	RowsRead  int            `json:"rows_read"`
	Accepted  int            `json:"accepted"`
	Discarded map[string]int `json:"discarded"`
}

func newLedgerReport() LedgerReport {
	return LedgerReport{Discarded: make(map[string]int)}
}

// textDecoder is one attempt in the ordered encoding fallback chain.
type textDecoder struct {
	name   string
	decode func([]byte) (string, error)
}

var errInvalidText = errors.New("invalid byte sequence for encoding")

// ledgerDecoders are tried in order; the first that accepts the whole file wins.
var ledgerDecoders = []textDecoder{
	{name: "utf-8-sig", decode: decodeUTF8(unicode.UTF8BOM)},
	{name: "utf-8", decode: decodeUTF8(unicode.UTF8)},
	{name: "cp1252", decode: decodeWindows1252},
	{name: "latin-1", decode: decodeCharmap(charmap.ISO8859_1)},
}

// lossyEncoding names the last-resort decode used when every attempt fails.
const lossyEncoding = "utf-8-replace"

func decodeUTF8(enc encoding.Encoding) func([]byte) (string, error) {
	return func(b []byte) (string, error) {
		if !utf8.Valid(b) {
			return "", errInvalidText
		}
		return decodeCharmap(enc)(b)
	}
}

// bytes with no assignment in Windows-1252
var cp1252Undefined = []byte{0x81, 0x8D, 0x8F, 0x90, 0x9D}

func decodeWindows1252(b []byte) (string, error) {
	for _, c := range cp1252Undefined {
		if bytes.IndexByte(b, c) >= 0 {
			return "", errInvalidText
		}
	}
	return decodeCharmap(charmap.Windows1252)(b)
}

func decodeCharmap(enc encoding.Encoding) func([]byte) (string, error) {
	return func(b []byte) (string, error) {
		out, err := enc.NewDecoder().Bytes(b)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}

// DecodeLedgerText decodes raw ledger bytes with the first encoding that accepts them,
// falling back to a lossy decode that substitutes U+FFFD for invalid sequences.
func DecodeLedgerText(b []byte) (text string, encodingName string) {
	for _, d := range ledgerDecoders {
		if s, err := d.decode(b); err == nil {
			return s, d.name
		}
	}
	return strings.ToValidUTF8(string(b), "\uFFFD"), lossyEncoding
}

// ReadLedger reads and parses the usage ledger at path.
func ReadLedger(path string) ([]models.UsageRecord, LedgerReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newLedgerReport(), fmt.Errorf("read ledger: %w", err)
	}
	records, report := ParseLedger(data)
	return records, report, nil
}

// ParseLedger decodes and parses ledger CSV. Rows that fail to parse or validate are counted
// in the report and dropped; ledger quality is uneven and no single row fails the load.
func ParseLedger(data []byte) ([]models.UsageRecord, LedgerReport) {
	report := newLedgerReport()
	text, enc := DecodeLedgerText(data)
	report.Encoding = enc

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, report
	}
	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))] = i
	}

	var records []models.UsageRecord
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				report.RowsRead++
				report.Discarded[DiscardMalformed]++
				continue
			}
			break
		}
		report.RowsRead++

		get := func(col string) string {
			if i, ok := columns[col]; ok && i < len(row) {
				return row[i]
			}
			return ""
		}

		rec, reason, ok := parseUsageRow(get)
		if !ok {
			report.Discarded[reason]++
			continue
		}
		report.Accepted++
		records = append(records, rec)
	}
	return records, report
}

func parseUsageRow(get func(string) string) (models.UsageRecord, string, bool) {
	year, ok := utils.ParseOptionalInt(get(colYear))
	if !ok || year < MinLedgerYear {
		return models.UsageRecord{}, DiscardYear, false
	}
	volume, ok := utils.ParseOptionalFloat(get(colAnnualVolume))
	if !ok || volume <= 0 {
		return models.UsageRecord{}, DiscardVolume, false
	}
	pt, ok := rowPoint(get)
	if !ok {
		return models.UsageRecord{}, DiscardPoint, false
	}
	return models.UsageRecord{
		Year:                       year,
		AnnualVolumeMillionGallons: volume,
		UseCategory:                strings.TrimSpace(get(colUseCategory)),
		Point:                      pt,
	}, "", true
}

// pointSource is one lat/lng column pair a ledger row may carry.
type pointSource struct {
	lat, lng string
}

// pointSources are tried in order: point of use, then point of diversion.
var pointSources = []pointSource{
	{lat: colLatPOU, lng: colLngPOU},
	{lat: colLatPOD, lng: colLngPOD},
}

func rowPoint(get func(string) string) (orb.Point, bool) {
	for _, src := range pointSources {
		lat, okLat := utils.ParseOptionalFloat(get(src.lat))
		lng, okLng := utils.ParseOptionalFloat(get(src.lng))
		if okLat && okLng {
			return orb.Point{lng, lat}, true
		}
	}
	return orb.Point{}, false
}
