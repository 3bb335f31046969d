// Package dataset loads the trap-monitoring table and prepares the
// gap-filled daily target series and exogenous matrix the forecasting core
// consumes. Prepared tables are cached per source path; the cache is
// invalidated only by restart or an explicit call.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/olivesense/trapcast-go/internal/models"
)

// Expected column headers of the source table.
const (
	ColDate        = "Date"
	ColTemperature = "temperature_mean"
	ColHumidity    = "relativehumidity_mean"
	ColCaptures    = "no. of Adult males"
)

// LoadResult is the raw outcome of reading a source table: the rows where
// all four required fields parsed, plus the count of data rows read so the
// summary endpoint can report how many were dropped.
type LoadResult struct {
	Records  []models.TrapRecord
	RowsRead int
}

// Load reads a source table from an .xlsx workbook or a .csv file. Rows
// failing to parse any of the four required fields are dropped, not
// reported as errors.
func Load(path, sheet string) (*LoadResult, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return loadWorkbook(path, sheet)
	case ".csv":
		return loadCSV(path)
	default:
		return nil, fmt.Errorf("unsupported table format: %s", filepath.Ext(path))
	}
}

func loadWorkbook(path, sheet string) (*LoadResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return parseRows(rows)
}

func loadCSV(path string) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return parseRows(rows)
}

func parseRows(rows [][]string) (*LoadResult, error) {
	if len(rows) == 0 {
		return &LoadResult{}, nil
	}

	cols := map[string]int{}
	for i, name := range rows[0] {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{ColDate, ColTemperature, ColHumidity, ColCaptures} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	result := &LoadResult{}
	for _, row := range rows[1:] {
		result.RowsRead++

		date, ok := parseDate(cell(row, cols[ColDate]))
		if !ok {
			continue
		}
		temp, ok := parseNumber(cell(row, cols[ColTemperature]))
		if !ok {
			continue
		}
		hum, ok := parseNumber(cell(row, cols[ColHumidity]))
		if !ok {
			continue
		}
		captures, ok := parseNumber(cell(row, cols[ColCaptures]))
		if !ok {
			continue
		}

		result.Records = append(result.Records, models.TrapRecord{
			Date:        date,
			Temperature: temp,
			Humidity:    hum,
			Captures:    captures,
		})
	}
	return result, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"2006/01/02",
	time.RFC3339,
}

// parseDate coerces a cell to a calendar day at midnight UTC. Unparseable
// dates become missing, which drops the row.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
