// internal/ingest/reader.go
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RawTable is the untyped tabular input handed to the pipeline: one header
// row plus string cells. No schema is assumed beyond the header existing.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// Format identifies the serialization of an uploaded sheet.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatForFilename picks the format from the file extension.
func FormatForFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(name))
	}
}

// ReadTable reads a CSV or XLSX file into a RawTable. Any failure here is
// fatal for the upload; per-value problems are left for the normalizer.
func ReadTable(path string) (*RawTable, error) {
	format, err := FormatForFilename(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return ReadTableFrom(f, format)
}

// ReadTableFrom reads a table from a stream in the given format.
func ReadTableFrom(r io.Reader, format Format) (*RawTable, error) {
	switch format {
	case FormatCSV:
		return readCSV(r)
	case FormatXLSX:
		return readXLSX(r)
	default:
		return nil, fmt.Errorf("unsupported format: %q", format)
	}
}

func readCSV(r io.Reader) (*RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv data: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv file has no header row")
	}

	table := &RawTable{Headers: records[0]}
	for _, rec := range records[1:] {
		table.Rows = append(table.Rows, padRow(rec, len(table.Headers)))
	}
	return table, nil
}

func readXLSX(r io.Reader) (*RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx stream: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file has no sheets")
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	defer rows.Close()

	var table *RawTable
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		if table == nil {
			if len(record) == 0 {
				continue // skip leading blank rows
			}
			table = &RawTable{Headers: record}
			continue
		}
		table.Rows = append(table.Rows, padRow(record, len(table.Headers)))
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	if table == nil {
		return nil, fmt.Errorf("xlsx sheet %s has no header row", sheets[0])
	}
	return table, nil
}

// sniffDelimiter picks between comma and semicolon based on the header line.
// Exports from regional spreadsheet locales use semicolons.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// padRow sizes a record to the header width so ragged rows never index out
// of range downstream.
func padRow(rec []string, width int) []string {
	if len(rec) == width {
		return rec
	}
	out := make([]string, width)
	copy(out, rec)
	return out
}
