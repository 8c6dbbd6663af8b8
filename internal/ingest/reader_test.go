package ingest

import (
	"reflect"
	"strings"
	"testing"
)

func TestFormatForFilename(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"orders.csv", FormatCSV, false},
		{"Orders.CSV", FormatCSV, false},
		{"export.xlsx", FormatXLSX, false},
		{"macro.xlsm", FormatXLSX, false},
		{"notes.txt", "", true},
		{"noextension", "", true},
	}
	for _, tt := range tests {
		got, err := FormatForFilename(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("FormatForFilename(%q): want error, got %q", tt.name, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("FormatForFilename(%q): %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatForFilename(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestReadCSV(t *testing.T) {
	input := "Order Number,Order Value\nA1,100\nA2,50\n"

	table, err := ReadTableFrom(strings.NewReader(input), FormatCSV)
	if err != nil {
		t.Fatalf("ReadTableFrom: %v", err)
	}
	if !reflect.DeepEqual(table.Headers, []string{"Order Number", "Order Value"}) {
		t.Errorf("headers = %v", table.Headers)
	}
	if len(table.Rows) != 2 || table.Rows[0][1] != "100" {
		t.Errorf("rows = %v", table.Rows)
	}
}

func TestReadCSVSemicolonDelimited(t *testing.T) {
	input := "Order Number;Order Value\nA1;1.250,50\n"

	table, err := ReadTableFrom(strings.NewReader(input), FormatCSV)
	if err != nil {
		t.Fatalf("ReadTableFrom: %v", err)
	}
	if len(table.Headers) != 2 {
		t.Fatalf("headers = %v, want 2 columns from semicolon sniffing", table.Headers)
	}
	if table.Rows[0][1] != "1.250,50" {
		t.Errorf("cell = %q, want the raw regional number", table.Rows[0][1])
	}
}

func TestReadCSVRaggedRows(t *testing.T) {
	input := "a,b,c\n1,2\n1,2,3,4\n"

	table, err := ReadTableFrom(strings.NewReader(input), FormatCSV)
	if err != nil {
		t.Fatalf("ReadTableFrom: %v", err)
	}
	for i, row := range table.Rows {
		if len(row) != len(table.Headers) {
			t.Errorf("row %d has %d cells, want %d", i, len(row), len(table.Headers))
		}
	}
	if table.Rows[0][2] != "" {
		t.Errorf("short row padded with %q, want empty", table.Rows[0][2])
	}
}

func TestReadCSVEmpty(t *testing.T) {
	if _, err := ReadTableFrom(strings.NewReader(""), FormatCSV); err == nil {
		t.Error("want error for csv without a header row")
	}
}
