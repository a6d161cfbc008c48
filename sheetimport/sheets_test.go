package sheetimport

import (
	"testing"
)

func TestFilterDataRowsSkipsHeader(t *testing.T) {
	raw := [][]string{
		{"BAR", "DATE", "AGENT", "STAFF"},
		{"MANDARIN", "2024-03-15", "", "512-JOY"},
		{"MANDARIN", "2024-03-15", "", "601-MAY"},
	}
	rows := FilterDataRows(raw)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Number != 2 || rows[1].Number != 3 {
		t.Errorf("row numbers = %d, %d; want 2, 3", rows[0].Number, rows[1].Number)
	}
}

func TestFilterDataRowsHeaderDetection(t *testing.T) {
	// Any recognized header marker anywhere in the first row counts.
	raw := [][]string{
		{"venue", "when", "agent", "who"},
		{"MANDARIN", "2024-03-15", "", "512-JOY"},
	}
	rows := FilterDataRows(raw)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
}

func TestFilterDataRowsDropsRowsMissingBarOrStaff(t *testing.T) {
	raw := [][]string{
		{"BAR", "DATE", "AGENT", "STAFF"},
		{"MANDARIN", "2024-03-15", "", "512-JOY"},
		{"", "2024-03-16", "", "513-ANN"},     // no bar
		{"MANDARIN", "2024-03-17", "", "   "}, // no staff
		{"MANDARIN", "2024-03-18"},            // short row, no staff cell
		{"MANDARIN", "2024-03-19", "", "514-BEE"},
	}
	rows := FilterDataRows(raw)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// Numbers track physical position, not the surviving count.
	if rows[0].Number != 2 {
		t.Errorf("first row number = %d, want 2", rows[0].Number)
	}
	if rows[1].Number != 6 {
		t.Errorf("second row number = %d, want 6", rows[1].Number)
	}
}

func TestFilterDataRowsEmpty(t *testing.T) {
	if rows := FilterDataRows(nil); rows != nil {
		t.Errorf("nil input should yield nil, got %v", rows)
	}
	if rows := FilterDataRows([][]string{{"BAR", "DATE", "AGENT", "STAFF"}}); len(rows) != 0 {
		t.Errorf("header-only sheet should yield no rows, got %v", rows)
	}
}
