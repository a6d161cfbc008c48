package sheetimport

import (
	"encoding/json"
	"strings"
)

// ColumnNames lists the sheet columns A through Q in order. Every stage of
// the pipeline (hashing, validation, persistence) iterates columns in this
// order, so the order is load-bearing and must never change.
var ColumnNames = []string{
	"bar",
	"date",
	"agent",
	"staff",
	"position",
	"salary",
	"start",
	"late",
	"drinks",
	"off",
	"cut_late",
	"cut_drink",
	"cut_other",
	"total",
	"sale",
	"profit",
	"contract",
}

// NormalizedRow maps column name to its trimmed cell value. A nil value
// means the cell was absent: missing from the fetched row or blank after
// trimming. Values are stored verbatim apart from trimming; no parsing or
// correction happens here.
type NormalizedRow map[string]*string

// Normalize converts one fetched sheet row into a NormalizedRow. Cells
// beyond the known columns are dropped; short rows yield absent values for
// the trailing columns.
func Normalize(cells []string) NormalizedRow {
	row := make(NormalizedRow, len(ColumnNames))
	for i, name := range ColumnNames {
		if i >= len(cells) {
			row[name] = nil
			continue
		}
		v := strings.TrimSpace(cells[i])
		if v == "" {
			row[name] = nil
			continue
		}
		row[name] = &v
	}
	return row
}

// Get returns the cell value and whether it is present.
func (r NormalizedRow) Get(name string) (string, bool) {
	v, ok := r[name]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

// IsEmpty reports whether every column is absent.
func (r NormalizedRow) IsEmpty() bool {
	for _, name := range ColumnNames {
		if _, ok := r.Get(name); ok {
			return false
		}
	}
	return true
}

// Encode serializes the row for staging. Keys are emitted in sorted order
// by encoding/json, so the encoding is deterministic.
func (r NormalizedRow) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// DecodeRow is the inverse of Encode, used when the commit phase replays
// staged rows.
func DecodeRow(data []byte) (NormalizedRow, error) {
	var row NormalizedRow
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, err
	}
	return row, nil
}
