package sheetimport

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"bitbucket.org/digitalshadow/shadow_backend/config"
)

// SheetRow is one fetched data row together with its 1-based position in
// the sheet. The position survives header skipping and blank-row filtering
// so that errors always point at the physical spreadsheet row.
type SheetRow struct {
	Number int
	Cells  []string
}

// RowSource yields the raw rows of one configured data source. The Google
// Sheets client implements it; tests substitute an in-memory source.
type RowSource interface {
	FetchRows(ctx context.Context, sheetId, tabName, rangeSpec string) ([]SheetRow, error)
}

// SheetSource reads rows through the Google Sheets API using a service
// account. Credentials come from GOOGLE_SHEETS_CREDENTIALS (path to a
// service account key file) or GOOGLE_SHEETS_CREDENTIALS_JSON (the key
// inline).
type SheetSource struct{}

func NewSheetSource() *SheetSource {
	return &SheetSource{}
}

func (s *SheetSource) FetchRows(ctx context.Context, sheetId, tabName, rangeSpec string) ([]SheetRow, error) {
	timeout := time.Duration(config.IntFromEnv("SHEETS_FETCH_TIMEOUT_SECONDS", 600)) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}

	readRange := fmt.Sprintf("%s!%s", tabName, rangeSpec)
	resp, err := svc.Spreadsheets.Values.Get(sheetId, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch range %s of %s: %w", readRange, sheetId, err)
	}

	raw := make([][]string, 0, len(resp.Values))
	for _, cells := range resp.Values {
		row := make([]string, 0, len(cells))
		for _, cell := range cells {
			row = append(row, fmt.Sprintf("%v", cell))
		}
		raw = append(raw, row)
	}

	return FilterDataRows(raw), nil
}

func newSheetsService(ctx context.Context) (*sheets.Service, error) {
	if credsJSON := os.Getenv("GOOGLE_SHEETS_CREDENTIALS_JSON"); credsJSON != "" {
		return sheets.NewService(ctx,
			option.WithCredentialsJSON([]byte(credsJSON)),
			option.WithScopes(sheets.SpreadsheetsReadonlyScope),
		)
	}
	if credsFile := os.Getenv("GOOGLE_SHEETS_CREDENTIALS"); credsFile != "" {
		return sheets.NewService(ctx,
			option.WithCredentialsFile(credsFile),
			option.WithScopes(sheets.SpreadsheetsReadonlyScope),
		)
	}
	// Ambient credentials (workload identity, gcloud ADC).
	return sheets.NewService(ctx, option.WithScopes(sheets.SpreadsheetsReadonlyScope))
}

// headerMarkers identifies a header row: if any cell of the first row
// matches one of these, the row is dropped.
var headerMarkers = map[string]bool{
	"BAR":   true,
	"DATE":  true,
	"STAFF": true,
	"AGENT": true,
}

// FilterDataRows drops the header row and rows missing the bar or staff
// cell, while numbering every surviving row by its physical position in
// the sheet. Data rows start at sheet row 2.
func FilterDataRows(raw [][]string) []SheetRow {
	if len(raw) == 0 {
		return nil
	}

	start := 0
	for _, cell := range raw[0] {
		if headerMarkers[strings.ToUpper(strings.TrimSpace(cell))] {
			start = 1
			break
		}
	}

	rows := make([]SheetRow, 0, len(raw)-start)
	for i, cells := range raw[start:] {
		if !hasCell(cells, 0) || !hasCell(cells, 3) {
			continue
		}
		rows = append(rows, SheetRow{Number: i + 2, Cells: cells})
	}
	return rows
}

func hasCell(cells []string, idx int) bool {
	return idx < len(cells) && strings.TrimSpace(cells[idx]) != ""
}
