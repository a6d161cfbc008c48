package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ImportRun is the audit record for one import attempt against one data
// source. It is only ever mutated by the run that created it and is never
// deleted automatically; an explicit delete cascades to RawRows and
// ImportErrors but leaves FactRows to the caller.
type ImportRun struct {
	ID            uint         `gorm:"primary_key" json:"id"`
	StartedAt     time.Time    `gorm:"autoCreateTime" json:"started_at"`
	CompletedAt   *time.Time   `json:"completed_at"`
	Status        ImportStatus `gorm:"size:20;not null;index" json:"status"`
	Mode          ImportMode   `gorm:"size:20;not null" json:"mode"`
	SourceYear    int          `gorm:"index;not null" json:"source_year"`
	SourceSheetId string       `gorm:"size:255;not null" json:"source_sheet_id"`
	RowsFetched   int          `json:"rows_fetched"`
	RowsInserted  int          `json:"rows_inserted"`
	RowsUpdated   int          `json:"rows_updated"`
	RowsUnchanged int          `json:"rows_unchanged"`
	RowsErrored   int          `json:"rows_errored"`
	Checksum      string       `gorm:"size:64" json:"checksum"`
	ErrorMessage  string       `gorm:"type:text" json:"error_message"`
}

// RawRow is the immutable staging copy of one sheet row for one run.
// It exists for audit and replay: the commit phase re-reads these rows
// instead of re-fetching the sheet.
type RawRow struct {
	ID             uint      `gorm:"primary_key" json:"id"`
	ImportRunId    uint      `gorm:"index;not null" json:"import_run_id"`
	SheetRowNumber int       `gorm:"not null" json:"sheet_row_number"`
	RowData        []byte    `gorm:"type:json;not null" json:"row_data"`
	RowHash        string    `gorm:"size:64;not null" json:"row_hash"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// FactRow is the resolved business record. BusinessKey is its permanent
// identity; a changed RowHash on a later run updates this row in place,
// never inserts a second one. Sheet values are stored verbatim, parsed
// numerics alongside, and nothing is ever inferred or corrected.
type FactRow struct {
	ID          uint   `gorm:"primary_key" json:"id"`
	BusinessKey string `gorm:"size:64;uniqueIndex;not null" json:"business_key"`

	SourceYear      int    `gorm:"index;not null" json:"source_year"`
	LastImportRunId uint   `gorm:"index;not null" json:"last_import_run_id"`
	RowHash         string `gorm:"size:64;not null" json:"row_hash"`

	Bar        string           `gorm:"size:50;not null;index" json:"bar"`
	Date       time.Time        `gorm:"not null;index" json:"date"`
	AgentLabel *string          `gorm:"size:50" json:"agent_label"`
	StaffId    string           `gorm:"size:100;not null;index" json:"staff_id"`
	Position   *string          `gorm:"size:50" json:"position"`
	Salary     *decimal.Decimal `gorm:"type:decimal(12,2)" json:"salary"`
	StartTime  *string          `gorm:"size:20" json:"start_time"`
	Late       *decimal.Decimal `gorm:"type:decimal(12,2)" json:"late"`
	Drinks     *decimal.Decimal `gorm:"type:decimal(12,2)" json:"drinks"`
	Off        *decimal.Decimal `gorm:"type:decimal(12,2)" json:"off"`
	CutLate    *decimal.Decimal `gorm:"type:decimal(12,2)" json:"cut_late"`
	CutDrink   *decimal.Decimal `gorm:"type:decimal(12,2)" json:"cut_drink"`
	CutOther   *decimal.Decimal `gorm:"type:decimal(12,2)" json:"cut_other"`
	Total      *decimal.Decimal `gorm:"type:decimal(12,2)" json:"total"`
	Sale       *decimal.Decimal `gorm:"type:decimal(12,2)" json:"sale"`
	Profit     *decimal.Decimal `gorm:"type:decimal(12,2)" json:"profit"`
	Contract   *string          `gorm:"size:50" json:"contract"`

	StaffNumPrefix *int `json:"staff_num_prefix"`
	AgentIdDerived *int `json:"agent_id_derived"`
	AgentMismatch  bool `gorm:"default:false" json:"agent_mismatch"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ImportError keeps one failed validation check per row, together with the
// offending normalized row for operator review. Never mutated.
type ImportError struct {
	ID             uint            `gorm:"primary_key" json:"id"`
	ImportRunId    uint            `gorm:"index;not null" json:"import_run_id"`
	SheetRowNumber int             `gorm:"not null" json:"sheet_row_number"`
	ErrorType      ImportErrorKind `gorm:"size:50;not null" json:"error_type"`
	ErrorMessage   string          `gorm:"type:text;not null" json:"error_message"`
	RowData        []byte          `gorm:"type:json" json:"row_data"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// AgentRangeRule maps a staff numeric prefix range to an agent, scoped to a
// bar. Consumed read-only by the import pipeline; ranges for one bar must
// not overlap (rejected at configuration time).
type AgentRangeRule struct {
	ID         uint      `gorm:"primary_key" json:"id"`
	Bar        string    `gorm:"size:50;not null;index" json:"bar"`
	AgentId    int       `gorm:"not null" json:"agent_id"`
	RangeStart int       `gorm:"not null" json:"range_start"`
	RangeEnd   int       `gorm:"not null" json:"range_end"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// DataSource configures one spreadsheet tab as an import source. One source
// per year.
type DataSource struct {
	ID        uint      `gorm:"primary_key" json:"id"`
	Year      int       `gorm:"uniqueIndex;not null" json:"year"`
	SheetId   string    `gorm:"size:255;not null" json:"sheet_id"`
	TabName   string    `gorm:"size:100;not null" json:"tab_name"`
	RangeSpec string    `gorm:"size:50;default:'A:Q'" json:"range_spec"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
