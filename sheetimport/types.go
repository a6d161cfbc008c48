package sheetimport

import (
	"encoding/json"

	"bitbucket.org/digitalshadow/shadow_backend/models"
)

// TriggerRunRequest starts one run per listed year. DryRun defaults to
// true: writing facts requires either dry_run=false or a later commit.
type TriggerRunRequest struct {
	Years      []int  `json:"years" validate:"required,min=1,dive,min=2000,max=2100"`
	Mode       string `json:"mode"`
	WindowDays int    `json:"window_days" validate:"min=0"`
	DryRun     *bool  `json:"dry_run"`
}

type RunResponse struct {
	ID            uint                `json:"id"`
	Status        models.ImportStatus `json:"status"`
	Mode          models.ImportMode   `json:"mode"`
	SourceYear    int                 `json:"source_year"`
	SourceSheetId string              `json:"source_sheet_id"`
	StartedAt     string              `json:"started_at"`
	CompletedAt   *string             `json:"completed_at"`
	RowsFetched   int                 `json:"rows_fetched"`
	RowsInserted  int                 `json:"rows_inserted"`
	RowsUpdated   int                 `json:"rows_updated"`
	RowsUnchanged int                 `json:"rows_unchanged"`
	RowsErrored   int                 `json:"rows_errored"`
	Checksum      string              `json:"checksum"`
	ErrorMessage  string              `json:"error_message,omitempty"`
}

type RunListResponse struct {
	Items []RunResponse `json:"items"`
}

type RowErrorResponse struct {
	ID             uint                   `json:"id"`
	SheetRowNumber int                    `json:"sheet_row_number"`
	ErrorType      models.ImportErrorKind `json:"error_type"`
	ErrorMessage   string                 `json:"error_message"`
	RowData        json.RawMessage        `json:"row_data"`
}

type RunErrorsResponse struct {
	RunId uint               `json:"run_id"`
	Items []RowErrorResponse `json:"items"`
}

type MismatchResponse struct {
	ID             uint    `json:"id"`
	Bar            string  `json:"bar"`
	Date           string  `json:"date"`
	StaffId        string  `json:"staff_id"`
	AgentLabel     *string `json:"agent_label"`
	StaffNumPrefix *int    `json:"staff_num_prefix"`
	AgentIdDerived *int    `json:"agent_id_derived"`
}

type MismatchListResponse struct {
	Items []MismatchResponse `json:"items"`
}

type DataSourceRequest struct {
	Year      int    `json:"year" validate:"required,min=2000,max=2100"`
	SheetId   string `json:"sheet_id" validate:"required"`
	TabName   string `json:"tab_name" validate:"required"`
	RangeSpec string `json:"range_spec"`
	IsActive  *bool  `json:"is_active"`
}

type AgentRangeRuleRequest struct {
	Bar        string `json:"bar" validate:"required"`
	AgentId    int    `json:"agent_id" validate:"required,min=1"`
	RangeStart int    `json:"range_start" validate:"min=0"`
	RangeEnd   int    `json:"range_end" validate:"min=0,gtefield=RangeStart"`
}
