package sheetimport

import (
	"fmt"
	"strings"

	"bitbucket.org/digitalshadow/shadow_backend/models"
)

// numericColumns are the money columns checked for parseability. "start" is
// excluded: it holds clock times, not amounts.
var numericColumns = []string{
	"salary", "late", "drinks", "off",
	"cut_late", "cut_drink", "cut_other",
	"total", "sale", "profit",
}

// RowIssue is one reportable validation failure on one row.
type RowIssue struct {
	Kind    models.ImportErrorKind
	Message string
}

// ValidateRow runs the ordered validation checks against a normalized row
// and returns every issue found. An empty result means the row is eligible
// for fact derivation. An entirely empty row short-circuits: no further
// checks apply.
func ValidateRow(row NormalizedRow, sheetRowNumber int) []RowIssue {
	if row.IsEmpty() {
		return []RowIssue{{
			Kind:    models.ImportErrorEmptyRow,
			Message: fmt.Sprintf("Row %d is empty", sheetRowNumber),
		}}
	}

	var issues []RowIssue

	if _, ok := row.Get("bar"); !ok {
		issues = append(issues, RowIssue{
			Kind:    models.ImportErrorMissingBar,
			Message: fmt.Sprintf("Row %d: Missing BAR value", sheetRowNumber),
		})
	}

	if dateRaw, ok := row.Get("date"); !ok {
		issues = append(issues, RowIssue{
			Kind:    models.ImportErrorMissingDate,
			Message: fmt.Sprintf("Row %d: Missing DATE value", sheetRowNumber),
		})
	} else if _, err := ParseDate(dateRaw); err != nil {
		issues = append(issues, RowIssue{
			Kind:    models.ImportErrorInvalidDate,
			Message: fmt.Sprintf("Row %d: Invalid DATE format '%s'", sheetRowNumber, dateRaw),
		})
	}

	if _, ok := row.Get("staff"); !ok {
		issues = append(issues, RowIssue{
			Kind:    models.ImportErrorMissingStaff,
			Message: fmt.Sprintf("Row %d: Missing STAFF value", sheetRowNumber),
		})
	}

	for _, name := range numericColumns {
		raw, ok := row.Get(name)
		if !ok {
			continue
		}
		if ParseNumeric(raw) == nil {
			issues = append(issues, RowIssue{
				Kind: models.ImportErrorInvalidNumeric,
				Message: fmt.Sprintf("Row %d: Invalid numeric value for %s: '%s'",
					sheetRowNumber, strings.ToUpper(name), raw),
			})
		}
	}

	return issues
}
