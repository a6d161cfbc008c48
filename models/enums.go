package models

import (
	"errors"
	"strings"
)

type ImportStatus string

const (
	ImportStatusPending   ImportStatus = "PENDING"
	ImportStatusRunning   ImportStatus = "RUNNING"
	ImportStatusStaged    ImportStatus = "STAGED"
	ImportStatusCompleted ImportStatus = "COMPLETED"
	ImportStatusFailed    ImportStatus = "FAILED"
)

// importStatusTransitions is the closed set of legal status moves.
// COMPLETED and FAILED are terminal.
var importStatusTransitions = map[ImportStatus][]ImportStatus{
	ImportStatusPending: {ImportStatusRunning, ImportStatusStaged, ImportStatusFailed},
	ImportStatusRunning: {ImportStatusStaged, ImportStatusCompleted, ImportStatusFailed},
	ImportStatusStaged:  {ImportStatusCompleted, ImportStatusFailed},
}

func (s ImportStatus) Valid() bool {
	switch s {
	case ImportStatusPending, ImportStatusRunning, ImportStatusStaged,
		ImportStatusCompleted, ImportStatusFailed:
		return true
	}
	return false
}

func (s ImportStatus) CanTransitionTo(next ImportStatus) bool {
	for _, allowed := range importStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type ImportMode string

const (
	ImportModeFull        ImportMode = "FULL"
	ImportModeIncremental ImportMode = "INCREMENTAL"
)

func ParseImportMode(raw string) (ImportMode, error) {
	switch ImportMode(strings.ToUpper(strings.TrimSpace(raw))) {
	case ImportModeFull:
		return ImportModeFull, nil
	case ImportModeIncremental:
		return ImportModeIncremental, nil
	}
	return "", errors.New("invalid import mode")
}

// ImportErrorKind classifies row-local validation failures. All kinds are
// non-fatal: the row is excluded from fact derivation and the run continues.
type ImportErrorKind string

const (
	ImportErrorEmptyRow       ImportErrorKind = "EMPTY_ROW"
	ImportErrorMissingBar     ImportErrorKind = "MISSING_BAR"
	ImportErrorMissingDate    ImportErrorKind = "MISSING_DATE"
	ImportErrorInvalidDate    ImportErrorKind = "INVALID_DATE"
	ImportErrorMissingStaff   ImportErrorKind = "MISSING_STAFF"
	ImportErrorInvalidNumeric ImportErrorKind = "INVALID_NUMERIC"
)
