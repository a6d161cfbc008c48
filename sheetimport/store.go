package sheetimport

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bitbucket.org/digitalshadow/shadow_backend/config"
	"bitbucket.org/digitalshadow/shadow_backend/models"
	"bitbucket.org/digitalshadow/shadow_backend/utils"
)

// RunStore persists import run audit records.
type RunStore interface {
	CreateRun(ctx context.Context, run *models.ImportRun) error
	GetRun(ctx context.Context, id uint) (*models.ImportRun, error)
	UpdateRun(ctx context.Context, run *models.ImportRun) error
	// DeleteRun removes the run and cascades its raw rows and errors.
	// Fact rows are left to the caller.
	DeleteRun(ctx context.Context, id uint) error
}

// StagingStore persists the immutable per-run staging artifacts.
type StagingStore interface {
	SaveRawRow(ctx context.Context, row *models.RawRow) error
	// RawRowsForRun returns staged rows ordered by sheet row number.
	RawRowsForRun(ctx context.Context, runId uint) ([]models.RawRow, error)
	SaveImportError(ctx context.Context, rowErr *models.ImportError) error
}

// UpsertOutcome classifies what a fact upsert did.
type UpsertOutcome int

const (
	UpsertUnchanged UpsertOutcome = iota
	UpsertInserted
	UpsertUpdated
)

// FactStore persists resolved fact rows keyed by business key.
type FactStore interface {
	Upsert(ctx context.Context, fact *models.FactRow) (UpsertOutcome, error)
	// DeleteByRun removes fact rows last touched by the given run.
	DeleteByRun(ctx context.Context, runId uint) (int64, error)
}

// RuleStore supplies agent range rules, read-only from the pipeline's
// point of view.
type RuleStore interface {
	Rules(ctx context.Context) ([]models.AgentRangeRule, error)
}

// SourceStore resolves the configured data source for a year.
type SourceStore interface {
	ActiveSourceForYear(ctx context.Context, year int) (*models.DataSource, error)
}

// Store is the gorm-backed implementation of every pipeline store. The
// connection is resolved on every call, so a Store built before the
// database connects starts working as soon as it does.
type Store struct {
	db func() *gorm.DB
}

// NewStore binds the store to one connection. A nil connection defers to
// the shared config connection.
func NewStore(db *gorm.DB) *Store {
	if db == nil {
		return &Store{db: config.GetDB}
	}
	return &Store{db: func() *gorm.DB { return db }}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db().WithContext(ctx)
}

func (s *Store) CreateRun(ctx context.Context, run *models.ImportRun) error {
	return s.conn(ctx).Create(run).Error
}

func (s *Store) GetRun(ctx context.Context, id uint) (*models.ImportRun, error) {
	var run models.ImportRun
	err := s.conn(ctx).First(&run, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *Store) UpdateRun(ctx context.Context, run *models.ImportRun) error {
	return s.conn(ctx).Save(run).Error
}

func (s *Store) DeleteRun(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("import_run_id = ?", id).Delete(&models.RawRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("import_run_id = ?", id).Delete(&models.ImportError{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ImportRun{}, id).Error
	})
}

func (s *Store) SaveRawRow(ctx context.Context, row *models.RawRow) error {
	return s.conn(ctx).Create(row).Error
}

func (s *Store) RawRowsForRun(ctx context.Context, runId uint) ([]models.RawRow, error) {
	var rows []models.RawRow
	err := s.conn(ctx).
		Where("import_run_id = ?", runId).
		Order("sheet_row_number asc").
		Find(&rows).Error
	return rows, err
}

func (s *Store) SaveImportError(ctx context.Context, rowErr *models.ImportError) error {
	return s.conn(ctx).Create(rowErr).Error
}

// Upsert inserts or updates one fact row by business key. The existing row
// is locked for the duration of the transaction so two concurrent commits
// touching the same key serialize instead of double-inserting.
func (s *Store) Upsert(ctx context.Context, fact *models.FactRow) (UpsertOutcome, error) {
	outcome := UpsertUnchanged
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.FactRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("business_key = ?", fact.BusinessKey).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			outcome = UpsertInserted
			return tx.Create(fact).Error
		}
		if err != nil {
			return err
		}
		if existing.RowHash == fact.RowHash {
			outcome = UpsertUnchanged
			return nil
		}
		outcome = UpsertUpdated
		fact.ID = existing.ID
		fact.CreatedAt = existing.CreatedAt
		return tx.Save(fact).Error
	})
	if err != nil {
		return UpsertUnchanged, err
	}
	return outcome, nil
}

func (s *Store) DeleteByRun(ctx context.Context, runId uint) (int64, error) {
	res := s.conn(ctx).
		Where("last_import_run_id = ?", runId).
		Delete(&models.FactRow{})
	return res.RowsAffected, res.Error
}

func (s *Store) Rules(ctx context.Context) ([]models.AgentRangeRule, error) {
	var rules []models.AgentRangeRule
	err := s.conn(ctx).
		Order("range_start asc, id asc").
		Find(&rules).Error
	return rules, err
}

func (s *Store) ActiveSourceForYear(ctx context.Context, year int) (*models.DataSource, error) {
	var source models.DataSource
	err := s.conn(ctx).
		Where("year = ? AND is_active = ?", year, true).
		First(&source).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &source, nil
}
