package sheetimport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bitbucket.org/digitalshadow/shadow_backend/config"
	"bitbucket.org/digitalshadow/shadow_backend/models"
)

const moduleName = "sheetimport"

// RunOptions selects what one invocation does. Each year is processed as
// its own independent run; a failure in one never aborts the others.
// WindowDays is an advisory hint for INCREMENTAL mode and does not filter
// rows: hash-based dedup keeps full re-reads cheap either way.
type RunOptions struct {
	Years      []int
	Mode       models.ImportMode
	WindowDays int
	DryRun     bool
}

// Worker drives the import pipeline: fetch, stage, validate, derive,
// upsert. All state lives in the stores; the worker itself is stateless
// and safe to share.
type Worker struct {
	runs    RunStore
	staging StagingStore
	facts   FactStore
	rules   RuleStore
	sources SourceStore
	rows    RowSource
	logger  *logrus.Logger
}

func NewWorker(runs RunStore, staging StagingStore, facts FactStore, rules RuleStore, sources SourceStore, rows RowSource, logger *logrus.Logger) *Worker {
	return &Worker{
		runs:    runs,
		staging: staging,
		facts:   facts,
		rules:   rules,
		sources: sources,
		rows:    rows,
		logger:  logger,
	}
}

// NewDefaultWorker wires the worker against the shared database connection
// and the Google Sheets client. The store resolves the connection per
// call, so the worker may be built before the database connects.
func NewDefaultWorker() *Worker {
	store := NewStore(nil)
	return NewWorker(store, store, store, store, store, NewSheetSource(), config.GetLogger())
}

// RunImport executes one run per requested year, sequentially. A dry run
// stages and validates every row but never touches fact rows; it finishes
// STAGED and waits for an explicit commit. A live run goes straight to
// COMPLETED.
//
// A fatal failure marks that year's run FAILED with the error message
// while keeping whatever was already staged; remaining years still run.
// The returned error aggregates the per-year failures.
func (w *Worker) RunImport(ctx context.Context, opts RunOptions) ([]*models.ImportRun, error) {
	var runs []*models.ImportRun
	var errs []error
	for _, year := range opts.Years {
		source, run, err := w.prepare(ctx, year, opts)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		runs = append(runs, run)
		if err := w.process(ctx, run, source, opts); err != nil {
			errs = append(errs, err)
		}
	}
	return runs, errors.Join(errs...)
}

// StartImport creates every run record synchronously so callers get the
// ids, then executes the stages in the background. Callers poll the runs
// for progress. The returned records are snapshots; the background stages
// keep mutating their own copies.
func (w *Worker) StartImport(ctx context.Context, opts RunOptions) ([]*models.ImportRun, error) {
	type pending struct {
		source *models.DataSource
		run    *models.ImportRun
	}
	var runs []*models.ImportRun
	var queue []pending
	var errs []error
	for _, year := range opts.Years {
		source, run, err := w.prepare(ctx, year, opts)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		snapshot := *run
		runs = append(runs, &snapshot)
		queue = append(queue, pending{source: source, run: run})
	}

	go func() {
		// Detach from the request context; the runs outlive the request.
		for _, p := range queue {
			_ = w.process(context.Background(), p.run, p.source, opts)
		}
	}()

	return runs, errors.Join(errs...)
}

func (w *Worker) prepare(ctx context.Context, year int, opts RunOptions) (*models.DataSource, *models.ImportRun, error) {
	source, err := w.sources.ActiveSourceForYear(ctx, year)
	if err != nil {
		return nil, nil, fmt.Errorf("no active data source for year %d: %w", year, err)
	}

	run := &models.ImportRun{
		Status:        models.ImportStatusPending,
		Mode:          opts.Mode,
		SourceYear:    source.Year,
		SourceSheetId: source.SheetId,
	}
	if err := w.runs.CreateRun(ctx, run); err != nil {
		return nil, nil, err
	}
	return source, run, nil
}

func (w *Worker) process(ctx context.Context, run *models.ImportRun, source *models.DataSource, opts RunOptions) error {
	if err := w.transition(ctx, run, models.ImportStatusRunning, false); err != nil {
		w.failRun(ctx, run, err)
		return err
	}

	if err := w.runStages(ctx, run, source, opts.DryRun); err != nil {
		w.failRun(ctx, run, err)
		return err
	}

	final := models.ImportStatusCompleted
	if opts.DryRun {
		final = models.ImportStatusStaged
	}
	if err := w.transition(ctx, run, final, true); err != nil {
		return err
	}

	w.logger.WithFields(logrus.Fields{
		"module":    moduleName,
		"runId":     run.ID,
		"year":      run.SourceYear,
		"status":    run.Status,
		"fetched":   run.RowsFetched,
		"inserted":  run.RowsInserted,
		"updated":   run.RowsUpdated,
		"unchanged": run.RowsUnchanged,
		"errored":   run.RowsErrored,
		"checksum":  run.Checksum,
	}).Info("import run finished")

	return nil
}

func (w *Worker) runStages(ctx context.Context, run *models.ImportRun, source *models.DataSource, dryRun bool) error {
	rows, err := w.rows.FetchRows(ctx, source.SheetId, source.TabName, source.RangeSpec)
	if err != nil {
		return fmt.Errorf("fetch rows: %w", err)
	}
	run.RowsFetched = len(rows)

	rules, err := w.rules.Rules(ctx)
	if err != nil {
		return fmt.Errorf("load agent range rules: %w", err)
	}

	rowHashes := make([]string, 0, len(rows))
	for _, sheetRow := range rows {
		row := Normalize(sheetRow.Cells)
		rowHash := RowHash(row)
		rowHashes = append(rowHashes, rowHash)

		encoded, err := row.Encode()
		if err != nil {
			return fmt.Errorf("encode row %d: %w", sheetRow.Number, err)
		}
		if err := w.staging.SaveRawRow(ctx, &models.RawRow{
			ImportRunId:    run.ID,
			SheetRowNumber: sheetRow.Number,
			RowData:        encoded,
			RowHash:        rowHash,
		}); err != nil {
			return fmt.Errorf("stage row %d: %w", sheetRow.Number, err)
		}

		issues := ValidateRow(row, sheetRow.Number)
		if len(issues) > 0 {
			run.RowsErrored++
			for _, issue := range issues {
				if err := w.staging.SaveImportError(ctx, &models.ImportError{
					ImportRunId:    run.ID,
					SheetRowNumber: sheetRow.Number,
					ErrorType:      issue.Kind,
					ErrorMessage:   issue.Message,
					RowData:        encoded,
				}); err != nil {
					return fmt.Errorf("record error for row %d: %w", sheetRow.Number, err)
				}
			}
			continue
		}

		if dryRun {
			continue
		}

		outcome, err := w.applyFactRow(ctx, rules, run, row, sheetRow.Number, rowHash)
		if err != nil {
			return fmt.Errorf("upsert row %d: %w", sheetRow.Number, err)
		}
		w.count(run, outcome)
	}

	run.Checksum = Checksum(rowHashes)
	return nil
}

// CommitRun applies a STAGED run to the fact table by replaying its staged
// rows. Rows are re-validated against current rules before derivation;
// rows that fail are skipped without duplicating their staged error
// records. Fetch and error counters keep their staging-time values.
func (w *Worker) CommitRun(ctx context.Context, runId uint) (*models.ImportRun, error) {
	run, err := w.runs.GetRun(ctx, runId)
	if err != nil {
		return nil, err
	}
	if run.Status != models.ImportStatusStaged {
		return nil, fmt.Errorf("run %d is not committable: status is %s", runId, run.Status)
	}

	rawRows, err := w.staging.RawRowsForRun(ctx, runId)
	if err != nil {
		return nil, err
	}
	rules, err := w.rules.Rules(ctx)
	if err != nil {
		return nil, err
	}

	commit := func() error {
		for _, raw := range rawRows {
			row, err := DecodeRow(raw.RowData)
			if err != nil {
				return fmt.Errorf("decode row %d: %w", raw.SheetRowNumber, err)
			}
			if len(ValidateRow(row, raw.SheetRowNumber)) > 0 {
				continue
			}
			outcome, err := w.applyFactRow(ctx, rules, run, row, raw.SheetRowNumber, raw.RowHash)
			if err != nil {
				return fmt.Errorf("upsert row %d: %w", raw.SheetRowNumber, err)
			}
			w.count(run, outcome)
		}
		return nil
	}

	if err := commit(); err != nil {
		w.failRun(ctx, run, fmt.Errorf("Commit failed: %w", err))
		return run, err
	}

	if err := w.transition(ctx, run, models.ImportStatusCompleted, true); err != nil {
		return run, err
	}

	w.logger.WithFields(logrus.Fields{
		"module":    moduleName,
		"runId":     run.ID,
		"inserted":  run.RowsInserted,
		"updated":   run.RowsUpdated,
		"unchanged": run.RowsUnchanged,
	}).Info("import run committed")

	return run, nil
}

// DeleteRun removes a run and everything it produced: fact rows it was the
// last to touch, then the run with its staged rows and errors.
func (w *Worker) DeleteRun(ctx context.Context, runId uint) error {
	run, err := w.runs.GetRun(ctx, runId)
	if err != nil {
		return err
	}

	removed, err := w.facts.DeleteByRun(ctx, run.ID)
	if err != nil {
		return err
	}
	if err := w.runs.DeleteRun(ctx, run.ID); err != nil {
		return err
	}

	w.logger.WithFields(logrus.Fields{
		"module":       moduleName,
		"runId":        run.ID,
		"factsRemoved": removed,
	}).Info("import run deleted")

	return nil
}

// applyFactRow turns one valid normalized row into a fact upsert. Shared
// by the live-run and commit paths so both derive identically.
func (w *Worker) applyFactRow(ctx context.Context, rules []models.AgentRangeRule, run *models.ImportRun, row NormalizedRow, sheetRowNumber int, rowHash string) (UpsertOutcome, error) {
	bar, _ := row.Get("bar")
	dateRaw, _ := row.Get("date")
	staffId, _ := row.Get("staff")

	date, err := ParseDate(dateRaw)
	if err != nil {
		return UpsertUnchanged, err
	}

	agentLabel := row["agent"]
	derived := DeriveAgent(rules, bar, staffId, agentLabel)

	fact := &models.FactRow{
		BusinessKey:     BusinessKey(bar, dateRaw, staffId, sheetRowNumber),
		SourceYear:      run.SourceYear,
		LastImportRunId: run.ID,
		RowHash:         rowHash,

		Bar:        bar,
		Date:       date,
		AgentLabel: agentLabel,
		StaffId:    staffId,
		Position:   row["position"],
		Salary:     numericField(row, "salary"),
		StartTime:  row["start"],
		Late:       numericField(row, "late"),
		Drinks:     numericField(row, "drinks"),
		Off:        numericField(row, "off"),
		CutLate:    numericField(row, "cut_late"),
		CutDrink:   numericField(row, "cut_drink"),
		CutOther:   numericField(row, "cut_other"),
		Total:      numericField(row, "total"),
		Sale:       numericField(row, "sale"),
		Profit:     numericField(row, "profit"),
		Contract:   row["contract"],

		StaffNumPrefix: derived.StaffNumPrefix,
		AgentIdDerived: derived.AgentIdDerived,
		AgentMismatch:  derived.AgentMismatch,
	}

	return w.facts.Upsert(ctx, fact)
}

func (w *Worker) count(run *models.ImportRun, outcome UpsertOutcome) {
	switch outcome {
	case UpsertInserted:
		run.RowsInserted++
	case UpsertUpdated:
		run.RowsUpdated++
	case UpsertUnchanged:
		run.RowsUnchanged++
	}
}

func (w *Worker) transition(ctx context.Context, run *models.ImportRun, next models.ImportStatus, complete bool) error {
	if !run.Status.CanTransitionTo(next) {
		return fmt.Errorf("illegal status transition %s -> %s for run %d", run.Status, next, run.ID)
	}
	run.Status = next
	if complete {
		now := time.Now()
		run.CompletedAt = &now
	}
	return w.runs.UpdateRun(ctx, run)
}

// failRun marks the run FAILED while preserving partial counters and
// whatever staging already happened.
func (w *Worker) failRun(ctx context.Context, run *models.ImportRun, cause error) {
	run.ErrorMessage = cause.Error()
	if err := w.transition(ctx, run, models.ImportStatusFailed, true); err != nil &&
		!errors.Is(err, context.Canceled) {
		config.LogError(w.logger, moduleName, "failRun", fmt.Sprintf("runId=%d", run.ID), nil, err)
	}
	config.LogError(w.logger, moduleName, "failRun", fmt.Sprintf("runId=%d", run.ID), nil, cause)
}

func numericField(row NormalizedRow, name string) *decimal.Decimal {
	v, ok := row.Get(name)
	if !ok {
		return nil
	}
	return ParseNumeric(v)
}
