package sheetimport

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bitbucket.org/digitalshadow/shadow_backend/config"
	"bitbucket.org/digitalshadow/shadow_backend/models"
	"bitbucket.org/digitalshadow/shadow_backend/utils"
)

// RegisterRoutes mounts the import API under the given group.
func RegisterRoutes(rg *gin.RouterGroup, worker *Worker) {
	rg.POST("/run", TriggerRunHandler(worker))
	rg.GET("/runs", ListRunsHandler())
	rg.GET("/runs/:id", RunDetailHandler())
	rg.POST("/runs/:id/commit", CommitRunHandler(worker))
	rg.DELETE("/runs/:id", DeleteRunHandler(worker))
	rg.GET("/runs/:id/errors", RunErrorsHandler())
	rg.GET("/runs/:id/mismatches", RunMismatchesHandler())

	rg.GET("/sources", ListSourcesHandler())
	rg.POST("/sources", UpsertSourceHandler())
	rg.GET("/sources/:year", SourceDetailHandler())
	rg.DELETE("/sources/:year", DeleteSourceHandler())

	rg.GET("/agent-range-rules", ListAgentRangeRulesHandler())
	rg.POST("/agent-range-rules", CreateAgentRangeRuleHandler())
	rg.DELETE("/agent-range-rules/:id", DeleteAgentRangeRuleHandler())
}

func TriggerRunHandler(worker *Worker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TriggerRunRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		mode := models.ImportModeFull
		if strings.TrimSpace(req.Mode) != "" {
			var err error
			mode, err = models.ParseImportMode(req.Mode)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid import mode"})
				return
			}
		}

		dryRun := true
		if req.DryRun != nil {
			dryRun = *req.DryRun
		}

		runs, err := worker.StartImport(c.Request.Context(), RunOptions{
			Years:      req.Years,
			Mode:       mode,
			WindowDays: req.WindowDays,
			DryRun:     dryRun,
		})
		if err != nil && len(runs) == 0 {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		items := make([]RunResponse, 0, len(runs))
		for _, run := range runs {
			items = append(items, mapRunToResponse(*run))
		}
		resp := gin.H{"items": items}
		if err != nil {
			// Some years had no active source; the rest are running.
			resp["error"] = err.Error()
		}
		c.JSON(http.StatusAccepted, resp)
	}
}

func ListRunsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 20
		if v := strings.TrimSpace(c.Query("limit")); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}

		db := config.GetDB().WithContext(c.Request.Context())
		query := db.Order("id desc").Limit(limit)
		if v := strings.TrimSpace(c.Query("year")); v != "" {
			if year, err := strconv.Atoi(v); err == nil {
				query = query.Where("source_year = ?", year)
			}
		}

		var runs []models.ImportRun
		if err := query.Find(&runs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		items := make([]RunResponse, 0, len(runs))
		for _, run := range runs {
			items = append(items, mapRunToResponse(run))
		}
		c.JSON(http.StatusOK, RunListResponse{Items: items})
	}
}

func RunDetailHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		run, ok := takeRun(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, mapRunToResponse(*run))
	}
}

func CommitRunHandler(worker *Worker) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
			return
		}

		run, err := worker.CommitRun(c.Request.Context(), uint(id))
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			if run == nil {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, mapRunToResponse(*run))
	}
}

func DeleteRunHandler(worker *Worker) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
			return
		}

		if err := worker.DeleteRun(c.Request.Context(), uint(id)); err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func RunErrorsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		run, ok := takeRun(c)
		if !ok {
			return
		}

		db := config.GetDB().WithContext(c.Request.Context())
		var rowErrors []models.ImportError
		if err := db.Where("import_run_id = ?", run.ID).
			Order("sheet_row_number asc, id asc").
			Find(&rowErrors).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		items := make([]RowErrorResponse, 0, len(rowErrors))
		for _, rowErr := range rowErrors {
			items = append(items, RowErrorResponse{
				ID:             rowErr.ID,
				SheetRowNumber: rowErr.SheetRowNumber,
				ErrorType:      rowErr.ErrorType,
				ErrorMessage:   rowErr.ErrorMessage,
				RowData:        rowErr.RowData,
			})
		}
		c.JSON(http.StatusOK, RunErrorsResponse{RunId: run.ID, Items: items})
	}
}

func RunMismatchesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		run, ok := takeRun(c)
		if !ok {
			return
		}

		db := config.GetDB().WithContext(c.Request.Context())
		var facts []models.FactRow
		if err := db.Where("last_import_run_id = ? AND agent_mismatch = ?", run.ID, true).
			Order("bar asc, staff_id asc").
			Find(&facts).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		items := make([]MismatchResponse, 0, len(facts))
		for _, fact := range facts {
			items = append(items, MismatchResponse{
				ID:             fact.ID,
				Bar:            fact.Bar,
				Date:           fact.Date.Format("2006-01-02"),
				StaffId:        fact.StaffId,
				AgentLabel:     fact.AgentLabel,
				StaffNumPrefix: fact.StaffNumPrefix,
				AgentIdDerived: fact.AgentIdDerived,
			})
		}
		c.JSON(http.StatusOK, MismatchListResponse{Items: items})
	}
}

func ListSourcesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		db := config.GetDB().WithContext(c.Request.Context())
		var sources []models.DataSource
		if err := db.Order("year asc").Find(&sources).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": sources})
	}
}

// UpsertSourceHandler creates or replaces the source for a year. One source
// per year; posting again for the same year updates it.
func UpsertSourceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DataSourceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		rangeSpec := strings.TrimSpace(req.RangeSpec)
		if rangeSpec == "" {
			rangeSpec = "A:Q"
		}
		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		db := config.GetDB().WithContext(c.Request.Context())

		var existing models.DataSource
		err := db.Where("year = ?", req.Year).Take(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if errors.Is(err, gorm.ErrRecordNotFound) {
			source := models.DataSource{
				Year:      req.Year,
				SheetId:   req.SheetId,
				TabName:   req.TabName,
				RangeSpec: rangeSpec,
				IsActive:  isActive,
			}
			if err := db.Create(&source).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, source)
			return
		}

		if err := db.Model(&existing).Updates(map[string]interface{}{
			"sheet_id":   req.SheetId,
			"tab_name":   req.TabName,
			"range_spec": rangeSpec,
			"is_active":  isActive,
			"updated_at": time.Now(),
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, existing)
	}
}

func SourceDetailHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		source, ok := takeSource(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, source)
	}
}

// DeleteSourceHandler removes the source for a year. Runs already imported
// from it keep their audit records.
func DeleteSourceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		source, ok := takeSource(c)
		if !ok {
			return
		}

		db := config.GetDB().WithContext(c.Request.Context())
		if err := db.Delete(source).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "year": source.Year})
	}
}

func ListAgentRangeRulesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		db := config.GetDB().WithContext(c.Request.Context())
		query := db.Order("bar asc, range_start asc")
		if bar := strings.TrimSpace(c.Query("bar")); bar != "" {
			query = query.Where("bar = ?", bar)
		}

		var rules []models.AgentRangeRule
		if err := query.Find(&rules).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": rules})
	}
}

// CreateAgentRangeRuleHandler adds a rule after checking it against every
// existing rule for the same bar. Overlapping ranges are rejected here so
// derivation never has to disambiguate.
func CreateAgentRangeRuleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AgentRangeRuleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		rule := models.AgentRangeRule{
			Bar:        strings.TrimSpace(req.Bar),
			AgentId:    req.AgentId,
			RangeStart: req.RangeStart,
			RangeEnd:   req.RangeEnd,
		}

		db := config.GetDB().WithContext(c.Request.Context())
		var existing []models.AgentRangeRule
		if err := db.Where("bar = ?", rule.Bar).Find(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		for _, other := range existing {
			if RuleRangesOverlap(rule, other) {
				c.JSON(http.StatusConflict, gin.H{
					"error": "range overlaps existing rule for this bar",
					"rule":  other,
				})
				return
			}
		}

		if err := db.Create(&rule).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, rule)
	}
}

// DeleteAgentRangeRuleHandler removes one rule by id. Facts derived under
// the rule are untouched; a later run or commit re-derives them.
func DeleteAgentRangeRuleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule id"})
			return
		}

		db := config.GetDB().WithContext(c.Request.Context())
		var rule models.AgentRangeRule
		if err := db.Take(&rule, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if err := db.Delete(&rule).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "id": rule.ID})
	}
}

func takeSource(c *gin.Context) (*models.DataSource, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return nil, false
	}

	db := config.GetDB().WithContext(c.Request.Context())
	var source models.DataSource
	if err := db.Where("year = ?", year).Take(&source).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return &source, true
}

func takeRun(c *gin.Context) (*models.ImportRun, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return nil, false
	}

	db := config.GetDB().WithContext(c.Request.Context())
	var run models.ImportRun
	if err := db.Take(&run, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return &run, true
}

func mapRunToResponse(run models.ImportRun) RunResponse {
	var completedAt *string
	if run.CompletedAt != nil {
		s := run.CompletedAt.UTC().Format(time.RFC3339)
		completedAt = &s
	}
	return RunResponse{
		ID:            run.ID,
		Status:        run.Status,
		Mode:          run.Mode,
		SourceYear:    run.SourceYear,
		SourceSheetId: run.SourceSheetId,
		StartedAt:     run.StartedAt.UTC().Format(time.RFC3339),
		CompletedAt:   completedAt,
		RowsFetched:   run.RowsFetched,
		RowsInserted:  run.RowsInserted,
		RowsUpdated:   run.RowsUpdated,
		RowsUnchanged: run.RowsUnchanged,
		RowsErrored:   run.RowsErrored,
		Checksum:      run.Checksum,
		ErrorMessage:  run.ErrorMessage,
	}
}
