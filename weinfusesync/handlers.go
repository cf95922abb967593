package weinfusesync

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bitbucket.org/mmdatafocus/weinfuse_backend/config"
	"bitbucket.org/mmdatafocus/weinfuse_backend/models"
	"bitbucket.org/mmdatafocus/weinfuse_backend/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func StatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		cfg, err := models.GetActiveWeinfuseConfig(ctx)
		if err != nil && !errors.Is(err, models.ErrNoActiveConfig) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		resp := StatusResponse{}
		if err == nil {
			resp.Configured = true
			resp.Reports = []string{cfg.StagingReport, cfg.UsageReport}
		}

		runs, err := models.ListSyncRuns(ctx, "", 1)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if len(runs) > 0 {
			last := mapRunToResponse(runs[0])
			resp.LastRun = &last
		}

		c.JSON(http.StatusOK, resp)
	}
}

func TriggerSyncHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TriggerSyncRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		report := strings.ToLower(strings.TrimSpace(req.Report))
		if report != ReportStaging && report != ReportUsage {
			c.JSON(http.StatusBadRequest, gin.H{"error": "report must be staging or usage"})
			return
		}

		ctx := c.Request.Context()
		if _, err := models.GetActiveWeinfuseConfig(ctx); err != nil {
			if errors.Is(err, models.ErrNoActiveConfig) {
				c.JSON(http.StatusConflict, gin.H{"error": "weinfuse is not configured"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		opts := DefaultRunOptions()
		if req.BlockSize > 0 {
			opts.BlockSize = req.BlockSize
		}
		if req.AllBlocks != nil {
			opts.AllBlocks = *req.AllBlocks
		}
		if req.TwoPhase != nil {
			opts.TwoPhase = *req.TwoPhase
		}
		opts = NormalizeRunOptions(opts)

		correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
		run := models.SyncRun{
			Report:        report,
			Status:        models.SyncRunStatusQueued,
			TriggeredBy:   models.SyncTriggeredManual,
			CorrelationId: correlationId,
		}
		if err := models.CreateSyncRun(ctx, &run); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		payload := SyncPubSubPayload{RunId: run.ID, Report: report, Options: opts}
		if envBoolDefault("WEINFUSE_SYNC_INLINE", false) {
			go func() {
				_ = processSyncRun(utils.SetCorrelationIdInContext(context.WithoutCancel(ctx), correlationId), payload)
			}()
		} else if err := PublishSyncRun(ctx, payload); err != nil {
			config.LogError(config.GetLogger(), moduleName, "TriggerSyncHandler", "Could not publish sync run", payload, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not queue sync run"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"id": run.ID})
	}
}

func SyncHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 20
		if v := strings.TrimSpace(c.Query("limit")); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}
		report := strings.ToLower(strings.TrimSpace(c.Query("report")))

		runs, err := models.ListSyncRuns(c.Request.Context(), report, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		items := make([]SyncRunResponse, 0, len(runs))
		for _, run := range runs {
			items = append(items, mapRunToResponse(run))
		}
		c.JSON(http.StatusOK, SyncHistoryResponse{Items: items})
	}
}

func SyncRunDetailHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
			return
		}

		run, err := models.GetSyncRun(c.Request.Context(), uint(id))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		syncErrors, err := models.ListSyncErrors(c.Request.Context(), run.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		resp := SyncRunDetailResponse{
			SyncRunResponse: mapRunToResponse(run),
			FailureReason:   run.FailureReason,
			Errors:          mapErrors(syncErrors),
		}
		c.JSON(http.StatusOK, resp)
	}
}

func RetrySyncRunHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
			return
		}

		ctx := c.Request.Context()
		run, err := models.GetSyncRun(ctx, uint(id))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
		newRun := models.SyncRun{
			Report:        run.Report,
			Status:        models.SyncRunStatusQueued,
			TriggeredBy:   models.SyncTriggeredRetry,
			CorrelationId: correlationId,
		}
		if err := models.CreateSyncRun(ctx, &newRun); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		payload := SyncPubSubPayload{RunId: newRun.ID, Report: run.Report, Options: DefaultRunOptions()}
		if envBoolDefault("WEINFUSE_SYNC_INLINE", false) {
			go func() {
				_ = processSyncRun(utils.SetCorrelationIdInContext(context.WithoutCancel(ctx), correlationId), payload)
			}()
		} else if err := PublishSyncRun(ctx, payload); err != nil {
			config.LogError(config.GetLogger(), moduleName, "RetrySyncRunHandler", "Could not publish sync run", payload, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not queue sync run"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"id": newRun.ID})
	}
}

func mapRunToResponse(run models.SyncRun) SyncRunResponse {
	return SyncRunResponse{
		ID:             run.ID,
		Report:         run.Report,
		Status:         run.Status,
		StartedAt:      formatTime(run.StartedAt),
		FinishedAt:     formatTime(run.FinishedAt),
		DurationMs:     run.DurationMs,
		RecordsFetched: run.RecordsFetched,
		RecordsCreated: run.RecordsCreated,
		RecordsUpdated: run.RecordsUpdated,
		RecordsFailed:  run.RecordsFailed,
		TriggeredBy:    run.TriggeredBy,
	}
}

func mapErrors(errorsList []models.SyncError) []SyncErrorResponse {
	out := make([]SyncErrorResponse, 0, len(errorsList))
	for _, errItem := range errorsList {
		out = append(out, SyncErrorResponse{
			ID:        errItem.ID,
			LineId:    errItem.LineId,
			ErrorCode: errItem.ErrorCode,
			Label:     models.StatusLabel(errItem.ErrorCode),
			Message:   errItem.Message,
		})
	}
	return out
}
