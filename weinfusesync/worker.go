package weinfusesync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/weinfuse_backend/config"
	"bitbucket.org/mmdatafocus/weinfuse_backend/models"
	"bitbucket.org/mmdatafocus/weinfuse_backend/reportapi"
	"bitbucket.org/mmdatafocus/weinfuse_backend/utils"
	"github.com/sirupsen/logrus"
)

const moduleName = "weinfusesync"

const runLockTTL = 30 * time.Minute

func processSyncRun(ctx context.Context, payload SyncPubSubPayload) error {
	logger := config.GetLogger()

	if payload.RunId == 0 || (payload.Report != ReportStaging && payload.Report != ReportUsage) {
		return errors.New("invalid payload")
	}

	run, err := models.GetSyncRun(ctx, payload.RunId)
	if err != nil {
		config.LogError(logger, moduleName, "processSyncRun", "Sync run not found", payload, err)
		return err
	}
	// Redeliveries of a finished run are acked without work.
	if run.Status == models.SyncRunStatusSuccess || run.Status == models.SyncRunStatusFailed || run.Status == models.SyncRunStatusPartial {
		return nil
	}

	release, err := utils.ObtainRunLock(ctx, "weinfuse:sync:"+payload.Report, runLockTTL, moduleName, "processSyncRun")
	if err != nil {
		return err
	}
	defer release()

	ctx = utils.SetSyncRunIdInContext(ctx, run.ID)

	now := time.Now()
	run.Status = models.SyncRunStatusRunning
	run.StartedAt = &now
	if err := models.UpdateSyncRun(ctx, &run); err != nil {
		return err
	}

	opts := NormalizeRunOptions(payload.Options)

	tally, runErr := executeRun(ctx, &run, payload.Report, opts)

	finishedAt := time.Now()
	run.FinishedAt = &finishedAt
	run.DurationMs = finishedAt.Sub(now).Milliseconds()
	run.RecordsFetched = tally.fetched
	run.RecordsCreated = tally.created
	run.RecordsUpdated = tally.updated
	run.RecordsFailed = tally.failed

	switch {
	case runErr != nil:
		run.Status = models.SyncRunStatusFailed
		run.FailureReason = runErr.Error()
	case tally.failed > 0:
		run.Status = models.SyncRunStatusPartial
	default:
		run.Status = models.SyncRunStatusSuccess
	}

	if err := models.UpdateSyncRun(ctx, &run); err != nil {
		config.LogError(logger, moduleName, "processSyncRun", "Could not finalize sync run", run.ID, err)
		return err
	}

	logger.WithFields(logrus.Fields{
		"module":   moduleName,
		"run_id":   run.ID,
		"report":   payload.Report,
		"status":   run.Status,
		"fetched":  tally.fetched,
		"created":  tally.created,
		"updated":  tally.updated,
		"failed":   tally.failed,
		"duration": run.DurationMs,
	}).Info("sync run finished")

	return runErr
}

type runTally struct {
	fetched int
	created int
	updated int
	failed  int
}

// executeRun does the fetch, projection, resolution and persistence for
// one run. Per-line failures are tallied and recorded but never abort
// the run; only fetch-level failures do.
func executeRun(ctx context.Context, run *models.SyncRun, report string, opts RunOptions) (runTally, error) {
	var tally runTally

	cfgRow, err := models.GetActiveWeinfuseConfig(ctx)
	if err != nil {
		return tally, err
	}
	cfg := NewSyncConfig(cfgRow)

	client, err := reportapi.NewClient(cfg.TokenURL, cfg.ReportURL, cfg.QueryResultURL, cfg.ClientId, cfg.ClientSecret)
	if err != nil {
		return tally, err
	}
	if err := client.Authenticate(ctx); err != nil {
		return tally, fmt.Errorf("authenticate: %w", err)
	}

	handle, err := client.FetchReportHandle(ctx, cfg.ReportName(report))
	if err != nil {
		return tally, fmt.Errorf("fetch report handle: %w", err)
	}
	rows, err := client.FetchResults(ctx, handle.QueryId)
	if err != nil {
		return tally, fmt.Errorf("fetch results: %w", err)
	}

	blocks := partitionBlocks(rows, opts.BlockSize)
	if !opts.AllBlocks && len(blocks) > 1 {
		blocks = blocks[:1]
	}

	resolver := NewResolver(NewGormStore(), cfg)
	writer := NewWriter(cfg)

	for _, block := range blocks {
		for _, row := range block {
			tally.fetched++
			line := ProjectRow(row)
			if line.LineId == "" {
				tally.failed++
				recordLineError(ctx, run.ID, line, models.StatusInternalError, "line id missing")
				continue
			}

			res := resolver.Resolve(ctx, line)

			var (
				created  bool
				writeErr error
			)
			if report == ReportUsage {
				created, writeErr = writer.WriteUsageLine(ctx, line, res, run.ID, opts.TwoPhase)
			} else {
				created, writeErr = writer.StageLine(ctx, line, res, run.ID)
			}
			if writeErr != nil {
				tally.failed++
				recordLineError(ctx, run.ID, line, models.StatusInternalError, writeErr.Error())
				continue
			}

			countLine(&tally, created, res.Status)
			if res.Status != models.StatusReceived {
				recordLineError(ctx, run.ID, line, res.Status, models.StatusLabel(res.Status))
			}
		}
	}

	return tally, nil
}

// countLine buckets one written line into the run tally. A line that
// persisted but failed resolution counts as failed only, so the three
// buckets always sum to the number of written lines.
func countLine(tally *runTally, created bool, status int) {
	if status != models.StatusReceived {
		tally.failed++
		return
	}
	if created {
		tally.created++
	} else {
		tally.updated++
	}
}

func partitionBlocks(rows []map[string]interface{}, blockSize int) [][]map[string]interface{} {
	if blockSize <= 0 {
		blockSize = 500
	}
	var blocks [][]map[string]interface{}
	for start := 0; start < len(rows); start += blockSize {
		end := start + blockSize
		if end > len(rows) {
			end = len(rows)
		}
		blocks = append(blocks, rows[start:end])
	}
	return blocks
}

func recordLineError(ctx context.Context, runId uint, line LineRecord, code int, message string) {
	payload, _ := utils.MarshalToJSON(line)
	syncErr := models.SyncError{
		SyncRunId:   runId,
		LineId:      line.LineId,
		ErrorCode:   code,
		Message:     message,
		PayloadJSON: []byte(payload),
	}
	if err := models.CreateSyncError(ctx, &syncErr); err != nil {
		config.LogError(config.GetLogger(), moduleName, "recordLineError", "Could not record sync error", syncErr, err)
	}
}
