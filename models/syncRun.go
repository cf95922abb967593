package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/weinfuse_backend/config"
)

// SyncRun is one execution of a report sync, recorded for the run history
// API and for troubleshooting partial runs.
type SyncRun struct {
	ID             uint       `gorm:"primary_key" json:"id"`
	Report         string     `gorm:"index;size:50;not null" json:"report"`
	Status         string     `gorm:"size:20;not null" json:"status"`
	TriggeredBy    string     `gorm:"size:20" json:"triggered_by"`
	CorrelationId  string     `gorm:"size:64" json:"correlation_id"`
	RecordsFetched int        `json:"records_fetched"`
	RecordsCreated int        `json:"records_created"`
	RecordsUpdated int        `json:"records_updated"`
	RecordsFailed  int        `json:"records_failed"`
	FailureReason  string     `gorm:"type:text" json:"failure_reason"`
	StartedAt      *time.Time `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at"`
	DurationMs     int64      `json:"duration_ms"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// SyncError is one per-line failure inside a run. PayloadJSON holds the
// serialized report line so failed lines can be replayed or inspected.
type SyncError struct {
	ID          uint      `gorm:"primary_key" json:"id"`
	SyncRunId   uint      `gorm:"index;not null" json:"sync_run_id"`
	LineId      string    `gorm:"index;size:64" json:"line_id"`
	ErrorCode   int       `gorm:"not null" json:"error_code"`
	Message     string    `gorm:"type:text" json:"message"`
	PayloadJSON []byte    `gorm:"type:json" json:"payload"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func CreateSyncRun(ctx context.Context, run *SyncRun) error {
	db := config.GetDB()
	return db.WithContext(ctx).Create(run).Error
}

func UpdateSyncRun(ctx context.Context, run *SyncRun) error {
	db := config.GetDB()
	return db.WithContext(ctx).Save(run).Error
}

func CreateSyncError(ctx context.Context, syncErr *SyncError) error {
	db := config.GetDB()
	return db.WithContext(ctx).Create(syncErr).Error
}

func GetSyncRun(ctx context.Context, id uint) (SyncRun, error) {
	db := config.GetDB()
	var run SyncRun
	err := db.WithContext(ctx).First(&run, id).Error
	return run, err
}

// ListSyncRuns returns the most recent runs, newest first. Report filters
// by report name when non-empty.
func ListSyncRuns(ctx context.Context, report string, limit int) ([]SyncRun, error) {
	db := config.GetDB()
	if limit <= 0 || limit > 100 {
		limit = config.SearchLimit
	}
	query := db.WithContext(ctx).Order("id DESC").Limit(limit)
	if report != "" {
		query = query.Where("report = ?", report)
	}
	var runs []SyncRun
	err := query.Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}

func ListSyncErrors(ctx context.Context, syncRunId uint) ([]SyncError, error) {
	db := config.GetDB()
	var syncErrors []SyncError
	err := db.WithContext(ctx).
		Where("sync_run_id = ?", syncRunId).
		Order("id ASC").
		Find(&syncErrors).Error
	if err != nil {
		return nil, err
	}
	return syncErrors, nil
}
