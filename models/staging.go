package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/weinfuse_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// StagingRecord is one projected, resolved report line from the staging
// report. LineId is the report's line item id and is the idempotency key,
// so re-running a window updates rows in place instead of duplicating them.
type StagingRecord struct {
	ID                 uint            `gorm:"primary_key" json:"id"`
	LineId             string          `gorm:"uniqueIndex;size:64;not null" json:"line_id"`
	WeInfuse           string          `gorm:"index;size:64" json:"we_infuse"`
	Status             int             `gorm:"not null" json:"status"`
	CustomerId         uint            `gorm:"index" json:"customer_id"`
	LocationId         uint            `gorm:"index" json:"location_id"`
	ShipToId           uint            `json:"ship_to_id"`
	ItemId             uint            `gorm:"index" json:"item_id"`
	CustomerName       string          `gorm:"size:255" json:"customer_name"`
	LocationName       string          `gorm:"size:255" json:"location_name"`
	ShipToLabel        string          `gorm:"size:255" json:"ship_to_label"`
	ItemLabel          string          `gorm:"size:255" json:"item_label"`
	Ndc                string          `gorm:"size:64" json:"ndc"`
	Unit               string          `gorm:"size:32" json:"unit"`
	Quantity           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	Price              decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price"`
	Lot                string          `gorm:"size:64" json:"lot"`
	PatientId          string          `gorm:"size:64" json:"patient_id"`
	ReportDate         *time.Time      `json:"report_date"`
	ExpirationDate     *time.Time      `json:"expiration_date"`
	TransactionCreated *time.Time      `json:"transaction_created"`
	LineJSON           []byte          `gorm:"type:json" json:"line"`
	SyncRunId          uint            `gorm:"index" json:"sync_run_id"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// UpsertStagingRecord inserts by line id or refreshes the existing row.
// It reports whether a new row was created.
func UpsertStagingRecord(ctx context.Context, record *StagingRecord) (bool, error) {
	db := config.GetDB()
	var existing StagingRecord
	err := db.WithContext(ctx).
		Where("line_id = ?", record.LineId).
		Limit(1).
		Find(&existing).Error
	if err != nil {
		return false, err
	}

	err = db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "line_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"we_infuse", "status", "customer_id", "location_id", "ship_to_id",
			"item_id", "customer_name", "location_name", "ship_to_label",
			"item_label", "ndc", "unit", "quantity", "price", "lot",
			"patient_id", "report_date", "expiration_date",
			"transaction_created", "line_json", "sync_run_id", "updated_at",
		}),
	}).Create(record).Error
	if err != nil {
		return false, err
	}
	return existing.ID == 0, nil
}
