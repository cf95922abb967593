package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/weinfuse_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// WeinfuseRecord is one projected, resolved line from the usage report.
// It carries the wider field set the usage report exposes, including the
// source group/location identifiers and order references.
type WeinfuseRecord struct {
	ID                 uint            `gorm:"primary_key" json:"id"`
	LineId             string          `gorm:"uniqueIndex;size:64;not null" json:"line_id"`
	WeInfuse           string          `gorm:"index;size:64" json:"we_infuse"`
	Status             int             `gorm:"not null" json:"status"`
	CustomerId         uint            `gorm:"index" json:"customer_id"`
	LocationId         uint            `gorm:"index" json:"location_id"`
	ShipToId           uint            `json:"ship_to_id"`
	ItemId             uint            `gorm:"index" json:"item_id"`
	GroupId            string          `gorm:"size:64" json:"group_id"`
	GroupName          string          `gorm:"size:255" json:"group_name"`
	SourceLocationId   string          `gorm:"size:64" json:"source_location_id"`
	SourceLocationName string          `gorm:"size:255" json:"source_location_name"`
	OrderSeriesId      string          `gorm:"size:64" json:"order_series_id"`
	OrderInventoryId   string          `gorm:"size:64" json:"order_inventory_id"`
	AppointmentInvId   string          `gorm:"size:64" json:"appointment_inv_id"`
	PatientIdent       string          `gorm:"size:64" json:"patient_ident"`
	InventoryItemId    string          `gorm:"size:64" json:"inventory_item_id"`
	Ndc                string          `gorm:"size:64" json:"ndc"`
	OuterNdc           string          `gorm:"size:64" json:"outer_ndc"`
	ItemLabel          string          `gorm:"size:255" json:"item_label"`
	Uom                string          `gorm:"size:32" json:"uom"`
	Quantity           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	Price              decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price"`
	Lot                string          `gorm:"size:64" json:"lot"`
	ReportDate         *time.Time      `json:"report_date"`
	Expiration         *time.Time      `json:"expiration"`
	TransactionCreated *time.Time      `json:"transaction_created"`
	ObjectLineJSON     []byte          `gorm:"type:json" json:"object_line"`
	SyncRunId          uint            `gorm:"index" json:"sync_run_id"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// UpsertWeinfuseRecord inserts by line id or refreshes the existing row,
// reporting whether a new row was created.
func UpsertWeinfuseRecord(ctx context.Context, record *WeinfuseRecord) (bool, error) {
	db := config.GetDB()
	var existing WeinfuseRecord
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
			"item_id", "group_id", "group_name", "source_location_id",
			"source_location_name", "order_series_id", "order_inventory_id",
			"appointment_inv_id", "patient_ident", "inventory_item_id",
			"ndc", "outer_ndc", "item_label", "uom", "quantity", "price",
			"lot", "report_date", "expiration", "transaction_created",
			"object_line_json", "sync_run_id", "updated_at",
		}),
	}).Create(record).Error
	if err != nil {
		return false, err
	}
	return existing.ID == 0, nil
}

// PatchWeinfuseRecordLocation fills in the location fields of a record
// created in an earlier pass. Used by the two-phase write mode where the
// line is stored first and the location is attached afterwards.
func PatchWeinfuseRecordLocation(ctx context.Context, lineId string, locationId uint, status int) error {
	db := config.GetDB()
	return db.WithContext(ctx).
		Model(&WeinfuseRecord{}).
		Where("line_id = ?", lineId).
		Updates(map[string]interface{}{
			"location_id": locationId,
			"status":      status,
		}).Error
}
