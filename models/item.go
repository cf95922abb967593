package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/weinfuse_backend/config"
	"github.com/shopspring/decimal"
)

// Item is an ERP inventory item. Name carries the outer NDC code the
// report rows are matched on.
type Item struct {
	ID           uint            `gorm:"primary_key" json:"id"`
	Name         string          `gorm:"index;size:128;not null" json:"name"`
	Description  string          `gorm:"size:255" json:"description"`
	PurchaseRate decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"purchase_rate"`
	IsInactive   *bool           `gorm:"not null;default:false" json:"is_inactive"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func FindItemsByName(ctx context.Context, name string) ([]Item, error) {
	db := config.GetDB()
	var items []Item
	err := db.WithContext(ctx).
		Where("name = ? AND is_inactive = ?", name, false).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
