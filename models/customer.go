package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/weinfuse_backend/config"
)

// Customer mirrors the ERP customer master. EntityId is the short code the
// report's group names start with (e.g. "C029H Some Clinic").
type Customer struct {
	ID         uint      `gorm:"primary_key" json:"id"`
	EntityId   string    `gorm:"index;size:64;not null" json:"entity_id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	CategoryId uint      `gorm:"index" json:"category_id"`
	IsInactive *bool     `gorm:"not null;default:false" json:"is_inactive"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// FindCustomersByEntityId returns every active customer whose entity id
// matches exactly. Callers decide what zero or multiple matches mean.
func FindCustomersByEntityId(ctx context.Context, entityId string) ([]Customer, error) {
	db := config.GetDB()
	var customers []Customer
	err := db.WithContext(ctx).
		Where("entity_id = ? AND is_inactive = ?", entityId, false).
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}
