package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/weinfuse_backend/config"
)

// Location is an ERP inventory location. CrossRefCode holds the external
// location code the report rows carry in their location name prefix.
type Location struct {
	ID           uint      `gorm:"primary_key" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	CrossRefCode string    `gorm:"index;size:64" json:"cross_ref_code"`
	IsInactive   *bool     `gorm:"not null;default:false" json:"is_inactive"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func FindLocationsByCrossRef(ctx context.Context, code string) ([]Location, error) {
	db := config.GetDB()
	var locations []Location
	err := db.WithContext(ctx).
		Where("cross_ref_code = ? AND is_inactive = ?", code, false).
		Find(&locations).Error
	if err != nil {
		return nil, err
	}
	return locations, nil
}
