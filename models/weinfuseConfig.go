package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/weinfuse_backend/config"
	"gorm.io/gorm"
)

// WeinfuseConfig holds the connector settings for the WeInfuse reporting
// API. One active row is expected; inactive rows are kept for history.
type WeinfuseConfig struct {
	ID             uint      `gorm:"primary_key" json:"id"`
	TokenURL       string    `gorm:"size:512;not null" json:"token_url"`
	ReportURL      string    `gorm:"size:512;not null" json:"report_url"`
	QueryResultURL string    `gorm:"size:512;not null" json:"query_result_url"`
	ClientId       string    `gorm:"size:255;not null" json:"client_id"`
	ClientSecret   string    `gorm:"size:255;not null" json:"-"`
	StagingReport  string    `gorm:"size:255;not null" json:"staging_report"`
	UsageReport    string    `gorm:"size:255;not null" json:"usage_report"`
	CoreCategoryId uint      `json:"core_category_id"`
	CoreLocationId uint      `json:"core_location_id"`
	DateFormat     string    `gorm:"size:20;not null;default:'MM/DD/YYYY'" json:"date_format"`
	IsInactive     *bool     `gorm:"not null;default:false" json:"is_inactive"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

var ErrNoActiveConfig = errors.New("no active weinfuse config")

// GetActiveWeinfuseConfig loads the single active connector config. A run
// cannot start without one.
func GetActiveWeinfuseConfig(ctx context.Context) (WeinfuseConfig, error) {
	db := config.GetDB()
	var cfg WeinfuseConfig
	err := db.WithContext(ctx).
		Where("is_inactive = ?", false).
		Order("id DESC").
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return WeinfuseConfig{}, ErrNoActiveConfig
	} else if err != nil {
		return WeinfuseConfig{}, err
	}
	return cfg, nil
}
