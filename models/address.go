package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/weinfuse_backend/config"
)

// CustomerAddress is one ship-to address on a customer's address book.
// Label is the address label the report's location name prefix must match.
type CustomerAddress struct {
	ID         uint      `gorm:"primary_key" json:"id"`
	CustomerId uint      `gorm:"index;not null" json:"customer_id"`
	Label      string    `gorm:"index;size:128;not null" json:"label"`
	Line1      string    `gorm:"size:255" json:"line1"`
	City       string    `gorm:"size:100" json:"city"`
	State      string    `gorm:"size:50" json:"state"`
	Zip        string    `gorm:"size:20" json:"zip"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// FindShipTos looks up ship-to addresses by label scoped to one customer.
// An address label is only meaningful inside its owner's address book.
func FindShipTos(ctx context.Context, customerId uint, label string) ([]CustomerAddress, error) {
	db := config.GetDB()
	var addresses []CustomerAddress
	err := db.WithContext(ctx).
		Where("customer_id = ? AND label = ?", customerId, label).
		Find(&addresses).Error
	if err != nil {
		return nil, err
	}
	return addresses, nil
}
