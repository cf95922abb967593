package models

import (
	"bitbucket.org/mmdatafocus/weinfuse_backend/config"
)

// MigrateTable runs gorm auto migration for every table the connector
// owns. Called from main after the database connection is up.
func MigrateTable() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&Customer{},
		&Location{},
		&CustomerAddress{},
		&Item{},
		&WeinfuseConfig{},
		&StagingRecord{},
		&WeinfuseRecord{},
		&SyncRun{},
		&SyncError{},
	)
}
