package models

import (
	"log"

	"bitbucket.org/digitalshadow/shadow_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&DataSource{}, &AgentRangeRule{},
		&ImportRun{}, &RawRow{}, &ImportError{},
		&FactRow{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
