package reports

import (
	"log"

	"github.com/BillboardSentinel/BS-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "sentinel"); err != nil {
		log.Fatal("Failed to ensure schema sentinel: ", err)
	}

	if err := db.DB.AutoMigrate(&User{}, &Report{}, &Detection{}, &Violation{}); err != nil {
		log.Fatal("Failed to auto-migrate report tables", err)
	}
}
