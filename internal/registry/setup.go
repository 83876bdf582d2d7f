package registry

import (
	"log"

	"github.com/BillboardSentinel/BS-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "sentinel"); err != nil {
		log.Fatal("Failed to ensure schema sentinel: ", err)
	}

	if err := db.DB.AutoMigrate(&Billboard{}); err != nil {
		log.Fatal("Failed to auto-migrate registry tables", err)
	}
}
