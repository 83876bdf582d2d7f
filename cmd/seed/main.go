package main

import (
	"log"

	"github.com/BillboardSentinel/BS-Backend/internal/config"
	"github.com/BillboardSentinel/BS-Backend/internal/db"
	"github.com/BillboardSentinel/BS-Backend/internal/registry"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()
	registry.Init()

	cfg := config.ServerFromEnv()

	records, err := registry.ParseCSV(cfg.RegistryCSV)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", cfg.RegistryCSV, err)
	}

	store := registry.NewGormStore(db.DB)
	n, err := store.Seed(records)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d of %d registry rows", n, len(records))
}
