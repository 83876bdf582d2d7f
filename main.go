package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/BillboardSentinel/BS-Backend/internal/config"
	"github.com/BillboardSentinel/BS-Backend/internal/db"
	"github.com/BillboardSentinel/BS-Backend/internal/geo"
	"github.com/BillboardSentinel/BS-Backend/internal/metrics"
	"github.com/BillboardSentinel/BS-Backend/internal/middleware"
	"github.com/BillboardSentinel/BS-Backend/internal/registry"
	"github.com/BillboardSentinel/BS-Backend/internal/reports"
	"github.com/BillboardSentinel/BS-Backend/internal/review"
	"github.com/BillboardSentinel/BS-Backend/internal/stats"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintln(w, `{"ok": true}`)
}

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	srvCfg := config.ServerFromEnv()
	rules, err := config.RulesFromEnv()
	if err != nil {
		log.Fatal("Failed to load city rules: ", err)
	}

	registry.Init()
	reports.Init()

	junctions, err := geo.LoadJunctions(srvCfg.JunctionsPath)
	if err != nil {
		// Without junctions the placement rule degrades; everything else runs.
		log.Printf("No junction data (%v), placement checks disabled", err)
	}

	regStore := registry.NewGormStore(db.DB)
	store := reports.NewGormStore(db.DB)
	engine := reports.NewEngine(rules, junctions, regStore)
	pipeline := reports.NewPipeline(store, engine)
	ledger := review.NewLedger(store)

	reportHandler := reports.NewHandler(pipeline, srvCfg.StorageDir, srvCfg.RedactMode)
	registryHandler := registry.NewHandler(regStore, srvCfg.RegistryCSV)
	reviewHandler := review.NewHandler(ledger)
	statsHandler := stats.NewHandler(store)

	submitLimit := middleware.RateLimitMiddleware(rate.Limit(1), 5)

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)
	r.Get("/health", HealthHandler)
	r.Handle("/metrics", metrics.Handler())

	r.Mount("/api/reports", reports.SetupRoutes(reportHandler, submitLimit))
	r.Mount("/api/registry", registry.SetupRoutes(registryHandler))
	r.Mount("/api/review", review.SetupRoutes(reviewHandler))
	r.Mount("/api/stats", stats.SetupRoutes(statsHandler))
	r.Get("/api/heatmap", reportHandler.HeatmapHandler)

	fileServer := http.StripPrefix("/static/uploads/", http.FileServer(http.Dir(srvCfg.StorageDir)))
	r.Get("/static/uploads/*", fileServer.ServeHTTP)

	fmt.Println("Server listening on port :" + srvCfg.Port + "...")

	if err := http.ListenAndServe("0.0.0.0:"+srvCfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
