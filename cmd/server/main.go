package main

import (
	"log"
	"net/http"

	"trail_tracker/internal/config"
	"trail_tracker/internal/controllers"
	"trail_tracker/internal/geocode"
	"trail_tracker/internal/ingest"
	"trail_tracker/internal/logger"
	"trail_tracker/internal/middleware"
	"trail_tracker/internal/routes"
	"trail_tracker/internal/storage"
)

func main() {
	// Initialize structured logging to file
	logger.Setup(config.Env("LOG_FILE", "./logs/app.log"))

	// Connect to the database
	config.InitDB()

	dataDir := config.Env("DATA_DIR", "./data")
	blobs := storage.NewDiskStore(dataDir)
	geocoder := geocode.NewClient(config.Env("NOMINATIM_URL", geocode.DefaultBaseURL))
	ingestor := ingest.New(ingest.NewRepo(config.DB), blobs)

	controllers.Setup(ingestor, blobs, geocoder)

	// Setup Gin router
	r := routes.SetupRouter(dataDir)

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	addr := "0.0.0.0:" + config.Env("PORT", "8080")
	log.Println("Server running at " + addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}
