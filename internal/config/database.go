package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"trail_tracker/internal/models"
)

var (
	// DB is the globally accessible database handle
	DB *gorm.DB
)

// InitDB initializes the database connection using environment variables
// and migrates the track schema.
func InitDB() {
	// Load .env (if present)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found – relying on env vars")
	}

	host := Env("DB_HOST", "localhost")
	port := Env("DB_PORT", "5432")
	user := Env("DB_USER", "postgres")
	password := Env("DB_PASSWORD", "password")
	dbname := Env("DB_NAME", "trail_tracker")
	sslmode := Env("DB_SSLMODE", "disable")
	timezone := Env("DB_TIMEZONE", "UTC")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		host, user, password, dbname, port, sslmode, timezone,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Track{}); err != nil {
		log.Fatalf("auto-migration failed: %v", err)
	}

	DB = db
}

// Env reads an environment variable or returns the provided default
func Env(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

// GetDB returns the initialized DB handle
func GetDB() *gorm.DB {
	return DB
}
