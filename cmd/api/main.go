package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"pulseboard/internal/httpserver"
	"pulseboard/internal/logger"
	"pulseboard/internal/models"
)

func main() {
	_ = godotenv.Load()
	lg := logger.New()
	defer lg.Sync()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		lg.Fatalw("DATABASE_URL is empty")
	}
	if os.Getenv("JWT_SECRET") == "" {
		lg.Fatalw("JWT_SECRET is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Project{}, &models.Membership{},
		&models.Incident{}, &models.IncidentUpdate{}, &models.AuditLog{},
		&models.Task{},
	); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}
	migrateLegacyStatus(db, lg)

	router := httpserver.NewRouter(db, lg)
	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}
	lg.Infow("listening", "port", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatal(err)
	}
}

// migrateLegacyStatus backfills incidents created under the old schema where
// INVESTIGATING was the creation default. OPEN is the canonical value now.
func migrateLegacyStatus(db *gorm.DB, lg *zap.SugaredLogger) {
	res := db.Exec("UPDATE incidents SET status = 'OPEN' WHERE status = 'INVESTIGATING'")
	if res.Error == nil && res.RowsAffected > 0 {
		lg.Infow("migrated legacy incident statuses", "rows", res.RowsAffected)
	}
}
