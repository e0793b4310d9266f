package postgres

import (
	"log"

	"github.com/LavaJover/shvark-paylater-service/internal/config"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.PayLaterConfig) *gorm.DB {
	dsn := cfg.OrderDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	if cfg.OrderDB.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			log.Fatalf("failed to automigrate: %v\n", err)
		}
	}

	return db
}

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.MerchantModel{}, &models.OrderModel{}, &logger.WebhookEvent{})
}
