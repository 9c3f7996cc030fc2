package database

import (
	"errors"
	"fmt"

	"dts_backend/internal/config"
	"dts_backend/internal/logger"
	"dts_backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var gormDB *gorm.DB

// ConnectGorm инициализирует GORM с URL из config.yaml
func ConnectGorm() (*gorm.DB, error) {
	if gormDB != nil {
		return gormDB, nil
	}

	cfg := config.GetConfig()
	dsn := cfg.Database.DSN

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		// Нужен, чтобы нарушение уникального индекса приходило как
		// gorm.ErrDuplicatedKey, а не как общая ошибка драйвера.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	gormDB = db
	return db, nil
}

// AutoMigrate выполняет миграцию всех моделей
func AutoMigrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to create uuid extension: %w", err)
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.InstructorProfile{},
		&models.LearnerProfile{},
		&models.RefreshToken{},
		&models.Station{},
		&models.LearnerTestBooking{},
		&models.SecurityQuestion{},
		&models.UserSecurityAnswer{},
		&models.RecoveryToken{},
	)
	if err != nil {
		return fmt.Errorf("AutoMigrate failed: %w", err)
	}

	// Частичный уникальный индекс: один учащийся не может держать больше
	// одной активной записи на один и тот же слот станции. Через теги GORM
	// условие WHERE не выразить, поэтому сырой SQL.
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_station_slot_learner
		ON learner_test_bookings (station_id, slot_time, learner_id)
		WHERE status IN ('pending', 'confirmed')`).Error
	if err != nil {
		return fmt.Errorf("failed to create partial unique index: %w", err)
	}

	logger.Info("AutoMigrate completed")
	return nil
}

// defaultSecurityQuestions - базовый каталог вопросов. Каталог общий для
// всех пользователей, поэтому сидится один раз при старте.
var defaultSecurityQuestions = []string{
	"What was the name of your first pet?",
	"What was the model of your first car?",
	"In what city were you born?",
	"What is your mother's maiden name?",
	"What was the name of the street you grew up on?",
	"What was the name of your primary school?",
}

// SeedSecurityQuestions добавляет отсутствующие вопросы из каталога.
// Идемпотентна: существующие вопросы не трогает.
func SeedSecurityQuestions(db *gorm.DB) error {
	for _, text := range defaultSecurityQuestions {
		var question models.SecurityQuestion
		err := db.Where("question = ?", text).First(&question).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check security question: %w", err)
		}
		if err := db.Create(&models.SecurityQuestion{Question: text}).Error; err != nil {
			return fmt.Errorf("failed to seed security question: %w", err)
		}
	}
	logger.Info("Security questions seeded", "count", len(defaultSecurityQuestions))
	return nil
}

// SeedStations создает станции по умолчанию, если таблица пуста.
func SeedStations(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Station{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count stations: %w", err)
	}
	if count > 0 {
		return nil
	}

	stations := []models.Station{
		{Name: "Main", Location: "Central district", NumGrounds: 1},
		{Name: "North", Location: "Northern district", NumGrounds: 2},
	}
	if err := db.Create(&stations).Error; err != nil {
		return fmt.Errorf("failed to seed stations: %w", err)
	}
	logger.Info("Default stations seeded", "count", len(stations))
	return nil
}
