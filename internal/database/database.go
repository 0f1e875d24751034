package database

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rodamidia/roda-campaign-services-backend/internal/models"
)

// DB is the global database instance
var DB *gorm.DB

// InitDB initializes the database connection and performs migrations
func InitDB() (*gorm.DB, error) {
	// Get database connection parameters from environment variables
	host := getEnv("DB_HOST", "")
	port := getEnv("DB_PORT", "")
	user := getEnv("DB_USER", "")
	password := getEnv("DB_PASSWORD", "")
	dbname := getEnv("DB_NAME", "")
	sslmode := getEnv("DB_SSLMODE", "disable")

	// Validate required environment variables
	if host == "" || port == "" || user == "" || password == "" || dbname == "" {
		return nil, fmt.Errorf("missing required database environment variables. Please check your .env file")
	}

	// Create DSN string
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	// Configure GORM logger
	gormLogger := logger.New(
		logrus.New(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Error,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	// Open database connection
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Enable UUID generation
	err = db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error
	if err != nil {
		return nil, fmt.Errorf("failed to enable UUID extension: %w", err)
	}

	// Auto migrate the schema
	err = db.AutoMigrate(
		&models.AdminUser{},
		&models.Campaign{},
		&models.Driver{},
		&models.Graphic{},
		&models.EvidenceEntry{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Migration: add cooldown columns to campaigns created before the
	// per-role cooldown configuration existed
	cooldownColumns := []struct {
		columnName string
		columnType string
	}{
		{"driver_cooldown_days", "INTEGER DEFAULT 30"},
		{"graphic_cooldown_days", "INTEGER DEFAULT 90"},
	}
	for _, migration := range cooldownColumns {
		var columnExists bool
		err = db.Raw(`
			SELECT EXISTS (
				SELECT 1
				FROM information_schema.columns
				WHERE table_schema = 'public'
				AND table_name = 'campaigns'
				AND column_name = ?
			)
		`, migration.columnName).Scan(&columnExists).Error
		if err != nil {
			logrus.Warnf("Failed to check if %s column exists: %v", migration.columnName, err)
			continue
		}
		if !columnExists {
			logrus.Infof("Adding %s column to campaigns table...", migration.columnName)
			err = db.Exec(fmt.Sprintf("ALTER TABLE campaigns ADD COLUMN IF NOT EXISTS %s %s", migration.columnName, migration.columnType)).Error
			if err != nil {
				logrus.Warnf("Failed to add %s column: %v", migration.columnName, err)
			}
		}
	}

	// Migration: composite index for flow queries (campaign, driver, role)
	var flowIndexExists bool
	err = db.Raw(`
		SELECT EXISTS (
			SELECT 1
			FROM pg_indexes
			WHERE schemaname = 'public'
			AND tablename = 'evidence_entries'
			AND indexname = 'idx_evidence_flow'
		)
	`).Scan(&flowIndexExists).Error
	if err != nil {
		logrus.Warnf("Failed to check if evidence flow index exists: %v", err)
	} else if !flowIndexExists {
		logrus.Info("Creating index on evidence_entries (campaign_id, driver_id, role)...")
		err = db.Exec(`
			CREATE INDEX IF NOT EXISTS idx_evidence_flow
			ON evidence_entries(campaign_id, driver_id, role)
		`).Error
		if err != nil {
			logrus.Warnf("Failed to create evidence flow index: %v", err)
		}
	}

	// Set global DB instance
	DB = db

	logrus.Info("Database connection established and migrations completed")
	return db, nil
}

// GetDB returns the global database instance
func GetDB() *gorm.DB {
	return DB
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
