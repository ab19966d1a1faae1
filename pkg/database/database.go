package database

import (
	"fmt"
	"time"

	"github.com/victorydiv/fojournapp-sub002/internal/model"
	"github.com/victorydiv/fojournapp-sub002/pkg/config"
	"github.com/victorydiv/fojournapp-sub002/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	db *gorm.DB
)

// InitDB initializes the database connection
func InitDB(cfg *config.Config) error {
	// Set up GORM logger configuration
	var logLevel gormlogger.LogLevel
	if cfg.Server.Env == "development" {
		logLevel = gormlogger.Info
	} else {
		logLevel = gormlogger.Error
	}

	// Override log level if explicitly set in config
	switch cfg.Database.LogLevel {
	case "silent":
		logLevel = gormlogger.Silent
	case "error":
		logLevel = gormlogger.Error
	case "warn":
		logLevel = gormlogger.Warn
	case "info":
		logLevel = gormlogger.Info
	}

	// Build DSN from config
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	// Configure Postgres options
	pgConfig := postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	// Configure GORM and open connection
	var err error
	db, err = gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// Set connection pool parameters
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	log := logger.GetLogger()

	// Run migrations
	start := time.Now()
	log.Info("Starting database migration...")

	if err := Migrate(db); err != nil {
		log.Error("Database migration failed", zap.Error(err))
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}

	log.Info("Database migration completed successfully",
		zap.Duration("duration", time.Since(start)))

	return nil
}

// Migrate creates or updates the schema for all models owned or read by
// this service, plus the read-only merge status view on postgres.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&model.Account{},
		&model.MergeInvitation{},
		&model.Merge{},
		&model.MergeURLRedirect{},
		&model.MergeHistoryEntry{},
		&model.TravelEntry{},
		&model.AppSetting{},
	); err != nil {
		return err
	}

	// Convenience view: "is this account merged, and with whom". Postgres
	// only; sqlite is used in tests and does not need it.
	if conn.Dialector.Name() == "postgres" {
		return conn.Exec(`
			CREATE OR REPLACE VIEW account_merge_status AS
			SELECT a.id AS account_id,
			       a.username,
			       a.is_merged,
			       m.id AS merge_id,
			       m.slug AS merge_slug,
			       m.merged_at,
			       CASE WHEN a.id = m.user1_id THEN m.user2_id ELSE m.user1_id END AS partner_id
			FROM accounts a
			LEFT JOIN account_merges m ON m.id = a.merge_id`).Error
	}

	return nil
}

// GetDB returns the database connection
func GetDB() *gorm.DB {
	return db
}

// Set replaces the connection; used by tests to point handlers at an
// in-memory database.
func Set(conn *gorm.DB) {
	db = conn
}
