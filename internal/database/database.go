package database

import (
	"fmt"

	"github.com/atrium-events/core/internal/config"
	"github.com/atrium-events/core/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens a MySQL connection and optionally runs auto-migration.
func Connect(cfg *config.AppConfig, autoMigrate bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.IsDev() {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:               cfg.DSN,
		DefaultStringSize: 191,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if autoMigrate {
		if err := migrate(db); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}
	return db, nil
}

// migrate runs GORM auto-migration for all models.
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.UserModel{},
		&models.UserSession{},
		&models.EventModel{},
		&models.PageModel{},
		&models.SubmissionModel{},
		&models.MemberModel{},
		&models.FileReferenceModel{},
		&models.OptionModel{},
	); err != nil {
		return err
	}

	if db.Dialector.Name() == "mysql" {
		// Serialized JSON columns need LONGTEXT; AutoMigrate defaults them
		// to VARCHAR(191).
		for _, stmt := range []string{
			"ALTER TABLE `events` MODIFY COLUMN `form_schema` LONGTEXT NULL",
			"ALTER TABLE `submissions` MODIFY COLUMN `answers` LONGTEXT NULL",
		} {
			if err := db.Exec(stmt).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
