// database.go - Handles database connection and setup

package database

import (
	"context"
	"strings"

	"go-user-service/config"
	"go-user-service/models"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite" // SQLite driver for GORM
	"gorm.io/gorm"          // GORM ORM
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the SQLite database and runs migrations.
// Foreign keys are switched on for every pooled connection so that
// deleting a user cascades to its addresses.
func Connect(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn(dbPath)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate the models (create tables if needed)
	if err := db.AutoMigrate(&models.User{}, &models.Address{}); err != nil {
		return nil, err
	}
	return db, nil
}

func dsn(dbPath string) string {
	if strings.Contains(dbPath, "_foreign_keys") {
		return dbPath
	}
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_foreign_keys=on"
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the database answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// CreateDefaultAdmin creates the configured admin account unless an admin already exists.
// Credentials come from the environment, never from code.
func CreateDefaultAdmin(ctx context.Context, db *gorm.DB, cfg *config.Config, log zerolog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !cfg.AdminSeedEnabled() { // Only create admin if explicitly configured
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin := models.User{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Role:     models.RoleAdmin,
	}
	if err := admin.SetPassword(cfg.AdminPassword); err != nil {
		return err
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return err
	}

	log.Info().Uint("user_id", admin.ID).Str("username", admin.Username).Msg("default admin created")
	return nil
}
