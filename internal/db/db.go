package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"postboard/internal/model"
)

// New returns a connected GORM DB instance for the configured driver.
func New(driver, dsn, logLevel string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql", "":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(parseLogLevel(logLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	return db, nil
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// models lists tables in dependency order.
var models = []interface{}{
	&model.User{},
	&model.AccessToken{},
	&model.Tag{},
	&model.Post{},
	&model.PostTag{},
	&model.Comment{},
}

// Migrate registers the post_tag join model and creates or updates all tables.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&model.Post{}, "Tags", &model.PostTag{}); err != nil {
		return fmt.Errorf("setup post_tag join table: %w", err)
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	for _, stmt := range dialectMigrations(db.Dialector.Name()) {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migrate %q: %w", stmt, err)
		}
	}
	return nil
}

// dialectMigrations returns statements AutoMigrate cannot express.
// MySQL's default collations fold case, which would merge tags like "Go" and "go".
func dialectMigrations(dialect string) []string {
	switch dialect {
	case "mysql":
		return []string{
			"ALTER TABLE tags MODIFY name VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL",
		}
	default:
		return nil
	}
}

// Reset drops every table, children first. Missing tables are logged and skipped.
func Reset(db *gorm.DB, log logrus.FieldLogger) {
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			log.WithError(err).Warn("failed to drop table (may not exist)")
		}
	}
	log.Info("tables dropped")
}
