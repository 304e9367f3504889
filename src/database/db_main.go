package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/database/migrations"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/model"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MainDB is the read/write database connection used by the application.
var MainDB *gorm.DB

// InitMainDB opens the database selected by the environment, runs the schema
// setup and publishes the connection as MainDB.
// Call CloseMainDB before calling it again (tests switch DATABASE_PATH between cases).
func InitMainDB() error {
	config := GetConfig()

	db, err := Open(config)
	if err != nil {
		return err
	}

	MainDB = db

	logrus.WithFields(logrus.Fields{
		"driver": config.Driver,
		"path":   config.Path,
	}).Info("[database] MainDB connection established")

	if err := Setup(MainDB); err != nil {
		return err
	}

	logrus.Info("[database] MainDB migrations completed")

	return nil
}

// Open connects to the configured database without touching the schema.
func Open(config Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(config)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.LogLevel(config.GormLogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", config.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB from gorm: %w", err)
	}

	if config.Driver == DriverPostgres {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(1 * time.Hour)
	} else {
		// SQLite allows a single writer; one connection serializes every mutation.
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func dialectorFor(config Config) (gorm.Dialector, error) {
	switch strings.ToLower(config.Driver) {
	case "", DriverSQLite:
		dsn, err := sqliteDSN(config.Path)
		if err != nil {
			return nil, err
		}
		return sqlite.Open(dsn), nil
	case DriverPostgres:
		if config.URL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for driver %q", config.Driver)
		}
		return postgres.Open(config.URL), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}
}

func sqliteDSN(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("DATABASE_PATH is empty")
	}
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve database path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}

	return absPath + "?_busy_timeout=5000&_foreign_keys=on", nil
}

// Setup creates or updates the schema and applies pending data migrations.
func Setup(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.PositionSet{},
		&model.Position{},
		&model.ActivePositionSet{},
		&model.HistoricalPrice{},
		&model.Exception{},
		&migrations.DataMigration{},
	); err != nil {
		return fmt.Errorf("failed to run schema migrations: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("failed to run data migrations: %w", err)
	}

	return nil
}

// CloseMainDB closes MainDB and forgets it. Safe to call when nothing is open.
func CloseMainDB() error {
	if MainDB == nil {
		return nil
	}

	sqlDB, err := MainDB.DB()
	MainDB = nil
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from MainDB: %w", err)
	}

	return sqlDB.Close()
}
