package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB     *gorm.DB
	opts   Options
	logger *zap.Logger
}

// Options configures the connection.
type Options struct {
	Path       string
	LogLevel   string // gorm logger: silent, error, warn, info
	BcryptCost int    // used when upgrading legacy plaintext passwords
	Logger     *zap.Logger
}

// NewDatabase opens (creating if needed) the library database, creates any
// missing tables and applies pending migrations. Callers must treat an error
// as fatal: the rest of the application assumes the current schema.
func NewDatabase(opts Options) (*Database, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if dir := filepath.Dir(opts.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(opts.Path+"?_busy_timeout=5000"), &gorm.Config{
		Logger:  logger.Default.LogMode(gormLogLevel(opts.LogLevel)),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database := &Database{DB: db, opts: opts, logger: opts.Logger}

	if err := database.Initialize(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	opts.Logger.Debug("database ready", zap.String("path", opts.Path))

	return database, nil
}

// Initialize creates every table that does not exist yet, in its current shape.
func (d *Database) Initialize() error {
	return d.DB.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			if err := tx.Exec(table.create(table.name)).Error; err != nil {
				return fmt.Errorf("failed to create table %s: %w", table.name, err)
			}
		}
		return nil
	})
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "info":
		return logger.Info
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}
