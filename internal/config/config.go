package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		Database
		Library
		Render
		Auth
		Catalog
		Reports
		Log
	}

	Database struct {
		Path     string
		LogLevel string // gorm logger level: silent, error, warn, info
	}
	Library struct {
		BooksDir  string // Per-book folders live here
		CoversDir string // Downloaded wishlist covers
	}
	Render struct {
		Backend string // auto, poppler or preview
		Workers int    // Pages rendered in parallel during import
		DPI     int
	}
	Auth struct {
		BcryptCost int
	}
	Catalog struct {
		BaseURL      string
		Timeout      time.Duration
		RateInterval time.Duration // Minimum delay between catalog requests
	}
	Reports struct {
		Dir string
	}
	Log struct {
		Level string
	}
)

// NewConfig reads settings from the environment and, when CONFIG_FILE is set,
// from a YAML file. Environment variables win over file values.
func NewConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("db_log_level", "silent")
	v.SetDefault("books_dir", DefaultBooksDir)
	v.SetDefault("covers_dir", DefaultCoversDir)
	v.SetDefault("reports_dir", DefaultReportsDir)
	v.SetDefault("log_level", "info")

	v.SetDefault("render_backend", RenderBackendAuto)
	v.SetDefault("render_workers", 4)
	v.SetDefault("render_dpi", 96)

	v.SetDefault("auth_bcrypt_cost", 12)

	v.SetDefault("catalog_base_url", DefaultCatalogBaseURL)
	v.SetDefault("catalog_timeout", "10s")
	v.SetDefault("catalog_rate_interval", "1s") // OpenLibrary asks for ~1 req/s

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Database: Database{
			Path:     v.GetString("DATABASE_PATH"),
			LogLevel: v.GetString("DB_LOG_LEVEL"),
		},
		Library: Library{
			BooksDir:  v.GetString("BOOKS_DIR"),
			CoversDir: v.GetString("COVERS_DIR"),
		},
		Render: Render{
			Backend: v.GetString("RENDER_BACKEND"),
			Workers: v.GetInt("RENDER_WORKERS"),
			DPI:     v.GetInt("RENDER_DPI"),
		},
		Auth: Auth{
			BcryptCost: v.GetInt("AUTH_BCRYPT_COST"),
		},
		Catalog: Catalog{
			BaseURL:      v.GetString("CATALOG_BASE_URL"),
			Timeout:      v.GetDuration("CATALOG_TIMEOUT"),
			RateInterval: v.GetDuration("CATALOG_RATE_INTERVAL"),
		},
		Reports: Reports{
			Dir: v.GetString("REPORTS_DIR"),
		},
		Log: Log{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Render.Backend {
	case RenderBackendAuto, RenderBackendPoppler, RenderBackendPreview:
	default:
		return fmt.Errorf("unknown render backend %q", c.Render.Backend)
	}
	if c.Render.Workers < 1 {
		c.Render.Workers = 1
	}
	if c.Render.DPI <= 0 {
		return fmt.Errorf("render dpi must be positive, got %d", c.Render.DPI)
	}
	return nil
}
