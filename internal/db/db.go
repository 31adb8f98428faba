package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// ConfigurationError reports bad or missing store setup, detected before
// any store contact.
type ConfigurationError struct {
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Detail)
}

// Config describes how to reach the target store. A non-empty SQLitePath
// selects a local sqlite store and takes precedence over the MySQL fields.
type Config struct {
	SQLitePath string
	Endpoint   string
	Username   string
	Password   string
	Database   string
}

// ConfigFromEnv builds a MySQL Config from the environment, using the same
// variable names as the operational shell scripts (endpoint, username,
// db_password, database). An exports.env file is loaded first if present.
func ConfigFromEnv() (Config, error) {
	// Optional; the variables may already be exported.
	_ = godotenv.Load("exports.env")

	var missing []string
	for _, v := range []string{"endpoint", "username", "db_password"} {
		if os.Getenv(v) == "" {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return Config{}, &ConfigurationError{
			Detail: fmt.Sprintf("missing environment variables: %s", strings.Join(missing, ", ")),
		}
	}

	return Config{
		Endpoint: os.Getenv("endpoint"),
		Username: os.Getenv("username"),
		Password: os.Getenv("db_password"),
		Database: os.Getenv("database"),
	}, nil
}

// Open connects to the configured store and assigns the package-level DB.
func Open(cfg Config) (*gorm.DB, error) {
	dialector, err := cfg.dialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Quiet by default
		// Map driver duplicate-key errors to gorm.ErrDuplicatedKey, which
		// the migration lock uses to tell contention from store trouble.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// sqlite leaves referential actions off unless asked; the ownership
	// cascades depend on them.
	if db.Dialector.Name() == "sqlite" {
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	DB = db
	return db, nil
}

func (cfg Config) dialector() (gorm.Dialector, error) {
	if cfg.SQLitePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		return sqlite.Open(cfg.SQLitePath), nil
	}
	if cfg.Endpoint == "" {
		return nil, &ConfigurationError{Detail: "no sqlite path and no endpoint configured"}
	}
	if cfg.Database == "" {
		return nil, &ConfigurationError{Detail: "no target database configured"}
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true",
		cfg.Username, cfg.Password, cfg.Endpoint, cfg.Database)
	return mysql.Open(dsn), nil
}

// Identity asks the store which database it is actually connected to. The
// answer comes from the live connection, never from configuration, so
// callers can gate destructive work on it.
func Identity(db *gorm.DB) (string, error) {
	switch db.Dialector.Name() {
	case "mysql":
		var name string
		if err := db.Raw("SELECT DATABASE()").Scan(&name).Error; err != nil {
			return "", fmt.Errorf("failed to query database identity: %w", err)
		}
		return name, nil
	case "sqlite":
		var file string
		if err := db.Raw("SELECT file FROM pragma_database_list WHERE name = 'main'").Scan(&file).Error; err != nil {
			return "", fmt.Errorf("failed to query database identity: %w", err)
		}
		if file == "" {
			return ":memory:", nil
		}
		base := filepath.Base(file)
		return strings.TrimSuffix(base, filepath.Ext(base)), nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", db.Dialector.Name())
	}
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		sqlDB, err := DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
