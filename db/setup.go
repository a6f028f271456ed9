package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"github.com/monocle-dev/timetrack/internal/config"
	"github.com/monocle-dev/timetrack/internal/models"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

//go:embed migrations/*.sql
var migrations embed.FS

// Models lists every table the service owns, parents before children.
var Models = []interface{}{
	&models.User{},
	&models.Project{},
	&models.Contract{},
	&models.Timelog{},
}

// ConnectDatabase opens the configured store and assigns it to DB.
func ConnectDatabase(ctx context.Context, cfg *config.Config) error {
	conn, err := Open(ctx, cfg)
	if err != nil {
		return err
	}

	DB = conn
	return nil
}

func Open(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}

	var (
		conn *gorm.DB
		err  error
	)

	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		sqlDB, openErr := sql.Open("postgres", cfg.DatabaseURL)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open database: %w", openErr)
		}
		conn, err = gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig)
	case config.DriverMySQL:
		conn, err = gorm.Open(mysql.Open(cfg.DatabaseURL), gormConfig)
	case config.DriverSQLite:
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = "timetrack.db"
		}
		conn, err = gorm.Open(sqlite.Open(withForeignKeys(dsn)), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("database connected", slog.String("driver", cfg.DatabaseDriver))

	return conn, nil
}

// OpenSQLite opens an isolated SQLite database, mostly for tests and local runs.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(sqlite.Open(withForeignKeys(dsn)), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// A single connection keeps an in-memory database alive and shared.
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return conn, nil
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&_pragma=foreign_keys(1)"
	}
	return dsn + "?_pragma=foreign_keys(1)"
}

// MigrateDatabase applies the versioned SQL migrations on postgres and
// AutoMigrate on every other driver.
func MigrateDatabase(conn *gorm.DB, driver string) error {
	if driver == config.DriverPostgres {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		goose.SetBaseFS(migrations)
		if err := goose.SetDialect("postgres"); err != nil {
			return fmt.Errorf("failed to set goose dialect: %w", err)
		}
		if err := goose.Up(sqlDB, "migrations"); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		return nil
	}

	if err := conn.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}

	return nil
}

// Ping reports whether the store answers within the context deadline.
func Ping(ctx context.Context) error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}
