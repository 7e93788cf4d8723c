package db

import (
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/nail-scheduler/internal/config"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

// Open connects to the configured store. It does not migrate.
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	// SQL traces and slow queries join the application's structured log
	level := cfg.SlogLevel()
	gormLogger := logger.New(slog.NewLogLogger(slog.Default().Handler(), level), logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  gormLogLevel(level),
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB(): %w", err)
	}

	if cfg.DBDriver == "sqlite" {
		// one writer at a time, otherwise SQLITE_BUSY under concurrent requests
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	slog.Info("database connection established", "driver", cfg.DBDriver)
	return db, nil
}

// Migrate creates or updates every table the application uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Master{},
		&models.Customer{},
		&models.PriceList{},
		&models.CustomerService{},
		&models.CustomerMaster{},
		&models.Event{},
		&models.AuditLog{},
		&models.VisitCounter{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// rows written before search_name existed
	var stale []models.Service
	if err := db.Where("search_name = ?", "").Find(&stale).Error; err != nil {
		return fmt.Errorf("load services: %w", err)
	}
	for i := range stale {
		if err := db.Save(&stale[i]).Error; err != nil {
			return fmt.Errorf("backfill service %d: %w", stale[i].ID, err)
		}
	}
	return nil
}

// NewDB opens and migrates, exiting the process on failure.
func NewDB(cfg *config.Config) *gorm.DB {
	db, err := Open(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := Migrate(db); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "postgres", "":
		return postgres.Open(cfg.DBUrl), nil
	case "sqlite":
		return sqlite.Open(sqliteDSN(cfg.DBUrl)), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}

// sqliteDSN turns on foreign keys so ON DELETE CASCADE is honoured.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

func gormLogLevel(level slog.Level) logger.LogLevel {
	switch {
	case level <= slog.LevelDebug:
		return logger.Info
	case level <= slog.LevelWarn:
		return logger.Warn
	}
	return logger.Error
}
