// Package testfixtures provides store and data helpers shared by tests.
package testfixtures

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/nail-scheduler/internal/auth"
	"github.com/BruksfildServices01/nail-scheduler/internal/config"
	"github.com/BruksfildServices01/nail-scheduler/internal/db"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

// Password is what every fixture user logs in with.
const Password = "1qazcde3"

// Config returns settings for a temp-file SQLite store under tb's temp dir.
func Config(tb testing.TB) *config.Config {
	tb.Helper()
	return &config.Config{
		SecretKey:  "test-secret",
		DBDriver:   "sqlite",
		DBUrl:      filepath.Join(tb.TempDir(), "nail.db"),
		ServerPort: "0",
		Timezone:   "UTC",
		LogLevel:   "error",
		MediaDir:   filepath.Join(tb.TempDir(), "media"),
	}
}

// NewDB opens and migrates a fresh store. It is closed when the test ends.
func NewDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	return OpenDB(tb, Config(tb))
}

func OpenDB(tb testing.TB, cfg *config.Config) *gorm.DB {
	tb.Helper()

	gdb, err := db.Open(cfg)
	if err != nil {
		tb.Fatalf("failed to open store: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		tb.Fatalf("failed to migrate store: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

// ------------------------------------------------------
// Rows
// ------------------------------------------------------

func CreateUser(tb testing.TB, gdb *gorm.DB, username string, role models.Role) *models.User {
	tb.Helper()

	hash, err := auth.HashPassword(Password)
	if err != nil {
		tb.Fatalf("hash password: %v", err)
	}
	u := &models.User{Username: username, PasswordHash: hash, Role: role}
	if err := gdb.Create(u).Error; err != nil {
		tb.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func CreateMaster(tb testing.TB, gdb *gorm.DB, username string) *models.Master {
	tb.Helper()

	u := CreateUser(tb, gdb, username, models.RoleMaster)
	m := &models.Master{UserID: u.ID}
	if err := gdb.Omit("User").Create(m).Error; err != nil {
		tb.Fatalf("create master %s: %v", username, err)
	}
	m.User = *u
	return m
}

func CreateCustomer(tb testing.TB, gdb *gorm.DB, username string) *models.Customer {
	tb.Helper()

	u := CreateUser(tb, gdb, username, models.RoleCustomer)
	c := &models.Customer{UserID: u.ID}
	if err := gdb.Omit("User").Create(c).Error; err != nil {
		tb.Fatalf("create customer %s: %v", username, err)
	}
	c.User = *u
	return c
}

func CreateService(tb testing.TB, gdb *gorm.DB, name string, price float64, durationMin int) *models.Service {
	tb.Helper()

	s := &models.Service{Name: name, Price: price, DurationMin: durationMin}
	if err := gdb.Create(s).Error; err != nil {
		tb.Fatalf("create service %s: %v", name, err)
	}
	return s
}
