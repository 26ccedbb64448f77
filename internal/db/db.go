package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/insighthub/insight-platform/internal/analytics"
)

// Connect opens the backing store and migrates the schema. The default is
// an in-memory SQLite database: state is scoped to the process lifetime,
// which is exactly the durability this service promises.
func Connect(driver, dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch driver {
	case "", "sqlite":
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		dial = sqlite.Open(dsn)
	case "mysql":
		if dsn == "" {
			return nil, fmt.Errorf("db: mysql driver requires DB_DSN")
		}
		dial = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", driver)
	}

	gdb, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := gdb.AutoMigrate(&analytics.Session{}, &analytics.Inquiry{}); err != nil {
		return nil, err
	}
	return gdb, nil
}
