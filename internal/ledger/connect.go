// Package ledger keeps a history of provisioning runs in SQL, so a run's
// outcome outlives the process that produced it.
package ledger

import (
	"fmt"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const mysqlScheme = "mysql://"

// Dialector picks a GORM driver for dsn. A "mysql://" prefix selects MySQL
// and the rest must be a go-sql-driver DSN; anything else is a SQLite path.
func Dialector(dsn string) (gorm.Dialector, error) {
	if !strings.HasPrefix(dsn, mysqlScheme) {
		if dsn == "" {
			return nil, fmt.Errorf("ledger: empty dsn")
		}
		return sqlite.Open(dsn), nil
	}
	cfg, err := gomysql.ParseDSN(strings.TrimPrefix(dsn, mysqlScheme))
	if err != nil {
		return nil, fmt.Errorf("ledger: parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	return mysql.Open(cfg.FormatDSN()), nil
}

// Connect opens a GORM connection for dsn and migrates the ledger tables.
func Connect(dsn string) (*gorm.DB, error) {
	d, err := Dialector(dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("ledger: connect: %w", err)
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate creates or updates the ledger tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("ledger: auto-migrate: %w", err)
	}
	return nil
}
