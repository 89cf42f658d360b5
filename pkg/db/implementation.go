package db

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type database struct {
	db *gorm.DB
}

// New creates a new database connection and migrates the schema. Migration
// is create-if-absent: safe to run on every invocation.
func New(ctx context.Context, dialect string, dsn string, config *gorm.Config) (Database, error) {
	if config == nil {
		config = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	}

	var dialector gorm.Dialector
	switch dialect {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", dialect)
	}

	db, err := gorm.Open(dialector, config)
	if err != nil {
		return nil, err
	}

	db = db.WithContext(ctx)

	if err := db.AutoMigrate(
		&Zone{},
		&Record{},
	); err != nil {
		return nil, err
	}

	d := &database{
		db: db,
	}
	return d, nil
}

func (d *database) DeleteZoneRecords(tld string) (int64, error) {
	sql := d.db.Where("tld = ?", tld).Delete(&Record{})
	return sql.RowsAffected, sql.Error
}

func (d *database) InsertRecords(records []Record) error {
	if len(records) == 0 {
		return nil
	}
	sql := d.db.Create(&records)
	return sql.Error
}

func (d *database) UpsertZone(tld string, serial *int64) error {
	now := time.Now()

	assignments := map[string]interface{}{
		"synced_at": now,
	}
	if serial != nil {
		assignments["serial"] = *serial
	}

	sql := d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tld"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&Zone{
		TLD:      tld,
		Serial:   serial,
		SyncedAt: now,
	})
	return sql.Error
}

func (d *database) GetZone(tld string) (Zone, error) {
	zone := Zone{}
	sql := d.db.Where("tld = ?", tld).Limit(1).Find(&zone)
	return zone, sql.Error
}

func (d *database) ListZones() ([]Zone, error) {
	var zones []Zone
	sql := d.db.Order("tld").Find(&zones)
	return zones, sql.Error
}

func (d *database) CountZoneRecords(tld string) (int64, error) {
	var count int64
	sql := d.db.Model(&Record{}).Where("tld = ?", tld).Count(&count)
	return count, sql.Error
}

func (d *database) GetZoneRecords(tld, rType, owner string, limit, offset int) ([]Record, error) {
	query := d.db.Where("tld = ?", tld)
	if rType != "" {
		query = query.Where("type = ?", rType)
	}
	if owner != "" {
		query = query.Where("owner = ?", owner)
	}

	var records []Record
	sql := query.Order("id").Limit(limit).Offset(offset).Find(&records)
	return records, sql.Error
}
