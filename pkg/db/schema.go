package db

import (
	"time"
)

// Zone is the sync bookkeeping row for one TLD. Rows are created on the
// first successful sync and touched on every later one, never deleted.
type Zone struct {
	ID       uint   `gorm:"primarykey"`
	TLD      string `gorm:"uniqueIndex"`
	Serial   *int64
	SyncedAt time.Time
}

// Record is one parsed resource record line. The full record set for a TLD
// is replaced wholesale on every sync, so there is no per-record uniqueness.
type Record struct {
	ID    uint   `gorm:"primarykey"`
	TLD   string `gorm:"index:idx_records_tld;index:idx_records_tld_type,priority:1"`
	Owner string
	TTL   *int32
	Class *string
	Type     *string   `gorm:"index:idx_records_tld_type,priority:2"`
	RData    *string   `gorm:"type:text"`
	SyncedAt time.Time `gorm:"autoCreateTime"`
}
