package db

type Database interface {
	DeleteZoneRecords(tld string) (int64, error)
	InsertRecords(records []Record) error
	UpsertZone(tld string, serial *int64) error
	GetZone(tld string) (Zone, error)
	ListZones() ([]Zone, error)
	CountZoneRecords(tld string) (int64, error)
	GetZoneRecords(tld, rType, owner string, limit, offset int) ([]Record, error)
}
