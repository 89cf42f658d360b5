package model

import (
	"time"
)

type ZoneResponse struct {
	TLD         string    `json:"tld"`
	Serial      *int64    `json:"serial,omitempty"`
	SyncedAt    time.Time `json:"syncedAt"`
	RecordCount *int64    `json:"recordCount,omitempty"`
}

type RecordResponse struct {
	Owner    string    `json:"owner"`
	TTL      *int32    `json:"ttl,omitempty"`
	Class    *string   `json:"class,omitempty"`
	Type     *string   `json:"type,omitempty"`
	RData    *string   `json:"rdata,omitempty"`
	SyncedAt time.Time `json:"syncedAt"`
}

type RecordsResponse struct {
	TLD     string           `json:"tld"`
	Records []RecordResponse `json:"records"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

type ErrorResponse struct {
	Status  int         `json:"status,omitempty"`
	Message string      `json:"msg,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}
