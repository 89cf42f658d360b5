package apiserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/kesav2003/dns-czds-sync/pkg/db"
	"github.com/kesav2003/dns-czds-sync/pkg/model"
	"github.com/kesav2003/dns-czds-sync/pkg/version"
	"github.com/sirupsen/logrus"
)

const (
	defaultRecordLimit = 100
	maxRecordLimit     = 1000
)

type handler struct {
	db db.Database
}

func newHandler(database db.Database) *handler {
	return &handler{
		db: database,
	}
}

func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	v := version.Get()
	writeSuccess(w, v)
}

func (h *handler) listZones(w http.ResponseWriter, r *http.Request) {
	zones, err := h.db.ListZones()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "unable to list zones", err)
		return
	}

	out := make([]model.ZoneResponse, 0, len(zones))
	for _, z := range zones {
		out = append(out, model.ZoneResponse{
			TLD:      z.TLD,
			Serial:   z.Serial,
			SyncedAt: z.SyncedAt,
		})
	}
	writeSuccess(w, out)
}

func (h *handler) getZone(w http.ResponseWriter, r *http.Request) {
	tld := mux.Vars(r)["tld"]

	zone, err := h.db.GetZone(tld)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "unable to get zone", err)
		return
	}
	if zone.ID == 0 {
		writeError(w, http.StatusNotFound, "zone not found", nil)
		return
	}

	count, err := h.db.CountZoneRecords(tld)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "unable to count records", err)
		return
	}

	writeSuccess(w, model.ZoneResponse{
		TLD:         zone.TLD,
		Serial:      zone.Serial,
		SyncedAt:    zone.SyncedAt,
		RecordCount: &count,
	})
}

func (h *handler) getZoneRecords(w http.ResponseWriter, r *http.Request) {
	tld := mux.Vars(r)["tld"]
	query := r.URL.Query()

	limit := intParam(query.Get("limit"), defaultRecordLimit)
	if limit > maxRecordLimit {
		limit = maxRecordLimit
	}
	offset := intParam(query.Get("offset"), 0)

	records, err := h.db.GetZoneRecords(tld, query.Get("type"), query.Get("owner"), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "unable to get records", err)
		return
	}

	out := model.RecordsResponse{
		TLD:     tld,
		Records: make([]model.RecordResponse, 0, len(records)),
		Limit:   limit,
		Offset:  offset,
	}
	for _, rec := range records {
		out.Records = append(out.Records, model.RecordResponse{
			Owner:    rec.Owner,
			TTL:      rec.TTL,
			Class:    rec.Class,
			Type:     rec.Type,
			RData:    rec.RData,
			SyncedAt: rec.SyncedAt,
		})
	}
	writeSuccess(w, out)
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func writeSuccess(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("unable to write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		logrus.WithError(err).Error(msg)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(model.ErrorResponse{Status: status, Message: msg}); err != nil {
		logrus.WithError(err).Error("unable to write error response")
	}
}
