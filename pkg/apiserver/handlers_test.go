package apiserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/kesav2003/dns-czds-sync/pkg/db"
	"github.com/kesav2003/dns-czds-sync/pkg/model"
)

func newTestRouter(t *testing.T) (*mux.Router, db.Database) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.sqlite")
	database, err := db.New(context.Background(), "sqlite", dsn, nil)
	if err != nil {
		t.Fatal(err)
	}

	h := newHandler(database)
	router := mux.NewRouter()
	router.Path("/v1/zones").Methods("GET").HandlerFunc(h.listZones)
	router.Path("/v1/zones/{tld}").Methods("GET").HandlerFunc(h.getZone)
	router.Path("/v1/zones/{tld}/records").Methods("GET").HandlerFunc(h.getZoneRecords)
	return router, database
}

func seed(t *testing.T, database db.Database) {
	t.Helper()

	a := "A"
	if err := database.InsertRecords([]db.Record{
		{TLD: "test", Owner: "a", Type: &a},
		{TLD: "test", Owner: "b", Type: &a},
	}); err != nil {
		t.Fatal(err)
	}
	if err := database.UpsertZone("test", nil); err != nil {
		t.Fatal(err)
	}
}

func TestListZones(t *testing.T) {
	router, database := newTestRouter(t)
	seed(t, database)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/zones", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}

	var zones []model.ZoneResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &zones); err != nil {
		t.Fatal(err)
	}
	if len(zones) != 1 || zones[0].TLD != "test" {
		t.Errorf("zones = %+v", zones)
	}
}

func TestGetZone(t *testing.T) {
	router, database := newTestRouter(t)
	seed(t, database)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/zones/test", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}

	var zone model.ZoneResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &zone); err != nil {
		t.Fatal(err)
	}
	if zone.RecordCount == nil || *zone.RecordCount != 2 {
		t.Errorf("recordCount = %v, expected 2", zone.RecordCount)
	}
}

func TestGetZoneNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/zones/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, expected 404", rec.Code)
	}
}

func TestGetZoneRecords(t *testing.T) {
	router, database := newTestRouter(t)
	seed(t, database)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/zones/test/records?owner=a&limit=10", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}

	var out model.RecordsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Records) != 1 || out.Records[0].Owner != "a" {
		t.Errorf("records = %+v", out.Records)
	}
}
