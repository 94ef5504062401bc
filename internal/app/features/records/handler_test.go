package records

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	recordstore "github.com/dalemusser/newsgeo/internal/app/store/records"
	"github.com/dalemusser/newsgeo/internal/app/system/geocode"
	"github.com/dalemusser/newsgeo/internal/domain/models"
	"github.com/dalemusser/newsgeo/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const testBaseURL = "http://localhost:3000"

// fakeGeocoder answers from a fixed table; unknown locations have no match.
type fakeGeocoder struct {
	matches map[string][]geocode.Match
	err     error
	calls   int
}

func (f *fakeGeocoder) Search(ctx context.Context, query string) ([]geocode.Match, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.matches[query], nil
}

func newFakeGeocoder() *fakeGeocoder {
	return &fakeGeocoder{matches: map[string][]geocode.Match{
		"Paris": {
			{Latitude: "48.8588897", Longitude: "2.3200410", DisplayName: "Paris, France"},
			{Latitude: "33.6617962", Longitude: "-95.5555130", DisplayName: "Paris, Texas"},
		},
		"Nairobi": {
			{Latitude: "-1.2832533", Longitude: "36.8172449", DisplayName: "Nairobi, Kenya"},
		},
	}}
}

// failingStore fails every operation.
type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) Create(ctx context.Context, rec models.Record) (models.Record, error) {
	return models.Record{}, errStoreDown
}

func (failingStore) GetByCode(ctx context.Context, code string) (*models.Record, error) {
	return nil, errStoreDown
}

func (failingStore) List(ctx context.Context, f recordstore.Filter) ([]models.Record, error) {
	return nil, errStoreDown
}

func newTestHandler(t *testing.T) (http.Handler, *mongo.Database, *fakeGeocoder) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	geo := newFakeGeocoder()
	h := NewHandler(recordstore.New(db), geo, testBaseURL+"/", nil, zap.NewNop())
	return Routes(h), db, geo
}

func postRecord(t *testing.T, router http.Handler, code string, body map[string]any) models.Record {
	t.Helper()
	req := testutil.NewJSONRequest(http.MethodPost, "/"+code, body)
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /%s status = %d, body %q", code, rec.Code, rec.Body.String())
	}
	var out models.Record
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return out
}

func TestCreate_GeocodedLocation(t *testing.T) {
	router, _, geo := newTestHandler(t)

	got := postRecord(t, router, "paris-1", map[string]any{
		"newsUrl":  "https://news.example.com/a",
		"location": "Paris",
		"category": "politics",
		"date":     "2024-01-15",
	})

	if got.ID.IsZero() {
		t.Error("response _id should be set")
	}
	if got.UniqueCode != "paris-1" {
		t.Errorf("uniqueCode = %q, want %q", got.UniqueCode, "paris-1")
	}
	md := got.MetaData
	if md.Latitude != "48.8588897" || md.Longitude != "2.3200410" {
		t.Errorf("coordinates = %s,%s, want first match", md.Latitude, md.Longitude)
	}
	if md.MapURL != "https://www.google.com/maps?q=48.8588897,2.3200410" {
		t.Errorf("mapUrl = %q", md.MapURL)
	}
	if md.NewsTag != testBaseURL+"/data/paris-1" {
		t.Errorf("newsTag = %q, want %q", md.NewsTag, testBaseURL+"/data/paris-1")
	}
	if md.LocationName != "Paris" || md.Category != "politics" || md.NewsURL != "https://news.example.com/a" {
		t.Errorf("metaData = %+v, want input echoed", md)
	}
	if want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC); !md.Date.Equal(want) {
		t.Errorf("date = %v, want %v", md.Date, want)
	}
	if geo.calls != 1 {
		t.Errorf("geocoder calls = %d, want 1", geo.calls)
	}
}

func TestCreate_UnknownLocationStoredWithoutCoordinates(t *testing.T) {
	router, db, _ := newTestHandler(t)

	got := postRecord(t, router, "nowhere", map[string]any{
		"newsUrl":  "https://news.example.com/b",
		"location": "xqzzyplonk",
		"category": "sports",
	})

	if got.MetaData.Latitude != "" || got.MetaData.Longitude != "" || got.MetaData.MapURL != "" {
		t.Errorf("metaData = %+v, want no coordinates", got.MetaData)
	}
	if got.MetaData.Date.IsZero() {
		t.Error("missing date should default to creation time")
	}
	if time.Since(got.MetaData.Date) > time.Minute {
		t.Errorf("default date = %v, want about now", got.MetaData.Date)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	raw, err := db.Collection(recordstore.CollectionName).FindOne(ctx, bson.M{"uniqueCode": "nowhere"}).Raw()
	if err != nil {
		t.Fatalf("FindOne() error = %v", err)
	}
	if _, err := raw.LookupErr("metaData", "latitude"); err == nil {
		t.Error("latitude should be absent from the stored document")
	}
}

func TestCreate_GeocoderError(t *testing.T) {
	router, db, geo := newTestHandler(t)
	geo.err = errors.New("geocoding service error: http 503: unavailable")

	req := testutil.NewJSONRequest(http.MethodPost, "/paris-1", map[string]any{"location": "Paris"})
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)

	rec.AssertStatus(t, http.StatusInternalServerError)
	rec.AssertJSONError(t, "geocoding service error: http 503: unavailable")

	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, _ := db.Collection(recordstore.CollectionName).CountDocuments(ctx, bson.M{})
	if n != 0 {
		t.Errorf("stored %d records after geocoder failure, want 0", n)
	}
}

func TestCreate_BadInput(t *testing.T) {
	router, _, geo := newTestHandler(t)

	tests := []struct {
		name string
		body any
		want string
	}{
		{"invalid JSON", "not json", "Invalid JSON payload"},
		{"empty body", nil, "Invalid JSON payload"},
		{"invalid date", map[string]any{"location": "Paris", "date": "next tuesday"}, "Invalid date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodPost, "/code", tt.body))
			rec.AssertStatus(t, http.StatusBadRequest)
			rec.AssertJSONError(t, tt.want)
		})
	}
	if geo.calls != 0 {
		t.Errorf("geocoder calls = %d, want 0 for rejected input", geo.calls)
	}
}

func TestCreate_SameCodeTwiceCreatesTwoRecords(t *testing.T) {
	router, db, _ := newTestHandler(t)

	first := postRecord(t, router, "dup", map[string]any{"location": "Paris", "category": "a"})
	second := postRecord(t, router, "dup", map[string]any{"location": "Nairobi", "category": "b"})

	if first.ID == second.ID {
		t.Error("two submissions should produce distinct records")
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := db.Collection(recordstore.CollectionName).CountDocuments(ctx, bson.M{"uniqueCode": "dup"})
	if err != nil {
		t.Fatalf("CountDocuments() error = %v", err)
	}
	if n != 2 {
		t.Errorf("records with code dup = %d, want 2", n)
	}

	// Retrieval returns the newest one.
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodGet, "/dup", nil))
	rec.AssertStatus(t, http.StatusOK)
	var md models.MetaData
	if err := json.NewDecoder(rec.Body).Decode(&md); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if md.Category != "b" {
		t.Errorf("category = %q, want newest record's %q", md.Category, "b")
	}
}

func TestCreate_NewsTagEscapesCode(t *testing.T) {
	router, _, _ := newTestHandler(t)

	got := postRecord(t, router, "a%20b", map[string]any{"location": "Paris"})
	if got.UniqueCode != "a b" {
		t.Errorf("uniqueCode = %q, want %q", got.UniqueCode, "a b")
	}
	if got.MetaData.NewsTag != testBaseURL+"/data/a%20b" {
		t.Errorf("newsTag = %q, want escaped code", got.MetaData.NewsTag)
	}
}

func TestGet(t *testing.T) {
	router, _, _ := newTestHandler(t)
	postRecord(t, router, "paris-1", map[string]any{
		"newsUrl":  "https://news.example.com/a",
		"location": "Paris",
		"category": "politics",
	})

	t.Run("found returns metadata only", func(t *testing.T) {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodGet, "/paris-1", nil))
		rec.AssertStatus(t, http.StatusOK)

		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if _, ok := body["uniqueCode"]; ok {
			t.Error("response should be the metaData object, not the whole record")
		}
		if body["newsUrl"] != "https://news.example.com/a" {
			t.Errorf("newsUrl = %v", body["newsUrl"])
		}
		if body["latitude"] != "48.8588897" {
			t.Errorf("latitude = %v", body["latitude"])
		}
	})

	t.Run("unused code is 404", func(t *testing.T) {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodGet, "/never-used", nil))
		rec.AssertStatus(t, http.StatusNotFound)
		if rec.Body.String() != "Data not found" {
			t.Errorf("body = %q, want %q", rec.Body.String(), "Data not found")
		}
	})
}

func seedForListing(t *testing.T, router http.Handler) {
	t.Helper()
	seeds := []struct {
		code, category, date string
	}{
		{"s-dec", "sports", "2023-12-31T23:59:59Z"},
		{"s-jan1", "sports", "2024-01-01"},
		{"p-jan15", "politics", "2024-01-15T12:00:00Z"},
		{"s-jan31", "sports", "2024-01-31T18:30:00Z"},
		{"s-feb", "sports", "2024-02-01"},
	}
	for _, s := range seeds {
		postRecord(t, router, s.code, map[string]any{
			"location": "Nairobi",
			"category": s.category,
			"date":     s.date,
		})
	}
}

func listCodes(t *testing.T, router http.Handler, target string) (int, []string) {
	t.Helper()
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodGet, target, nil))
	if rec.Code != http.StatusOK {
		return rec.Code, nil
	}
	var out []models.Record
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	codes := make([]string, len(out))
	for i, r := range out {
		codes[i] = r.UniqueCode
	}
	return rec.Code, codes
}

func TestList(t *testing.T) {
	router, _, _ := newTestHandler(t)
	seedForListing(t, router)

	tests := []struct {
		name   string
		target string
		status int
		want   []string
	}{
		{"no filter newest first", "/", http.StatusOK, []string{"s-feb", "s-jan31", "p-jan15", "s-jan1", "s-dec"}},
		{"category all", "/?category=all", http.StatusOK, []string{"s-feb", "s-jan31", "p-jan15", "s-jan1", "s-dec"}},
		{"category sports", "/?category=sports", http.StatusOK, []string{"s-feb", "s-jan31", "s-jan1", "s-dec"}},
		{"category politics", "/?category=politics", http.StatusOK, []string{"p-jan15"}},
		{"inclusive date range", "/?startDate=2024-01-01&endDate=2024-01-31", http.StatusOK, []string{"s-jan31", "p-jan15", "s-jan1"}},
		{"range and category", "/?category=sports&startDate=2024-01-01&endDate=2024-01-31", http.StatusOK, []string{"s-jan31", "s-jan1"}},
		{"only start ignores range", "/?startDate=2024-01-20", http.StatusOK, []string{"s-feb", "s-jan31", "p-jan15", "s-jan1", "s-dec"}},
		{"unknown category", "/?category=weather", http.StatusNotFound, nil},
		{"empty range", "/?startDate=2030-01-01&endDate=2030-12-31", http.StatusNotFound, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, codes := listCodes(t, router, tt.target)
			if status != tt.status {
				t.Fatalf("status = %d, want %d", status, tt.status)
			}
			if strings.Join(codes, ",") != strings.Join(tt.want, ",") {
				t.Errorf("codes = %v, want %v", codes, tt.want)
			}
		})
	}
}

func TestList_NotFoundBody(t *testing.T) {
	router, _, _ := newTestHandler(t)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodGet, "/", nil))
	rec.AssertStatus(t, http.StatusNotFound)
	if rec.Body.String() != "No data found" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "No data found")
	}
}

func TestList_BadDates(t *testing.T) {
	router, _, _ := newTestHandler(t)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodGet, "/?startDate=yesterday&endDate=2024-01-31", nil))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertJSONError(t, "Invalid startDate")

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodGet, "/?startDate=2024-01-01&endDate=soon", nil))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertJSONError(t, "Invalid endDate")
}

func TestStoreFailures(t *testing.T) {
	router := Routes(NewHandler(failingStore{}, newFakeGeocoder(), testBaseURL, nil, zap.NewNop()))

	tests := []struct {
		name   string
		method string
		target string
		body   any
	}{
		{"create", http.MethodPost, "/paris-1", map[string]any{"location": "Paris"}},
		{"get", http.MethodGet, "/paris-1", nil},
		{"list", http.MethodGet, "/", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, testutil.NewJSONRequest(tt.method, tt.target, tt.body))
			rec.AssertStatus(t, http.StatusInternalServerError)
			if rec.Body.String() != "Internal Server Error" {
				t.Errorf("body = %q, want %q", rec.Body.String(), "Internal Server Error")
			}
		})
	}
}
