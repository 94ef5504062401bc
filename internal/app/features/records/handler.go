// Package records serves news record ingestion and retrieval.
//
// Endpoints (mounted at /data):
//   - POST /data/{uniqueCode} - geocode the location and store a record
//   - GET  /data/{uniqueCode} - metadata of the newest record with that code
//   - GET  /data              - records filtered by category and date range
package records

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	recordstore "github.com/dalemusser/newsgeo/internal/app/store/records"
	"github.com/dalemusser/newsgeo/internal/app/system/geocode"
	"github.com/dalemusser/newsgeo/internal/app/system/jsonutil"
	"github.com/dalemusser/newsgeo/internal/app/system/metrics"
	"github.com/dalemusser/newsgeo/internal/app/system/normalize"
	"github.com/dalemusser/newsgeo/internal/app/system/timeouts"
	"github.com/dalemusser/newsgeo/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Store is the persistence the handler needs; *recordstore.Store satisfies it.
type Store interface {
	Create(ctx context.Context, rec models.Record) (models.Record, error)
	GetByCode(ctx context.Context, code string) (*models.Record, error)
	List(ctx context.Context, f recordstore.Filter) ([]models.Record, error)
}

// Handler handles record requests.
type Handler struct {
	store   Store
	geo     geocode.Geocoder
	baseURL string
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewHandler creates a records handler. baseURL is the service's externally
// reachable address, used to build each record's newsTag. m may be nil.
func NewHandler(store Store, geo geocode.Geocoder, baseURL string, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		store:   store,
		geo:     geo,
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: m,
		logger:  logger,
	}
}

// createInput is the POST /data/{uniqueCode} body.
type createInput struct {
	NewsURL  string `json:"newsUrl"`
	Location string `json:"location"`
	Category string `json:"category"`
	Date     string `json:"date"`
}

// Create handles POST /data/{uniqueCode}.
//
// A geocoder failure aborts with 500 and the underlying message. A location
// with no matches is stored without coordinates.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "uniqueCode")

	var in createInput
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}

	meta := models.MetaData{
		NewsURL:      strings.TrimSpace(in.NewsURL),
		LocationName: in.Location,
		Category:     normalize.Category(in.Category),
		NewsTag:      h.newsTag(code),
	}
	if d := strings.TrimSpace(in.Date); d != "" {
		t, _, err := parseDate(d)
		if err != nil {
			jsonutil.BadRequest(w, "Invalid date")
			return
		}
		meta.Date = t
	}

	matches, err := h.geo.Search(r.Context(), in.Location)
	if err != nil {
		h.logger.Error("error fetching location data",
			zap.String("unique_code", code),
			zap.String("location", in.Location),
			zap.Error(err),
		)
		jsonutil.InternalError(w, err.Error())
		return
	}
	if len(matches) > 0 {
		meta.Latitude = matches[0].Latitude
		meta.Longitude = matches[0].Longitude
		meta.MapURL = matches[0].MapURL()
	} else {
		h.logger.Info("no geocoding results",
			zap.String("unique_code", code),
			zap.String("location", in.Location),
		)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Store())
	defer cancel()

	rec, err := h.store.Create(ctx, models.Record{UniqueCode: code, MetaData: meta})
	if err != nil {
		h.logger.Error("error storing record",
			zap.String("unique_code", code),
			zap.Error(err),
		)
		jsonutil.Text(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	h.metrics.RecordCreated()

	h.logger.Debug("record stored",
		zap.String("unique_code", code),
		zap.String("id", rec.ID.Hex()),
		zap.Bool("geocoded", meta.MapURL != ""),
	)
	jsonutil.OK(w, rec)
}

// Get handles GET /data/{uniqueCode} and returns only the metadata.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "uniqueCode")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Store())
	defer cancel()

	rec, err := h.store.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			jsonutil.Text(w, http.StatusNotFound, "Data not found")
			return
		}
		h.logger.Error("error retrieving record",
			zap.String("unique_code", code),
			zap.Error(err),
		)
		jsonutil.Text(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	jsonutil.OK(w, rec.MetaData)
}

// List handles GET /data?category=&startDate=&endDate=.
//
// The date range applies only when both bounds are given. A date-only
// endDate includes that whole day. An empty result is a 404.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := recordstore.Filter{Category: normalize.Category(q.Get("category"))}

	startRaw := normalize.QueryParam(q.Get("startDate"))
	endRaw := normalize.QueryParam(q.Get("endDate"))
	if startRaw != "" && endRaw != "" {
		from, _, err := parseDate(startRaw)
		if err != nil {
			jsonutil.BadRequest(w, "Invalid startDate")
			return
		}
		to, dateOnly, err := parseDate(endRaw)
		if err != nil {
			jsonutil.BadRequest(w, "Invalid endDate")
			return
		}
		if dateOnly {
			to = endOfDay(to)
		}
		f.From, f.To = &from, &to
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Store())
	defer cancel()

	out, err := h.store.List(ctx, f)
	if err != nil {
		h.logger.Error("error listing records",
			zap.String("category", f.Category),
			zap.Error(err),
		)
		jsonutil.Text(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if len(out) == 0 {
		jsonutil.Text(w, http.StatusNotFound, "No data found")
		return
	}
	jsonutil.OK(w, out)
}

// newsTag is the URL at which the record with code can be fetched.
func (h *Handler) newsTag(code string) string {
	return h.baseURL + "/data/" + url.PathEscape(code)
}
