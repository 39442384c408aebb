package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/godilite/mgnrega-dashboard/internal/datagov"
	"github.com/godilite/mgnrega-dashboard/internal/geo"
	"github.com/godilite/mgnrega-dashboard/internal/repository/models"
	"github.com/godilite/mgnrega-dashboard/internal/service"
	httpsrv "github.com/godilite/mgnrega-dashboard/pkg/http/server"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	msgMissingDistrict  = "District parameter is required"
	msgUpstreamFailure  = "Failed to fetch data from data.gov.in"
	msgInvalidCoords    = "Invalid coordinates"
	msgLocationUnknown  = "Unable to determine location"
	msgInvalidLimit     = "Invalid limit"
	sourceCoordinates   = "coordinates"
	sourceIP            = "ip"
	noDataMessagePrefix = "No data found for district: "
)

type errorResponse struct {
	Error string `json:"error"`
}

type districtsResponse struct {
	Districts []string `json:"districts"`
}

type nearestResponse struct {
	District    string   `json:"district"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	DistanceKm  *float64 `json:"distanceKm,omitempty"`
	Approximate bool     `json:"approximate"`
	Source      string   `json:"source"`
}

type fetchesResponse struct {
	Fetches []models.FetchLogEntry `json:"fetches"`
}

type Handlers struct {
	dashboard DashboardService
	locations LocationResolver
	logger    *zap.Logger
}

// NewHandlers initializes the HTTP handlers.
func NewHandlers(dashboard DashboardService, locations LocationResolver, logger *zap.Logger) *Handlers {
	if dashboard == nil {
		panic("nil DashboardService provided to NewHandlers")
	}
	if locations == nil {
		panic("nil LocationResolver provided to NewHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		dashboard: dashboard,
		locations: locations,
		logger:    logger.Named("http-handler"),
	}
}

// Register mounts the API routes on r.
func (h *Handlers) Register(r *mux.Router) {
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/mgnrega", h.GetDistrictSummary).Methods(http.MethodGet)
	api.HandleFunc("/districts", h.ListDistricts).Methods(http.MethodGet)
	api.HandleFunc("/districts/nearest", h.NearestDistrict).Methods(http.MethodGet)
	api.HandleFunc("/fetches", h.RecentFetches).Methods(http.MethodGet)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetDistrictSummary serves GET /api/mgnrega?district=<name>. Every failure
// other than a missing parameter or an empty result is reported with the same
// generic 500 body, including panics.
func (h *Handlers) GetDistrictSummary(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if p := recover(); p != nil {
			if p == http.ErrAbortHandler {
				panic(p)
			}
			h.logger.Error("panic while building district summary",
				zap.Any("panic", p),
				zap.String("request_id", httpsrv.RequestIDFromContext(r.Context())))
			writeError(w, http.StatusInternalServerError, msgUpstreamFailure)
		}
	}()

	district := strings.TrimSpace(r.URL.Query().Get("district"))
	if district == "" {
		writeError(w, http.StatusBadRequest, msgMissingDistrict)
		return
	}

	summary, err := h.dashboard.GetDistrictSummary(r.Context(), district)
	if err != nil {
		status, msg := h.handleError(r, district, err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *Handlers) handleError(r *http.Request, district string, err error) (int, string) {
	fields := []zap.Field{
		zap.String("district", district),
		zap.String("request_id", httpsrv.RequestIDFromContext(r.Context())),
		zap.Error(err),
	}

	var remote *datagov.RemoteFetchError
	switch {
	case errors.Is(err, service.ErrMissingDistrict):
		return http.StatusBadRequest, msgMissingDistrict
	case errors.Is(err, service.ErrNoData):
		h.logger.Info("no data for district", fields[:2]...)
		return http.StatusNotFound, noDataMessagePrefix + district
	case r.Context().Err() != nil:
		h.logger.Warn("request canceled", fields...)
	case errors.As(err, &remote):
		h.logger.Error("data.gov.in returned an error status", append(fields, zap.Int("status", remote.StatusCode))...)
	case errors.Is(err, datagov.ErrNetwork):
		h.logger.Error("data.gov.in unreachable", fields...)
	default:
		h.logger.Error("unexpected error", fields...)
	}
	return http.StatusInternalServerError, msgUpstreamFailure
}

func (h *Handlers) ListDistricts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, districtsResponse{Districts: h.locations.Districts()})
}

// NearestDistrict serves GET /api/districts/nearest. With lat and lon it
// resolves those coordinates; with neither it falls back to the client IP.
func (h *Handlers) NearestDistrict(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	latStr, lonStr := strings.TrimSpace(q.Get("lat")), strings.TrimSpace(q.Get("lon"))

	var (
		result geo.NearestDistrict
		source string
		err    error
	)
	switch {
	case latStr == "" && lonStr == "":
		source = sourceIP
		result, err = h.locations.NearestToIP(clientIP(r))
	case latStr == "" || lonStr == "":
		writeError(w, http.StatusBadRequest, msgInvalidCoords)
		return
	default:
		point, perr := parseCoordinate(latStr, lonStr)
		if perr != nil {
			writeError(w, http.StatusBadRequest, msgInvalidCoords)
			return
		}
		source = sourceCoordinates
		result, err = h.locations.Nearest(point)
	}

	switch {
	case err == nil:
	case errors.Is(err, geo.ErrInvalidCoordinate):
		writeError(w, http.StatusBadRequest, msgInvalidCoords)
		return
	case errors.Is(err, geo.ErrLocationUnavailable):
		h.logger.Debug("location unavailable", zap.String("source", source), zap.Error(err))
		writeError(w, http.StatusNotFound, msgLocationUnknown)
		return
	default:
		h.logger.Error("nearest district lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, nearestResponse{
		District:    result.District,
		Latitude:    result.Reference.Latitude,
		Longitude:   result.Reference.Longitude,
		DistanceKm:  result.DistanceKm,
		Approximate: result.Approximate,
		Source:      source,
	})
}

// RecentFetches serves GET /api/fetches?limit=<n>.
func (h *Handlers) RecentFetches(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidLimit)
			return
		}
		limit = n
	}

	entries, err := h.dashboard.RecentFetches(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list recent fetches", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, fetchesResponse{Fetches: entries})
}

func parseCoordinate(latStr, lonStr string) (geo.Coordinate, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: lat %q", geo.ErrInvalidCoordinate, latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: lon %q", geo.ErrInvalidCoordinate, lonStr)
	}
	return geo.Coordinate{Latitude: lat, Longitude: lon}, nil
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// connection's remote address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
