// Package api registers the HTTP routes of the map service; the entry point
// mounts them under API_BASE.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/anoopt/rto-codes-sub000/internal/boundary"
	"github.com/anoopt/rto-codes-sub000/internal/geocache"
	"github.com/anoopt/rto-codes-sub000/internal/geodata"
	"github.com/anoopt/rto-codes-sub000/internal/logger"
	"github.com/anoopt/rto-codes-sub000/internal/mapview"
	"github.com/anoopt/rto-codes-sub000/internal/middleware"
	"github.com/anoopt/rto-codes-sub000/internal/records"

	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb/geojson"
)

// Deps are the collaborators the routes read from.
type Deps struct {
	Records     records.Store
	Boundaries  *geocache.Cache[*geojson.Feature]
	Coordinates *geocache.Cache[geodata.Coordinate]
	// Reload re-reads the record store; nil disables /reload-records.
	Reload     func(ctx context.Context) error
	AdminToken string
}

type handlers struct {
	Deps
}

// BuildRoutes returns the API router.
func BuildRoutes(d Deps) chi.Router {
	h := &handlers{Deps: d}
	r := chi.NewRouter()
	r.Get("/health", h.health)
	r.Get("/states", h.states)
	r.Route("/states/{state}", func(r chi.Router) {
		r.Get("/svg/regions", h.svgRegions)
		r.Get("/svg/click", h.svgClick)
		r.Get("/svg/hover", h.svgHover)
		r.Get("/tile/click", h.tileClick)
		r.Get("/tile/hover", h.tileHover)
		r.Get("/tile/at", h.tileAt)
		r.Get("/nearest", h.nearest)
		r.Get("/boundaries", h.boundaries)
		r.Get("/boundaries/{district}", h.boundary)
	})
	r.Get("/coordinates/{code}", h.coordinate)
	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminToken(d.AdminToken))
		r.Post("/cache/clear", h.clearCache)
		r.Post("/reload-records", h.reloadRecords)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type stateSummary struct {
	Name      string `json:"name"`
	Code      string `json:"stateCode"`
	Districts int    `json:"districts"`
}

func (h *handlers) states(w http.ResponseWriter, r *http.Request) {
	cfgs, err := h.Records.States(r.Context())
	if err != nil {
		logger.L().Error("api_states_error", "err", err)
		writeError(w, http.StatusInternalServerError, "record store unavailable")
		return
	}
	out := make([]stateSummary, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, stateSummary{Name: c.Name, Code: c.Code, Districts: len(c.DistrictMapping)})
	}
	writeJSON(w, http.StatusOK, out)
}

// stateData loads the config and records of the {state} path parameter.
// It writes the error response itself and returns false on failure.
func (h *handlers) stateData(w http.ResponseWriter, r *http.Request) (records.StateConfig, []records.RTO, bool) {
	state := chi.URLParam(r, "state")
	cfg, ok, err := h.Records.StateConfig(r.Context(), state)
	if err != nil {
		logger.L().Error("api_state_config_error", "state", state, "err", err)
		writeError(w, http.StatusInternalServerError, "record store unavailable")
		return cfg, nil, false
	}
	if !ok {
		writeError(w, http.StatusNotFound, "unknown state")
		return cfg, nil, false
	}
	rtos, err := h.Records.ListRTOs(r.Context(), cfg.Code)
	if err != nil {
		logger.L().Error("api_list_rtos_error", "state", state, "err", err)
		writeError(w, http.StatusInternalServerError, "record store unavailable")
		return cfg, nil, false
	}
	return cfg, rtos, true
}

func (h *handlers) svgMap(w http.ResponseWriter, r *http.Request) (*mapview.SVGMap, bool) {
	cfg, rtos, ok := h.stateData(w, r)
	if !ok {
		return nil, false
	}
	m, err := mapview.NewSVGMap(cfg.Name, cfg.DistrictMapping, cfg.SVGDistrictIDs, rtos)
	if err != nil {
		logger.L().Error("api_svgmap_config_error", "state", cfg.Name, "err", err)
		writeError(w, http.StatusInternalServerError, "malformed state config")
		return nil, false
	}
	return m, true
}

func (h *handlers) tileMap(w http.ResponseWriter, r *http.Request) (*mapview.TileMap, bool) {
	cfg, rtos, ok := h.stateData(w, r)
	if !ok {
		return nil, false
	}
	canonical := make([]string, 0, len(cfg.DistrictMapping))
	for name := range cfg.DistrictMapping {
		canonical = append(canonical, name)
	}
	aliases := boundary.Merge(boundary.AliasesFor(cfg.Code), cfg.BoundaryAliases)
	return mapview.NewTileMap(cfg.Name, canonical, aliases, rtos, h.Boundaries), true
}

type clickResult struct {
	Resolved bool   `json:"resolved"`
	Code     string `json:"code,omitempty"`
	Region   string `json:"region,omitempty"`
	District string `json:"district,omitempty"`
}

func click(w http.ResponseWriter, res mapview.Resolver, id string) {
	c, ok := res.ResolveClick(id)
	if !ok {
		writeJSON(w, http.StatusOK, clickResult{})
		return
	}
	writeJSON(w, http.StatusOK, clickResult{Resolved: true, Code: c.Code, Region: c.Region, District: c.District})
}

func hover(w http.ResponseWriter, res mapview.Resolver, id string) {
	info, ok := res.ResolveHover(id)
	if !ok {
		writeError(w, http.StatusNotFound, "no district for region")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *handlers) svgRegions(w http.ResponseWriter, r *http.Request) {
	if m, ok := h.svgMap(w, r); ok {
		writeJSON(w, http.StatusOK, m.Regions())
	}
}

func (h *handlers) svgClick(w http.ResponseWriter, r *http.Request) {
	if m, ok := h.svgMap(w, r); ok {
		click(w, m, r.URL.Query().Get("region"))
	}
}

func (h *handlers) svgHover(w http.ResponseWriter, r *http.Request) {
	if m, ok := h.svgMap(w, r); ok {
		hover(w, m, r.URL.Query().Get("region"))
	}
}

func (h *handlers) tileClick(w http.ResponseWriter, r *http.Request) {
	if m, ok := h.tileMap(w, r); ok {
		click(w, m, r.URL.Query().Get("name"))
	}
}

func (h *handlers) tileHover(w http.ResponseWriter, r *http.Request) {
	if m, ok := h.tileMap(w, r); ok {
		hover(w, m, r.URL.Query().Get("name"))
	}
}

func (h *handlers) tileAt(w http.ResponseWriter, r *http.Request) {
	pt, ok := parsePoint(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "lat and lon are required")
		return
	}
	m, ok := h.tileMap(w, r)
	if !ok {
		return
	}
	name, found := m.DistrictAt(r.Context(), pt.Lat, pt.Lon)
	if !found {
		writeError(w, http.StatusNotFound, "no district at point")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"district": name})
}

func parsePoint(r *http.Request) (geodata.Coordinate, bool) {
	lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, err2 := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	return geodata.Coordinate{Lat: lat, Lon: lon}, err1 == nil && err2 == nil
}

type nearestResult struct {
	Code       string         `json:"code"`
	Region     string         `json:"region,omitempty"`
	District   string         `json:"district,omitempty"`
	Status     records.Status `json:"status,omitempty"`
	DistanceKm float64        `json:"distanceKm"`
}

// nearest answers the closest office of the state to ?lat=&lon=, optionally
// within ?maxKm=.
func (h *handlers) nearest(w http.ResponseWriter, r *http.Request) {
	pt, ok := parsePoint(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "lat and lon are required")
		return
	}
	maxKm, _ := strconv.ParseFloat(r.URL.Query().Get("maxKm"), 64)
	cfg, rtos, ok := h.stateData(w, r)
	if !ok {
		return
	}
	ix := geodata.NewOfficeIndex(h.Coordinates.Entries(r.Context(), cfg.Name))
	o, d, found := ix.Nearest(pt, maxKm)
	if !found {
		writeError(w, http.StatusNotFound, "no office nearby")
		return
	}
	res := nearestResult{Code: o.Code, DistanceKm: d}
	for _, rto := range rtos {
		if strings.EqualFold(rto.Code, o.Code) {
			res.Region, res.District, res.Status = rto.Region, rto.District, rto.EffectiveStatus()
			break
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) boundaries(w http.ResponseWriter, r *http.Request) {
	m, ok := h.tileMap(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, m.LoadBoundaries(r.Context(), geodata.NewSequence(nil)))
}

func (h *handlers) boundary(w http.ResponseWriter, r *http.Request) {
	m, ok := h.tileMap(w, r)
	if !ok {
		return
	}
	f, found := m.Boundary(r.Context(), chi.URLParam(r, "district"))
	if !found {
		writeError(w, http.StatusNotFound, "boundary not available")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// coordinate answers /coordinates/{code}; the state comes from ?state= or
// from the code prefix.
func (h *handlers) coordinate(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
	state := r.URL.Query().Get("state")
	if state == "" {
		if i := strings.IndexByte(code, '-'); i > 0 {
			state = code[:i]
		}
	}
	cfg, ok, err := h.Records.StateConfig(r.Context(), state)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "record store unavailable")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "unknown state")
		return
	}
	c, found := h.Coordinates.Fetch(r.Context(), cfg.Name, code)
	if !found {
		writeError(w, http.StatusNotFound, "coordinate not available")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handlers) clearCache(w http.ResponseWriter, r *http.Request) {
	h.Boundaries.Clear(r.Context())
	h.Coordinates.Clear(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *handlers) reloadRecords(w http.ResponseWriter, r *http.Request) {
	if h.Reload == nil {
		writeError(w, http.StatusNotImplemented, "reload not supported by this record store")
		return
	}
	if err := h.Reload(r.Context()); err != nil {
		logger.L().Error("records_reload_error", "err", err)
		writeError(w, http.StatusInternalServerError, "reload failed")
		return
	}
	logger.L().Info("records_reloaded")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}
