package geodata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/anoopt/rto-codes-sub000/internal/logger"
	"github.com/anoopt/rto-codes-sub000/internal/metrics"

	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
)

const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// Nominatim queries an OSM Nominatim instance for district polygons and
// office coordinates. Used offline by the fetch tool only; the public
// instance allows one request per second, pacing is the caller's job.
type Nominatim struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

func (n *Nominatim) do(ctx context.Context, q url.Values, v any) error {
	base := n.BaseURL
	if base == "" {
		base = DefaultNominatimURL
	}
	u := strings.TrimRight(base, "/") + "/search?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return eris.Wrap(err, "nominatim request")
	}
	ua := n.UserAgent
	if ua == "" {
		ua = "rto-codes-boundary-fetch"
	}
	req.Header.Set("User-Agent", ua)
	client := n.Client
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	t0 := time.Now()
	logger.L().Debug("nominatim_req", "q", q.Get("q"))
	resp, err := client.Do(req)
	if err != nil {
		metrics.NominatimRequestsTotal.WithLabelValues("http_error").Inc()
		logger.L().Error("nominatim_http_error", "err", err)
		return eris.Wrap(err, "nominatim get")
	}
	defer resp.Body.Close()
	metrics.NominatimDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	if resp.StatusCode != http.StatusOK {
		metrics.NominatimRequestsTotal.WithLabelValues("status_" + strconv.Itoa(resp.StatusCode)).Inc()
		return eris.Errorf("nominatim status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		metrics.NominatimRequestsTotal.WithLabelValues("decode_error").Inc()
		return eris.Wrap(err, "nominatim decode")
	}
	metrics.NominatimRequestsTotal.WithLabelValues("ok").Inc()
	return nil
}

// District looks up the boundary polygon of a district. The returned feature
// carries the service's own name in districtName; ErrNotFound when the
// service has no polygon for it.
func (n *Nominatim) District(ctx context.Context, district, state string) (*geojson.Feature, error) {
	q := url.Values{}
	q.Set("q", district+" district, "+state+", India")
	q.Set("format", "geojson")
	q.Set("polygon_geojson", "1")
	q.Set("limit", "5")
	var fc geojson.FeatureCollection
	if err := n.do(ctx, q, &fc); err != nil {
		return nil, err
	}
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		switch f.Geometry.GeoJSONType() {
		case "Polygon", "MultiPolygon":
		default:
			continue
		}
		name := serviceName(f.Properties.MustString("display_name", ""))
		if name == "" {
			name = district
		}
		out := geojson.NewFeature(f.Geometry)
		out.Properties[PropDistrictName] = name
		if v := f.Properties.MustString("osm_type", ""); v != "" {
			out.Properties["osmType"] = v
		}
		logger.L().Debug("nominatim_district", "query", district, "name", name, "type", f.Geometry.GeoJSONType())
		return withBBox(out), nil
	}
	return nil, eris.Wrapf(ErrNotFound, "district %s, %s", district, state)
}

type place struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Locate geocodes a free-form address to a point.
func (n *Nominatim) Locate(ctx context.Context, query string) (Coordinate, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	q.Set("countrycodes", "in")
	var res []place
	if err := n.do(ctx, q, &res); err != nil {
		return Coordinate{}, err
	}
	if len(res) == 0 {
		return Coordinate{}, eris.Wrapf(ErrNotFound, "locate %s", query)
	}
	lat, err1 := strconv.ParseFloat(res[0].Lat, 64)
	lon, err2 := strconv.ParseFloat(res[0].Lon, 64)
	if err1 != nil || err2 != nil {
		return Coordinate{}, eris.Errorf("locate %s: bad point %q,%q", query, res[0].Lat, res[0].Lon)
	}
	return Coordinate{Lat: lat, Lon: lon}, nil
}

// serviceName takes the first display_name segment and drops a trailing
// " District".
func serviceName(display string) string {
	s := display
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(strings.ToLower(s), " district") {
		s = strings.TrimSpace(s[:len(s)-len(" district")])
	}
	return s
}
