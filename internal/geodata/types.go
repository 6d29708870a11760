// Package geodata reads the pre-generated per-state geodata files and talks
// to the external boundary service used to produce them.
package geodata

import (
	"errors"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrNotFound is returned when a state has no static file.
var ErrNotFound = errors.New("geodata not found")

// PropDistrictName is the feature property carrying the district name as the
// boundary service spells it.
const PropDistrictName = "districtName"

// PropCanonicalName is written by the fetch tool when the name was reconciled.
const PropCanonicalName = "canonicalName"

// BoundaryFile is boundaries/<state>.json.
type BoundaryFile struct {
	Type            string             `json:"type,omitempty"`
	Features        []*geojson.Feature `json:"features"`
	FailedDistricts []string           `json:"failedDistricts"`
}

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinate) Point() orb.Point { return orb.Point{c.Lon, c.Lat} }

// CoordinateFile is coordinates/<state>.json, keyed by RTO code.
type CoordinateFile struct {
	Coordinates map[string]Coordinate `json:"coordinates"`
}

// DistrictName reads the district name property of a feature.
func DistrictName(f *geojson.Feature) string {
	if f == nil {
		return ""
	}
	return strings.TrimSpace(f.Properties.MustString(PropDistrictName, ""))
}

// KeyName is the name a feature is cached under: the reconciled canonical
// name when the fetch tool recorded one, else the service's districtName.
func KeyName(f *geojson.Feature) string {
	if f == nil {
		return ""
	}
	if n := strings.TrimSpace(f.Properties.MustString(PropCanonicalName, "")); n != "" {
		return n
	}
	return DistrictName(f)
}

// Slug is the file name stem of a state: lower case, spaces as dashes.
func Slug(state string) string {
	s := strings.ToLower(strings.TrimSpace(state))
	return strings.Join(strings.Fields(s), "-")
}

// withBBox fills the feature bbox from its geometry when the file omits it.
func withBBox(f *geojson.Feature) *geojson.Feature {
	if f != nil && len(f.BBox) == 0 && f.Geometry != nil {
		f.BBox = geojson.NewBBox(f.Geometry.Bound())
	}
	return f
}
