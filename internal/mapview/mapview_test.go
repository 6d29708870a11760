package mapview

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/anoopt/rto-codes-sub000/internal/boundary"
	"github.com/anoopt/rto-codes-sub000/internal/district"
	"github.com/anoopt/rto-codes-sub000/internal/geocache"
	"github.com/anoopt/rto-codes-sub000/internal/geodata"
	"github.com/anoopt/rto-codes-sub000/internal/records"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mapping = map[string]string{
	"Ballari":         "Ballari",
	"Vijayanagara":    "Ballari",
	"Bengaluru Urban": "Bengaluru-Urban",
	"Kodagu":          "Kodagu",
}

var validIDs = []string{"Ballari", "Bengaluru-Urban", "Kodagu", "Mysuru"}

var rtos = []records.RTO{
	{Code: "KA-35", Region: "Hosapete", State: "Karnataka", District: "Vijayanagara"},
	{Code: "KA-34", Region: "Ballari", State: "Karnataka", District: "Ballari", IsDistrictHeadquarter: true},
	{Code: "KA-01", Region: "Koramangala", State: "Karnataka", District: "Bengaluru Urban", IsDistrictHeadquarter: true},
	{Code: "KA-02", Region: "Rajajinagar", State: "Karnataka", District: "Bengaluru Urban"},
	{Code: "KA-12", Region: "Madikeri", State: "Karnataka", District: "Kodagu", Status: records.StatusDiscontinued},
}

func TestSVGMapClick(t *testing.T) {
	m, err := NewSVGMap("Karnataka", mapping, validIDs, rtos)
	require.NoError(t, err)

	c, ok := m.ResolveClick("Ballari")
	require.True(t, ok)
	assert.Equal(t, "KA-34", c.Code)
	assert.Equal(t, "Ballari", c.SourceDistrict)

	c, ok = m.ResolveClick("Kodagu")
	require.True(t, ok)
	assert.Equal(t, "KA-12", c.Code)

	_, ok = m.ResolveClick("Mysuru")
	assert.False(t, ok)
	assert.False(t, m.Interactive("Mysuru"))
	assert.True(t, m.Interactive("Ballari"))
}

func TestSVGMapHover(t *testing.T) {
	m, err := NewSVGMap("Karnataka", mapping, validIDs, rtos)
	require.NoError(t, err)

	info, ok := m.ResolveHover("Ballari")
	require.True(t, ok)
	assert.Equal(t, "Ballari / Vijayanagara", info.Name)
	assert.Equal(t, []string{"Ballari", "Vijayanagara"}, info.Districts)
	assert.Equal(t, 2, info.RTOCount)
	assert.Equal(t, "KA-34", info.Primary)

	_, ok = m.ResolveHover("sea")
	assert.False(t, ok)

	id, ok := m.HighlightFor("Vijayanagara")
	require.True(t, ok)
	assert.Equal(t, "Ballari", id)
	_, ok = m.HighlightFor("Mysuru")
	assert.False(t, ok)

	regions := m.Regions()
	require.Len(t, regions, 4)
	assert.Equal(t, "Mysuru", regions[3].RegionID)
	assert.Zero(t, regions[3].RTOCount)
}

func TestSVGMapMalformed(t *testing.T) {
	_, err := NewSVGMap("Karnataka", map[string]string{"Ballari": ""}, nil, rtos)
	assert.True(t, eris.Is(err, district.ErrMalformedMapping))
}

func TestDispatcher(t *testing.T) {
	m, err := NewSVGMap("Karnataka", mapping, validIDs, rtos)
	require.NoError(t, err)
	var visited []string
	d := NewDispatcher(m, func(code string) { visited = append(visited, code) })

	d.OnRegionClick("Ballari")
	d.OnRegionClick("Mysuru")
	d.OnRegionClick("")
	assert.Equal(t, []string{"KA-34"}, visited)

	info, ok := d.OnRegionHover("Bengaluru-Urban")
	require.True(t, ok)
	assert.Equal(t, 2, info.RTOCount)

	NewDispatcher(m, nil).OnRegionClick("Ballari")
}

const boundaryFile = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"districtName": "Bellary"},
     "geometry": {"type": "Polygon", "coordinates": [[[76,15],[77.5,15],[77.5,16],[76,16],[76,15]]]}},
    {"type": "Feature", "properties": {"districtName": "Bengaluru Urban"},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[77.4,12.8],[77.8,12.8],[77.8,13.2],[77.4,13.2],[77.4,12.8]]]]}}
  ],
  "failedDistricts": ["Vijayanagara"]
}`

func tileMap(t *testing.T) *TileMap {
	return tileMapFrom(t, boundaryFile)
}

func tileMapFrom(t *testing.T, file string, extra ...string) *TileMap {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "boundaries"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "boundaries", "karnataka.json"), []byte(file), 0o644))
	cache := geodata.NewBoundaryCache(geodata.DirSource{Root: root}, geocache.Options{})
	canonical := make([]string, 0, len(mapping)+len(extra))
	for k := range mapping {
		canonical = append(canonical, k)
	}
	canonical = append(canonical, extra...)
	return NewTileMap("Karnataka", canonical, boundary.AliasesFor("Karnataka"), rtos, cache)
}

func TestTileMapClick(t *testing.T) {
	m := tileMap(t)

	c, ok := m.ResolveClick("Bellary")
	require.True(t, ok)
	assert.Equal(t, "KA-34", c.Code)

	c, ok = m.ResolveClick("BENGALURU URBAN")
	require.True(t, ok)
	assert.Equal(t, "KA-01", c.Code)

	_, ok = m.ResolveClick("Atlantis")
	assert.False(t, ok)
}

func TestTileMapHover(t *testing.T) {
	m := tileMap(t)
	info, ok := m.ResolveHover("Bellary")
	require.True(t, ok)
	assert.Equal(t, "Ballari", info.Name)
	assert.Equal(t, "Bellary", info.RegionID)
	assert.Equal(t, 1, info.RTOCount)

	_, ok = m.ResolveHover("Atlantis")
	assert.False(t, ok)

	assert.True(t, m.IsCurrent("Bellary", "Ballari"))
	assert.False(t, m.IsCurrent("Bellary", "Vijayanagara"))
}

func TestTileMapBoundaries(t *testing.T) {
	ctx := context.Background()
	m := tileMap(t)

	f, ok := m.Boundary(ctx, "Ballari")
	require.True(t, ok)
	assert.Equal(t, "Bellary", geodata.DistrictName(f))

	layer := m.LoadBoundaries(ctx, geodata.NewSequence(nil))
	assert.False(t, layer.Cancelled)
	require.Len(t, layer.Features, 2)
	assert.Equal(t, "Ballari", layer.Features[0].District)
	assert.True(t, layer.Features[0].Interactive)
	assert.Equal(t, []string{"Kodagu", "Vijayanagara"}, layer.Failed)
}

func TestTileMapBoundariesWithoutRTOs(t *testing.T) {
	const file = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"districtName": "Bellary"},
     "geometry": {"type": "Polygon", "coordinates": [[[76,15],[77.5,15],[77.5,16],[76,16],[76,15]]]}},
    {"type": "Feature", "properties": {"districtName": "Chikmagalur District", "canonicalName": "Chikkamagaluru"},
     "geometry": {"type": "Polygon", "coordinates": [[[75.3,13],[76.2,13],[76.2,13.9],[75.3,13.9],[75.3,13]]]}}
  ],
  "failedDistricts": []
}`
	m := tileMapFrom(t, file, "Chikkamagaluru")
	layer := m.LoadBoundaries(context.Background(), geodata.NewSequence(nil))
	require.Len(t, layer.Features, 2)
	assert.Equal(t, "Ballari", layer.Features[0].District)
	assert.True(t, layer.Features[0].Interactive)
	assert.Equal(t, "Chikkamagaluru", layer.Features[1].District)
	assert.False(t, layer.Features[1].Interactive)
	assert.Equal(t, []string{"Bengaluru Urban", "Kodagu", "Vijayanagara"}, layer.Failed)

	name, ok := m.DistrictAt(context.Background(), 13.3, 75.8)
	require.True(t, ok)
	assert.Equal(t, "Chikkamagaluru", name)
}

func TestTileMapLoadCancelled(t *testing.T) {
	m := tileMap(t)
	seq := geodata.NewSequence(nil)
	seq.Cancel()
	layer := m.LoadBoundaries(context.Background(), seq)
	assert.True(t, layer.Cancelled)
	assert.Empty(t, layer.Features)
}

func TestTileMapDistrictAt(t *testing.T) {
	ctx := context.Background()
	m := tileMap(t)

	name, ok := m.DistrictAt(ctx, 15.14, 76.92)
	require.True(t, ok)
	assert.Equal(t, "Ballari", name)

	name, ok = m.DistrictAt(ctx, 12.97, 77.59)
	require.True(t, ok)
	assert.Equal(t, "Bengaluru Urban", name)

	_, ok = m.DistrictAt(ctx, 28.6, 77.2)
	assert.False(t, ok)
}
