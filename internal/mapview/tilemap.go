package mapview

import (
	"context"
	"sort"

	"github.com/anoopt/rto-codes-sub000/internal/boundary"
	"github.com/anoopt/rto-codes-sub000/internal/district"
	"github.com/anoopt/rto-codes-sub000/internal/geocache"
	"github.com/anoopt/rto-codes-sub000/internal/geodata"
	"github.com/anoopt/rto-codes-sub000/internal/logger"
	"github.com/anoopt/rto-codes-sub000/internal/metrics"
	"github.com/anoopt/rto-codes-sub000/internal/records"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/rotisserie/eris"
)

// TileMap resolves the district names the boundary service attaches to its
// polygons. Region ids here are external names, reconciled per click.
type TileMap struct {
	state      string
	rec        *boundary.Reconciler
	ix         *district.Index
	boundaries *geocache.Cache[*geojson.Feature]
}

// NewTileMap indexes rtos for state. canonical lists extra district names
// (the state's mapping keys) on top of those the records use.
func NewTileMap(state string, canonical []string, aliases map[string]string, rtos []records.RTO, boundaries *geocache.Cache[*geojson.Feature]) *TileMap {
	ix := district.BuildIndex(rtos, state)
	names := append(ix.Districts(), canonical...)
	return &TileMap{
		state:      state,
		rec:        boundary.NewReconciler(names, aliases),
		ix:         ix,
		boundaries: boundaries,
	}
}

func (m *TileMap) resolve(external string) string {
	name, kind := m.rec.Match(external)
	if kind == boundary.MatchNone {
		metrics.UnresolvedNamesTotal.Inc()
		if s, score := m.rec.Suggest(external); s != "" {
			logger.L().Debug("tilemap_unresolved", "state", m.state, "name", external, "suggest", s, "score", score)
		}
	}
	return name
}

// ResolveClick picks the primary RTO of the district an external name denotes.
func (m *TileMap) ResolveClick(external string) (district.Candidate, bool) {
	canonical := m.resolve(external)
	c, ok := district.SelectPrimary(district.DistrictCandidates(m.ix, canonical), canonical)
	outcome := "noop"
	if ok {
		outcome = "resolved"
	}
	metrics.RegionClicksTotal.WithLabelValues("tile", outcome).Inc()
	return c, ok
}

// ResolveHover shows the canonical name and RTO count. Names that neither
// resolve nor carry RTOs have no tooltip.
func (m *TileMap) ResolveHover(external string) (DisplayInfo, bool) {
	canonical, kind := m.rec.Match(external)
	cands := district.DistrictCandidates(m.ix, canonical)
	if kind == boundary.MatchNone && len(cands) == 0 {
		return DisplayInfo{}, false
	}
	info := DisplayInfo{
		Name:      canonical,
		RegionID:  external,
		Districts: []string{canonical},
		RTOCount:  len(cands),
	}
	if c, ok := district.SelectPrimary(cands, canonical); ok {
		info.Primary = c.Code
	}
	return info, true
}

// IsCurrent reports whether a polygon's external name is the viewed district.
func (m *TileMap) IsCurrent(external, current string) bool {
	return m.rec.Same(external, current)
}

// Boundary finds the polygon of a canonical district, whichever spelling the
// state's file used for it.
func (m *TileMap) Boundary(ctx context.Context, canonical string) (*geojson.Feature, bool) {
	if f, ok := m.boundaries.Fetch(ctx, m.state, canonical); ok {
		return f, true
	}
	all := m.boundaries.Entries(ctx, m.state)
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if m.rec.Resolve(k) == canonical {
			return all[k], true
		}
	}
	return nil, false
}

// RegionFeature is one polygon ready for the tile layer.
type RegionFeature struct {
	District    string           `json:"district"`
	Feature     *geojson.Feature `json:"feature"`
	Interactive bool             `json:"interactive"`
}

// Layer is the result of a progressive boundary load.
type Layer struct {
	Features  []RegionFeature `json:"features"`
	Failed    []string        `json:"failed"`
	Cancelled bool            `json:"cancelled"`
}

// LoadBoundaries walks every canonical district of the state through seq and
// collects their polygons. Districts no RTO belongs to are drawn but not
// interactive. Districts without a polygon and those the file itself lists
// as failed end up in Failed.
func (m *TileMap) LoadBoundaries(ctx context.Context, seq *geodata.Sequence) Layer {
	var layer Layer
	res := seq.Run(ctx, m.rec.Canonical(), func(ctx context.Context, name string) error {
		f, ok := m.Boundary(ctx, name)
		if !ok {
			return eris.Wrapf(geodata.ErrNotFound, "boundary %s", name)
		}
		layer.Features = append(layer.Features, RegionFeature{
			District:    name,
			Feature:     f,
			Interactive: len(m.ix.RTOsFor(name)) > 0,
		})
		return nil
	})
	seen := map[string]bool{}
	for _, n := range append(res.Failed, m.boundaries.Failed(m.state)...) {
		n = m.rec.Resolve(n)
		if !seen[n] {
			seen[n] = true
			layer.Failed = append(layer.Failed, n)
		}
	}
	sort.Strings(layer.Failed)
	layer.Cancelled = res.Cancelled
	if len(layer.Failed) > 0 {
		logger.L().Info("tilemap_boundaries_incomplete", "state", m.state, "loaded", len(layer.Features), "failed", len(layer.Failed))
	}
	return layer
}

// DistrictAt returns the canonical district whose polygon contains the point.
func (m *TileMap) DistrictAt(ctx context.Context, lat, lon float64) (string, bool) {
	pt := orb.Point{lon, lat}
	all := m.boundaries.Entries(ctx, m.state)
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		f := all[k]
		if f == nil || f.Geometry == nil {
			continue
		}
		if len(f.BBox) == 4 && !f.BBox.Bound().Contains(pt) {
			continue
		}
		if contains(f.Geometry, pt) {
			return m.rec.Resolve(k), true
		}
	}
	return "", false
}

func contains(g orb.Geometry, pt orb.Point) bool {
	switch v := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(v, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(v, pt)
	}
	return false
}
