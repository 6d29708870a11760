package mapview

import (
	"strings"

	"github.com/anoopt/rto-codes-sub000/internal/district"
	"github.com/anoopt/rto-codes-sub000/internal/logger"
	"github.com/anoopt/rto-codes-sub000/internal/metrics"
	"github.com/anoopt/rto-codes-sub000/internal/records"
)

// SVGMap resolves region ids of a state's hand-drawn map. Built once per
// render and read-only afterwards.
type SVGMap struct {
	reg   *district.Registry
	ix    *district.Index
	valid []string
}

// NewSVGMap builds the registry and index. Only a malformed mapping is an
// error; coverage gaps are logged.
func NewSVGMap(state string, mapping map[string]string, validIDs []string, rtos []records.RTO) (*SVGMap, error) {
	reg, err := district.NewRegistry(state, mapping)
	if err != nil {
		return nil, err
	}
	m := &SVGMap{
		reg:   reg,
		ix:    district.BuildIndex(rtos, state),
		valid: append([]string(nil), validIDs...),
	}
	l := logger.With("svgmap")
	if missing := reg.Missing(m.ix.Districts()); len(missing) > 0 {
		l.Warn("svgmap_unmapped", "state", state, "districts", missing)
	}
	if len(validIDs) > 0 {
		if dangling := reg.Dangling(validIDs); len(dangling) > 0 {
			l.Warn("svgmap_dangling_ids", "state", state, "ids", dangling)
		}
	}
	if un := m.ix.Unassigned(); len(un) > 0 {
		l.Debug("svgmap_unassigned_rtos", "state", state, "codes", un)
	}
	return m, nil
}

// ResolveClick picks the primary RTO among every district drawn as svgID.
func (m *SVGMap) ResolveClick(svgID string) (district.Candidate, bool) {
	c, ok := district.SelectPrimary(district.RegionCandidates(m.reg, m.ix, svgID), svgID)
	outcome := "noop"
	if ok {
		outcome = "resolved"
	}
	metrics.RegionClicksTotal.WithLabelValues("svg", outcome).Inc()
	return c, ok
}

// ResolveHover describes a region; false for ids backed by no district.
func (m *SVGMap) ResolveHover(svgID string) (DisplayInfo, bool) {
	names := m.reg.CanonicalNamesFor(svgID)
	if len(names) == 0 {
		return DisplayInfo{}, false
	}
	cands := district.RegionCandidates(m.reg, m.ix, svgID)
	info := DisplayInfo{
		Name:      strings.Join(names, " / "),
		RegionID:  svgID,
		Districts: names,
		RTOCount:  len(cands),
	}
	if c, ok := district.SelectPrimary(cands, svgID); ok {
		info.Primary = c.Code
	}
	return info, true
}

// HighlightFor is the region to highlight for the district being viewed.
func (m *SVGMap) HighlightFor(canonical string) (string, bool) {
	return m.reg.SVGIDFor(canonical)
}

// Interactive reports whether clicking svgID leads anywhere.
func (m *SVGMap) Interactive(svgID string) bool {
	return len(district.RegionCandidates(m.reg, m.ix, svgID)) > 0
}

// Regions describes every drawn region id in the order given at build time.
// Regions without districts come back with only RegionID set.
func (m *SVGMap) Regions() []DisplayInfo {
	ids := m.valid
	if len(ids) == 0 {
		ids = m.reg.RegionIDs()
	}
	out := make([]DisplayInfo, 0, len(ids))
	for _, id := range ids {
		info, ok := m.ResolveHover(id)
		if !ok {
			info = DisplayInfo{RegionID: id, Districts: []string{}}
		}
		out = append(out, info)
	}
	return out
}
