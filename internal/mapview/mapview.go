// Package mapview turns region ids from either map renderer into the RTO a
// click navigates to and the text a hover shows.
package mapview

import (
	"github.com/anoopt/rto-codes-sub000/internal/district"
)

// DisplayInfo is hover content for one region.
type DisplayInfo struct {
	Name      string   `json:"name"`
	RegionID  string   `json:"regionId"`
	Districts []string `json:"districts"`
	RTOCount  int      `json:"rtoCount"`
	Primary   string   `json:"primary,omitempty"`
}

// Resolver is implemented by SVGMap and TileMap.
type Resolver interface {
	ResolveClick(id string) (district.Candidate, bool)
	ResolveHover(id string) (DisplayInfo, bool)
}

// Dispatcher adapts a Resolver to the renderer's event callbacks.
type Dispatcher struct {
	r        Resolver
	navigate func(code string)
}

func NewDispatcher(r Resolver, navigate func(code string)) *Dispatcher {
	return &Dispatcher{r: r, navigate: navigate}
}

// OnRegionClick navigates to the primary RTO of the region; a region without
// candidates is a no-op.
func (d *Dispatcher) OnRegionClick(id string) {
	c, ok := d.r.ResolveClick(id)
	if !ok || d.navigate == nil {
		return
	}
	d.navigate(c.Code)
}

func (d *Dispatcher) OnRegionHover(id string) (DisplayInfo, bool) {
	return d.r.ResolveHover(id)
}
