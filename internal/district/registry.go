// Package district maps canonical district names to the region ids of a
// state's SVG map, groups RTO records by district and picks the RTO a click
// on a region navigates to. Nothing here performs I/O.
package district

import (
	"errors"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrMalformedMapping marks a state config whose district mapping has a
// blank canonical name or a blank region id.
var ErrMalformedMapping = errors.New("malformed district mapping")

// Registry is the canonical name <-> SVG region id lookup of one state.
// Several canonical names may share a region id. Immutable after NewRegistry.
type Registry struct {
	forward map[string]string
	reverse map[string][]string
}

// NewRegistry copies mapping and derives the reverse index in one pass.
func NewRegistry(state string, mapping map[string]string) (*Registry, error) {
	r := &Registry{
		forward: make(map[string]string, len(mapping)),
		reverse: make(map[string][]string),
	}
	for name, id := range mapping {
		if strings.TrimSpace(name) == "" || strings.TrimSpace(id) == "" {
			return nil, eris.Wrapf(ErrMalformedMapping, "state %q: %q -> %q", state, name, id)
		}
		r.forward[name] = id
		r.reverse[id] = append(r.reverse[id], name)
	}
	for _, names := range r.reverse {
		sort.Strings(names)
	}
	return r, nil
}

// SVGIDFor returns the region id drawn for a canonical district. false means
// the region is not highlighted.
func (r *Registry) SVGIDFor(canonical string) (string, bool) {
	return r.lookup(canonical)
}

func (r *Registry) lookup(canonical string) (string, bool) {
	if r == nil {
		return "", false
	}
	id, ok := r.forward[canonical]
	return id, ok
}

// CanonicalNamesFor returns the sorted districts backing a region id; empty
// for decorative or unknown ids.
func (r *Registry) CanonicalNamesFor(svgID string) []string {
	if r == nil {
		return []string{}
	}
	names := r.reverse[svgID]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// RegionIDs lists the distinct region ids in use, sorted.
func (r *Registry) RegionIDs() []string {
	if r == nil {
		return []string{}
	}
	out := make([]string, 0, len(r.reverse))
	for id := range r.reverse {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Missing returns the names that have no mapping, sorted and deduplicated.
// On a nil registry every name is missing.
func (r *Registry) Missing(names []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		if _, ok := r.lookup(n); !ok {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// Dangling returns mapped region ids that are not among the ids the state's
// map actually draws.
func (r *Registry) Dangling(validSVGIDs []string) []string {
	if r == nil {
		return nil
	}
	valid := make(map[string]bool, len(validSVGIDs))
	for _, id := range validSVGIDs {
		valid[id] = true
	}
	var out []string
	for _, id := range r.RegionIDs() {
		if !valid[id] {
			out = append(out, id)
		}
	}
	return out
}
