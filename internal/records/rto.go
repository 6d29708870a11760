// Package records loads RTO records and per-state map configuration. It is the
// read-only record store the map resolution code consumes.
package records

import (
	"context"
	"strings"
)

// Status of an RTO office. Empty means active.
type Status string

const (
	StatusActive       Status = "active"
	StatusNotInUse     Status = "not-in-use"
	StatusDiscontinued Status = "discontinued"
)

// RTO is one office record as authored under data/<state>/<code>.json.
type RTO struct {
	Code                  string   `json:"code"`
	Region                string   `json:"region"`
	City                  string   `json:"city,omitempty"`
	State                 string   `json:"state"`
	StateCode             string   `json:"stateCode,omitempty"`
	District              string   `json:"district,omitempty"`
	Division              string   `json:"division,omitempty"`
	Description           string   `json:"description,omitempty"`
	Status                Status   `json:"status,omitempty"`
	Address               string   `json:"address,omitempty"`
	PinCode               string   `json:"pinCode,omitempty"`
	Phone                 string   `json:"phone,omitempty"`
	Email                 string   `json:"email,omitempty"`
	JurisdictionAreas     []string `json:"jurisdictionAreas,omitempty"`
	IsDistrictHeadquarter bool     `json:"isDistrictHeadquarter,omitempty"`
}

// Inactive reports whether the code is no longer issued.
func (r RTO) Inactive() bool {
	return r.Status == StatusNotInUse || r.Status == StatusDiscontinued
}

// EffectiveStatus maps the unset status to active.
func (r RTO) EffectiveStatus() Status {
	if r.Status == "" {
		return StatusActive
	}
	return r.Status
}

// StateConfig is data/<state>/config.json.
// DistrictMapping is canonical district name -> SVG region id; several
// canonical names may share one id when the map predates a district split.
type StateConfig struct {
	Name            string            `json:"name"`
	Code            string            `json:"stateCode"`
	DistrictMapping map[string]string `json:"districtMapping"`
	SVGDistrictIDs  []string          `json:"svgDistrictIds"`
	BoundaryAliases map[string]string `json:"boundaryAliases,omitempty"`
}

// Matches reports whether s names this state, by name or code, ignoring case.
func (c StateConfig) Matches(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return strings.EqualFold(c.Name, s) || strings.EqualFold(c.Code, s)
}

// InState reports whether the record belongs to the given state name or code.
func (r RTO) InState(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if strings.EqualFold(r.State, s) || strings.EqualFold(r.StateCode, s) {
		return true
	}
	// codes are state prefixed: KA-34
	if i := strings.IndexByte(r.Code, '-'); i > 0 {
		return strings.EqualFold(r.Code[:i], s)
	}
	return false
}

// Store is the lookup surface of the record store. Unknown states are not
// errors: they return empty results.
type Store interface {
	States(ctx context.Context) ([]StateConfig, error)
	StateConfig(ctx context.Context, state string) (StateConfig, bool, error)
	// ListRTOs returns the records of one state, or every record when state is empty.
	ListRTOs(ctx context.Context, state string) ([]RTO, error)
	DistrictMapping(ctx context.Context, state string) (map[string]string, error)
	ValidSVGDistrictIDs(ctx context.Context, state string) ([]string, error)
}
