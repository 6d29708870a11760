package district

import (
	"sort"
	"strings"

	"github.com/anoopt/rto-codes-sub000/internal/records"
)

// RTORef is the slice of an RTO record the map needs.
type RTORef struct {
	Code                  string `json:"code"`
	Region                string `json:"region"`
	District              string `json:"district"`
	Inactive              bool   `json:"isInactive"`
	IsDistrictHeadquarter bool   `json:"isDistrictHeadquarter"`
}

// RefOf converts a record.
func RefOf(r records.RTO) RTORef {
	return RTORef{
		Code:                  r.Code,
		Region:                r.Region,
		District:              strings.TrimSpace(r.District),
		Inactive:              r.Inactive(),
		IsDistrictHeadquarter: r.IsDistrictHeadquarter,
	}
}

// Index groups RTOs by canonical district. Build a new one when records change.
type Index struct {
	buckets    map[string][]RTORef
	unassigned []string
	size       int
}

// BuildIndex groups rtos by district, keeping input order inside a bucket.
// A non-empty scopeState keeps only records of that state (name or code).
// Records without a district are left out and listed by Unassigned.
func BuildIndex(rtos []records.RTO, scopeState string) *Index {
	ix := &Index{buckets: make(map[string][]RTORef)}
	scope := strings.TrimSpace(scopeState)
	for _, r := range rtos {
		if scope != "" && !r.InState(scope) {
			continue
		}
		ref := RefOf(r)
		if ref.District == "" {
			ix.unassigned = append(ix.unassigned, r.Code)
			continue
		}
		ix.buckets[ref.District] = append(ix.buckets[ref.District], ref)
		ix.size++
	}
	return ix
}

// RTOsFor returns a copy of the district's bucket, never nil.
func (ix *Index) RTOsFor(district string) []RTORef {
	if ix == nil {
		return []RTORef{}
	}
	b := ix.buckets[district]
	out := make([]RTORef, len(b))
	copy(out, b)
	return out
}

// Districts lists indexed district names, sorted.
func (ix *Index) Districts() []string {
	out := make([]string, 0, len(ix.buckets))
	for d := range ix.buckets {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Len is the number of indexed RTOs.
func (ix *Index) Len() int { return ix.size }

// Unassigned lists codes that were skipped for lacking a district.
func (ix *Index) Unassigned() []string {
	out := make([]string, len(ix.unassigned))
	copy(out, ix.unassigned)
	return out
}
