package district

import "sort"

// Candidate is an RTO offered for a click, tagged with the canonical district
// it was gathered from when the clicked region is shared.
type Candidate struct {
	RTORef
	SourceDistrict string `json:"sourceDistrict,omitempty"`
}

// before orders candidates: active, then headquarters, then source district
// equal to the clicked region id, then code.
func before(a, b Candidate, regionID string) bool {
	if a.Inactive != b.Inactive {
		return !a.Inactive
	}
	if a.IsDistrictHeadquarter != b.IsDistrictHeadquarter {
		return a.IsDistrictHeadquarter
	}
	am := a.SourceDistrict != "" && a.SourceDistrict == regionID
	bm := b.SourceDistrict != "" && b.SourceDistrict == regionID
	if am != bm {
		return am
	}
	return a.Code < b.Code
}

// Rank returns a sorted copy of cands, best first. cands is not modified.
func Rank(cands []Candidate, regionID string) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	sort.SliceStable(out, func(i, j int) bool { return before(out[i], out[j], regionID) })
	return out
}

// SelectPrimary picks the RTO a click on regionID navigates to. false when
// there are no candidates.
func SelectPrimary(cands []Candidate, regionID string) (Candidate, bool) {
	switch len(cands) {
	case 0:
		return Candidate{}, false
	case 1:
		return cands[0], true
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if before(c, best, regionID) {
			best = c
		}
	}
	return best, true
}

// RegionCandidates is the union of the RTOs of every district drawn as
// svgID, each tagged with its district.
func RegionCandidates(reg *Registry, ix *Index, svgID string) []Candidate {
	var out []Candidate
	for _, name := range reg.CanonicalNamesFor(svgID) {
		for _, ref := range ix.RTOsFor(name) {
			out = append(out, Candidate{RTORef: ref, SourceDistrict: name})
		}
	}
	return out
}

// DistrictCandidates offers the RTOs of a single district, untagged.
func DistrictCandidates(ix *Index, canonical string) []Candidate {
	refs := ix.RTOsFor(canonical)
	out := make([]Candidate, 0, len(refs))
	for _, ref := range refs {
		out = append(out, Candidate{RTORef: ref})
	}
	return out
}
