package district

import (
	"math/rand"
	"testing"

	"github.com/anoopt/rto-codes-sub000/internal/records"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kaMapping = map[string]string{
	"Ballari":         "Ballari",
	"Vijayanagara":    "Ballari",
	"Bengaluru Urban": "Bengaluru Urban",
	"Kodagu":          "Kodagu",
}

var kaRTOs = []records.RTO{
	{Code: "KA-35", Region: "Hosapete", State: "Karnataka", District: "Vijayanagara"},
	{Code: "KA-34", Region: "Ballari", State: "Karnataka", District: "Ballari", IsDistrictHeadquarter: true},
	{Code: "KA-01", Region: "Koramangala", State: "Karnataka", District: "Bengaluru Urban", IsDistrictHeadquarter: true},
	{Code: "KA-02", Region: "Rajajinagar", State: "Karnataka", District: "Bengaluru Urban"},
	{Code: "KA-12", Region: "Madikeri", State: "Karnataka", District: " Kodagu "},
	{Code: "KA-66", Region: "Unassigned", State: "Karnataka"},
	{Code: "MH-01", Region: "Mumbai Central", State: "Maharashtra", District: "Mumbai City"},
}

func TestRegistryRoundTrip(t *testing.T) {
	reg, err := NewRegistry("Karnataka", kaMapping)
	require.NoError(t, err)
	for name, id := range kaMapping {
		got, ok := reg.SVGIDFor(name)
		require.True(t, ok, name)
		assert.Equal(t, id, got)
		assert.Contains(t, reg.CanonicalNamesFor(got), name)
	}
	assert.Equal(t, []string{"Ballari", "Vijayanagara"}, reg.CanonicalNamesFor("Ballari"))
	assert.Equal(t, []string{"Ballari", "Bengaluru Urban", "Kodagu"}, reg.RegionIDs())
}

func TestRegistryUnknown(t *testing.T) {
	reg, err := NewRegistry("Karnataka", kaMapping)
	require.NoError(t, err)

	_, ok := reg.SVGIDFor("Atlantis")
	assert.False(t, ok)
	names := reg.CanonicalNamesFor("decorative-border")
	assert.NotNil(t, names)
	assert.Empty(t, names)

	var nilReg *Registry
	_, ok = nilReg.SVGIDFor("Ballari")
	assert.False(t, ok)
	assert.Empty(t, nilReg.CanonicalNamesFor("Ballari"))
}

func TestNilRegistryCoverage(t *testing.T) {
	var nilReg *Registry
	assert.NotPanics(t, func() {
		assert.Equal(t, []string{}, nilReg.RegionIDs())
		assert.Equal(t, []string{"Ballari", "Kodagu"}, nilReg.Missing([]string{"Kodagu", "Ballari", "Kodagu", ""}))
		assert.Nil(t, nilReg.Dangling([]string{"Ballari"}))
	})
}

func TestRegistryDoesNotAliasInput(t *testing.T) {
	m := map[string]string{"Ballari": "Ballari"}
	reg, err := NewRegistry("KA", m)
	require.NoError(t, err)
	m["Ballari"] = "changed"
	id, _ := reg.SVGIDFor("Ballari")
	assert.Equal(t, "Ballari", id)

	names := reg.CanonicalNamesFor("Ballari")
	names[0] = "changed"
	assert.Equal(t, []string{"Ballari"}, reg.CanonicalNamesFor("Ballari"))
}

func TestRegistryMalformed(t *testing.T) {
	_, err := NewRegistry("KA", map[string]string{"Ballari": " "})
	assert.True(t, eris.Is(err, ErrMalformedMapping))
	_, err = NewRegistry("KA", map[string]string{"": "Ballari"})
	assert.True(t, eris.Is(err, ErrMalformedMapping))
}

func TestRegistryCoverage(t *testing.T) {
	reg, err := NewRegistry("Karnataka", kaMapping)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mysuru"}, reg.Missing([]string{"Ballari", "Mysuru", "Mysuru", ""}))
	assert.Equal(t, []string{"Kodagu"}, reg.Dangling([]string{"Ballari", "Bengaluru Urban"}))
}

func TestBuildIndex(t *testing.T) {
	ix := BuildIndex(kaRTOs, "KA")
	assert.Equal(t, []string{"Ballari", "Bengaluru Urban", "Kodagu", "Vijayanagara"}, ix.Districts())
	assert.Equal(t, 5, ix.Len())
	assert.Equal(t, []string{"KA-66"}, ix.Unassigned())

	blr := ix.RTOsFor("Bengaluru Urban")
	require.Len(t, blr, 2)
	assert.Equal(t, "KA-01", blr[0].Code)
	assert.Equal(t, "KA-02", blr[1].Code)

	unknown := ix.RTOsFor("Atlantis")
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)

	all := BuildIndex(kaRTOs, "")
	assert.Equal(t, 6, all.Len())
	assert.Len(t, all.RTOsFor("Mumbai City"), 1)

	byName := BuildIndex(kaRTOs, "karnataka")
	assert.Equal(t, ix.Districts(), byName.Districts())
}

func TestBuildIndexCopiesBuckets(t *testing.T) {
	ix := BuildIndex(kaRTOs, "KA")
	b := ix.RTOsFor("Ballari")
	b[0].Code = "XX-00"
	assert.Equal(t, "KA-34", ix.RTOsFor("Ballari")[0].Code)
}

func TestSelectPrimarySharedRegion(t *testing.T) {
	cands := []Candidate{
		{RTORef: RTORef{Code: "KA-35", District: "Vijayanagara"}, SourceDistrict: "Vijayanagara"},
		{RTORef: RTORef{Code: "KA-34", District: "Ballari", IsDistrictHeadquarter: true}, SourceDistrict: "Ballari"},
	}
	got, ok := SelectPrimary(cands, "Ballari")
	require.True(t, ok)
	assert.Equal(t, "KA-34", got.Code)
}

func TestSelectPrimaryRegionMatchBreaksHQTie(t *testing.T) {
	cands := []Candidate{
		{RTORef: RTORef{Code: "KA-34", IsDistrictHeadquarter: true}, SourceDistrict: "Ballari"},
		{RTORef: RTORef{Code: "KA-35", IsDistrictHeadquarter: true}, SourceDistrict: "Vijayanagara"},
	}
	got, _ := SelectPrimary(cands, "Vijayanagara")
	assert.Equal(t, "KA-35", got.Code)
	got, _ = SelectPrimary(cands, "Ballari")
	assert.Equal(t, "KA-34", got.Code)
	// untagged candidates fall through to code order
	got, _ = SelectPrimary([]Candidate{{RTORef: RTORef{Code: "KA-35"}}, {RTORef: RTORef{Code: "KA-34"}}}, "KA-35")
	assert.Equal(t, "KA-34", got.Code)
}

func TestSelectPrimaryActiveFirst(t *testing.T) {
	a := Candidate{RTORef: RTORef{Code: "KA-99", Inactive: true, IsDistrictHeadquarter: true}}
	b := Candidate{RTORef: RTORef{Code: "KA-10"}}
	for _, in := range [][]Candidate{{a, b}, {b, a}} {
		got, ok := SelectPrimary(in, "")
		require.True(t, ok)
		assert.Equal(t, "KA-10", got.Code)
	}
}

func TestSelectPrimaryEmpty(t *testing.T) {
	_, ok := SelectPrimary(nil, "Ballari")
	assert.False(t, ok)
	one := []Candidate{{RTORef: RTORef{Code: "KA-99", Inactive: true}}}
	got, ok := SelectPrimary(one, "Ballari")
	require.True(t, ok)
	assert.Equal(t, "KA-99", got.Code)
}

func TestSelectPrimaryOrderIndependent(t *testing.T) {
	ix := BuildIndex(kaRTOs, "KA")
	var cands []Candidate
	for _, d := range ix.Districts() {
		for _, ref := range ix.RTOsFor(d) {
			cands = append(cands, Candidate{RTORef: ref, SourceDistrict: d})
		}
	}
	want, ok := SelectPrimary(cands, "Ballari")
	require.True(t, ok)
	assert.Contains(t, cands, want)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		shuffled := append([]Candidate(nil), cands...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got, _ := SelectPrimary(shuffled, "Ballari")
		assert.Equal(t, want, got)
		assert.Equal(t, Rank(cands, "Ballari"), Rank(shuffled, "Ballari"))
	}
}

func TestRankDoesNotMutate(t *testing.T) {
	in := []Candidate{{RTORef: RTORef{Code: "KA-02"}}, {RTORef: RTORef{Code: "KA-01"}}}
	out := Rank(in, "")
	assert.Equal(t, "KA-02", in[0].Code)
	assert.Equal(t, "KA-01", out[0].Code)
}

func TestRegionCandidates(t *testing.T) {
	reg, err := NewRegistry("Karnataka", kaMapping)
	require.NoError(t, err)
	ix := BuildIndex(kaRTOs, "KA")

	cands := RegionCandidates(reg, ix, "Ballari")
	require.Len(t, cands, 2)
	for _, c := range cands {
		assert.Equal(t, c.District, c.SourceDistrict)
	}
	got, ok := SelectPrimary(cands, "Ballari")
	require.True(t, ok)
	assert.Equal(t, "KA-34", got.Code)

	assert.Empty(t, RegionCandidates(reg, ix, "decorative-border"))

	single := DistrictCandidates(ix, "Bengaluru Urban")
	require.Len(t, single, 2)
	assert.Empty(t, single[0].SourceDistrict)
	got, _ = SelectPrimary(single, "Bengaluru Urban")
	assert.Equal(t, "KA-01", got.Code)
}
