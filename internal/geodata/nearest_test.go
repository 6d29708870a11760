package geodata

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestOffice(t *testing.T) {
	ix := NewOfficeIndex(map[string]Coordinate{
		"KA-01": {Lat: 12.93, Lon: 77.62},
		"KA-09": {Lat: 12.30, Lon: 76.64},
		"KA-34": {Lat: 15.14, Lon: 76.92},
	})
	require.Equal(t, 3, ix.Len())

	o, d, ok := ix.Nearest(Coordinate{Lat: 15.0, Lon: 76.8}, 0)
	require.True(t, ok)
	assert.Equal(t, "KA-34", o.Code)
	assert.InDelta(t, 20, d, 5)

	o, _, ok = ix.Nearest(Coordinate{Lat: 12.35, Lon: 76.7}, 0)
	require.True(t, ok)
	assert.Equal(t, "KA-09", o.Code)

	_, _, ok = ix.Nearest(Coordinate{Lat: 28.6, Lon: 77.2}, 100)
	assert.False(t, ok)
}

func TestNearestOfficeEmpty(t *testing.T) {
	_, _, ok := NewOfficeIndex(nil).Nearest(Coordinate{Lat: 1, Lon: 1}, 0)
	assert.False(t, ok)
	var ix *OfficeIndex
	_, _, ok = ix.Nearest(Coordinate{}, 0)
	assert.False(t, ok)
}

func TestNearestOfficeMatchesLinearScan(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	pts := map[string]Coordinate{}
	for i := 0; i < 300; i++ {
		pts[fmt.Sprintf("XX-%03d", i)] = Coordinate{Lat: 8 + r.Float64()*27, Lon: 68 + r.Float64()*29}
	}
	ix := NewOfficeIndex(pts)
	for i := 0; i < 100; i++ {
		q := Coordinate{Lat: 8 + r.Float64()*27, Lon: 68 + r.Float64()*29}
		want, wantD := "", 0.0
		for code, c := range pts {
			d := geo.Distance(q.Point(), c.Point()) / 1000
			if want == "" || d < wantD || (d == wantD && code < want) {
				want, wantD = code, d
			}
		}
		got, d, ok := ix.Nearest(q, 0)
		require.True(t, ok)
		assert.Equal(t, want, got.Code, "query %v", q)
		assert.InDelta(t, wantD, d, 1e-9)
	}
}
