package geodata

import (
	"math"
	"sort"

	"github.com/paulmach/orb/geo"
)

// Office is one RTO code with its location.
type Office struct {
	Code string `json:"code"`
	Coordinate
}

// OfficeIndex is a 2-d tree over office coordinates, split on longitude then
// latitude, for nearest-office queries.
type OfficeIndex struct {
	root *kdNode
	size int
}

type kdNode struct {
	o     Office
	axis  int // 0 lon, 1 lat
	left  *kdNode
	right *kdNode
}

// NewOfficeIndex builds the tree from code -> coordinate.
func NewOfficeIndex(points map[string]Coordinate) *OfficeIndex {
	offices := make([]Office, 0, len(points))
	for code, c := range points {
		offices = append(offices, Office{Code: code, Coordinate: c})
	}
	// map order must not change which of two equidistant offices wins
	sort.Slice(offices, func(i, j int) bool { return offices[i].Code < offices[j].Code })
	return &OfficeIndex{root: buildKD(offices, 0), size: len(offices)}
}

func (ix *OfficeIndex) Len() int { return ix.size }

func buildKD(offs []Office, depth int) *kdNode {
	if len(offs) == 0 {
		return nil
	}
	axis := depth % 2
	mid := len(offs) / 2
	selectNth(offs, mid, axis)
	return &kdNode{
		o:     offs[mid],
		axis:  axis,
		left:  buildKD(offs[:mid], depth+1),
		right: buildKD(offs[mid+1:], depth+1),
	}
}

// selectNth partially orders a so that a[n] is in its sorted position on axis.
func selectNth(a []Office, n, axis int) {
	lo, hi := 0, len(a)-1
	for lo < hi {
		p := partition(a, lo, hi, (lo+hi)/2, axis)
		switch {
		case p == n:
			return
		case n < p:
			hi = p - 1
		default:
			lo = p + 1
		}
	}
}

func partition(a []Office, lo, hi, pivot, axis int) int {
	pv := a[pivot]
	a[pivot], a[hi] = a[hi], a[pivot]
	i := lo
	for j := lo; j < hi; j++ {
		if less(a[j], pv, axis) {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[hi] = a[hi], a[i]
	return i
}

func less(x, y Office, axis int) bool {
	if axis == 0 {
		if x.Lon != y.Lon {
			return x.Lon < y.Lon
		}
	} else if x.Lat != y.Lat {
		return x.Lat < y.Lat
	}
	return x.Code < y.Code
}

func axisValue(c Coordinate, axis int) float64 {
	if axis == 0 {
		return c.Lon
	}
	return c.Lat
}

const kmPerDegree = 111.19

// Nearest returns the office closest to pt and its great-circle distance in
// km. maxKm > 0 rejects anything farther.
func (ix *OfficeIndex) Nearest(pt Coordinate, maxKm float64) (Office, float64, bool) {
	if ix == nil || ix.root == nil {
		return Office{}, 0, false
	}
	var best Office
	bestD := math.MaxFloat64
	var visit func(n *kdNode)
	visit = func(n *kdNode) {
		if n == nil {
			return
		}
		d := geo.Distance(pt.Point(), n.o.Point()) / 1000
		if d < bestD || (d == bestD && n.o.Code < best.Code) {
			best, bestD = n.o, d
		}
		key, split := axisValue(pt, n.axis), axisValue(n.o.Coordinate, n.axis)
		first, second := n.left, n.right
		if key > split {
			first, second = n.right, n.left
		}
		visit(first)
		if planeGapKm(pt, key-split, n.axis, bestD) <= bestD {
			visit(second)
		}
	}
	visit(ix.root)
	if maxKm > 0 && bestD > maxKm {
		return Office{}, bestD, false
	}
	return best, bestD, true
}

// planeGapKm is a lower bound on the distance from pt to any point on the
// other side of a split plane delta degrees away. A degree of longitude is
// measured at the highest latitude still within reach of the current best.
func planeGapKm(pt Coordinate, delta float64, axis int, bestKm float64) float64 {
	gap := math.Abs(delta) * kmPerDegree
	if axis == 0 {
		lat := math.Min(89, math.Abs(pt.Lat)+bestKm/kmPerDegree)
		gap *= math.Cos(lat * math.Pi / 180)
	}
	return gap * 0.9
}
