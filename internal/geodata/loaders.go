package geodata

import (
	"context"
	"strings"

	"github.com/anoopt/rto-codes-sub000/internal/geocache"

	"github.com/paulmach/orb/geojson"
)

// BoundaryLoader keys a state's features by KeyName. Features without a name
// are dropped.
func BoundaryLoader(src BoundarySource) geocache.LoadFunc[*geojson.Feature] {
	return func(ctx context.Context, state string) (geocache.Batch[*geojson.Feature], error) {
		f, err := src.Boundaries(ctx, state)
		if err != nil {
			return geocache.Batch[*geojson.Feature]{}, err
		}
		b := geocache.Batch[*geojson.Feature]{
			Items:  make(map[string]*geojson.Feature, len(f.Features)),
			Failed: f.FailedDistricts,
		}
		for _, ft := range f.Features {
			if name := KeyName(ft); name != "" {
				b.Items[name] = ft
			}
		}
		return b, nil
	}
}

// CoordinateLoader keys a state's points by upper-case RTO code.
func CoordinateLoader(src CoordinateSource) geocache.LoadFunc[Coordinate] {
	return func(ctx context.Context, state string) (geocache.Batch[Coordinate], error) {
		f, err := src.Coordinates(ctx, state)
		if err != nil {
			return geocache.Batch[Coordinate]{}, err
		}
		b := geocache.Batch[Coordinate]{Items: make(map[string]Coordinate, len(f.Coordinates))}
		for code, c := range f.Coordinates {
			b.Items[strings.ToUpper(strings.TrimSpace(code))] = c
		}
		return b, nil
	}
}

// NewBoundaryCache and NewCoordinateCache build the two cache instances.
func NewBoundaryCache(src BoundarySource, opts geocache.Options) *geocache.Cache[*geojson.Feature] {
	return geocache.New(geocache.Boundaries, BoundaryLoader(src), opts)
}

func NewCoordinateCache(src CoordinateSource, opts geocache.Options) *geocache.Cache[Coordinate] {
	return geocache.New(geocache.Coordinates, CoordinateLoader(src), opts)
}
