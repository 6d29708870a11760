package geodata

import (
	"context"

	"github.com/rotisserie/eris"
)

// Chain tries each source in order; the first one that has the state's file
// answers. Used to prefer a local data directory over the remote copy.
type Chain []interface {
	BoundarySource
	CoordinateSource
}

func (c Chain) Boundaries(ctx context.Context, state string) (BoundaryFile, error) {
	err := eris.Wrapf(ErrNotFound, "boundaries %s", state)
	for _, s := range c {
		if s == nil {
			continue
		}
		f, e := s.Boundaries(ctx, state)
		if e == nil {
			return f, nil
		}
		if !eris.Is(e, ErrNotFound) {
			return f, e
		}
		err = e
	}
	return BoundaryFile{}, err
}

func (c Chain) Coordinates(ctx context.Context, state string) (CoordinateFile, error) {
	err := eris.Wrapf(ErrNotFound, "coordinates %s", state)
	for _, s := range c {
		if s == nil {
			continue
		}
		f, e := s.Coordinates(ctx, state)
		if e == nil {
			return f, nil
		}
		if !eris.Is(e, ErrNotFound) {
			return f, e
		}
		err = e
	}
	return CoordinateFile{}, err
}
