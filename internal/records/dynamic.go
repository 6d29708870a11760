package records

import (
	"context"
	"sync/atomic"
)

// Dynamic swaps the underlying Store atomically so a reload never exposes a
// half-built record set to readers. Unset, it behaves like an empty store.
type Dynamic struct{ v atomic.Value }

type holder struct{ s Store }

// Set installs s for all subsequent calls. Set(nil) is ignored.
func (d *Dynamic) Set(s Store) {
	if s == nil {
		return
	}
	d.v.Store(holder{s: s})
}

func (d *Dynamic) current() Store {
	x := d.v.Load()
	if x == nil {
		return nil
	}
	return x.(holder).s
}

func (d *Dynamic) States(ctx context.Context) ([]StateConfig, error) {
	if s := d.current(); s != nil {
		return s.States(ctx)
	}
	return nil, nil
}

func (d *Dynamic) StateConfig(ctx context.Context, state string) (StateConfig, bool, error) {
	if s := d.current(); s != nil {
		return s.StateConfig(ctx, state)
	}
	return StateConfig{}, false, nil
}

func (d *Dynamic) ListRTOs(ctx context.Context, state string) ([]RTO, error) {
	if s := d.current(); s != nil {
		return s.ListRTOs(ctx, state)
	}
	return nil, nil
}

func (d *Dynamic) DistrictMapping(ctx context.Context, state string) (map[string]string, error) {
	if s := d.current(); s != nil {
		return s.DistrictMapping(ctx, state)
	}
	return map[string]string{}, nil
}

func (d *Dynamic) ValidSVGDistrictIDs(ctx context.Context, state string) ([]string, error) {
	if s := d.current(); s != nil {
		return s.ValidSVGDistrictIDs(ctx, state)
	}
	return nil, nil
}
