package records

import (
	"context"
	"time"

	"github.com/anoopt/rto-codes-sub000/internal/logger"
)

// StartReloader: run reload every interval in a background goroutine.
// Background: record JSON is edited in place on the host; RECORDS_RELOAD_M
// picks the change up without a restart.
// Constraint: stops with ctx; a failed reload is logged and the current
// store stays.
func StartReloader(ctx context.Context, every time.Duration, reload func(context.Context) error) {
	if every <= 0 || reload == nil {
		return
	}
	l := logger.L()
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			start := time.Now()
			if err := reload(ctx); err != nil {
				l.Error("records_reload_error", "err", err)
				continue
			}
			l.Info("records_reload_done", "ms", time.Since(start).Milliseconds(), "next", start.Add(every))
		}
	}()
}

// FileReloader returns a reload func that reopens the tree at root and swaps
// it into d.
func FileReloader(root string, d *Dynamic) func(context.Context) error {
	return func(context.Context) error {
		fs, err := OpenFileStore(root)
		if err != nil {
			return err
		}
		d.Set(fs)
		return nil
	}
}
