package geodata

import (
	"context"
	"sync/atomic"

	"github.com/anoopt/rto-codes-sub000/internal/logger"

	"golang.org/x/time/rate"
)

// Sequence runs one step per item in order, optionally paced by a limiter.
// Cancel (or the context) stops it before the next step; a step already
// running is not interrupted beyond its own context.
type Sequence struct {
	limiter   *rate.Limiter
	cancelled atomic.Bool
}

// NewSequence paces steps with limiter; nil means no delay.
func NewSequence(limiter *rate.Limiter) *Sequence {
	return &Sequence{limiter: limiter}
}

func (s *Sequence) Cancel()         { s.cancelled.Store(true) }
func (s *Sequence) Cancelled() bool { return s.cancelled.Load() }

// Result lists the items that finished or failed. Items never started are in
// neither list.
type Result struct {
	Done      []string `json:"done"`
	Failed    []string `json:"failed"`
	Cancelled bool     `json:"cancelled"`
}

// Run: call step for each item in order.
// Constraint: the cancel flag and ctx are checked before every step and after
// every limiter wait; a step error lands in Failed and the run goes on.
func (s *Sequence) Run(ctx context.Context, items []string, step func(ctx context.Context, item string) error) Result {
	var res Result
	for i, it := range items {
		if s.stopped(ctx) {
			res.Cancelled = true
			break
		}
		if s.limiter != nil && i > 0 {
			if err := s.limiter.Wait(ctx); err != nil {
				res.Cancelled = true
				break
			}
			if s.stopped(ctx) {
				res.Cancelled = true
				break
			}
		}
		if err := step(ctx, it); err != nil {
			logger.L().Warn("sequence_step_failed", "item", it, "err", err)
			res.Failed = append(res.Failed, it)
			continue
		}
		res.Done = append(res.Done, it)
	}
	if res.Cancelled {
		logger.L().Info("sequence_cancelled", "done", len(res.Done), "failed", len(res.Failed), "total", len(items))
	}
	return res
}

func (s *Sequence) stopped(ctx context.Context) bool {
	return s.cancelled.Load() || ctx.Err() != nil
}
