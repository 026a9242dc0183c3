package services

import (
	"context"
	"time"

	"github.com/robfig/cron"
	"github.com/rs/zerolog/log"

	"github.com/SigNoz/storefront-go-app/internal/cache"
)

const (
	activeCartsSchedule = "@every 30s"
	cacheSweepSchedule  = "@every 5m"
	jobTimeout          = 10 * time.Second
)

// Scheduler runs periodic housekeeping
type Scheduler struct {
	cron  *cron.Cron
	carts *CartService
	cache cache.Cache
}

// NewScheduler registers the background jobs. The cache sweep only runs
// for the in-process cache; Redis expires keys itself.
func NewScheduler(carts *CartService, c cache.Cache) (*Scheduler, error) {
	s := &Scheduler{cron: cron.New(), carts: carts, cache: c}

	if err := s.cron.AddFunc(activeCartsSchedule, s.recordActiveCarts); err != nil {
		return nil, err
	}
	if _, ok := c.(*cache.Local); ok {
		if err := s.cron.AddFunc(cacheSweepSchedule, s.sweepCache); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) recordActiveCarts() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.carts.RecordActiveCarts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("active carts job failed")
		return
	}
	log.Debug().Int64("active_carts", n).Msg("active carts recorded")
}

func (s *Scheduler) sweepCache() {
	local, ok := s.cache.(*cache.Local)
	if !ok {
		return
	}
	if n := local.Sweep(); n > 0 {
		log.Debug().Int("evicted", n).Msg("cache swept")
	}
}
