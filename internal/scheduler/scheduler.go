package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Dan9191/property-insights/internal/metrics"
	"github.com/Dan9191/property-insights/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const refreshTimeout = 30 * time.Second

// Refresher reloads the reference rate from its upstream source
type Refresher interface {
	Refresh(ctx context.Context) (models.ReferenceRate, error)
}

// Scheduler periodically refreshes the cached reference rate
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	log       *logrus.Logger
	warmup    sync.WaitGroup
}

// NewScheduler registers the refresh job on spec, a standard cron
// expression or a descriptor such as "@every 6h"
func NewScheduler(spec string, refresher Refresher, log *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(),
		refresher: refresher,
		log:       log,
	}
	if _, err := s.cron.AddFunc(spec, s.RefreshRate); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return s, nil
}

// RefreshRate runs one refresh and records its outcome
func (s *Scheduler) RefreshRate() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	rate, err := s.refresher.Refresh(ctx)
	if err != nil {
		metrics.ReferenceRateRefreshes.WithLabelValues("error").Inc()
		s.log.WithError(err).Error("Failed to refresh reference rate")
		return
	}
	metrics.ReferenceRateRefreshes.WithLabelValues("ok").Inc()
	s.log.WithFields(logrus.Fields{
		"key_rate": rate.KeyRate,
		"rate":     rate.Rate,
	}).Info("Reference rate refreshed")
}

// Start warms the cache once and then runs the schedule in the background
func (s *Scheduler) Start() {
	s.warmup.Add(1)
	go func() {
		defer s.warmup.Done()
		s.RefreshRate()
	}()
	s.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish,
// including the warm-up
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.warmup.Wait()
}
