package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/critmon/pulsecheck/internal/notify"
	"github.com/critmon/pulsecheck/internal/store"
	"github.com/critmon/pulsecheck/internal/utils"
)

// SweepService periodically scans the store for expired monitors and raises
// one alert per device per expiry transition. The sweep reads the store
// directly, bypassing the cache, and treats store failures as retry-next-tick.
type SweepService struct {
	Interval time.Duration
	Store    store.MonitorStore
	Notifier notify.Notifier
	Policy   AlertPolicy
	Pool     *utils.WorkerPool
	Logger   zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweepService initializes a new SweepService.
func NewSweepService(interval time.Duration, st store.MonitorStore, notifier notify.Notifier,
	policy AlertPolicy, pool *utils.WorkerPool, logger zerolog.Logger) *SweepService {

	return &SweepService{
		Interval: interval,
		Store:    st,
		Notifier: notifier,
		Policy:   policy,
		Pool:     pool,
		Logger:   logger,
	}
}

// Start launches the sweep loop in a separate goroutine.
func (s *SweepService) Start() error {
	if s.ctx != nil {
		s.Logger.Warn().Msg("SweepService is already running")
		return errors.New("sweep service is already running")
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runSweepLoop()
	}()

	s.Logger.Info().Dur("interval", s.Interval).Msg("SweepService started successfully")
	return nil
}

// Stop gracefully stops the sweep service.
func (s *SweepService) Stop() error {
	if s.ctx == nil {
		s.Logger.Warn().Msg("SweepService is not running")
		return errors.New("sweep service is not running")
	}

	s.cancel()
	s.wg.Wait()

	s.ctx = nil
	s.cancel = nil

	s.Logger.Info().Msg("SweepService stopped successfully")
	return nil
}

func (s *SweepService) runSweepLoop() {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.SweepOnce()
		case <-s.ctx.Done():
			s.Logger.Info().Msg("SweepService stopping gracefully")
			return
		}
	}
}

// SweepOnce performs a single scan. A store failure is logged and left for
// the next tick; it is never fatal to the process.
func (s *SweepService) SweepOnce() {
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	now := time.Now().UTC()
	expired, err := s.Store.FindExpired(ctx, now)
	if err != nil {
		s.Logger.Warn().Err(err).Msg("Failed to query expired monitors, retrying next tick")
		return
	}

	expiredIDs := make([]string, 0, len(expired))
	for i := range expired {
		m := expired[i]
		expiredIDs = append(expiredIDs, m.ID)
		if !s.Policy.ShouldAlert(&m) {
			continue
		}
		s.Logger.Warn().
			Str("monitor_id", m.ID).
			Str("device_id", m.DeviceID).
			Time("expired_at", m.ExpiresAt).
			Msg("Monitor expired, dispatching alert")
		s.Pool.Submit(func() {
			if err := s.Notifier.NotifyDown(&m, now); err != nil {
				s.Logger.Error().Err(err).Str("device_id", m.DeviceID).Msg("Failed to deliver alert")
			}
		})
	}

	s.Policy.Reconcile(expiredIDs)
}
